package cmd

import (
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ostafen/sdfat/internal/fatfs"
	"github.com/ostafen/sdfat/internal/logger"
	"github.com/ostafen/sdfat/pkg/pbar"
	"github.com/ostafen/sdfat/pkg/util/format"
	osutil "github.com/ostafen/sdfat/pkg/util/os"
)

func DefineGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "get <image> <name>...",
		Short:        "Copy files from the root directory to the host",
		Args:         cobra.MinimumNArgs(2),
		SilenceUsage: true,
		RunE:         RunGet,
	}

	cmd.Flags().StringP("output-dir", "o", ".", "directory where extracted files are written")
	cmd.Flags().Bool("no-progress", false, "do not render the progress bar")
	return cmd
}

// progressReader accounts the bytes flowing through it on the progress bar.
type progressReader struct {
	r   io.Reader
	pbs *pbar.ProgressBarState
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.pbs.Add(int64(n))
	return n, err
}

func RunGet(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("output-dir")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	outDir, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}
	if _, err := osutil.EnsureDir(outDir, false); err != nil {
		return err
	}

	vol, err := openVolume(cmd, args[0], false)
	if err != nil {
		return err
	}
	defer vol.Unmount()

	log := consoleLogger(cmd)

	var (
		src   = fatfs.New(vol.Volume)
		dst   = afero.NewBasePathFs(afero.NewOsFs(), outDir)
		names = args[1:]
		total int64
	)
	for _, name := range names {
		fi, err := src.Stat(name)
		if err != nil {
			return err
		}
		total += fi.Size()
	}

	progressOut := cmd.ErrOrStderr()
	if noProgress || !log.Enabled(logger.InfoLevel) {
		progressOut = io.Discard
	}
	pbs := pbar.NewProgressBarState(progressOut, total, len(names))

	for _, name := range names {
		if err := copyFile(src, dst, name, pbs); err != nil {
			pbs.Finish()
			return err
		}
		pbs.FilesDone++
		log.Debugf("extracted %s", filepath.Join(outDir, name))
	}
	pbs.Render(true)
	pbs.Finish()

	log.Infof("Extracted %d files (%s) to %s", len(names), format.FormatBytes(total), outDir)
	return nil
}

func copyFile(src, dst afero.Fs, name string, pbs *pbar.ProgressBarState) error {
	f, err := src.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	return afero.WriteReader(dst, name, &progressReader{r: f, pbs: pbs})
}
