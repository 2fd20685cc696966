package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ostafen/sdfat/internal/fatfs"
	"github.com/ostafen/sdfat/pkg/util/format"
)

func DefineWriteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write <image> <name>",
		Short: "Overwrite the content of an existing file",
		Long: `The 'write' command copies data into an existing file of the root directory,
starting at the given offset. Files grow as long as their cluster chain has room:
clusters are never allocated, so writing past the last cluster fails.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunWrite,
	}

	cmd.Flags().String("offset", "0", "byte offset where writing starts (e.g. 512, 4KB)")
	cmd.Flags().StringP("input", "i", "", "file providing the data to write (defaults to stdin)")
	return cmd
}

func RunWrite(cmd *cobra.Command, args []string) error {
	offset, err := getBytes(cmd, "offset", 0)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if input, _ := cmd.Flags().GetString("input"); input != "" {
		f, err := os.Open(input)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	vol, err := openVolume(cmd, args[0], true)
	if err != nil {
		return err
	}
	defer vol.Unmount()

	f, err := fatfs.New(vol.Volume).OpenFile(args[1], os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		return err
	}

	n, err := io.Copy(f, in)
	if err != nil {
		return err
	}

	consoleLogger(cmd).Infof("Wrote %s to %s at offset %d", format.FormatBytes(n), args[1], offset)
	return nil
}
