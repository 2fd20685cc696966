package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ostafen/sdfat/internal/env"
	"github.com/ostafen/sdfat/internal/fat"
	"github.com/ostafen/sdfat/internal/fatfs"
	"github.com/ostafen/sdfat/internal/format"
	"github.com/ostafen/sdfat/pkg/dfxml"
)

func DefineLsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ls <image>",
		Short:        "List the root directory of a FAT32 volume",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunLs,
	}

	cmd.Flags().StringP("report", "r", "", "write a DFXML report with the byte runs of every file")
	cmd.Flags().Bool("detect", false, "detect file types from their magic numbers")
	return cmd
}

func RunLs(cmd *cobra.Command, args []string) error {
	reportPath, _ := cmd.Flags().GetString("report")
	detect, _ := cmd.Flags().GetBool("detect")

	vol, err := openVolume(cmd, args[0], false)
	if err != nil {
		return err
	}
	defer vol.Unmount()

	log := consoleLogger(cmd)

	infos, err := vol.ReadDir()
	if err != nil {
		return err
	}

	var report *dfxml.DFXMLWriter
	if reportPath != "" {
		f, err := os.Create(reportPath)
		if err != nil {
			return err
		}
		defer f.Close()

		report = dfxml.NewDFXMLWriter(f)
		if err := writeReportHeader(report, args[0], vol.Volume); err != nil {
			return err
		}
	}

	var (
		registry *format.FileRegistry
		fsys     = fatfs.New(vol.Volume)
		out      = cmd.OutOrStdout()
	)
	if detect {
		registry = format.NewFileRegistry(format.DefaultHeaders...)
	}

	for _, fi := range infos {
		var contentType string
		if registry != nil && !fi.IsDir() {
			contentType, err = detectType(fsys, registry, fi.Name())
			if err != nil {
				log.Warnf("%s: %v", fi.Name(), err)
			}
		}

		fmt.Fprintf(out, "%s %-12s %10d  %s  %-6s %s\n",
			fi.Mode(),
			fi.Name(),
			fi.Size(),
			formatModTime(fi.ModTime()),
			contentType,
			fi.LongName(),
		)

		if report == nil || fi.IsDir() {
			continue
		}

		obj, err := fileObject(vol.Volume, fi, contentType)
		if err != nil {
			log.Warnf("%s: %v", fi.Name(), err)
			continue
		}
		if err := report.WriteFileObject(obj); err != nil {
			return err
		}
	}

	if report != nil {
		if err := report.Close(); err != nil {
			return err
		}
		log.Infof("Report written to %s", reportPath)
	}
	return nil
}

func formatModTime(t time.Time) string {
	if t.IsZero() {
		return "-                  "
	}
	return t.Format(time.DateTime)
}

// detectType matches the first bytes of the file against the registry.
func detectType(fsys *fatfs.Fs, registry *format.FileRegistry, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, registry.PrefixLen())
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}

	hdr, ok := registry.Detect(buf[:n])
	if !ok {
		return "", nil
	}
	return hdr.Ext, nil
}

func writeReportHeader(w *dfxml.DFXMLWriter, image string, vol *fat.Volume) error {
	part := vol.Partition()
	geo := vol.Geometry()

	err := w.WriteHeader(dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Creator: dfxml.Creator{
			Package:              env.AppName,
			Version:              env.Version,
			ExecutionEnvironment: dfxml.GetExecEnv(),
		},
		Source: dfxml.Source{
			ImageFilename: image,
			SectorSize:    int(geo.BytesPerSector),
			ImageSize:     part.Offset() + part.Size(),
		},
	})
	if err != nil {
		return err
	}

	return w.WriteVolume(dfxml.Volume{
		Offset:        part.Offset(),
		FTypeStr:      "fat32",
		BlockSize:     geo.ClusterSize(),
		SectorSize:    geo.BytesPerSector,
		BlockCount:    geo.ClusterCount(),
		FirstBlock:    2,
		VolumeLabel:   geo.VolumeLabel,
		VolumeSerial:  fmt.Sprintf("%04X-%04X", geo.VolumeID>>16, geo.VolumeID&0xFFFF),
		PartitionType: part.Type.Name(),
	})
}

func fileObject(vol *fat.Volume, fi fat.FileInfo, contentType string) (dfxml.FileObject, error) {
	h, err := vol.Open(fi.Name())
	if err != nil {
		return dfxml.FileObject{}, err
	}
	defer vol.Close(h)

	runs, err := vol.Runs(h)
	if err != nil {
		return dfxml.FileObject{}, err
	}

	obj := dfxml.FileObject{
		Filename:    fi.Name(),
		FileSize:    uint64(fi.Size()),
		Inode:       uint64(fi.EntryIndex),
		ContentType: contentType,
	}
	if mtime := fi.ModTime(); !mtime.IsZero() {
		obj.MTime = mtime.UTC().Format(dfxml.TimeFormat)
	}
	for _, r := range runs {
		obj.ByteRuns.Runs = append(obj.ByteRuns.Runs, dfxml.ByteRun{
			Offset:    r.FileOffset,
			ImgOffset: r.DiskOffset,
			Length:    r.Length,
		})
	}
	return obj, nil
}
