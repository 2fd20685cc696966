package cmd

import (
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/ostafen/sdfat/internal/fatfs"
	"github.com/ostafen/sdfat/pkg/util/format"
)

func DefineCatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cat <image> <name>",
		Short:        "Print a file of the root directory",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunCat,
	}

	cmd.Flags().String("offset", "0", "start reading at the given byte offset (e.g. 512, 4KB)")
	cmd.Flags().String("count", "", "maximum number of bytes to print")
	return cmd
}

func RunCat(cmd *cobra.Command, args []string) error {
	offset, err := getBytes(cmd, "offset", 0)
	if err != nil {
		return err
	}
	count, err := getBytes(cmd, "count", math.MaxInt64)
	if err != nil {
		return err
	}

	vol, err := openVolume(cmd, args[0], false)
	if err != nil {
		return err
	}
	defer vol.Unmount()

	f, err := fatfs.New(vol.Volume).Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		return err
	}

	_, err = io.Copy(cmd.OutOrStdout(), io.LimitReader(f, int64(min(count, math.MaxInt64))))
	return err
}

// getBytes parses a size flag such as "4KB". An empty value yields def.
func getBytes(cmd *cobra.Command, name string, def uint64) (uint64, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return def, nil
	}
	return format.ParseBytes(s)
}
