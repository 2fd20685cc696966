package cmd

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ostafen/sdfat/internal/fuse"
)

func DefineMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mount <image>",
		Short: "Mount the root directory of a FAT32 volume",
		Long: `The 'mount' command exposes the files of the root directory of the first
partition through FUSE. The volume is mounted read-only unless --rw is given;
writable mounts can modify existing files but cannot create, remove or truncate them.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunMount,
	}

	cmd.Flags().StringP("mountpoint", "m", "", "Absolute path to the directory where the filesystem will be mounted. If not specified, a default will be generated.")
	cmd.Flags().Bool("rw", false, "allow writes to existing files")
	return cmd
}

func RunMount(cmd *cobra.Command, args []string) error {
	writable, _ := cmd.Flags().GetBool("rw")

	mountpoint, _ := cmd.Flags().GetString("mountpoint")
	if mountpoint == "" {
		mountpoint = getMountpoint(args[0])
	}

	vol, err := openVolume(cmd, args[0], writable)
	if err != nil {
		return err
	}
	defer vol.Unmount()

	return fuse.Mount(mountpoint, vol.Volume, fuse.Options{
		Writable: writable,
		Log:      consoleLogger(cmd),
	})
}

// getMountpoint generates a mountpoint name from an image path by stripping the extension.
// If the extension is empty, "_mnt" is added.
func getMountpoint(imagePath string) string {
	baseName := filepath.Base(imagePath)
	ext := filepath.Ext(baseName)
	baseName = strings.TrimSuffix(baseName, ext)
	mountpoint := baseName
	if ext == "" {
		mountpoint += "_mnt"
	}
	return mountpoint
}
