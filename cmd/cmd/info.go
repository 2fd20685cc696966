package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ostafen/sdfat/pkg/util/format"
)

func DefineInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "info <image>",
		Short:        "Show the partition and FAT32 layout of an image or device",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunInfo,
	}
}

func RunInfo(cmd *cobra.Command, args []string) error {
	vol, err := openVolume(cmd, args[0], false)
	if err != nil {
		return err
	}
	defer vol.Unmount()

	part := vol.Partition()
	geo := vol.Geometry()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Partition:           %d (%s)\n", part.Num, part.Type.Name())
	fmt.Fprintf(out, "Start LBA:           %d\n", part.StartLBA)
	fmt.Fprintf(out, "Size:                %s (%d sectors)\n", format.FormatBytes(int64(part.Size())), part.Length)
	fmt.Fprintf(out, "Volume label:        %s\n", geo.VolumeLabel)
	fmt.Fprintf(out, "Volume ID:           %04X-%04X\n", geo.VolumeID>>16, geo.VolumeID&0xFFFF)
	fmt.Fprintf(out, "Bytes per sector:    %d\n", geo.BytesPerSector)
	fmt.Fprintf(out, "Sectors per cluster: %d\n", geo.SectorsPerCluster)
	fmt.Fprintf(out, "Cluster size:        %s\n", format.FormatBytes(int64(geo.ClusterSize())))
	fmt.Fprintf(out, "Reserved sectors:    %d\n", geo.ReservedSectors)
	fmt.Fprintf(out, "FATs:                %d x %d sectors\n", geo.NumFATs, geo.SectorsPerFAT)
	fmt.Fprintf(out, "FAT start:           %d\n", geo.FATStart)
	fmt.Fprintf(out, "Data start:          %d\n", geo.DataStart)
	fmt.Fprintf(out, "Root cluster:        %d (sector %d)\n", geo.RootCluster, geo.RootDirSector)
	fmt.Fprintf(out, "Clusters:            %d\n", geo.ClusterCount())
	return nil
}
