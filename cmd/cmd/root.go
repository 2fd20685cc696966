package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ostafen/sdfat/internal/env"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   env.AppName,
		Short: env.AppName + " - FAT32 volume reader and writer",
	}

	rootCmd.PersistentFlags().String("log-level", "INFO", "minimum log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().String("log-file", "", "write volume debug records to the specified file")
	rootCmd.PersistentFlags().Bool("mmap", false, "access image files through a memory mapping")
	rootCmd.PersistentFlags().Int("max-open-files", 32, "capacity of the open file table")

	rootCmd.AddCommand(
		DefineInfoCommand(),
		DefineLsCommand(),
		DefineCatCommand(),
		DefineGetCommand(),
		DefineWriteCommand(),
		DefineMountCommand(),
	)
	return rootCmd
}

func Execute() error {
	return NewRootCommand().Execute()
}
