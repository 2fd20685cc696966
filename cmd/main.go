package main

import (
	"fmt"
	"os"

	"github.com/ostafen/sdfat/cmd/cmd"
	"github.com/ostafen/sdfat/internal/env"
)

func main() {
	PrintLogo()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// PrintLogo writes the banner to stderr, leaving stdout to command output.
func PrintLogo() {
	w := os.Stderr
	fmt.Fprintln(w, "          _  __       _   ")
	fmt.Fprintln(w, " ___  __| |/ _| __ _| |_ ")
	fmt.Fprintln(w, "/ __|/ _` | |_ / _` | __|")
	fmt.Fprintln(w, "\\__ \\ (_| |  _| (_| | |_ ")
	fmt.Fprintln(w, "|___/\\__,_|_|  \\__,_|\\__|")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "FAT32 volume reader and writer")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Version:   %s\n", env.Version)
	fmt.Fprintf(w, "Commit:    %s\n", env.CommitHash)
	fmt.Fprintf(w, "Build Time: %s\n", env.BuildTime)
	fmt.Fprintln(w, " ")
}
