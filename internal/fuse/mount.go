//go:build !linux
// +build !linux

package fuse

import (
	"fmt"

	"github.com/ostafen/sdfat/internal/fat"
	"github.com/ostafen/sdfat/internal/logger"
)

type Options struct {
	Writable bool
	Log      *logger.Logger
}

func Mount(mountpoint string, vol *fat.Volume, opts Options) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}
