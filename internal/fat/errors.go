package fat

import (
	"errors"

	"github.com/ostafen/sdfat/internal/disk"
)

// These errors may occur while mounting a volume.
var (
	ErrInvalidDiskSignature      = errors.New("invalid disk signature")
	ErrInvalidPartitionSignature = errors.New("invalid partition boot sector signature")
	ErrUnsupportedGeometry       = errors.New("unsupported volume geometry")
	ErrNoPartition               = disk.ErrNoPartition
	ErrDeviceIO                  = errors.New("device i/o failure")
)

// These errors may occur while processing a file.
var (
	ErrNotFound      = errors.New("file not found")
	ErrTableFull     = errors.New("open file table is full")
	ErrInvalidHandle = errors.New("invalid or closed file handle")
	ErrInvalidName   = errors.New("invalid 8.3 file name")
	ErrOutOfRange    = errors.New("position out of range")
	ErrShortChain    = errors.New("cluster chain ends before requested offset")
	ErrBrokenChain   = errors.New("broken cluster chain")
)
