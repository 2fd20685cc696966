//go:build !unix

package blockdev

import (
	"errors"
	"io"
)

func openMapped(path string, writable bool) (Device, io.Closer, error) {
	return nil, nil, errors.New("memory mapped images are only supported on unix systems")
}
