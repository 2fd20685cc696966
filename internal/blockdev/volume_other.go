//go:build !windows

package blockdev

import (
	"errors"
	"io"
)

func openVolume(path string, writable bool) (Device, io.Closer, error) {
	return nil, nil, errors.New("raw volume paths are only supported on windows")
}
