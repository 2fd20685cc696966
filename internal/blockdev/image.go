// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package blockdev

import (
	"fmt"
	"io"
	"os"
)

// Image is a device backed by a disk image file or a raw device node.
type Image struct {
	path     string
	file     *os.File
	size     int64
	writable bool
}

// OpenImage opens path for sector I/O. When writable is false every write
// fails with ErrReadOnly.
func OpenImage(path string, writable bool) (*Image, error) {
	flags := os.O_RDONLY
	if writable {
		flags = os.O_RDWR
	}

	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}

	// Block devices report a zero size through Stat, so seek to the end instead.
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("could not determine size of %q: %w", path, err)
	}
	if size < SectorSize {
		f.Close()
		return nil, fmt.Errorf("%q is too small to hold a partition table (%d bytes)", path, size)
	}

	return &Image{
		path:     path,
		file:     f,
		size:     size,
		writable: writable,
	}, nil
}

// Size returns the size of the image in bytes.
func (d *Image) Size() int64 {
	return d.size
}

func (d *Image) Init() error {
	if d.file == nil {
		return fmt.Errorf("image %q is closed", d.path)
	}
	return nil
}

func (d *Image) ReadSectors(buf []byte, sector uint32, count uint32) error {
	off, n, err := checkTransfer(buf, sector, count, d.size)
	if err != nil {
		return err
	}
	_, err = d.file.ReadAt(buf[:n], off)
	return err
}

func (d *Image) WriteSectors(buf []byte, sector uint32, count uint32) error {
	if !d.writable {
		return ErrReadOnly
	}
	off, n, err := checkTransfer(buf, sector, count, d.size)
	if err != nil {
		return err
	}
	_, err = d.file.WriteAt(buf[:n], off)
	return err
}

// Close syncs pending writes and closes the underlying file.
func (d *Image) Close() error {
	if d.file == nil {
		return nil
	}
	var syncErr error
	if d.writable {
		syncErr = d.file.Sync()
	}
	err := d.file.Close()
	d.file = nil
	if syncErr != nil {
		return fmt.Errorf("failed to sync %q: %w", d.path, syncErr)
	}
	return err
}
