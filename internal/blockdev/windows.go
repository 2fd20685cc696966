//go:build windows
// +build windows

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
	"syscall"

	"golang.org/x/sys/windows"
)

// WindowsVolume is a raw \\.\X: volume opened for sector I/O.
type WindowsVolume struct {
	handle   windows.Handle
	writable bool
}

// OpenWindowsVolume opens a disk/volume for raw sector access.
func OpenWindowsVolume(path string, writable bool) (*WindowsVolume, error) {
	access := uint32(windows.GENERIC_READ)
	if writable {
		access |= windows.GENERIC_WRITE
	}
	handle, err := windows.CreateFile(
		windows.StringToUTF16Ptr(path),
		access,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	return &WindowsVolume{handle: handle, writable: writable}, nil
}

func (d *WindowsVolume) Init() error {
	return nil
}

func overlappedAt(off int64) *windows.Overlapped {
	ov := new(windows.Overlapped)
	ov.Offset = uint32(off)
	ov.OffsetHigh = uint32(off >> 32)
	return ov
}

func (d *WindowsVolume) ReadSectors(buf []byte, sector uint32, count uint32) error {
	n := int(count) * SectorSize
	if len(buf) < n {
		return ErrShortBuffer
	}
	ov := overlappedAt(int64(sector) * SectorSize)

	var done uint32
	err := windows.ReadFile(d.handle, buf[:n], &done, ov)
	if err == syscall.ERROR_IO_PENDING {
		err = windows.GetOverlappedResult(d.handle, ov, &done, true)
	}
	if err != nil {
		return fmt.Errorf("sector read failed: %w", err)
	}
	if int(done) != n {
		return fmt.Errorf("short sector read: %d of %d bytes", done, n)
	}
	return nil
}

func (d *WindowsVolume) WriteSectors(buf []byte, sector uint32, count uint32) error {
	if !d.writable {
		return ErrReadOnly
	}
	n := int(count) * SectorSize
	if len(buf) < n {
		return ErrShortBuffer
	}
	ov := overlappedAt(int64(sector) * SectorSize)

	var done uint32
	err := windows.WriteFile(d.handle, buf[:n], &done, ov)
	if err == syscall.ERROR_IO_PENDING {
		err = windows.GetOverlappedResult(d.handle, ov, &done, true)
	}
	if err != nil {
		return fmt.Errorf("sector write failed: %w", err)
	}
	if int(done) != n {
		return fmt.Errorf("short sector write: %d of %d bytes", done, n)
	}
	return nil
}

// Close closes the underlying handle
func (d *WindowsVolume) Close() error {
	return windows.CloseHandle(d.handle)
}

func openVolume(path string, writable bool) (Device, io.Closer, error) {
	v, err := OpenWindowsVolume(path, writable)
	if err != nil {
		return nil, nil, err
	}
	return v, v, nil
}
