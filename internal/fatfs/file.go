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
package fatfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/afero"

	"github.com/ostafen/sdfat/internal/fat"
)

var _ afero.File = (*File)(nil)

// File is an open root directory entry, or the root directory itself.
// Reads and writes share a single offset.
type File struct {
	fs       *Fs
	name     string
	h        fat.Handle
	dir      bool
	writable bool
	closed   bool

	offset    int64
	dirOffset int
}

func (f *File) Name() string {
	return f.name
}

func (f *File) Close() error {
	if f.closed {
		return afero.ErrFileClosed
	}
	f.closed = true

	if f.dir {
		return nil
	}
	return f.fs.vol.Close(f.h)
}

func (f *File) check(op string) error {
	if f.closed {
		return &os.PathError{Op: op, Path: f.name, Err: afero.ErrFileClosed}
	}
	if f.dir {
		return &os.PathError{Op: op, Path: f.name, Err: syscall.EISDIR}
	}
	return nil
}

func (f *File) Read(p []byte) (int, error) {
	if err := f.check("read"); err != nil {
		return 0, err
	}

	n, err := f.fs.vol.Read(f.h, p)
	f.offset += int64(n)
	if n > 0 {
		if err := f.fs.vol.MoveWritePointer(f.h, uint32(f.offset)); err != nil {
			return n, err
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return n, pathError("read", f.name, err)
	}
	return n, err
}

// ReadAt reads len(p) bytes at off without moving the file offset.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if err := f.check("read"); err != nil {
		return 0, err
	}
	if off < 0 || off > int64(^uint32(0)) {
		return 0, &os.PathError{Op: "readat", Path: f.name, Err: afero.ErrOutOfRange}
	}

	info, err := f.fs.vol.Stat(f.h)
	if err != nil {
		return 0, pathError("readat", f.name, err)
	}
	if off >= info.Size() {
		return 0, io.EOF
	}

	if err := f.fs.vol.MoveReadPointer(f.h, uint32(off)); err != nil {
		return 0, pathError("readat", f.name, err)
	}
	defer f.fs.vol.MoveReadPointer(f.h, uint32(f.offset))

	n := 0
	for n < len(p) {
		m, err := f.fs.vol.Read(f.h, p[n:])
		n += m
		if err != nil {
			if errors.Is(err, io.EOF) {
				return n, io.EOF
			}
			return n, pathError("readat", f.name, err)
		}
	}
	return n, nil
}

// Seek moves the shared offset. Offsets past the end of the file are rejected.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if err := f.check("seek"); err != nil {
		return 0, err
	}

	info, err := f.fs.vol.Stat(f.h)
	if err != nil {
		return 0, pathError("seek", f.name, err)
	}

	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += f.offset
	case io.SeekEnd:
		offset += info.Size()
	default:
		return 0, &os.PathError{Op: "seek", Path: f.name, Err: syscall.EINVAL}
	}

	if offset < 0 || offset > info.Size() {
		return 0, &os.PathError{Op: "seek", Path: f.name,
			Err: fmt.Errorf("%w: offset %d, size %d", afero.ErrOutOfRange, offset, info.Size())}
	}

	if err := f.fs.vol.MoveReadPointer(f.h, uint32(offset)); err != nil {
		return 0, pathError("seek", f.name, err)
	}
	if err := f.fs.vol.MoveWritePointer(f.h, uint32(offset)); err != nil {
		return 0, pathError("seek", f.name, err)
	}
	f.offset = offset
	return offset, nil
}

func (f *File) Write(p []byte) (int, error) {
	if err := f.check("write"); err != nil {
		return 0, err
	}
	if !f.writable {
		return 0, &os.PathError{Op: "write", Path: f.name, Err: os.ErrPermission}
	}

	n, err := f.fs.vol.Write(f.h, p)
	f.offset += int64(n)
	if n > 0 {
		if merr := f.fs.vol.MoveReadPointer(f.h, uint32(f.offset)); merr != nil && err == nil {
			err = merr
		}
	}
	if err != nil {
		return n, pathError("write", f.name, err)
	}
	return n, nil
}

// WriteAt writes p at off without moving the file offset.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if err := f.check("write"); err != nil {
		return 0, err
	}
	if !f.writable {
		return 0, &os.PathError{Op: "write", Path: f.name, Err: os.ErrPermission}
	}
	if off < 0 || off > int64(^uint32(0)) {
		return 0, &os.PathError{Op: "writeat", Path: f.name, Err: afero.ErrOutOfRange}
	}

	if err := f.fs.vol.MoveWritePointer(f.h, uint32(off)); err != nil {
		return 0, pathError("writeat", f.name, err)
	}
	defer f.fs.vol.MoveWritePointer(f.h, uint32(f.offset))

	n, err := f.fs.vol.Write(f.h, p)
	if err != nil {
		return n, pathError("writeat", f.name, err)
	}
	return n, nil
}

func (f *File) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// Readdir lists the root directory with the semantics of os.File.Readdir.
func (f *File) Readdir(count int) ([]os.FileInfo, error) {
	if f.closed {
		return nil, &os.PathError{Op: "readdir", Path: f.name, Err: afero.ErrFileClosed}
	}
	if !f.dir {
		return nil, &os.PathError{Op: "readdir", Path: f.name, Err: syscall.ENOTDIR}
	}

	entries, err := f.fs.vol.ReadDir()
	if err != nil {
		return nil, pathError("readdir", f.name, err)
	}

	rest := entries[min(f.dirOffset, len(entries)):]
	if count > 0 {
		if len(rest) == 0 {
			return nil, io.EOF
		}
		rest = rest[:min(count, len(rest))]
	}
	f.dirOffset += len(rest)

	infos := make([]os.FileInfo, len(rest))
	for i := range rest {
		infos[i] = rest[i]
	}
	return infos, nil
}

func (f *File) Readdirnames(count int) ([]string, error) {
	infos, err := f.Readdir(count)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names, nil
}

func (f *File) Stat() (os.FileInfo, error) {
	if f.closed {
		return nil, &os.PathError{Op: "stat", Path: f.name, Err: afero.ErrFileClosed}
	}
	if f.dir {
		return rootInfo{}, nil
	}

	info, err := f.fs.vol.Stat(f.h)
	if err != nil {
		return nil, pathError("stat", f.name, err)
	}
	return info, nil
}

// Sync is a no-op: every write reaches the device before it returns.
func (f *File) Sync() error {
	if f.closed {
		return afero.ErrFileClosed
	}
	return nil
}

func (f *File) Truncate(int64) error {
	return unsupported("truncate", f.name)
}
