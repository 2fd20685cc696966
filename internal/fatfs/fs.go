// Package fatfs exposes the root directory of a FAT32 volume as an afero.Fs.
//
// Only what the volume supports is implemented: files can be opened, read,
// and written within their allocated clusters. Operations that would change
// the directory return errors.ErrUnsupported.
package fatfs

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/ostafen/sdfat/internal/fat"
)

var _ afero.Fs = (*Fs)(nil)

type Fs struct {
	vol *fat.Volume
}

func New(vol *fat.Volume) *Fs {
	return &Fs{vol: vol}
}

func (fsys *Fs) Name() string {
	return "sdfat"
}

// cleanName strips leading separators. The empty result names the root directory.
func cleanName(name string) string {
	name = strings.TrimLeft(name, `/\`)
	if name == "." {
		return ""
	}
	return name
}

func pathError(op, name string, err error) error {
	if errors.Is(err, fat.ErrNotFound) || errors.Is(err, fat.ErrInvalidName) {
		err = os.ErrNotExist
	}
	return &os.PathError{Op: op, Path: name, Err: err}
}

func (fsys *Fs) Open(name string) (afero.File, error) {
	return fsys.OpenFile(name, os.O_RDONLY, 0)
}

// OpenFile opens an existing file of the root directory. O_CREATE is
// accepted only when the file already exists, O_TRUNC is not supported.
func (fsys *Fs) OpenFile(name string, flag int, _ os.FileMode) (afero.File, error) {
	clean := cleanName(name)
	if clean == "" {
		if flag&(os.O_WRONLY|os.O_RDWR) != 0 {
			return nil, &os.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
		}
		return &File{fs: fsys, name: name, dir: true}, nil
	}

	if strings.ContainsAny(clean, `/\`) {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}
	if flag&os.O_TRUNC != 0 {
		return nil, &os.PathError{Op: "open", Path: name, Err: errors.ErrUnsupported}
	}

	h, err := fsys.vol.Open(clean)
	if err != nil {
		return nil, pathError("open", name, err)
	}

	f := &File{
		fs:       fsys,
		name:     name,
		h:        h,
		writable: flag&(os.O_WRONLY|os.O_RDWR) != 0,
	}

	if flag&os.O_APPEND != 0 {
		info, err := fsys.vol.Stat(h)
		if err != nil {
			_ = fsys.vol.Close(h)
			return nil, pathError("open", name, err)
		}
		if _, err := f.Seek(info.Size(), 0); err != nil {
			_ = fsys.vol.Close(h)
			return nil, err
		}
	}
	return f, nil
}

func (fsys *Fs) Stat(name string) (os.FileInfo, error) {
	clean := cleanName(name)
	if clean == "" {
		return rootInfo{}, nil
	}
	if strings.ContainsAny(clean, `/\`) {
		return nil, &os.PathError{Op: "stat", Path: name, Err: os.ErrNotExist}
	}

	info, err := fsys.vol.Lookup(clean)
	if err != nil {
		return nil, pathError("stat", name, err)
	}
	return info, nil
}

func unsupported(op, name string) error {
	return &os.PathError{Op: op, Path: name, Err: errors.ErrUnsupported}
}

func (fsys *Fs) Create(name string) (afero.File, error) {
	return nil, unsupported("create", name)
}

func (fsys *Fs) Mkdir(name string, _ os.FileMode) error {
	return unsupported("mkdir", name)
}

func (fsys *Fs) MkdirAll(path string, _ os.FileMode) error {
	return unsupported("mkdir", path)
}

func (fsys *Fs) Remove(name string) error {
	return unsupported("remove", name)
}

func (fsys *Fs) RemoveAll(path string) error {
	return unsupported("remove", path)
}

func (fsys *Fs) Rename(oldname, _ string) error {
	return unsupported("rename", oldname)
}

func (fsys *Fs) Chmod(name string, _ os.FileMode) error {
	return unsupported("chmod", name)
}

func (fsys *Fs) Chown(name string, _, _ int) error {
	return unsupported("chown", name)
}

func (fsys *Fs) Chtimes(name string, _ time.Time, _ time.Time) error {
	return unsupported("chtimes", name)
}

type rootInfo struct{}

func (rootInfo) Name() string       { return "/" }
func (rootInfo) Size() int64        { return 0 }
func (rootInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o755 }
func (rootInfo) ModTime() time.Time { return time.Time{} }
func (rootInfo) IsDir() bool        { return true }
func (rootInfo) Sys() any           { return nil }
