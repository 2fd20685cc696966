//go:build linux
// +build linux

package fuse

import (
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"syscall"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/ostafen/sdfat/internal/fat"
)

const rootInode = 1

// VolumeFS serves the root directory of a FAT32 volume.
type VolumeFS struct {
	vol      *fat.Volume
	writable bool
}

func NewVolumeFS(vol *fat.Volume, writable bool) *VolumeFS {
	return &VolumeFS{
		vol:      vol,
		writable: writable,
	}
}

func (vfs *VolumeFS) Root() (fs.Node, error) {
	return &Dir{
		fs: vfs,
	}, nil
}

func toErrno(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fat.ErrNotFound), errors.Is(err, fat.ErrInvalidName):
		return fuse.ENOENT
	case errors.Is(err, fat.ErrTableFull):
		return fuse.Errno(syscall.ENFILE)
	case errors.Is(err, fat.ErrShortChain):
		return fuse.Errno(syscall.ENOSPC)
	case errors.Is(err, fat.ErrInvalidHandle):
		return fuse.Errno(syscall.EBADF)
	}
	return fuse.EIO
}

// Dir implements both fs.Node and fs.HandleReadDirAller
type Dir struct {
	fs *VolumeFS
}

func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = rootInode
	a.Mode = os.ModeDir | 0555
	if d.fs.writable {
		a.Mode |= 0200
	}
	return nil
}

// Lookup resolves regular files only, subdirectories are not traversed.
func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	info, err := d.fs.vol.Lookup(name)
	if err != nil {
		return nil, toErrno(err)
	}
	if info.IsDir() {
		return nil, fuse.ENOENT
	}
	return &File{
		fs:   d.fs,
		name: name,
	}, nil
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	infos, err := d.fs.vol.ReadDir()
	if err != nil {
		return nil, toErrno(err)
	}

	dirEntries := make([]fuse.Dirent, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		dirEntries = append(dirEntries, fuse.Dirent{
			Inode: inode(info),
			Name:  info.Name(),
			Type:  fuse.DT_File,
		})
	}
	sort.Slice(dirEntries, func(i, j int) bool {
		return dirEntries[i].Name < dirEntries[j].Name
	})
	return dirEntries, nil
}

func inode(info fat.FileInfo) uint64 {
	return uint64(info.EntryIndex) + rootInode + 1
}

// File implements fs.Node and fs.NodeOpener. Its attributes are read
// from the directory entry every time, so sizes changed by writes show up.
type File struct {
	fs   *VolumeFS
	name string
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	info, err := f.fs.vol.Lookup(f.name)
	if err != nil {
		return toErrno(err)
	}

	a.Inode = inode(info)
	a.Mode = info.Mode()
	if !f.fs.writable {
		a.Mode &^= 0222
	}
	a.Size = uint64(info.Size())
	a.Mtime = info.ModTime()
	return nil
}

func (f *File) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fs.Handle, error) {
	if !req.Flags.IsReadOnly() && !f.fs.writable {
		return nil, fuse.Errno(syscall.EROFS)
	}
	if req.Flags&fuse.OpenTruncate != 0 {
		return nil, fuse.Errno(syscall.EPERM)
	}

	h, err := f.fs.vol.Open(f.name)
	if err != nil {
		return nil, toErrno(err)
	}
	return &Handle{fs: f.fs, h: h}, nil
}

// Handle is an open file, backed by a slot of the volume's open file table.
type Handle struct {
	fs *VolumeFS
	h  fat.Handle
}

func (h *Handle) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	info, err := h.fs.vol.Stat(h.h)
	if err != nil {
		return toErrno(err)
	}

	if req.Offset >= info.Size() {
		// Trying to read past EOF
		resp.Data = []byte{}
		return nil
	}

	if err := h.fs.vol.MoveReadPointer(h.h, uint32(req.Offset)); err != nil {
		return toErrno(err)
	}

	buf := make([]byte, req.Size)
	n := 0
	for n < len(buf) {
		m, err := h.fs.vol.Read(h.h, buf[n:])
		n += m
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return toErrno(err)
		}
	}
	resp.Data = buf[:n]
	return nil
}

func (h *Handle) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	if !h.fs.writable {
		return fuse.Errno(syscall.EROFS)
	}
	if req.Offset < 0 || req.Offset > int64(^uint32(0)) {
		return fuse.Errno(syscall.EFBIG)
	}

	if err := h.fs.vol.MoveWritePointer(h.h, uint32(req.Offset)); err != nil {
		return toErrno(err)
	}

	n, err := h.fs.vol.Write(h.h, req.Data)
	resp.Size = n
	if err != nil && n == 0 {
		return toErrno(err)
	}
	return nil
}

func (h *Handle) Release(ctx context.Context, req *fuse.ReleaseRequest) error {
	return toErrno(h.fs.vol.Close(h.h))
}
