//go:build unix

package blockdev

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Mapped is a device whose sectors live in a shared memory mapping of an image.
type Mapped struct {
	Data     []byte   // The memory-mapped byte slice
	File     *os.File // The underlying opened file
	writable bool
}

// OpenMapped maps the whole file at filePath. Writes go straight to the
// mapping and reach the file on Sync or Close.
//
// If mapping a raw disk device, ensure the path is correct and the program has root privileges.
func OpenMapped(filePath string, writable bool) (*Mapped, error) {
	flags, prot := os.O_RDONLY, unix.PROT_READ
	if writable {
		flags, prot = os.O_RDWR, unix.PROT_READ|unix.PROT_WRITE
	}

	f, err := os.OpenFile(filePath, flags, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get file info for %q: %w", filePath, err)
	}
	fileSize := int(fi.Size())

	if fileSize < SectorSize {
		f.Close()
		return nil, fmt.Errorf("file %q is too small to map (%d bytes)", filePath, fileSize)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, fileSize, prot, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mmap file %q with length %d: %w", filePath, fileSize, err)
	}

	return &Mapped{
		Data:     data,
		File:     f,
		writable: writable,
	}, nil
}

func (m *Mapped) Init() error {
	if m.Data == nil {
		return fmt.Errorf("mapping is closed")
	}
	return nil
}

func (m *Mapped) ReadSectors(buf []byte, sector uint32, count uint32) error {
	off, n, err := checkTransfer(buf, sector, count, int64(len(m.Data)))
	if err != nil {
		return err
	}
	copy(buf[:n], m.Data[off:off+int64(n)])
	return nil
}

func (m *Mapped) WriteSectors(buf []byte, sector uint32, count uint32) error {
	if !m.writable {
		return ErrReadOnly
	}
	off, n, err := checkTransfer(buf, sector, count, int64(len(m.Data)))
	if err != nil {
		return err
	}
	copy(m.Data[off:off+int64(n)], buf[:n])
	return nil
}

// Sync flushes dirty pages of a writable mapping to the file.
func (m *Mapped) Sync() error {
	if !m.writable || m.Data == nil {
		return nil
	}
	if err := unix.Msync(m.Data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("failed to msync: %w", err)
	}
	return nil
}

// Close unmaps the memory region and closes the underlying file.
func (m *Mapped) Close() error {
	var err error
	if m.Data != nil {
		if err = m.Sync(); err != nil {
			return err
		}
		err = unix.Munmap(m.Data)
		if err != nil {
			return fmt.Errorf("failed to munmap: %w", err)
		}
		m.Data = nil
	}

	if m.File != nil {
		closeErr := m.File.Close()
		if closeErr != nil {
			return fmt.Errorf("failed to close file: %w", closeErr)
		}
		m.File = nil
	}
	return nil
}

func openMapped(path string, writable bool) (Device, io.Closer, error) {
	m, err := OpenMapped(path, writable)
	if err != nil {
		return nil, nil, err
	}
	return m, m, nil
}
