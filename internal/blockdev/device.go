// Package blockdev provides the raw sector transports a FAT volume is mounted on.
package blockdev

import (
	"errors"
	"fmt"
)

// SectorSize is the only sector size supported by the transports.
const SectorSize = 512

var (
	ErrShortBuffer = errors.New("buffer too small for the requested sectors")
	ErrOutOfRange  = errors.New("sector range out of device bounds")
	ErrReadOnly    = errors.New("device opened read-only")
)

// Device is the block I/O capability consumed by the filesystem core.
// Transfers are whole 512-byte sectors and block until complete.
//
// Generated mock using mockgen:
//
//	mockgen -source=device.go -destination=mock_device.go -package blockdev
type Device interface {
	Init() error
	ReadSectors(buf []byte, sector uint32, count uint32) error
	WriteSectors(buf []byte, sector uint32, count uint32) error
}

// checkTransfer validates a transfer against a device of size bytes.
func checkTransfer(buf []byte, sector, count uint32, size int64) (off int64, n int, err error) {
	n = int(count) * SectorSize
	if len(buf) < n {
		return 0, 0, fmt.Errorf("%w: need %d bytes, got %d", ErrShortBuffer, n, len(buf))
	}
	off = int64(sector) * SectorSize
	if off+int64(n) > size {
		return 0, 0, fmt.Errorf("%w: sectors [%d, %d) on a %d sector device", ErrOutOfRange, sector, uint64(sector)+uint64(count), size/SectorSize)
	}
	return off, n, nil
}
