package fat

import (
	"fmt"
	"math"

	"github.com/ostafen/sdfat/internal/blockdev"
	"github.com/ostafen/sdfat/internal/disk"
)

// noSector marks an empty cache. It can never be a valid sector number
// for a single-sector transfer.
const noSector = math.MaxUint32

// sectorCache is the single sector buffer shared by every component of a volume.
// It remembers which sector it holds so that repeated reads of the same sector
// do not hit the device. Any access to another sector evicts it.
type sectorCache struct {
	dev     blockdev.Device
	buf     [disk.SectorSize]byte
	current uint32
}

func newSectorCache(dev blockdev.Device) *sectorCache {
	return &sectorCache{
		dev:     dev,
		current: noSector,
	}
}

// read makes the buffer hold the contents of sector.
func (c *sectorCache) read(sector uint32) error {
	if sector == c.current {
		return nil
	}

	if err := c.dev.ReadSectors(c.buf[:], sector, 1); err != nil {
		c.current = noSector
		return fmt.Errorf("%w: read sector %d: %w", ErrDeviceIO, sector, err)
	}
	c.current = sector
	return nil
}

// write stores the buffer to sector. After a successful write the buffer
// matches the device contents of sector, so it becomes the cached sector.
func (c *sectorCache) write(sector uint32) error {
	if err := c.dev.WriteSectors(c.buf[:], sector, 1); err != nil {
		c.current = noSector
		return fmt.Errorf("%w: write sector %d: %w", ErrDeviceIO, sector, err)
	}
	c.current = sector
	return nil
}
