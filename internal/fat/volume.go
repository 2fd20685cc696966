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
package fat

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ostafen/sdfat/internal/blockdev"
	"github.com/ostafen/sdfat/internal/disk"
)

const DefaultMaxOpenFiles = 32

// Geometry holds the layout of a mounted FAT32 partition.
// All sector numbers are absolute, counted from the start of the device.
type Geometry struct {
	PartitionStart    uint32
	TotalSectors      uint32
	BytesPerSector    uint32
	SectorsPerCluster uint32
	ReservedSectors   uint32
	NumFATs           uint32
	SectorsPerFAT     uint32
	FATStart          uint32
	DataStart         uint32
	RootCluster       uint32
	RootDirSector     uint32
	VolumeID          uint32
	VolumeLabel       string
}

// ClusterToSector returns the first sector of a data cluster. Clusters are numbered from 2.
func (g Geometry) ClusterToSector(cluster uint32) uint32 {
	return g.DataStart + (cluster-2)*g.SectorsPerCluster
}

// ClusterSize returns the size of a cluster in bytes.
func (g Geometry) ClusterSize() uint32 {
	return g.SectorsPerCluster * g.BytesPerSector
}

// ClusterCount returns the number of data clusters of the partition.
func (g Geometry) ClusterCount() uint32 {
	used := g.DataStart - g.PartitionStart
	if g.SectorsPerCluster == 0 || used >= g.TotalSectors {
		return 0
	}
	return (g.TotalSectors - used) / g.SectorsPerCluster
}

type options struct {
	logger       *slog.Logger
	maxOpenFiles int
	clock        func() time.Time
}

type Option func(*options)

// WithLogger sets the logger receiving debug records about volume activity.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMaxOpenFiles sets the capacity of the open file table.
func WithMaxOpenFiles(n int) Option {
	return func(o *options) {
		o.maxOpenFiles = n
	}
}

// WithClock makes writes stamp the last modification time of directory entries.
// Without it, timestamps are left untouched.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// Volume is a mounted FAT32 partition. It owns the sector cache and the
// open file table, and serializes every operation with a mutex.
type Volume struct {
	mu sync.Mutex

	dev   blockdev.Device
	cache *sectorCache
	files *fileTable
	geo   Geometry
	part  disk.Partition
	log   *slog.Logger
	now   func() time.Time
}

// Mount initializes dev, locates the first partition of the MBR and validates
// its FAT32 boot sector.
func Mount(dev blockdev.Device, opts ...Option) (*Volume, error) {
	o := options{
		maxOpenFiles: DefaultMaxOpenFiles,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.maxOpenFiles <= 0 {
		return nil, fmt.Errorf("invalid open file table capacity: %d", o.maxOpenFiles)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("%w: init: %w", ErrDeviceIO, err)
	}

	v := &Volume{
		dev:   dev,
		cache: newSectorCache(dev),
		log:   o.logger,
		now:   o.clock,
	}

	if err := v.cache.read(0); err != nil {
		return nil, err
	}

	mbr, err := disk.ParseMBR(v.cache.buf[:])
	if errors.Is(err, disk.ErrBadSignature) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDiskSignature, err)
	}
	if err != nil {
		return nil, err
	}

	for i, e := range mbr.PartitionEntries {
		if e.IsEmpty() {
			continue
		}
		v.log.Debug("partition entry",
			"slot", i,
			"type", e.PartitionType.Name(),
			"start", e.ReadStartLBA(),
			"sectors", e.ReadTotalSectors(),
		)
	}

	part, err := mbr.FirstPartition()
	if err != nil {
		return nil, err
	}
	if !part.Type.IsFAT32() {
		v.log.Warn("partition type is not FAT32, trying anyway", "type", part.Type.Name())
	}

	if err := v.cache.read(part.StartLBA); err != nil {
		return nil, err
	}

	bs, err := disk.ReadFatBootSectorFrom(v.cache.buf[:])
	if errors.Is(err, disk.ErrBadSignature) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPartitionSignature, err)
	}
	if err != nil {
		return nil, err
	}

	if err := checkBootSector(bs, part); err != nil {
		return nil, err
	}

	fatStart := part.StartLBA + uint32(bs.Reserved)
	v.geo = Geometry{
		PartitionStart:    part.StartLBA,
		TotalSectors:      bs.TotalSect,
		BytesPerSector:    uint32(bs.SectorSize),
		SectorsPerCluster: uint32(bs.SectorsPerCluster),
		ReservedSectors:   uint32(bs.Reserved),
		NumFATs:           uint32(bs.Fats),
		SectorsPerFAT:     bs.Fat32Length,
		FATStart:          fatStart,
		DataStart:         fatStart + uint32(bs.Fats)*bs.Fat32Length,
		RootCluster:       bs.RootCluster,
		VolumeID:          bs.BSVolID,
		VolumeLabel:       bs.VolumeLabel(),
	}
	v.geo.RootDirSector = v.geo.ClusterToSector(bs.RootCluster)
	v.part = part
	v.files = newFileTable(o.maxOpenFiles)

	v.log.Debug("mounted volume",
		"partition", part.Num,
		"fat_start", v.geo.FATStart,
		"data_start", v.geo.DataStart,
		"root_cluster", v.geo.RootCluster,
		"root_sector", v.geo.RootDirSector,
		"sectors_per_cluster", v.geo.SectorsPerCluster,
		"label", v.geo.VolumeLabel,
	)
	return v, nil
}

func checkBootSector(bs *disk.FatBootSector, part disk.Partition) error {
	switch {
	case bs.TotalSect != part.Length:
		return fmt.Errorf("%w: boot sector reports %d sectors, partition table %d",
			ErrUnsupportedGeometry, bs.TotalSect, part.Length)
	case bs.SectorSize != disk.SectorSize:
		return fmt.Errorf("%w: %d bytes per sector", ErrUnsupportedGeometry, bs.SectorSize)
	case bs.SectorsPerCluster == 0:
		return fmt.Errorf("%w: zero sectors per cluster", ErrUnsupportedGeometry)
	case bs.Fats == 0:
		return fmt.Errorf("%w: no FAT copies", ErrUnsupportedGeometry)
	case bs.RootCluster < 2:
		return fmt.Errorf("%w: root cluster %d", ErrUnsupportedGeometry, bs.RootCluster)
	}
	return nil
}

// Geometry returns the layout of the mounted partition.
func (v *Volume) Geometry() Geometry {
	return v.geo
}

// Partition returns the partition table entry the volume was mounted from.
func (v *Volume) Partition() disk.Partition {
	return v.part
}

// OpenFiles returns the number of handles currently in use.
func (v *Volume) OpenFiles() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.files.inUse()
}
