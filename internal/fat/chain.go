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
	"encoding/binary"
	"fmt"

	"github.com/ostafen/sdfat/internal/disk"
)

// EndOfChain is returned by GetCluster when the chain ends before the requested offset.
const EndOfChain uint32 = 0xFFFFFFFF

func isEndOfChain(entry uint32) bool {
	return entry&disk.FAT32EntryMask >= disk.FAT32EOC
}

// entryInFAT reads the FAT entry of cluster from the first FAT copy.
func (v *Volume) entryInFAT(cluster uint32) (uint32, error) {
	byteOffset := uint64(cluster) * 4
	sector := v.geo.FATStart + uint32(byteOffset/uint64(v.geo.BytesPerSector))
	off := byteOffset % uint64(v.geo.BytesPerSector)

	if err := v.cache.read(sector); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(v.cache.buf[off : off+4]), nil
}

// getCluster follows offset links starting at first. If the chain ends
// earlier, it returns EndOfChain together with the number of links walked.
func (v *Volume) getCluster(first, offset uint32) (cluster, reached uint32, err error) {
	cluster = first
	for i := uint32(0); i < offset; i++ {
		entry, err := v.entryInFAT(cluster)
		if err != nil {
			return 0, i, err
		}
		if isEndOfChain(entry) {
			return EndOfChain, i, nil
		}

		next := entry & disk.FAT32EntryMask
		if next < 2 || next == disk.FAT32Bad {
			return 0, i, fmt.Errorf("%w: cluster %d links to 0x%08X", ErrBrokenChain, cluster, entry)
		}
		cluster = next
	}
	return cluster, offset, nil
}

// chainCluster is like getCluster but treats a short chain as an error.
func (v *Volume) chainCluster(first, offset uint32) (uint32, error) {
	switch first {
	case 0:
		return 0, fmt.Errorf("%w: no clusters allocated", ErrShortChain)
	case 1:
		return 0, fmt.Errorf("%w: chain starts at cluster %d", ErrBrokenChain, first)
	}

	cluster, reached, err := v.getCluster(first, offset)
	if err != nil {
		return 0, err
	}
	if reached != offset {
		return 0, fmt.Errorf("%w: chain at cluster %d has %d links, wanted %d",
			ErrShortChain, first, reached, offset)
	}
	return cluster, nil
}

// GetCluster returns the cluster found offset links after first.
// When the chain is shorter, cluster is EndOfChain and reached is less than offset.
func (v *Volume) GetCluster(first, offset uint32) (cluster, reached uint32, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.getCluster(first, offset)
}

// Run is a contiguous extent of file data on the device.
type Run struct {
	FileOffset uint64
	DiskOffset uint64
	Length     uint64
}

// runs maps size bytes of the chain starting at first to contiguous device extents.
func (v *Volume) runs(first, size uint32) ([]Run, error) {
	if size == 0 {
		return nil, nil
	}

	clusterSize := v.geo.ClusterSize()
	clusters := (size + clusterSize - 1) / clusterSize

	cluster := first
	if cluster < 2 {
		return nil, fmt.Errorf("%w: chain starts at cluster %d", ErrBrokenChain, first)
	}

	var (
		runs      []Run
		remaining = uint64(size)
	)
	for i := uint32(0); i < clusters; i++ {
		if i > 0 {
			next, err := v.chainCluster(cluster, 1)
			if err != nil {
				return runs, err
			}
			cluster = next
		}

		length := min(uint64(clusterSize), remaining)
		diskOffset := uint64(v.geo.ClusterToSector(cluster)) * uint64(v.geo.BytesPerSector)

		if n := len(runs); n > 0 && runs[n-1].DiskOffset+runs[n-1].Length == diskOffset {
			runs[n-1].Length += length
		} else {
			runs = append(runs, Run{
				FileOffset: uint64(size) - remaining,
				DiskOffset: diskOffset,
				Length:     length,
			})
		}
		remaining -= length
	}
	return runs, nil
}
