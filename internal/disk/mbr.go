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
package disk

import (
	"encoding/binary"
	"errors"
	"fmt"

	fmtutil "github.com/ostafen/sdfat/pkg/util/format"
)

const (
	SectorSize = 512

	BootSignature       = 0xAA55
	BootSignatureOffset = 0x1FE

	partitionTableOffset = 0x1BE
	partitionEntrySize   = 16
	partitionEntries     = 4
)

var (
	ErrBadSignature = errors.New("invalid boot signature")
	ErrNoPartition  = errors.New("no partition found in the partition table")
)

// MBRPartitionEntry represents a single 16-byte entry in the MBR's partition table.
// All multi-byte fields are stored as byte arrays to explicitly handle little-endian
// conversion when reading from the raw MBR byte slice.
type MBRPartitionEntry struct {
	BootIndicator uint8        // 0x00: 0x80 for bootable, 0x00 for inactive
	StartCHS      [3]byte      // 0x01: Starting Cylinder-Head-Sector address
	PartitionType MBRPartition // 0x04: Partition type ID (e.g., 0x0B for FAT32, 0x83 for Linux)
	EndCHS        [3]byte      // 0x05: Ending Cylinder-Head-Sector address
	StartLBA      [4]byte      // 0x08: Starting Logical Block Address (LBA) - uint32, Little-Endian
	TotalSectors  [4]byte      // 0x0C: Total sectors in partition - uint32, Little-Endian
}

// ReadStartLBA returns the starting LBA of the partition.
func (p *MBRPartitionEntry) ReadStartLBA() uint32 {
	return binary.LittleEndian.Uint32(p.StartLBA[:])
}

// ReadTotalSectors returns the total number of sectors in the partition.
func (p *MBRPartitionEntry) ReadTotalSectors() uint32 {
	return binary.LittleEndian.Uint32(p.TotalSectors[:])
}

// IsEmpty reports whether the slot is unused.
func (p *MBRPartitionEntry) IsEmpty() bool {
	return p.PartitionType == PartitionTypeEmpty
}

// String provides a human-readable representation of an MBRPartitionEntry.
func (p *MBRPartitionEntry) String() string {
	bootable := "No"
	if p.BootIndicator == 0x80 {
		bootable = "Yes"
	}
	size := int64(p.ReadTotalSectors()) * SectorSize
	return fmt.Sprintf("  Bootable: %s (0x%02X)\n"+
		"  Partition Type: 0x%02X (%s)\n"+
		"  Start LBA: %d\n"+
		"  Total Sectors: %d\n"+
		"  Size: %d bytes (%s)",
		bootable, p.BootIndicator,
		uint8(p.PartitionType), p.PartitionType.Name(),
		p.ReadStartLBA(),
		p.ReadTotalSectors(),
		size,
		fmtutil.FormatBytes(size))
}

// MBR represents the Master Boot Record structure.
type MBR struct {
	BootCode         [440]byte            // 0x000-0x1B7: Bootstrap code
	DiskSignature    [4]byte              // 0x1B8-0x1BB: Optional 32-bit disk signature
	Reserved         [2]byte              // 0x1BC-0x1BD: Usually 0x0000
	PartitionEntries [4]MBRPartitionEntry // 0x1BE-0x1FD: Four 16-byte partition entries
	Signature        [2]byte              // 0x1FE-0x1FF: MBR signature (0x55AA)
}

// ReadDiskSignature returns the disk signature as a uint32.
func (m *MBR) ReadDiskSignature() uint32 {
	return binary.LittleEndian.Uint32(m.DiskSignature[:])
}

// ReadSignature returns the MBR signature (should be 0xAA55).
func (m *MBR) ReadSignature() uint16 {
	return binary.LittleEndian.Uint16(m.Signature[:])
}

// FirstPartition returns the first non-empty slot of the partition table.
// Empty slots are skipped; selecting among several partitions is left to the caller.
func (m *MBR) FirstPartition() (Partition, error) {
	for i := range m.PartitionEntries {
		e := &m.PartitionEntries[i]
		if e.IsEmpty() {
			continue
		}
		return Partition{
			Num:      i,
			Type:     e.PartitionType,
			StartLBA: e.ReadStartLBA(),
			Length:   e.ReadTotalSectors(),
		}, nil
	}
	return Partition{}, ErrNoPartition
}

// String provides a human-readable representation of the MBR.
func (m *MBR) String() string {
	s := fmt.Sprintf("--- Master Boot Record (MBR) ---\n"+
		"Disk Signature: 0x%08X\n"+
		"MBR Signature: 0x%04X (Expected: 0xAA55)\n\n"+
		"--- Partition Table Entries ---",
		m.ReadDiskSignature(), m.ReadSignature())

	for i, entry := range m.PartitionEntries {
		s += fmt.Sprintf("\nPartition %d:\n%s", i+1, entry.String())
	}
	return s
}

// ParseMBR parses a 512-byte slice into an MBR struct.
// The signature is validated before the partition table is decoded, so a
// sector with a bad signature never yields partition data.
func ParseMBR(data []byte) (*MBR, error) {
	if len(data) != SectorSize {
		return nil, fmt.Errorf("input data slice size mismatch: expected %d bytes, got %d bytes", SectorSize, len(data))
	}

	var mbr MBR

	copy(mbr.Signature[:], data[BootSignatureOffset:BootSignatureOffset+2])
	if mbr.ReadSignature() != BootSignature {
		return nil, fmt.Errorf("%w: expected 0xAA55, got 0x%04X", ErrBadSignature, mbr.ReadSignature())
	}

	copy(mbr.BootCode[:], data[0x000:0x1B8])
	copy(mbr.DiskSignature[:], data[0x1B8:0x1BC])
	copy(mbr.Reserved[:], data[0x1BC:partitionTableOffset])

	for i := 0; i < partitionEntries; i++ {
		entryOffset := partitionTableOffset + (i * partitionEntrySize)
		entryBytes := data[entryOffset : entryOffset+partitionEntrySize]

		mbr.PartitionEntries[i].BootIndicator = entryBytes[0x00]
		copy(mbr.PartitionEntries[i].StartCHS[:], entryBytes[0x01:0x04])
		mbr.PartitionEntries[i].PartitionType = MBRPartition(entryBytes[0x04])
		copy(mbr.PartitionEntries[i].EndCHS[:], entryBytes[0x05:0x08])
		copy(mbr.PartitionEntries[i].StartLBA[:], entryBytes[0x08:0x0C])
		copy(mbr.PartitionEntries[i].TotalSectors[:], entryBytes[0x0C:0x10])
	}
	return &mbr, nil
}

// PutPartitionEntry encodes a partition table slot into a raw MBR sector.
func PutPartitionEntry(data []byte, slot int, typ MBRPartition, startLBA, sectors uint32) {
	off := partitionTableOffset + slot*partitionEntrySize
	entry := data[off : off+partitionEntrySize]
	entry[0x04] = byte(typ)
	binary.LittleEndian.PutUint32(entry[0x08:0x0C], startLBA)
	binary.LittleEndian.PutUint32(entry[0x0C:0x10], sectors)
}

// PutSignature stamps the 0xAA55 boot signature at the end of a sector.
func PutSignature(data []byte) {
	binary.LittleEndian.PutUint16(data[BootSignatureOffset:], BootSignature)
}

type MBRPartition uint8

const (
	PartitionTypeEmpty              MBRPartition = 0x00
	PartitionTypeFAT12              MBRPartition = 0x01
	PartitionTypeFAT16LessThan32MB  MBRPartition = 0x04
	PartitionTypeExtendedCHS        MBRPartition = 0x05
	PartitionTypeFAT16              MBRPartition = 0x06
	PartitionTypeNTFSHPFSexFATQNX   MBRPartition = 0x07
	PartitionTypeFAT32CHS           MBRPartition = 0x0B
	PartitionTypeFAT32LBA           MBRPartition = 0x0C
	PartitionTypeFAT16LBA           MBRPartition = 0x0E
	PartitionTypeExtendedLBA        MBRPartition = 0x0F
	PartitionTypeLinuxSwap          MBRPartition = 0x82
	PartitionTypeLinuxFilesystem    MBRPartition = 0x83
	PartitionTypeGPT                MBRPartition = 0xEE
	PartitionTypeEFISystemPartition MBRPartition = 0xEF
)

// IsFAT32 reports whether the partition type id announces a FAT32 volume.
func (id MBRPartition) IsFAT32() bool {
	return id == PartitionTypeFAT32CHS || id == PartitionTypeFAT32LBA
}

// Name maps common partition type IDs to names.
func (id MBRPartition) Name() string {
	switch id {
	case PartitionTypeEmpty:
		return "Empty"
	case PartitionTypeFAT12:
		return "FAT12"
	case PartitionTypeFAT16LessThan32MB:
		return "FAT16 (<32MB)"
	case PartitionTypeExtendedCHS:
		return "Extended (CHS)"
	case PartitionTypeFAT16:
		return "FAT16 (>32MB)"
	case PartitionTypeNTFSHPFSexFATQNX:
		return "NTFS/HPFS/exFAT/QNX"
	case PartitionTypeFAT32CHS:
		return "FAT32 (CHS)"
	case PartitionTypeFAT32LBA:
		return "FAT32 (LBA)"
	case PartitionTypeFAT16LBA:
		return "FAT16 (LBA)"
	case PartitionTypeExtendedLBA:
		return "Extended (LBA)"
	case PartitionTypeLinuxSwap:
		return "Linux swap"
	case PartitionTypeLinuxFilesystem:
		return "Linux filesystem"
	case PartitionTypeGPT:
		return "GPT Protective MBR"
	case PartitionTypeEFISystemPartition:
		return "EFI System Partition"
	default:
		return "Unknown"
	}
}
