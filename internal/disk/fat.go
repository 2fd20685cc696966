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
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"
)

// File/Directory Entry Flags
const (
	EndOfDirFlag = 0x00 // Marks the end of the directory when in name[0]
	DeletedFlag  = 0xE5 // Marks a file/directory as deleted when in name[0]
)

// File/Directory Attributes (bit flags)
const (
	AttrReadOnly = 0x01
	AttrHidden   = 0x02
	AttrSystem   = 0x04
	AttrVolume   = 0x08
	AttrDir      = 0x10
	AttrArchive  = 0x20

	// AttrLongName marks a long file name fragment.
	AttrLongName = AttrReadOnly | AttrHidden | AttrSystem | AttrVolume
)

const (
	DirEntrySize    = 32
	DirEntryNameLen = 11

	// Byte offsets inside a 32-byte directory entry.
	DirEntryWriteTimeOffset = 0x16
	DirEntryWriteDateOffset = 0x18
	DirEntryFileSizeOffset  = 0x1C

	// LongNameChars is the number of UTF-16 units carried by one long name fragment.
	LongNameChars = 13
)

// FAT32 cluster chain markers.
const (
	FAT32EntryMask = 0x0FFFFFFF
	FAT32Bad       = 0x0FFFFFF7
	FAT32EOC       = 0x0FFFFFF8
	FAT32LastEntry = 0x0FFFFFFF
)

// FatBootSector represents the FAT32 partition boot sector (BIOS Parameter Block - BPB).
type FatBootSector struct {
	Ignored           [3]byte // 0x00 Boot strap short or near jump
	SystemID          [8]byte // 0x03 OEM name
	SectorSize        uint16  // 0x0B Bytes per logical sector
	SectorsPerCluster uint8   // 0x0D Sectors/cluster
	Reserved          uint16  // 0x0E Reserved sectors
	Fats              uint8   // 0x10 Number of FATs
	DirEntries        uint16  // 0x11 Root directory entries (0 for FAT32)
	Sectors           uint16  // 0x13 Number of sectors (0 for FAT32)
	Media             uint8   // 0x15 Media code
	FatLength         uint16  // 0x16 Sectors/FAT (0 for FAT32)
	SecsTrack         uint16  // 0x18 Sectors per track
	Heads             uint16  // 0x1A Number of heads
	Hidden            uint32  // 0x1C Hidden sectors
	TotalSect         uint32  // 0x20 Total number of sectors

	// The following fields are only used by FAT32
	Fat32Length  uint32   // 0x24 Sectors/FAT
	Flags        uint16   // 0x28 Bit 8: FAT mirroring, low 4: active FAT
	Version      uint16   // 0x2A Major, minor filesystem version
	RootCluster  uint32   // 0x2C First cluster in root directory
	InfoSector   uint16   // 0x30 Filesystem info sector
	BackupBoot   uint16   // 0x32 Backup boot sector
	BPBReserved  [12]byte // 0x34 Unused
	BSDrvNum     uint8    // 0x40 Drive number
	BSReserved1  uint8    // 0x41 Reserved
	BSBootSig    uint8    // 0x42 Extended boot signature (0x29)
	BSVolID      uint32   // 0x43 Volume serial number
	BSVolLab     [11]byte // 0x47 Volume label
	BSFilSysType [8]byte  // 0x52 Filesystem type ("FAT32   ")

	Nothing [420]byte // 0x5A Boot code
	Marker  uint16    // 0x1FE Boot sector signature (0xAA55)
}

// VolumeLabel returns the label with its space padding removed.
func (b *FatBootSector) VolumeLabel() string {
	return string(bytes.TrimRight(b.BSVolLab[:], " \x00"))
}

func (b *FatBootSector) String() string {
	return fmt.Sprintf("FAT Boot Sector:\n"+
		"  System ID: %s\n"+
		"  Sector Size: %d bytes\n"+
		"  Sectors Per Cluster: %d\n"+
		"  Reserved Sectors: %d\n"+
		"  Number of FATs: %d\n"+
		"  Media Type: 0x%02X\n"+
		"  Total Sectors (32-bit): %d\n"+
		"  FAT32 Length: %d\n"+
		"  FAT32 Root Cluster: %d\n"+
		"  FS Info Sector: %d\n"+
		"  Backup Boot Sector: %d\n"+
		"  Volume Label: %s\n"+
		"  Filesystem Type: %s",
		bytes.TrimRight(b.SystemID[:], " \x00"), b.SectorSize, b.SectorsPerCluster, b.Reserved,
		b.Fats, b.Media, b.TotalSect, b.Fat32Length, b.RootCluster,
		b.InfoSector, b.BackupBoot,
		b.VolumeLabel(), bytes.TrimRight(b.BSFilSysType[:], " \x00"))
}

// ReadFatBootSectorFrom decodes a FAT32 boot sector and validates its signature.
func ReadFatBootSectorFrom(data []byte) (*FatBootSector, error) {
	if len(data) != SectorSize {
		return nil, fmt.Errorf("input data slice size mismatch: expected %d bytes, got %d bytes",
			SectorSize, len(data))
	}

	var bs FatBootSector
	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &bs)
	if err != nil {
		return nil, fmt.Errorf("error reading into FatBootSector with binary.Read: %w", err)
	}

	if bs.Marker != BootSignature {
		return nil, fmt.Errorf("%w: expected 0xAA55, got 0x%04X", ErrBadSignature, bs.Marker)
	}
	return &bs, nil
}

// DirEntry is a 32-byte short (8.3) directory entry.
type DirEntry struct {
	Name            [DirEntryNameLen]byte // 0x00 8.3 name, space padded
	Attributes      uint8                 // 0x0B
	NTReserved      uint8                 // 0x0C
	CreateTimeTenth uint8                 // 0x0D
	CreateTime      uint16                // 0x0E
	CreateDate      uint16                // 0x10
	LastAccessDate  uint16                // 0x12
	FirstClusterHI  uint16                // 0x14
	WriteTime       uint16                // 0x16
	WriteDate       uint16                // 0x18
	FirstClusterLO  uint16                // 0x1A
	FileSize        uint32                // 0x1C
}

// FirstCluster combines the high and low cluster words.
func (e *DirEntry) FirstCluster() uint32 {
	return uint32(e.FirstClusterHI)<<16 | uint32(e.FirstClusterLO)
}

func (e *DirEntry) IsDeleted() bool  { return e.Name[0] == DeletedFlag }
func (e *DirEntry) IsLongName() bool { return e.Attributes == AttrLongName }

// LongDirEntry is a long file name fragment. It always precedes the short
// entry it belongs to.
type LongDirEntry struct {
	Order         uint8     // 0x00 Sequence number, 0x40 marks the last fragment
	Name1         [5]uint16 // 0x01
	Attributes    uint8     // 0x0B Always 0x0F
	Type          uint8     // 0x0C
	Checksum      uint8     // 0x0D Checksum of the short name
	Name2         [6]uint16 // 0x0E
	FirstClusterL uint16    // 0x1A Always 0
	Name3         [2]uint16 // 0x1C
}

// Chars returns the 13 raw UTF-16 units carried by the fragment.
func (l *LongDirEntry) Chars() [LongNameChars]uint16 {
	var out [LongNameChars]uint16
	n := copy(out[:], l.Name1[:])
	n += copy(out[n:], l.Name2[:])
	copy(out[n:], l.Name3[:])
	return out
}

// ParseDirEntry decodes a raw 32-byte directory entry.
func ParseDirEntry(raw []byte) (DirEntry, error) {
	var e DirEntry
	if len(raw) < DirEntrySize {
		return e, fmt.Errorf("directory entry too short: %d bytes", len(raw))
	}
	err := restruct.Unpack(raw[:DirEntrySize], binary.LittleEndian, &e)
	return e, err
}

// ParseLongDirEntry decodes a raw 32-byte long name fragment.
func ParseLongDirEntry(raw []byte) (LongDirEntry, error) {
	var e LongDirEntry
	if len(raw) < DirEntrySize {
		return e, fmt.Errorf("long directory entry too short: %d bytes", len(raw))
	}
	err := restruct.Unpack(raw[:DirEntrySize], binary.LittleEndian, &e)
	return e, err
}

// PackDirEntry encodes a directory entry into its 32-byte on-disk form.
func PackDirEntry(e *DirEntry) ([]byte, error) {
	return restruct.Pack(binary.LittleEndian, e)
}

// PackLongDirEntry encodes a long name fragment into its 32-byte on-disk form.
func PackLongDirEntry(e *LongDirEntry) ([]byte, error) {
	return restruct.Pack(binary.LittleEndian, e)
}
