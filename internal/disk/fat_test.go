package disk_test

import (
	"encoding/binary"
	"testing"

	"github.com/ostafen/sdfat/internal/disk"
	"github.com/stretchr/testify/require"
)

func TestReadFatBootSectorFrom(t *testing.T) {
	data := make([]byte, disk.SectorSize)
	binary.LittleEndian.PutUint16(data[0x0B:], 512)
	data[0x0D] = 8
	binary.LittleEndian.PutUint16(data[0x0E:], 32)
	data[0x10] = 2
	binary.LittleEndian.PutUint32(data[0x20:], 131072)
	binary.LittleEndian.PutUint32(data[0x24:], 1009)
	binary.LittleEndian.PutUint32(data[0x2C:], 2)
	copy(data[0x47:], "SDCARD     ")
	copy(data[0x52:], "FAT32   ")
	disk.PutSignature(data)

	bs, err := disk.ReadFatBootSectorFrom(data)
	require.NoError(t, err)
	require.Equal(t, uint16(512), bs.SectorSize)
	require.Equal(t, uint8(8), bs.SectorsPerCluster)
	require.Equal(t, uint16(32), bs.Reserved)
	require.Equal(t, uint8(2), bs.Fats)
	require.Equal(t, uint32(131072), bs.TotalSect)
	require.Equal(t, uint32(1009), bs.Fat32Length)
	require.Equal(t, uint32(2), bs.RootCluster)
	require.Equal(t, "SDCARD", bs.VolumeLabel())
}

func TestReadFatBootSectorBadMarker(t *testing.T) {
	_, err := disk.ReadFatBootSectorFrom(make([]byte, disk.SectorSize))
	require.ErrorIs(t, err, disk.ErrBadSignature)
}

func TestDirEntryRoundTrip(t *testing.T) {
	e := disk.DirEntry{
		Attributes:     disk.AttrArchive,
		FirstClusterHI: 0x0001,
		FirstClusterLO: 0x0002,
		WriteTime:      0x5A21,
		WriteDate:      0x4C2F,
		FileSize:       1234,
	}
	copy(e.Name[:], "HELLO   TXT")

	raw, err := disk.PackDirEntry(&e)
	require.NoError(t, err)
	require.Len(t, raw, disk.DirEntrySize)
	require.Equal(t, uint32(1234), binary.LittleEndian.Uint32(raw[disk.DirEntryFileSizeOffset:]))
	require.Equal(t, uint16(0x0002), binary.LittleEndian.Uint16(raw[0x1A:]))

	got, err := disk.ParseDirEntry(raw)
	require.NoError(t, err)
	require.Equal(t, e, got)
	require.Equal(t, uint32(0x00010002), got.FirstCluster())
	require.False(t, got.IsLongName())
	require.False(t, got.IsDeleted())
}

func TestLongDirEntryChars(t *testing.T) {
	raw := make([]byte, disk.DirEntrySize)
	raw[0] = 0x41
	raw[0x0B] = disk.AttrLongName
	units := []uint16{'h', 'e', 'l', 'l', 'o', '.', 't', 'x', 't', 0, 0xFFFF, 0xFFFF, 0xFFFF}
	offsets := []int{1, 3, 5, 7, 9, 14, 16, 18, 20, 22, 24, 28, 30}
	for i, off := range offsets {
		binary.LittleEndian.PutUint16(raw[off:], units[i])
	}

	l, err := disk.ParseLongDirEntry(raw)
	require.NoError(t, err)
	require.Equal(t, uint8(0x41), l.Order)
	require.Equal(t, uint8(disk.AttrLongName), l.Attributes)

	chars := l.Chars()
	require.Equal(t, units, chars[:])
}
