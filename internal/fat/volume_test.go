package fat

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/ostafen/sdfat/internal/blockdev"
	"github.com/ostafen/sdfat/internal/disk"
	"github.com/ostafen/sdfat/internal/fat/fattest"
)

func mount(t *testing.T, b *fattest.Builder, opts ...Option) (*Volume, *blockdev.Memory) {
	t.Helper()

	mem, err := b.Build()
	require.NoError(t, err)

	v, err := Mount(mem, opts...)
	require.NoError(t, err)
	return v, mem
}

func TestMountGeometry(t *testing.T) {
	v, mem := mount(t, fattest.New(fattest.WithLabel("CARD")))

	geo := v.Geometry()
	require.Equal(t, uint32(fattest.PartitionStart), geo.PartitionStart)
	require.Equal(t, uint32(512), geo.BytesPerSector)
	require.Equal(t, uint32(1), geo.SectorsPerCluster)
	require.Equal(t, uint32(2), geo.NumFATs)
	require.Equal(t, uint32(1), geo.SectorsPerFAT)
	require.Equal(t, uint32(12), geo.FATStart)
	require.Equal(t, uint32(14), geo.DataStart)
	require.Equal(t, uint32(2), geo.RootCluster)
	require.Equal(t, uint32(14), geo.RootDirSector)
	require.Equal(t, uint32(70), geo.TotalSectors)
	require.Equal(t, uint32(64), geo.ClusterCount())
	require.Equal(t, uint32(512), geo.ClusterSize())
	require.Equal(t, "CARD", geo.VolumeLabel)

	require.Equal(t, uint32(fattest.PartitionStart), v.Partition().StartLBA)
	require.True(t, v.Partition().Type.IsFAT32())
	require.Equal(t, 0, v.OpenFiles())
	require.Equal(t, 1, mem.Inits)
}

func TestMountClusterToSector(t *testing.T) {
	v, _ := mount(t, fattest.New(fattest.WithSectorsPerCluster(4)))

	geo := v.Geometry()
	require.Equal(t, geo.DataStart, geo.ClusterToSector(2))
	require.Equal(t, geo.DataStart+4, geo.ClusterToSector(3))
	require.Equal(t, geo.DataStart+40, geo.ClusterToSector(12))
}

func TestMountRejectsBadDiskSignature(t *testing.T) {
	ctrl := gomock.NewController(t)
	dev := blockdev.NewMockDevice(ctrl)

	// Only sector 0 may be touched.
	dev.EXPECT().Init().Return(nil)
	dev.EXPECT().ReadSectors(gomock.Any(), uint32(0), uint32(1)).DoAndReturn(
		func(buf []byte, sector, count uint32) error {
			clear(buf[:disk.SectorSize])
			return nil
		})

	_, err := Mount(dev)
	require.ErrorIs(t, err, ErrInvalidDiskSignature)
}

func TestMountInitFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	dev := blockdev.NewMockDevice(ctrl)

	errNoCard := errors.New("no card")
	dev.EXPECT().Init().Return(errNoCard)

	_, err := Mount(dev)
	require.ErrorIs(t, err, ErrDeviceIO)
	require.ErrorIs(t, err, errNoCard)
}

func TestMountInvalidOpenFileLimit(t *testing.T) {
	mem, err := fattest.New().Build()
	require.NoError(t, err)

	_, err = Mount(mem, WithMaxOpenFiles(0))
	require.Error(t, err)
	require.Equal(t, 0, mem.Inits)
}

func TestMountErrors(t *testing.T) {
	const bootSector = fattest.PartitionStart * disk.SectorSize

	tests := []struct {
		name  string
		patch func(img []byte)
		err   error
	}{
		{
			name:  "no partition",
			patch: func(img []byte) { clear(img[0x1BE : 0x1BE+16]) },
			err:   ErrNoPartition,
		},
		{
			name:  "bad partition signature",
			patch: func(img []byte) { binary.LittleEndian.PutUint16(img[bootSector+0x1FE:], 0x1234) },
			err:   ErrInvalidPartitionSignature,
		},
		{
			name:  "total sectors mismatch",
			patch: func(img []byte) { binary.LittleEndian.PutUint32(img[bootSector+0x20:], 71) },
			err:   ErrUnsupportedGeometry,
		},
		{
			name:  "sector size",
			patch: func(img []byte) { binary.LittleEndian.PutUint16(img[bootSector+0x0B:], 4096) },
			err:   ErrUnsupportedGeometry,
		},
		{
			name:  "zero sectors per cluster",
			patch: func(img []byte) { img[bootSector+0x0D] = 0 },
			err:   ErrUnsupportedGeometry,
		},
		{
			name:  "no FATs",
			patch: func(img []byte) { img[bootSector+0x10] = 0 },
			err:   ErrUnsupportedGeometry,
		},
		{
			name:  "root cluster",
			patch: func(img []byte) { binary.LittleEndian.PutUint32(img[bootSector+0x2C:], 1) },
			err:   ErrUnsupportedGeometry,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mem, err := fattest.New().Build()
			require.NoError(t, err)

			tc.patch(mem.Bytes())

			_, err = Mount(mem)
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestMountNonFAT32PartitionType(t *testing.T) {
	v, _ := mount(t, fattest.New(fattest.WithPartitionType(disk.PartitionTypeLinuxFilesystem)))
	require.False(t, v.Partition().Type.IsFAT32())
}
