package fat

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/ostafen/sdfat/internal/blockdev"
)

func TestSectorCacheSkipsRepeatedReads(t *testing.T) {
	ctrl := gomock.NewController(t)
	dev := blockdev.NewMockDevice(ctrl)

	dev.EXPECT().ReadSectors(gomock.Any(), uint32(5), uint32(1)).Return(nil).Times(1)

	c := newSectorCache(dev)
	require.Equal(t, uint32(noSector), c.current)

	require.NoError(t, c.read(5))
	require.NoError(t, c.read(5))
	require.Equal(t, uint32(5), c.current)
}

func TestSectorCacheWriteKeepsBufferCoherent(t *testing.T) {
	ctrl := gomock.NewController(t)
	dev := blockdev.NewMockDevice(ctrl)

	dev.EXPECT().WriteSectors(gomock.Any(), uint32(7), uint32(1)).Return(nil)

	c := newSectorCache(dev)
	c.buf[0] = 0x42
	require.NoError(t, c.write(7))

	// The buffer now mirrors sector 7, no device read is expected.
	require.NoError(t, c.read(7))
	require.Equal(t, byte(0x42), c.buf[0])
}

func TestSectorCacheFailedReadInvalidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	dev := blockdev.NewMockDevice(ctrl)

	errBoom := errors.New("boom")
	gomock.InOrder(
		dev.EXPECT().ReadSectors(gomock.Any(), uint32(3), uint32(1)).Return(nil),
		dev.EXPECT().WriteSectors(gomock.Any(), uint32(3), uint32(1)).Return(errBoom),
		dev.EXPECT().ReadSectors(gomock.Any(), uint32(3), uint32(1)).Return(errBoom),
		dev.EXPECT().ReadSectors(gomock.Any(), uint32(3), uint32(1)).Return(nil),
	)

	c := newSectorCache(dev)
	require.NoError(t, c.read(3))

	err := c.write(3)
	require.ErrorIs(t, err, ErrDeviceIO)
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, uint32(noSector), c.current)

	require.ErrorIs(t, c.read(3), ErrDeviceIO)
	require.Equal(t, uint32(noSector), c.current)

	require.NoError(t, c.read(3))
	require.Equal(t, uint32(3), c.current)
}
