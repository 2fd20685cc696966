package fat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ostafen/sdfat/internal/disk"
	"github.com/ostafen/sdfat/internal/fat/fattest"
)

func TestGetCluster(t *testing.T) {
	b := fattest.New().
		SetFAT(20, 25).
		SetFAT(25, 29).
		SetFAT(29, disk.FAT32LastEntry).
		SetFAT(40, 0xFFFFFFFF)

	v, _ := mount(t, b)

	tests := []struct {
		first   uint32
		offset  uint32
		cluster uint32
		reached uint32
	}{
		{first: 20, offset: 0, cluster: 20, reached: 0},
		{first: 20, offset: 1, cluster: 25, reached: 1},
		{first: 20, offset: 2, cluster: 29, reached: 2},
		{first: 20, offset: 3, cluster: EndOfChain, reached: 2},
		{first: 20, offset: 10, cluster: EndOfChain, reached: 2},
		{first: 40, offset: 1, cluster: EndOfChain, reached: 0},
	}

	for _, tc := range tests {
		cluster, reached, err := v.GetCluster(tc.first, tc.offset)
		require.NoError(t, err)
		require.Equal(t, tc.cluster, cluster, "first=%d offset=%d", tc.first, tc.offset)
		require.Equal(t, tc.reached, reached, "first=%d offset=%d", tc.first, tc.offset)
	}
}

func TestGetClusterBrokenChain(t *testing.T) {
	b := fattest.New().
		SetFAT(50, 51).
		SetFAT(51, 0).
		SetFAT(52, 1)

	v, _ := mount(t, b)

	_, reached, err := v.GetCluster(50, 2)
	require.ErrorIs(t, err, ErrBrokenChain)
	require.Equal(t, uint32(1), reached)

	_, _, err = v.GetCluster(52, 1)
	require.ErrorIs(t, err, ErrBrokenChain)
}

func TestGetClusterAcrossFATSectors(t *testing.T) {
	b := fattest.New(fattest.WithClusters(300)).
		SetFAT(200, 201).
		SetFAT(201, 3)

	v, _ := mount(t, b)
	require.Equal(t, uint32(3), v.Geometry().SectorsPerFAT)

	cluster, reached, err := v.GetCluster(200, 2)
	require.NoError(t, err)
	require.Equal(t, uint32(3), cluster)
	require.Equal(t, uint32(2), reached)
}

func TestChainClusterShortChain(t *testing.T) {
	v, _ := mount(t, fattest.New().SetFAT(10, disk.FAT32LastEntry))

	_, err := v.chainCluster(10, 1)
	require.ErrorIs(t, err, ErrShortChain)

	_, err = v.chainCluster(0, 0)
	require.ErrorIs(t, err, ErrShortChain)

	_, err = v.chainCluster(1, 0)
	require.ErrorIs(t, err, ErrBrokenChain)
}

func TestRuns(t *testing.T) {
	data := make([]byte, 1300)
	b := fattest.New().AddFile("R.BIN", data, fattest.Chain(10, 11, 20))

	v, _ := mount(t, b)

	h, err := v.Open("R.BIN")
	require.NoError(t, err)

	runs, err := v.Runs(h)
	require.NoError(t, err)
	require.Equal(t, []Run{
		{FileOffset: 0, DiskOffset: uint64(b.ClusterSector(10)) * 512, Length: 1024},
		{FileOffset: 1024, DiskOffset: uint64(b.ClusterSector(20)) * 512, Length: 276},
	}, runs)
}

func TestRunsEmptyFile(t *testing.T) {
	v, _ := mount(t, fattest.New().AddFile("EMPTY.TXT", nil))

	h, err := v.Open("EMPTY.TXT")
	require.NoError(t, err)

	runs, err := v.Runs(h)
	require.NoError(t, err)
	require.Empty(t, runs)
}
