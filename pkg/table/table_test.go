package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrefixTableWalk(t *testing.T) {
	tbl := New[string]()
	tbl.Insert([]byte("BM"), "bmp")
	tbl.Insert([]byte("BMP!"), "long")
	tbl.Insert([]byte("PK\x03\x04"), "zip")

	require.Equal(t, 3, tbl.Size())

	v, ok := tbl.Get([]byte("BM"))
	require.True(t, ok)
	require.Equal(t, "bmp", v)

	var matches []string
	tbl.Walk([]byte("BMP!rest"), func(v string) bool {
		matches = append(matches, v)
		return false
	})
	require.Equal(t, []string{"bmp", "long"}, matches)

	matches = nil
	tbl.Walk([]byte("BMP!rest"), func(v string) bool {
		matches = append(matches, v)
		return true
	})
	require.Equal(t, []string{"bmp"}, matches)

	matches = nil
	tbl.Walk([]byte("XYZ"), func(v string) bool {
		matches = append(matches, v)
		return false
	})
	require.Empty(t, matches)
}

func TestPrefixTableLongest(t *testing.T) {
	tbl := New[string]()
	require.Equal(t, 0, tbl.MaxKeyLen())

	_, _, ok := tbl.Longest([]byte("anything"))
	require.False(t, ok)

	tbl.Insert([]byte("RIFF"), "riff")
	tbl.Insert([]byte("RIFF\x00\x00"), "riff-long")
	tbl.Insert([]byte("ID3"), "mp3")
	require.Equal(t, 6, tbl.MaxKeyLen())

	v, n, ok := tbl.Longest([]byte("RIFF\x00\x00WAVE"))
	require.True(t, ok)
	require.Equal(t, "riff-long", v)
	require.Equal(t, 6, n)

	v, n, ok = tbl.Longest([]byte("RIFF\x01"))
	require.True(t, ok)
	require.Equal(t, "riff", v)
	require.Equal(t, 4, n)

	_, _, ok = tbl.Longest([]byte("RIF"))
	require.False(t, ok)

	tbl.Insert([]byte("ID3"), "id3")
	v, _, ok = tbl.Longest([]byte("ID3\x04"))
	require.True(t, ok)
	require.Equal(t, "id3", v)
	require.Equal(t, 3, tbl.Size())
}
