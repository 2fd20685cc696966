package fat

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ostafen/sdfat/internal/blockdev"
	"github.com/ostafen/sdfat/internal/disk"
	"github.com/ostafen/sdfat/internal/fat/fattest"
)

func pattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func readAll(t *testing.T, v *Volume, h Handle) []byte {
	t.Helper()

	var out bytes.Buffer
	buf := make([]byte, 100)
	for {
		n, err := v.Read(h, buf)
		out.Write(buf[:n])
		if errors.Is(err, io.EOF) {
			return out.Bytes()
		}
		require.NoError(t, err)
	}
}

func TestReadStopsAtEndOfFile(t *testing.T) {
	v, _ := mount(t, fattest.New().AddFile("TEN.TXT", []byte("0123456789")))

	h, err := v.Open("TEN.TXT")
	require.NoError(t, err)

	buf := make([]byte, 20)
	n, err := v.Read(h, buf)
	require.NoError(t, err)
	require.Equal(t, 10, n)
	require.Equal(t, []byte("0123456789"), buf[:n])

	n, err = v.Read(h, buf)
	require.Equal(t, 0, n)
	require.Equal(t, io.EOF, err)
}

func TestReadEmptyFile(t *testing.T) {
	v, _ := mount(t, fattest.New().AddFile("EMPTY.TXT", nil))

	h, err := v.Open("EMPTY.TXT")
	require.NoError(t, err)

	n, err := v.Read(h, make([]byte, 8))
	require.Equal(t, 0, n)
	require.Equal(t, io.EOF, err)
}

func TestReadAcrossSectors(t *testing.T) {
	data := pattern(1000)
	v, mem := mount(t, fattest.New(fattest.WithSectorsPerCluster(4)).AddFile("DATA.BIN", data))

	h, err := v.Open("DATA.BIN")
	require.NoError(t, err)

	reads := mem.Reads
	buf := make([]byte, 600)
	n, err := v.Read(h, buf)
	require.NoError(t, err)
	require.Equal(t, 600, n)
	require.Equal(t, data[:600], buf)
	require.Equal(t, 2, mem.Reads-reads)

	// The rest of the file lives in the sector already cached.
	reads = mem.Reads
	n, err = v.Read(h, buf)
	require.NoError(t, err)
	require.Equal(t, 400, n)
	require.Equal(t, data[600:], buf[:n])
	require.Equal(t, 0, mem.Reads-reads)
}

func TestReadAcrossClusters(t *testing.T) {
	data := pattern(1500)
	b := fattest.New().AddFile("FRAG.BIN", data, fattest.Chain(10, 20, 30))
	v, _ := mount(t, b)

	h, err := v.Open("FRAG.BIN")
	require.NoError(t, err)
	require.Equal(t, data, readAll(t, v, h))
}

func TestReadShortChain(t *testing.T) {
	b := fattest.New().AddFile("SHORT.BIN", pattern(100), fattest.Size(2000))
	v, _ := mount(t, b)

	h, err := v.Open("SHORT.BIN")
	require.NoError(t, err)

	buf := make([]byte, 1000)
	n, err := v.Read(h, buf)
	require.ErrorIs(t, err, ErrShortChain)
	require.Equal(t, 512, n)
	require.Equal(t, pattern(100), buf[:100])
}

// faultyDevice fails every write to one sector.
type faultyDevice struct {
	*blockdev.Memory
	badSector uint32
}

var errWriteFault = errors.New("write fault")

func (d *faultyDevice) WriteSectors(buf []byte, sector uint32, count uint32) error {
	if sector <= d.badSector && d.badSector < sector+count {
		return errWriteFault
	}
	return d.Memory.WriteSectors(buf, sector, count)
}

func TestWriteGrowsFile(t *testing.T) {
	v, mem := mount(t, fattest.New().AddFile("LOG.TXT", nil, fattest.Clusters(1)))

	h, err := v.Open("LOG.TXT")
	require.NoError(t, err)

	n, err := v.Write(h, []byte("HELLO"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	fi, err := v.Stat(h)
	require.NoError(t, err)
	require.Equal(t, int64(5), fi.Size())

	// Cursors are independent: reading starts from the beginning.
	require.Equal(t, []byte("HELLO"), readAll(t, v, h))

	// The new size must be on disk.
	v2, err := Mount(mem)
	require.NoError(t, err)

	fi, err = v2.Lookup("LOG.TXT")
	require.NoError(t, err)
	require.Equal(t, int64(5), fi.Size())
}

func TestWriteAcrossSectors(t *testing.T) {
	b := fattest.New().AddFile("OUT.BIN", nil, fattest.Clusters(2))
	v, mem := mount(t, b)

	h, err := v.Open("OUT.BIN")
	require.NoError(t, err)

	data := pattern(700)
	writes := mem.Writes

	n, err := v.Write(h, data)
	require.NoError(t, err)
	require.Equal(t, 700, n)

	// One flush per data sector plus the directory entry update.
	require.Equal(t, 3, mem.Writes-writes)

	img := mem.Bytes()
	require.Equal(t, data[:512], img[int(b.ClusterSector(3))*disk.SectorSize:][:512])
	require.Equal(t, data[512:], img[int(b.ClusterSector(4))*disk.SectorSize:][:188])

	require.NoError(t, v.MoveReadPointer(h, 0))
	require.Equal(t, data, readAll(t, v, h))
}

func TestWriteOverwritesInPlace(t *testing.T) {
	v, _ := mount(t, fattest.New().AddFile("A.TXT", []byte("AAAAAAAAAA")))

	h, err := v.Open("A.TXT")
	require.NoError(t, err)
	require.NoError(t, v.MoveWritePointer(h, 3))

	_, err = v.Write(h, []byte("BB"))
	require.NoError(t, err)

	fi, err := v.Stat(h)
	require.NoError(t, err)
	require.Equal(t, int64(10), fi.Size())
	require.Equal(t, []byte("AAABBAAAAA"), readAll(t, v, h))
}

func TestWritePastAllocatedChain(t *testing.T) {
	v, mem := mount(t, fattest.New().AddFile("ONE.BIN", nil, fattest.Clusters(1)))

	h, err := v.Open("ONE.BIN")
	require.NoError(t, err)

	n, err := v.Write(h, pattern(600))
	require.ErrorIs(t, err, ErrShortChain)
	require.Equal(t, 512, n)

	v2, err := Mount(mem)
	require.NoError(t, err)

	fi, err := v2.Lookup("ONE.BIN")
	require.NoError(t, err)
	require.Equal(t, int64(512), fi.Size())

	require.NoError(t, v.MoveWritePointer(h, 5000))
	n, err = v.Write(h, []byte("x"))
	require.ErrorIs(t, err, ErrShortChain)
	require.Equal(t, 0, n)
}

func TestWriteDeviceFailureKeepsSize(t *testing.T) {
	b := fattest.New().AddFile("A.TXT", []byte("abc"), fattest.Clusters(2))
	mem, err := b.Build()
	require.NoError(t, err)

	dev := &faultyDevice{Memory: mem, badSector: b.ClusterSector(3)}
	v, err := Mount(dev)
	require.NoError(t, err)

	h, err := v.Open("A.TXT")
	require.NoError(t, err)
	require.NoError(t, v.MoveWritePointer(h, 100))

	n, err := v.Write(h, []byte("xy"))
	require.ErrorIs(t, err, ErrDeviceIO)
	require.ErrorIs(t, err, errWriteFault)
	require.Zero(t, n)

	fi, err := v.Stat(h)
	require.NoError(t, err)
	require.Equal(t, int64(3), fi.Size())

	v2, err := Mount(mem)
	require.NoError(t, err)
	fi, err = v2.Lookup("A.TXT")
	require.NoError(t, err)
	require.Equal(t, int64(3), fi.Size())
}

func TestWriteDeviceFailureAfterFlush(t *testing.T) {
	b := fattest.New().AddFile("B.BIN", nil, fattest.Clusters(2))
	mem, err := b.Build()
	require.NoError(t, err)

	dev := &faultyDevice{Memory: mem, badSector: b.ClusterSector(4)}
	v, err := Mount(dev)
	require.NoError(t, err)

	h, err := v.Open("B.BIN")
	require.NoError(t, err)

	n, err := v.Write(h, pattern(700))
	require.ErrorIs(t, err, errWriteFault)
	require.Equal(t, 512, n)

	v2, err := Mount(mem)
	require.NoError(t, err)
	fi, err := v2.Lookup("B.BIN")
	require.NoError(t, err)
	require.Equal(t, int64(512), fi.Size())
}

func TestWriteFileWithoutClusters(t *testing.T) {
	v, _ := mount(t, fattest.New().AddFile("EMPTY.TXT", nil))

	h, err := v.Open("EMPTY.TXT")
	require.NoError(t, err)

	n, err := v.Write(h, []byte("data"))
	require.ErrorIs(t, err, ErrShortChain)
	require.Zero(t, n)

	fi, err := v.Stat(h)
	require.NoError(t, err)
	require.Zero(t, fi.Size())
}

func TestWriteEmptyBuffer(t *testing.T) {
	v, mem := mount(t, fattest.New().AddFile("A.TXT", []byte("abc")))

	h, err := v.Open("A.TXT")
	require.NoError(t, err)

	reads, writes := mem.Reads, mem.Writes
	n, err := v.Write(h, nil)
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.Equal(t, reads, mem.Reads)
	require.Equal(t, writes, mem.Writes)
}

func TestWriteStampsModTime(t *testing.T) {
	now := time.Date(2024, time.May, 17, 10, 20, 30, 0, time.UTC)
	clock := func() time.Time { return now }

	v, _ := mount(t, fattest.New().AddFile("A.TXT", []byte("abc")), WithClock(clock))

	h, err := v.Open("A.TXT")
	require.NoError(t, err)

	_, err = v.Write(h, []byte("z"))
	require.NoError(t, err)

	fi, err := v.Lookup("A.TXT")
	require.NoError(t, err)
	require.Equal(t, now, fi.ModTime())
}

func TestWriteKeepsModTimeWithoutClock(t *testing.T) {
	mod := time.Date(2020, time.January, 2, 3, 4, 6, 0, time.UTC)
	v, _ := mount(t, fattest.New().AddFile("A.TXT", []byte("abc"), fattest.ModTime(mod)))

	h, err := v.Open("A.TXT")
	require.NoError(t, err)

	_, err = v.Write(h, []byte("z"))
	require.NoError(t, err)

	fi, err := v.Lookup("A.TXT")
	require.NoError(t, err)
	require.Equal(t, mod, fi.ModTime())
}

func TestMovePointers(t *testing.T) {
	v, _ := mount(t, fattest.New().AddFile("A.TXT", []byte("0123456789")))

	h, err := v.Open("A.TXT")
	require.NoError(t, err)

	require.ErrorIs(t, v.MoveReadPointer(h, 11), ErrOutOfRange)

	require.NoError(t, v.MoveReadPointer(h, 10))
	_, err = v.Read(h, make([]byte, 1))
	require.Equal(t, io.EOF, err)

	require.NoError(t, v.MoveReadPointer(h, 7))
	require.Equal(t, []byte("789"), readAll(t, v, h))

	// The write cursor is not bounded by the file size.
	require.NoError(t, v.MoveWritePointer(h, 12))
	_, err = v.Write(h, []byte("!"))
	require.NoError(t, err)

	fi, err := v.Stat(h)
	require.NoError(t, err)
	require.Equal(t, int64(13), fi.Size())
}

func TestOpenFileTable(t *testing.T) {
	b := fattest.New().
		AddFile("A.TXT", []byte("a")).
		AddFile("B.TXT", []byte("b"))

	v, _ := mount(t, b, WithMaxOpenFiles(2))

	h0, err := v.Open("A.TXT")
	require.NoError(t, err)
	require.Equal(t, Handle(0), h0)

	h1, err := v.Open("A.TXT")
	require.NoError(t, err)
	require.Equal(t, Handle(1), h1)

	_, err = v.Open("B.TXT")
	require.ErrorIs(t, err, ErrTableFull)
	require.Equal(t, 2, v.OpenFiles())

	require.NoError(t, v.Close(h0))
	require.ErrorIs(t, v.Close(h0), ErrInvalidHandle)

	h, err := v.Open("B.TXT")
	require.NoError(t, err)
	require.Equal(t, h0, h)
}

func TestInvalidHandle(t *testing.T) {
	v, _ := mount(t, fattest.New().AddFile("A.TXT", []byte("a")))

	for _, h := range []Handle{-1, 0, 5, DefaultMaxOpenFiles} {
		_, err := v.Read(h, make([]byte, 1))
		require.ErrorIs(t, err, ErrInvalidHandle)

		_, err = v.Write(h, []byte("x"))
		require.ErrorIs(t, err, ErrInvalidHandle)

		require.ErrorIs(t, v.MoveReadPointer(h, 0), ErrInvalidHandle)
		require.ErrorIs(t, v.MoveWritePointer(h, 0), ErrInvalidHandle)
		require.ErrorIs(t, v.Close(h), ErrInvalidHandle)

		_, err = v.Stat(h)
		require.ErrorIs(t, err, ErrInvalidHandle)
	}
}

func TestOpenInvalidName(t *testing.T) {
	v, _ := mount(t, fattest.New())

	_, err := v.Open("A.B.C")
	require.ErrorIs(t, err, ErrInvalidName)
	require.Equal(t, 0, v.OpenFiles())
}
