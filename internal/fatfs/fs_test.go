package fatfs

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/ostafen/sdfat/internal/fat"
	"github.com/ostafen/sdfat/internal/fat/fattest"
)

func newTestFs(t *testing.T) afero.Fs {
	t.Helper()

	b := fattest.New().
		AddVolumeLabel("SDCARD").
		AddFile("HELLO.TXT", []byte("hello, world")).
		AddFile("LOG.TXT", []byte("abc"), fattest.Clusters(1)).
		AddDeleted("OLD.BIN")

	mem, err := b.Build()
	require.NoError(t, err)

	vol, err := fat.Mount(mem)
	require.NoError(t, err)
	return New(vol)
}

func TestReadFile(t *testing.T) {
	fsys := newTestFs(t)

	data, err := afero.ReadFile(fsys, "/HELLO.TXT")
	require.NoError(t, err)
	require.Equal(t, "hello, world", string(data))

	_, err = afero.ReadFile(fsys, "MISSING.TXT")
	require.True(t, os.IsNotExist(err))

	_, err = fsys.Open("SUB/HELLO.TXT")
	require.True(t, os.IsNotExist(err))
}

func TestReadDir(t *testing.T) {
	fsys := newTestFs(t)

	infos, err := afero.ReadDir(fsys, "/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, "HELLO.TXT", infos[0].Name())
	require.Equal(t, int64(12), infos[0].Size())
	require.Equal(t, "LOG.TXT", infos[1].Name())

	var walked []string
	err = afero.Walk(fsys, "/", func(path string, info os.FileInfo, err error) error {
		require.NoError(t, err)
		walked = append(walked, path)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"/", "/HELLO.TXT", "/LOG.TXT"}, walked)
}

func TestReaddirCount(t *testing.T) {
	fsys := newTestFs(t)

	dir, err := fsys.Open("/")
	require.NoError(t, err)

	names, err := dir.Readdirnames(1)
	require.NoError(t, err)
	require.Equal(t, []string{"HELLO.TXT"}, names)

	names, err = dir.Readdirnames(5)
	require.NoError(t, err)
	require.Equal(t, []string{"LOG.TXT"}, names)

	_, err = dir.Readdirnames(1)
	require.ErrorIs(t, err, io.EOF)

	require.NoError(t, dir.Close())
	require.ErrorIs(t, dir.Close(), afero.ErrFileClosed)
}

func TestStat(t *testing.T) {
	fsys := newTestFs(t)

	info, err := fsys.Stat("HELLO.TXT")
	require.NoError(t, err)
	require.Equal(t, int64(12), info.Size())
	require.False(t, info.IsDir())

	info, err = fsys.Stat("/")
	require.NoError(t, err)
	require.True(t, info.IsDir())

	_, err = fsys.Stat("NOPE.TXT")
	require.True(t, os.IsNotExist(err))
}

func TestSeekAndReadAt(t *testing.T) {
	fsys := newTestFs(t)

	f, err := fsys.Open("HELLO.TXT")
	require.NoError(t, err)
	defer f.Close()

	pos, err := f.Seek(-5, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(7), pos)

	buf := make([]byte, 5)
	n, err := f.ReadAt(buf, 0)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))

	rest, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "world", string(rest))

	_, err = f.Seek(13, io.SeekStart)
	require.ErrorIs(t, err, afero.ErrOutOfRange)

	n, err = f.ReadAt(buf, 10)
	require.Equal(t, 2, n)
	require.ErrorIs(t, err, io.EOF)
}

func TestWrite(t *testing.T) {
	fsys := newTestFs(t)

	f, err := fsys.OpenFile("LOG.TXT", os.O_RDWR|os.O_APPEND, 0)
	require.NoError(t, err)

	_, err = f.WriteString("def")
	require.NoError(t, err)

	n, err := f.WriteAt([]byte("X"), 0)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	data, err := afero.ReadFile(fsys, "LOG.TXT")
	require.NoError(t, err)
	require.Equal(t, "Xbcdef", string(data))
}

func TestWriteReadOnlyHandle(t *testing.T) {
	fsys := newTestFs(t)

	f, err := fsys.Open("LOG.TXT")
	require.NoError(t, err)

	_, err = f.Write([]byte("x"))
	require.ErrorIs(t, err, os.ErrPermission)
}

func TestUnsupportedOperations(t *testing.T) {
	fsys := newTestFs(t)

	_, err := fsys.Create("NEW.TXT")
	require.ErrorIs(t, err, errors.ErrUnsupported)

	err = afero.WriteFile(fsys, "LOG.TXT", []byte("x"), 0o644)
	require.ErrorIs(t, err, errors.ErrUnsupported)

	require.ErrorIs(t, fsys.Remove("LOG.TXT"), errors.ErrUnsupported)
	require.ErrorIs(t, fsys.Mkdir("DIR", 0o755), errors.ErrUnsupported)
	require.ErrorIs(t, fsys.Rename("LOG.TXT", "X.TXT"), errors.ErrUnsupported)

	f, err := fsys.Open("LOG.TXT")
	require.NoError(t, err)
	require.ErrorIs(t, f.Truncate(0), errors.ErrUnsupported)
}
