package dfxml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteAndReadFileObjects(t *testing.T) {
	var buf bytes.Buffer

	w := NewDFXMLWriter(&buf)
	require.NoError(t, w.WriteHeader(DFXMLHeader{
		XmlOutput: XmlOutputVersion,
		Metadata:  DefaultMetadata,
		Creator: Creator{
			Package: "sdfat",
			Version: "dev",
		},
		Source: Source{
			ImageFilename: "card.img",
			SectorSize:    512,
			ImageSize:     1 << 20,
		},
	}))
	require.NoError(t, w.WriteVolume(Volume{
		Offset:      4096,
		FTypeStr:    "fat32",
		BlockSize:   512,
		SectorSize:  512,
		BlockCount:  64,
		FirstBlock:  2,
		VolumeLabel: "CARD",
	}))

	objs := []FileObject{
		{
			Filename: "HELLO.TXT",
			FileSize: 12,
			Inode:    3,
			ByteRuns: ByteRuns{Runs: []ByteRun{{Offset: 0, ImgOffset: 7680, Length: 12}}},
		},
		{
			Filename:    "PHOTO.JPG",
			FileSize:    2000,
			ContentType: "jpeg",
			ByteRuns: ByteRuns{Runs: []ByteRun{
				{Offset: 0, ImgOffset: 8192, Length: 1024},
				{Offset: 1024, ImgOffset: 16384, Length: 976},
			}},
		},
	}
	for _, obj := range objs {
		require.NoError(t, w.WriteFileObject(obj))
	}
	require.NoError(t, w.Close())

	require.Contains(t, buf.String(), `<dfxml xmloutputversion="1.0">`)
	require.Contains(t, buf.String(), `<volume offset="4096">`)

	got, err := ReadFileObjects(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "HELLO.TXT", got[0].Filename)
	require.Equal(t, uint64(3), got[0].Inode)
	require.Equal(t, objs[0].ByteRuns, got[0].ByteRuns)
	require.Equal(t, "jpeg", got[1].ContentType)
	require.Equal(t, objs[1].ByteRuns, got[1].ByteRuns)
}

func TestGetExecEnv(t *testing.T) {
	env := GetExecEnv()
	require.NotEmpty(t, env.OS)
	require.NotEmpty(t, env.Arch)
	require.NotEmpty(t, env.Start)
}

func TestReadReport(t *testing.T) {
	var buf bytes.Buffer

	w := NewDFXMLWriter(&buf)
	require.NoError(t, w.WriteHeader(DFXMLHeader{
		XmlOutput: XmlOutputVersion,
		Metadata:  DefaultMetadata,
		Creator:   Creator{Package: "sdfat", ExecutionEnvironment: GetExecEnv()},
	}))
	require.NoError(t, w.WriteVolume(Volume{
		Offset:        512,
		FTypeStr:      "fat32",
		BlockSize:     4096,
		SectorSize:    512,
		BlockCount:    1000,
		FirstBlock:    2,
		VolumeSerial:  "1234-ABCD",
		PartitionType: "FAT32 (LBA)",
	}))
	require.NoError(t, w.WriteFileObject(FileObject{Filename: "A.TXT", FileSize: 1}))
	require.NoError(t, w.Close())

	report, err := ReadReport(&buf)
	require.NoError(t, err)
	require.NotNil(t, report.Volume)
	require.Equal(t, uint64(512), report.Volume.Offset)
	require.Equal(t, "fat32", report.Volume.FTypeStr)
	require.Equal(t, uint32(4096), report.Volume.BlockSize)
	require.Equal(t, "1234-ABCD", report.Volume.VolumeSerial)
	require.Len(t, report.Files, 1)
	require.Equal(t, "A.TXT", report.Files[0].Filename)
}

func TestReadReportMalformed(t *testing.T) {
	_, err := ReadReport(strings.NewReader("<dfxml><fileobject><filesize>x</filesize></fileobject></dfxml>"))
	require.Error(t, err)
}
