package fat

import (
	"io/fs"
	"time"

	"github.com/ostafen/sdfat/internal/disk"
)

// FileInfo describes a root directory entry. It implements fs.FileInfo.
type FileInfo struct {
	RawName      [disk.DirEntryNameLen]byte
	FileSize     uint32
	Attributes   uint8
	FirstCluster uint32
	WriteDate    uint16
	WriteTime    uint16
	EntryIndex   uint32

	// LongNameFragment holds the raw units of the long name entry found
	// right before the short entry, or nil.
	LongNameFragment []uint16
}

func newFileInfo(e *disk.DirEntry, index uint32) FileInfo {
	return FileInfo{
		RawName:      e.Name,
		FileSize:     e.FileSize,
		Attributes:   e.Attributes,
		FirstCluster: e.FirstCluster(),
		WriteDate:    e.WriteDate,
		WriteTime:    e.WriteTime,
		EntryIndex:   index,
	}
}

func (fi FileInfo) Name() string {
	return FormatName(fi.RawName)
}

// LongName returns the text of the long name fragment, if any.
func (fi FileInfo) LongName() string {
	if fi.LongNameFragment == nil {
		return ""
	}
	return DecodeLongName(fi.LongNameFragment)
}

func (fi FileInfo) Size() int64 {
	return int64(fi.FileSize)
}

func (fi FileInfo) Mode() fs.FileMode {
	mode := fs.FileMode(0o644)
	if fi.Attributes&disk.AttrReadOnly != 0 {
		mode = 0o444
	}
	if fi.IsDir() {
		mode |= fs.ModeDir | 0o111
	}
	return mode
}

func (fi FileInfo) ModTime() time.Time {
	return ModTime(fi.WriteDate, fi.WriteTime)
}

func (fi FileInfo) IsDir() bool {
	return fi.Attributes&disk.AttrDir != 0
}

func (fi FileInfo) Sys() any {
	return nil
}
