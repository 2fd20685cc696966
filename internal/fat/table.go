package fat

import (
	"fmt"

	"github.com/ostafen/sdfat/internal/disk"
)

// Handle identifies an open file. It is the index of its slot in the open file table.
type Handle int

const freeSlot = -1

type openFile struct {
	id           int
	name         [disk.DirEntryNameLen]byte
	firstCluster uint32
	size         uint32
	attributes   uint8
	writeDate    uint16
	writeTime    uint16
	dirIndex     uint32
	rdPtr        uint32
	wrPtr        uint32

	longName    [disk.LongNameChars]uint16
	hasLongName bool
}

func (f *openFile) info() FileInfo {
	fi := FileInfo{
		RawName:      f.name,
		FileSize:     f.size,
		Attributes:   f.attributes,
		FirstCluster: f.firstCluster,
		WriteDate:    f.writeDate,
		WriteTime:    f.writeTime,
		EntryIndex:   f.dirIndex,
	}
	if f.hasLongName {
		fi.LongNameFragment = append([]uint16(nil), f.longName[:]...)
	}
	return fi
}

// fileTable is a fixed set of slots. A slot whose id is freeSlot is available.
type fileTable struct {
	slots []openFile
}

func newFileTable(n int) *fileTable {
	t := &fileTable{slots: make([]openFile, n)}
	for i := range t.slots {
		t.slots[i].id = freeSlot
	}
	return t
}

// allocate returns the lowest free slot.
func (t *fileTable) allocate() (Handle, error) {
	for i := range t.slots {
		if t.slots[i].id == freeSlot {
			return Handle(i), nil
		}
	}
	return -1, fmt.Errorf("%w: %d files open", ErrTableFull, len(t.slots))
}

func (t *fileTable) get(h Handle) (*openFile, error) {
	if h < 0 || int(h) >= len(t.slots) || t.slots[h].id == freeSlot {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	return &t.slots[h], nil
}

func (t *fileTable) release(h Handle) {
	t.slots[h].id = freeSlot
}

func (t *fileTable) inUse() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].id != freeSlot {
			n++
		}
	}
	return n
}
