package blockdev

// Memory is a device backed by a byte slice. It keeps transfer counters so
// callers can observe how many physical operations were issued.
type Memory struct {
	data []byte

	Inits  int
	Reads  int
	Writes int
}

// NewMemory wraps data as a device. len(data) should be a multiple of SectorSize;
// a trailing partial sector is unreachable.
func NewMemory(data []byte) *Memory {
	return &Memory{data: data}
}

// Bytes returns the backing slice.
func (m *Memory) Bytes() []byte {
	return m.data
}

// Sectors returns the number of addressable sectors.
func (m *Memory) Sectors() uint32 {
	return uint32(len(m.data) / SectorSize)
}

func (m *Memory) Init() error {
	m.Inits++
	return nil
}

func (m *Memory) ReadSectors(buf []byte, sector uint32, count uint32) error {
	off, n, err := checkTransfer(buf, sector, count, int64(len(m.data)))
	if err != nil {
		return err
	}
	m.Reads++
	copy(buf[:n], m.data[off:off+int64(n)])
	return nil
}

func (m *Memory) WriteSectors(buf []byte, sector uint32, count uint32) error {
	off, n, err := checkTransfer(buf, sector, count, int64(len(m.data)))
	if err != nil {
		return err
	}
	m.Writes++
	copy(m.data[off:off+int64(n)], buf[:n])
	return nil
}
