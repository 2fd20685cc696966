// Package fattest builds small FAT32 disk images in memory.
//
// The layout is fixed: an MBR in sector 0, the partition starting at
// sector 8 with 4 reserved sectors, followed by two FAT copies and the data
// region. The root directory starts at cluster 2.
package fattest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
	"unicode/utf16"

	"github.com/ostafen/sdfat/internal/blockdev"
	"github.com/ostafen/sdfat/internal/disk"
)

const (
	PartitionStart  = 8
	ReservedSectors = 4
	NumFATs         = 2
	RootCluster     = 2
)

type Builder struct {
	sectorsPerCluster uint32
	clusters          uint32
	rootClusters      uint32
	label             string
	partType          disk.MBRPartition

	fat     []uint32
	data    map[uint32][]byte
	next    uint32
	entries [][]byte
	err     error
}

type Option func(*Builder)

// WithSectorsPerCluster sets the cluster size. Defaults to 1.
func WithSectorsPerCluster(n uint32) Option {
	return func(b *Builder) { b.sectorsPerCluster = n }
}

// WithClusters sets the number of data clusters. Defaults to 64.
func WithClusters(n uint32) Option {
	return func(b *Builder) { b.clusters = n }
}

// WithRootClusters sets the length of the root directory chain. Defaults to 1.
func WithRootClusters(n uint32) Option {
	return func(b *Builder) { b.rootClusters = n }
}

func WithLabel(label string) Option {
	return func(b *Builder) { b.label = label }
}

func WithPartitionType(typ disk.MBRPartition) Option {
	return func(b *Builder) { b.partType = typ }
}

func New(opts ...Option) *Builder {
	b := &Builder{
		sectorsPerCluster: 1,
		clusters:          64,
		rootClusters:      1,
		label:             "SDFAT",
		partType:          disk.PartitionTypeFAT32LBA,
		data:              make(map[uint32][]byte),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.fat = make([]uint32, b.clusters+2)
	b.fat[0] = 0x0FFFFFF8
	b.fat[1] = disk.FAT32LastEntry
	b.next = RootCluster
	b.chain(b.rootClusters)
	return b
}

// SectorsPerFAT returns the size of one FAT copy.
func (b *Builder) SectorsPerFAT() uint32 {
	return ((b.clusters+2)*4 + disk.SectorSize - 1) / disk.SectorSize
}

func (b *Builder) FATStart() uint32 {
	return PartitionStart + ReservedSectors
}

func (b *Builder) DataStart() uint32 {
	return b.FATStart() + NumFATs*b.SectorsPerFAT()
}

// ClusterSector returns the first sector of cluster.
func (b *Builder) ClusterSector(cluster uint32) uint32 {
	return b.DataStart() + (cluster-2)*b.sectorsPerCluster
}

// TotalSectors returns the length of the partition.
func (b *Builder) TotalSectors() uint32 {
	return ReservedSectors + NumFATs*b.SectorsPerFAT() + b.clusters*b.sectorsPerCluster
}

func (b *Builder) clusterSize() int {
	return int(b.sectorsPerCluster) * disk.SectorSize
}

// chain allocates n consecutive clusters and links them.
func (b *Builder) chain(n uint32) []uint32 {
	if n == 0 {
		return nil
	}
	if b.next+n > b.clusters+2 {
		b.fail(fmt.Errorf("out of clusters: want %d, %d left", n, b.clusters+2-b.next))
		return nil
	}

	out := make([]uint32, n)
	for i := range out {
		out[i] = b.next + uint32(i)
	}
	b.next += n
	b.link(out)
	return out
}

func (b *Builder) link(chain []uint32) {
	for i, c := range chain {
		if int(c) >= len(b.fat) || c < 2 {
			b.fail(fmt.Errorf("cluster %d out of range", c))
			return
		}
		if i == len(chain)-1 {
			b.fat[c] = disk.FAT32LastEntry
		} else {
			b.fat[c] = chain[i+1]
		}
	}
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

type fileOptions struct {
	clusters  uint32
	chain     []uint32
	modTime   time.Time
	longName  string
	size      *uint32
	attr      uint8
	firstClus *uint32
}

type FileOption func(*fileOptions)

// Clusters allocates at least n clusters for the file.
func Clusters(n uint32) FileOption {
	return func(o *fileOptions) { o.clusters = n }
}

// Chain places the file on the given clusters, in order.
func Chain(clusters ...uint32) FileOption {
	return func(o *fileOptions) { o.chain = clusters }
}

func ModTime(t time.Time) FileOption {
	return func(o *fileOptions) { o.modTime = t }
}

// LongName stores a single long name fragment before the entry.
// Only the first 13 characters are kept.
func LongName(name string) FileOption {
	return func(o *fileOptions) { o.longName = name }
}

// Size overrides the size recorded in the directory entry.
func Size(n uint32) FileOption {
	return func(o *fileOptions) { o.size = &n }
}

func Attributes(attr uint8) FileOption {
	return func(o *fileOptions) { o.attr = attr }
}

// FirstCluster overrides the first cluster recorded in the directory entry.
func FirstCluster(c uint32) FileOption {
	return func(o *fileOptions) { o.firstClus = &c }
}

// AddFile adds a root directory entry named name ("NAME.EXT") holding data.
func (b *Builder) AddFile(name string, data []byte, opts ...FileOption) *Builder {
	o := fileOptions{attr: disk.AttrArchive}
	for _, opt := range opts {
		opt(&o)
	}

	raw, err := shortName(name)
	if err != nil {
		b.fail(err)
		return b
	}

	need := uint32((len(data) + b.clusterSize() - 1) / b.clusterSize())
	chain := o.chain
	if chain != nil {
		b.link(chain)
		for _, c := range chain {
			b.next = max(b.next, c+1)
		}
	} else {
		chain = b.chain(max(need, o.clusters))
	}
	if uint32(len(chain)) < need {
		b.fail(fmt.Errorf("%s: %d bytes do not fit in %d clusters", name, len(data), len(chain)))
		return b
	}

	for i, c := range chain {
		lo := i * b.clusterSize()
		if lo >= len(data) {
			break
		}
		hi := min(lo+b.clusterSize(), len(data))
		b.data[c] = data[lo:hi]
	}

	if o.longName != "" {
		b.entries = append(b.entries, longEntry(o.longName, raw))
	}

	e := disk.DirEntry{
		Name:       raw,
		Attributes: o.attr,
		FileSize:   uint32(len(data)),
	}
	if o.size != nil {
		e.FileSize = *o.size
	}

	var first uint32
	if len(chain) > 0 {
		first = chain[0]
	}
	if o.firstClus != nil {
		first = *o.firstClus
	}
	e.FirstClusterHI = uint16(first >> 16)
	e.FirstClusterLO = uint16(first)

	if !o.modTime.IsZero() {
		e.WriteDate = encodeDate(o.modTime)
		e.WriteTime = encodeTime(o.modTime)
	}
	b.addEntry(&e)
	return b
}

// AddDeleted adds an entry marked as deleted, pointing at no data.
func (b *Builder) AddDeleted(name string) *Builder {
	raw, err := shortName(name)
	if err != nil {
		b.fail(err)
		return b
	}
	raw[0] = disk.DeletedFlag
	b.addEntry(&disk.DirEntry{Name: raw, Attributes: disk.AttrArchive})
	return b
}

// AddLongName adds a long name fragment not tied to the following entry.
func (b *Builder) AddLongName(name string) *Builder {
	b.entries = append(b.entries, longEntry(name, [disk.DirEntryNameLen]byte{}))
	return b
}

// AddVolumeLabel adds a volume label entry.
func (b *Builder) AddVolumeLabel(label string) *Builder {
	var raw [disk.DirEntryNameLen]byte
	copy(raw[:], fmt.Sprintf("%-11s", label))
	b.addEntry(&disk.DirEntry{Name: raw, Attributes: disk.AttrVolume})
	return b
}

// AddRaw appends a raw 32-byte directory entry.
func (b *Builder) AddRaw(raw []byte) *Builder {
	if len(raw) != disk.DirEntrySize {
		b.fail(fmt.Errorf("raw entry of %d bytes", len(raw)))
		return b
	}
	b.entries = append(b.entries, bytes.Clone(raw))
	return b
}

// SetFAT overwrites a FAT entry, for building damaged chains.
func (b *Builder) SetFAT(cluster, value uint32) *Builder {
	if int(cluster) >= len(b.fat) {
		b.fail(fmt.Errorf("cluster %d out of range", cluster))
		return b
	}
	b.fat[cluster] = value
	return b
}

func (b *Builder) addEntry(e *disk.DirEntry) {
	raw, err := disk.PackDirEntry(e)
	if err != nil {
		b.fail(err)
		return
	}
	b.entries = append(b.entries, raw)
}

// Build renders the image.
func (b *Builder) Build() (*blockdev.Memory, error) {
	if b.err != nil {
		return nil, b.err
	}

	rootCap := int(b.rootClusters) * b.clusterSize() / disk.DirEntrySize
	if len(b.entries) > rootCap {
		return nil, fmt.Errorf("%d directory entries do not fit in %d root clusters", len(b.entries), b.rootClusters)
	}

	img := make([]byte, int(PartitionStart+b.TotalSectors())*disk.SectorSize)

	mbr := img[:disk.SectorSize]
	disk.PutPartitionEntry(mbr, 0, b.partType, PartitionStart, b.TotalSectors())
	disk.PutSignature(mbr)

	bs, err := b.bootSector()
	if err != nil {
		return nil, err
	}
	copy(img[PartitionStart*disk.SectorSize:], bs)

	fat := make([]byte, int(b.SectorsPerFAT())*disk.SectorSize)
	for i, v := range b.fat {
		binary.LittleEndian.PutUint32(fat[i*4:], v)
	}
	for i := uint32(0); i < NumFATs; i++ {
		off := int(b.FATStart()+i*b.SectorsPerFAT()) * disk.SectorSize
		copy(img[off:], fat)
	}

	// Root directory entries fill the root chain in order.
	for i, raw := range b.entries {
		pos := i * disk.DirEntrySize
		cluster := uint32(RootCluster + pos/b.clusterSize())
		off := int(b.ClusterSector(cluster))*disk.SectorSize + pos%b.clusterSize()
		copy(img[off:], raw)
	}

	for c, data := range b.data {
		off := int(b.ClusterSector(c)) * disk.SectorSize
		copy(img[off:], data)
	}
	return blockdev.NewMemory(img), nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *blockdev.Memory {
	mem, err := b.Build()
	if err != nil {
		panic(err)
	}
	return mem
}

func (b *Builder) bootSector() ([]byte, error) {
	bs := disk.FatBootSector{
		Ignored:           [3]byte{0xEB, 0x58, 0x90},
		SectorSize:        disk.SectorSize,
		SectorsPerCluster: uint8(b.sectorsPerCluster),
		Reserved:          ReservedSectors,
		Fats:              NumFATs,
		Media:             0xF8,
		TotalSect:         b.TotalSectors(),
		Fat32Length:       b.SectorsPerFAT(),
		RootCluster:       RootCluster,
		InfoSector:        1,
		BackupBoot:        6,
		BSBootSig:         0x29,
		BSVolID:           0x1234ABCD,
		Marker:            disk.BootSignature,
	}
	copy(bs.SystemID[:], "SDFAT   ")
	copy(bs.BSVolLab[:], fmt.Sprintf("%-11s", b.label))
	copy(bs.BSFilSysType[:], "FAT32   ")

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &bs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func shortName(name string) ([disk.DirEntryNameLen]byte, error) {
	var out [disk.DirEntryNameLen]byte
	for i := range out {
		out[i] = ' '
	}
	base, ext, _ := bytes.Cut([]byte(name), []byte("."))
	if len(base) == 0 || len(base) > 8 || len(ext) > 3 {
		return out, fmt.Errorf("invalid short name %q", name)
	}
	copy(out[:8], base)
	copy(out[8:], ext)
	return out, nil
}

func longEntry(name string, short [disk.DirEntryNameLen]byte) []byte {
	units := utf16.Encode([]rune(name))
	var chars [disk.LongNameChars]uint16
	for i := range chars {
		switch {
		case i < len(units):
			chars[i] = units[i]
		case i == len(units):
			chars[i] = 0x0000
		default:
			chars[i] = 0xFFFF
		}
	}

	l := disk.LongDirEntry{
		Order:      0x41,
		Attributes: disk.AttrLongName,
		Checksum:   checksum(short),
	}
	copy(l.Name1[:], chars[0:5])
	copy(l.Name2[:], chars[5:11])
	copy(l.Name3[:], chars[11:13])

	raw, _ := disk.PackLongDirEntry(&l)
	return raw
}

func checksum(short [disk.DirEntryNameLen]byte) uint8 {
	var sum uint8
	for _, c := range short {
		sum = (sum>>1 | sum<<7) + c
	}
	return sum
}

func encodeDate(t time.Time) uint16 {
	return uint16(t.Year()-1980)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
}

func encodeTime(t time.Time) uint16 {
	return uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
}
