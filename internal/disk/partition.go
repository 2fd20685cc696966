package disk

import "fmt"

// Partition is the slot of the MBR partition table selected for mounting.
type Partition struct {
	Num      int          // Slot index in the MBR partition table (0-3)
	Type     MBRPartition // Partition type byte
	StartLBA uint32       // First absolute sector of the partition
	Length   uint32       // Number of sectors in the partition
}

// Offset returns the byte offset of the partition from the start of the device.
func (p Partition) Offset() uint64 {
	return uint64(p.StartLBA) * SectorSize
}

// Size returns the size of the partition in bytes.
func (p Partition) Size() uint64 {
	return uint64(p.Length) * SectorSize
}

func (p Partition) String() string {
	return fmt.Sprintf("partition %d (%s) at LBA %d, %d sectors", p.Num, p.Type.Name(), p.StartLBA, p.Length)
}
