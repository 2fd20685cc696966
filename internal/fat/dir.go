// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package fat

import (
	"encoding/binary"
	"fmt"

	"github.com/ostafen/sdfat/internal/disk"
)

const entriesPerSector = disk.SectorSize / disk.DirEntrySize

// scanRoot calls fn for every root directory entry in on-disk order, following
// the root cluster chain. The scan ends at the end-of-directory marker, at the
// end of the chain, or when fn returns true. raw aliases the sector cache and
// is only valid during the call.
func (v *Volume) scanRoot(fn func(index uint32, raw []byte) (bool, error)) error {
	var (
		cluster = v.geo.RootCluster
		index   uint32
	)
	for {
		base := v.geo.ClusterToSector(cluster)
		for s := uint32(0); s < v.geo.SectorsPerCluster; s++ {
			if err := v.cache.read(base + s); err != nil {
				return err
			}

			for i := 0; i < entriesPerSector; i++ {
				raw := v.cache.buf[i*disk.DirEntrySize : (i+1)*disk.DirEntrySize]
				if raw[0] == disk.EndOfDirFlag {
					return nil
				}

				stop, err := fn(index, raw)
				if err != nil || stop {
					return err
				}
				index++
			}
		}

		entry, err := v.entryInFAT(cluster)
		if err != nil {
			return err
		}
		if isEndOfChain(entry) {
			return nil
		}
		next := entry & disk.FAT32EntryMask
		if next < 2 || next == disk.FAT32Bad {
			return fmt.Errorf("%w: root directory cluster %d links to 0x%08X", ErrBrokenChain, cluster, entry)
		}
		cluster = next
	}
}

// scanFiles calls fn for every live short entry of the root directory, in
// on-disk order, with the long name fragment stored right before it attached.
// Deleted entries and long name fragments are not passed to fn.
func (v *Volume) scanFiles(fn func(fi FileInfo) (bool, error)) error {
	var prevLong *disk.LongDirEntry
	return v.scanRoot(func(index uint32, raw []byte) (bool, error) {
		long := prevLong
		prevLong = nil

		e, err := disk.ParseDirEntry(raw)
		if err != nil {
			return false, err
		}
		switch {
		case e.IsDeleted():
			return false, nil
		case e.IsLongName():
			l, err := disk.ParseLongDirEntry(raw)
			if err != nil {
				return false, err
			}
			prevLong = &l
			return false, nil
		}

		fi := newFileInfo(&e, index)
		if long != nil {
			chars := long.Chars()
			fi.LongNameFragment = chars[:]
		}
		return fn(fi)
	})
}

// findFile returns the first live entry whose name matches exactly, together
// with the long name fragment stored right before it.
func (v *Volume) findFile(name [disk.DirEntryNameLen]byte) (FileInfo, error) {
	var (
		found FileInfo
		ok    bool
	)
	err := v.scanFiles(func(fi FileInfo) (bool, error) {
		if fi.RawName != name {
			return false, nil
		}
		found, ok = fi, true
		return true, nil
	})
	if err != nil {
		return FileInfo{}, err
	}
	if !ok {
		return FileInfo{}, fmt.Errorf("%w: %q", ErrNotFound, FormatName(name))
	}

	if found.LongNameFragment != nil {
		v.log.Debug("long name fragment",
			"name", found.Name(),
			"units", fmt.Sprintf("%04x", found.LongNameFragment),
			"text", found.LongName(),
		)
	}
	return found, nil
}

// entrySector returns the sector holding the root directory entry with the given index.
func (v *Volume) entrySector(index uint32) (uint32, error) {
	sectorOffset := index / entriesPerSector
	cluster, err := v.chainCluster(v.geo.RootCluster, sectorOffset/v.geo.SectorsPerCluster)
	if err != nil {
		return 0, err
	}
	return v.geo.ClusterToSector(cluster) + sectorOffset%v.geo.SectorsPerCluster, nil
}

// updateEntry stores the size of f into its directory entry. Only the size
// field is touched, unless a clock is configured.
func (v *Volume) updateEntry(f *openFile) error {
	sector, err := v.entrySector(f.dirIndex)
	if err != nil {
		return err
	}
	if err := v.cache.read(sector); err != nil {
		return err
	}

	off := (f.dirIndex % entriesPerSector) * disk.DirEntrySize
	entry := v.cache.buf[off : off+disk.DirEntrySize]
	binary.LittleEndian.PutUint32(entry[disk.DirEntryFileSizeOffset:], f.size)

	if v.now != nil {
		now := v.now()
		f.writeTime = EncodeTime(now)
		f.writeDate = EncodeDate(now)
		binary.LittleEndian.PutUint16(entry[disk.DirEntryWriteTimeOffset:], f.writeTime)
		binary.LittleEndian.PutUint16(entry[disk.DirEntryWriteDateOffset:], f.writeDate)
	}

	if err := v.cache.write(sector); err != nil {
		return err
	}

	v.log.Debug("updated directory entry",
		"name", FormatName(f.name),
		"entry", f.dirIndex,
		"sector", sector,
		"size", f.size,
	)
	return nil
}

// ReadDir lists the live files of the root directory. Deleted entries,
// long name fragments and the volume label are skipped.
func (v *Volume) ReadDir() ([]FileInfo, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var infos []FileInfo
	err := v.scanFiles(func(fi FileInfo) (bool, error) {
		if fi.Attributes&disk.AttrVolume == 0 {
			infos = append(infos, fi)
		}
		return false, nil
	})
	return infos, err
}

// Lookup returns the directory entry of name without opening it.
func (v *Volume) Lookup(name string) (FileInfo, error) {
	short, err := ShortName(name)
	if err != nil {
		return FileInfo{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	return v.findFile(short)
}
