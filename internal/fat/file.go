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
	"errors"
	"fmt"
	"io"
	"math"
)

// Open looks up name in the root directory and assigns it a handle.
// Both the read and the write cursor start at zero.
func (v *Volume) Open(name string) (Handle, error) {
	short, err := ShortName(name)
	if err != nil {
		return -1, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	fi, err := v.findFile(short)
	if err != nil {
		return -1, err
	}

	h, err := v.files.allocate()
	if err != nil {
		return -1, err
	}

	f := openFile{
		id:           int(h),
		name:         fi.RawName,
		firstCluster: fi.FirstCluster,
		size:         fi.FileSize,
		attributes:   fi.Attributes,
		writeDate:    fi.WriteDate,
		writeTime:    fi.WriteTime,
		dirIndex:     fi.EntryIndex,
	}
	if fi.LongNameFragment != nil {
		f.hasLongName = true
		copy(f.longName[:], fi.LongNameFragment)
	}
	v.files.slots[h] = f

	v.log.Debug("opened file",
		"name", fi.Name(),
		"handle", h,
		"entry", fi.EntryIndex,
		"cluster", fi.FirstCluster,
		"size", fi.FileSize,
	)
	return h, nil
}

// Close releases the slot of h.
func (v *Volume) Close(h Handle) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := v.files.get(h); err != nil {
		return err
	}
	v.files.release(h)
	return nil
}

// Read copies bytes from the read cursor of h into p and advances the cursor.
// It stops at the end of the file and returns io.EOF when the cursor is
// already there.
func (v *Volume) Read(h Handle, p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	f, err := v.files.get(h)
	if err != nil {
		return 0, err
	}
	if f.rdPtr >= f.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	var (
		bps             = v.geo.BytesPerSector
		spc             = v.geo.SectorsPerCluster
		sectorOffset    = f.rdPtr / bps
		sectorInCluster = sectorOffset % spc
	)

	cluster, err := v.chainCluster(f.firstCluster, sectorOffset/spc)
	if err != nil {
		return 0, err
	}

	n := 0
	for {
		sector := v.geo.ClusterToSector(cluster) + sectorInCluster
		if err := v.cache.read(sector); err != nil {
			return n, err
		}

		off := f.rdPtr % bps
		chunk := min(bps-off, f.size-f.rdPtr)
		if left := len(p) - n; left < int(chunk) {
			chunk = uint32(left)
		}
		copy(p[n:], v.cache.buf[off:off+chunk])
		n += int(chunk)
		f.rdPtr += chunk

		if n == len(p) || f.rdPtr >= f.size {
			return n, nil
		}

		sectorInCluster++
		if sectorInCluster == spc {
			sectorInCluster = 0
			if cluster, err = v.chainCluster(cluster, 1); err != nil {
				return n, err
			}
		}
	}
}

// Write copies p to the file at the write cursor of h. Every completed sector
// is flushed before moving to the next one, and the size stored in the
// directory entry is updated at the end. Writing never allocates clusters:
// running past the end of the chain fails with ErrShortChain.
func (v *Volume) Write(h Handle, p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	f, err := v.files.get(h)
	if err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if uint64(f.wrPtr)+uint64(len(p)) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: write of %d bytes at %d exceeds the maximum file size",
			ErrOutOfRange, len(p), f.wrPtr)
	}

	var (
		bps             = v.geo.BytesPerSector
		spc             = v.geo.SectorsPerCluster
		sectorOffset    = f.wrPtr / bps
		sectorInCluster = sectorOffset % spc
		start           = f.wrPtr
		origSize        = f.size
		flushed         uint32
	)

	// fail leaves the handle describing only the bytes that reached the device.
	// The size grows only when some sector was flushed past the old end.
	fail := func(err error) (int, error) {
		f.wrPtr = start + flushed
		f.size = origSize
		if flushed > 0 && f.wrPtr > origSize {
			f.size = f.wrPtr
		}
		if f.size != origSize {
			if uerr := v.updateEntry(f); uerr != nil {
				err = errors.Join(err, uerr)
			}
		}
		return int(flushed), err
	}

	cluster, err := v.chainCluster(f.firstCluster, sectorOffset/spc)
	if err != nil {
		return 0, err
	}

	sector := v.geo.ClusterToSector(cluster) + sectorInCluster
	if err := v.cache.read(sector); err != nil {
		return 0, err
	}

	var n uint32
	for {
		off := f.wrPtr % bps
		chunk := min(bps-off, uint32(len(p))-n)
		copy(v.cache.buf[off:off+chunk], p[n:])
		n += chunk
		f.wrPtr += chunk
		if f.wrPtr > f.size {
			f.size = f.wrPtr
		}

		if n == uint32(len(p)) {
			break
		}

		if err := v.cache.write(sector); err != nil {
			return fail(err)
		}
		flushed = n

		sectorInCluster++
		if sectorInCluster == spc {
			sectorInCluster = 0
			if cluster, err = v.chainCluster(cluster, 1); err != nil {
				return fail(err)
			}
		}

		sector = v.geo.ClusterToSector(cluster) + sectorInCluster
		if err := v.cache.read(sector); err != nil {
			return fail(err)
		}
	}

	if err := v.cache.write(sector); err != nil {
		return fail(err)
	}
	flushed = n

	if err := v.updateEntry(f); err != nil {
		return int(n), err
	}
	return int(n), nil
}

// MoveReadPointer sets the read cursor of h. Positions past the end of the file are rejected.
func (v *Volume) MoveReadPointer(h Handle, pos uint32) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	f, err := v.files.get(h)
	if err != nil {
		return err
	}
	if pos > f.size {
		return fmt.Errorf("%w: %d past end of file (%d bytes)", ErrOutOfRange, pos, f.size)
	}
	f.rdPtr = pos
	return nil
}

// MoveWritePointer sets the write cursor of h. Any position is accepted;
// a later Write fails if the position lies outside the allocated clusters.
func (v *Volume) MoveWritePointer(h Handle, pos uint32) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	f, err := v.files.get(h)
	if err != nil {
		return err
	}
	f.wrPtr = pos
	return nil
}

// Stat describes the open file h, using the size known to the handle.
func (v *Volume) Stat(h Handle) (FileInfo, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	f, err := v.files.get(h)
	if err != nil {
		return FileInfo{}, err
	}
	return f.info(), nil
}

// Runs maps the data of the open file h to contiguous extents of the device.
func (v *Volume) Runs(h Handle) ([]Run, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	f, err := v.files.get(h)
	if err != nil {
		return nil, err
	}
	return v.runs(f.firstCluster, f.size)
}
