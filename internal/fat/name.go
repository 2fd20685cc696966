package fat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/ostafen/sdfat/internal/disk"
)

const invalidNameChars = "\"*+,/:;<=>?[\\]|"

// ShortName converts "NAME.EXT" into the space padded 11-byte form stored
// in directory entries. Case is preserved, since matching is byte exact.
// An 11-byte string without a dot is taken verbatim.
func ShortName(name string) ([disk.DirEntryNameLen]byte, error) {
	var out [disk.DirEntryNameLen]byte
	for i := range out {
		out[i] = ' '
	}

	if len(name) == disk.DirEntryNameLen && !strings.Contains(name, ".") {
		copy(out[:], name)
		return out, checkNameChars(name)
	}

	base, ext, _ := strings.Cut(name, ".")
	if base == "" || len(base) > 8 || len(ext) > 3 || strings.Contains(ext, ".") {
		return out, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := checkNameChars(base + ext); err != nil {
		return out, err
	}

	copy(out[:8], base)
	copy(out[8:], ext)
	return out, nil
}

func checkNameChars(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || strings.IndexByte(invalidNameChars, s[i]) >= 0 {
			return fmt.Errorf("%w: character 0x%02X", ErrInvalidName, s[i])
		}
	}
	return nil
}

// FormatName renders an 11-byte directory entry name as "NAME.EXT".
func FormatName(raw [disk.DirEntryNameLen]byte) string {
	base := string(bytes.TrimRight(raw[:8], " "))
	ext := string(bytes.TrimRight(raw[8:], " "))
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// DecodeLongName decodes the UTF-16 units of a long name fragment.
// Units after a 0x0000 terminator or 0xFFFF padding are ignored.
func DecodeLongName(units []uint16) string {
	raw := make([]byte, 0, len(units)*2)
	for _, u := range units {
		if u == 0x0000 || u == 0xFFFF {
			break
		}
		raw = binary.LittleEndian.AppendUint16(raw, u)
	}

	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return ""
	}
	return string(out)
}
