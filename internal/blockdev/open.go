package blockdev

import (
	"io"
	"runtime"
	"strings"
	"unicode"
)

// Open selects a transport for path: a raw Windows volume for \\.\X: paths,
// a memory mapping when useMmap is set, a plain image file otherwise.
func Open(path string, writable, useMmap bool) (Device, io.Closer, error) {
	path = NormalizeVolumePath(path)

	if runtime.GOOS == "windows" && strings.HasPrefix(path, `\\.\`) {
		return openVolume(path, writable)
	}
	if useMmap {
		return openMapped(path, writable)
	}

	img, err := OpenImage(path, writable)
	if err != nil {
		return nil, nil, err
	}
	return img, img, nil
}

// NormalizeVolumePath checks if a given path is a Windows volume path
// and normalizes it to \\.\C: format if running on Windows.
// Otherwise, returns the path unchanged.
func NormalizeVolumePath(path string) string {
	if runtime.GOOS != "windows" {
		return path
	}

	path = strings.TrimSpace(path)
	path = strings.ReplaceAll(path, "/", `\`)
	upper := strings.ToUpper(path)

	if strings.HasPrefix(upper, `\\.\`) {
		return upper
	}

	// Handle paths like "C:" or "C:\" (must be drive letter only)
	if (len(upper) == 2 || (len(upper) == 3 && upper[2] == '\\')) && upper[1] == ':' && unicode.IsLetter(rune(upper[0])) {
		return `\\.\` + string(upper[0]) + `:`
	}
	return path
}
