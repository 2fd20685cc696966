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
package sysinfo

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

const unknown = "unknown"

// SysInfo holds the basic operating system details.
type SysInfo struct {
	Name    string // runtime.GOOS
	Release string // Distribution or product name, e.g. "Ubuntu", "macOS"
	Version string // Release or build version
}

// SysUnknown describes a host whose release could not be determined.
var SysUnknown = SysInfo{
	Name:    runtime.GOOS,
	Release: unknown,
	Version: unknown,
}

// Stat returns the operating system details of the running host.
// Fields that cannot be determined are reported as "unknown".
func Stat() (*SysInfo, error) {
	info := SysUnknown

	switch runtime.GOOS {
	case "linux":
		f, err := os.Open("/etc/os-release")
		if err != nil {
			break
		}
		defer f.Close()

		kv := parseKeyValues(f, "=")
		info.Release = valueOr(kv["NAME"], unknown)
		info.Version = valueOr(kv["VERSION"], unknown)
	case "darwin":
		out, err := exec.Command("sw_vers").Output()
		if err != nil {
			info.Release = "macOS"
			break
		}

		kv := parseKeyValues(strings.NewReader(string(out)), ":")
		info.Release = valueOr(kv["ProductName"], "macOS")
		info.Version = valueOr(kv["ProductVersion"], unknown)
	case "windows":
		info.Release = "Windows"
		if out, err := exec.Command("cmd", "/c", "ver").Output(); err == nil {
			info.Version = valueOr(strings.TrimSpace(string(out)), unknown)
		}
	}
	return &info, nil
}

// parseKeyValues reads "key<sep>value" lines, trimming blanks and quotes
// around values. Lines without the separator are skipped.
func parseKeyValues(r io.Reader, sep string) map[string]string {
	kv := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		k, v, ok := strings.Cut(scanner.Text(), sep)
		if !ok {
			continue
		}
		kv[strings.TrimSpace(k)] = strings.Trim(strings.TrimSpace(v), `"'`)
	}
	return kv
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
