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
package format

import (
	"github.com/ostafen/sdfat/pkg/table"
)

// FileRegistry maps magic number prefixes to file headers.
type FileRegistry struct {
	table *table.PrefixTable[[]FileHeader]
}

func NewFileRegistry(hdrs ...FileHeader) *FileRegistry {
	r := &FileRegistry{
		table: table.New[[]FileHeader](),
	}
	for _, hdr := range hdrs {
		r.Add(hdr)
	}
	return r
}

// Add registers every signature of hdr. Headers sharing a signature are
// kept in registration order and the first one wins on detection.
func (r *FileRegistry) Add(hdr FileHeader) {
	for _, sig := range hdr.Signatures {
		hdrs, _ := r.table.Get(sig)
		r.table.Insert(sig, append(hdrs, hdr))
	}
}

// PrefixLen returns the number of leading bytes Detect needs to see
// to match the longest registered signature.
func (r *FileRegistry) PrefixLen() int {
	return r.table.MaxKeyLen()
}

// Detect returns the header whose signature is the longest prefix of data.
func (r *FileRegistry) Detect(data []byte) (FileHeader, bool) {
	hdrs, _, ok := r.table.Longest(data)
	if !ok {
		return FileHeader{}, false
	}
	return hdrs[0], true
}
