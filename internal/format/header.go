// Package format identifies file contents by their magic numbers.
package format

type FileHeader struct {
	Ext         string // File extension, e.g., "mp3", "wav"
	Description string
	Signatures  [][]byte
}

var asfHeaderGUID = []byte{
	0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11,
	0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C,
}

var DefaultHeaders = []FileHeader{
	{
		Ext:         "mp3",
		Description: "MPEG audio",
		Signatures: [][]byte{
			{0xFF, 0xFA},
			{0xFF, 0xFB},
			{0xFF, 0xF2},
			{0xFF, 0xF3},
			{0xFF, 0xE2},
			{0xFF, 0xE3},
			[]byte("ID3"),
		},
	},
	{
		Ext:         "wav",
		Description: "RIFF container",
		Signatures: [][]byte{
			[]byte("RIFF"),
			[]byte("RIFX"),
		},
	},
	{
		Ext:         "au",
		Description: "Sun audio",
		Signatures: [][]byte{
			{0x2E, 0x73, 0x6E, 0x64},
		},
	},
	{
		Ext:         "wma",
		Description: "ASF media",
		Signatures:  [][]byte{asfHeaderGUID},
	},
	{
		Ext:         "jpeg",
		Description: "JPEG image",
		Signatures: [][]byte{
			{0xFF, 0xD8, 0xFF},
		},
	},
	{
		Ext:         "png",
		Description: "PNG image",
		Signatures: [][]byte{
			{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A},
		},
	},
	{
		Ext:         "gif",
		Description: "GIF image",
		Signatures: [][]byte{
			[]byte("GIF87a"),
			[]byte("GIF89a"),
		},
	},
	{
		Ext:         "bmp",
		Description: "BMP image",
		Signatures: [][]byte{
			[]byte("BM"),
		},
	},
	{
		Ext:         "tif",
		Description: "TIFF image",
		Signatures: [][]byte{
			[]byte("II*\x00"),
			[]byte("MM\x00*"),
		},
	},
	{
		Ext:         "pdf",
		Description: "PDF document",
		Signatures: [][]byte{
			[]byte("%PDF-"),
		},
	},
	{
		Ext:         "zip",
		Description: "ZIP archive",
		Signatures: [][]byte{
			{'P', 'K', 0x03, 0x04},
			{'P', 'K', '0', '0', 'P', 'K', 0x03, 0x04},
		},
	},
	{
		Ext:         "rar",
		Description: "RAR archive",
		Signatures: [][]byte{
			{'R', 'a', 'r', '!', 0x1A, 0x07, 0x00},
		},
	},
	{
		Ext:         "sqlite",
		Description: "SQLite database",
		Signatures: [][]byte{
			[]byte("SQLite format 3\x00"),
		},
	},
}
