package dfxml

import (
	"encoding/xml"
	"errors"
	"io"
)

// Report is the content of a DFXML document produced by WriteVolume and
// WriteFileObject calls.
type Report struct {
	Volume *Volume
	Files  []FileObject
}

// ReadReport decodes the volume and file objects of a DFXML document.
// Elements other than <volume> and <fileobject> are skipped.
func ReadReport(r io.Reader) (*Report, error) {
	dec := xml.NewDecoder(r)
	report := &Report{}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return report, nil
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "volume":
			var vol Volume
			if err := dec.DecodeElement(&vol, &start); err != nil {
				return nil, err
			}
			report.Volume = &vol
		case "fileobject":
			var obj FileObject
			if err := dec.DecodeElement(&obj, &start); err != nil {
				return nil, err
			}
			report.Files = append(report.Files, obj)
		}
	}
}

// ReadFileObjects returns the file objects of a DFXML document.
func ReadFileObjects(r io.Reader) ([]FileObject, error) {
	report, err := ReadReport(r)
	if err != nil {
		return nil, err
	}
	return report.Files, nil
}
