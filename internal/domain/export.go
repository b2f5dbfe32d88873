package domain

import "strings"

// ExportFormat is one of the renditions the backend can produce.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportTXT  ExportFormat = "txt"
)

// ExportFormats lists the supported formats in menu order.
var ExportFormats = []ExportFormat{ExportJSON, ExportCSV, ExportTXT}

// ParseExportFormat validates a format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ExportJSON, ExportCSV, ExportTXT:
		return f, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Filename is the fixed download name for the format.
func (f ExportFormat) Filename() string {
	return "data." + string(f)
}

// Rendition is binary content returned by the backend. Release hands the
// buffer back once the content has been consumed.
type Rendition struct {
	ContentType string
	Data        []byte

	release func()
}

// NewRendition creates a rendition whose release func is called once.
func NewRendition(contentType string, data []byte, release func()) *Rendition {
	return &Rendition{ContentType: contentType, Data: data, release: release}
}

// Release drops the content. Data must not be used afterwards.
func (r *Rendition) Release() {
	if r == nil {
		return
	}
	r.Data = nil
	if r.release != nil {
		r.release()
		r.release = nil
	}
}
