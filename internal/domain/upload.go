package domain

import "strings"

// LocalFile is the file the user picked, held in memory until transfer.
type LocalFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// IsImage reports whether the file can be previewed inline as an image.
func (f *LocalFile) IsImage() bool {
	return f != nil && strings.HasPrefix(f.ContentType, "image/")
}

// IsPDF reports whether the file is a PDF document.
func (f *LocalFile) IsPDF() bool {
	return f != nil && f.ContentType == "application/pdf"
}

// UploadedFile pairs one selection with the server path it was stored under.
// ID changes on every selection; a ServerPath is only ever attached to the
// selection it was produced for.
type UploadedFile struct {
	ID         string
	Local      *LocalFile
	ServerPath string
}

// HasServerPath reports whether the transfer for this selection succeeded.
func (f *UploadedFile) HasServerPath() bool {
	return f != nil && f.ServerPath != ""
}
