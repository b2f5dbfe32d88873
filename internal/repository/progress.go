package repository

import (
	"io"

	"docproc/internal/domain"
)

// progressReader reports how much of a request body the transport consumed.
// Reported values never decrease and never exceed 100.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     int
	onChange domain.ProgressFunc
}

func newProgressReader(r io.Reader, total int64, onChange domain.ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, last: -1, onChange: onChange}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	if p.onChange == nil || p.total <= 0 {
		return
	}
	percent := int((p.read*100 + p.total/2) / p.total)
	if percent > 100 {
		percent = 100
	}
	if percent > p.last {
		p.last = percent
		p.onChange(percent)
	}
}
