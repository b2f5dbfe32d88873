package domain

import "encoding/json"

// NoTextPlaceholder replaces a missing or empty text payload.
const NoTextPlaceholder = "No text extracted"

// Field is one detected form key/value pair.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Table is a detected table. Rows are expected to have len(Headers) cells but
// the backend does not enforce it.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Width is the number of columns needed to render every cell of the table.
func (t Table) Width() int {
	w := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// PaddedHeaders returns the headers padded with empty strings to Width.
func (t Table) PaddedHeaders() []string {
	return pad(t.Headers, t.Width())
}

// PaddedRows returns every row padded with empty cells to Width. Long rows
// keep their extra cells.
func (t Table) PaddedRows() [][]string {
	w := t.Width()
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = pad(row, w)
	}
	return rows
}

func pad(cells []string, width int) []string {
	out := make([]string, width)
	copy(out, cells)
	return out
}

// ExtractionResult is the outcome of one extraction, bound to the selection
// identified by FileID.
type ExtractionResult struct {
	FileID string  `json:"file_id"`
	Text   string  `json:"text"`
	Fields []Field `json:"fields"`
	Tables []Table `json:"tables"`
}

// ExtractResponse is the /extract_text/ response body. Every member is
// optional.
type ExtractResponse struct {
	Text   *string         `json:"text,omitempty"`
	Forms  json.RawMessage `json:"forms,omitempty"`
	Tables []Table         `json:"tables,omitempty"`
}

// ToResult applies the client defaults: missing text becomes the placeholder,
// missing fields and tables become empty collections.
func (r *ExtractResponse) ToResult(fileID string) *ExtractionResult {
	result := &ExtractionResult{
		FileID: fileID,
		Text:   NoTextPlaceholder,
		Fields: []Field{},
		Tables: []Table{},
	}
	if r == nil {
		return result
	}
	if r.Text != nil && *r.Text != "" {
		result.Text = *r.Text
	}
	// forms may come back as an object or null; only an array carries pairs
	var fields []Field
	if len(r.Forms) > 0 && json.Unmarshal(r.Forms, &fields) == nil && fields != nil {
		result.Fields = fields
	}
	if r.Tables != nil {
		result.Tables = r.Tables
	}
	return result
}
