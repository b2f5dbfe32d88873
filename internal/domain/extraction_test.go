package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestExtractResponse_ToResult(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantText   string
		wantFields int
		wantTables int
	}{
		{
			name:       "Full response",
			body:       `{"text":"Invoice\nTotal 10","forms":[{"key":"Total","value":"10"}],"tables":[{"headers":["a"],"rows":[["1"]]}]}`,
			wantText:   "Invoice\nTotal 10",
			wantFields: 1,
			wantTables: 1,
		},
		{
			name:     "Missing members",
			body:     `{}`,
			wantText: NoTextPlaceholder,
		},
		{
			name:     "Empty text",
			body:     `{"text":"","forms":null,"tables":null}`,
			wantText: NoTextPlaceholder,
		},
		{
			name:     "Forms as object",
			body:     `{"text":"x","forms":{}}`,
			wantText: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp ExtractResponse
			if err := json.Unmarshal([]byte(tt.body), &resp); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}

			result := resp.ToResult("file-1")

			if result.FileID != "file-1" {
				t.Errorf("expected file id file-1, got %s", result.FileID)
			}
			if result.Text != tt.wantText {
				t.Errorf("expected text %q, got %q", tt.wantText, result.Text)
			}
			if result.Fields == nil || len(result.Fields) != tt.wantFields {
				t.Errorf("expected %d fields (non-nil), got %v", tt.wantFields, result.Fields)
			}
			if result.Tables == nil || len(result.Tables) != tt.wantTables {
				t.Errorf("expected %d tables (non-nil), got %v", tt.wantTables, result.Tables)
			}
		})
	}
}

func TestExtractResponse_NilToResult(t *testing.T) {
	var resp *ExtractResponse
	result := resp.ToResult("file-2")
	if result.Text != NoTextPlaceholder {
		t.Fatalf("expected placeholder text, got %q", result.Text)
	}
}

func TestTable_PaddedRows(t *testing.T) {
	table := Table{
		Headers: []string{"Item", "Qty", "Price"},
		Rows: [][]string{
			{"Pen", "2", "1.50"},
			{"Paper"},
			{"Ink", "1", "9.99", "note"},
		},
	}

	if table.Width() != 4 {
		t.Fatalf("expected width 4, got %d", table.Width())
	}

	wantHeaders := []string{"Item", "Qty", "Price", ""}
	if !reflect.DeepEqual(table.PaddedHeaders(), wantHeaders) {
		t.Fatalf("unexpected headers: %v", table.PaddedHeaders())
	}

	rows := table.PaddedRows()
	if !reflect.DeepEqual(rows[1], []string{"Paper", "", "", ""}) {
		t.Fatalf("expected short row to be padded, got %v", rows[1])
	}
	if !reflect.DeepEqual(rows[2], []string{"Ink", "1", "9.99", "note"}) {
		t.Fatalf("expected long row to keep extra cells, got %v", rows[2])
	}
	if len(table.Rows[1]) != 1 {
		t.Fatalf("expected source rows to be left untouched")
	}
}
