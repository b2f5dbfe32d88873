package domain

// Tab is a result tab of the viewer.
type Tab string

const (
	TabText   Tab = "text"
	TabFields Tab = "fields"
	TabTables Tab = "tables"
)

// TablesPerPage is the fixed pagination size of the tables tab.
const TablesPerPage = 1

// IndexedTable is a table together with its position in the result.
type IndexedTable struct {
	Index   int   `json:"index"`
	Visible bool  `json:"visible"`
	Table   Table `json:"table"`
}

// Number is the 1-based label of the table.
func (t IndexedTable) Number() int {
	return t.Index + 1
}
