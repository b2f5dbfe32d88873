package service

import (
	"strings"

	"docproc/internal/domain"

	"golang.org/x/text/cases"
)

// ViewState is the presentation-only state of the result viewer. Visibility
// is keyed by table index and reset together with the page whenever the
// tables collection is replaced.
type ViewState struct {
	ActiveTab       domain.Tab
	CurrentPage     int
	SearchQuery     string
	TableVisibility map[int]bool
}

// NewViewState returns the initial view: text tab, page 1, no filter.
func NewViewState() ViewState {
	return ViewState{
		ActiveTab:       domain.TabText,
		CurrentPage:     1,
		TableVisibility: make(map[int]bool),
	}
}

// SetActiveTab switches the result tab.
func (v *ViewState) SetActiveTab(tab domain.Tab) {
	v.ActiveTab = tab
}

// SetSearchQuery sets the text tab filter.
func (v *ViewState) SetSearchQuery(query string) {
	v.SearchQuery = query
}

// ResetTables is called whenever the tables collection is replaced.
func (v *ViewState) ResetTables() {
	v.CurrentPage = 1
	v.TableVisibility = make(map[int]bool)
}

// TotalPages is ceil(tableCount / TablesPerPage).
func TotalPages(tableCount int) int {
	if tableCount <= 0 {
		return 0
	}
	return (tableCount + domain.TablesPerPage - 1) / domain.TablesPerPage
}

// PrevPage moves back one page; no-op on the first page.
func (v *ViewState) PrevPage() {
	if v.CurrentPage > 1 {
		v.CurrentPage--
	}
}

// NextPage moves forward one page; no-op on the last page.
func (v *ViewState) NextPage(tableCount int) {
	if v.CurrentPage < TotalPages(tableCount) {
		v.CurrentPage++
	}
}

// Paginate jumps to page n, clamped into [1, TotalPages].
func (v *ViewState) Paginate(n, tableCount int) {
	last := TotalPages(tableCount)
	if n > last {
		n = last
	}
	if n < 1 {
		n = 1
	}
	v.CurrentPage = n
}

// ToggleTable flips the visibility of table i. Tables start visible.
func (v *ViewState) ToggleTable(i int) {
	if v.TableVisibility == nil {
		v.TableVisibility = make(map[int]bool)
	}
	v.TableVisibility[i] = !v.IsTableVisible(i)
}

// IsTableVisible reports the visibility of table i.
func (v ViewState) IsTableVisible(i int) bool {
	visible, ok := v.TableVisibility[i]
	return !ok || visible
}

// PageNumbers lists 1..TotalPages for the page selector.
func PageNumbers(tableCount int) []int {
	total := TotalPages(tableCount)
	pages := make([]int, total)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// CurrentTables returns the tables shown on the current page.
func (v ViewState) CurrentTables(tables []domain.Table) []domain.IndexedTable {
	first := (v.CurrentPage - 1) * domain.TablesPerPage
	if first < 0 || first >= len(tables) {
		return nil
	}
	last := first + domain.TablesPerPage
	if last > len(tables) {
		last = len(tables)
	}

	out := make([]domain.IndexedTable, 0, last-first)
	for i := first; i < last; i++ {
		out = append(out, domain.IndexedTable{
			Index:   i,
			Visible: v.IsTableVisible(i),
			Table:   tables[i],
		})
	}
	return out
}

// FilteredText keeps the lines of text whose case-folded content contains the
// case-folded query, in original order and original case.
func FilteredText(text, query string) string {
	folder := cases.Fold()
	needle := folder.String(query)

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.Contains(folder.String(line), needle) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
