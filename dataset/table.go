// Package dataset holds the in-memory tabular dataset that the enrichment
// run reads, annotates and exports. Input columns are opaque pass-through:
// only columns addressed by name are ever touched.
package dataset

import "fmt"

// Table is a header plus rows of string cells. Rows are kept padded to the
// header length so cell access by column name is always in bounds.
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// New creates an empty table with the given header.
func New(header []string) *Table {
	t := &Table{Header: append([]string(nil), header...)}
	t.rebuildIndex()
	return t
}

func (t *Table) rebuildIndex() {
	t.index = make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		t.index[name] = i
	}
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	if t.index == nil {
		t.rebuildIndex()
	}
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Get returns the cell at row/column, or "" when the column does not exist.
func (t *Table) Get(row int, col string) string {
	i, ok := t.ColumnIndex(col)
	if !ok || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][i]
}

// Set writes the cell at row/column. Unknown columns are an error so typos
// never silently drop enrichment data.
func (t *Table) Set(row int, col, value string) error {
	i, ok := t.ColumnIndex(col)
	if !ok {
		return fmt.Errorf("unknown column %q", col)
	}
	if row < 0 || row >= len(t.Rows) {
		return fmt.Errorf("row %d out of range (have %d rows)", row, len(t.Rows))
	}
	t.Rows[row][i] = value
	return nil
}

// AppendRow adds a row, padding or truncating it to the header length.
func (t *Table) AppendRow(cells []string) {
	row := make([]string, len(t.Header))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// EnsureColumns appends any missing columns to the header and pads every
// row with empty cells, so the output schema is stable regardless of
// per-row success.
func (t *Table) EnsureColumns(cols ...string) {
	added := 0
	for _, c := range cols {
		if !t.HasColumn(c) {
			t.Header = append(t.Header, c)
			t.index[c] = len(t.Header) - 1
			added++
		}
	}
	if added == 0 {
		return
	}
	for i, row := range t.Rows {
		padded := make([]string, len(t.Header))
		copy(padded, row)
		t.Rows[i] = padded
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }
