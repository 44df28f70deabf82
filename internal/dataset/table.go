package dataset

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// Column describes one column of a table: its name and inferred kind.
type Column struct {
	Name string
	Kind Kind
}

// TimeLayout is the timestamp format used by transaction exports.
const TimeLayout = "02-01-2006 15:04"

// ParseTime parses a timestamp cell in the dataset's layout.
func ParseTime(s string) (time.Time, bool) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Table is an immutable, cleaned row-set. Rows are stored in source order;
// every cell of every retained row is non-empty.
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]string
}

// NewTable builds a table from a header and pre-cleaned rows. Rows shorter
// than the header are rejected by the loader, so cells align with cols.
func NewTable(cols []string, rows [][]string) *Table {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c] = i
	}
	return &Table{cols: cols, index: idx, rows: rows}
}

// Len returns the number of cleaned rows.
func (t *Table) Len() int { return len(t.rows) }

// ColumnNames returns column names in source order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Cell returns the value at (row, column name). ok is false when the column
// does not exist.
func (t *Table) Cell(row int, name string) (string, bool) {
	i, ok := t.index[name]
	if !ok {
		return "", false
	}
	return t.rows[row][i], true
}

// Column returns all values of the named column in row order.
func (t *Table) Column(name string) ([]string, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out, true
}

// Row returns the cells of one row in column order.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.cols))
	copy(out, t.rows[i])
	return out
}

// Columns classifies every column as numeric or categorical. A column is
// numeric when all of its cells parse as floats; empty tables classify
// everything as categorical.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.cols))
	for i, name := range t.cols {
		kind := KindCategorical
		if len(t.rows) > 0 {
			kind = KindNumeric
			for _, row := range t.rows {
				if _, ok := parseFloat(row[i]); !ok {
					kind = KindCategorical
					break
				}
			}
		}
		out[i] = Column{Name: name, Kind: kind}
	}
	return out
}

// NumericColumn returns the parsed float values of a numeric column.
// ok is false when the column is missing or any cell fails to parse.
func (t *Table) NumericColumn(name string) ([]float64, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(t.rows))
	for r, row := range t.rows {
		v, ok := parseFloat(row[i])
		if !ok {
			return nil, false
		}
		out[r] = v
	}
	return out, true
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
