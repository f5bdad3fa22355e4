// Package loader implements the load Skill of the Intelligence Pipeline:
// it reads CSV, Excel, Parquet, or JSON into an in-memory tabular form
// and profiles it into an EDA profile (spec.md §4.4.1).
package loader

import "strings"

// Table is a minimal in-memory tabular form: column headers plus rows
// of raw string cells. Type inference happens downstream in Profile;
// the loader itself stays format-agnostic once a file is parsed.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Column returns every cell in the named column, in row order. Returns
// nil if the column does not exist.
func (t *Table) Column(name string) []string {
	idx := t.indexOf(name)
	if idx < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

func (t *Table) indexOf(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// NumRows reports the row count.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols reports the column count.
func (t *Table) NumCols() int { return len(t.Columns) }
