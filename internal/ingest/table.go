package ingest

import "time"

// Row is one timestamped record of a stitched Table. Cells always carry a
// value for every Table column; columns absent from the originating block
// hold the missing marker.
type Row struct {
	Time  time.Time
	Cells map[string]Value
}

// Table is the concatenation of all blocks from one file. Row order is
// block arrival order, then in-block order; no timestamp sort is performed.
type Table struct {
	Columns []string
	Rows    []Row
}

// Stitch concatenates blocks in arrival order into one Table. Blocks may
// carry different schemas (e.g. WINDS and RASS blocks in one profiler
// file); the Table's columns are the union in first-seen order, and rows
// from blocks lacking a column hold the missing marker there.
func Stitch(blocks ...*Block) *Table {
	t := &Table{}
	seen := make(map[string]bool)
	for _, b := range blocks {
		for _, col := range b.Schema {
			if !seen[col] {
				seen[col] = true
				t.Columns = append(t.Columns, col)
			}
		}
	}

	for _, b := range blocks {
		for _, rec := range b.Rows {
			row := Row{Time: b.Time, Cells: make(map[string]Value, len(t.Columns))}
			for _, col := range t.Columns {
				row.Cells[col] = Missing
			}
			for i, col := range b.Schema {
				row.Cells[col] = rec[i]
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// DropColumns removes the named columns from the table and all rows.
// Unknown names are ignored.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := t.Columns[:0]
	for _, c := range t.Columns {
		if !drop[c] {
			kept = append(kept, c)
		}
	}
	t.Columns = kept
	for i := range t.Rows {
		for n := range drop {
			delete(t.Rows[i].Cells, n)
		}
	}
}
