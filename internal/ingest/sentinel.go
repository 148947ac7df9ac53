package ingest

import (
	"sort"
	"strings"
)

// SentinelMap maps a field name — or a field-name prefix covering its
// deduplicated "<name>.<i>" variants — to the bad-value literals the source
// instrument uses for that field. Sentinels are documented exact encodings
// (999999, -99.9, 99.99, ...), not inferred outliers.
type SentinelMap map[string][]Value

// MaskSentinels replaces every cell equal to a configured sentinel for its
// column with the missing marker. Comparison is exact-value equality, so
// already-masked cells are never re-matched and masking is idempotent.
//
// Requested columns with no match in the table's columns are returned,
// sorted, as a diagnostic rather than an error: a field may legitimately be
// absent from a particular file variant.
func (t *Table) MaskSentinels(m SentinelMap) []string {
	var unmatched []string
	for key, sentinels := range m {
		cols := t.matchColumns(key)
		if len(cols) == 0 {
			unmatched = append(unmatched, key)
			continue
		}
		for _, col := range cols {
			for i := range t.Rows {
				cell := t.Rows[i].Cells[col]
				for _, s := range sentinels {
					if cell.Equal(s) {
						t.Rows[i].Cells[col] = Missing
						break
					}
				}
			}
		}
	}
	sort.Strings(unmatched)
	return unmatched
}

// matchColumns resolves a sentinel key against the table's columns: an
// exact name match, or any deduplicated "<key>.<i>" variant.
func (t *Table) matchColumns(key string) []string {
	var cols []string
	for _, c := range t.Columns {
		if c == key || strings.HasPrefix(c, key+".") {
			cols = append(cols, c)
		}
	}
	return cols
}
