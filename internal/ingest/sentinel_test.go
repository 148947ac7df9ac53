package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maskTable() *Table {
	return Stitch(&Block{
		Schema: Schema{"HT", "SPD", "DIR", "SPD.1"},
		Rows: []Record{
			{Num(100), Num(5.1), Num(180), Num(999999)},
			{Num(200), Num(999999), Num(999999), Num(6.0)},
		},
	})
}

func TestMaskSentinels(t *testing.T) {
	table := maskTable()
	unmatched := table.MaskSentinels(SentinelMap{
		"SPD": {Num(999999)},
		"DIR": {Num(999999)},
	})

	assert.Empty(t, unmatched)
	assert.True(t, table.Rows[1].Cells["SPD"].IsMissing())
	assert.True(t, table.Rows[1].Cells["DIR"].IsMissing())
	// Prefix match covers the deduplicated SPD.1 variant.
	assert.True(t, table.Rows[0].Cells["SPD.1"].IsMissing())

	// Non-sentinel values untouched.
	spd, ok := table.Rows[0].Cells["SPD"].Float()
	require.True(t, ok)
	assert.Equal(t, 5.1, spd)
}

func TestMaskSentinelsIdempotent(t *testing.T) {
	once := maskTable()
	m := SentinelMap{"SPD": {Num(999999)}, "DIR": {Num(999999)}}
	once.MaskSentinels(m)

	twice := maskTable()
	twice.MaskSentinels(m)
	twice.MaskSentinels(m)

	assert.Equal(t, once.Rows, twice.Rows)
}

func TestMaskSentinelsUnmatchedColumnIsDiagnostic(t *testing.T) {
	table := maskTable()
	unmatched := table.MaskSentinels(SentinelMap{
		"SPD": {Num(999999)},
		"RAD": {Num(999999)},
		"CNR": {Num(-99.9)},
	})

	// Reported, sorted, and not fatal.
	assert.Equal(t, []string{"CNR", "RAD"}, unmatched)
}

func TestMaskSentinelsExactEquality(t *testing.T) {
	table := Stitch(&Block{
		Schema: Schema{"ws"},
		Rows:   []Record{{Num(99.99)}, {Num(99.989999)}, {Str("99.99")}},
	})

	table.MaskSentinels(SentinelMap{"ws": {Num(99.99)}})

	assert.True(t, table.Rows[0].Cells["ws"].IsMissing())
	// Close-but-not-equal numbers and text of the same spelling survive:
	// sentinels are exact encodings, not epsilon matches.
	assert.False(t, table.Rows[1].Cells["ws"].IsMissing())
	assert.False(t, table.Rows[2].Cells["ws"].IsMissing())
}

func TestMaskSentinelsMultipleLiterals(t *testing.T) {
	table := Stitch(&Block{
		Schema: Schema{"winddirection_deg"},
		Rows:   []Record{{Num(999)}, {Num(-99.9)}, {Num(270)}},
	})

	table.MaskSentinels(SentinelMap{"winddirection_deg": {Num(999), Num(-99.9)}})

	assert.True(t, table.Rows[0].Cells["winddirection_deg"].IsMissing())
	assert.True(t, table.Rows[1].Cells["winddirection_deg"].IsMissing())
	assert.False(t, table.Rows[2].Cells["winddirection_deg"].IsMissing())
}
