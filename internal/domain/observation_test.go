package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyward-data/remote-sensing-etl/internal/ingest"
)

func fixedClock(t *testing.T) time.Time {
	t.Helper()
	at := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { SetClock(nil) })
	return at
}

func sampleTable() *ingest.Table {
	obsTime := time.Date(2016, 5, 17, 0, 0, 38, 0, time.UTC)
	return &ingest.Table{
		Columns: []string{"height", "speed", "direction", "pos"},
		Rows: []ingest.Row{
			{
				Time: obsTime,
				Cells: map[string]ingest.Value{
					"height":    ingest.Num(40),
					"speed":     ingest.Num(5.2),
					"direction": ingest.Num(270),
					"pos":       ingest.Str("V"),
				},
			},
			{
				Time: obsTime,
				Cells: map[string]ingest.Value{
					"height":    ingest.Num(80),
					"speed":     ingest.Missing,
					"direction": ingest.Missing,
					"pos":       ingest.Str("V"),
				},
			},
		},
	}
}

func TestFromTable(t *testing.T) {
	processedAt := fixedClock(t)

	obs := FromTable("windcube", "WLS7-64_2016_05_17.rtd", sampleTable())
	require.Len(t, obs, 2)

	first := obs[0]
	assert.Equal(t, "windcube", first.Instrument)
	assert.Equal(t, "WLS7-64_2016_05_17.rtd", first.SourceFile)
	assert.Equal(t, processedAt, first.ProcessedAt)
	require.NotNil(t, first.Height)
	assert.Equal(t, 40.0, *first.Height)
	assert.Equal(t, map[string]float64{"speed": 5.2, "direction": 270}, first.Fields)
	assert.Equal(t, map[string]string{"pos": "V"}, first.Text)

	// Masked cells are absent, not zero.
	second := obs[1]
	_, ok := second.Fields["speed"]
	assert.False(t, ok)
	_, ok = second.Fields["direction"]
	assert.False(t, ok)
}

func TestFromTableDeterministicIDs(t *testing.T) {
	fixedClock(t)

	a := FromTable("windcube", "f.rtd", sampleTable())
	b := FromTable("windcube", "f.rtd", sampleTable())
	require.Len(t, a, 2)

	assert.Equal(t, a[0].ID, b[0].ID)
	assert.Equal(t, a[1].ID, b[1].ID)
	assert.NotEqual(t, a[0].ID, a[1].ID)
	assert.Contains(t, a[0].ID, "windcube-")
}

func TestFromTableIDChangesWithSource(t *testing.T) {
	fixedClock(t)

	a := FromTable("windcube", "a.rtd", sampleTable())
	b := FromTable("windcube", "b.rtd", sampleTable())
	assert.NotEqual(t, a[0].ID, b[0].ID)
}

func TestFromTableNoHeightColumn(t *testing.T) {
	fixedClock(t)

	table := &ingest.Table{
		Columns: []string{"Tamb(K)"},
		Rows: []ingest.Row{{
			Time:  time.Date(2016, 5, 17, 12, 0, 0, 0, time.UTC),
			Cells: map[string]ingest.Value{"Tamb(K)": ingest.Num(290.1)},
		}},
	}

	obs := FromTable("radiometrics", "lv2.csv", table)
	require.Len(t, obs, 1)
	assert.Nil(t, obs[0].Height)
	assert.Equal(t, 290.1, obs[0].Fields["Tamb(K)"])
}

func TestFromTableEmpty(t *testing.T) {
	assert.Nil(t, FromTable("windcube", "f.rtd", nil))
	assert.Nil(t, FromTable("windcube", "f.rtd", &ingest.Table{}))
}
