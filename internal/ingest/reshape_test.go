package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reshapeTable(rows []Record) *Table {
	return Stitch(&Block{
		Schema: Schema{"um1", "vm1", "um2", "vm2"},
		Rows:   rows,
		Time:   time.Date(2016, 5, 17, 0, 0, 38, 0, time.UTC),
	})
}

func TestReshapeDirection(t *testing.T) {
	cases := []struct {
		name      string
		a, b      float64
		speed     float64
		direction float64
	}{
		{"east component only", 1, 0, 1, 270},
		{"north component only", 0, 1, 1, 180},
		{"west flow", -1, 0, 1, 90},
		{"south component only", 0, -1, 1, 360},
		{"wraparound reduced once", -1, -1, 1.4142135623730951, 45},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table := reshapeTable([]Record{{Num(tc.a), Num(tc.b), Num(tc.a), Num(tc.b)}})
			obs, err := Reshape(table, ComponentSpec{APrefix: "um", BPrefix: "vm", Heights: []float64{40, 80}})
			require.NoError(t, err)
			require.Len(t, obs, 2)

			speed, ok := obs[0].Speed.Float()
			require.True(t, ok)
			assert.InDelta(t, tc.speed, speed, 1e-12)

			dir, ok := obs[0].Direction.Float()
			require.True(t, ok)
			assert.InDelta(t, tc.direction, dir, 1e-9)
			assert.LessOrEqual(t, dir, 360.0)
			assert.Greater(t, dir, 0.0)
		})
	}
}

func TestReshapeLongForm(t *testing.T) {
	table := reshapeTable([]Record{
		{Num(1), Num(0), Num(0), Num(1)},
		{Num(2), Num(0), Num(0), Num(2)},
	})

	obs, err := Reshape(table, ComponentSpec{APrefix: "um", BPrefix: "vm", Heights: []float64{40, 80}})
	require.NoError(t, err)
	require.Len(t, obs, 4) // 2 rows x 2 levels

	assert.Equal(t, 40.0, obs[0].Height)
	assert.Equal(t, 80.0, obs[1].Height)
	assert.Equal(t, 40.0, obs[2].Height)
	assert.Equal(t, 80.0, obs[3].Height)

	// Level 1 of row 0: A=1, B=0.
	dir, _ := obs[0].Direction.Float()
	assert.Equal(t, 270.0, dir)
	// Level 2 of row 0: A=0, B=1.
	dir, _ = obs[1].Direction.Float()
	assert.Equal(t, 180.0, dir)

	for _, o := range obs {
		assert.False(t, o.Time.IsZero())
	}
}

func TestReshapeMissingComponentLeavesDerivedMissing(t *testing.T) {
	table := reshapeTable([]Record{{Missing, Num(1), Num(1), Num(1)}})

	obs, err := Reshape(table, ComponentSpec{APrefix: "um", BPrefix: "vm", Heights: []float64{40, 80}})
	require.NoError(t, err)

	assert.True(t, obs[0].Speed.IsMissing())
	assert.True(t, obs[0].Direction.IsMissing())
	assert.False(t, obs[1].Speed.IsMissing())
}

func TestReshapeLevelMismatch(t *testing.T) {
	// Table only carries 2 levels; asking for 3 heights must not pair
	// components at made-up heights.
	table := reshapeTable([]Record{{Num(1), Num(0), Num(0), Num(1)}})

	_, err := Reshape(table, ComponentSpec{APrefix: "um", BPrefix: "vm", Heights: []float64{40, 80, 120}})
	var mismatch *ColumnMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 3, mismatch.Want)
}

func TestReshapeMissingFamilyColumn(t *testing.T) {
	table := Stitch(&Block{
		Schema: Schema{"um1", "um2", "vm1"},
		Rows:   []Record{{Num(1), Num(2), Num(0)}},
	})

	_, err := Reshape(table, ComponentSpec{APrefix: "um", BPrefix: "vm", Heights: []float64{40, 80}})
	var mismatch *ColumnMismatchError
	require.ErrorAs(t, err, &mismatch)
}
