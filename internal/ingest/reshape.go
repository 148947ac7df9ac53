package ingest

import (
	"math"
	"strconv"
	"time"
)

// ComponentSpec names two parallel per-level column families holding
// orthogonal measurement components, e.g. "um1..umK" and "vm1..vmK" for a
// K-level lidar scan, together with the level-to-physical-height mapping.
type ComponentSpec struct {
	APrefix string
	BPrefix string
	Heights []float64
}

// LongObservation is one long-form row: a (time, height) pair with its two
// raw components and the derived magnitude and direction. Any missing
// component leaves the derived quantities missing too.
type LongObservation struct {
	Time      time.Time
	Height    float64
	A         Value
	B         Value
	Speed     Value
	Direction Value
}

// Reshape unpivots wide per-level component columns into one row per
// (time, height) and derives wind speed and direction:
//
//	speed     = sqrt(A² + B²)
//	direction = 270 − (180/π)·atan2(B, A)
//
// Directions above 360° are reduced by exactly 360 once. This single-step
// correction (not a modulo) is the adopted policy: atan2 bounds the raw
// value to [90°, 450°), so one step is total for any real input, and the
// one-step behavior is preserved for compatibility with historical output.
//
// Both families must supply a column for every configured level; a family
// missing a level column is a ColumnMismatchError (the A/B pairing would
// otherwise silently misalign heights).
func Reshape(t *Table, spec ComponentSpec) ([]LongObservation, error) {
	type pair struct{ a, b string }
	cols := make([]pair, len(spec.Heights))
	for i := range spec.Heights {
		level := strconv.Itoa(i + 1)
		p := pair{a: spec.APrefix + level, b: spec.BPrefix + level}
		if !t.HasColumn(p.a) || !t.HasColumn(p.b) {
			return nil, &ColumnMismatchError{
				Want:    len(spec.Heights),
				Got:     i,
				Context: "component column families do not cover every level",
			}
		}
		cols[i] = p
	}

	out := make([]LongObservation, 0, len(t.Rows)*len(spec.Heights))
	for _, row := range t.Rows {
		for i, height := range spec.Heights {
			obs := LongObservation{
				Time:   row.Time,
				Height: height,
				A:      row.Cells[cols[i].a],
				B:      row.Cells[cols[i].b],
			}
			if a, okA := obs.A.Float(); okA {
				if b, okB := obs.B.Float(); okB {
					obs.Speed = Num(math.Sqrt(a*a + b*b))
					obs.Direction = Num(direction(a, b))
				}
			}
			out = append(out, obs)
		}
	}
	return out, nil
}

func direction(a, b float64) float64 {
	d := 270.0 - 180.0/math.Pi*math.Atan2(b, a)
	if d > 360.0 {
		d -= 360.0
	}
	return d
}
