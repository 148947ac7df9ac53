package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/skyward-data/remote-sensing-etl/internal/ingest"
)

// SourceFile represents one unprocessed instrument file found by the
// extractor. Commit marks it processed so the next scan skips it.
type SourceFile struct {
	Path    string
	Size    int64
	ModTime time.Time
	Commit  func(ctx context.Context) error
}

// heightColumns are the column names the format readers use for the
// measurement height, in lookup order.
var heightColumns = []string{"height", "height_m", "HT", "z"}

// Observation is one (time, height) measurement from one instrument,
// flattened for the sink topic. Numeric cells land in Fields, text cells
// in Text; masked sentinel values appear in neither.
type Observation struct {
	ID         string    `json:"id"`
	Instrument string    `json:"instrument"`
	SourceFile string    `json:"source_file"`
	Time       time.Time `json:"time"`

	// Height is meters above ground, nil when the row carries no height
	// column (surface records, diagnostics).
	Height *float64 `json:"height,omitempty"`

	Fields map[string]float64 `json:"fields,omitempty"`
	Text   map[string]string  `json:"text,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}

// FromTable flattens a parsed instrument table into observations, one per
// row. Column order in the table does not matter; the height column is
// recognized by name and lifted out of Fields.
func FromTable(instrument, sourceFile string, table *ingest.Table) []Observation {
	if table == nil || len(table.Rows) == 0 {
		return nil
	}

	heightCol := ""
	for _, name := range heightColumns {
		if table.HasColumn(name) {
			heightCol = name
			break
		}
	}

	now := clock.Now().UTC()
	out := make([]Observation, 0, len(table.Rows))
	for i, row := range table.Rows {
		obs := Observation{
			Instrument:  instrument,
			SourceFile:  sourceFile,
			Time:        row.Time,
			ProcessedAt: now,
		}

		for col, v := range row.Cells {
			if f, ok := v.Float(); ok {
				if col == heightCol {
					h := f
					obs.Height = &h
					continue
				}
				if obs.Fields == nil {
					obs.Fields = map[string]float64{}
				}
				obs.Fields[col] = f
			} else if s, ok := v.Text(); ok {
				if obs.Text == nil {
					obs.Text = map[string]string{}
				}
				obs.Text[col] = s
			}
		}

		obs.ID = generateID(instrument, sourceFile, row.Time, obs.Height, i)
		out = append(out, obs)
	}
	return out
}

// generateID produces a deterministic ID from the observation's key fields.
// Deterministic IDs enable idempotent upserts downstream and replay safety:
// reprocessing the same file produces the same IDs.
func generateID(instrument, sourceFile string, ts time.Time, height *float64, row int) string {
	h := -1.0
	if height != nil {
		h = *height
	}
	input := fmt.Sprintf("%s|%s|%d|%.2f|%d", instrument, sourceFile, ts.UnixNano(), h, row)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if instrument == "" {
		return short
	}
	return instrument + "-" + short
}
