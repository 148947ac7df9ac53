package formats

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/skyward-data/remote-sensing-etl/internal/ingest"
)

// PCSodarColumns is the fixed PCSodar data block schema: bulk wind fields
// followed by per-beam (w, v, u) statistics groups.
var PCSodarColumns = []string{
	"height_m", "windspeed_ms", "winddirection_deg", "reliability",
	"w_speed_ms", "w_reliability", "w_count", "w_stdev_ms", "w_amplitude", "w_noise", "w_SNR", "w_valid_count",
	"v_speed_ms", "v_reliability", "v_count", "v_stdev_ms", "v_amplitude", "v_noise", "v_SNR", "v_valid_count",
	"u_speed_ms", "u_reliability", "u_count", "u_stdev_ms", "u_amplitude", "u_noise", "u_SNR", "u_valid_count",
}

// PCSodarRangeGates is the default gate height ladder (meters) for ARL
// deployments: 15 gates at 30 m spacing.
var PCSodarRangeGates = []float64{
	30, 60, 90, 120, 150, 180, 210, 240, 270, 300, 330, 360, 390, 420, 450,
}

// PCSodarSentinels holds the ARL bad-value encodings: -99.9 for speed,
// 999 for direction.
var PCSodarSentinels = ingest.SentinelMap{
	"windspeed_ms":      {ingest.Num(-99.9)},
	"winddirection_deg": {ingest.Num(999)},
}

// PCSodarOptions configures an ARL profiler read.
type PCSodarOptions struct {
	// RangeGates overrides PCSodarRangeGates when non-nil. The block row
	// count and the expected height_m column values both derive from it.
	RangeGates []float64

	// Sentinels overrides PCSodarSentinels when non-nil.
	Sentinels ingest.SentinelMap
}

// PCSodarFile is one parsed ARL wind profiler file.
type PCSodarFile struct {
	Table              *ingest.Table
	Blocks             int
	UnmatchedSentinels []string
}

// ReadPCSodar parses an ARL wind profiler file in PCSodar block format:
// each block is a quoted CSV timestamp line, an operating-parameters line,
// then exactly one comma-delimited row per range gate. The height_m column
// of every block is checked against the configured gate ladder so a
// misaligned file fails loudly instead of attaching wrong heights.
func ReadPCSodar(r io.Reader, opts PCSodarOptions) (*PCSodarFile, error) {
	gates := opts.RangeGates
	if gates == nil {
		gates = PCSodarRangeGates
	}
	sentinels := opts.Sentinels
	if sentinels == nil {
		sentinels = PCSodarSentinels
	}

	rd := ingest.NewReader(r)
	schema := ingest.ResolveSchema(PCSodarColumns)

	var blocks []*ingest.Block
	for {
		first, err := rd.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(first) == "" {
			continue
		}

		ts, err := parsePCSodarTimestamp(first, rd.Line())
		if err != nil {
			return nil, err
		}

		// Sodar operating parameters, not part of the table.
		if err := rd.Skip(1); err != nil {
			return nil, err
		}

		block, err := rd.ReadBlock(ingest.BlockSpec{
			Schema:     schema,
			Terminator: ingest.Rows(len(gates)),
			Delimiter:  ",",
			Time:       ts,
		})
		if err != nil {
			return nil, err
		}
		if err := checkRangeGates(block, gates, rd.Line()); err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	table := ingest.Stitch(blocks...)
	unmatched := table.MaskSentinels(sentinels)

	return &PCSodarFile{Table: table, Blocks: len(blocks), UnmatchedSentinels: unmatched}, nil
}

// parsePCSodarTimestamp parses the quoted CSV block timestamp line:
// label, year, month, day, "HH:MM", flag.
func parsePCSodarTimestamp(line string, lineNo int) (time.Time, error) {
	fields := strings.Split(strings.ReplaceAll(line, `"`, ""), ",")
	if len(fields) < 5 {
		return time.Time{}, &ingest.SchemaError{Line: lineNo, Msg: fmt.Sprintf("bad block timestamp line %q", line)}
	}

	year, errY := strconv.Atoi(strings.TrimSpace(fields[1]))
	month, errM := strconv.Atoi(strings.TrimSpace(fields[2]))
	day, errD := strconv.Atoi(strings.TrimSpace(fields[3]))
	if errY != nil || errM != nil || errD != nil {
		return time.Time{}, &ingest.SchemaError{Line: lineNo, Msg: fmt.Sprintf("bad block date in %q", line)}
	}

	hhmm := strings.TrimSpace(fields[4])
	if len(hhmm) < 5 {
		return time.Time{}, &ingest.SchemaError{Line: lineNo, Msg: fmt.Sprintf("bad block time %q", hhmm)}
	}
	hour, errH := strconv.Atoi(hhmm[:2])
	minute, errMin := strconv.Atoi(hhmm[3:5])
	if errH != nil || errMin != nil {
		return time.Time{}, &ingest.SchemaError{Line: lineNo, Msg: fmt.Sprintf("bad block time %q", hhmm)}
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC), nil
}

// checkRangeGates verifies the block's height_m column matches the
// configured gate ladder row for row.
func checkRangeGates(block *ingest.Block, gates []float64, lineNo int) error {
	for i := range block.Rows {
		h, ok := block.Field(i, "height_m").Float()
		if !ok || h != gates[i] {
			return &ingest.ColumnMismatchError{
				Line:    lineNo,
				Want:    int(gates[i]),
				Got:     int(h),
				Context: "height_m disagrees with the configured range gates",
			}
		}
	}
	return nil
}
