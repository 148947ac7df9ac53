package formats

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/skyward-data/remote-sensing-etl/internal/ingest"
)

// profilerTags is the allow-list of consensus data block types. WINDS
// blocks carry the wind returns (usually two configuration modes per
// file); RASS blocks carry virtual temperature returns.
var profilerTags = []string{"WINDS", "RASS"}

// ProfilerSentinels is the documented consensus-format bad-value encoding
// for speed and direction. Prefix matching covers the deduplicated SPD.1,
// DIR.1, ... variants produced by repeated header tokens.
var ProfilerSentinels = ingest.SentinelMap{
	"SPD": {ingest.Num(999999)},
	"DIR": {ingest.Num(999999)},
}

// ProfilerOptions configures a profiler read.
type ProfilerOptions struct {
	// Modes is the number of blocks to read; 0 reads until stream end.
	Modes int

	// Sentinels overrides ProfilerSentinels when non-nil.
	Sentinels ingest.SentinelMap
}

// ProfilerFile is one parsed consensus wind profiler file.
type ProfilerFile struct {
	Table  *ingest.Table
	Blocks int

	// UnmatchedSentinels lists configured sentinel columns absent from
	// this file variant. Diagnostic only.
	UnmatchedSentinels []string
}

// ReadProfiler parses a NOAA consensus-format wind profiler radar file
// (rev 4.1/5.1): a sequence of WINDS/RASS blocks, each with a station
// line, a tagged format line, a timestamp line, beam parameter lines, a
// column header with repeated names, and "$"-terminated data rows.
func ReadProfiler(r io.Reader, opts ProfilerOptions) (*ProfilerFile, error) {
	rd := ingest.NewReader(r)

	var blocks []*ingest.Block
	for opts.Modes == 0 || len(blocks) < opts.Modes {
		block, err := readProfilerBlock(rd)
		if err == io.EOF {
			if opts.Modes > 0 {
				return nil, &ingest.TruncatedBlockError{Line: rd.Line(), Want: opts.Modes, Got: len(blocks)}
			}
			break
		}
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	table := ingest.Stitch(blocks...)
	sentinels := opts.Sentinels
	if sentinels == nil {
		sentinels = ProfilerSentinels
	}
	unmatched := table.MaskSentinels(sentinels)

	return &ProfilerFile{Table: table, Blocks: len(blocks), UnmatchedSentinels: unmatched}, nil
}

// readProfilerBlock consumes one WINDS/RASS block. io.EOF means the stream
// ended cleanly at a block boundary.
func readProfilerBlock(rd *ingest.Reader) (*ingest.Block, error) {
	// The separating blank line is absent before the first block of a file.
	station, err := rd.ReadLine()
	if err != nil {
		return nil, io.EOF
	}
	if strings.TrimSpace(station) == "" {
		if station, err = rd.ReadLine(); err != nil {
			return nil, io.EOF
		}
	}

	tagLine, err := rd.ExpectTag(profilerTags...)
	if err != nil {
		return nil, err
	}
	tag := strings.Fields(tagLine)[0]

	// Latitude / longitude / elevation line.
	if err := rd.Skip(1); err != nil {
		return nil, err
	}

	ts, err := readProfilerTimestamp(rd)
	if err != nil {
		return nil, err
	}

	// Consensus averaging time plus four beam parameter lines.
	if err := rd.Skip(5); err != nil {
		return nil, err
	}

	headerLine, err := rd.ReadLine()
	if err != nil {
		return nil, &ingest.SchemaError{Line: rd.Line(), Msg: "stream ended before the block column header"}
	}

	return rd.ReadBlock(ingest.BlockSpec{
		Schema:     ingest.ResolveSchema(strings.Fields(headerLine)),
		Terminator: ingest.Token("$"),
		Time:       ts,
		Tag:        tag,
		Meta:       ingest.Metadata{"station": ingest.Str(strings.TrimSpace(station))},
	})
}

// readProfilerTimestamp parses the block date line: two-digit year, month,
// day, hour, minute, second, utc offset.
func readProfilerTimestamp(rd *ingest.Reader) (time.Time, error) {
	line, err := rd.ReadLine()
	if err != nil {
		return time.Time{}, &ingest.SchemaError{Line: rd.Line(), Msg: "stream ended before the block date line"}
	}
	fields := strings.Fields(line)
	if len(fields) < 6 {
		return time.Time{}, &ingest.SchemaError{Line: rd.Line(), Msg: fmt.Sprintf("bad block date line %q", line)}
	}

	nums := make([]int, 6)
	for i := 0; i < 6; i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return time.Time{}, &ingest.SchemaError{Line: rd.Line(), Msg: fmt.Sprintf("bad block date field %q", fields[i])}
		}
		nums[i] = n
	}

	return time.Date(2000+nums[0], time.Month(nums[1]), nums[2], nums[3], nums[4], nums[5], 0, time.UTC), nil
}
