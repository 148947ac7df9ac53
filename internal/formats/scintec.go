package formats

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/skyward-data/remote-sensing-etl/internal/ingest"
)

// ScintecFile is one parsed Scintec MFAS APRun sodar file. Row timestamps
// mark the BEGINNING of each measurement interval (block end time minus
// the interval duration carried on the block's time line).
type ScintecFile struct {
	FileTime   time.Time
	Instrument string
	Table      *ingest.Table
	Blocks     int

	// UnmatchedSentinels lists variables whose declared bad value matched
	// no resolved column. Diagnostic only.
	UnmatchedSentinels []string
}

// ReadScintec parses an APRun-format sodar file: a FORMAT-1 preamble
// declaring comment, variable, and height-level counts; a Main Data
// section whose variable definition lines carry per-column bad-value
// sentinels; then blank-line-separated profile blocks of one row per
// height level.
func ReadScintec(r io.Reader) (*ScintecFile, error) {
	rd := ingest.NewReader(r)
	out := &ScintecFile{}

	if _, err := rd.ExpectTag("FORMAT-1"); err != nil {
		return nil, err
	}

	fileTime, err := readScintecFileTime(rd)
	if err != nil {
		return nil, err
	}
	out.FileTime = fileTime

	instrument, err := rd.ReadLine()
	if err != nil {
		return nil, &ingest.SchemaError{Line: rd.Line(), Msg: "stream ended before the instrument line"}
	}
	out.Instrument = strings.TrimSpace(instrument)

	nComments, nVars, nLevels, err := readScintecCounts(rd)
	if err != nil {
		return nil, err
	}

	// Blank separator, file information section, declared comments, file
	// type section.
	if err := rd.Skip(1 + 3 + nComments + 3); err != nil {
		return nil, err
	}

	if _, err := rd.ExpectLine("Main Data"); err != nil {
		return nil, err
	}

	// Variable definitions section header.
	if err := rd.Skip(3); err != nil {
		return nil, err
	}

	columns, sentinels, err := readScintecVariables(rd, nVars+1)
	if err != nil {
		return nil, err
	}
	schema := ingest.ResolveSchema(columns)

	// Section trailer plus the blank line opening the data region.
	if err := rd.Skip(4); err != nil {
		return nil, err
	}

	blocks, err := readScintecProfiles(rd, schema, nLevels, fileTime)
	if err != nil {
		return nil, err
	}
	out.Blocks = len(blocks)

	out.Table = ingest.Stitch(blocks...)
	out.UnmatchedSentinels = out.Table.MaskSentinels(sentinels)
	return out, nil
}

// readScintecFileTime parses the "YYYY-MM-DD HH:MM:SS file_count" line.
func readScintecFileTime(rd *ingest.Reader) (time.Time, error) {
	line, err := rd.ReadLine()
	if err != nil {
		return time.Time{}, &ingest.SchemaError{Line: rd.Line(), Msg: "stream ended before the file time line"}
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return time.Time{}, &ingest.SchemaError{Line: rd.Line(), Msg: fmt.Sprintf("bad file time line %q", line)}
	}
	ts, err := time.Parse("2006-01-02 15:04:05", fields[0]+" "+fields[1])
	if err != nil {
		return time.Time{}, &ingest.SchemaError{Line: rd.Line(), Msg: fmt.Sprintf("bad file time %q", line)}
	}
	return ts, nil
}

// readScintecCounts parses the "comment-lines variables height-levels" line.
func readScintecCounts(rd *ingest.Reader) (nComments, nVars, nLevels int, err error) {
	line, err := rd.ReadLine()
	if err != nil {
		return 0, 0, 0, &ingest.SchemaError{Line: rd.Line(), Msg: "stream ended before the section count line"}
	}
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return 0, 0, 0, &ingest.SchemaError{Line: rd.Line(), Msg: fmt.Sprintf("bad section count line %q", line)}
	}
	counts := make([]int, 3)
	for i, f := range fields {
		if counts[i], err = strconv.Atoi(f); err != nil {
			return 0, 0, 0, &ingest.SchemaError{Line: rd.Line(), Msg: fmt.Sprintf("bad section count %q", f)}
		}
	}
	return counts[0], counts[1], counts[2], nil
}

// readScintecVariables parses n variable definition lines of the form
//
//	wind speed # speed # m/s # G1 # 0 # 99.99
//
// returning the column names in order and the per-column bad-value
// sentinels for those definitions that declare one.
func readScintecVariables(rd *ingest.Reader, n int) ([]string, ingest.SentinelMap, error) {
	columns := make([]string, 0, n)
	sentinels := ingest.SentinelMap{}
	for i := 0; i < n; i++ {
		line, err := rd.ReadLine()
		if err != nil {
			return nil, nil, &ingest.SchemaError{Line: rd.Line(), Msg: "stream ended inside the variable definitions"}
		}
		parts := strings.Split(line, "#")
		col := strings.TrimSpace(parts[0])
		if col == "" {
			return nil, nil, &ingest.SchemaError{Line: rd.Line(), Msg: fmt.Sprintf("unnamed variable definition %q", line)}
		}
		columns = append(columns, col)
		if len(parts) > 1 {
			if bad, err := strconv.ParseFloat(strings.TrimSpace(parts[len(parts)-1]), 64); err == nil {
				sentinels[col] = []ingest.Value{ingest.Num(bad)}
			}
		}
	}
	return columns, sentinels, nil
}

// readScintecProfiles reads blank-line-separated profile blocks. Each block
// opens with "<date> <end-time> <duration>", skips a repeated column-name
// line, then carries one row per height level. The first profile's end
// time must equal the file time from the preamble.
func readScintecProfiles(rd *ingest.Reader, schema ingest.Schema, nLevels int, fileTime time.Time) ([]*ingest.Block, error) {
	var blocks []*ingest.Block
	for {
		line, err := rd.ReadLine()
		if err == io.EOF {
			return blocks, nil
		}
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			// A short or blank trailer line ends the profile sequence.
			return blocks, nil
		}

		end, err := time.Parse("2006-01-02 15:04:05", fields[0]+" "+fields[1])
		if err != nil {
			return nil, &ingest.SchemaError{Line: rd.Line(), Msg: fmt.Sprintf("bad profile time line %q", line)}
		}
		duration, err := parseHMS(fields[2])
		if err != nil {
			return nil, &ingest.SchemaError{Line: rd.Line(), Msg: fmt.Sprintf("bad interval duration %q", fields[2])}
		}
		if len(blocks) == 0 && !end.Equal(fileTime) {
			return nil, &ingest.SchemaError{
				Line: rd.Line(),
				Msg:  fmt.Sprintf("first profile ends %s but the preamble declares %s", end, fileTime),
			}
		}

		// Repeated column-name line inside every block.
		if err := rd.Skip(1); err != nil {
			return nil, err
		}

		block, err := rd.ReadBlock(ingest.BlockSpec{
			Schema:     schema,
			Terminator: ingest.Rows(nLevels),
			Time:       end.Add(-duration),
			Duration:   duration,
		})
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)

		// Blank separator before the next profile; EOF here is a clean end.
		if _, err := rd.ReadLine(); err == io.EOF {
			return blocks, nil
		}
	}
}

// parseHMS parses a "HH:MM:SS" interval duration.
func parseHMS(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("want HH:MM:SS, got %q", s)
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	sec, errS := strconv.Atoi(parts[2])
	if errH != nil || errM != nil || errS != nil {
		return 0, fmt.Errorf("want HH:MM:SS, got %q", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}
