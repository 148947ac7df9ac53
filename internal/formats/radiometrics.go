package formats

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/skyward-data/remote-sensing-etl/internal/ingest"
)

// radiometricsTimeLayouts cover the level 2 record timestamp column.
var radiometricsTimeLayouts = []string{
	"01/02/06 15:04:05",
	"01/02/2006 15:04:05",
}

// Level 2 control record ids: 99 carries free-text diagnostics, 101 maps
// record ids to human-readable table names.
const (
	radiometricsDiagnosticRecord = 99
	radiometricsNameRecord       = 101
)

// RadiometricsFile is one parsed microwave radiometer level 2 file:
// one table per record type, keyed by the name announced in the file's
// record-101 lines (or the numeric record id when unnamed).
type RadiometricsFile struct {
	Records map[string]*ingest.Table

	// Diagnostics collects the free text of record-99 lines.
	Diagnostics []string
}

// ReadRadiometrics parses a Radiometrics level 2 CSV file. The file opens
// with "Record,..." header lines declaring the schema of each record-type
// family (a data record with id N uses the header with id N − N%10);
// every following line is demultiplexed into its record type's table.
// Record types make heterogeneous tables within one file by design.
func ReadRadiometrics(r io.Reader) (*RadiometricsFile, error) {
	rd := ingest.NewReader(r)
	out := &RadiometricsFile{Records: map[string]*ingest.Table{}}

	headers, err := readRadiometricsHeaders(rd)
	if err != nil {
		return nil, err
	}

	type recordSet struct {
		schema ingest.Schema
		rows   []ingest.Row
	}
	sets := map[int]*recordSet{}
	names := map[int]string{}

	for {
		line, err := rd.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		// Data line layout: line number, timestamp, record id, values...
		fields := splitCSV(line)
		if len(fields) < 3 {
			return nil, &ingest.ColumnMismatchError{
				Line: rd.Line(), Want: 3, Got: len(fields),
				Context: "data line lacks the line-number/timestamp/record-id prefix",
			}
		}
		rec, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			return nil, &ingest.SchemaError{Line: rd.Line(), Msg: fmt.Sprintf("bad record id %q", fields[2])}
		}

		switch rec {
		case radiometricsDiagnosticRecord:
			out.Diagnostics = append(out.Diagnostics, strings.Join(fields[3:], " "))
			continue
		case radiometricsNameRecord:
			if len(fields) >= 5 {
				if id, err := strconv.Atoi(strings.TrimSpace(fields[3])); err == nil {
					names[id] = fields[4]
				}
			}
			continue
		}

		header, ok := headers[rec-rec%10]
		if !ok {
			return nil, &ingest.UnexpectedBlockHeaderError{
				Line: rd.Line(),
				Got:  strconv.Itoa(rec),
				Want: headerIDs(headers),
			}
		}

		set, ok := sets[rec]
		if !ok {
			set = &recordSet{schema: ingest.ResolveSchema(append([]string{"id"}, header...))}
			sets[rec] = set
		}

		ts, err := parseAnyTime(strings.TrimSpace(fields[1]), radiometricsTimeLayouts)
		if err != nil {
			return nil, &ingest.SchemaError{Line: rd.Line(), Msg: err.Error()}
		}

		values := fields[2:]
		if len(values) != len(set.schema) {
			return nil, &ingest.ColumnMismatchError{
				Line: rd.Line(), Want: len(set.schema), Got: len(values),
				Context: fmt.Sprintf("record %d row disagrees with its header", rec),
			}
		}
		row := ingest.Row{Time: ts, Cells: make(map[string]ingest.Value, len(values))}
		for i, tok := range values {
			row.Cells[set.schema[i]] = ingest.Coerce(tok)
		}
		set.rows = append(set.rows, row)
	}

	for rec, set := range sets {
		key := strconv.Itoa(rec)
		if name, ok := names[rec]; ok {
			key = name
		}
		out.Records[key] = &ingest.Table{Columns: set.schema, Rows: set.rows}
	}
	return out, nil
}

// Merged flattens the per-record-type tables into one heterogeneous table
// with a record_type column, rows grouped by sorted record key.
func (f *RadiometricsFile) Merged() *ingest.Table {
	keys := make([]string, 0, len(f.Records))
	for k := range f.Records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	merged := &ingest.Table{Columns: []string{"record_type"}}
	seen := map[string]bool{"record_type": true}
	for _, k := range keys {
		for _, col := range f.Records[k].Columns {
			if !seen[col] {
				seen[col] = true
				merged.Columns = append(merged.Columns, col)
			}
		}
	}

	for _, k := range keys {
		for _, row := range f.Records[k].Rows {
			cells := make(map[string]ingest.Value, len(merged.Columns))
			for _, col := range merged.Columns {
				cells[col] = ingest.Missing
			}
			for col, v := range row.Cells {
				cells[col] = v
			}
			cells["record_type"] = ingest.Str(k)
			merged.Rows = append(merged.Rows, ingest.Row{Time: row.Time, Cells: cells})
		}
	}
	return merged
}

// readRadiometricsHeaders consumes the leading "Record,..." lines, mapping
// header record ids to their column lists. The first non-header line is
// pushed back for the data pass.
func readRadiometricsHeaders(rd *ingest.Reader) (map[int][]string, error) {
	headers := map[int][]string{}
	for {
		line, err := rd.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		fields := splitCSV(line)
		if len(fields) == 0 || fields[0] != "Record" {
			rd.UnreadLine(line)
			break
		}
		if len(fields) < 4 {
			return nil, &ingest.SchemaError{Line: rd.Line(), Msg: fmt.Sprintf("bad record header line %q", line)}
		}
		id, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			return nil, &ingest.SchemaError{Line: rd.Line(), Msg: fmt.Sprintf("bad record header id %q", fields[2])}
		}
		headers[id] = fields[3:]
	}
	if len(headers) == 0 {
		return nil, &ingest.SchemaError{Line: rd.Line(), Msg: "file declares no record headers"}
	}
	return headers, nil
}

// splitCSV splits a level 2 line on commas, trimming the trailing comma
// most rows carry.
func splitCSV(line string) []string {
	line = strings.TrimSuffix(strings.TrimSpace(line), ",")
	if line == "" {
		return nil
	}
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func headerIDs(headers map[int][]string) []string {
	ids := make([]string, 0, len(headers))
	for id := range headers {
		ids = append(ids, strconv.Itoa(id))
	}
	sort.Strings(ids)
	return ids
}
