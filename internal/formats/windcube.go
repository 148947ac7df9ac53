package formats

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/skyward-data/remote-sensing-etl/internal/ingest"
)

// windcubeTimeLayouts cover the day-first date/time column pair of WindCube
// v1 exports, with and without zero padding.
var windcubeTimeLayouts = []string{
	"2/1/2006 15:04:05",
	"02/01/2006 15:04:05",
	"2/1/2006 15:04",
}

// WindcubeOptions supplies the schema and level heights for header-less
// file variants. Files with a header ignore both.
type WindcubeOptions struct {
	DefaultColumns   []string
	DefaultAltitudes []float64
}

// WindcubeFile is one parsed WindCube v1 lidar file: the lidar operating
// parameters from the header (empty for header-less files) and the
// long-form wind observations derived from the um/vm component columns.
type WindcubeFile struct {
	ScanInfo     ingest.Metadata
	Altitudes    []float64
	Observations []ingest.LongObservation
}

// ReadWindcube parses a WindCube v1 lidar export. A first line of the form
// "HeaderSize=N" announces N key=value metadata lines followed by a column
// name line; without it the file starts directly with data and the
// configured defaults supply schema and altitudes.
func ReadWindcube(r io.Reader, opts WindcubeOptions) (*WindcubeFile, error) {
	rd := ingest.NewReader(r)
	out := &WindcubeFile{ScanInfo: ingest.Metadata{}}

	first, err := rd.ReadLine()
	if err != nil {
		return nil, &ingest.SchemaError{Line: rd.Line(), Msg: "empty file"}
	}

	var columns []string
	if strings.Contains(first, "=") {
		parts := strings.Split(first, "=")
		n, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
		if err != nil {
			return nil, &ingest.SchemaError{Line: rd.Line(), Msg: fmt.Sprintf("bad header line count %q", first)}
		}
		if out.ScanInfo, err = rd.ReadMetadata(n); err != nil {
			return nil, err
		}

		// The first header token is a combined "Date" label that actually
		// spans two columns in the data rows.
		schemaLine, err := rd.ReadLine()
		if err != nil {
			return nil, &ingest.SchemaError{Line: rd.Line(), Msg: "stream ended before the column name line"}
		}
		tokens := strings.Fields(schemaLine)
		if len(tokens) < 2 {
			return nil, &ingest.SchemaError{Line: rd.Line(), Msg: "column name line carries no data columns"}
		}
		columns = append([]string{"date", "time"}, tokens[1:]...)

		alt, ok := out.ScanInfo["Altitudes(m)"]
		if !ok {
			return nil, &ingest.SchemaError{Line: rd.Line(), Msg: "header lacks Altitudes(m)"}
		}
		if out.Altitudes, err = parseAltitudes(alt); err != nil {
			return nil, err
		}
	} else {
		if len(opts.DefaultColumns) == 0 || len(opts.DefaultAltitudes) == 0 {
			return nil, &ingest.SchemaError{Line: rd.Line(), Msg: "file has no header and no default schema was configured"}
		}
		rd.UnreadLine(first)
		columns = opts.DefaultColumns
		out.Altitudes = opts.DefaultAltitudes
	}

	block, err := rd.ReadBlock(ingest.BlockSpec{
		Schema:     ingest.ResolveSchema(columns),
		Terminator: ingest.BlankLine(),
	})
	if err != nil {
		return nil, err
	}

	table := ingest.Stitch(block)
	if err := deriveRowTimes(table, "date", "time", windcubeTimeLayouts); err != nil {
		return nil, err
	}

	out.Observations, err = ingest.Reshape(table, ingest.ComponentSpec{
		APrefix: "um",
		BPrefix: "vm",
		Heights: out.Altitudes,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// parseAltitudes reads the Altitudes(m) header value: a tab-separated list
// of level heights (a single level coerces to a plain number).
func parseAltitudes(v ingest.Value) ([]float64, error) {
	if f, ok := v.Float(); ok {
		return []float64{f}, nil
	}
	raw, _ := v.Text()
	var out []float64
	for _, tok := range strings.Fields(raw) {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, &ingest.SchemaError{Msg: fmt.Sprintf("bad altitude %q in Altitudes(m)", tok)}
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, &ingest.SchemaError{Msg: "Altitudes(m) lists no levels"}
	}
	return out, nil
}

// deriveRowTimes combines two text columns into each row's timestamp and
// drops them from the table.
func deriveRowTimes(t *ingest.Table, dateCol, timeCol string, layouts []string) error {
	for i := range t.Rows {
		d, _ := t.Rows[i].Cells[dateCol].Text()
		tm := t.Rows[i].Cells[timeCol].String()
		ts, err := parseAnyTime(d+" "+tm, layouts)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		t.Rows[i].Time = ts
	}
	t.DropColumns(dateCol, timeCol)
	return nil
}

func parseAnyTime(s string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
