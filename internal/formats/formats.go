package formats

import (
	"io"
	"sort"

	"github.com/skyward-data/remote-sensing-etl/internal/ingest"
)

// ReadFunc parses one instrument file into a stitched, sentinel-masked
// Table. Row timestamps are populated; structural errors abort the file.
type ReadFunc func(r io.Reader) (*ingest.Table, error)

var registry = map[string]ReadFunc{
	"windcube":     WindcubeReadFunc(WindcubeOptions{}),
	"profiler":     readProfilerTable,
	"pcsodar":      readPCSodarTable,
	"scintec":      readScintecTable,
	"radiometrics": readRadiometricsTable,
}

// Lookup resolves a format name to its reader.
func Lookup(name string) (ReadFunc, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names lists the registered format names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WindcubeReadFunc builds a windcube reader carrying the default schema and
// altitudes for header-less files, presenting the long-form observations as
// a Table (height, um, vm, speed, direction).
func WindcubeReadFunc(opts WindcubeOptions) ReadFunc {
	return func(r io.Reader) (*ingest.Table, error) {
		file, err := ReadWindcube(r, opts)
		if err != nil {
			return nil, err
		}
		return LongTable(file.Observations, "um", "vm"), nil
	}
}

// LongTable renders long-form observations as a Table, naming the two raw
// component columns after their source families.
func LongTable(obs []ingest.LongObservation, aName, bName string) *ingest.Table {
	t := &ingest.Table{Columns: []string{"height", aName, bName, "speed", "direction"}}
	for _, o := range obs {
		t.Rows = append(t.Rows, ingest.Row{
			Time: o.Time,
			Cells: map[string]ingest.Value{
				"height":    ingest.Num(o.Height),
				aName:       o.A,
				bName:       o.B,
				"speed":     o.Speed,
				"direction": o.Direction,
			},
		})
	}
	return t
}

func readProfilerTable(r io.Reader) (*ingest.Table, error) {
	file, err := ReadProfiler(r, ProfilerOptions{})
	if err != nil {
		return nil, err
	}
	return file.Table, nil
}

func readPCSodarTable(r io.Reader) (*ingest.Table, error) {
	file, err := ReadPCSodar(r, PCSodarOptions{})
	if err != nil {
		return nil, err
	}
	return file.Table, nil
}

func readScintecTable(r io.Reader) (*ingest.Table, error) {
	file, err := ReadScintec(r)
	if err != nil {
		return nil, err
	}
	return file.Table, nil
}

func readRadiometricsTable(r io.Reader) (*ingest.Table, error) {
	file, err := ReadRadiometrics(r)
	if err != nil {
		return nil, err
	}
	return file.Merged(), nil
}
