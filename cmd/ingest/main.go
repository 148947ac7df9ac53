// Command ingest parses instrument files from the command line and writes
// the resulting observations as NDJSON, one observation per line. It uses
// the same format readers as the ingestd service, so its output matches
// what the pipeline would publish.
//
// Usage:
//
//	go run ./cmd/ingest \
//	  -format windcube \
//	  -out observations.ndjson \
//	  -processed-at 2026-08-25T00:00:00Z \
//	  data/WLS7-64_2016_05_17.rtd
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/skyward-data/remote-sensing-etl/internal/domain"
	"github.com/skyward-data/remote-sensing-etl/internal/formats"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	format := flag.String("format", "", fmt.Sprintf("input format, one of %v", formats.Names()))
	out := flag.String("out", "-", "output path for NDJSON observations, - for stdout")
	processedAt := flag.String("processed-at", "", "fixed RFC3339 processed_at timestamp for reproducible output")
	flag.Parse()

	if *format == "" || flag.NArg() == 0 {
		flag.Usage()
		return fmt.Errorf("missing required flag -format or input files")
	}

	read, ok := formats.Lookup(*format)
	if !ok {
		return fmt.Errorf("unknown format %q (have %v)", *format, formats.Names())
	}

	if *processedAt != "" {
		at, err := time.Parse(time.RFC3339, *processedAt)
		if err != nil {
			return fmt.Errorf("invalid -processed-at: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(at))
		defer domain.SetClock(nil)
	}

	var obs []domain.Observation //nolint:prealloc // size depends on file contents
	for _, path := range flag.Args() {
		fileObs, err := ingestFile(read, *format, path)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		log.Printf("%s: %d observations", path, len(fileObs))
		obs = append(obs, fileObs...)
	}

	if err := writeNDJSON(*out, obs); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	printStats(obs)
	return nil
}

func ingestFile(read formats.ReadFunc, format, path string) ([]domain.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := read(f)
	if err != nil {
		return nil, err
	}
	return domain.FromTable(format, filepath.Base(path), table), nil
}

func writeNDJSON(path string, obs []domain.Observation) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	for i := range obs {
		if err := enc.Encode(&obs[i]); err != nil {
			return err
		}
	}
	return nil
}

func printStats(obs []domain.Observation) {
	fileCounts := map[string]int{}
	fieldCounts := map[string]int{}
	var withHeight int
	for i := range obs {
		fileCounts[obs[i].SourceFile]++
		if obs[i].Height != nil {
			withHeight++
		}
		for name := range obs[i].Fields {
			fieldCounts[name]++
		}
	}

	log.Printf("total: %d observations from %d files", len(obs), len(fileCounts))
	log.Printf("with height: %d", withHeight)

	names := make([]string, 0, len(fieldCounts))
	for name := range fieldCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		log.Printf("  field %s: %d values", name, fieldCounts[name])
	}
}
