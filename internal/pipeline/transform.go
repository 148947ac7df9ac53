package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/skyward-data/remote-sensing-etl/internal/domain"
	"github.com/skyward-data/remote-sensing-etl/internal/formats"
	"github.com/skyward-data/remote-sensing-etl/internal/observability"
)

// FileTransformer implements Transformer for one instrument format: it
// opens the source file, runs the format's reader, and flattens the result
// into observations.
type FileTransformer struct {
	format  string
	read    formats.ReadFunc
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a FileTransformer for the named format. Windcube
// deployments pass the default schema and altitudes used for header-less
// files; other formats ignore opts.
func NewTransformer(format string, opts formats.WindcubeOptions, logger *slog.Logger, metrics *observability.Metrics) (*FileTransformer, error) {
	read, ok := formats.Lookup(format)
	if !ok {
		return nil, fmt.Errorf("unknown input format %q (have %v)", format, formats.Names())
	}
	if format == "windcube" {
		read = formats.WindcubeReadFunc(opts)
	}
	return &FileTransformer{format: format, read: read, logger: logger, metrics: metrics}, nil
}

func (t *FileTransformer) Transform(_ context.Context, file domain.SourceFile) ([]domain.Observation, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		t.metrics.FilesParsed.WithLabelValues(t.format, "error").Inc()
		return nil, fmt.Errorf("open %s: %w", file.Path, err)
	}
	defer f.Close()

	table, err := t.read(f)
	if err != nil {
		t.metrics.FilesParsed.WithLabelValues(t.format, "error").Inc()
		return nil, fmt.Errorf("parse %s: %w", file.Path, err)
	}
	t.metrics.FilesParsed.WithLabelValues(t.format, "success").Inc()

	obs := domain.FromTable(t.format, filepath.Base(file.Path), table)
	t.logger.Debug("file parsed", "path", file.Path, "rows", len(obs))
	return obs, nil
}
