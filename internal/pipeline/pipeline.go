package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/skyward-data/remote-sensing-etl/internal/domain"
	"github.com/skyward-data/remote-sensing-etl/internal/observability"
)

// BatchExtractor finds up to batchSize unprocessed instrument files.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.SourceFile, error)
}

// Transformer parses one instrument file into observations.
type Transformer interface {
	Transform(ctx context.Context, file domain.SourceFile) ([]domain.Observation, error)
}

// BatchLoader writes observations to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, obs []domain.Observation) error
}

// Pipeline orchestrates the extract-transform-load loop.
type Pipeline struct {
	extractor    BatchExtractor
	transformer  Transformer
	loader       BatchLoader
	logger       *slog.Logger
	metrics      *observability.Metrics
	ready        atomic.Bool
	batchSize    int
	scanInterval time.Duration
}

// New creates a Pipeline with the given stages and observability.
// scanInterval is how long the loop idles when a scan finds no new files.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, scanInterval time.Duration) *Pipeline {
	return &Pipeline{
		extractor:    e,
		transformer:  t,
		loader:       l,
		logger:       logger,
		metrics:      metrics,
		batchSize:    batchSize,
		scanInterval: scanInterval,
	}
}

// CheckReadiness returns nil once the pipeline has completed at least one
// scan, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a scan yet")
	}
	return nil
}

// Run executes the batch ETL loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize, "scan_interval", p.scanInterval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during sink outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-transform-load cycle. Returns false if the
// pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	files, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	// An empty scan still proves the input directory is reachable.
	p.ready.Store(true)

	if len(files) == 0 {
		return sleepWithContext(ctx, p.scanInterval)
	}

	p.metrics.FilesExtracted.Add(float64(len(files)))
	p.metrics.BatchSize.Observe(float64(len(files)))
	*backoff = 200 * time.Millisecond

	if !p.transformAndLoad(ctx, files, backoff, maxBackoff) {
		return false
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	return true
}

// transformAndLoad parses each file in the batch, loads the resulting
// observations, and commits the source files. A file that fails to parse is
// logged, counted, and committed so one bad file cannot wedge the loop.
// Returns false if the pipeline should stop.
func (p *Pipeline) transformAndLoad(ctx context.Context, files []domain.SourceFile, backoff *time.Duration, maxBackoff time.Duration) bool {
	batch := make([]domain.Observation, 0, len(files))
	parsed := make([]domain.SourceFile, 0, len(files))

	for _, file := range files {
		obs, err := p.transformer.Transform(ctx, file)
		if err != nil {
			p.logger.Warn("transform failed, skipping file", "error", err, "path", file.Path)
			p.metrics.TransformErrors.Inc()
			p.commitFile(ctx, file)
			continue
		}
		batch = append(batch, obs...)
		parsed = append(parsed, file)
	}

	if len(batch) == 0 {
		for _, file := range parsed {
			p.commitFile(ctx, file)
		}
		return true
	}

	if err := p.loader.LoadBatch(ctx, batch); err != nil {
		p.logger.Error("load batch failed", "error", err, "observations", len(batch))
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.ObservationsProduced.Add(float64(len(batch)))

	for _, file := range parsed {
		p.commitFile(ctx, file)
	}
	return true
}

// backoffOrStop checks for context cancellation, sleeps with the current
// backoff, and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitFile marks a source file processed if a commit function is available.
func (p *Pipeline) commitFile(ctx context.Context, file domain.SourceFile) {
	if file.Commit == nil {
		return
	}
	if err := file.Commit(ctx); err != nil {
		p.logger.Warn("commit file failed", "error", err, "path", file.Path)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
