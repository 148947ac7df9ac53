package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/skyward-data/remote-sensing-etl/internal/domain"
)

// Scanner finds unprocessed instrument files in a watched directory.
// It implements pipeline.BatchExtractor.
//
// Files are considered processed once their Commit function runs; when a
// processed directory is configured the commit also moves the file there,
// so processed state survives restarts. Without one, the seen set is
// in-memory only and a restart re-emits everything still in the input
// directory.
type Scanner struct {
	dir          string
	glob         string
	processedDir string
	logger       *slog.Logger

	mu   sync.Mutex
	seen map[string]bool
}

// NewScanner watches dir for files matching glob (a filepath.Match pattern
// applied to the base name, e.g. "*.rtd"). processedDir may be empty.
func NewScanner(dir, glob, processedDir string, logger *slog.Logger) *Scanner {
	return &Scanner{
		dir:          dir,
		glob:         glob,
		processedDir: processedDir,
		logger:       logger,
		seen:         map[string]bool{},
	}
}

// ExtractBatch lists unprocessed matching files, oldest first, returning at
// most batchSize of them.
func (s *Scanner) ExtractBatch(ctx context.Context, batchSize int) ([]domain.SourceFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.dir, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var files []domain.SourceFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ok, err := filepath.Match(s.glob, name); err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", s.glob, err)
		} else if !ok {
			continue
		}

		path := filepath.Join(s.dir, name)
		if s.seen[path] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Raced with a delete; the next scan sorts it out.
			continue
		}

		files = append(files, domain.SourceFile{
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Commit:  s.commitFunc(path),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.Before(files[j].ModTime)
		}
		return files[i].Path < files[j].Path
	})

	if len(files) > batchSize {
		files = files[:batchSize]
	}
	return files, nil
}

// commitFunc marks path processed and, when configured, moves it into the
// processed directory.
func (s *Scanner) commitFunc(path string) func(ctx context.Context) error {
	return func(_ context.Context) error {
		s.mu.Lock()
		s.seen[path] = true
		s.mu.Unlock()

		if s.processedDir == "" {
			return nil
		}
		dest := filepath.Join(s.processedDir, filepath.Base(path))
		if err := os.Rename(path, dest); err != nil {
			return fmt.Errorf("move %s to processed: %w", path, err)
		}
		s.logger.Debug("file archived", "path", path, "dest", dest)
		return nil
	}
}
