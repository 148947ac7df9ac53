package fs

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("data\n"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestScanner_ExtractBatch(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	writeFile(t, dir, "b.rtd", base.Add(time.Hour))
	writeFile(t, dir, "a.rtd", base)
	writeFile(t, dir, "notes.txt", base)

	s := NewScanner(dir, "*.rtd", "", slog.Default())

	files, err := s.ExtractBatch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, files, 2)

	// Oldest first.
	assert.Equal(t, filepath.Join(dir, "a.rtd"), files[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.rtd"), files[1].Path)
	assert.Equal(t, int64(5), files[0].Size)
}

func TestScanner_BatchSizeLimit(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	for _, name := range []string{"a.rtd", "b.rtd", "c.rtd"} {
		writeFile(t, dir, name, base)
	}

	s := NewScanner(dir, "*.rtd", "", slog.Default())

	files, err := s.ExtractBatch(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestScanner_CommitSkipsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.rtd", time.Now())

	s := NewScanner(dir, "*.rtd", "", slog.Default())

	files, err := s.ExtractBatch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, files, 1)

	// Uncommitted files reappear on the next scan.
	again, err := s.ExtractBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, again, 1)

	require.NoError(t, files[0].Commit(context.Background()))

	after, err := s.ExtractBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, after)
}

func TestScanner_CommitMovesToProcessedDir(t *testing.T) {
	dir := t.TempDir()
	processed := t.TempDir()
	path := writeFile(t, dir, "a.rtd", time.Now())

	s := NewScanner(dir, "*.rtd", processed, slog.Default())

	files, err := s.ExtractBatch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NoError(t, files[0].Commit(context.Background()))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(processed, "a.rtd"))
	assert.NoError(t, err)
}

func TestScanner_MissingDir(t *testing.T) {
	s := NewScanner("/nonexistent-input-dir", "*", "", slog.Default())
	_, err := s.ExtractBatch(context.Background(), 10)
	assert.Error(t, err)
}
