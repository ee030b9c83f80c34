package gen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/veneer/internal/logger"
)

// Writer renders units and writes them next to their sources in parallel.
type Writer struct {
	workers int
	dryRun  bool
	log     *zap.Logger

	// Metrics for performance monitoring
	mu      sync.Mutex
	metrics *WriterMetrics
	written []string
}

// WriterMetrics tracks generation performance.
type WriterMetrics struct {
	FilesGenerated int
	FilesUnchanged int
	TotalBytes     int64
	RenderTime     int64 // nanoseconds
	WriteTime      int64 // nanoseconds
}

// NewWriter creates a writer using the worker count and logger of cfg.
func NewWriter(cfg *Config) *Writer {
	return &Writer{
		workers: cfg.Concurrency(),
		log:     cfg.Log(),
		metrics: &WriterMetrics{},
	}
}

// WithDryRun renders without touching the file system.
func (w *Writer) WithDryRun(dryRun bool) *Writer {
	w.dryRun = dryRun
	return w
}

// Metrics returns the generation metrics.
func (w *Writer) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.metrics
}

// Written returns the sorted paths of the files written, or that would have
// been written in a dry run.
func (w *Writer) Written() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := append([]string(nil), w.written...)
	sort.Strings(out)
	return out
}

// WriteAll renders and writes units in parallel. Units without output are
// ignored.
func (w *Writer) WriteAll(ctx context.Context, units []*Unit) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, u := range units {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.write(u)
			}
		})
	}
	return eg.Wait()
}

// write renders and writes a single unit.
func (w *Writer) write(u *Unit) error {
	path := u.Path()
	start := time.Now()
	formatted, err := u.Render()
	switch {
	case errors.Is(err, ErrNoOutput):
		return nil
	case err != nil:
		// Write the unformatted file for debugging (errors intentionally
		// ignored as we're already in error state).
		if src, serr := u.Source(); serr == nil && !w.dryRun {
			_ = os.WriteFile(path+".error", src, 0o644)
		}
		return fmt.Errorf("format %s: %w (unformatted written to %s.error)", u.Filename(), err, path)
	}
	rendered := time.Since(start)

	w.mu.Lock()
	w.written = append(w.written, path)
	w.metrics.RenderTime += rendered.Nanoseconds()
	w.mu.Unlock()
	if w.dryRun {
		return nil
	}

	start = time.Now()
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, formatted) {
		w.mu.Lock()
		w.metrics.FilesUnchanged++
		w.mu.Unlock()
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", u.Filename(), err)
	}
	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", u.Filename(), err)
	}
	w.log.Debug("file written", zap.String(logger.FieldFile, path), zap.Int("bytes", len(formatted)))

	w.mu.Lock()
	w.metrics.FilesGenerated++
	w.metrics.TotalBytes += int64(len(formatted))
	w.metrics.WriteTime += time.Since(start).Nanoseconds()
	w.mu.Unlock()
	return nil
}
