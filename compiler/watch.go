package compiler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/syssam/veneer/compiler/gen"
	"github.com/syssam/veneer/internal/logger"
)

// DefaultDebounce is the quiet period Watch waits for after the last change
// before regenerating.
const DefaultDebounce = 300 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	// Debounce coalesces bursts of changes. Zero uses DefaultDebounce.
	Debounce time.Duration
	// OnRun, when set, is called after every generation run.
	OnRun func(*Result, error)
}

// Watch generates the packages matching patterns, then regenerates them
// whenever one of their source files changes, until ctx is done. Failed runs
// are logged and do not stop watching.
func (d *Driver) Watch(ctx context.Context, opts WatchOptions, patterns ...string) error {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	log := d.log()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("veneer: create watcher: %w", err)
	}
	defer w.Close()

	watched := map[string]bool{}
	run := func() {
		res, err := d.Generate(ctx, patterns...)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Error("generation failed", zap.Error(err))
		}
		if res != nil {
			for _, dir := range res.Dirs {
				if watched[dir] {
					continue
				}
				if err := w.Add(dir); err != nil {
					log.Warn("cannot watch directory", zap.String(logger.FieldFile, dir), zap.Error(err))
					continue
				}
				watched[dir] = true
				log.Debug("watching directory", zap.String(logger.FieldFile, dir))
			}
		}
		if opts.OnRun != nil {
			opts.OnRun(res, err)
		}
	}
	run()

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !d.relevant(event) {
				continue
			}
			log.Debug("change detected", zap.String(logger.FieldFile, event.Name), zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			run()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		}
	}
}

// relevant reports whether event may change the generated output: a change
// to a hand-written Go file of a watched package. The generator's own
// output, including .error dumps, is ignored.
func (d *Driver) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".go") {
		return false
	}
	return !strings.HasSuffix(name, d.config().FileSuffix())
}

func (d *Driver) config() *gen.Config {
	if d.Config == nil {
		return &gen.Config{}
	}
	return d.Config
}

func (d *Driver) log() *zap.Logger {
	return d.config().Log()
}
