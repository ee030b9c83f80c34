// Package compiler drives generation for whole packages: it loads them,
// runs the generator, writes the generated files next to the sources,
// removes files that are no longer generated and remembers what it did in
// a cache so that unchanged packages are skipped on the next run.
package compiler

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/syssam/veneer/compiler/cache"
	"github.com/syssam/veneer/compiler/gen"
	"github.com/syssam/veneer/compiler/gen/synth"
	"github.com/syssam/veneer/compiler/load"
	"github.com/syssam/veneer/internal/logger"
)

// Driver generates the packages matching a set of patterns.
type Driver struct {
	// Config is the generator configuration. Nil uses the defaults.
	Config *gen.Config
	// Registry holds the components to run. Nil uses synth.Registry.
	Registry *gen.Registry
	// Cache remembers the fingerprint and files of every package. Nil
	// disables caching.
	Cache cache.Cache
	// Dir is the directory patterns are resolved in.
	Dir string
	// DryRun renders without writing or removing files.
	DryRun bool
}

// Result is the outcome of one Generate call.
type Result struct {
	RunID string
	// Written are the generated files written, or that would have been
	// written in a dry run. Unchanged files are included.
	Written []string
	// Removed are the stale generated files removed.
	Removed []string
	// Unchanged are the import paths of packages skipped by the cache.
	Unchanged []string
	// Dirs are the directories of the loaded packages.
	Dirs    []string
	Report  *gen.Report
	Metrics gen.WriterMetrics
}

// Generate runs a default driver over the packages matching patterns in
// the current directory.
func Generate(ctx context.Context, cfg *gen.Config, patterns ...string) (*Result, error) {
	return (&Driver{Config: cfg}).Generate(ctx, patterns...)
}

// Generate loads the packages matching patterns and generates them one
// after the other. A package that fails to load, render or write does not
// stop the others; the failures are combined into the returned error.
// Declaration problems are reported as diagnostics, not errors. A cancelled
// context stops the run and returns ctx.Err().
func (d *Driver) Generate(ctx context.Context, patterns ...string) (*Result, error) {
	runID := uuid.NewString()
	cfg := *d.config()
	log := cfg.Log().With(zap.String(logger.FieldRunID, runID))
	cfg.Logger = log

	registry := d.Registry
	if registry == nil {
		r, err := synth.Registry()
		if err != nil {
			return nil, err
		}
		registry = r
	}
	c := d.Cache
	if c == nil {
		c = cache.Nop{}
	}

	start := time.Now()
	res := &Result{RunID: runID, Report: &gen.Report{}}
	pkgs, err := load.Load(ctx, cfg.Loader(d.Dir), patterns...)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var errs error
	if err != nil {
		if len(pkgs) == 0 {
			return nil, err
		}
		errs = multierr.Append(errs, err)
	}

	g := gen.NewGenerator(&cfg, registry)
	w := gen.NewWriter(&cfg).WithDryRun(d.DryRun)
	for _, pkg := range pkgs {
		if pkg.Dir != "" {
			res.Dirs = append(res.Dirs, pkg.Dir)
		}
		plog := log.With(zap.String(logger.FieldPackage, pkg.Path))
		fp, err := Fingerprint(pkg, &cfg, registry)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if e, ok, err := c.Get(ctx, pkg.Path); err == nil && ok && e.Fingerprint == fp && exist(e.Files) {
			plog.Debug("package unchanged")
			res.Unchanged = append(res.Unchanged, pkg.Path)
			continue
		}

		out, err := g.RunPackage(ctx, pkg)
		if err != nil {
			return nil, err
		}
		res.Report.Merge(out.Report)
		for _, diag := range out.Report.Diagnostics() {
			plog.Warn(diag.String())
		}
		before := len(w.Written())
		if err := w.WriteAll(ctx, out.Units); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = multierr.Append(errs, fmt.Errorf("veneer: package %s: %w", pkg.Path, err))
			continue
		}
		files := make([]string, 0, len(out.Units))
		for _, u := range out.Units {
			if u.Len() > 0 {
				files = append(files, u.Path())
			}
		}
		removed, err := d.removeStale(pkg, &cfg, files)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("veneer: package %s: %w", pkg.Path, err))
		}
		res.Removed = append(res.Removed, removed...)
		plog.Info("package generated",
			zap.Int(logger.FieldCount, len(w.Written())-before),
			zap.Int("removed", len(removed)),
		)
		if d.DryRun {
			continue
		}
		if err := c.Set(ctx, pkg.Path, cache.Entry{
			Fingerprint: fp,
			Files:       files,
			RunID:       runID,
			Updated:     time.Now(),
		}); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if err := c.Flush(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	res.Written = w.Written()
	res.Metrics = w.Metrics()
	log.Info("generation finished",
		zap.Int("packages", len(pkgs)),
		zap.Int("files", len(res.Written)),
		zap.Int64(logger.FieldDurationMS, time.Since(start).Milliseconds()),
	)
	return res, errs
}

// removeStale deletes generated files of pkg that the current run did not
// produce. Only files carrying the generated header are touched.
func (d *Driver) removeStale(pkg *load.Package, cfg *gen.Config, keep []string) ([]string, error) {
	if pkg.Dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(pkg.Dir)
	if err != nil {
		return nil, err
	}
	var (
		removed []string
		errs    error
	)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), cfg.FileSuffix()) {
			continue
		}
		path := filepath.Join(pkg.Dir, e.Name())
		if slices.Contains(keep, path) || !generated(path, cfg.HeaderComment()) {
			continue
		}
		if !d.DryRun {
			if err := os.Remove(path); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
		}
		cfg.Log().Debug("stale file removed", zap.String(logger.FieldFile, path))
		removed = append(removed, path)
	}
	return removed, errs
}

// generated reports whether the first line of the file is the header.
func generated(path, header string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.TrimSpace(line) == "// "+header
}

func exist(files []string) bool {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return false
		}
	}
	return true
}
