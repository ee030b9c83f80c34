package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veneer/compiler/cache"
	"github.com/syssam/veneer/compiler/gen"
	"github.com/syssam/veneer/compiler/load"
)

const pointSource = `package demo

//veneer:Generate
type Point struct {
	//veneer:Get
	//veneer:Set
	x int
}
`

// module writes a throwaway module holding package demo.
func module(t *testing.T, src string) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	write(t, filepath.Join(dir, "go.mod"), "module example.com/demo\n\ngo 1.23\n")
	write(t, filepath.Join(dir, "demo.go"), src)
	return dir
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func read(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestGenerate(t *testing.T) {
	dir := module(t, pointSource)
	d := &Driver{Dir: dir}
	res, err := d.Generate(context.Background())
	require.NoError(t, err)

	out := filepath.Join(dir, "point_veneer.go")
	assert.Equal(t, []string{out}, res.Written)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{dir}, res.Dirs)
	assert.Equal(t, 1, res.Metrics.FilesGenerated)

	src := read(t, out)
	assert.Contains(t, src, "// "+gen.DefaultHeader)
	assert.Contains(t, src, "func (p *Point) GetX() int {")
	assert.Contains(t, src, "func (p *Point) SetX(v int) {")

	t.Run("regenerating leaves the file alone", func(t *testing.T) {
		res, err := d.Generate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{out}, res.Written)
		assert.Equal(t, 1, res.Metrics.FilesUnchanged)
		assert.Zero(t, res.Metrics.FilesGenerated)
	})
}

func TestGenerateDryRun(t *testing.T) {
	dir := module(t, pointSource)
	res, err := (&Driver{Dir: dir, DryRun: true}).Generate(context.Background())
	require.NoError(t, err)
	out := filepath.Join(dir, "point_veneer.go")
	assert.Equal(t, []string{out}, res.Written)
	assert.NoFileExists(t, out)
}

func TestGenerateCache(t *testing.T) {
	dir := module(t, pointSource)
	c := cache.NewFileCache(filepath.Join(dir, cache.DefaultFile))
	d := &Driver{Dir: dir, Cache: c}
	ctx := context.Background()

	first, err := d.Generate(ctx)
	require.NoError(t, err)
	require.Len(t, first.Written, 1)
	assert.FileExists(t, c.Path())

	e, ok, err := c.Get(ctx, "example.com/demo")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.Written, e.Files)
	assert.Equal(t, first.RunID, e.RunID)

	t.Run("unchanged package is skipped", func(t *testing.T) {
		res, err := (&Driver{Dir: dir, Cache: cache.NewFileCache(c.Path())}).Generate(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"example.com/demo"}, res.Unchanged)
		assert.Empty(t, res.Written)
	})

	t.Run("a deleted output invalidates the entry", func(t *testing.T) {
		require.NoError(t, os.Remove(first.Written[0]))
		res, err := d.Generate(ctx)
		require.NoError(t, err)
		assert.Empty(t, res.Unchanged)
		assert.FileExists(t, first.Written[0])
	})

	t.Run("an edited source invalidates the entry", func(t *testing.T) {
		write(t, filepath.Join(dir, "demo.go"), pointSource+"\nvar _ = 1\n")
		res, err := d.Generate(ctx)
		require.NoError(t, err)
		assert.Empty(t, res.Unchanged)
		assert.Equal(t, first.Written, res.Written)
	})
}

func TestGenerateRemovesStaleFiles(t *testing.T) {
	dir := module(t, pointSource)
	stale := filepath.Join(dir, "old_veneer.go")
	write(t, stale, "// "+gen.DefaultHeader+"\n\npackage demo\n")
	foreign := filepath.Join(dir, "hand_veneer.go")
	write(t, foreign, "// hand written\n\npackage demo\n")

	t.Run("dry run reports without removing", func(t *testing.T) {
		res, err := (&Driver{Dir: dir, DryRun: true}).Generate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{stale}, res.Removed)
		assert.FileExists(t, stale)
	})

	res, err := (&Driver{Dir: dir}).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{stale}, res.Removed)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, foreign)
	assert.FileExists(t, filepath.Join(dir, "point_veneer.go"))

	t.Run("dropping the directive removes the output", func(t *testing.T) {
		write(t, filepath.Join(dir, "demo.go"), "package demo\n\ntype Point struct{ x int }\n")
		res, err := (&Driver{Dir: dir}).Generate(context.Background())
		require.NoError(t, err)
		assert.Empty(t, res.Written)
		assert.Equal(t, []string{filepath.Join(dir, "point_veneer.go")}, res.Removed)
	})
}

func TestGenerateLoadError(t *testing.T) {
	dir := module(t, "package demo\n\nfunc {\n")
	_, err := (&Driver{Dir: dir}).Generate(context.Background())
	require.Error(t, err)
}

func TestGenerateCancelled(t *testing.T) {
	dir := module(t, pointSource)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Driver{Dir: dir}).Generate(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	pkg, err := load.ParseSource(load.Config{Dir: dir}, "example.com/demo", map[string]string{"demo.go": pointSource})
	require.NoError(t, err)
	write(t, filepath.Join(dir, "demo.go"), pointSource)

	cfg := &gen.Config{}
	a, err := Fingerprint(pkg, cfg, nil)
	require.NoError(t, err)
	b, err := Fingerprint(pkg, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	t.Run("config", func(t *testing.T) {
		c, err := Fingerprint(pkg, &gen.Config{Suffix: "_gen.go"}, nil)
		require.NoError(t, err)
		assert.NotEqual(t, a, c)
		c, err = Fingerprint(pkg, &gen.Config{DisabledFeatures: []string{gen.FeatureIterators.Name}}, nil)
		require.NoError(t, err)
		assert.NotEqual(t, a, c)
	})

	t.Run("sources", func(t *testing.T) {
		write(t, filepath.Join(dir, "demo.go"), pointSource+"// edited\n")
		c, err := Fingerprint(pkg, cfg, nil)
		require.NoError(t, err)
		assert.NotEqual(t, a, c)
	})

	t.Run("missing source", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(dir, "demo.go")))
		_, err := Fingerprint(pkg, cfg, nil)
		require.Error(t, err)
	})
}
