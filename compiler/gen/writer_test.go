package gen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	pkg := loadDemo(t, demoSource)
	g := testGenerator(t)
	res, err := g.RunPackage(context.Background(), pkg)
	require.NoError(t, err)
	require.Len(t, res.Units, 1)
	path := filepath.Join(pkg.Dir, "demo1_veneer.go")

	t.Run("dry run", func(t *testing.T) {
		w := NewWriter(g.Config()).WithDryRun(true)
		require.NoError(t, w.WriteAll(context.Background(), res.Units))
		assert.Equal(t, []string{path}, w.Written())
		assert.NoFileExists(t, path)
	})

	t.Run("writes", func(t *testing.T) {
		w := NewWriter(g.Config())
		require.NoError(t, w.WriteAll(context.Background(), res.Units))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "func (d *Demo1) GetAInt() int")
		assert.Equal(t, 1, w.Metrics().FilesGenerated)
		assert.Equal(t, int64(len(data)), w.Metrics().TotalBytes)
	})

	t.Run("unchanged", func(t *testing.T) {
		w := NewWriter(g.Config())
		require.NoError(t, w.WriteAll(context.Background(), res.Units))
		assert.Equal(t, 0, w.Metrics().FilesGenerated)
		assert.Equal(t, 1, w.Metrics().FilesUnchanged)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := NewWriter(g.Config()).WriteAll(ctx, res.Units)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
