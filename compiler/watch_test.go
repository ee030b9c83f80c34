package compiler

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veneer/compiler/gen"
)

func TestRelevant(t *testing.T) {
	d := &Driver{}
	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"/p/demo.go", fsnotify.Write, true},
		{"/p/demo.go", fsnotify.Create, true},
		{"/p/demo.go", fsnotify.Remove, true},
		{"/p/demo.go", fsnotify.Rename, true},
		{"/p/demo.go", fsnotify.Chmod, false},
		{"/p/point_veneer.go", fsnotify.Write, false},
		{"/p/point_veneer.go.error", fsnotify.Write, false},
		{"/p/.demo.go.swp", fsnotify.Write, false},
		{"/p/.#demo.go", fsnotify.Write, false},
		{"/p/README.md", fsnotify.Write, false},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.name)+" "+tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, d.relevant(fsnotify.Event{Name: tt.name, Op: tt.op}))
		})
	}

	t.Run("custom suffix", func(t *testing.T) {
		d := &Driver{Config: &gen.Config{Suffix: "_gen.go"}}
		assert.False(t, d.relevant(fsnotify.Event{Name: "/p/point_gen.go", Op: fsnotify.Write}))
		assert.True(t, d.relevant(fsnotify.Event{Name: "/p/point_veneer.go", Op: fsnotify.Write}))
	})
}

func TestWatch(t *testing.T) {
	dir := module(t, pointSource)
	runs := make(chan *Result, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- (&Driver{Dir: dir}).Watch(ctx, WatchOptions{
			Debounce: 50 * time.Millisecond,
			OnRun: func(res *Result, err error) {
				assert.NoError(t, err)
				runs <- res
			},
		})
	}()

	next := func() *Result {
		t.Helper()
		select {
		case res := <-runs:
			return res
		case <-time.After(30 * time.Second):
			t.Fatal("no generation run")
			return nil
		}
	}

	first := next()
	require.NotNil(t, first)
	out := filepath.Join(dir, "point_veneer.go")
	assert.Equal(t, []string{out}, first.Written)

	write(t, filepath.Join(dir, "demo.go"), strings.Replace(pointSource, "x int", "y int", 1))
	second := next()
	require.NotNil(t, second)
	assert.Contains(t, read(t, out), "func (p *Point) GetY() int {")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop")
	}
}
