package load

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	write := func(name, src string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	write("go.mod", "module example.com/demo\n\ngo 1.23\n")
	write("demo.go", "package demo\n\n//veneer:Generate\ntype Point struct {\n\t//veneer:Get\n\tx int\n}\n")
	write("point_veneer.go", "// Code generated by veneer. DO NOT EDIT.\n\npackage demo\n\nfunc (p *Point) GetX() int { return p.x }\n")

	pkgs, err := Load(context.Background(), Config{Dir: dir}, ".")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	pkg := pkgs[0]
	assert.Equal(t, "example.com/demo", pkg.Path)
	assert.Equal(t, dir, pkg.Dir)
	assert.Equal(t, []string{filepath.Join(dir, "demo.go")}, pkg.Filenames, "generated files are skipped")
	require.Len(t, pkg.Types, 1)
	assert.Equal(t, "Point", pkg.Types[0].Name)
}
