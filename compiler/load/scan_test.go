package load

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veneer/schema/marker"
)

const inventory = `package inventory

import (
	"time"

	str "strings"
)

type Color int

const (
	Red Color = iota
	Green
	Blue
)

const label = "stock"

const limit = 42

//veneer:Generate
//veneer:Freeze
type Item struct {
	//veneer:Get
	//veneer:Set(chain = true)
	name string
	a, b int
	tags []string // veneer:Add
	//veneer:Put(keyType = "string")
	attrs map[string]int
	when  time.Duration
	Base
}

type Base struct{ id int }

//veneer:Generate(in = nameof(Item))
type Inner struct{ v int }

//veneer:Generate
type Alias = Item

//veneer:Static(of = nameof(Item))
var counter int

//veneer:Template(text = "x")
func (i *Item) Label() string { return str.ToUpper(label) }

func (Base) Ignored() {}

func build() {
	//veneer:Generate
	type local struct{}
	_ = local{}
}
`

const stale = `// Code generated by veneer. DO NOT EDIT.

package inventory

func (i *Item) GetName() string { return i.name }
`

func loadInventory(t *testing.T) *Package {
	t.Helper()
	pkg, err := ParseSource(Config{}, "example.com/inventory", map[string]string{
		"item.go":        inventory,
		"item_veneer.go": stale,
	})
	require.NoError(t, err)
	return pkg
}

func TestScan(t *testing.T) {
	pkg := loadInventory(t)
	assert.Equal(t, "inventory", pkg.Name)
	assert.Equal(t, "example.com/inventory", pkg.Path)
	assert.Equal(t, []string{"item.go"}, pkg.Filenames)

	t.Run("Top-level types", func(t *testing.T) {
		var names []string
		for _, typ := range pkg.Types {
			names = append(names, typ.Name)
		}
		assert.Equal(t, []string{"Item", "Alias", "local"}, names)
		assert.True(t, pkg.Types[1].Alias)
		assert.True(t, pkg.Types[2].FileLocal)
	})

	item := pkg.Types[0]

	t.Run("Nesting", func(t *testing.T) {
		require.Len(t, item.Nested, 1)
		inner := item.Nested[0]
		assert.Equal(t, "Inner", inner.Name)
		assert.Equal(t, "Item", inner.ParentName)
		assert.Same(t, item, inner.Parent)
	})

	t.Run("Members", func(t *testing.T) {
		require.Len(t, item.Members, 8)
		assert.Equal(t, []string{"name"}, item.Members[0].Names)
		assert.Len(t, item.Members[0].Annotations, 2)
		assert.Equal(t, []string{"a", "b"}, item.Members[1].Names)
		assert.Len(t, item.Members[2].Lookup("Add"), 1)

		embedded := item.Members[5]
		assert.True(t, embedded.Embedded)
		assert.Equal(t, []string{"Base"}, embedded.Names)

		static := item.Members[6]
		assert.True(t, static.Static)
		assert.Equal(t, []string{"counter"}, static.Names)

		method := item.Members[7]
		assert.Equal(t, MethodMember, method.Kind)
		assert.Equal(t, []string{"Label"}, method.Names)
		assert.Equal(t, 0, method.Params)
		assert.Equal(t, 1, method.Results)
		assert.Equal(t, "string", method.Type.(*ast.Ident).Name)
		assert.Len(t, method.Lookup("Template"), 1)
		assert.Len(t, item.Methods(), 1)
	})

	t.Run("Type directives", func(t *testing.T) {
		assert.True(t, item.Has("Generate"))
		assert.True(t, item.Has("Freeze"))
		assert.False(t, item.Has("Hash"))
	})

	t.Run("Imports", func(t *testing.T) {
		assert.Equal(t, map[string]string{"time": "time", "str": "strings"}, item.Imports)
	})

	t.Run("Walk", func(t *testing.T) {
		var names []string
		item.Walk(func(d *TypeDecl) { names = append(names, d.Name) })
		assert.Equal(t, []string{"Item", "Inner"}, names)
	})
}

func TestScanNestingFallback(t *testing.T) {
	pkg, err := ParseSource(Config{}, "example.com/nest", map[string]string{"nest.go": `package nest

//veneer:Generate(in = nameof(Missing))
type Orphan struct{}

//veneer:Generate(in = nameof(B))
type A struct{}

//veneer:Generate(in = nameof(A))
type B struct{}

//veneer:Generate(in = nameof(Self))
type Self struct{}
`})
	require.NoError(t, err)
	var names []string
	for _, typ := range pkg.Types {
		names = append(names, typ.Name)
	}
	assert.Equal(t, []string{"Orphan", "B", "Self"}, names)
	assert.Equal(t, "Missing", pkg.Types[0].ParentName)
	assert.Nil(t, pkg.Types[0].Parent)
	require.Len(t, pkg.Types[1].Nested, 1)
	assert.Equal(t, "A", pkg.Types[1].Nested[0].Name)
	assert.Equal(t, "A", pkg.Types[1].ParentName, "cyclic parent stays unlinked")
	assert.Nil(t, pkg.Types[2].Parent)
}

func TestParseSourceErrors(t *testing.T) {
	_, err := ParseSource(Config{}, "x", map[string]string{"a.go": "package"})
	require.Error(t, err)

	_, err = ParseSource(Config{}, "x", map[string]string{"a.go": "package a", "b.go": "package b"})
	require.Error(t, err)

	_, err = ParseSource(Config{}, "x", nil)
	require.Error(t, err)
}

func TestImportName(t *testing.T) {
	tests := map[string]string{
		"strings":                           "strings",
		"github.com/google/uuid":            "uuid",
		"github.com/vmihailenco/msgpack/v5": "msgpack",
		"gopkg.in/yaml.v3":                  "yaml",
		"github.com/go-openapi/inflect":     "inflect",
	}
	for path, want := range tests {
		assert.Equal(t, want, importName(path), path)
	}
}

func TestAnnotationRestore(t *testing.T) {
	pkg := loadInventory(t)
	item := pkg.Types[0]

	m, err := item.Members[0].Annotations[1].Restore(pkg.Resolver)
	require.NoError(t, err)
	set, ok := m.(marker.Accessor)
	require.True(t, ok)
	assert.Equal(t, marker.Set, set.Kind())
	assert.True(t, set.Chain)

	m, err = item.Nested[0].Lookup("Generate")[0].Restore(pkg.Resolver)
	require.NoError(t, err)
	assert.Equal(t, "Item", m.(marker.GenerateType).In)
}
