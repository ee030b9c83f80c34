package gen

import (
	"go/parser"
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func describe(t *testing.T, d *Describer, src string) *TypeDescriptor {
	t.Helper()
	expr, err := parser.ParseExpr(src)
	require.NoError(t, err)
	return d.Describe(expr)
}

// render returns the Go spelling of a type statement.
func render(c jen.Code) string {
	return jen.Var().Id("_").Add(c).GoString()
}

func TestDescribe(t *testing.T) {
	d := &Describer{Imports: map[string]string{"str": "strings", "time": "time"}}

	tests := []struct {
		src  string
		kind DescriptorKind
		name string
		pkg  string
		args int
		code string
	}{
		{src: "int", kind: KindNamed, name: "int", code: "var _ int"},
		{src: "time.Duration", kind: KindNamed, name: "Duration", pkg: "time", code: "var _ time.Duration"},
		{src: "str.Builder", kind: KindNamed, name: "Builder", pkg: "strings", code: "var _ strings.Builder"},
		{src: "*Item", kind: KindPointer, args: 1, code: "var _ *Item"},
		{src: "[]string", kind: KindSlice, args: 1, code: "var _ []string"},
		{src: "[4]byte", kind: KindArray, args: 1, code: "var _ [4]byte"},
		{src: "map[string][]int", kind: KindMap, args: 2, code: "var _ map[string][]int"},
		{src: "<-chan int", kind: KindChan, args: 1, code: "var _ <-chan int"},
		{src: "List[int]", kind: KindNamed, name: "List", args: 1, code: "var _ List[int]"},
		{src: "Pair[string, *Item]", kind: KindNamed, name: "Pair", args: 2, code: "var _ Pair[string, *Item]"},
		{src: "func(int) error", kind: KindFunc, code: "var _ func(int) error"},
		{src: "(int)", kind: KindNamed, name: "int", code: "var _ int"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			td := describe(t, d, tt.src)
			assert.Equal(t, tt.kind, td.Kind)
			assert.Equal(t, tt.name, td.Name)
			assert.Equal(t, tt.pkg, td.PkgPath)
			assert.Len(t, td.Args, tt.args)
			assert.Contains(t, render(td.Code()), tt.code)
		})
	}
}

func TestDescribeFresh(t *testing.T) {
	d := &Describer{}
	expr, err := parser.ParseExpr("[]int")
	require.NoError(t, err)
	a, b := d.Describe(expr), d.Describe(expr)
	require.NotSame(t, a, b)
	a.Args[0].Name = "string"
	assert.Equal(t, "int", b.Args[0].Name)
	assert.Nil(t, d.Describe(nil))
}

func TestDescriptorList(t *testing.T) {
	d := &Describer{}

	t.Run("inferred from the first argument", func(t *testing.T) {
		l, ok := describe(t, d, "[]int").List(nil)
		require.True(t, ok)
		assert.Equal(t, "int", l.Elem.String())
	})

	t.Run("override wins", func(t *testing.T) {
		l, ok := describe(t, d, "[]int").List(d.DescribeText("string", 0))
		require.True(t, ok)
		assert.Equal(t, "string", l.Elem.String())
	})

	t.Run("unresolved", func(t *testing.T) {
		_, ok := describe(t, d, "Tags").List(nil)
		assert.False(t, ok)
	})

	t.Run("map is not a list", func(t *testing.T) {
		_, ok := describe(t, d, "map[string]int").List(nil)
		assert.False(t, ok)
	})
}

func TestDescriptorMap(t *testing.T) {
	d := &Describer{}

	t.Run("inferred", func(t *testing.T) {
		m, ok := describe(t, d, "map[string]int").Map(nil, nil)
		require.True(t, ok)
		assert.Equal(t, "string", m.Key.String())
		assert.Equal(t, "int", m.Value.String())
	})

	t.Run("override per side", func(t *testing.T) {
		m, ok := describe(t, d, "map[string]int").Map(nil, d.DescribeText("float64", 0))
		require.True(t, ok)
		assert.Equal(t, "string", m.Key.String())
		assert.Equal(t, "float64", m.Value.String())
	})

	t.Run("generic map type", func(t *testing.T) {
		m, ok := describe(t, d, "Dict[string, bool]").Map(nil, nil)
		require.True(t, ok)
		assert.Equal(t, "bool", m.Value.String())
	})

	t.Run("unresolved", func(t *testing.T) {
		_, ok := describe(t, d, "Table").Map(d.DescribeText("string", 0), nil)
		assert.False(t, ok)
	})
}

func TestDescribeText(t *testing.T) {
	d := &Describer{}
	assert.Nil(t, d.DescribeText("", 0))
	assert.Nil(t, d.DescribeText("not a type!", 0))
	td := d.DescribeText(" []byte ", 0)
	require.NotNil(t, td)
	assert.Equal(t, KindSlice, td.Kind)
}

func TestDescriptorImports(t *testing.T) {
	d := &Describer{Imports: map[string]string{"io": "io", "ctx": "context"}}
	td := describe(t, d, "map[string]func(ctx.Context) io.Reader")
	assert.Equal(t, map[string]string{"context": "ctx", "io": "io"}, td.Imports())
	assert.Empty(t, describe(t, d, "io.Reader").Imports())
}

func TestDescriptorFacts(t *testing.T) {
	pkg := loadDemo(t, `package demo

type Item struct{ n int }

//veneer:Generate
type Box struct {
	p *Item
	v Item
	s []int
}
`)
	d := &Describer{Resolver: pkg.Resolver}
	facts := map[string]*TypeDescriptor{}
	for _, m := range pkg.Types[0].Members {
		facts[m.Names[0]] = d.Describe(m.Type)
	}
	assert.True(t, facts["p"].Nillable)
	assert.True(t, facts["p"].Comparable)
	assert.False(t, facts["v"].Nillable)
	assert.True(t, facts["s"].Nillable)
	assert.False(t, facts["s"].Comparable)
	assert.True(t, facts["v"].Known)
}
