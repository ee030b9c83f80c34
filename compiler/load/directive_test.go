package load

import (
	"go/ast"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comments(lines ...string) *ast.CommentGroup {
	g := &ast.CommentGroup{}
	for _, l := range lines {
		g.List = append(g.List, &ast.Comment{Text: l})
	}
	return g
}

func TestParseDirectives(t *testing.T) {
	t.Run("Bare name", func(t *testing.T) {
		as := ParseDirectives("", comments("// Name is the name.", "//veneer:Get"))
		require.Len(t, as, 1)
		assert.Equal(t, "Get", as[0].Name)
		assert.Empty(t, as[0].Args)
	})

	t.Run("Keyed arguments", func(t *testing.T) {
		as := ParseDirectives("veneer", comments(`//veneer:Set(chain = true, freezeTag = "locked")`))
		require.Len(t, as, 1)
		require.Len(t, as[0].Args, 2)
		assert.Equal(t, "chain", as[0].Args[0].Key)
		assert.Equal(t, "true", as[0].Args[0].Text)
		assert.Equal(t, "freezeTag", as[0].Args[1].Key)
		assert.Equal(t, `"locked"`, as[0].Args[1].Text)
		assert.NotNil(t, as[0].Args[1].Expr)
	})

	t.Run("Keyword keys", func(t *testing.T) {
		as := ParseDirectives("", comments(`//veneer:Get(type = "any", range = 2)`))
		require.Len(t, as, 1)
		require.Len(t, as[0].Args, 2)
		assert.Equal(t, "type", as[0].Args[0].Key)
		assert.Equal(t, "any", mustUnquote(t, as[0].Args[0].Text))
		assert.Equal(t, "range", as[0].Args[1].Key)
		assert.Equal(t, "2", as[0].Args[1].Text)
	})

	t.Run("Positional arguments", func(t *testing.T) {
		as := ParseDirectives("", comments(`//veneer:Generate(nameof(Outer))`))
		require.Len(t, as, 1)
		arg, ok := as[0].Arg("arg0")
		require.True(t, ok)
		assert.Equal(t, "nameof(Outer)", arg.Text)
	})

	t.Run("Nested commas and equality", func(t *testing.T) {
		as := ParseDirectives("", comments(`//veneer:Put(keyType = "map[string]int", valueType = "func(a, b int)", x == y)`))
		require.Len(t, as, 1)
		require.Len(t, as[0].Args, 3)
		assert.Equal(t, "map[string]int", mustUnquote(t, as[0].Args[0].Text))
		assert.Equal(t, "func(a, b int)", mustUnquote(t, as[0].Args[1].Text))
		assert.Equal(t, "arg2", as[0].Args[2].Key)
		assert.Equal(t, "x == y", as[0].Args[2].Text)
	})

	t.Run("Space after slashes", func(t *testing.T) {
		as := ParseDirectives("", comments("// veneer:Count"))
		require.Len(t, as, 1)
		assert.Equal(t, "Count", as[0].Name)
	})

	t.Run("Multi-line raw string", func(t *testing.T) {
		as := ParseDirectives("", comments(
			"//veneer:Template(place = \"namespace\", text = `",
			"//func New{{.Type}}() *{{.Type}} {",
			"//	return new({{.Type}})",
			"//}",
			"//`)",
			"//veneer:Get",
		))
		require.Len(t, as, 2)
		assert.Equal(t, "Template", as[0].Name)
		b := as[0].Bag(nil)
		assert.Equal(t, "\nfunc New{{.Type}}() *{{.Type}} {\n\treturn new({{.Type}})\n}\n", b.String("text"))
		assert.Equal(t, "namespace", b.String("place"))
		assert.Equal(t, "Get", as[1].Name)
	})

	t.Run("Other prefixes ignored", func(t *testing.T) {
		as := ParseDirectives("", comments("//go:generate veneer", "//nolint:all", "/* veneer:Get */"))
		assert.Empty(t, as)
	})

	t.Run("Custom prefix", func(t *testing.T) {
		as := ParseDirectives("gen", comments("//veneer:Get", "//gen:Set"))
		require.Len(t, as, 1)
		assert.Equal(t, "Set", as[0].Name)
	})

	t.Run("Malformed", func(t *testing.T) {
		as := ParseDirectives("", comments("//veneer:Get(", "//veneer:1Bad", "//veneer:Set(chain = true) trailing"))
		assert.Empty(t, as)
	})
}

func mustUnquote(t *testing.T, s string) string {
	t.Helper()
	v, err := strconv.Unquote(s)
	require.NoError(t, err)
	return v
}

func TestSplitTop(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a, b", []string{"a", " b"}},
		{`"a,b", c`, []string{`"a,b"`, " c"}},
		{"f(a, b), [2]int{1, 2}", []string{"f(a, b)", " [2]int{1, 2}"}},
		{"`x,\ny`", []string{"`x,\ny`"}},
		{`'\'', z`, []string{`'\''`, " z"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, splitTop(tt.in, ','))
		})
	}
}

func TestBalanced(t *testing.T) {
	assert.True(t, balanced(`Get(chain = true)`))
	assert.False(t, balanced("Template(text = `"))
	assert.False(t, balanced(`Put(keyType = "map[string]int"`))
	assert.True(t, balanced(`Put(keyType = ")")`))
}
