package load

import (
	"go/ast"
	"go/parser"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldType(t *testing.T, d *TypeDecl, name string) ast.Expr {
	t.Helper()
	for _, m := range d.Members {
		for _, n := range m.Names {
			if n == name {
				return m.Type
			}
		}
	}
	t.Fatalf("member %s not found", name)
	return nil
}

func TestTypesResolverDescribe(t *testing.T) {
	pkg := loadInventory(t)
	item := pkg.Types[0]
	tests := []struct {
		field string
		want  TypeFacts
	}{
		{"name", TypeFacts{Canonical: "string", Comparable: true, Known: true}},
		{"a", TypeFacts{Canonical: "int", Comparable: true, Known: true}},
		{"tags", TypeFacts{Canonical: "[]string", Nillable: true, Known: true}},
		{"attrs", TypeFacts{Canonical: "map[string]int", Nillable: true, Known: true}},
		{"Base", TypeFacts{Canonical: "example.com/inventory.Base", Comparable: true, Known: true}},
		// The import cannot be resolved, so the facts are a syntactic guess.
		{"when", TypeFacts{Canonical: "time.Duration", Comparable: true}},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got := pkg.Resolver.Describe(fieldType(t, item, tt.field))
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, TypeFacts{}, pkg.Resolver.Describe(nil))
}

func TestTypesResolverConstant(t *testing.T) {
	pkg := loadInventory(t)
	pos := pkg.Types[0].Pos
	tests := []struct {
		expr string
		want Constant
	}{
		{"label", Constant{Value: "stock"}},
		{"limit", Constant{Value: int64(42)}},
		{"Green", Constant{Value: "Green", Enum: true}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			expr, err := parser.ParseExpr(tt.expr)
			require.NoError(t, err)
			got, ok := pkg.Resolver.Constant(expr, pos)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	expr, err := parser.ParseExpr("unknown")
	require.NoError(t, err)
	_, ok := pkg.Resolver.Constant(expr, pos)
	assert.False(t, ok)
}

func TestTypesResolverDescribeText(t *testing.T) {
	pkg := loadInventory(t)
	facts, expr := pkg.Resolver.DescribeText("map[string]Color", pkg.Types[0].Pos)
	require.NotNil(t, expr)
	assert.Equal(t, "map[string]example.com/inventory.Color", facts.Canonical)
	assert.True(t, facts.Nillable)
	assert.False(t, facts.Comparable)

	facts, expr = pkg.Resolver.DescribeText("[[", pkg.Types[0].Pos)
	assert.Nil(t, expr)
	assert.False(t, facts.Known)
}

func TestSyntaxResolver(t *testing.T) {
	pkg := loadInventory(t)
	r := NewSyntaxResolver(pkg.Files)

	t.Run("Describe", func(t *testing.T) {
		tests := []struct {
			text string
			want TypeFacts
		}{
			{"int", TypeFacts{Canonical: "int", Comparable: true, Known: true}},
			{"any", TypeFacts{Canonical: "any", Comparable: true, Nillable: true, Known: true}},
			{"*Item", TypeFacts{Canonical: "*Item", Comparable: true, Nillable: true, Known: true}},
			{"[]int", TypeFacts{Canonical: "[]int", Nillable: true, Known: true}},
			{"[2]int", TypeFacts{Canonical: "[2]int", Comparable: true, Known: true}},
			{"[2][]int", TypeFacts{Canonical: "[2][]int", Known: true}},
			{"func()", TypeFacts{Canonical: "func()", Nillable: true, Known: true}},
			{"Color", TypeFacts{Canonical: "Color", Comparable: true, Known: true}},
			{"Base", TypeFacts{Canonical: "Base", Comparable: true, Known: true}},
			{"Item", TypeFacts{Canonical: "Item", Known: false}},
		}
		for _, tt := range tests {
			t.Run(tt.text, func(t *testing.T) {
				got, expr := r.DescribeText(tt.text, 0)
				require.NotNil(t, expr)
				assert.Equal(t, tt.want, got)
			})
		}
	})

	t.Run("Constant", func(t *testing.T) {
		c, ok := r.Constant(ast.NewIdent("Blue"), 0)
		require.True(t, ok)
		assert.Equal(t, Constant{Value: "Blue", Enum: true}, c)

		c, ok = r.Constant(ast.NewIdent("label"), 0)
		require.True(t, ok)
		assert.Equal(t, Constant{Value: "stock"}, c)

		_, ok = r.Constant(ast.NewIdent("Item"), 0)
		assert.False(t, ok)
	})
}

func TestTrailing(t *testing.T) {
	assert.Equal(t, "Red", trailing("pkg.Red"))
	assert.Equal(t, "Red", trailing(" Red "))
	assert.Equal(t, "f(x)", trailing("f(x)"))
}

func TestBag(t *testing.T) {
	pkg := loadInventory(t)
	as := ParseDirectives("", comments(`//veneer:Any(s = "a", n = -3, f = 1.5, b = false, e = Green, c = label, ref = nameof(pkg.Item), other = x.y.Z)`))
	require.Len(t, as, 1)
	b := as[0].Bag(pkg.Resolver)
	assert.Equal(t, "a", b["s"])
	assert.Equal(t, int64(-3), b["n"])
	assert.Equal(t, 1.5, b["f"])
	assert.Equal(t, false, b["b"])
	assert.Equal(t, "Green", b["e"])
	assert.Equal(t, "stock", b["c"])
	assert.Equal(t, "Item", b["ref"])
	assert.Equal(t, "Z", b["other"])

	_, err := as[0].Restore(pkg.Resolver)
	assert.Error(t, err)
}
