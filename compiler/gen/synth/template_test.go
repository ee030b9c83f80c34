package synth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veneer/compiler/gen"
)

const templateSource = `package demo

import "strings"

//veneer:Generate
//veneer:Template(place = "namespace", text = "func New{{.Type}}() *{{.Type}} { return new({{.Type}}) }")
//veneer:Template(name = "upper", text = "//veneer:HashField\nfunc ({{.Receiver}} *{{.Type}}) Upper() string { return strings.ToUpper({{.Receiver}}.name) }")
//veneer:Template(place = "file", text = "var _ = new({{.Type}})")
//veneer:Hash
type Demo struct {
	//veneer:Template(text = "func ({{.Receiver}} *{{.Type}}) {{.FieldName}}Len() int { return len({{.Receiver}}.{{.Field}}) }")
	//veneer:Template(place = "namespace", text = "var {{.Type}}{{plural .FieldName}} []{{.FieldType}}")
	name string
}
`

func TestTemplate(t *testing.T) {
	u, report := generate(t, templateSource, "Demo")
	src := render(t, u)
	assert.Empty(t, report.Diagnostics())

	t.Run("placements", func(t *testing.T) {
		require.Len(t, u.Compilation, 1)
		require.Len(t, u.Namespace, 2)
		assert.Equal(t, []string{"NewDemo", "DemoNames"}, []string{u.Namespace[0].Name, u.Namespace[1].Name})
		assert.Contains(t, names(u), "Upper")
		assert.Contains(t, names(u), "NameLen")
	})

	t.Run("expansions", func(t *testing.T) {
		for _, w := range []string{
			"func NewDemo() *Demo { return new(Demo) }",
			"func (d *Demo) Upper() string { return strings.ToUpper(d.name) }",
			"func (d *Demo) NameLen() int { return len(d.name) }",
			"var DemoNames []string",
			"var _ = new(Demo)",
		} {
			assert.Contains(t, src, w)
		}
	})

	t.Run("render order", func(t *testing.T) {
		compilation := strings.Index(src, "var _ = new(Demo)")
		member := strings.Index(src, "func (d *Demo) Upper()")
		namespace := strings.Index(src, "func NewDemo()")
		assert.Less(t, compilation, member)
		assert.Less(t, member, namespace)
	})

	t.Run("imports of the declaring file", func(t *testing.T) {
		assert.Contains(t, src, `"strings"`)
	})

	t.Run("expanded members are visible to aggregators", func(t *testing.T) {
		assert.Contains(t, src, "func (d *Demo) HashCode() int {")
		assert.Contains(t, src, "d.Upper())")
	})
}

func TestTemplateNested(t *testing.T) {
	const src = `package demo

//veneer:Generate
//veneer:Template(place = "namespace", text = "//veneer:Generate\ntype {{.Type}}Node struct {\n\t//veneer:Get\n\tid int\n}")
type Tree struct{ root int }
`
	u, report := generate(t, src, "Tree")
	out := render(t, u)
	assert.Empty(t, report.Diagnostics())
	assert.Equal(t, []string{"GetId", "TreeNode"}, names(u))
	require.Len(t, u.Fragment.Nested, 1)
	assert.Equal(t, "TreeNode", u.Fragment.Nested[0].Type)
	assert.Contains(t, out, "type TreeNode struct {")
	assert.Contains(t, out, "func (t *TreeNode) GetId() int {")
}

func TestTemplateFailures(t *testing.T) {
	const src = `package demo

//veneer:Generate
//veneer:Template(text = "func {{")
//veneer:Template(name = "broken", text = "func (")
//veneer:Template(place = "sideways", text = "var x = 1")
type Bad struct {
	//veneer:Get
	n int
}
`
	u, report := generate(t, src, "Bad")
	assert.Equal(t, []string{"GetN"}, names(u))

	var failed int
	for _, e := range report.Filter(gen.Failed) {
		assert.Equal(t, "template", e.Component)
		failed++
	}
	assert.Equal(t, 3, failed)
	for _, d := range report.Diagnostics() {
		assert.Equal(t, gen.CodeTemplateParse, d.Code)
		assert.Equal(t, gen.SeverityWarning, d.Severity)
	}
	assert.Len(t, report.Diagnostics(), 3)
}

func TestTemplateFuncs(t *testing.T) {
	tests := []struct {
		fn, in, want string
	}{
		{"plural", "box", "boxes"},
		{"singular", "items", "item"},
		{"camel", "user_name", "UserName"},
		{"underscore", "UserName", "user_name"},
		{"pascal", "_aField", "AField"},
	}
	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			fn, ok := funcs[tt.fn].(func(string) string)
			require.True(t, ok)
			assert.Equal(t, tt.want, fn(tt.in))
		})
	}
}
