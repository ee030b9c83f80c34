package synth

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
	"text/template"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"

	"github.com/syssam/veneer/compiler/gen"
	"github.com/syssam/veneer/compiler/load"
	"github.com/syssam/veneer/schema/marker"
)

// Template expands a fill-in-the-blanks template into declarations and
// splices them at the requested scope. It runs for type-level and
// member-level occurrences alike.
type Template struct{}

// Name implements gen.Component.
func (*Template) Name() string { return "template" }

// Kind implements gen.TypeComponent and gen.MemberComponent.
func (*Template) Kind() marker.Kind { return marker.Template }

// GenerateType implements gen.TypeComponent.
func (*Template) GenerateType(tc *gen.TypeContext, m marker.Marker) (*gen.Output, error) {
	tm, _ := m.(marker.TemplateText)
	x := &expansion{tc: tc, tm: tm, data: newTemplateData(tc, nil), imports: tc.Decl.Imports, pos: tc.Decl.Pos}
	return x.run()
}

// Generate implements gen.MemberComponent.
func (*Template) Generate(mc *gen.MemberContext) (*gen.Output, error) {
	tm, _ := mc.Marker.(marker.TemplateText)
	imports := mc.Fact.Imports
	if imports == nil {
		imports = mc.Decl.Imports
	}
	x := &expansion{tc: mc.TypeContext, tm: tm, data: newTemplateData(mc.TypeContext, mc), imports: imports, pos: mc.Annotation.Pos}
	return x.run()
}

// templateData holds the placeholders available to a template.
type templateData struct {
	Type          string
	TypeParams    string
	QualifiedType string
	FullName      string
	Package       string
	PackagePath   string
	Receiver      string
	// Field, FieldName and FieldType are empty for type-level templates.
	Field     string
	FieldName string
	FieldType string
}

func newTemplateData(tc *gen.TypeContext, mc *gen.MemberContext) templateData {
	d := templateData{
		Type:          tc.Name(),
		TypeParams:    tc.TypeArgs(),
		QualifiedType: tc.QualifiedName(),
		FullName:      tc.FullName(),
		Package:       tc.Package.Name,
		PackagePath:   tc.Package.Path,
		Receiver:      tc.Receiver,
	}
	if mc != nil {
		d.Field = mc.Fact.Name
		d.FieldName = gen.Pascal(mc.Fact.Name)
		if mc.Type != nil {
			d.FieldType = mc.Type.String()
		}
	}
	return d
}

var funcs = template.FuncMap{
	"plural":     inflect.Pluralize,
	"singular":   inflect.Singularize,
	"camel":      inflect.Camelize,
	"underscore": inflect.Underscore,
	"pascal":     gen.Pascal,
	"lower":      strings.ToLower,
	"upper":      strings.ToUpper,
}

// expansion is one template occurrence being expanded.
type expansion struct {
	tc   *gen.TypeContext
	tm   marker.TemplateText
	data templateData
	// imports maps the local import names in scope of the directive to
	// their paths.
	imports map[string]string
	pos     token.Pos
}

func (x *expansion) name() string {
	if x.tm.Name != "" {
		return x.tm.Name
	}
	if x.data.Field != "" {
		return x.tc.Name() + "." + x.data.Field
	}
	return x.tc.Name()
}

func (x *expansion) run() (*gen.Output, error) {
	if x.tm.BadPlace != "" {
		return nil, gen.NewTemplateError(x.name(), x.tm.BadPlace, "unknown placement", nil)
	}
	if strings.TrimSpace(x.tm.Text) == "" {
		return nil, gen.Skip("empty template")
	}
	text, err := x.execute()
	if err != nil {
		return nil, err
	}
	return x.splice(text)
}

func (x *expansion) execute() (string, error) {
	t, err := template.New(x.name()).Funcs(funcs).Parse(x.tm.Text)
	if err != nil {
		return "", gen.NewTemplateError(x.name(), x.tm.Place.String(), "parsing template", err)
	}
	var b strings.Builder
	if err := t.Execute(&b, x.data); err != nil {
		return "", gen.NewTemplateError(x.name(), x.tm.Place.String(), "executing template", err)
	}
	return b.String(), nil
}

// splice parses the expansion as declarations of the package and turns each
// declaration into a member at the requested placement. Generated types
// declared by the expansion are returned as nested declarations.
func (x *expansion) splice(text string) (*gen.Output, error) {
	fset := x.tc.Package.Fset
	if fset == nil {
		fset = token.NewFileSet()
	}
	filename := strings.ToLower(x.tc.Name()) + "_template.go"
	src := "package " + x.tc.Package.Name + "\n\n" + text
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, gen.NewTemplateError(x.name(), x.tm.Place.String(), "expansion is not valid Go", err)
	}
	file := fset.File(f.Pos())

	own := map[string]string{}
	for _, spec := range f.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := path[strings.LastIndex(path, "/")+1:]
		if spec.Name != nil {
			name = spec.Name.Name
		}
		own[name] = path
	}
	scope := make(map[string]string, len(x.imports)+len(own))
	for name, path := range x.imports {
		scope[name] = path
	}
	for name, path := range own {
		scope[name] = path
	}

	out := &gen.Output{}
	for _, d := range f.Decls {
		if gd, ok := d.(*ast.GenDecl); ok && gd.Tok == token.IMPORT {
			continue
		}
		start := d.Pos()
		if doc := docOf(d); doc != nil {
			start = doc.Pos()
		}
		m := &gen.Member{
			Name:    declName(d),
			Code:    jen.Id(src[file.Offset(start):file.Offset(d.End())]),
			Imports: used(d, scope),
			Pos:     x.pos,
		}
		if x.tm.Place == marker.PlaceType {
			m.Fact = x.fact(d, scope)
		}
		out.Add(x.tm.Place, m)
	}

	pkg := load.NewPackage(load.Config{Prefix: x.tc.Package.Prefix}, fset, x.tc.Package.Name, x.tc.Package.Path,
		[]*ast.File{f}, []string{filename}, x.tc.Package.Resolver)
	for _, nd := range pkg.Types {
		nd.Parent = x.tc.Decl
		nd.ParentName = x.tc.Name()
		nd.Walk(func(t *load.TypeDecl) { inherit(t, scope) })
		out.Nested = append(out.Nested, nd)
	}
	return out, nil
}

// fact describes a method of the expansion that carries directives, so that
// aggregators can select it.
func (x *expansion) fact(d ast.Decl, scope map[string]string) *gen.Fact {
	fd, ok := d.(*ast.FuncDecl)
	if !ok || fd.Recv == nil {
		return nil
	}
	as := load.ParseDirectives(x.tc.Package.Prefix, fd.Doc)
	if len(as) == 0 {
		return nil
	}
	var expr ast.Expr
	if fd.Type.Results != nil && len(fd.Type.Results.List) > 0 {
		expr = fd.Type.Results.List[0].Type
	}
	return &gen.Fact{
		Name:        fd.Name.Name,
		Expr:        expr,
		Method:      true,
		Params:      count(fd.Type.Params),
		Results:     count(fd.Type.Results),
		Annotations: as,
		Imports:     scope,
		Pos:         fd.Pos(),
	}
}

// inherit makes the imports in scope of the directive visible to a type
// declared by the expansion.
func inherit(t *load.TypeDecl, scope map[string]string) {
	merge := func(dst map[string]string) map[string]string {
		if dst == nil {
			dst = map[string]string{}
		}
		for name, path := range scope {
			if _, ok := dst[name]; !ok {
				dst[name] = path
			}
		}
		return dst
	}
	t.Imports = merge(t.Imports)
	for _, m := range t.Members {
		m.Imports = merge(m.Imports)
	}
}

// used returns the imports in scope that d refers to, keyed by path.
func used(d ast.Decl, scope map[string]string) map[string]string {
	var out map[string]string
	ast.Inspect(d, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		id, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		if path, ok := scope[id.Name]; ok {
			if out == nil {
				out = map[string]string{}
			}
			out[path] = id.Name
		}
		return true
	})
	return out
}

func docOf(d ast.Decl) *ast.CommentGroup {
	switch d := d.(type) {
	case *ast.FuncDecl:
		return d.Doc
	case *ast.GenDecl:
		return d.Doc
	}
	return nil
}

// declName returns the name a declaration introduces: the function or
// method name, or the first name of a type, var or const declaration.
func declName(d ast.Decl) string {
	switch d := d.(type) {
	case *ast.FuncDecl:
		return d.Name.Name
	case *ast.GenDecl:
		if len(d.Specs) == 0 {
			return ""
		}
		switch s := d.Specs[0].(type) {
		case *ast.TypeSpec:
			return s.Name.Name
		case *ast.ValueSpec:
			if len(s.Names) > 0 {
				return s.Names[0].Name
			}
		}
	}
	return fmt.Sprintf("decl@%d", d.Pos())
}

// count returns the number of parameters or results of a field list.
func count(fl *ast.FieldList) int {
	if fl == nil {
		return 0
	}
	n := 0
	for _, f := range fl.List {
		if len(f.Names) == 0 {
			n++
			continue
		}
		n += len(f.Names)
	}
	return n
}
