package load

import (
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// TypeFacts describes a type expression.
type TypeFacts struct {
	// Canonical is the fully qualified spelling of the type.
	Canonical string
	// Nillable is set for pointer, slice, map, chan, func and interface types.
	Nillable bool
	// Comparable reports whether values of the type support ==.
	Comparable bool
	// Known is false when the type could not be resolved; the other facts
	// are then a syntactic guess.
	Known bool
}

// Constant is a resolved constant or enum member reference.
type Constant struct {
	// Value is a string, bool, int64 or float64.
	Value any
	// Enum is set when the constant has a named non-string type; Value then
	// holds the member name.
	Enum bool
}

// Resolver is the symbol-resolution capability of a loaded package.
type Resolver interface {
	// Describe returns facts about a type expression of the package.
	Describe(expr ast.Expr) TypeFacts
	// DescribeText resolves a type written as text (a directive override)
	// in the scope enclosing pos.
	DescribeText(text string, pos token.Pos) (TypeFacts, ast.Expr)
	// Constant resolves a constant or enum member reference.
	Constant(expr ast.Expr, pos token.Pos) (Constant, bool)
}

// TypesResolver resolves through go/types information. Lookups are memoised
// in a bounded cache that is safe for concurrent use.
type TypesResolver struct {
	fset     *token.FileSet
	pkg      *types.Package
	info     *types.Info
	fallback *SyntaxResolver
	cache    *lru.Cache[ast.Expr, TypeFacts]
}

// NewTypesResolver returns a resolver backed by type-checker output. A nil
// pkg or info degrades to syntactic resolution.
func NewTypesResolver(fset *token.FileSet, pkg *types.Package, info *types.Info, files []*ast.File) *TypesResolver {
	cache, _ := lru.New[ast.Expr, TypeFacts](1024)
	return &TypesResolver{
		fset:     fset,
		pkg:      pkg,
		info:     info,
		fallback: NewSyntaxResolver(files),
		cache:    cache,
	}
}

// Describe implements Resolver.
func (r *TypesResolver) Describe(expr ast.Expr) TypeFacts {
	if expr == nil {
		return TypeFacts{}
	}
	if facts, ok := r.cache.Get(expr); ok {
		return facts
	}
	var facts TypeFacts
	if t := r.typeOf(expr); t != nil && !strings.Contains(t.String(), "invalid type") {
		facts = r.facts(t)
	} else {
		facts = r.fallback.Describe(expr)
	}
	r.cache.Add(expr, facts)
	return facts
}

// DescribeText implements Resolver.
func (r *TypesResolver) DescribeText(text string, pos token.Pos) (TypeFacts, ast.Expr) {
	facts, expr := r.fallback.DescribeText(text, pos)
	if expr == nil || r.pkg == nil || r.fset == nil {
		return facts, expr
	}
	tv, err := types.Eval(r.fset, r.pkg, pos, text)
	if err != nil || !tv.IsType() {
		return facts, expr
	}
	return r.facts(tv.Type), expr
}

// Constant implements Resolver.
func (r *TypesResolver) Constant(expr ast.Expr, pos token.Pos) (Constant, bool) {
	if r.info != nil {
		if c, ok := r.constantObject(expr); ok {
			return c, true
		}
	}
	if r.pkg != nil && r.fset != nil {
		if tv, err := types.Eval(r.fset, r.pkg, pos, types.ExprString(expr)); err == nil && tv.Value != nil {
			return constantValue(tv.Value, tv.Type, trailing(types.ExprString(expr))), true
		}
	}
	return r.fallback.Constant(expr, pos)
}

func (r *TypesResolver) constantObject(expr ast.Expr) (Constant, bool) {
	var id *ast.Ident
	switch e := expr.(type) {
	case *ast.Ident:
		id = e
	case *ast.SelectorExpr:
		id = e.Sel
	default:
		return Constant{}, false
	}
	obj, ok := r.info.Uses[id].(*types.Const)
	if !ok {
		return Constant{}, false
	}
	return constantValue(obj.Val(), obj.Type(), obj.Name()), true
}

func (r *TypesResolver) typeOf(expr ast.Expr) types.Type {
	if r.info == nil {
		return nil
	}
	if tv, ok := r.info.Types[expr]; ok && tv.Type != nil {
		if b, ok := tv.Type.(*types.Basic); ok && b.Kind() == types.Invalid {
			return nil
		}
		return tv.Type
	}
	return nil
}

func (r *TypesResolver) facts(t types.Type) TypeFacts {
	qualifier := func(p *types.Package) string { return p.Path() }
	facts := TypeFacts{
		Canonical:  types.TypeString(t, qualifier),
		Comparable: types.Comparable(t),
		Known:      true,
	}
	switch t.Underlying().(type) {
	case *types.Pointer, *types.Slice, *types.Map, *types.Chan, *types.Signature, *types.Interface:
		facts.Nillable = true
	}
	if tp, ok := t.(*types.TypeParam); ok {
		// A type parameter is comparable only when its constraint says so.
		facts.Comparable = types.Comparable(tp)
		facts.Nillable = false
	}
	return facts
}

func constantValue(v constant.Value, t types.Type, name string) Constant {
	named := false
	if t != nil {
		if _, ok := t.(*types.Named); ok {
			named = true
		}
	}
	switch v.Kind() {
	case constant.String:
		return Constant{Value: constant.StringVal(v)}
	case constant.Bool:
		return Constant{Value: constant.BoolVal(v)}
	case constant.Int:
		if named {
			return Constant{Value: name, Enum: true}
		}
		if n, ok := constant.Int64Val(v); ok {
			return Constant{Value: n}
		}
		return Constant{Value: v.ExactString()}
	case constant.Float:
		if named {
			return Constant{Value: name, Enum: true}
		}
		f, _ := constant.Float64Val(v)
		return Constant{Value: f}
	default:
		return Constant{Value: v.ExactString()}
	}
}

// SyntaxResolver resolves from syntax alone. It knows the predeclared types,
// the shape of composite type expressions and the package's own type and
// constant declarations.
type SyntaxResolver struct {
	types  map[string]ast.Expr
	consts map[string]constDecl
}

type constDecl struct {
	value ast.Expr
	typ   ast.Expr
}

// NewSyntaxResolver indexes the type and constant declarations of files.
func NewSyntaxResolver(files []*ast.File) *SyntaxResolver {
	r := &SyntaxResolver{
		types:  make(map[string]ast.Expr),
		consts: make(map[string]constDecl),
	}
	for _, f := range files {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			switch gd.Tok {
			case token.TYPE:
				for _, spec := range gd.Specs {
					ts := spec.(*ast.TypeSpec)
					r.types[ts.Name.Name] = ts.Type
				}
			case token.CONST:
				r.indexConsts(gd)
			}
		}
	}
	return r
}

func (r *SyntaxResolver) indexConsts(gd *ast.GenDecl) {
	var (
		lastType  ast.Expr
		lastValue []ast.Expr
	)
	for idx, spec := range gd.Specs {
		vs := spec.(*ast.ValueSpec)
		if len(vs.Values) > 0 {
			lastType, lastValue = vs.Type, vs.Values
		}
		for i, name := range vs.Names {
			cd := constDecl{typ: lastType}
			if i < len(lastValue) {
				cd.value = lastValue[i]
			}
			if isIota(cd.value) {
				cd.value = &ast.BasicLit{Kind: token.INT, Value: strconv.Itoa(idx)}
			}
			r.consts[name.Name] = cd
		}
	}
}

func isIota(e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == "iota"
}

var predeclared = map[string]TypeFacts{
	"bool": {Comparable: true}, "string": {Comparable: true}, "byte": {Comparable: true},
	"rune": {Comparable: true}, "int": {Comparable: true}, "int8": {Comparable: true},
	"int16": {Comparable: true}, "int32": {Comparable: true}, "int64": {Comparable: true},
	"uint": {Comparable: true}, "uint8": {Comparable: true}, "uint16": {Comparable: true},
	"uint32": {Comparable: true}, "uint64": {Comparable: true}, "uintptr": {Comparable: true},
	"float32": {Comparable: true}, "float64": {Comparable: true},
	"complex64": {Comparable: true}, "complex128": {Comparable: true},
	"any": {Comparable: true, Nillable: true}, "error": {Comparable: true, Nillable: true},
}

// Describe implements Resolver.
func (r *SyntaxResolver) Describe(expr ast.Expr) TypeFacts {
	return r.describe(expr, 0)
}

func (r *SyntaxResolver) describe(expr ast.Expr, depth int) TypeFacts {
	facts := TypeFacts{Canonical: types.ExprString(expr)}
	switch e := expr.(type) {
	case *ast.Ident:
		if p, ok := predeclared[e.Name]; ok {
			p.Canonical = e.Name
			p.Known = true
			return p
		}
		if def, ok := r.types[e.Name]; ok && depth < 8 {
			under := r.describe(def, depth+1)
			under.Canonical = e.Name
			return under
		}
		facts.Comparable = true
	case *ast.ParenExpr:
		return r.describe(e.X, depth)
	case *ast.StarExpr, *ast.ChanType:
		facts.Nillable, facts.Comparable, facts.Known = true, true, true
	case *ast.InterfaceType:
		facts.Nillable, facts.Comparable, facts.Known = true, true, true
	case *ast.FuncType, *ast.MapType:
		facts.Nillable, facts.Known = true, true
	case *ast.ArrayType:
		if e.Len == nil {
			facts.Nillable, facts.Known = true, true
			break
		}
		elem := r.describe(e.Elt, depth+1)
		facts.Comparable, facts.Known = elem.Comparable, elem.Known
	case *ast.StructType:
		facts.Comparable, facts.Known = true, true
		for _, f := range e.Fields.List {
			ff := r.describe(f.Type, depth+1)
			facts.Comparable = facts.Comparable && ff.Comparable
			facts.Known = facts.Known && ff.Known
		}
	default:
		// Qualified and instantiated types are opaque without type information.
		facts.Comparable = true
	}
	return facts
}

// DescribeText implements Resolver.
func (r *SyntaxResolver) DescribeText(text string, _ token.Pos) (TypeFacts, ast.Expr) {
	expr, err := parseTypeExpr(text)
	if err != nil {
		return TypeFacts{Canonical: text}, nil
	}
	return r.Describe(expr), expr
}

// Constant implements Resolver.
func (r *SyntaxResolver) Constant(expr ast.Expr, _ token.Pos) (Constant, bool) {
	id, ok := expr.(*ast.Ident)
	if !ok {
		return Constant{}, false
	}
	cd, ok := r.consts[id.Name]
	if !ok || cd.value == nil {
		return Constant{}, false
	}
	if cd.typ != nil {
		if tid, ok := cd.typ.(*ast.Ident); ok && tid.Name != "string" {
			if _, builtin := predeclared[tid.Name]; !builtin {
				return Constant{Value: id.Name, Enum: true}, true
			}
		}
	}
	lit, ok := cd.value.(*ast.BasicLit)
	if !ok {
		if vid, ok := cd.value.(*ast.Ident); ok && (vid.Name == "true" || vid.Name == "false") {
			return Constant{Value: vid.Name == "true"}, true
		}
		return Constant{}, false
	}
	if v, ok := literal(lit); ok {
		return Constant{Value: v}, true
	}
	return Constant{}, false
}

// trailing returns the last identifier segment of a dotted expression.
func trailing(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexAny(s, ".("); i >= 0 && !strings.HasSuffix(s, ")") {
		return s[i+1:]
	}
	return s
}

var (
	_ Resolver = (*TypesResolver)(nil)
	_ Resolver = (*SyntaxResolver)(nil)
)
