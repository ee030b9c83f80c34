package gen

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/veneer/compiler/load"
)

// DescriptorKind is the shape of a described type.
type DescriptorKind int

// Descriptor kinds.
const (
	KindNamed DescriptorKind = iota
	KindPointer
	KindSlice
	KindArray
	KindMap
	KindChan
	KindFunc
	KindOther
)

// TypeDescriptor describes a member type in a form components can render.
// Args holds the type's arguments: the element of a pointer, slice, array or
// chan, the key and value of a map, or the type arguments of an instantiated
// generic type.
type TypeDescriptor struct {
	Kind DescriptorKind
	// Name and PkgPath identify a named type. PkgPath is empty for
	// predeclared types and type parameters.
	Name    string
	PkgPath string
	Args    []*TypeDescriptor
	// Len is the length expression of an array type.
	Len string
	// Dir is the direction of a chan type.
	Dir ast.ChanDir
	// Text is the type as written in source.
	Text string

	Nillable   bool
	Comparable bool
	Known      bool

	expr    ast.Expr
	imports map[string]string
}

// ListDescriptor is a list-shaped view of a type.
type ListDescriptor struct {
	*TypeDescriptor
	Elem *TypeDescriptor
}

// MapDescriptor is a map-shaped view of a type.
type MapDescriptor struct {
	*TypeDescriptor
	Key   *TypeDescriptor
	Value *TypeDescriptor
}

// Describer builds descriptors in the scope of one package file.
type Describer struct {
	// Imports maps the local names of the file's imports to their paths.
	Imports map[string]string
	// Resolver supplies nillability and comparability.
	Resolver load.Resolver
}

// Describe builds a fresh descriptor for expr. A nil expr yields nil.
func (d *Describer) Describe(expr ast.Expr) *TypeDescriptor {
	if expr == nil {
		return nil
	}
	facts := load.TypeFacts{}
	if d.Resolver != nil {
		facts = d.Resolver.Describe(expr)
	}
	td := &TypeDescriptor{
		Text:       types.ExprString(expr),
		Nillable:   facts.Nillable,
		Comparable: facts.Comparable,
		Known:      facts.Known,
		expr:       expr,
		imports:    d.Imports,
	}
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return d.Describe(e.X)
	case *ast.Ident:
		// Types of the package itself, predeclared types and type
		// parameters are all spelled unqualified.
		td.Kind, td.Name = KindNamed, e.Name
	case *ast.SelectorExpr:
		td.Kind, td.Name = KindNamed, e.Sel.Name
		if x, ok := e.X.(*ast.Ident); ok {
			td.PkgPath = x.Name
			if p, ok := d.Imports[x.Name]; ok {
				td.PkgPath = p
			}
		}
	case *ast.IndexExpr:
		td = d.instance(td, e.X, e.Index)
	case *ast.IndexListExpr:
		td = d.instance(td, e.X, e.Indices...)
	case *ast.StarExpr:
		td.Kind = KindPointer
		td.Args = []*TypeDescriptor{d.Describe(e.X)}
	case *ast.ArrayType:
		td.Kind = KindSlice
		if e.Len != nil {
			td.Kind, td.Len = KindArray, types.ExprString(e.Len)
		}
		td.Args = []*TypeDescriptor{d.Describe(e.Elt)}
	case *ast.MapType:
		td.Kind = KindMap
		td.Args = []*TypeDescriptor{d.Describe(e.Key), d.Describe(e.Value)}
	case *ast.ChanType:
		td.Kind, td.Dir = KindChan, e.Dir
		td.Args = []*TypeDescriptor{d.Describe(e.Value)}
	case *ast.FuncType:
		td.Kind = KindFunc
	default:
		td.Kind = KindOther
	}
	return td
}

func (d *Describer) instance(td *TypeDescriptor, x ast.Expr, args ...ast.Expr) *TypeDescriptor {
	base := d.Describe(x)
	td.Kind, td.Name, td.PkgPath = KindNamed, base.Name, base.PkgPath
	for _, a := range args {
		td.Args = append(td.Args, d.Describe(a))
	}
	return td
}

// DescribeText resolves a type written as text, such as a marker override.
// It returns nil when the text is not a type expression.
func (d *Describer) DescribeText(text string, pos token.Pos) *TypeDescriptor {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if d.Resolver == nil {
		expr, err := load.ParseTypeExpr(text)
		if err != nil {
			return nil
		}
		return d.Describe(expr)
	}
	facts, expr := d.Resolver.DescribeText(text, pos)
	if expr == nil {
		return nil
	}
	td := d.Describe(expr)
	// The parsed expression is not part of the checked package, so the
	// resolver's facts for the whole text take precedence.
	td.Nillable, td.Comparable, td.Known = facts.Nillable, facts.Comparable, facts.Known
	return td
}

// Elem returns the i'th type argument, or nil.
func (t *TypeDescriptor) Elem(i int) *TypeDescriptor {
	if t == nil || i >= len(t.Args) {
		return nil
	}
	return t.Args[i]
}

// List returns the list view of t with the element resolved from the
// override when set, else from the first type argument. ok is false when
// neither is available.
func (t *TypeDescriptor) List(override *TypeDescriptor) (ListDescriptor, bool) {
	elem := override
	if elem == nil && t != nil && t.Kind != KindMap {
		elem = t.Elem(0)
	}
	return ListDescriptor{TypeDescriptor: t, Elem: elem}, elem != nil
}

// Map returns the map view of t. Each override replaces the corresponding
// type argument; ok is false when either side is unavailable.
func (t *TypeDescriptor) Map(key, value *TypeDescriptor) (MapDescriptor, bool) {
	if key == nil && t != nil && len(t.Args) == 2 {
		key = t.Args[0]
	}
	if value == nil && t != nil && len(t.Args) == 2 {
		value = t.Args[1]
	}
	return MapDescriptor{TypeDescriptor: t, Key: key, Value: value}, key != nil && value != nil
}

// String returns the type as written.
func (t *TypeDescriptor) String() string {
	if t == nil {
		return ""
	}
	return t.Text
}

// Code renders t as a jen type expression.
func (t *TypeDescriptor) Code() *jen.Statement {
	if t == nil {
		return jen.Null()
	}
	switch t.Kind {
	case KindNamed:
		var s *jen.Statement
		if t.PkgPath == "" {
			s = jen.Id(t.Name)
		} else {
			s = jen.Qual(t.PkgPath, t.Name)
		}
		if len(t.Args) > 0 {
			args := make([]jen.Code, len(t.Args))
			for i, a := range t.Args {
				args[i] = a.Code()
			}
			s = s.Types(args...)
		}
		return s
	case KindPointer:
		return jen.Op("*").Add(t.Elem(0).Code())
	case KindSlice:
		return jen.Index().Add(t.Elem(0).Code())
	case KindArray:
		return jen.Index(jen.Id(t.Len)).Add(t.Elem(0).Code())
	case KindMap:
		return jen.Map(t.Elem(0).Code()).Add(t.Elem(1).Code())
	case KindChan:
		switch t.Dir {
		case ast.SEND:
			return jen.Chan().Op("<-").Add(t.Elem(0).Code())
		case ast.RECV:
			return jen.Op("<-").Chan().Add(t.Elem(0).Code())
		default:
			return jen.Chan().Add(t.Elem(0).Code())
		}
	default:
		// Function, interface and struct literals are emitted as written.
		return jen.Id(t.Text)
	}
}

// Imports returns the import paths referenced by t, keyed by path with the
// local name used in source as value. Only types emitted as written need
// them; qualified names are imported by the renderer.
func (t *TypeDescriptor) Imports() map[string]string {
	out := map[string]string{}
	t.collect(out)
	return out
}

func (t *TypeDescriptor) collect(out map[string]string) {
	if t == nil {
		return
	}
	if (t.Kind == KindFunc || t.Kind == KindOther) && t.expr != nil {
		ast.Inspect(t.expr, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			if x, ok := sel.X.(*ast.Ident); ok {
				if p, ok := t.imports[x.Name]; ok {
					out[p] = x.Name
				}
			}
			return false
		})
	}
	for _, a := range t.Args {
		a.collect(out)
	}
}
