// Package load builds the declaration model consumed by the generator.
//
// A Package holds the generated types of one Go package: every named type
// whose doc comment carries the top-level directive, its members (fields,
// methods and attached package vars) and the raw directives found on them.
// Directives are collected, not interpreted; see the marker package for the
// typed configuration they restore to.
package load

import (
	"go/ast"
	"go/token"
)

// DefaultPrefix is the directive prefix used when none is configured.
const DefaultPrefix = "veneer"

// Package represents a Go package that was loaded for generation.
type Package struct {
	// Name is the package name, Path its import path and Dir its directory.
	Name string
	Path string
	Dir  string
	Fset *token.FileSet
	// Files are the non-generated source files of the package.
	Files []*ast.File
	// Filenames holds the file name of each entry in Files.
	Filenames []string
	// Types are the top-level generated types in source order. Types nested
	// with Generate(in = ...) hang off their parent's Nested list.
	Types []*TypeDecl
	// Resolver resolves type expressions and constant references.
	Resolver Resolver
	// Prefix is the directive prefix the package was scanned with.
	Prefix string
}

// TypeParam is a type parameter of a generic type.
type TypeParam struct {
	Name       string
	Constraint ast.Expr
}

// TypeDecl is a named type bearing the top-level directive.
type TypeDecl struct {
	Name       string
	TypeParams []TypeParam
	// Alias is set for alias declarations (type A = B). Methods cannot be
	// declared on them, so they cannot receive generated members.
	Alias bool
	// FileLocal is set for types declared inside a function body.
	FileLocal bool
	// ParentName is the requested enclosing type (Generate(in = ...)).
	ParentName string
	Parent     *TypeDecl
	Nested     []*TypeDecl
	// Annotations are the directives on the type's doc comment.
	Annotations []Annotation
	Members     []*Member
	// Imports maps the local import names of the declaring file to paths.
	Imports map[string]string
	Spec    *ast.TypeSpec
	Pos     token.Pos
}

// MemberKind distinguishes field-like from method-like members.
type MemberKind int

// Member kinds.
const (
	FieldMember MemberKind = iota
	MethodMember
)

// Member is one member declaration of a type. A field declaration naming
// several variables (a, b int) is a single Member with several Names.
type Member struct {
	Names []string
	Kind  MemberKind
	// Type is the declared type. For methods it is the first result type,
	// nil when the method returns nothing.
	Type ast.Expr
	// Static is set for package vars attached with Static(of = ...).
	Static bool
	// Embedded is set for embedded fields; Names holds the field name.
	Embedded bool
	// Params and Results count method parameters and results.
	Params  int
	Results int
	// Annotations are the directives on the member's doc and line comments.
	Annotations []Annotation
	Imports     map[string]string
	Node        ast.Node
	Pos         token.Pos
}

// Annotation is one raw directive.
type Annotation struct {
	Name string
	Args []Arg
	// Text is the directive text after the prefix.
	Text string
	Pos  token.Pos
}

// Arg is a raw key = expression argument. Expr is nil when the text could
// not be parsed as a Go expression.
type Arg struct {
	Key  string
	Expr ast.Expr
	Text string
}

// Lookup returns all annotations of t named name in source order.
func (t *TypeDecl) Lookup(name string) []Annotation {
	return lookup(t.Annotations, name)
}

// Has reports whether t carries a directive named name.
func (t *TypeDecl) Has(name string) bool {
	return len(t.Lookup(name)) > 0
}

// Methods returns the method members of t.
func (t *TypeDecl) Methods() []*Member {
	var methods []*Member
	for _, m := range t.Members {
		if m.Kind == MethodMember {
			methods = append(methods, m)
		}
	}
	return methods
}

// Walk calls fn for t and every nested type, depth first.
func (t *TypeDecl) Walk(fn func(*TypeDecl)) {
	fn(t)
	for _, n := range t.Nested {
		n.Walk(fn)
	}
}

// Lookup returns all annotations of m named name in source order.
func (m *Member) Lookup(name string) []Annotation {
	return lookup(m.Annotations, name)
}

func lookup(as []Annotation, name string) []Annotation {
	var found []Annotation
	for _, a := range as {
		if a.Name == name {
			found = append(found, a)
		}
	}
	return found
}

// Arg returns the argument with the given key.
func (a Annotation) Arg(key string) (Arg, bool) {
	for _, arg := range a.Args {
		if arg.Key == key {
			return arg, true
		}
	}
	return Arg{}, false
}
