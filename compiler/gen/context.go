package gen

import (
	"context"
	"fmt"
	"go/token"
	"strings"

	"github.com/dave/jennifer/jen"
	"go.uber.org/zap"

	"github.com/syssam/veneer/compiler/load"
	"github.com/syssam/veneer/internal/logger"
	"github.com/syssam/veneer/schema/marker"
)

// TypeContext holds what every component needs to know about the type being
// generated. A TypeContext is owned by a single run and never shared.
type TypeContext struct {
	Package *load.Package
	Decl    *load.TypeDecl
	Config  *Config
	// Receiver is the receiver name of generated methods.
	Receiver string
	// Parent is the context of the enclosing generated type, nil for
	// top-level types.
	Parent *TypeContext
	// Facts are the members of the type in source order.
	Facts  []*Fact
	Log    *zap.Logger
	Report *Report

	ctx context.Context
}

// NewTypeContext returns the context of decl.
func NewTypeContext(ctx context.Context, pkg *load.Package, decl *load.TypeDecl, cfg *Config, parent *TypeContext) *TypeContext {
	if cfg == nil {
		cfg = &Config{}
	}
	report := &Report{}
	if parent != nil {
		report = parent.Report
	}
	return &TypeContext{
		Package:  pkg,
		Decl:     decl,
		Config:   cfg,
		Receiver: ReceiverName(decl.Name),
		Parent:   parent,
		Log:      cfg.Log().With(zap.String(logger.FieldType, decl.Name)),
		Report:   report,
		ctx:      ctx,
	}
}

// Context returns the context of the run.
func (tc *TypeContext) Context() context.Context {
	if tc.ctx == nil {
		return context.Background()
	}
	return tc.ctx
}

// Name returns the type name.
func (tc *TypeContext) Name() string {
	return tc.Decl.Name
}

// QualifiedName returns the type name qualified by its package name.
func (tc *TypeContext) QualifiedName() string {
	return tc.Package.Name + "." + tc.Decl.Name
}

// FullName returns the type name qualified by its package path.
func (tc *TypeContext) FullName() string {
	return tc.Package.Path + "." + tc.Decl.Name
}

// TypeArgs returns the type parameter names as written in a receiver,
// e.g. "[K, V]", or "" for non-generic types.
func (tc *TypeContext) TypeArgs() string {
	if len(tc.Decl.TypeParams) == 0 {
		return ""
	}
	names := make([]string, len(tc.Decl.TypeParams))
	for i, p := range tc.Decl.TypeParams {
		names[i] = p.Name
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// Self renders the type as used in a receiver or conversion.
func (tc *TypeContext) Self() *jen.Statement {
	s := jen.Id(tc.Decl.Name)
	if len(tc.Decl.TypeParams) > 0 {
		args := make([]jen.Code, len(tc.Decl.TypeParams))
		for i, p := range tc.Decl.TypeParams {
			args[i] = jen.Id(p.Name)
		}
		s = s.Types(args...)
	}
	return s
}

// Ptr renders the pointer type of Self.
func (tc *TypeContext) Ptr() *jen.Statement {
	return jen.Op("*").Add(tc.Self())
}

// Recv renders the receiver variable.
func (tc *TypeContext) Recv() *jen.Statement {
	return jen.Id(tc.Receiver)
}

// Method starts a method declaration with a pointer receiver.
func (tc *TypeContext) Method(name string) *jen.Statement {
	return jen.Func().Params(jen.Id(tc.Receiver).Add(tc.Ptr())).Id(name)
}

// Runtime renders a qualified reference into the runtime package.
func (tc *TypeContext) Runtime(name string) *jen.Statement {
	return jen.Qual(tc.Config.Runtime(), name)
}

// Doc formats the doc comment of a generated member. It returns "" when doc
// comments are disabled.
func (tc *TypeContext) Doc(format string, args ...any) string {
	if !tc.Config.FeatureEnabled(FeatureDocComments.Name) {
		return ""
	}
	return fmt.Sprintf(format, args...)
}

// Describer returns a describer for the given file imports.
func (tc *TypeContext) Describer(imports map[string]string) *Describer {
	if imports == nil {
		imports = tc.Decl.Imports
	}
	return &Describer{
		Imports:  imports,
		Resolver: tc.Package.Resolver,
	}
}

// Position returns the source position of pos.
func (tc *TypeContext) Position(pos token.Pos) token.Position {
	if tc.Package.Fset == nil || !pos.IsValid() {
		return token.Position{}
	}
	return tc.Package.Fset.Position(pos)
}

// Lookup returns the fact with the given name.
func (tc *TypeContext) Lookup(name string) (*Fact, bool) {
	for _, f := range tc.Facts {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Markers restores the type-level markers of the given kind in source order.
func (tc *TypeContext) Markers(kind marker.Kind) ([]marker.Marker, error) {
	var out []marker.Marker
	for _, a := range tc.Decl.Lookup(string(kind)) {
		m, err := a.Restore(tc.Package.Resolver)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Root returns the outermost enclosing context.
func (tc *TypeContext) Root() *TypeContext {
	for tc.Parent != nil {
		tc = tc.Parent
	}
	return tc
}

// FieldContext is a TypeContext focused on one fact.
type FieldContext struct {
	*TypeContext
	Fact *Fact
}

// Field renders an access to the fact: the package var of a static member,
// a call of a method, or the receiver's field.
func (fc FieldContext) Field() *jen.Statement {
	switch {
	case fc.Fact.Static:
		return jen.Id(fc.Fact.Name)
	case fc.Fact.Method:
		return fc.Recv().Dot(fc.Fact.Name).Call()
	default:
		return fc.Recv().Dot(fc.Fact.Name)
	}
}

// Describe returns a fresh descriptor of the fact's type.
func (fc FieldContext) Describe() *TypeDescriptor {
	return fc.Describer(fc.Fact.Imports).Describe(fc.Fact.Expr)
}

// MemberContext is the combination handed to a member component: one fact,
// one marker occurrence and the fact's type with any override applied.
type MemberContext struct {
	FieldContext
	Marker marker.Marker
	// Type is a fresh descriptor of the fact's type.
	Type *TypeDescriptor
	// Annotation is the raw directive the marker was restored from.
	Annotation load.Annotation
}

// Base returns the shared options of the marker.
func (mc *MemberContext) Base() marker.Base {
	b, _ := marker.BaseOf(mc.Marker)
	return b
}

// Override resolves a type override of the marker in the fact's scope.
func (mc *MemberContext) Override(text string) *TypeDescriptor {
	return mc.Describer(mc.Fact.Imports).DescribeText(text, mc.Fact.Pos)
}

// Member is one generated declaration.
type Member struct {
	// Name identifies the member for duplicate detection: the method, type,
	// var or func name.
	Name string
	Code jen.Code
	// Doc is the doc comment written above Code.
	Doc string
	// Fact describes the member for later components, nil when it declares
	// nothing they can inspect.
	Fact *Fact
	// Imports maps import paths to local names for code emitted as text.
	Imports map[string]string
	// Origin is the name of the component that produced the member.
	Origin string
	Pos    token.Pos
}

// Output holds generated members by scope. Parent members belong to the
// enclosing type, or to the package for top-level types.
type Output struct {
	Type        []*Member
	Parent      []*Member
	Namespace   []*Member
	Compilation []*Member
	// Nested are generated types discovered in template expansions. They run
	// through the whole pipeline nested under the producing type.
	Nested []*load.TypeDecl
}

// Add appends m to the buffer of the given placement.
func (o *Output) Add(place marker.Placement, m *Member) {
	switch place {
	case marker.PlaceParent:
		o.Parent = append(o.Parent, m)
	case marker.PlaceNamespace:
		o.Namespace = append(o.Namespace, m)
	case marker.PlaceCompilation:
		o.Compilation = append(o.Compilation, m)
	default:
		o.Type = append(o.Type, m)
	}
}

// Merge appends the buffers of x to o.
func (o *Output) Merge(x *Output) {
	if x == nil {
		return
	}
	o.Type = append(o.Type, x.Type...)
	o.Parent = append(o.Parent, x.Parent...)
	o.Namespace = append(o.Namespace, x.Namespace...)
	o.Compilation = append(o.Compilation, x.Compilation...)
	o.Nested = append(o.Nested, x.Nested...)
}

// Len returns the number of generated members.
func (o *Output) Len() int {
	if o == nil {
		return 0
	}
	return len(o.Type) + len(o.Parent) + len(o.Namespace) + len(o.Compilation)
}

// Members returns a one-member type-scope output.
func Members(ms ...*Member) *Output {
	return &Output{Type: ms}
}
