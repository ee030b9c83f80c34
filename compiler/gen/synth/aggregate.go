package synth

import (
	"fmt"
	"go/ast"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/veneer/compiler/gen"
	"github.com/syssam/veneer/schema/marker"
)

// Aggregator is a phase-2 component folding the selected fields of a type
// into one whole-type member.
type Aggregator struct {
	name    string
	class   marker.Kind
	field   marker.Kind
	enforce bool
	onlyOne bool
	fn      func(*gen.AggregateContext) (*gen.Output, error)
}

// NewToString returns the aggregator of ToFieldString and String. It runs
// for any type with ToStringField members, marked or not.
func NewToString() *Aggregator {
	return &Aggregator{
		name:    "tostring",
		class:   marker.ToString,
		field:   marker.ToStringField,
		onlyOne: true,
		fn:      genToString,
	}
}

// NewHash returns the aggregator of HashCode.
func NewHash() *Aggregator {
	return &Aggregator{
		name:    "hash",
		class:   marker.Hash,
		field:   marker.HashField,
		enforce: true,
		onlyOne: true,
		fn:      genHash,
	}
}

// NewEquals returns the aggregator of Equals.
func NewEquals() *Aggregator {
	return &Aggregator{
		name:    "equals",
		class:   marker.Equals,
		field:   marker.EqualsField,
		enforce: true,
		onlyOne: true,
		fn:      genEquals,
	}
}

// Name implements gen.Component.
func (a *Aggregator) Name() string { return a.name }

// ClassKind implements gen.Aggregator.
func (a *Aggregator) ClassKind() marker.Kind { return a.class }

// FieldKind implements gen.Aggregator.
func (a *Aggregator) FieldKind() marker.Kind { return a.field }

// Enforce implements gen.Aggregator.
func (a *Aggregator) Enforce() bool { return a.enforce }

// OnlyOne implements gen.Aggregator.
func (a *Aggregator) OnlyOne() bool { return a.onlyOne }

// Aggregate implements gen.Aggregator.
func (a *Aggregator) Aggregate(ac *gen.AggregateContext) (*gen.Output, error) {
	return a.fn(ac)
}

// base returns the embedded base field named by the class marker, or nil
// when the marker does not ask for one.
func base(ac *gen.AggregateContext) (*gen.Fact, error) {
	name, ok := ac.HasBase()
	if !ok {
		return nil, nil
	}
	for _, f := range ac.Facts {
		if !f.Field() || f.Synthesized {
			continue
		}
		if (name == "" && f.Embedded) || (name != "" && f.Name == name) {
			return f, nil
		}
	}
	if name == "" {
		return nil, fmt.Errorf("%s has no embedded base type", ac.Name())
	}
	return nil, fmt.Errorf("%s has no base field %s", ac.Name(), name)
}

// instance returns the selected fields that belong to a value, dropping
// package-level statics.
func instance(fs []gen.AggregateField) []gen.AggregateField {
	var out []gen.AggregateField
	for _, f := range fs {
		if !f.Fact.Static {
			out = append(out, f)
		}
	}
	return out
}

// pointer reports whether the base field f is an embedded pointer.
func pointer(f *gen.Fact) bool {
	_, ok := f.Expr.(*ast.StarExpr)
	return ok
}

func access(ac *gen.AggregateContext, f *gen.Fact) *jen.Statement {
	return gen.FieldContext{TypeContext: ac.TypeContext, Fact: f}.Field()
}

// other renders the access to f on the value compared against.
func other(f *gen.Fact) *jen.Statement {
	return gen.FieldContext{TypeContext: &gen.TypeContext{Receiver: "o"}, Fact: f}.Field()
}

// assertion returns the compile-time check that the type implements iface,
// or nil when assertions are disabled or the type is generic.
func assertion(ac *gen.AggregateContext, iface jen.Code) *gen.Member {
	if !ac.Config.FeatureEnabled(gen.FeatureAssertions.Name) || len(ac.Decl.TypeParams) > 0 {
		return nil
	}
	return &gen.Member{
		Name: "_",
		Code: jen.Var().Id("_").Add(iface).Op("=").Parens(jen.Op("*").Id(ac.Name())).Parens(jen.Nil()),
		Pos:  ac.Decl.Pos,
	}
}

// genToString emits ToFieldString and String.
func genToString(ac *gen.AggregateContext) (*gen.Output, error) {
	b, err := base(ac)
	if err != nil {
		return nil, err
	}
	var parts []jen.Code
	switch {
	case b == nil:
	case pointer(b):
		parts = append(parts, ac.Runtime("BaseFieldString").Call(access(ac, b)))
	default:
		parts = append(parts, access(ac, b).Dot("ToFieldString").Call())
	}
	for _, f := range ac.Fields {
		parts = append(parts, jen.Qual("fmt", "Sprintf").Call(jen.Lit(f.Label()+"=%v"), access(ac, f.Fact)))
	}
	out := gen.Members(
		&gen.Member{
			Name: "ToFieldString",
			Doc:  ac.Doc("ToFieldString returns the comma separated name=value pairs of the %s fields.", ac.Name()),
			Code: ac.Method("ToFieldString").Params().String().Block(
				jen.Return(ac.Runtime("JoinFields").Call(parts...)),
			),
			Pos: ac.Decl.Pos,
		},
		&gen.Member{
			Name: "String",
			Doc:  ac.Doc("String implements fmt.Stringer."),
			Code: ac.Method("String").Params().String().Block(
				jen.Return(jen.Lit(ac.Name() + "{").Op("+").Add(ac.Recv()).Dot("ToFieldString").Call().Op("+").Lit("}")),
			),
			Pos: ac.Decl.Pos,
		},
	)
	if m := assertion(ac, jen.Qual("fmt", "Stringer")); m != nil {
		out.Compilation = append(out.Compilation, m)
	}
	return out, nil
}

// hashOf renders the hash of one field. Hash requires a comparable type
// known to the resolver; anything else goes through HashOrZero.
func hashOf(ac *gen.AggregateContext, f gen.AggregateField) *jen.Statement {
	t := f.Type
	if t != nil && t.Known && t.Comparable && !t.Nillable {
		return ac.Runtime("Hash").Call(access(ac, f.Fact))
	}
	return ac.Runtime("HashOrZero").Call(access(ac, f.Fact))
}

// genHash emits HashCode.
func genHash(ac *gen.AggregateContext) (*gen.Output, error) {
	b, err := base(ac)
	if err != nil {
		return nil, err
	}
	seed := jen.Lit(17)
	switch {
	case b == nil:
	case pointer(b):
		seed = ac.Runtime("HashOrZero").Call(access(ac, b))
	default:
		seed = access(ac, b).Dot("HashCode").Call()
	}
	body := []jen.Code{jen.Id("h").Op(":=").Add(seed)}
	for _, f := range instance(ac.Fields) {
		body = append(body, jen.Id("h").Op("=").Id("h").Op("*").Lit(23).Op("+").Add(hashOf(ac, f)))
	}
	body = append(body, jen.Return(jen.Id("h")))
	out := gen.Members(&gen.Member{
		Name: "HashCode",
		Doc:  ac.Doc("HashCode returns a hash of the %s fields compared by Equals.", ac.Name()),
		Code: ac.Method("HashCode").Params().Int().Block(body...),
		Pos:  ac.Decl.Pos,
	})
	if m := assertion(ac, ac.Runtime("Hasher")); m != nil {
		out.Compilation = append(out.Compilation, m)
	}
	return out, nil
}

// genEquals emits Equals(other any) bool, accepting both *T and T.
func genEquals(ac *gen.AggregateContext) (*gen.Output, error) {
	b, err := base(ac)
	if err != nil {
		return nil, err
	}
	o := jen.Id("o")
	var conds []jen.Code
	if b != nil {
		arg := jen.Op("&").Add(other(b))
		if pointer(b) {
			arg = other(b)
		}
		conds = append(conds, access(ac, b).Dot("Equals").Call(arg))
	}
	for _, f := range instance(ac.Fields) {
		conds = append(conds, equal(f.Type, access(ac, f.Fact), other(f.Fact)))
	}
	result := jen.True()
	for i, c := range conds {
		if i == 0 {
			result = jen.Add(c)
			continue
		}
		result = result.Op("&&").Line().Add(c)
	}
	body := []jen.Code{
		jen.Var().Add(o).Add(ac.Ptr()),
		jen.Switch(jen.Id("value").Op(":=").Id("other").Assert(jen.Type())).Block(
			jen.Case(ac.Ptr()).Block(o.Clone().Op("=").Id("value")),
			jen.Case(ac.Self()).Block(o.Clone().Op("=").Op("&").Id("value")),
			jen.Default().Block(jen.Return(jen.False())),
		),
		jen.If(ac.Recv().Op("==").Add(o)).Block(jen.Return(jen.True())),
		jen.If(ac.Recv().Op("==").Nil().Op("||").Add(o).Op("==").Nil()).Block(jen.Return(jen.False())),
		jen.Return(result),
	}
	return gen.Members(&gen.Member{
		Name: "Equals",
		Doc:  ac.Doc("Equals reports whether other is a %[1]s or *%[1]s with equal fields.", ac.Name()),
		Code: ac.Method("Equals").Params(jen.Id("other").Id("any")).Bool().Block(body...),
		Pos:  ac.Decl.Pos,
	}), nil
}
