package synth

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/veneer/compiler/gen"
	"github.com/syssam/veneer/schema/marker"
)

// Freeze emits the freeze scaffold of a type: IsFrozen, Frozen and
// ValidateNonFrozen over a FrozenTags field of the runtime package.
type Freeze struct{}

// Name implements gen.Component.
func (*Freeze) Name() string { return "freeze" }

// Kind implements gen.TypeComponent.
func (*Freeze) Kind() marker.Kind { return marker.Freeze }

// GenerateType implements gen.TypeComponent.
func (*Freeze) GenerateType(tc *gen.TypeContext, m marker.Marker) (*gen.Output, error) {
	fm, _ := m.(marker.FreezeScaffold)
	field, err := frozenField(tc, fm.Field)
	if err != nil {
		return nil, err
	}
	tags := tc.Recv().Dot(field)
	tag := jen.Id("tag").String()
	return gen.Members(
		&gen.Member{
			Name: "IsFrozen",
			Doc:  tc.Doc("IsFrozen reports whether tag has been frozen."),
			Code: tc.Method("IsFrozen").Params(tag).Bool().Block(
				jen.Return(tags.Clone().Dot("IsFrozen").Call(jen.Id("tag"))),
			),
			Pos: tc.Decl.Pos,
		},
		&gen.Member{
			Name: "Frozen",
			Doc:  tc.Doc("Frozen freezes tag. Members guarded by tag panic from now on."),
			Code: tc.Method("Frozen").Params(tag).Block(
				tags.Clone().Dot("Freeze").Call(jen.Id("tag")),
			),
			Pos: tc.Decl.Pos,
		},
		&gen.Member{
			Name: "ValidateNonFrozen",
			Doc:  tc.Doc("ValidateNonFrozen panics with a *FrozenError when tag is frozen."),
			Code: tc.Method("ValidateNonFrozen").Params(tag).Block(
				jen.If(
					jen.Err().Op(":=").Add(tags.Clone()).Dot("Validate").Call(jen.Lit(tc.Name()), jen.Id("tag")),
					jen.Err().Op("!=").Nil(),
				).Block(jen.Panic(jen.Err())),
			),
			Pos: tc.Decl.Pos,
		},
	), nil
}

// frozenField returns the name of the field holding the frozen tags: the
// named field, or the first field of type FrozenTags.
func frozenField(tc *gen.TypeContext, name string) (string, error) {
	for _, f := range tc.Facts {
		if !f.Field() || (name != "" && f.Name != name) {
			continue
		}
		t := tc.Describer(f.Imports).Describe(f.Expr)
		if t != nil && t.Kind == gen.KindNamed && t.Name == "FrozenTags" && t.PkgPath == tc.Config.Runtime() {
			return f.Name, nil
		}
		if name != "" {
			return "", fmt.Errorf("field %s of %s is not a %s.FrozenTags", name, tc.Name(), tc.Config.Runtime())
		}
	}
	if name != "" {
		return "", fmt.Errorf("%s has no field %s", tc.Name(), name)
	}
	return "", fmt.Errorf("%s has no %s.FrozenTags field", tc.Name(), tc.Config.Runtime())
}
