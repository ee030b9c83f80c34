package synth

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/veneer/compiler/gen"
	"github.com/syssam/veneer/schema/marker"
)

// list resolves the element type of a list marker: the elementType override
// when set, else the first type argument of the member type.
func list(mc *gen.MemberContext) (marker.List, *gen.TypeDescriptor, error) {
	lm, _ := mc.Marker.(marker.List)
	o, err := override(mc, lm.ElementType)
	if err != nil {
		return lm, nil, err
	}
	l, ok := mc.Type.List(o)
	if !ok {
		return lm, nil, gen.Skip("cannot infer the element type of " + mc.Type.String())
	}
	return lm, l.Elem, nil
}

// genIndex emits IndexInX(i int) E.
func genIndex(mc *gen.MemberContext) (*gen.Output, error) {
	_, elem, err := list(mc)
	if err != nil {
		return nil, err
	}
	name := "IndexIn" + fieldName(mc)
	m := &method{
		mc:     mc,
		name:   name,
		doc:    mc.Doc("%s returns the element of %s at position i.", name, mc.Fact.Name),
		params: []jen.Code{jen.Id("i").Int()},
		result: elem.Code(),
		body:   []jen.Code{jen.Return(mc.Field().Index(jen.Id("i")))},
		types:  []*gen.TypeDescriptor{elem},
	}
	return m.output(), nil
}

// genAdd emits AddInX(v E), which appends v.
func genAdd(mc *gen.MemberContext) (*gen.Output, error) {
	if mc.Fact.Method {
		return nil, gen.Skip("methods cannot be assigned")
	}
	_, elem, err := list(mc)
	if err != nil {
		return nil, err
	}
	name := "AddIn" + fieldName(mc)
	body := nonNil(mc, name, "v", elem)
	body = append(body, mc.Field().Op("=").Append(mc.Field(), jen.Id("v")))
	m := &method{
		mc:      mc,
		name:    name,
		doc:     mc.Doc("%s appends v to %s.", name, mc.Fact.Name),
		params:  []jen.Code{jen.Id("v").Add(elem.Code())},
		body:    body,
		mutator: true,
		types:   []*gen.TypeDescriptor{elem},
	}
	return m.output(), nil
}

// indexOf renders the position of the first element of the field equal to v.
func indexOf(mc *gen.MemberContext, elem *gen.TypeDescriptor) *jen.Statement {
	if elem.Comparable {
		return jen.Qual("slices", "Index").Call(mc.Field(), jen.Id("v"))
	}
	return jen.Qual("slices", "IndexFunc").Call(mc.Field(),
		jen.Func().Params(jen.Id("value").Add(elem.Code())).Bool().Block(
			jen.Return(equal(elem, jen.Id("value"), jen.Id("v"))),
		),
	)
}

// genRemove emits RemoveInX(v E), which removes the first element equal
// to v.
func genRemove(mc *gen.MemberContext) (*gen.Output, error) {
	if mc.Fact.Method {
		return nil, gen.Skip("methods cannot be assigned")
	}
	_, elem, err := list(mc)
	if err != nil {
		return nil, err
	}
	name := "RemoveIn" + fieldName(mc)
	body := nonNil(mc, name, "v", elem)
	body = append(body,
		jen.If(jen.Id("i").Op(":=").Add(indexOf(mc, elem)), jen.Id("i").Op(">=").Lit(0)).Block(
			mc.Field().Op("=").Qual("slices", "Delete").Call(mc.Field(), jen.Id("i"), jen.Id("i").Op("+").Lit(1)),
		),
	)
	m := &method{
		mc:      mc,
		name:    name,
		doc:     mc.Doc("%s removes the first element of %s equal to v.", name, mc.Fact.Name),
		params:  []jen.Code{jen.Id("v").Add(elem.Code())},
		body:    body,
		mutator: true,
		types:   []*gen.TypeDescriptor{elem},
	}
	return m.output(), nil
}

// genContain emits ContainInX(v E) bool.
func genContain(mc *gen.MemberContext) (*gen.Output, error) {
	_, elem, err := list(mc)
	if err != nil {
		return nil, err
	}
	name := "ContainIn" + fieldName(mc)
	m := &method{
		mc:     mc,
		name:   name,
		doc:    mc.Doc("%s reports whether %s holds an element equal to v.", name, mc.Fact.Name),
		params: []jen.Code{jen.Id("v").Add(elem.Code())},
		result: jen.Bool(),
		body:   []jen.Code{jen.Return(indexOf(mc, elem).Op(">=").Lit(0))},
		types:  []*gen.TypeDescriptor{elem},
	}
	return m.output(), nil
}

// genFor emits ForX, returning either the live collection or an iter.Seq
// that ranges over the field each time it is iterated.
func genFor(mc *gen.MemberContext) (*gen.Output, error) {
	lm, elem, err := list(mc)
	if err != nil {
		return nil, err
	}
	name := "For" + fieldName(mc)
	m := &method{
		mc:    mc,
		name:  name,
		types: []*gen.TypeDescriptor{mc.Type, elem},
	}
	if !lazy(mc, lm.UseYield) {
		m.doc = mc.Doc("%s returns %s. Changes to the result are visible to the receiver.", name, mc.Fact.Name)
		m.result = mc.Type.Code()
		m.body = []jen.Code{jen.Return(mc.Field())}
		return m.output(), nil
	}
	m.doc = mc.Doc("%s returns a sequence over the elements of %s.", name, mc.Fact.Name)
	m.result = jen.Qual("iter", "Seq").Types(elem.Code())
	m.body = []jen.Code{
		jen.Return(jen.Func().Params(jen.Id("yield").Func().Params(elem.Code()).Bool()).Block(
			jen.For(jen.List(jen.Id("_"), jen.Id("v")).Op(":=").Range().Add(mc.Field())).Block(
				jen.If(jen.Op("!").Id("yield").Call(jen.Id("v"))).Block(jen.Return()),
			),
		)),
	}
	return m.output(), nil
}
