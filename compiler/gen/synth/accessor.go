package synth

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/veneer/compiler/gen"
)

// genGet emits GetX() T.
func genGet(mc *gen.MemberContext) (*gen.Output, error) {
	name := "Get" + fieldName(mc)
	doc := mc.Doc("%s returns the %s field.", name, mc.Fact.Name)
	switch {
	case mc.Fact.Static:
		doc = mc.Doc("%s returns the package-level %s.", name, mc.Fact.Name)
	case mc.Fact.Method:
		doc = mc.Doc("%s returns the result of %s.", name, mc.Fact.Name)
	}
	m := &method{
		mc:     mc,
		name:   name,
		doc:    doc,
		result: mc.Type.Code(),
		body:   []jen.Code{jen.Return(mc.Field())},
		types:  []*gen.TypeDescriptor{mc.Type},
	}
	return m.output(), nil
}

// genSet emits SetX(v T).
func genSet(mc *gen.MemberContext) (*gen.Output, error) {
	if mc.Fact.Method {
		return nil, gen.Skip("methods cannot be assigned")
	}
	name := "Set" + fieldName(mc)
	body := nonNil(mc, name, "v", mc.Type)
	body = append(body, mc.Field().Op("=").Id("v"))
	m := &method{
		mc:      mc,
		name:    name,
		doc:     mc.Doc("%s sets the %s field.", name, mc.Fact.Name),
		params:  []jen.Code{jen.Id("v").Add(mc.Type.Code())},
		body:    body,
		mutator: true,
		types:   []*gen.TypeDescriptor{mc.Type},
	}
	return m.output(), nil
}

// genOpen emits OpenX(action func(T)), which hands the current value to
// action.
func genOpen(mc *gen.MemberContext) (*gen.Output, error) {
	name := "Open" + fieldName(mc)
	m := &method{
		mc:     mc,
		name:   name,
		doc:    mc.Doc("%s calls action with the %s field.", name, mc.Fact.Name),
		params: []jen.Code{jen.Id("action").Func().Params(mc.Type.Code())},
		body:   []jen.Code{jen.Id("action").Call(mc.Field())},
		types:  []*gen.TypeDescriptor{mc.Type},
	}
	return m.output(), nil
}

// genCount emits CountInX() int.
func genCount(mc *gen.MemberContext) (*gen.Output, error) {
	switch mc.Type.Kind {
	case gen.KindPointer, gen.KindFunc:
		return nil, gen.Skip(mc.Type.String() + " has no length")
	}
	name := "CountIn" + fieldName(mc)
	m := &method{
		mc:     mc,
		name:   name,
		doc:    mc.Doc("%s returns the number of elements in %s.", name, mc.Fact.Name),
		result: jen.Int(),
		body:   []jen.Code{jen.Return(jen.Len(mc.Field()))},
	}
	return m.output(), nil
}
