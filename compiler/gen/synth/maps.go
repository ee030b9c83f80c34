package synth

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/veneer/compiler/gen"
	"github.com/syssam/veneer/schema/marker"
)

// dict resolves the key and value types of a map marker. Each override
// replaces the corresponding type argument of the member type.
func dict(mc *gen.MemberContext) (marker.Map, gen.MapDescriptor, error) {
	mm, _ := mc.Marker.(marker.Map)
	k, err := override(mc, mm.KeyType)
	if err != nil {
		return mm, gen.MapDescriptor{}, err
	}
	v, err := override(mc, mm.ValueType)
	if err != nil {
		return mm, gen.MapDescriptor{}, err
	}
	md, ok := mc.Type.Map(k, v)
	if !ok {
		return mm, md, gen.Skip("cannot infer the key and value types of " + mc.Type.String())
	}
	return mm, md, nil
}

// genPut emits PutInX(k K, v V), which inserts or overwrites k and
// allocates a nil map first.
func genPut(mc *gen.MemberContext) (*gen.Output, error) {
	if mc.Fact.Method {
		return nil, gen.Skip("methods cannot be assigned")
	}
	_, md, err := dict(mc)
	if err != nil {
		return nil, err
	}
	name := "PutIn" + fieldName(mc)
	body := nonNil(mc, name, "v", md.Value)
	body = append(body,
		jen.If(mc.Field().Op("==").Nil()).Block(
			mc.Field().Op("=").Make(mc.Type.Code()),
		),
		mc.Field().Index(jen.Id("k")).Op("=").Id("v"),
	)
	m := &method{
		mc:      mc,
		name:    name,
		doc:     mc.Doc("%s maps k to v in %s, replacing any previous value.", name, mc.Fact.Name),
		params:  []jen.Code{jen.Id("k").Add(md.Key.Code()), jen.Id("v").Add(md.Value.Code())},
		body:    body,
		mutator: true,
		types:   []*gen.TypeDescriptor{mc.Type, md.Key, md.Value},
	}
	return m.output(), nil
}

// genGetIn emits GetInX(k K) V, which yields the zero value for an absent
// key.
func genGetIn(mc *gen.MemberContext) (*gen.Output, error) {
	_, md, err := dict(mc)
	if err != nil {
		return nil, err
	}
	name := "GetIn" + fieldName(mc)
	m := &method{
		mc:     mc,
		name:   name,
		doc:    mc.Doc("%s returns the value of k in %s, or the zero value.", name, mc.Fact.Name),
		params: []jen.Code{jen.Id("k").Add(md.Key.Code())},
		result: md.Value.Code(),
		body:   []jen.Code{jen.Return(mc.Field().Index(jen.Id("k")))},
		types:  []*gen.TypeDescriptor{md.Key, md.Value},
	}
	return m.output(), nil
}

// genRemoveKey emits RemoveKeyInX(k K).
func genRemoveKey(mc *gen.MemberContext) (*gen.Output, error) {
	_, md, err := dict(mc)
	if err != nil {
		return nil, err
	}
	name := "RemoveKeyIn" + fieldName(mc)
	m := &method{
		mc:      mc,
		name:    name,
		doc:     mc.Doc("%s removes k from %s.", name, mc.Fact.Name),
		params:  []jen.Code{jen.Id("k").Add(md.Key.Code())},
		body:    []jen.Code{jen.Delete(mc.Field(), jen.Id("k"))},
		mutator: true,
		types:   []*gen.TypeDescriptor{md.Key},
	}
	return m.output(), nil
}

// genRemoveValue emits RemoveValueInX(v V), which removes every entry
// holding v.
func genRemoveValue(mc *gen.MemberContext) (*gen.Output, error) {
	_, md, err := dict(mc)
	if err != nil {
		return nil, err
	}
	name := "RemoveValueIn" + fieldName(mc)
	m := &method{
		mc:     mc,
		name:   name,
		doc:    mc.Doc("%s removes every entry of %s holding v.", name, mc.Fact.Name),
		params: []jen.Code{jen.Id("v").Add(md.Value.Code())},
		body: []jen.Code{
			jen.For(jen.List(jen.Id("key"), jen.Id("value")).Op(":=").Range().Add(mc.Field())).Block(
				jen.If(equal(md.Value, jen.Id("value"), jen.Id("v"))).Block(
					jen.Delete(mc.Field(), jen.Id("key")),
				),
			),
		},
		mutator: true,
		types:   []*gen.TypeDescriptor{md.Value},
	}
	return m.output(), nil
}

// genContainKey emits ContainKeyInX(k K) bool.
func genContainKey(mc *gen.MemberContext) (*gen.Output, error) {
	_, md, err := dict(mc)
	if err != nil {
		return nil, err
	}
	name := "ContainKeyIn" + fieldName(mc)
	m := &method{
		mc:     mc,
		name:   name,
		doc:    mc.Doc("%s reports whether %s holds k.", name, mc.Fact.Name),
		params: []jen.Code{jen.Id("k").Add(md.Key.Code())},
		result: jen.Bool(),
		body: []jen.Code{
			jen.List(jen.Id("_"), jen.Id("ok")).Op(":=").Add(mc.Field()).Index(jen.Id("k")),
			jen.Return(jen.Id("ok")),
		},
		types: []*gen.TypeDescriptor{md.Key},
	}
	return m.output(), nil
}

// genContainValue emits ContainValueInX(v V) bool.
func genContainValue(mc *gen.MemberContext) (*gen.Output, error) {
	_, md, err := dict(mc)
	if err != nil {
		return nil, err
	}
	name := "ContainValueIn" + fieldName(mc)
	m := &method{
		mc:     mc,
		name:   name,
		doc:    mc.Doc("%s reports whether some entry of %s holds v.", name, mc.Fact.Name),
		params: []jen.Code{jen.Id("v").Add(md.Value.Code())},
		result: jen.Bool(),
		body: []jen.Code{
			jen.For(jen.List(jen.Id("_"), jen.Id("value")).Op(":=").Range().Add(mc.Field())).Block(
				jen.If(equal(md.Value, jen.Id("value"), jen.Id("v"))).Block(jen.Return(jen.True())),
			),
			jen.Return(jen.False()),
		},
		types: []*gen.TypeDescriptor{md.Value},
	}
	return m.output(), nil
}

// seq renders a function literal ranging over the field with the given
// range variables and yielding the ones that are not blank.
func seq(mc *gen.MemberContext, yield []jen.Code, vars ...string) *jen.Statement {
	var ranged, yielded []jen.Code
	for _, v := range vars {
		ranged = append(ranged, jen.Id(v))
		if v != "_" {
			yielded = append(yielded, jen.Id(v))
		}
	}
	return jen.Func().Params(jen.Id("yield").Func().Params(yield...).Bool()).Block(
		jen.For(jen.List(ranged...).Op(":=").Range().Add(mc.Field())).Block(
			jen.If(jen.Op("!").Id("yield").Call(yielded...)).Block(jen.Return()),
		),
	)
}

// genForKey emits ForKeyX, returning a slice of the keys or an iter.Seq.
func genForKey(mc *gen.MemberContext) (*gen.Output, error) {
	mm, md, err := dict(mc)
	if err != nil {
		return nil, err
	}
	name := "ForKey" + fieldName(mc)
	m := &method{mc: mc, name: name, types: []*gen.TypeDescriptor{md.Key}}
	if lazy(mc, mm.UseYield) {
		m.doc = mc.Doc("%s returns a sequence over the keys of %s.", name, mc.Fact.Name)
		m.result = jen.Qual("iter", "Seq").Types(md.Key.Code())
		m.body = []jen.Code{jen.Return(seq(mc, []jen.Code{md.Key.Code()}, "k"))}
	} else {
		m.doc = mc.Doc("%s returns the keys of %s in unspecified order.", name, mc.Fact.Name)
		m.result = jen.Index().Add(md.Key.Code())
		m.body = []jen.Code{jen.Return(jen.Qual("slices", "Collect").Call(jen.Qual("maps", "Keys").Call(mc.Field())))}
	}
	return m.output(), nil
}

// genForValue emits ForValueX, returning a slice of the values or an
// iter.Seq.
func genForValue(mc *gen.MemberContext) (*gen.Output, error) {
	mm, md, err := dict(mc)
	if err != nil {
		return nil, err
	}
	name := "ForValue" + fieldName(mc)
	m := &method{mc: mc, name: name, types: []*gen.TypeDescriptor{md.Value}}
	if lazy(mc, mm.UseYield) {
		m.doc = mc.Doc("%s returns a sequence over the values of %s.", name, mc.Fact.Name)
		m.result = jen.Qual("iter", "Seq").Types(md.Value.Code())
		m.body = []jen.Code{jen.Return(seq(mc, []jen.Code{md.Value.Code()}, "_", "v"))}
	} else {
		m.doc = mc.Doc("%s returns the values of %s in unspecified order.", name, mc.Fact.Name)
		m.result = jen.Index().Add(md.Value.Code())
		m.body = []jen.Code{jen.Return(jen.Qual("slices", "Collect").Call(jen.Qual("maps", "Values").Call(mc.Field())))}
	}
	return m.output(), nil
}

// genForAll emits ForAllX, returning the live map or an iter.Seq2.
func genForAll(mc *gen.MemberContext) (*gen.Output, error) {
	mm, md, err := dict(mc)
	if err != nil {
		return nil, err
	}
	name := "ForAll" + fieldName(mc)
	m := &method{mc: mc, name: name, types: []*gen.TypeDescriptor{mc.Type, md.Key, md.Value}}
	if lazy(mc, mm.UseYield) {
		m.doc = mc.Doc("%s returns a sequence over the entries of %s.", name, mc.Fact.Name)
		m.result = jen.Qual("iter", "Seq2").Types(md.Key.Code(), md.Value.Code())
		m.body = []jen.Code{jen.Return(seq(mc, []jen.Code{md.Key.Code(), md.Value.Code()}, "k", "v"))}
	} else {
		m.doc = mc.Doc("%s returns %s. Changes to the result are visible to the receiver.", name, mc.Fact.Name)
		m.result = mc.Type.Code()
		m.body = []jen.Code{jen.Return(mc.Field())}
	}
	return m.output(), nil
}
