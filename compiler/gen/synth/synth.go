package synth

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/veneer/compiler/gen"
	"github.com/syssam/veneer/schema/marker"
)

// Components returns the default components in registration order: type
// components, member components, then aggregators.
func Components() []gen.Component {
	cs := []gen.Component{
		&Freeze{},
		&Template{},
	}
	for _, c := range members {
		cs = append(cs, c)
	}
	return append(cs,
		NewToString(),
		NewHash(),
		NewEquals(),
	)
}

// Registry returns a registry of the default components.
func Registry() (*gen.Registry, error) {
	return gen.NewRegistry(Components()...)
}

var members = []*member{
	{kind: marker.Get, fn: genGet},
	{kind: marker.Set, fn: genSet},
	{kind: marker.Open, fn: genOpen},
	{kind: marker.Count, fn: genCount},
	{kind: marker.Index, fn: genIndex},
	{kind: marker.Add, fn: genAdd},
	{kind: marker.Remove, fn: genRemove},
	{kind: marker.Contain, fn: genContain},
	{kind: marker.For, fn: genFor},
	{kind: marker.Put, fn: genPut},
	{kind: marker.GetIn, fn: genGetIn},
	{kind: marker.RemoveKey, fn: genRemoveKey},
	{kind: marker.RemoveValue, fn: genRemoveValue},
	{kind: marker.ContainKey, fn: genContainKey},
	{kind: marker.ContainValue, fn: genContainValue},
	{kind: marker.ForKey, fn: genForKey},
	{kind: marker.ForValue, fn: genForValue},
	{kind: marker.ForAll, fn: genForAll},
}

// member is a member component backed by a generate function.
type member struct {
	kind marker.Kind
	fn   func(*gen.MemberContext) (*gen.Output, error)
}

// Name implements gen.Component. It is the lowercased marker kind.
func (c *member) Name() string { return strings.ToLower(string(c.kind)) }

// Kind implements gen.MemberComponent.
func (c *member) Kind() marker.Kind { return c.kind }

// Generate implements gen.MemberComponent. Members without a written type,
// such as methods without results or untyped vars, are skipped.
func (c *member) Generate(mc *gen.MemberContext) (*gen.Output, error) {
	if mc.Type == nil {
		return nil, gen.Skip(mc.Fact.Name + " has no declared type")
	}
	return c.fn(mc)
}

// method assembles one generated method of the type of mc.
type method struct {
	mc     *gen.MemberContext
	name   string
	doc    string
	params []jen.Code
	result jen.Code
	body   []jen.Code
	// mutator methods return the receiver when the marker asks to chain.
	mutator bool
	// types are the descriptors used in the signature and body.
	types []*gen.TypeDescriptor
}

func (m *method) output() *gen.Output {
	body := guard(m.mc)
	body = append(body, m.body...)
	result := m.result
	if m.mutator && m.mc.Base().Chain {
		result = m.mc.Ptr()
		body = append(body, jen.Return(m.mc.Recv()))
	}
	sig := m.mc.Method(m.name).Params(m.params...)
	if result != nil {
		sig = sig.Add(result)
	}
	return gen.Members(&gen.Member{
		Name:    m.name,
		Doc:     m.doc,
		Code:    sig.Block(body...),
		Imports: imports(m.types...),
		Pos:     m.mc.Annotation.Pos,
	})
}

// guard returns the freeze check that opens a guarded member.
func guard(mc *gen.MemberContext) []jen.Code {
	tag := mc.Base().FreezeTag
	if tag == "" {
		return nil
	}
	return []jen.Code{mc.Recv().Dot("ValidateNonFrozen").Call(jen.Lit(tag))}
}

// nonNil returns the nil check of param when the marker requires one and the
// type can hold nil.
func nonNil(mc *gen.MemberContext, name, param string, t *gen.TypeDescriptor) []jen.Code {
	if !mc.Base().RequireNonNull || t == nil || !t.Nillable {
		return nil
	}
	return []jen.Code{
		jen.If(jen.Id(param).Op("==").Nil()).Block(
			jen.Panic(mc.Runtime("NewNilArgumentError").Call(
				jen.Lit(mc.Name()+"."+name),
				jen.Lit(param),
			)),
		),
	}
}

// equal renders the equality test of a and b for values of type t.
func equal(t *gen.TypeDescriptor, a, b jen.Code) *jen.Statement {
	if t != nil && t.Comparable {
		return jen.Add(a).Op("==").Add(b)
	}
	return jen.Qual("reflect", "DeepEqual").Call(a, b)
}

// lazy reports whether a collection marker asks for an iter.Seq result and
// the iterators feature allows it.
func lazy(mc *gen.MemberContext, useYield bool) bool {
	return useYield && mc.Config.FeatureEnabled(gen.FeatureIterators.Name)
}

// override resolves an explicit type override. It returns nil without error
// when text is empty.
func override(mc *gen.MemberContext, text string) (*gen.TypeDescriptor, error) {
	if text == "" {
		return nil, nil
	}
	t := mc.Override(text)
	if t == nil {
		return nil, fmt.Errorf("%w: override %q", gen.ErrUnresolvedType, text)
	}
	return t, nil
}

func imports(ts ...*gen.TypeDescriptor) map[string]string {
	var out map[string]string
	for _, t := range ts {
		for path, name := range t.Imports() {
			if out == nil {
				out = map[string]string{}
			}
			out[path] = name
		}
	}
	return out
}

// fieldName returns the cased member name used in generated method names.
func fieldName(mc *gen.MemberContext) string {
	return gen.Pascal(mc.Fact.Name)
}
