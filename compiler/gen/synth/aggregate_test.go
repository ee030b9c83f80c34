package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veneer/compiler/gen"
)

const aggregateSource = `package demo

//veneer:Generate
//veneer:Equals
//veneer:Hash
//veneer:ToString
type Point struct {
	//veneer:EqualsField
	//veneer:HashField
	//veneer:ToStringField(name = "X")
	x int
	//veneer:EqualsField
	//veneer:HashField
	//veneer:ToStringField
	tags []string
}

//veneer:HashField
func (p *Point) Scaled(f int) int { return p.x * f }

//veneer:Generate
//veneer:Equals(hasBase = true)
//veneer:Hash(hasBase = true)
//veneer:ToString(hasBase = true)
type Derived struct {
	Point
	//veneer:EqualsField
	//veneer:HashField
	//veneer:ToStringField
	y int
}
`

func TestEquals(t *testing.T) {
	u, _ := generate(t, aggregateSource, "Point")
	src := render(t, u)
	for _, w := range []string{
		"func (p *Point) Equals(other any) bool {",
		"var o *Point",
		"switch value := other.(type) {",
		"case *Point:",
		"o = value",
		"case Point:",
		"o = &value",
		"if p == o {",
		"if p == nil || o == nil {",
		"p.x == o.x &&",
		"reflect.DeepEqual(p.tags, o.tags)",
	} {
		assert.Contains(t, src, w)
	}
}

func TestHash(t *testing.T) {
	u, report := generate(t, aggregateSource, "Point")
	src := render(t, u)
	assert.Contains(t, src, "func (p *Point) HashCode() int {")
	assert.Contains(t, src, "h := 17")
	assert.Contains(t, src, "h = h*23 + veneer.Hash(p.x)")
	assert.Contains(t, src, "h = h*23 + veneer.HashOrZero(p.tags)")
	assert.NotContains(t, src, "Scaled")

	e, ok := outcome(report, "Scaled", "hash")
	require.True(t, ok)
	assert.Equal(t, gen.Skipped, e.Outcome)
}

func TestToString(t *testing.T) {
	u, _ := generate(t, aggregateSource, "Point")
	src := render(t, u)
	assert.Contains(t, src, `return veneer.JoinFields(fmt.Sprintf("X=%v", p.x), fmt.Sprintf("tags=%v", p.tags))`)
	assert.Contains(t, src, `return "Point{" + p.ToFieldString() + "}"`)
}

func TestAggregateBase(t *testing.T) {
	u, _ := generate(t, aggregateSource, "Derived")
	src := render(t, u)
	assert.Contains(t, src, "d.Point.Equals(&o.Point) &&")
	assert.Contains(t, src, "d.y == o.y")
	assert.Contains(t, src, "h := d.Point.HashCode()\n\th = h*23 + veneer.Hash(d.y)")
	assert.NotContains(t, src, "h := 17")
	assert.Contains(t, src, `veneer.JoinFields(d.Point.ToFieldString(), fmt.Sprintf("y=%v", d.y))`)
}

func TestAggregatePointerBase(t *testing.T) {
	const src = `package demo

//veneer:Generate
//veneer:Equals
//veneer:Hash
//veneer:ToString
type Point struct {
	//veneer:EqualsField
	//veneer:HashField
	//veneer:ToStringField
	x int
}

//veneer:Generate
//veneer:Equals(hasBase = true)
//veneer:Hash(hasBase = true)
//veneer:ToString(hasBase = true)
type Labeled struct {
	*Point
	//veneer:EqualsField
	//veneer:HashField
	//veneer:ToStringField
	label string
}
`
	u, _ := generate(t, src, "Labeled")
	out := render(t, u)

	t.Run("hash", func(t *testing.T) {
		assert.Contains(t, out, "h := veneer.HashOrZero(l.Point)")
		assert.NotContains(t, out, "l.Point.HashCode()")
	})
	t.Run("to string", func(t *testing.T) {
		assert.Contains(t, out, `veneer.JoinFields(veneer.BaseFieldString(l.Point), fmt.Sprintf("label=%v", l.label))`)
		assert.NotContains(t, out, "l.Point.ToFieldString()")
	})
	t.Run("equals", func(t *testing.T) {
		assert.Contains(t, out, "l.Point.Equals(o.Point) &&")
	})
}

func TestAggregateEnforce(t *testing.T) {
	const src = `package demo

//veneer:Generate
type Loose struct {
	//veneer:HashField
	//veneer:EqualsField
	//veneer:ToStringField
	n int
}
`
	u, report := generate(t, src, "Loose")
	assert.Equal(t, []string{"ToFieldString", "String"}, names(u))
	for _, c := range []string{"hash", "equals"} {
		e, ok := outcome(report, "", c)
		require.True(t, ok, c)
		assert.Equal(t, gen.Skipped, e.Outcome, c)
	}
}

func TestAggregateMissingBase(t *testing.T) {
	const src = `package demo

//veneer:Generate
//veneer:Equals(hasBase = true)
type Flat struct {
	//veneer:EqualsField
	n int
}
`
	res := run(t, src)
	assert.Empty(t, res.Units)
	require.Len(t, res.Report.Diagnostics(), 1)
	assert.Equal(t, gen.CodeComponentFailure, res.Report.Diagnostics()[0].Code)
}

func TestAggregateAssertions(t *testing.T) {
	u, _ := generate(t, aggregateSource, "Point", gen.WithFeatures(gen.FeatureAssertions))
	src := render(t, u)
	assert.Contains(t, src, "var _ fmt.Stringer = (*Point)(nil)")
	assert.Contains(t, src, "var _ veneer.Hasher = (*Point)(nil)")
}
