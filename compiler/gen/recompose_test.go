package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/veneer/compiler/load"
	"github.com/syssam/veneer/schema/marker"
)

func TestPlace(t *testing.T) {
	up := &Member{Name: "up"}

	t.Run("top level goes to the package", func(t *testing.T) {
		out := &Output{Namespace: []*Member{{Name: "ns"}}}
		out.Add(marker.PlaceParent, up)
		place(&TypeContext{}, out)
		assert.Empty(t, out.Parent)
		assert.Equal(t, []string{"ns", "up"}, memberNames(out.Namespace))
	})

	t.Run("nested stays for the parent", func(t *testing.T) {
		out := &Output{}
		out.Add(marker.PlaceParent, up)
		place(&TypeContext{Parent: &TypeContext{}}, out)
		assert.Equal(t, []string{"up"}, memberNames(out.Parent))

		parent := &Output{Type: []*Member{{Name: "own"}}}
		out.Add(marker.PlaceCompilation, &Member{Name: "c"})
		fold(parent, out)
		assert.Equal(t, []string{"own", "up"}, memberNames(parent.Type))
		assert.Equal(t, []string{"c"}, memberNames(parent.Compilation))
	})
}

func TestFragmentDedupe(t *testing.T) {
	tc := &TypeContext{
		Package: &load.Package{},
		Decl:    &load.TypeDecl{Name: "Demo"},
		Report:  &Report{},
		Facts: []*Fact{
			{Name: "name"},
			{Name: "Label", Method: true},
			{Name: "counter", Static: true},
		},
	}
	f := fragment(tc, []*Member{
		{Name: "GetName", Origin: "get"},
		{Name: "Label", Origin: "template"},
		{Name: "counter", Origin: "template"},
		{Name: "GetName", Origin: "get"},
		{Origin: "template"},
	})
	assert.Equal(t, []string{"GetName", "counter", ""}, memberNames(f.Members))
	assert.Equal(t, []string{CodeDuplicateMember, CodeDuplicateMember}, codes(tc.Report.Diagnostics()))

	seen := map[string]string{}
	ms := dedupe(tc, seen, []*Member{{Name: "_"}, {Name: "_"}, {Name: "X"}})
	ms = append(ms, dedupe(tc, seen, []*Member{{Name: "X"}})...)
	assert.Equal(t, []string{"_", "_", "X"}, memberNames(ms))
}

func TestOutputAdd(t *testing.T) {
	out := &Output{}
	for _, p := range []marker.Placement{marker.PlaceType, marker.PlaceParent, marker.PlaceNamespace, marker.PlaceCompilation} {
		out.Add(p, &Member{Name: p.String()})
	}
	assert.Equal(t, 4, out.Len())
	assert.Equal(t, []string{"type"}, memberNames(out.Type))
	assert.Equal(t, []string{"compilation"}, memberNames(out.Compilation))

	merged := &Output{}
	merged.Merge(out)
	merged.Merge(nil)
	assert.Equal(t, 4, merged.Len())
	assert.Equal(t, 0, (*Output)(nil).Len())
}
