package marker

import "strings"

// Kind names a marker. It is the directive name written after the prefix.
type Kind string

// Member markers handled by accessor components.
const (
	Get   Kind = "Get"
	Set   Kind = "Set"
	Open  Kind = "Open"
	Count Kind = "Count"
)

// List markers.
const (
	Index   Kind = "Index"
	Add     Kind = "Add"
	Remove  Kind = "Remove"
	Contain Kind = "Contain"
	For     Kind = "For"
)

// Map markers.
const (
	Put          Kind = "Put"
	GetIn        Kind = "GetIn"
	RemoveKey    Kind = "RemoveKey"
	RemoveValue  Kind = "RemoveValue"
	ContainKey   Kind = "ContainKey"
	ContainValue Kind = "ContainValue"
	ForKey       Kind = "ForKey"
	ForValue     Kind = "ForValue"
	ForAll       Kind = "ForAll"
)

// Type-level markers.
const (
	Generate Kind = "Generate"
	Freeze   Kind = "Freeze"
	Template Kind = "Template"
	Static   Kind = "Static"
)

// Aggregate markers. The class-level kind activates an aggregator, the
// field-level kind selects the members it folds.
const (
	ToString      Kind = "ToString"
	ToStringField Kind = "ToStringField"
	Hash          Kind = "Hash"
	HashField     Kind = "HashField"
	Equals        Kind = "Equals"
	EqualsField   Kind = "EqualsField"
)

// Marker is a restored directive. The implementations in this package are
// the closed set of known markers.
type Marker interface {
	// Kind returns the directive name the marker was restored from.
	Kind() Kind
	marker()
}

// Base is the configuration shared by member markers.
type Base struct {
	// Chain makes a generated mutator return its receiver.
	Chain bool
	// RequireNonNull rejects a nil argument in generated mutators.
	RequireNonNull bool
	// FreezeTag guards the generated member with ValidateNonFrozen(tag).
	FreezeTag string
}

func restoreBase(b Bag) Base {
	return Base{
		Chain:          b.Bool("chain"),
		RequireNonNull: b.Bool("requireNonNull", "nonNull"),
		FreezeTag:      b.String("freezeTag", "freeze"),
	}
}

// Accessor configures Get, Set, Open and Count.
type Accessor struct {
	Base
	// Type overrides the member type used in the generated signature.
	Type string
	kind Kind
}

// Kind implements Marker.
func (a Accessor) Kind() Kind { return a.kind }
func (Accessor) marker()      {}

// List configures the list markers.
type List struct {
	Base
	// ElementType overrides the element type inferred from the member type.
	ElementType string
	// UseYield selects an iter.Seq result for For instead of the live slice.
	UseYield bool
	kind     Kind
}

// Kind implements Marker.
func (l List) Kind() Kind { return l.kind }
func (List) marker()      {}

// Map configures the map markers.
type Map struct {
	Base
	KeyType   string
	ValueType string
	UseYield  bool
	kind      Kind
}

// Kind implements Marker.
func (m Map) Kind() Kind { return m.kind }
func (Map) marker()      {}

// GenerateType is the top-level marker. A type must carry it to be processed.
type GenerateType struct {
	// In names the generated type this type is nested in.
	In string
}

// Kind implements Marker.
func (GenerateType) Kind() Kind { return Generate }
func (GenerateType) marker()    {}

// FreezeScaffold requests IsFrozen, Frozen and ValidateNonFrozen.
type FreezeScaffold struct {
	// Field names the veneer.FrozenTags field holding the frozen tags.
	// Empty means the first field of that type.
	Field string
}

// Kind implements Marker.
func (FreezeScaffold) Kind() Kind { return Freeze }
func (FreezeScaffold) marker()    {}

// Placement selects where a template expansion is spliced.
type Placement int

// Placements, innermost first.
const (
	PlaceType Placement = iota
	PlaceParent
	PlaceNamespace
	PlaceCompilation
)

var placements = map[string]Placement{
	"":            PlaceType,
	"type":        PlaceType,
	"self":        PlaceType,
	"parent":      PlaceParent,
	"up":          PlaceParent,
	"namespace":   PlaceNamespace,
	"package":     PlaceNamespace,
	"compilation": PlaceCompilation,
	"file":        PlaceCompilation,
}

// ParsePlacement maps a place argument to a Placement.
func ParsePlacement(s string) (Placement, bool) {
	p, ok := placements[strings.ToLower(strings.TrimSpace(s))]
	return p, ok
}

// String returns the canonical spelling of p.
func (p Placement) String() string {
	switch p {
	case PlaceType:
		return "type"
	case PlaceParent:
		return "parent"
	case PlaceNamespace:
		return "namespace"
	case PlaceCompilation:
		return "compilation"
	default:
		return "unknown"
	}
}

// TemplateText is a fill-in-the-blanks template.
type TemplateText struct {
	Text  string
	Place Placement
	// Name labels the expansion in diagnostics.
	Name string
	// BadPlace holds an unrecognised place argument.
	BadPlace string
}

// Kind implements Marker.
func (TemplateText) Kind() Kind { return Template }
func (TemplateText) marker()    {}

// StaticMember attaches a package-level var to a generated type.
type StaticMember struct {
	Of string
}

// Kind implements Marker.
func (StaticMember) Kind() Kind { return Static }
func (StaticMember) marker()    {}

// Aggregate is a class-level ToString, Hash or Equals marker.
type Aggregate struct {
	// HasBase folds in the embedded base type's own member.
	HasBase bool
	// BaseName selects the embedded field; empty means the first one.
	BaseName string
	kind     Kind
}

// Kind implements Marker.
func (a Aggregate) Kind() Kind { return a.kind }
func (Aggregate) marker()      {}

// AggregateField is a field-level ToStringField, HashField or EqualsField.
type AggregateField struct {
	// Name overrides the label used by ToString.
	Name string
	kind Kind
}

// Kind implements Marker.
func (a AggregateField) Kind() Kind { return a.kind }
func (AggregateField) marker()      {}

// BaseOf returns the member configuration of m, if it has one.
func BaseOf(m Marker) (Base, bool) {
	switch m := m.(type) {
	case Accessor:
		return m.Base, true
	case List:
		return m.Base, true
	case Map:
		return m.Base, true
	default:
		return Base{}, false
	}
}

var (
	_ Marker = Accessor{}
	_ Marker = List{}
	_ Marker = Map{}
	_ Marker = GenerateType{}
	_ Marker = FreezeScaffold{}
	_ Marker = TemplateText{}
	_ Marker = StaticMember{}
	_ Marker = Aggregate{}
	_ Marker = AggregateField{}
)
