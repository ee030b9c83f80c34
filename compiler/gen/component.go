package gen

import (
	"fmt"

	"github.com/syssam/veneer/schema/marker"
)

// Component is a pluggable unit of generation. Every component implements
// exactly one phase: MemberComponent or TypeComponent for phase 1,
// Aggregator for phase 2.
type Component interface {
	// Name identifies the component in reports and in Config.Disabled.
	Name() string
}

// MemberComponent generates members for one marker occurrence on one fact.
type MemberComponent interface {
	Component
	Kind() marker.Kind
	Generate(*MemberContext) (*Output, error)
}

// TypeComponent generates members for one type-level marker occurrence.
type TypeComponent interface {
	Component
	Kind() marker.Kind
	GenerateType(*TypeContext, marker.Marker) (*Output, error)
}

// Aggregator generates whole-type members from class-level and field-level
// markers after every phase-1 component has run. Enforce and OnlyOne are a
// declared contract: Enforce requires a class-level marker for the
// aggregator to run at all; OnlyOne honours only the first class-level
// occurrence.
type Aggregator interface {
	Component
	ClassKind() marker.Kind
	FieldKind() marker.Kind
	Enforce() bool
	OnlyOne() bool
	Aggregate(*AggregateContext) (*Output, error)
}

// AggregateField is one field selected by an aggregator's field marker.
type AggregateField struct {
	Fact   *Fact
	Marker marker.AggregateField
	// Type is a fresh descriptor of the field's type.
	Type *TypeDescriptor
}

// Label returns the marker's display name, else the fact name.
func (f AggregateField) Label() string {
	if f.Marker.Name != "" {
		return f.Marker.Name
	}
	return f.Fact.Name
}

// AggregateContext is handed to an aggregator once per type.
type AggregateContext struct {
	*TypeContext
	// Class holds the honoured class-level markers; empty when the
	// aggregator is not enforced and the type carries none.
	Class []marker.Aggregate
	// Fields are the selected fields in declaration order, followed by
	// selected members of earlier components in generation order.
	Fields []AggregateField
}

// HasBase reports whether any honoured class-level marker asks to fold in
// the base type, and returns the base name it names.
func (ac *AggregateContext) HasBase() (string, bool) {
	for _, c := range ac.Class {
		if c.HasBase {
			return c.BaseName, true
		}
	}
	return "", false
}

// Phase returns 1 for member and type components, 2 for aggregators and 0
// for anything else.
func Phase(c Component) int {
	switch c.(type) {
	case Aggregator:
		return 2
	case MemberComponent, TypeComponent:
		return 1
	default:
		return 0
	}
}

// Registry is the ordered list of components of a generator. Phase-1
// components always precede phase-2 components.
type Registry struct {
	components []Component
	names      map[string]bool
}

// NewRegistry returns a registry holding cs, in order.
func NewRegistry(cs ...Component) (*Registry, error) {
	r := &Registry{names: make(map[string]bool)}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error.
func MustNewRegistry(cs ...Component) *Registry {
	r, err := NewRegistry(cs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register appends c.
func (r *Registry) Register(c Component) error {
	if r.names == nil {
		r.names = make(map[string]bool)
	}
	if c == nil {
		return NewConfigError("Components", nil, "component cannot be nil")
	}
	phase := Phase(c)
	switch {
	case phase == 0:
		return NewConfigError("Components", c.Name(), "component implements no phase")
	case r.names[c.Name()]:
		return NewConfigError("Components", c.Name(), "duplicate component name")
	case phase == 1 && len(r.components) > 0 && Phase(r.components[len(r.components)-1]) == 2:
		return NewConfigError("Components", c.Name(), fmt.Sprintf("phase-1 component registered after phase-2 component %s", r.components[len(r.components)-1].Name()))
	}
	if a, ok := c.(Aggregator); ok && a.ClassKind() == a.FieldKind() {
		return NewConfigError("Components", c.Name(), "aggregator class and field kinds must differ")
	}
	r.names[c.Name()] = true
	r.components = append(r.components, c)
	return nil
}

// Components returns the registered components in order.
func (r *Registry) Components() []Component {
	return append([]Component(nil), r.components...)
}

// TypeComponents returns the enabled type components in order.
func (r *Registry) TypeComponents(cfg *Config) []TypeComponent {
	var out []TypeComponent
	for _, c := range r.components {
		if tc, ok := c.(TypeComponent); ok && cfg.ComponentEnabled(c.Name()) {
			out = append(out, tc)
		}
	}
	return out
}

// MemberComponents returns the enabled member components in order.
func (r *Registry) MemberComponents(cfg *Config) []MemberComponent {
	var out []MemberComponent
	for _, c := range r.components {
		if mc, ok := c.(MemberComponent); ok && cfg.ComponentEnabled(c.Name()) {
			out = append(out, mc)
		}
	}
	return out
}

// Aggregators returns the enabled aggregators in order.
func (r *Registry) Aggregators(cfg *Config) []Aggregator {
	var out []Aggregator
	for _, c := range r.components {
		if a, ok := c.(Aggregator); ok && cfg.ComponentEnabled(c.Name()) {
			out = append(out, a)
		}
	}
	return out
}
