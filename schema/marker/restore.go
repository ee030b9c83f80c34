package marker

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownKind is returned by Restore for a directive name with no
// registered parse function.
var ErrUnknownKind = errors.New("veneer: unknown marker")

// ParseFunc builds a marker of the given kind from its arguments.
type ParseFunc func(kind Kind, b Bag) Marker

var (
	mu       sync.RWMutex
	registry = map[Kind]ParseFunc{}
)

func init() {
	for _, k := range []Kind{Get, Set, Open, Count} {
		registry[k] = restoreAccessor
	}
	for _, k := range []Kind{Index, Add, Remove, Contain, For} {
		registry[k] = restoreList
	}
	for _, k := range []Kind{Put, GetIn, RemoveKey, RemoveValue, ContainKey, ContainValue, ForKey, ForValue, ForAll} {
		registry[k] = restoreMap
	}
	for _, k := range []Kind{ToString, Hash, Equals} {
		registry[k] = restoreAggregate
	}
	for _, k := range []Kind{ToStringField, HashField, EqualsField} {
		registry[k] = restoreAggregateField
	}
	registry[Generate] = func(_ Kind, b Bag) Marker {
		return GenerateType{In: b.String("in", "parent", "arg0")}
	}
	registry[Freeze] = func(_ Kind, b Bag) Marker {
		return FreezeScaffold{Field: b.String("field", "arg0")}
	}
	registry[Template] = restoreTemplate
	registry[Static] = func(_ Kind, b Bag) Marker {
		return StaticMember{Of: b.String("of", "owner", "arg0")}
	}
}

// Register adds or replaces the parse function of a kind.
func Register(kind Kind, fn ParseFunc) {
	mu.Lock()
	defer mu.Unlock()
	registry[kind] = fn
}

// Known reports whether kind has a parse function.
func Known(kind Kind) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := registry[kind]
	return ok
}

// Kinds returns the registered kinds in sorted order.
func Kinds() []Kind {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Restore builds the typed marker for kind. Missing keys take their
// defaults and unrecognised keys are ignored.
func Restore(kind Kind, b Bag) (Marker, error) {
	mu.RLock()
	fn, ok := registry[kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	if b == nil {
		b = Bag{}
	}
	return fn(kind, b), nil
}

func restoreAccessor(kind Kind, b Bag) Marker {
	return Accessor{
		Base: restoreBase(b),
		Type: b.String("type", "valueType", "arg0"),
		kind: kind,
	}
}

func restoreList(kind Kind, b Bag) Marker {
	return List{
		Base:        restoreBase(b),
		ElementType: b.String("elementType", "type"),
		UseYield:    b.Bool("useIteratorProtocol", "useYield"),
		kind:        kind,
	}
}

func restoreMap(kind Kind, b Bag) Marker {
	return Map{
		Base:      restoreBase(b),
		KeyType:   b.String("keyType"),
		ValueType: b.String("valueType"),
		UseYield:  b.Bool("useIteratorProtocol", "useYield"),
		kind:      kind,
	}
}

func restoreAggregate(kind Kind, b Bag) Marker {
	return Aggregate{
		HasBase:  b.Bool("hasBase"),
		BaseName: b.String("base"),
		kind:     kind,
	}
}

func restoreAggregateField(kind Kind, b Bag) Marker {
	return AggregateField{Name: b.String("name"), kind: kind}
}

func restoreTemplate(_ Kind, b Bag) Marker {
	t := TemplateText{
		Text: b.String("text", "template", "arg0"),
		Name: b.String("name"),
	}
	place := b.String("place", "placement", "scope")
	if p, ok := ParsePlacement(place); ok {
		t.Place = p
	} else {
		t.BadPlace = place
	}
	return t
}
