package veneer

import (
	"slices"
	"sync"
)

// FrozenTags is a set of frozen tags. The zero value is an empty set ready
// to use. It is safe for concurrent use and must not be copied after first
// use.
type FrozenTags struct {
	mu   sync.RWMutex
	tags map[string]struct{}
}

// Freeze marks tag as frozen. Freezing a frozen tag is a no-op.
func (f *FrozenTags) Freeze(tag string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tags == nil {
		f.tags = make(map[string]struct{})
	}
	f.tags[tag] = struct{}{}
}

// IsFrozen reports whether tag is frozen.
func (f *FrozenTags) IsFrozen(tag string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.tags[tag]
	return ok
}

// Validate returns a FrozenError naming typ when tag is frozen.
func (f *FrozenTags) Validate(typ, tag string) error {
	if f.IsFrozen(tag) {
		return NewFrozenError(typ, tag)
	}
	return nil
}

// Tags returns the frozen tags in sorted order.
func (f *FrozenTags) Tags() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	tags := make([]string, 0, len(f.tags))
	for t := range f.tags {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags
}
