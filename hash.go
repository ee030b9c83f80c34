package veneer

import (
	"encoding/binary"
	"hash/maphash"
	"math"
	"reflect"
	"strings"
)

// seed is shared by every hash of the process so equal values hash equally.
var seed = maphash.MakeSeed()

// Hasher is implemented by types with a generated HashCode member.
type Hasher interface {
	HashCode() int
}

// Hash returns the hash of a comparable value. A value implementing Hasher
// contributes its own HashCode.
func Hash[T comparable](v T) int {
	if h, ok := any(v).(Hasher); ok && !isNil(h) {
		return h.HashCode()
	}
	return int(maphash.Comparable(seed, v))
}

// HashOrZero returns 0 for nil, the HashCode of a Hasher, and otherwise a
// hash of the value that agrees with reflect.DeepEqual: pointers and
// interfaces hash what they point to, maps hash independently of iteration
// order and cycles hash as zero.
func HashOrZero(v any) int {
	if v == nil || isNil(v) {
		return 0
	}
	if h, ok := v.(Hasher); ok {
		return h.HashCode()
	}
	d := deepHasher{visited: make(map[visit]bool)}
	return int(d.sum(reflect.ValueOf(v)))
}

type visit struct {
	ptr uintptr
	typ reflect.Type
}

type deepHasher struct {
	visited map[visit]bool
}

func (d deepHasher) sum(v reflect.Value) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	d.write(&h, v)
	return h.Sum64()
}

func (d deepHasher) write(h *maphash.Hash, v reflect.Value) {
	if !v.IsValid() {
		writeUint(h, 0)
		return
	}
	if v.CanInterface() && !nilValue(v) {
		if hs, ok := v.Interface().(Hasher); ok {
			writeUint(h, uint64(hs.HashCode()))
			return
		}
	}
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			writeUint(h, 1)
		} else {
			writeUint(h, 0)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		writeUint(h, uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		writeUint(h, v.Uint())
	case reflect.Float32, reflect.Float64:
		writeFloat(h, v.Float())
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		writeFloat(h, real(c))
		writeFloat(h, imag(c))
	case reflect.String:
		h.WriteString(v.String())
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			writeUint(h, 0)
			return
		}
		if v.Kind() == reflect.Pointer {
			if !d.enter(v) {
				writeUint(h, 0)
				return
			}
			defer d.leave(v)
		}
		writeUint(h, 1)
		d.write(h, v.Elem())
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Len() > 0 {
			if !d.enter(v) {
				writeUint(h, 0)
				return
			}
			defer d.leave(v)
		}
		writeUint(h, uint64(v.Len()))
		for i := range v.Len() {
			d.write(h, v.Index(i))
		}
	case reflect.Map:
		if !d.enter(v) {
			writeUint(h, 0)
			return
		}
		defer d.leave(v)
		var entries uint64
		for it := v.MapRange(); it.Next(); {
			entries += d.sum(it.Key())*31 + d.sum(it.Value())
		}
		writeUint(h, uint64(v.Len()))
		writeUint(h, entries)
	case reflect.Struct:
		for i := range v.NumField() {
			d.write(h, v.Field(i))
		}
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		writeUint(h, uint64(v.Pointer()))
	}
}

// enter marks the reference v as on the current path. It reports false when
// v is already there.
func (d deepHasher) enter(v reflect.Value) bool {
	k := visit{ptr: v.Pointer(), typ: v.Type()}
	if d.visited[k] {
		return false
	}
	d.visited[k] = true
	return true
}

func (d deepHasher) leave(v reflect.Value) {
	delete(d.visited, visit{ptr: v.Pointer(), typ: v.Type()})
}

func writeUint(h *maphash.Hash, x uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], x)
	h.Write(b[:])
}

// writeFloat writes f so that 0 and -0 hash alike.
func writeFloat(h *maphash.Hash, f float64) {
	if f == 0 {
		f = 0
	}
	writeUint(h, math.Float64bits(f))
}

func nilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

func isNil(v any) bool {
	return nilValue(reflect.ValueOf(v))
}

// FieldStringer is implemented by types with a generated ToFieldString
// member.
type FieldStringer interface {
	ToFieldString() string
}

// BaseFieldString returns the ToFieldString of an embedded base, or "" when
// the base is a nil pointer.
func BaseFieldString(b FieldStringer) string {
	if b == nil || isNil(b) {
		return ""
	}
	return b.ToFieldString()
}

// JoinFields joins rendered name=value pairs the way generated String
// members do. Empty parts are dropped.
func JoinFields(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
