package marker

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Bag holds the evaluated arguments of a directive. Values are one of
// string, bool, int64 or float64.
type Bag map[string]any

// lookup finds key ignoring case. Exact matches win; among keys that differ
// only by case the smallest in byte order wins.
func (b Bag) lookup(key string) (any, bool) {
	if v, ok := b[key]; ok {
		return v, true
	}
	for _, k := range slices.Sorted(maps.Keys(b)) {
		if strings.EqualFold(k, key) {
			return b[k], true
		}
	}
	return nil, false
}

// Has reports whether any of the keys is present.
func (b Bag) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := b.lookup(k); ok {
			return true
		}
	}
	return false
}

// Bool returns the first present key as a boolean. Absent keys and values
// that are not booleans yield false; the strings "true" and "1" are accepted.
func (b Bag) Bool(keys ...string) bool {
	for _, k := range keys {
		v, ok := b.lookup(k)
		if !ok {
			continue
		}
		switch v := v.(type) {
		case bool:
			return v
		case string:
			parsed, err := strconv.ParseBool(v)
			return err == nil && parsed
		default:
			return false
		}
	}
	return false
}

// String returns the first present key as a string. Non-string scalars are
// formatted; absent keys yield "".
func (b Bag) String(keys ...string) string {
	for _, k := range keys {
		v, ok := b.lookup(k)
		if !ok || v == nil {
			continue
		}
		switch v := v.(type) {
		case string:
			return v
		case bool:
			return strconv.FormatBool(v)
		case int64:
			return strconv.FormatInt(v, 10)
		case float64:
			return strconv.FormatFloat(v, 'g', -1, 64)
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}

// Int returns the first present key as an integer, or def.
func (b Bag) Int(def int64, keys ...string) int64 {
	for _, k := range keys {
		v, ok := b.lookup(k)
		if !ok {
			continue
		}
		switch v := v.(type) {
		case int64:
			return v
		case float64:
			return int64(v)
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n
			}
		}
		return def
	}
	return def
}
