package nibs

import (
	"strconv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ToCanonicalMap converts an untyped map, such as one produced by
// encoding/json, into a Map with its keys sorted and coerced by
// CanonicalKey.  Nested maps of the same type are converted as well.
func ToCanonicalMap(obj map[string]any) (Map, error) {
	keys := maps.Keys(obj)
	slices.Sort(keys)
	m := make(Map, 0, len(keys))
	for _, k := range keys {
		v, err := canonicalValue(obj[k])
		if err != nil {
			return nil, err
		}
		m = append(m, Entry{Key: CanonicalKey(k), Value: v})
	}
	return m, nil
}

func canonicalValue(v any) (Value, error) {
	switch v := v.(type) {
	case map[string]any:
		return ToCanonicalMap(v)
	case []any:
		l := make(List, 0, len(v))
		for _, elem := range v {
			val, err := canonicalValue(elem)
			if err != nil {
				return nil, err
			}
			l = append(l, val)
		}
		return l, nil
	}
	return Marshal(v)
}

// Canonicalize returns m with its String keys coerced by CanonicalKey.  The
// order of entries is unchanged.
func Canonicalize(m Map) Map {
	out := make(Map, len(m))
	for i, e := range m {
		if s, ok := e.Key.(String); ok {
			e.Key = CanonicalKey(string(s))
		}
		out[i] = e
	}
	return out
}

// CanonicalKey returns the Int for a key spelled as a decimal integer, the
// Bool for "true" or "false", and a String otherwise.  Only the canonical
// spelling converts, so "01" and "+1" stay strings.
func CanonicalKey(s string) Value {
	switch s {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return Int(n)
	}
	return String(s)
}
