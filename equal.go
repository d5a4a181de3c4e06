package nibs

import (
	"bytes"
	"math"
)

// Equal reports whether a and b are the same value.  Lists and arrays
// compare as sequences and maps and tries as ordered mappings, so a decoded
// value equals the value it was encoded from.  Floats compare by their bits,
// so 0 and -0 differ, except that every NaN equals every NaN.  Containers
// reachable through cycles are assumed equal on revisit.
func Equal(a, b Value) (bool, error) {
	c := &comparer{seen: make(map[[2]any]struct{})}
	return c.equal(a, b)
}

type comparer struct {
	seen map[[2]any]struct{}
}

func (c *comparer) equal(a, b Value) (bool, error) {
	if a == nil || b == nil {
		return a == nil && b == nil, nil
	}
	switch a := a.(type) {
	case Int, Bool, Null, Ref, String:
		return Value(a) == b, nil
	case Float:
		f, ok := b.(Float)
		if !ok {
			return false, nil
		}
		if math.IsNaN(float64(a)) {
			return math.IsNaN(float64(f)), nil
		}
		return math.Float64bits(float64(a)) == math.Float64bits(float64(f)), nil
	case Bytes:
		bb, ok := b.(Bytes)
		return ok && bytes.Equal(a, bb), nil
	case *Scope:
		bs, ok := b.(*Scope)
		if !ok || len(a.Refs) != len(bs.Refs) {
			return false, nil
		}
		if eq, err := c.equal(a.Value, bs.Value); !eq || err != nil {
			return false, err
		}
		for i := range a.Refs {
			if eq, err := c.equal(a.Refs[i], bs.Refs[i]); !eq || err != nil {
				return false, err
			}
		}
		return true, nil
	}
	if ida, ok := identity(a); ok {
		if idb, ok := identity(b); ok {
			key := [2]any{ida, idb}
			if _, ok := c.seen[key]; ok {
				return true, nil
			}
			c.seen[key] = struct{}{}
		}
	}
	switch a := a.(type) {
	case Sequence:
		b, ok := b.(Sequence)
		if !ok {
			return false, nil
		}
		return c.sequences(a, b)
	case Mapping:
		b, ok := b.(Mapping)
		if !ok {
			return false, nil
		}
		return c.mappings(a, b)
	}
	return false, nil
}

func (c *comparer) sequences(a, b Sequence) (bool, error) {
	ia, ib := a.Iter(), b.Iter()
	for !ia.Done() {
		if ib.Done() {
			return false, nil
		}
		va, err := ia.Next()
		if err != nil {
			return false, err
		}
		vb, err := ib.Next()
		if err != nil {
			return false, err
		}
		if eq, err := c.equal(va, vb); !eq || err != nil {
			return false, err
		}
	}
	return ib.Done(), nil
}

func (c *comparer) mappings(a, b Mapping) (bool, error) {
	ia, ib := a.Iter(), b.Iter()
	for !ia.Done() {
		if ib.Done() {
			return false, nil
		}
		ea, err := ia.Next()
		if err != nil {
			return false, err
		}
		eb, err := ib.Next()
		if err != nil {
			return false, err
		}
		if eq, err := c.equal(ea.Key, eb.Key); !eq || err != nil {
			return false, err
		}
		if eq, err := c.equal(ea.Value, eb.Value); !eq || err != nil {
			return false, err
		}
	}
	return ib.Done(), nil
}
