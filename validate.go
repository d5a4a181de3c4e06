package nibs

import (
	nerr "github.com/brimdata/nibs/errors"
	"github.com/brimdata/nibs/hamt"
	"github.com/brimdata/nibs/ncode"
)

// Validate checks that buf holds exactly one well-formed value without
// building it.  Every container body must be consumed exactly, every Array
// and Scope pointer must start the next value of its area, and every Ref
// must name an entry of its nearest scope.  Decode checks only what lazy
// access needs, so Validate catches damage that Decode lets through, such
// as stray bytes between indexed elements.
func Validate(buf []byte) error {
	end, err := validateAt(buf, 0, -1)
	if err != nil {
		return err
	}
	if end != len(buf) {
		return nerr.E(nerr.TrailingData, "%d bytes after value", len(buf)-end)
	}
	return nil
}

// validateAt validates the value at buf[off:] and returns the offset just
// past it.  refs is the size of the nearest scope's ref table or -1 outside
// of any scope.
func validateAt(buf []byte, off, refs int) (int, error) {
	p, body, end, err := ncode.Body(buf, off)
	if err != nil {
		return 0, err
	}
	switch p.Small {
	case ncode.TypeZigZag, ncode.TypeBytes, ncode.TypeUTF8, ncode.TypeHexString:
	case ncode.TypeFloat:
		if n := end - off; n != 9 {
			return 0, nerr.E(nerr.MalformedHeader, "float at offset %d has a %d-byte header, not 9", off, n)
		}
	case ncode.TypeSimple:
		_, err = decodeSimple(p.Big)
	case ncode.TypeRef:
		if refs < 0 {
			return 0, nerr.E(nerr.UnresolvedRef, "ref %d outside of any scope", p.Big)
		}
		if p.Big >= uint64(refs) {
			return 0, nerr.E(nerr.UnresolvedRef, "ref %d in a scope of %d refs", p.Big, refs)
		}
	case ncode.TypeList:
		_, err = validateRun(body, refs)
	case ncode.TypeMap:
		err = validateEntries(body, refs)
	case ncode.TypeArray:
		var x ncode.Index
		var n int
		if x, n, err = ncode.ParseIndex(body); err == nil {
			err = validateArea(body[n:], x, refs, "array element")
		}
	case ncode.TypeTrie:
		var n int
		if _, n, err = hamt.Parse(body); err == nil {
			err = validateEntries(body[n:], refs)
		}
	case ncode.TypeScope:
		err = validateScope(body)
	default:
		err = nerr.E(nerr.UnsupportedType, "type tag %d at offset %d", p.Small, off)
	}
	if err != nil {
		return 0, err
	}
	return end, nil
}

// validateRun validates the concatenated values of body and returns how
// many there are.
func validateRun(body []byte, refs int) (int, error) {
	var count int
	for off := 0; off < len(body); count++ {
		var err error
		if off, err = validateAt(body, off, refs); err != nil {
			return 0, err
		}
	}
	return count, nil
}

func validateEntries(body []byte, refs int) error {
	n, err := validateRun(body, refs)
	if err != nil {
		return err
	}
	if n%2 != 0 {
		return nerr.E(nerr.MalformedHeader, "map holds %d values, a key has no value", n)
	}
	return nil
}

// validateArea checks that the pointers of x locate consecutive values that
// exactly fill area.
func validateArea(area []byte, x ncode.Index, refs int, what string) error {
	var off int
	for i := 0; i < x.Count; i++ {
		if ptr := x.Pointer(i); ptr != uint64(off) {
			return nerr.E(nerr.MalformedHeader, "%s %d at offset %d, expected %d", what, i, ptr, off)
		}
		var err error
		if off, err = validateAt(area, off, refs); err != nil {
			return err
		}
	}
	if off != len(area) {
		return nerr.E(nerr.TrailingData, "%d bytes after %s %d", len(area)-off, what, x.Count-1)
	}
	return nil
}

func validateScope(body []byte) error {
	end, err := ncode.Skip(body, 0)
	if err != nil {
		return err
	}
	x, n, err := ncode.ParseIndex(body[end:])
	if err != nil {
		return err
	}
	if _, err := validateAt(body[:end:end], 0, x.Count); err != nil {
		return err
	}
	if err := validateArea(body[end+n:], x, x.Count, "ref"); err != nil {
		return err
	}
	return validateRefChains(body[end+n:], x)
}

// validateRefChains rejects refs whose values are, directly or through
// other refs, themselves.
func validateRefChains(area []byte, x ncode.Index) error {
	for id := 0; id < x.Count; id++ {
		next := id
		for steps := 0; ; steps++ {
			p, _, err := ncode.DecodePair(area, int(x.Pointer(next)))
			if err != nil {
				return err
			}
			if p.Small != ncode.TypeRef {
				break
			}
			if steps == x.Count {
				return nerr.E(nerr.CyclicRefDuringDecode, "ref %d refers to itself", id)
			}
			next = int(p.Big)
		}
	}
	return nil
}
