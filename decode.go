package nibs

import (
	"encoding/hex"
	"math"

	nerr "github.com/brimdata/nibs/errors"
	"github.com/brimdata/nibs/hamt"
	"github.com/brimdata/nibs/ncode"
)

// Decode decodes the single value encoded in buf.  Containers are returned
// as lazy views that reference buf, which must not be modified while they
// are in use.
func Decode(buf []byte) (Value, error) {
	v, end, err := decodeAt(buf, 0, nil)
	if err != nil {
		return nil, err
	}
	if end != len(buf) {
		return nil, nerr.E(nerr.TrailingData, "%d bytes after value", len(buf)-end)
	}
	return v, nil
}

// DecodePrefix decodes the value at the start of buf and returns it along
// with the number of bytes it occupies.
func DecodePrefix(buf []byte) (Value, int, error) {
	return decodeAt(buf, 0, nil)
}

func decodeAt(buf []byte, off int, scope *refScope) (Value, int, error) {
	p, body, end, err := ncode.Body(buf, off)
	if err != nil {
		return nil, 0, err
	}
	var v Value
	switch p.Small {
	case ncode.TypeZigZag:
		v = Int(ncode.UnZigZag(p.Big))
	case ncode.TypeFloat:
		if n := end - off; n != 9 {
			return nil, 0, nerr.E(nerr.MalformedHeader, "float at offset %d has a %d-byte header, not 9", off, n)
		}
		v = Float(math.Float64frombits(p.Big))
	case ncode.TypeSimple:
		v, err = decodeSimple(p.Big)
	case ncode.TypeRef:
		v, err = scope.resolve(p.Big)
	case ncode.TypeBytes:
		v = Bytes(body)
	case ncode.TypeUTF8:
		v = String(body)
	case ncode.TypeHexString:
		v = String(hex.EncodeToString(body))
	case ncode.TypeList:
		v = &LazyList{elems: newElements(body, scope)}
	case ncode.TypeMap:
		v = &LazyMap{elems: newElements(body, scope)}
	case ncode.TypeArray:
		v, err = newLazyArray(body, scope)
	case ncode.TypeTrie:
		v, err = newLazyTrie(body, scope)
	case ncode.TypeScope:
		v, err = decodeScope(body)
	default:
		err = nerr.E(nerr.UnsupportedType, "type tag %d at offset %d", p.Small, off)
	}
	if err != nil {
		return nil, 0, err
	}
	return v, end, nil
}

func decodeSimple(subtype uint64) (Value, error) {
	switch subtype {
	case ncode.SimpleFalse:
		return Bool(false), nil
	case ncode.SimpleTrue:
		return Bool(true), nil
	case ncode.SimpleNull:
		return Null{}, nil
	case ncode.SimpleNaN:
		return Float(math.NaN()), nil
	case ncode.SimpleInf:
		return Float(math.Inf(1)), nil
	case ncode.SimpleNegInf:
		return Float(math.Inf(-1)), nil
	}
	return nil, nerr.E(nerr.InvalidSubtype, "simple subtype %d", subtype)
}

func newLazyArray(body []byte, scope *refScope) (*LazyArray, error) {
	x, n, err := ncode.ParseIndex(body)
	if err != nil {
		return nil, err
	}
	if err := checkArea(body[n:], x, "array element"); err != nil {
		return nil, err
	}
	return &LazyArray{
		index: x,
		area:  body[n:],
		scope: scope,
		vals:  make([]Value, x.Count),
	}, nil
}

func newLazyTrie(body []byte, scope *refScope) (*LazyTrie, error) {
	r, n, err := hamt.Parse(body)
	if err != nil {
		return nil, err
	}
	return &LazyTrie{
		LazyMap: LazyMap{elems: newElements(body[n:], scope)},
		reader:  r,
	}, nil
}

// decodeScope decodes the primary value of a scope.  Refs within it are
// resolved against the scope's table as they are reached.
func decodeScope(body []byte) (Value, error) {
	end, err := ncode.Skip(body, 0)
	if err != nil {
		return nil, err
	}
	x, n, err := ncode.ParseIndex(body[end:])
	if err != nil {
		return nil, err
	}
	if err := checkArea(body[end+n:], x, "ref"); err != nil {
		return nil, err
	}
	s := &refScope{
		index: x,
		area:  body[end+n:],
		memo:  make([]refMemo, x.Count),
	}
	v, _, err := decodeAt(body[:end:end], 0, s)
	return v, err
}

// checkArea checks the ends of an indexed area: the first pointer is at its
// start and the value at the last pointer finishes it.  Validate checks the
// pointers in between.
func checkArea(area []byte, x ncode.Index, what string) error {
	if x.Count == 0 {
		if len(area) != 0 {
			return nerr.E(nerr.TrailingData, "%d bytes after an empty index", len(area))
		}
		return nil
	}
	if first := x.Pointer(0); first != 0 {
		return nerr.E(nerr.MalformedHeader, "%s 0 at offset %d, not 0", what, first)
	}
	last := x.Pointer(x.Count - 1)
	if last >= uint64(len(area)) {
		return nerr.E(nerr.MalformedHeader, "%s %d points past the end of its area", what, x.Count-1)
	}
	end, err := ncode.Skip(area, int(last))
	if err != nil {
		return err
	}
	if end != len(area) {
		return nerr.E(nerr.TrailingData, "%d bytes after %s %d", len(area)-end, what, x.Count-1)
	}
	return nil
}

const (
	unresolved = iota
	resolving
	resolved
)

type refMemo struct {
	state int
	val   Value
}

// refScope is the decode-time view of a Scope's ref table.
type refScope struct {
	index ncode.Index
	area  []byte
	memo  []refMemo
}

func (s *refScope) resolve(id uint64) (Value, error) {
	if s == nil {
		return nil, nerr.E(nerr.UnresolvedRef, "ref %d outside of any scope", id)
	}
	if id >= uint64(len(s.memo)) {
		return nil, nerr.E(nerr.UnresolvedRef, "ref %d in a scope of %d refs", id, len(s.memo))
	}
	m := &s.memo[id]
	switch m.state {
	case resolved:
		return m.val, nil
	case resolving:
		return nil, nerr.E(nerr.CyclicRefDuringDecode, "ref %d refers to itself", id)
	}
	m.state = resolving
	ptr := s.index.Pointer(int(id))
	if ptr >= uint64(len(s.area)) {
		m.state = unresolved
		return nil, nerr.E(nerr.MalformedHeader, "ref %d points past the end of its scope", id)
	}
	v, _, err := decodeAt(s.area, int(ptr), s)
	if err != nil {
		m.state = unresolved
		return nil, err
	}
	m.state = resolved
	m.val = v
	return v, nil
}
