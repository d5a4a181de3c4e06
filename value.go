// Package nibs implements the Nibs binary serialization format.
//
// A Value is one of a closed set of Go types.  Scalars are Int, Float, Bool,
// Null, Bytes and String.  Containers are List and Map, which encode as
// sequential runs of values, and Array and Trie, their indexed counterparts
// that support constant-time element access and hashed key lookup.  Scope
// wraps a document together with a table of shared values that Ref values
// in the document point at.
//
// Decode returns lazy views over the encoded buffer: LazyList, LazyArray,
// LazyMap and LazyTrie decode children only as they are accessed.  Refs are
// resolved transparently during decoding so a decoded document never
// contains Ref or Scope values.
package nibs

import (
	"errors"
	"fmt"
)

var (
	ErrIndexRange = errors.New("index out of range")
	ErrNotFound   = errors.New("key not found")
)

// Kind identifies the variant of a Value.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindNull
	KindRef
	KindBytes
	KindString
	KindList
	KindMap
	KindArray
	KindTrie
	KindScope
)

var kindNames = [...]string{
	KindInt:    "int",
	KindFloat:  "float",
	KindBool:   "bool",
	KindNull:   "null",
	KindRef:    "ref",
	KindBytes:  "bytes",
	KindString: "string",
	KindList:   "list",
	KindMap:    "map",
	KindArray:  "array",
	KindTrie:   "trie",
	KindScope:  "scope",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsContainer returns true for lists, maps, arrays and tries.
func (k Kind) IsContainer() bool {
	return k >= KindList && k <= KindTrie
}

// Value is a Nibs value.  The set of implementations is closed.
type Value interface {
	Kind() Kind
	nibsValue()
}

type (
	Int    int64
	Float  float64
	Bool   bool
	Null   struct{}
	Bytes  []byte
	String string
	// Ref is a reference to entry n of the nearest enclosing Scope's table.
	Ref uint64
)

// List is a sequence encoded without an index.
type List []Value

// Array is a sequence encoded with an offset index.
type Array []Value

// Entry is a key/value pair of a Map or Trie.  Keys may be any Value.
type Entry struct {
	Key   Value
	Value Value
}

// Map is an ordered mapping encoded without an index.
type Map []Entry

// Trie is an ordered mapping encoded with a hash index.
type Trie []Entry

// Scope is a document along with the table of values its Refs point at.
type Scope struct {
	Value Value
	Refs  []Value
}

func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (Bool) Kind() Kind   { return KindBool }
func (Null) Kind() Kind   { return KindNull }
func (Ref) Kind() Kind    { return KindRef }
func (Bytes) Kind() Kind  { return KindBytes }
func (String) Kind() Kind { return KindString }
func (List) Kind() Kind   { return KindList }
func (Array) Kind() Kind  { return KindArray }
func (Map) Kind() Kind    { return KindMap }
func (Trie) Kind() Kind   { return KindTrie }
func (*Scope) Kind() Kind { return KindScope }

func (Int) nibsValue()    {}
func (Float) nibsValue()  {}
func (Bool) nibsValue()   {}
func (Null) nibsValue()   {}
func (Ref) nibsValue()    {}
func (Bytes) nibsValue()  {}
func (String) nibsValue() {}
func (List) nibsValue()   {}
func (Array) nibsValue()  {}
func (Map) nibsValue()    {}
func (Trie) nibsValue()   {}
func (*Scope) nibsValue() {}

// Iter iterates over the elements of a Sequence.
type Iter interface {
	Done() bool
	Next() (Value, error)
}

// EntryIter iterates over the entries of a Mapping.
type EntryIter interface {
	Done() bool
	Next() (Entry, error)
}

// Sequence is implemented by List, Array, LazyList and LazyArray.
type Sequence interface {
	Value
	Len() (int, error)
	Index(int) (Value, error)
	Iter() Iter
}

// Mapping is implemented by Map, Trie, LazyMap and LazyTrie.
type Mapping interface {
	Value
	Len() (int, error)
	// Get returns the value of the first entry whose key equals key.
	Get(key Value) (Value, bool, error)
	Iter() EntryIter
}

func (l List) Len() (int, error)  { return len(l), nil }
func (a Array) Len() (int, error) { return len(a), nil }
func (m Map) Len() (int, error)   { return len(m), nil }
func (t Trie) Len() (int, error)  { return len(t), nil }

func (l List) Index(i int) (Value, error)  { return index(l, i) }
func (a Array) Index(i int) (Value, error) { return index(a, i) }

func index(vals []Value, i int) (Value, error) {
	if i < 0 || i >= len(vals) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexRange, i, len(vals))
	}
	return vals[i], nil
}

func (l List) Iter() Iter  { return &sliceIter{vals: l} }
func (a Array) Iter() Iter { return &sliceIter{vals: a} }

func (m Map) Get(key Value) (Value, bool, error)  { return get(m, key) }
func (t Trie) Get(key Value) (Value, bool, error) { return get(t, key) }

func get(entries []Entry, key Value) (Value, bool, error) {
	for _, e := range entries {
		eq, err := Equal(e.Key, key)
		if err != nil {
			return nil, false, err
		}
		if eq {
			return e.Value, true, nil
		}
	}
	return nil, false, nil
}

func (m Map) Iter() EntryIter  { return &entryIter{entries: m} }
func (t Trie) Iter() EntryIter { return &entryIter{entries: t} }

type sliceIter struct {
	vals []Value
	off  int
}

func (s *sliceIter) Done() bool {
	return s.off >= len(s.vals)
}

func (s *sliceIter) Next() (Value, error) {
	v := s.vals[s.off]
	s.off++
	return v, nil
}

type entryIter struct {
	entries []Entry
	off     int
}

func (e *entryIter) Done() bool {
	return e.off >= len(e.entries)
}

func (e *entryIter) Next() (Entry, error) {
	entry := e.entries[e.off]
	e.off++
	return entry, nil
}

// Lookup walks a path of list indexes (Int) and map keys from v.
func Lookup(v Value, path ...Value) (Value, error) {
	for _, p := range path {
		switch c := v.(type) {
		case Sequence:
			i, ok := p.(Int)
			if !ok {
				return nil, fmt.Errorf("cannot index %s with %s", c.Kind(), p.Kind())
			}
			var err error
			if v, err = c.Index(int(i)); err != nil {
				return nil, err
			}
		case Mapping:
			val, ok, err := c.Get(p)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ErrNotFound
			}
			v = val
		default:
			return nil, fmt.Errorf("cannot index %s", v.Kind())
		}
	}
	return v, nil
}
