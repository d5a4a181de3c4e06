package nibs

import (
	"fmt"

	nerr "github.com/brimdata/nibs/errors"
	"github.com/brimdata/nibs/hamt"
	"github.com/brimdata/nibs/ncode"
)

// elements is a memoizing scanner over a run of concatenated values.
type elements struct {
	body  []byte
	scope *refScope
	offs  []int
	next  int
	memo  map[int]Value
}

func newElements(body []byte, scope *refScope) elements {
	return elements{body: body, scope: scope}
}

// scan records element offsets until n are known or the body is exhausted.
// A negative n scans everything.
func (e *elements) scan(n int) error {
	for (n < 0 || len(e.offs) < n) && e.next < len(e.body) {
		end, err := ncode.Skip(e.body, e.next)
		if err != nil {
			return err
		}
		e.offs = append(e.offs, e.next)
		e.next = end
	}
	return nil
}

func (e *elements) count() (int, error) {
	if err := e.scan(-1); err != nil {
		return 0, err
	}
	return len(e.offs), nil
}

// at returns element i, or false if there are fewer than i+1 elements.
func (e *elements) at(i int) (Value, bool, error) {
	if i < 0 {
		return nil, false, nil
	}
	if err := e.scan(i + 1); err != nil {
		return nil, false, err
	}
	if i >= len(e.offs) {
		return nil, false, nil
	}
	v, _, err := e.valueAt(e.offs[i])
	return v, err == nil, err
}

// valueAt decodes the element at off and returns it with the offset of the
// element that follows.
func (e *elements) valueAt(off int) (Value, int, error) {
	end, err := ncode.Skip(e.body, off)
	if err != nil {
		return nil, 0, err
	}
	if v, ok := e.memo[off]; ok {
		return v, end, nil
	}
	v, _, err := decodeAt(e.body[:end:end], off, e.scope)
	if err != nil {
		return nil, 0, err
	}
	if e.memo == nil {
		e.memo = make(map[int]Value)
	}
	e.memo[off] = v
	return v, end, nil
}

// LazyList is a decoded List.  Elements are located by scanning and
// decoded on first access.
type LazyList struct {
	elems elements
}

func (*LazyList) Kind() Kind { return KindList }
func (*LazyList) nibsValue() {}

func (l *LazyList) Len() (int, error) {
	return l.elems.count()
}

func (l *LazyList) Index(i int) (Value, error) {
	v, ok, err := l.elems.at(i)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrIndexRange, i)
	}
	return v, nil
}

func (l *LazyList) Iter() Iter {
	return &lazyIter{at: l.elems.at}
}

// LazyArray is a decoded Array.  Elements are located through the index in
// constant time.
type LazyArray struct {
	index ncode.Index
	area  []byte
	scope *refScope
	vals  []Value
}

func (*LazyArray) Kind() Kind { return KindArray }
func (*LazyArray) nibsValue() {}

func (a *LazyArray) Len() (int, error) {
	return a.index.Count, nil
}

func (a *LazyArray) Index(i int) (Value, error) {
	v, ok, err := a.at(i)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexRange, i, a.index.Count)
	}
	return v, nil
}

func (a *LazyArray) at(i int) (Value, bool, error) {
	if i < 0 || i >= a.index.Count {
		return nil, false, nil
	}
	if v := a.vals[i]; v != nil {
		return v, true, nil
	}
	ptr := a.index.Pointer(i)
	if ptr >= uint64(len(a.area)) {
		return nil, false, nerr.E(nerr.MalformedHeader, "array element %d points past the end of the array", i)
	}
	v, _, err := decodeAt(a.area, int(ptr), a.scope)
	if err != nil {
		return nil, false, err
	}
	a.vals[i] = v
	return v, true, nil
}

func (a *LazyArray) Iter() Iter {
	return &lazyIter{at: a.at}
}

// LazyMap is a decoded Map.  Get compares keys in order.
type LazyMap struct {
	elems elements
}

func (*LazyMap) Kind() Kind { return KindMap }
func (*LazyMap) nibsValue() {}

func (m *LazyMap) Len() (int, error) {
	n, err := m.elems.count()
	if err != nil {
		return 0, err
	}
	if n%2 != 0 {
		return 0, nerr.E(nerr.MalformedHeader, "map holds %d values, a key has no value", n)
	}
	return n / 2, nil
}

func (m *LazyMap) entry(i int) (Entry, bool, error) {
	k, ok, err := m.elems.at(2 * i)
	if !ok || err != nil {
		return Entry{}, false, err
	}
	v, ok, err := m.elems.at(2*i + 1)
	if err != nil {
		return Entry{}, false, err
	}
	if !ok {
		return Entry{}, false, nerr.E(nerr.MalformedHeader, "map key %d has no value", i)
	}
	return Entry{Key: k, Value: v}, true, nil
}

func (m *LazyMap) Get(key Value) (Value, bool, error) {
	for i := 0; ; i++ {
		e, ok, err := m.entry(i)
		if !ok || err != nil {
			return nil, false, err
		}
		eq, err := Equal(e.Key, key)
		if err != nil {
			return nil, false, err
		}
		if eq {
			return e.Value, true, nil
		}
	}
}

func (m *LazyMap) Iter() EntryIter {
	return &lazyEntryIter{at: m.entry}
}

// LazyTrie is a decoded Trie.  Get hashes scalar keys and follows the
// index.  Iteration is in encoded order.
type LazyTrie struct {
	LazyMap
	reader *hamt.Reader
}

func (*LazyTrie) Kind() Kind { return KindTrie }

func (t *LazyTrie) Get(key Value) (Value, bool, error) {
	if key == nil || key.Kind().IsContainer() || key.Kind() == KindRef || key.Kind() == KindScope {
		return t.LazyMap.Get(key)
	}
	off, ok, err := t.reader.Lookup(scalarBytes(key))
	if !ok || err != nil {
		return nil, false, err
	}
	if off >= uint64(len(t.elems.body)) {
		return nil, false, nerr.E(nerr.MalformedHeader, "trie entry offset %d past the end of the trie", off)
	}
	k, next, err := t.elems.valueAt(int(off))
	if err != nil {
		return nil, false, err
	}
	eq, err := Equal(k, key)
	if !eq || err != nil {
		return nil, false, err
	}
	if next >= len(t.elems.body) {
		return nil, false, nerr.E(nerr.MalformedHeader, "trie key at offset %d has no value", off)
	}
	v, _, err := t.elems.valueAt(next)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

type lazyIter struct {
	at    func(int) (Value, bool, error)
	i     int
	ready bool
	done  bool
	val   Value
	err   error
}

func (l *lazyIter) Done() bool {
	if !l.ready {
		var ok bool
		l.val, ok, l.err = l.at(l.i)
		l.done = !ok && l.err == nil
		l.ready = true
	}
	return l.done
}

func (l *lazyIter) Next() (Value, error) {
	if l.Done() {
		return nil, ErrIndexRange
	}
	l.ready = false
	l.i++
	return l.val, l.err
}

type lazyEntryIter struct {
	at    func(int) (Entry, bool, error)
	i     int
	ready bool
	done  bool
	entry Entry
	err   error
}

func (l *lazyEntryIter) Done() bool {
	if !l.ready {
		var ok bool
		l.entry, ok, l.err = l.at(l.i)
		l.done = !ok && l.err == nil
		l.ready = true
	}
	return l.done
}

func (l *lazyEntryIter) Next() (Entry, error) {
	if l.Done() {
		return Entry{}, ErrIndexRange
	}
	l.ready = false
	l.i++
	return l.entry, l.err
}
