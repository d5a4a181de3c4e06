package nibs

import (
	nerr "github.com/brimdata/nibs/errors"
)

// Handle identifies a node in an Arena.
type Handle int32

type node struct {
	kind    Kind
	value   Value
	indexed bool
	// kids are the elements of a list or the keys and values of a map,
	// interleaved.
	kids []Handle
}

// Arena holds a document as a graph of nodes addressed by handle.  Two
// occurrences of the same handle are the same container, which is how the
// optimizer recognizes shared and cyclic structure.
type Arena struct {
	nodes []node
	ids   map[any]Handle
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{ids: make(map[any]Handle)}
}

func (a *Arena) new(n node) Handle {
	a.nodes = append(a.nodes, n)
	return Handle(len(a.nodes) - 1)
}

func (a *Arena) node(h Handle) (*node, error) {
	if h < 0 || int(h) >= len(a.nodes) {
		return nil, nerr.E("invalid arena handle %d", int(h))
	}
	return &a.nodes[h], nil
}

// Len returns the number of nodes in the arena.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Kind returns the kind of node h.
func (a *Arena) Kind(h Handle) Kind {
	n := &a.nodes[h]
	if n.kind == KindList && n.indexed {
		return KindArray
	}
	if n.kind == KindMap && n.indexed {
		return KindTrie
	}
	return n.kind
}

// NewScalar returns a new node holding v, which must not be a container.
func (a *Arena) NewScalar(v Value) (Handle, error) {
	if v == nil || v.Kind().IsContainer() || v.Kind() == KindScope {
		return 0, nerr.E(nerr.UnsupportedType, "%T is not a scalar", v)
	}
	return a.new(node{kind: v.Kind(), value: v}), nil
}

// NewList returns a new empty list, encoded as an array if indexed.
func (a *Arena) NewList(indexed bool) Handle {
	return a.new(node{kind: KindList, indexed: indexed})
}

// NewMap returns a new empty map, encoded as a trie if indexed.
func (a *Arena) NewMap(indexed bool) Handle {
	return a.new(node{kind: KindMap, indexed: indexed})
}

// Append adds elem to the end of list.
func (a *Arena) Append(list, elem Handle) error {
	n, err := a.node(list)
	if err != nil {
		return err
	}
	if _, err := a.node(elem); err != nil {
		return err
	}
	if n.kind != KindList {
		return nerr.E("append to %s", n.kind)
	}
	n.kids = append(n.kids, elem)
	return nil
}

// Set sets key to val in m.  An existing entry whose key is the same handle
// or an equal scalar is replaced; otherwise the entry is appended.
func (a *Arena) Set(m, key, val Handle) error {
	n, err := a.node(m)
	if err != nil {
		return err
	}
	k, err := a.node(key)
	if err != nil {
		return err
	}
	if _, err := a.node(val); err != nil {
		return err
	}
	if n.kind != KindMap {
		return nerr.E("set on %s", n.kind)
	}
	for i := 0; i < len(n.kids); i += 2 {
		if n.kids[i] == key {
			n.kids[i+1] = val
			return nil
		}
		if k.value == nil {
			continue
		}
		if other := a.nodes[n.kids[i]].value; other != nil {
			eq, err := Equal(k.value, other)
			if err != nil {
				return err
			}
			if eq {
				n.kids[i+1] = val
				return nil
			}
		}
	}
	n.kids = append(n.kids, key, val)
	return nil
}

// Import adds v to the arena and returns its handle.  Containers with
// identity (lazy containers and non-empty slices) are imported once, so a
// decoded document keeps its shared and cyclic structure.
func (a *Arena) Import(v Value) (Handle, error) {
	if v == nil || v.Kind() == KindScope {
		return 0, nerr.E(nerr.UnsupportedType, "cannot import %T", v)
	}
	if !v.Kind().IsContainer() {
		return a.NewScalar(v)
	}
	id, hasID := identity(v)
	if hasID {
		if h, ok := a.ids[id]; ok {
			return h, nil
		}
	}
	switch v := v.(type) {
	case Sequence:
		h := a.NewList(v.Kind() == KindArray)
		if hasID {
			a.ids[id] = h
		}
		for it := v.Iter(); !it.Done(); {
			elem, err := it.Next()
			if err != nil {
				return 0, err
			}
			eh, err := a.Import(elem)
			if err != nil {
				return 0, err
			}
			a.nodes[h].kids = append(a.nodes[h].kids, eh)
		}
		return h, nil
	case Mapping:
		h := a.NewMap(v.Kind() == KindTrie)
		if hasID {
			a.ids[id] = h
		}
		for it := v.Iter(); !it.Done(); {
			e, err := it.Next()
			if err != nil {
				return 0, err
			}
			kh, err := a.Import(e.Key)
			if err != nil {
				return 0, err
			}
			vh, err := a.Import(e.Value)
			if err != nil {
				return 0, err
			}
			a.nodes[h].kids = append(a.nodes[h].kids, kh, vh)
		}
		return h, nil
	}
	return 0, nerr.E(nerr.UnsupportedType, "cannot import %T", v)
}
