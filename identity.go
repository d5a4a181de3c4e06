package nibs

// sliceID identifies a plain container by its backing array so that the
// same slice placed twice in a document, or inside itself, is recognized.
type sliceID struct {
	kind  Kind
	first any
	n     int
}

// identity returns a comparable key for containers that have reference
// identity: lazy containers, scopes and non-empty plain containers.
func identity(v Value) (any, bool) {
	switch v := v.(type) {
	case *LazyList, *LazyArray, *LazyMap, *LazyTrie, *Scope:
		return v, true
	case List:
		if len(v) > 0 {
			return sliceID{KindList, &v[0], len(v)}, true
		}
	case Array:
		if len(v) > 0 {
			return sliceID{KindArray, &v[0], len(v)}, true
		}
	case Map:
		if len(v) > 0 {
			return sliceID{KindMap, &v[0], len(v)}, true
		}
	case Trie:
		if len(v) > 0 {
			return sliceID{KindTrie, &v[0], len(v)}, true
		}
	}
	return nil, false
}
