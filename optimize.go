package nibs

import (
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// DefaultMinScalarSize is the smallest encoded scalar worth replacing with
// a ref.  Smaller scalars are never shorter than the ref itself.
const DefaultMinScalarSize = 3

// OptimizeOptions configures Optimize.
type OptimizeOptions struct {
	// IndexLimit is the length at which lists and maps become arrays and
	// tries.  Zero selects DefaultIndexLimit and a negative value never
	// indexes.
	IndexLimit int `yaml:"index_limit"`
	// Refs is an existing ref table.  When set, scalars equal to one of its
	// entries are replaced by refs to it and no new refs are created.
	Refs []Value `yaml:"-"`
	// MinScalarSize is the encoded size below which scalars are not
	// deduplicated.  Zero selects DefaultMinScalarSize.
	MinScalarSize int         `yaml:"min_scalar_size"`
	Logger        *zap.Logger `yaml:"-"`
}

// Optimize rewrites v so that repeated scalars and shared containers are
// stored once in a Scope and referenced by Ref, and long lists and maps are
// indexed.  If nothing repeats, the rewritten document is returned without
// a Scope.  A Scope input keeps its ref table, so optimizing an optimized
// document returns an equal document.
func Optimize(v Value, opts OptimizeOptions) (Value, error) {
	a := NewArena()
	if s, ok := v.(*Scope); ok && len(s.Refs) > 0 {
		h, err := a.Import(s.Value)
		if err != nil {
			return nil, err
		}
		opts.Refs = s.Refs
		out, err := a.Optimize(h, opts)
		if err != nil {
			return nil, err
		}
		if scope, ok := out.(*Scope); ok {
			return scope, nil
		}
		return &Scope{Value: out, Refs: s.Refs}, nil
	} else if ok {
		v = s.Value
	}
	h, err := a.Import(v)
	if err != nil {
		return nil, err
	}
	return a.Optimize(h, opts)
}

type candidate struct {
	handle Handle
	count  int
	id     int
}

type optimizer struct {
	arena      *Arena
	limit      int
	minScalar  int
	scalars    map[string]*candidate
	containers map[Handle]*candidate
	order      []*candidate
	external   bool
	used       bool
}

// Optimize returns the optimized document rooted at root.
func (a *Arena) Optimize(root Handle, opts OptimizeOptions) (Value, error) {
	if _, err := a.node(root); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &optimizer{
		arena:      a,
		limit:      opts.IndexLimit,
		minScalar:  opts.MinScalarSize,
		scalars:    make(map[string]*candidate),
		containers: make(map[Handle]*candidate),
	}
	if o.limit == 0 {
		o.limit = DefaultIndexLimit
	}
	if o.minScalar <= 0 {
		o.minScalar = DefaultMinScalarSize
	}
	if len(opts.Refs) > 0 {
		o.external = true
		for k, r := range opts.Refs {
			if r == nil || r.Kind().IsContainer() || r.Kind() == KindRef || r.Kind() == KindScope {
				continue
			}
			key := string(scalarBytes(r))
			if _, ok := o.scalars[key]; !ok {
				o.scalars[key] = &candidate{id: k}
			}
		}
		primary := o.rewrite(root, -1)
		logger.Debug("Optimized against existing refs", zap.Int("refs", len(opts.Refs)), zap.Bool("used", o.used))
		if !o.used {
			return primary, nil
		}
		return &Scope{Value: primary, Refs: opts.Refs}, nil
	}
	o.count(root)
	var cands []*candidate
	for _, c := range o.order {
		if c.count > 1 {
			cands = append(cands, c)
		}
	}
	slices.SortStableFunc(cands, func(a, b *candidate) bool {
		return a.count > b.count
	})
	for k, c := range cands {
		c.id = k
	}
	refs := make([]Value, len(cands))
	for k, c := range cands {
		refs[k] = o.rewrite(c.handle, k)
	}
	primary := o.rewrite(root, -1)
	logger.Debug("Optimized",
		zap.Int("nodes", a.Len()),
		zap.Int("candidates", len(o.order)),
		zap.Int("refs", len(refs)))
	if len(refs) == 0 {
		return primary, nil
	}
	return &Scope{Value: primary, Refs: refs}, nil
}

func (o *optimizer) scalarKey(v Value) (string, bool) {
	if v.Kind() == KindRef {
		return "", false
	}
	b := scalarBytes(v)
	if !o.external && len(b) < o.minScalar {
		return "", false
	}
	return string(b), true
}

func (o *optimizer) count(h Handle) {
	n := &o.arena.nodes[h]
	if !n.kind.IsContainer() {
		key, ok := o.scalarKey(n.value)
		if !ok {
			return
		}
		c := o.scalars[key]
		if c == nil {
			c = &candidate{handle: h, id: -1}
			o.scalars[key] = c
			o.order = append(o.order, c)
		}
		c.count++
		return
	}
	if len(n.kids) == 0 {
		return
	}
	c := o.containers[h]
	if c == nil {
		c = &candidate{handle: h, id: -1}
		o.containers[h] = c
		o.order = append(o.order, c)
	}
	c.count++
	if c.count > 1 {
		return
	}
	for _, kid := range n.kids {
		o.count(kid)
	}
}

// rewrite converts node h back into a Value, replacing every candidate
// other than self with a ref.
func (o *optimizer) rewrite(h Handle, self int) Value {
	n := &o.arena.nodes[h]
	if !n.kind.IsContainer() {
		if key, ok := o.scalarKey(n.value); ok {
			if c := o.scalars[key]; c != nil && c.id >= 0 && c.id != self {
				o.used = true
				return Ref(c.id)
			}
		}
		return n.value
	}
	if c := o.containers[h]; c != nil && c.id >= 0 && c.id != self {
		o.used = true
		return Ref(c.id)
	}
	if n.kind == KindList {
		vals := make([]Value, 0, len(n.kids))
		for _, kid := range n.kids {
			vals = append(vals, o.rewrite(kid, -1))
		}
		if n.indexed || o.indexed(len(vals)) {
			return Array(vals)
		}
		return List(vals)
	}
	entries := make([]Entry, 0, len(n.kids)/2)
	for i := 0; i+1 < len(n.kids); i += 2 {
		entries = append(entries, Entry{
			Key:   o.rewrite(n.kids[i], -1),
			Value: o.rewrite(n.kids[i+1], -1),
		})
	}
	if n.indexed || o.indexed(len(entries)) {
		return Trie(entries)
	}
	return Map(entries)
}

func (o *optimizer) indexed(n int) bool {
	return o.limit > 0 && n >= o.limit
}
