package nibs

import (
	"encoding/hex"
	"math"
	"math/bits"

	nerr "github.com/brimdata/nibs/errors"
	"github.com/brimdata/nibs/hamt"
	"github.com/brimdata/nibs/ncode"
	"go.uber.org/zap"
)

// DefaultIndexLimit is the number of elements or entries at which plain
// lists and maps are encoded as arrays and tries.
const DefaultIndexLimit = 12

// Config configures an Encoder.
type Config struct {
	// IndexLimit is the length at which a List is encoded as an Array and
	// a Map as a Trie.  Zero selects DefaultIndexLimit and a negative
	// value disables automatic indexing.
	IndexLimit int `yaml:"index_limit"`
	// SeedStart and TrialBudget bound the trie seed search.  See
	// hamt.Options.
	SeedStart   uint64      `yaml:"seed_start"`
	TrialBudget int         `yaml:"trial_budget"`
	Logger      *zap.Logger `yaml:"-"`
}

// Encoder encodes values.  It is not safe for concurrent use.
type Encoder struct {
	indexLimit int
	hamtOpts   hamt.Options
	logger     *zap.Logger
	scopes     [][]Value
	visiting   map[any]struct{}
}

func NewEncoder(c Config) *Encoder {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := c.IndexLimit
	if limit == 0 {
		limit = DefaultIndexLimit
	}
	return &Encoder{
		indexLimit: limit,
		hamtOpts: hamt.Options{
			SeedStart:   c.SeedStart,
			TrialBudget: c.TrialBudget,
			Logger:      logger,
		},
		logger:   logger,
		visiting: make(map[any]struct{}),
	}
}

// Encode encodes v with the default configuration.
func Encode(v Value) ([]byte, error) {
	return NewEncoder(Config{}).Encode(v)
}

// SizeOf returns the length of Encode(v) without encoding it.
func SizeOf(v Value) (uint64, error) {
	return NewEncoder(Config{}).SizeOf(v)
}

// Encode returns the encoding of v.
func (e *Encoder) Encode(v Value) ([]byte, error) {
	p, err := e.plan(v)
	if err != nil {
		return nil, err
	}
	return p.encode(nil)
}

// Append appends the encoding of v to dst.
func (e *Encoder) Append(dst []byte, v Value) ([]byte, error) {
	p, err := e.plan(v)
	if err != nil {
		return nil, err
	}
	return p.encode(dst)
}

// SizeOf returns the length of the encoding of v.
func (e *Encoder) SizeOf(v Value) (uint64, error) {
	p, err := e.plan(v)
	if err != nil {
		return 0, err
	}
	return p.size, nil
}

// plan is the first encoding pass: the shape of the output with every
// size computed and every index built.
type plan struct {
	typ     uint8
	big     uint64
	wide    bool
	body    []byte
	width   int
	offsets []uint64
	trie    *hamt.Index
	kids    []*plan
	size    uint64
}

func scalarPlan(typ uint8, big uint64, body []byte) *plan {
	return &plan{
		typ:  typ,
		big:  big,
		body: body,
		size: uint64(ncode.SizeOfPair(big) + len(body)),
	}
}

func containerPlan(typ uint8, prefix uint64, kids []*plan) (*plan, error) {
	big := prefix
	var err error
	for _, k := range kids {
		if big, err = addSize(big, k.size); err != nil {
			return nil, err
		}
	}
	size, err := addSize(uint64(ncode.SizeOfPair(big)), big)
	if err != nil {
		return nil, err
	}
	return &plan{
		typ:  typ,
		big:  big,
		kids: kids,
		size: size,
	}, nil
}

// addSize adds byte counts, failing if the sum is not representable.
func addSize(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, nerr.E(nerr.IndexOverflow, "encoding exceeds 2^64 bytes")
	}
	return sum, nil
}

func (p *plan) encode(dst []byte) ([]byte, error) {
	c := &cursor{buf: dst}
	if dst == nil {
		c.buf = make([]byte, 0, p.size)
	}
	start := len(c.buf)
	p.emit(c)
	if n := uint64(len(c.buf) - start); n != p.size {
		return nil, nerr.E(nerr.EncodingLengthMismatch, "planned %d bytes, wrote %d", p.size, n)
	}
	return c.buf, nil
}

func (e *Encoder) plan(v Value) (*plan, error) {
	switch v := v.(type) {
	case Int:
		return scalarPlan(ncode.TypeZigZag, ncode.ZigZag(int64(v)), nil), nil
	case Float:
		f := float64(v)
		switch {
		case math.IsNaN(f):
			return scalarPlan(ncode.TypeSimple, ncode.SimpleNaN, nil), nil
		case math.IsInf(f, 1):
			return scalarPlan(ncode.TypeSimple, ncode.SimpleInf, nil), nil
		case math.IsInf(f, -1):
			return scalarPlan(ncode.TypeSimple, ncode.SimpleNegInf, nil), nil
		}
		return &plan{typ: ncode.TypeFloat, big: math.Float64bits(f), wide: true, size: 9}, nil
	case Bool:
		if v {
			return scalarPlan(ncode.TypeSimple, ncode.SimpleTrue, nil), nil
		}
		return scalarPlan(ncode.TypeSimple, ncode.SimpleFalse, nil), nil
	case Null:
		return scalarPlan(ncode.TypeSimple, ncode.SimpleNull, nil), nil
	case Ref:
		if err := e.checkRef(v); err != nil {
			return nil, err
		}
		return scalarPlan(ncode.TypeRef, uint64(v), nil), nil
	case Bytes:
		return scalarPlan(ncode.TypeBytes, uint64(len(v)), v), nil
	case String:
		if isHexString(string(v)) {
			b, _ := hex.DecodeString(string(v))
			return scalarPlan(ncode.TypeHexString, uint64(len(b)), b), nil
		}
		return scalarPlan(ncode.TypeUTF8, uint64(len(v)), []byte(v)), nil
	case nil:
		return nil, nerr.E(nerr.UnsupportedType, "nil value")
	}
	id, ok := identity(v)
	if ok {
		if _, ok := e.visiting[id]; ok {
			return nil, nerr.E(nerr.UnsupportedType, "cyclic %s cannot be encoded outside of a scope", v.Kind())
		}
		e.visiting[id] = struct{}{}
		defer delete(e.visiting, id)
	}
	switch v := v.(type) {
	case *Scope:
		return e.planScope(v)
	case Sequence:
		kids, err := e.planSequence(v)
		if err != nil {
			return nil, err
		}
		if v.Kind() == KindArray || e.indexed(len(kids)) {
			return planArray(kids)
		}
		return containerPlan(ncode.TypeList, 0, kids)
	case Mapping:
		entries, err := collectEntries(v)
		if err != nil {
			return nil, err
		}
		if v.Kind() == KindTrie || e.indexed(len(entries)) {
			return e.planTrie(entries)
		}
		kids, err := e.planEntries(entries)
		if err != nil {
			return nil, err
		}
		return containerPlan(ncode.TypeMap, 0, kids)
	}
	return nil, nerr.E(nerr.UnsupportedType, "cannot encode %T", v)
}

func (e *Encoder) indexed(n int) bool {
	return e.indexLimit > 0 && n >= e.indexLimit
}

func (e *Encoder) checkRef(r Ref) error {
	if len(e.scopes) == 0 {
		return nerr.E(nerr.UnresolvedRef, "ref %d outside of any scope", uint64(r))
	}
	if refs := e.scopes[len(e.scopes)-1]; uint64(r) >= uint64(len(refs)) {
		return nerr.E(nerr.UnresolvedRef, "ref %d in a scope of %d refs", uint64(r), len(refs))
	}
	return nil
}

func (e *Encoder) planSequence(s Sequence) ([]*plan, error) {
	var kids []*plan
	for it := s.Iter(); !it.Done(); {
		v, err := it.Next()
		if err != nil {
			return nil, err
		}
		p, err := e.plan(v)
		if err != nil {
			return nil, err
		}
		kids = append(kids, p)
	}
	return kids, nil
}

func collectEntries(m Mapping) ([]Entry, error) {
	var entries []Entry
	for it := m.Iter(); !it.Done(); {
		entry, err := it.Next()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (e *Encoder) planEntries(entries []Entry) ([]*plan, error) {
	kids := make([]*plan, 0, 2*len(entries))
	for _, entry := range entries {
		k, err := e.plan(entry.Key)
		if err != nil {
			return nil, err
		}
		v, err := e.plan(entry.Value)
		if err != nil {
			return nil, err
		}
		kids = append(kids, k, v)
	}
	return kids, nil
}

// offsetsOf returns the offset of each plan relative to the first.
func offsetsOf(kids []*plan) ([]uint64, error) {
	offsets := make([]uint64, len(kids))
	var off uint64
	var err error
	for i, k := range kids {
		offsets[i] = off
		if off, err = addSize(off, k.size); err != nil {
			return nil, err
		}
	}
	return offsets, nil
}

func planArray(kids []*plan) (*plan, error) {
	offsets, err := offsetsOf(kids)
	if err != nil {
		return nil, err
	}
	width := indexWidth(offsets)
	p, err := containerPlan(ncode.TypeArray, uint64(ncode.SizeOfIndex(width, len(offsets))), kids)
	if err != nil {
		return nil, err
	}
	p.width = width
	p.offsets = offsets
	return p, nil
}

func indexWidth(offsets []uint64) int {
	if len(offsets) == 0 {
		return 1
	}
	return ncode.WidthFor(offsets[len(offsets)-1])
}

func (e *Encoder) planTrie(entries []Entry) (*plan, error) {
	kids, err := e.planEntries(entries)
	if err != nil {
		return nil, err
	}
	offsets, err := offsetsOf(kids)
	if err != nil {
		return nil, err
	}
	var hentries []hamt.Entry
	for i, entry := range entries {
		key, ok := e.hashKey(entry.Key)
		if !ok {
			continue
		}
		hentries = append(hentries, hamt.Entry{Key: key, Offset: offsets[2*i]})
	}
	x, err := hamt.Build(hentries, e.hamtOpts)
	if err != nil {
		return nil, err
	}
	p, err := containerPlan(ncode.TypeTrie, uint64(x.Size()), kids)
	if err != nil {
		return nil, err
	}
	p.trie = x
	return p, nil
}

// hashKey returns the bytes a trie hashes for key.  Refs are resolved
// through the current scope and only scalar keys are indexed; lookups of
// container keys scan the entries instead.
func (e *Encoder) hashKey(key Value) ([]byte, bool) {
	for steps := 0; ; steps++ {
		r, ok := key.(Ref)
		if !ok {
			break
		}
		if len(e.scopes) == 0 {
			return nil, false
		}
		refs := e.scopes[len(e.scopes)-1]
		if steps > len(refs) || uint64(r) >= uint64(len(refs)) {
			return nil, false
		}
		key = refs[r]
	}
	if key == nil || key.Kind().IsContainer() || key.Kind() == KindScope {
		return nil, false
	}
	return scalarBytes(key), true
}

// scalarBytes returns the encoding of a scalar other than Ref.
func scalarBytes(v Value) []byte {
	p, err := (&Encoder{}).plan(v)
	if err != nil {
		return nil
	}
	b, _ := p.encode(nil)
	return b
}

func (e *Encoder) planScope(s *Scope) (*plan, error) {
	e.scopes = append(e.scopes, s.Refs)
	defer func() { e.scopes = e.scopes[:len(e.scopes)-1] }()
	primary, err := e.plan(s.Value)
	if err != nil {
		return nil, err
	}
	refs := make([]*plan, 0, len(s.Refs))
	for _, r := range s.Refs {
		p, err := e.plan(r)
		if err != nil {
			return nil, err
		}
		refs = append(refs, p)
	}
	offsets, err := offsetsOf(refs)
	if err != nil {
		return nil, err
	}
	width := indexWidth(offsets)
	prefix, err := addSize(primary.size, uint64(ncode.SizeOfIndex(width, len(offsets))))
	if err != nil {
		return nil, err
	}
	p, err := containerPlan(ncode.TypeScope, prefix, refs)
	if err != nil {
		return nil, err
	}
	p.kids = append([]*plan{primary}, refs...)
	p.width = width
	p.offsets = offsets
	return p, nil
}

func isHexString(s string) bool {
	if len(s) == 0 || len(s)%2 != 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}

// cursor is the write position of the second encoding pass.
type cursor struct {
	buf []byte
}

func (c *cursor) pair(typ uint8, big uint64, wide bool) {
	if wide {
		c.buf = ncode.AppendPair64(c.buf, typ, big)
	} else {
		c.buf = ncode.AppendPair(c.buf, typ, big)
	}
}

func (p *plan) emit(c *cursor) {
	c.pair(p.typ, p.big, p.wide)
	c.buf = append(c.buf, p.body...)
	kids := p.kids
	switch p.typ {
	case ncode.TypeArray:
		c.buf = ncode.AppendIndex(c.buf, p.width, p.offsets)
	case ncode.TypeTrie:
		c.buf = p.trie.AppendTo(c.buf)
	case ncode.TypeScope:
		kids[0].emit(c)
		kids = kids[1:]
		c.buf = ncode.AppendIndex(c.buf, p.width, p.offsets)
	}
	for _, k := range kids {
		k.emit(c)
	}
}
