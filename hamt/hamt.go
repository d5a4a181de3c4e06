// Package hamt builds and reads the compact hash array mapped trie that
// indexes the entries of a Nibs Trie.
//
// An index is a sequence of little-endian words of width 1, 2, 4 or 8 bytes.
// A word of w bytes has 2^power bits (power 3 through 6), which is also the
// fan-out of every node: each level of the trie consumes power bits of the
// key's 64-bit hash, least significant bits first.
//
// Nodes are written children before parents.  A node is the table of its
// occupied slots in reverse slot order followed by a bitfield word marking
// which slots are occupied, so the slot of rank r sits r+1 words before the
// bitfield.  A slot whose high bit is set is a leaf holding the entry's body
// offset in the remaining bits.  Otherwise it is the backward distance, in
// words, from the slot to the child node's bitfield.  The root node is
// written last and is followed by a single word holding the hash seed.
//
// The index is preceded by a pair whose small value is the word width and
// whose big value is the byte length of the word table.
package hamt

import (
	"errors"

	nerr "github.com/brimdata/nibs/errors"
	"github.com/brimdata/nibs/ncode"
	"github.com/brimdata/nibs/xxh64"
	"go.uber.org/zap"
)

const (
	MinPower = 3
	MaxPower = 6
)

var (
	errOverflow  = errors.New("trie pointer overflow")
	errCollision = errors.New("full hash collision")
)

// Entry is a key, as encoded bytes, and the offset of its entry in the body.
type Entry struct {
	Key    []byte
	Offset uint64
}

// Options controls the seed search.
type Options struct {
	// SeedStart is the first seed tried.
	SeedStart uint64
	// TrialBudget is the number of seeds tried after SeedStart.  Zero
	// selects DefaultTrialBudget for the number of keys and a negative
	// value tries SeedStart only.
	TrialBudget int
	Logger      *zap.Logger
}

// DefaultTrialBudget returns a seed budget that shrinks as the number of
// keys grows so that the total hashing work stays roughly constant.
func DefaultTrialBudget(keys int) int {
	budget := 4096 / (keys + 1)
	if budget < 1 {
		return 1
	}
	if budget > 255 {
		return 255
	}
	return budget
}

// Width returns the word width in bytes for a power.
func Width(power uint) int {
	return 1 << (power - 3)
}

func highBit(power uint) uint64 {
	return uint64(1) << (uint(1)<<power - 1)
}

// seedFits reports whether seed fits in a word of the given power.
func seedFits(seed uint64, power uint) bool {
	return power == MaxPower || seed < uint64(1)<<(uint(1)<<power)
}

func segment(hash uint64, depth, power uint) int {
	return int((hash >> (depth * power)) & (uint64(1)<<power - 1))
}

// Index is a serialized trie index.
type Index struct {
	Power uint
	Seed  uint64
	Words []uint64
}

// Width returns the word width of the index in bytes.
func (x *Index) Width() int {
	return Width(x.Power)
}

// Size returns the encoded size of the index including its header.
func (x *Index) Size() int {
	return ncode.SizeOfIndex(x.Width(), len(x.Words))
}

// AppendTo appends the encoded index to dst.
func (x *Index) AppendTo(dst []byte) []byte {
	return ncode.AppendIndex(dst, x.Width(), x.Words)
}

// Build searches seeds and powers for the smallest index mapping each
// entry's key hash to its offset.  Keys must be distinct; an entry whose key
// repeats an earlier one is left out of the index.
func Build(entries []Entry, opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	entries = distinct(entries)
	var maxOffset uint64
	for _, e := range entries {
		if e.Offset > maxOffset {
			maxOffset = e.Offset
		}
	}
	minPower := uint(MinPower)
	for minPower <= MaxPower && maxOffset >= highBit(minPower) {
		minPower++
	}
	if minPower > MaxPower {
		return nil, nerr.E(nerr.NoViableEncoding, "offset %d exceeds every pointer width", maxOffset)
	}
	budget := opts.TrialBudget
	if budget == 0 {
		budget = DefaultTrialBudget(len(entries))
	} else if budget < 0 {
		budget = 0
	}
	hashes := make([]uint64, len(entries))
	var best *Index
	var trials, failed int
	seed := opts.SeedStart
	for k := 0; k <= budget; k++ {
		for i, e := range entries {
			hashes[i] = xxh64.Sum64(e.Key, seed)
		}
		for power := minPower; power <= MaxPower; power++ {
			if !seedFits(seed, power) {
				continue
			}
			trials++
			words, err := build(entries, hashes, power, seed)
			if err != nil {
				failed++
				continue
			}
			x := &Index{Power: power, Seed: seed, Words: words}
			if best == nil || better(x, best) {
				best = x
			}
		}
		if seed == ^uint64(0) {
			break
		}
		seed++
	}
	if best == nil {
		return nil, nerr.E(nerr.NoViableEncoding, "%d keys: all %d seed/power trials overflowed", len(entries), trials)
	}
	logger.Debug("Trie index built",
		zap.Int("keys", len(entries)),
		zap.Uint("power", best.Power),
		zap.Uint64("seed", best.Seed),
		zap.Int("size", best.Size()),
		zap.Int("trials", trials),
		zap.Int("failed", failed))
	return best, nil
}

func better(x, best *Index) bool {
	if x.Size() != best.Size() {
		return x.Size() < best.Size()
	}
	if x.Power != best.Power {
		return x.Power < best.Power
	}
	return x.Seed < best.Seed
}

func distinct(entries []Entry) []Entry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[string(e.Key)]; ok {
			continue
		}
		seen[string(e.Key)] = struct{}{}
		out = append(out, e)
	}
	return out
}

type node struct {
	slots []slot
}

type slot struct {
	child *node
	leaf  bool
	hash  uint64
	off   uint64
}

func newNode(power uint) *node {
	return &node{slots: make([]slot, 1<<power)}
}

func build(entries []Entry, hashes []uint64, power uint, seed uint64) ([]uint64, error) {
	root := newNode(power)
	for i, e := range entries {
		if err := insert(root, power, hashes[i], e.Offset); err != nil {
			return nil, err
		}
	}
	w := &writer{high: highBit(power)}
	if _, err := w.write(root); err != nil {
		return nil, err
	}
	return append(w.words, seed), nil
}

func insert(n *node, power uint, hash, off uint64) error {
	for depth := uint(0); ; depth++ {
		s := &n.slots[segment(hash, depth, power)]
		switch {
		case s.child != nil:
			n = s.child
		case !s.leaf:
			*s = slot{leaf: true, hash: hash, off: off}
			return nil
		case s.hash == hash:
			return errCollision
		default:
			// Push the resident leaf one level down and retry there.
			child := newNode(power)
			child.slots[segment(s.hash, depth+1, power)] = *s
			*s = slot{child: child}
			n = child
		}
	}
}

type writer struct {
	high  uint64
	words []uint64
}

// write serializes n after its children and returns the position of its
// bitfield word.
func (w *writer) write(n *node) (int, error) {
	var children []int
	for _, s := range n.slots {
		if s.child != nil {
			pos, err := w.write(s.child)
			if err != nil {
				return 0, err
			}
			children = append(children, pos)
		}
	}
	var bitfield uint64
	k := len(children)
	for i := len(n.slots) - 1; i >= 0; i-- {
		s := n.slots[i]
		switch {
		case s.child != nil:
			k--
			dist := uint64(len(w.words) - children[k])
			if dist >= w.high {
				return 0, errOverflow
			}
			w.words = append(w.words, dist)
		case s.leaf:
			if s.off >= w.high {
				return 0, errOverflow
			}
			w.words = append(w.words, w.high|s.off)
		default:
			continue
		}
		bitfield |= 1 << i
	}
	w.words = append(w.words, bitfield)
	return len(w.words) - 1, nil
}
