package hamt

import (
	"math/bits"

	nerr "github.com/brimdata/nibs/errors"
	"github.com/brimdata/nibs/ncode"
	"github.com/brimdata/nibs/xxh64"
)

// Reader looks up keys in an encoded index without decoding it.
type Reader struct {
	index ncode.Index
	power uint
	high  uint64
	seed  uint64
}

// Parse parses the index at buf[0:] and returns a Reader for it along with
// the number of bytes the index occupies.
func Parse(buf []byte) (*Reader, int, error) {
	x, n, err := ncode.ParseIndex(buf)
	if err != nil {
		return nil, 0, err
	}
	if x.Count < 2 {
		return nil, 0, nerr.E(nerr.MalformedHeader, "trie index has %d words", x.Count)
	}
	power := uint(bits.TrailingZeros(uint(x.Width))) + 3
	return &Reader{
		index: x,
		power: power,
		high:  highBit(power),
		seed:  x.Pointer(x.Count - 1),
	}, n, nil
}

// Power returns the index's bits per level.
func (r *Reader) Power() uint {
	return r.power
}

// Seed returns the hash seed recorded in the index.
func (r *Reader) Seed() uint64 {
	return r.seed
}

// Lookup returns the body offset stored for key's hash.  The caller must
// compare the key found at that offset since distinct keys may share a
// path through the trie.
func (r *Reader) Lookup(key []byte) (uint64, bool, error) {
	return r.LookupHash(xxh64.Sum64(key, r.seed))
}

// LookupHash is like Lookup but takes a hash computed with Seed.
func (r *Reader) LookupHash(hash uint64) (uint64, bool, error) {
	pos := r.index.Count - 2
	for depth := uint(0); ; depth++ {
		bitfield := r.index.Pointer(pos)
		s := segment(hash, depth, r.power)
		if bitfield&(1<<s) == 0 {
			return 0, false, nil
		}
		rank := bits.OnesCount64(bitfield & (1<<s - 1))
		slot := pos - 1 - rank
		if slot < 0 {
			return 0, false, nerr.E(nerr.MalformedHeader, "trie node at word %d has more slots than words", pos)
		}
		v := r.index.Pointer(slot)
		if v&r.high != 0 {
			return v &^ r.high, true, nil
		}
		// Children always precede their slot so each step moves backward.
		if v == 0 || v > uint64(slot) {
			return 0, false, nerr.E(nerr.MalformedHeader, "trie slot at word %d points outside the index", slot)
		}
		pos = slot - int(v)
	}
}
