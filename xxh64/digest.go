package xxh64

import (
	"encoding/binary"
	"hash"
)

// Digest is a streaming XXH64 state.  It implements hash.Hash64 and
// produces the same result as Sum64 over the concatenation of all writes.
type Digest struct {
	seed  uint64
	v1    uint64
	v2    uint64
	v3    uint64
	v4    uint64
	total uint64
	mem   [BlockSize]byte
	n     int // bytes buffered in mem
}

var _ hash.Hash64 = (*Digest)(nil)

// New returns a Digest seeded with seed.
func New(seed uint64) *Digest {
	d := &Digest{seed: seed}
	d.Reset()
	return d
}

// Reset restores the Digest to its seeded initial state.
func (d *Digest) Reset() {
	d.v1 = d.seed + prime1 + prime2
	d.v2 = d.seed + prime2
	d.v3 = d.seed
	d.v4 = d.seed - prime1
	d.total = 0
	d.n = 0
}

func (d *Digest) Size() int      { return Size }
func (d *Digest) BlockSize() int { return BlockSize }

// Write adds b to the running hash.  It never returns an error.
func (d *Digest) Write(b []byte) (int, error) {
	n := len(b)
	d.total += uint64(n)
	if d.n+n < BlockSize {
		copy(d.mem[d.n:], b)
		d.n += n
		return n, nil
	}
	if d.n > 0 {
		c := copy(d.mem[d.n:], b)
		d.stripe(d.mem[:])
		b = b[c:]
		d.n = 0
	}
	for len(b) >= BlockSize {
		d.stripe(b[:BlockSize])
		b = b[BlockSize:]
	}
	d.n = copy(d.mem[:], b)
	return n, nil
}

func (d *Digest) stripe(b []byte) {
	d.v1 = round(d.v1, u64(b[0:8]))
	d.v2 = round(d.v2, u64(b[8:16]))
	d.v3 = round(d.v3, u64(b[16:24]))
	d.v4 = round(d.v4, u64(b[24:32]))
}

// Sum64 returns the hash of everything written so far without changing
// the Digest state.
func (d *Digest) Sum64() uint64 {
	var h uint64
	if d.total >= BlockSize {
		h = converge(d.v1, d.v2, d.v3, d.v4)
	} else {
		h = d.seed + prime5
	}
	h += d.total
	return finalize(h, d.mem[:d.n])
}

// Sum appends the big-endian hash to b, matching the canonical XXH64
// digest byte order.
func (d *Digest) Sum(b []byte) []byte {
	var out [Size]byte
	binary.BigEndian.PutUint64(out[:], d.Sum64())
	return append(b, out[:]...)
}
