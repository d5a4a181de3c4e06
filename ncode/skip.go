package ncode

import (
	nerr "github.com/brimdata/nibs/errors"
)

// Skip returns the offset just past the value starting at buf[off:] without
// decoding its contents.
func Skip(buf []byte, off int) (int, error) {
	p, n, err := DecodePair(buf, off)
	if err != nil {
		return 0, err
	}
	end := off + n
	if !p.HasBody() {
		return end, nil
	}
	if p.Big > uint64(len(buf)-end) {
		return 0, nerr.E(nerr.MalformedHeader, "value at offset %d declares %d body bytes, have %d", off, p.Big, len(buf)-end)
	}
	return end + int(p.Big), nil
}

// Body decodes the header at buf[off:] and returns the pair, the value's body
// (empty for types without one), and the offset just past the value.
func Body(buf []byte, off int) (Pair, []byte, int, error) {
	p, n, err := DecodePair(buf, off)
	if err != nil {
		return Pair{}, nil, 0, err
	}
	start := off + n
	if !p.HasBody() {
		return p, nil, start, nil
	}
	if p.Big > uint64(len(buf)-start) {
		return Pair{}, nil, 0, nerr.E(nerr.MalformedHeader, "value at offset %d declares %d body bytes, have %d", off, p.Big, len(buf)-start)
	}
	end := start + int(p.Big)
	return p, buf[start:end:end], end, nil
}

// Iter iterates over a sequence of concatenated encoded values, such as the
// body of a List or Map.
type Iter struct {
	buf []byte
	off int
}

// NewIter returns an Iter over buf starting at offset zero.
func NewIter(buf []byte) *Iter {
	return &Iter{buf: buf}
}

// Done returns true if no values remain.
func (i *Iter) Done() bool {
	return i.off >= len(i.buf)
}

// Offset returns the offset of the next value.
func (i *Iter) Offset() int {
	return i.off
}

// Next returns the offset and the encoded bytes (header included) of the
// next value and advances past it.
func (i *Iter) Next() (int, []byte, error) {
	start := i.off
	end, err := Skip(i.buf, start)
	if err != nil {
		return 0, nil, err
	}
	i.off = end
	return start, i.buf[start:end:end], nil
}

// Count returns the number of values in a concatenated sequence.
func Count(buf []byte) (int, error) {
	var n int
	for it := NewIter(buf); !it.Done(); n++ {
		if _, _, err := it.Next(); err != nil {
			return 0, err
		}
	}
	return n, nil
}
