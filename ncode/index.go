package ncode

import (
	"encoding/binary"

	nerr "github.com/brimdata/nibs/errors"
)

// An offset index is a pair whose small value is the pointer width in bytes
// (1, 2, 4 or 8) and whose big value is the byte length of the pointer table
// that follows, i.e., count*width.  Pointers are little-endian offsets
// relative to the first byte after the table.  Array and Scope bodies use it.

// WidthFor returns the narrowest pointer width able to hold max.
func WidthFor(max uint64) int {
	switch {
	case max < 0x100:
		return 1
	case max < 0x10000:
		return 2
	case max < 0x100000000:
		return 4
	default:
		return 8
	}
}

// ValidWidth reports whether w is a supported pointer width.
func ValidWidth(w uint64) bool {
	return w == 1 || w == 2 || w == 4 || w == 8
}

// SizeOfIndex returns the encoded size of an index of count pointers of the
// given width.
func SizeOfIndex(width, count int) int {
	n := width * count
	return SizeOfPair(uint64(n)) + n
}

// AppendIndex appends an index holding offsets at the given width.
func AppendIndex(dst []byte, width int, offsets []uint64) []byte {
	dst = AppendPair(dst, uint8(width), uint64(width*len(offsets)))
	for _, off := range offsets {
		dst = AppendWord(dst, width, off)
	}
	return dst
}

// AppendWord appends v as a little-endian word of the given width.
func AppendWord(dst []byte, width int, v uint64) []byte {
	switch width {
	case 1:
		return append(dst, byte(v))
	case 2:
		return binary.LittleEndian.AppendUint16(dst, uint16(v))
	case 4:
		return binary.LittleEndian.AppendUint32(dst, uint32(v))
	default:
		return binary.LittleEndian.AppendUint64(dst, v)
	}
}

// Word reads the little-endian word of the given width at b[0:].
func Word(b []byte, width int) uint64 {
	switch width {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	default:
		return binary.LittleEndian.Uint64(b)
	}
}

// Index is a parsed offset index.
type Index struct {
	Width int
	Count int
	table []byte
}

// Pointer returns the i'th offset.
func (x Index) Pointer(i int) uint64 {
	return Word(x.table[i*x.Width:], x.Width)
}

// ParseIndex parses an index at buf[0:] and returns it along with the
// number of bytes it occupies.
func ParseIndex(buf []byte) (Index, int, error) {
	p, n, err := DecodePair(buf, 0)
	if err != nil {
		return Index{}, 0, err
	}
	if !ValidWidth(uint64(p.Small)) {
		return Index{}, 0, nerr.E(nerr.MalformedHeader, "index pointer width %d", p.Small)
	}
	w := int(p.Small)
	if p.Big%uint64(w) != 0 {
		return Index{}, 0, nerr.E(nerr.MalformedHeader, "index length %d is not a multiple of width %d", p.Big, w)
	}
	if p.Big > uint64(len(buf)-n) {
		return Index{}, 0, nerr.E(nerr.MalformedHeader, "index length %d exceeds %d available bytes", p.Big, len(buf)-n)
	}
	end := n + int(p.Big)
	return Index{
		Width: w,
		Count: int(p.Big) / w,
		table: buf[n:end:end],
	}, end, nil
}
