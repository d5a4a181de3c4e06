// Package ncode implements the framing layer of the Nibs binary format.
//
// Every Nibs value starts with a pair: a 4-bit type tag in the high nibble of
// the first byte and an unsigned integer "big" whose meaning depends on the
// type (a literal value, a byte length, or an id).  When big is less than 12
// it is stored in the low nibble of the same byte.  Otherwise the low nibble
// holds 12, 13, 14 or 15 and big follows as a 1, 2, 4 or 8 byte little-endian
// extension.  Encoders always pick the smallest of these five widths;
// decoders accept any of them.
//
// For types 8 through 15, big is the byte length of the body that follows
// the header, so any value can be skipped without decoding it.
package ncode

import (
	"encoding/binary"

	nerr "github.com/brimdata/nibs/errors"
)

// Type codes carried in the high nibble of a pair.
const (
	TypeZigZag    = 0
	TypeFloat     = 1
	TypeSimple    = 2
	TypeRef       = 3
	TypeBytes     = 8
	TypeUTF8      = 9
	TypeHexString = 10
	TypeList      = 11
	TypeMap       = 12
	TypeArray     = 13
	TypeTrie      = 14
	TypeScope     = 15
)

// Subtypes of TypeSimple.
const (
	SimpleFalse  = 0
	SimpleTrue   = 1
	SimpleNull   = 2
	SimpleNaN    = 3
	SimpleInf    = 4
	SimpleNegInf = 5
)

const (
	ext8  = 12
	ext16 = 13
	ext32 = 14
	ext64 = 15
)

// Pair is a decoded pair header.
type Pair struct {
	Small uint8
	Big   uint64
}

// HasBody reports whether the pair is followed by Big bytes of body.
func (p Pair) HasBody() bool {
	return HasBody(p.Small)
}

// HasBody reports whether values of the given type carry a body whose
// length is the pair's big value.
func HasBody(typ uint8) bool {
	return typ >= TypeBytes
}

// SizeOfPair returns the number of bytes AppendPair uses to encode big.
func SizeOfPair(big uint64) int {
	switch {
	case big < ext8:
		return 1
	case big < 0x100:
		return 2
	case big < 0x10000:
		return 3
	case big < 0x100000000:
		return 5
	default:
		return 9
	}
}

// AppendPair appends the minimal encoding of (small, big) to dst.
func AppendPair(dst []byte, small uint8, big uint64) []byte {
	high := (small & 0xf) << 4
	switch {
	case big < ext8:
		return append(dst, high|byte(big))
	case big < 0x100:
		return append(dst, high|ext8, byte(big))
	case big < 0x10000:
		dst = append(dst, high|ext16)
		return binary.LittleEndian.AppendUint16(dst, uint16(big))
	case big < 0x100000000:
		dst = append(dst, high|ext32)
		return binary.LittleEndian.AppendUint32(dst, uint32(big))
	default:
		return AppendPair64(dst, small, big)
	}
}

// AppendPair64 appends (small, big) using the 8-byte extension regardless of
// magnitude.  Floats are always written this way.
func AppendPair64(dst []byte, small uint8, big uint64) []byte {
	dst = append(dst, (small&0xf)<<4|ext64)
	return binary.LittleEndian.AppendUint64(dst, big)
}

// DecodePair decodes the pair at buf[off:] and returns it along with the
// header length.
func DecodePair(buf []byte, off int) (Pair, int, error) {
	if off < 0 || off >= len(buf) {
		return Pair{}, 0, nerr.E(nerr.MalformedHeader, "no pair at offset %d of %d", off, len(buf))
	}
	head := buf[off]
	p := Pair{Small: head >> 4}
	low := head & 0xf
	if low < ext8 {
		p.Big = uint64(low)
		return p, 1, nil
	}
	n := 1 << (low - ext8)
	ext := buf[off+1:]
	if len(ext) < n {
		return Pair{}, 0, nerr.E(nerr.MalformedHeader, "pair at offset %d needs %d extension bytes, have %d", off, n, len(ext))
	}
	switch n {
	case 1:
		p.Big = uint64(ext[0])
	case 2:
		p.Big = uint64(binary.LittleEndian.Uint16(ext))
	case 4:
		p.Big = uint64(binary.LittleEndian.Uint32(ext))
	default:
		p.Big = binary.LittleEndian.Uint64(ext)
	}
	return p, 1 + n, nil
}

// ZigZag maps a signed integer onto an unsigned one so that values of small
// magnitude stay small: 0, -1, 1, -2, ... become 0, 1, 2, 3, ...
func ZigZag(n int64) uint64 {
	return uint64(n<<1) ^ uint64(n>>63)
}

// UnZigZag inverts ZigZag.
func UnZigZag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}
