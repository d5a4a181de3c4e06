// Package xxh64 implements the 64-bit xxHash algorithm with an explicit seed.
//
// Output is bit-exact to the reference XXH64 description: inputs of 32 bytes
// or more are consumed in 32-byte stripes by four interleaved accumulators,
// shorter inputs start from a seed-derived accumulator, and the remainder is
// folded in 8, 4 and 1 byte steps before the avalanche.  All arithmetic wraps
// modulo 2^64.
package xxh64

import (
	"encoding/binary"
	"math/bits"
)

const (
	prime1 uint64 = 0x9E3779B185EBCA87
	prime2 uint64 = 0xC2B2AE3D27D4EB4F
	prime3 uint64 = 0x165667B19E3779F9
	prime4 uint64 = 0x85EBCA77C2B2AE63
	prime5 uint64 = 0x27D4EB2F165667C5
)

// Size is the size of an XXH64 checksum in bytes.
const Size = 8

// BlockSize is the stripe size consumed by the accumulators.
const BlockSize = 32

// Sum64 returns the XXH64 hash of b using seed.
func Sum64(b []byte, seed uint64) uint64 {
	n := len(b)
	var h uint64
	if n >= BlockSize {
		v1 := seed + prime1 + prime2
		v2 := seed + prime2
		v3 := seed
		v4 := seed - prime1
		for len(b) >= BlockSize {
			v1 = round(v1, u64(b[0:8]))
			v2 = round(v2, u64(b[8:16]))
			v3 = round(v3, u64(b[16:24]))
			v4 = round(v4, u64(b[24:32]))
			b = b[BlockSize:]
		}
		h = converge(v1, v2, v3, v4)
	} else {
		h = seed + prime5
	}
	h += uint64(n)
	return finalize(h, b)
}

func converge(v1, v2, v3, v4 uint64) uint64 {
	h := bits.RotateLeft64(v1, 1) + bits.RotateLeft64(v2, 7) +
		bits.RotateLeft64(v3, 12) + bits.RotateLeft64(v4, 18)
	h = mergeRound(h, v1)
	h = mergeRound(h, v2)
	h = mergeRound(h, v3)
	h = mergeRound(h, v4)
	return h
}

// finalize folds in the tail (fewer than 32 bytes) and avalanches.
func finalize(h uint64, tail []byte) uint64 {
	for ; len(tail) >= 8; tail = tail[8:] {
		h ^= round(0, u64(tail))
		h = bits.RotateLeft64(h, 27)*prime1 + prime4
	}
	if len(tail) >= 4 {
		h ^= uint64(binary.LittleEndian.Uint32(tail)) * prime1
		h = bits.RotateLeft64(h, 23)*prime2 + prime3
		tail = tail[4:]
	}
	for _, c := range tail {
		h ^= uint64(c) * prime5
		h = bits.RotateLeft64(h, 11) * prime1
	}
	h ^= h >> 33
	h *= prime2
	h ^= h >> 29
	h *= prime3
	h ^= h >> 32
	return h
}

func round(acc, input uint64) uint64 {
	acc += input * prime2
	acc = bits.RotateLeft64(acc, 31)
	return acc * prime1
}

func mergeRound(acc, val uint64) uint64 {
	acc ^= round(0, val)
	return acc*prime1 + prime4
}

func u64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}
