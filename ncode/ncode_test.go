package ncode

import (
	"math"
	"testing"

	nerr "github.com/brimdata/nibs/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairWidths(t *testing.T) {
	cases := []struct {
		big  uint64
		size int
	}{
		{0, 1},
		{11, 1},
		{12, 2},
		{255, 2},
		{256, 3},
		{0xffff, 3},
		{0x10000, 5},
		{0xffffffff, 5},
		{0x100000000, 9},
		{math.MaxUint64, 9},
	}
	for _, c := range cases {
		b := AppendPair(nil, TypeUTF8, c.big)
		assert.Len(t, b, c.size, "big %d", c.big)
		assert.Equal(t, c.size, SizeOfPair(c.big), "big %d", c.big)
		p, n, err := DecodePair(b, 0)
		require.NoError(t, err)
		assert.Equal(t, c.size, n)
		assert.Equal(t, Pair{Small: TypeUTF8, Big: c.big}, p)
	}
}

func TestPairBytes(t *testing.T) {
	assert.Equal(t, []byte{0x02}, AppendPair(nil, TypeZigZag, 2))
	assert.Equal(t, []byte{0x0c, 0x54}, AppendPair(nil, TypeZigZag, 84))
	assert.Equal(t, []byte{0x0d, 0xe8, 0x03}, AppendPair(nil, TypeZigZag, 1000))
	assert.Equal(t, []byte{0x9e, 0x00, 0x00, 0x01, 0x00}, AppendPair(nil, TypeUTF8, 0x10000))
	assert.Equal(t, []byte{0x1f, 0, 0, 0, 0, 0, 0, 0, 0}, AppendPair64(nil, TypeFloat, 0))
}

func TestDecodeNonMinimal(t *testing.T) {
	// A 4-byte extension holding 5 still decodes to 5.
	p, n, err := DecodePair([]byte{0x0e, 5, 0, 0, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, uint64(5), p.Big)
}

func TestDecodePairShort(t *testing.T) {
	for _, b := range [][]byte{{}, {0x0c}, {0x0d, 1}, {0x0e, 1, 2, 3}, {0x0f, 1, 2, 3, 4, 5, 6, 7}} {
		_, _, err := DecodePair(b, 0)
		assert.True(t, nerr.Is(err, nerr.MalformedHeader), "%x", b)
	}
}

func TestZigZag(t *testing.T) {
	cases := []struct {
		n int64
		u uint64
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{math.MaxInt64, 0xfffffffffffffffe},
		{math.MinInt64, 0xffffffffffffffff},
	}
	for _, c := range cases {
		assert.Equal(t, c.u, ZigZag(c.n))
		assert.Equal(t, c.n, UnZigZag(c.u))
	}
}

func TestSkip(t *testing.T) {
	// "Tim" as UTF8, then an integer.
	buf := []byte{0x93, 'T', 'i', 'm', 0x0c, 0x54}
	off, err := Skip(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, off)
	off, err = Skip(buf, off)
	require.NoError(t, err)
	assert.Equal(t, 6, off)
	_, err = Skip([]byte{0x95, 'a'}, 0)
	assert.True(t, nerr.Is(err, nerr.MalformedHeader))
	// A float header carries no body.
	off, err = Skip(AppendPair64(nil, TypeFloat, math.Float64bits(1.5)), 0)
	require.NoError(t, err)
	assert.Equal(t, 9, off)
}

func TestIter(t *testing.T) {
	var buf []byte
	buf = AppendPair(buf, TypeZigZag, 2)
	buf = append(AppendPair(buf, TypeUTF8, 2), 'h', 'i')
	buf = AppendPair(buf, TypeSimple, SimpleNull)
	it := NewIter(buf)
	var offs []int
	for !it.Done() {
		off, val, err := it.Next()
		require.NoError(t, err)
		offs = append(offs, off)
		assert.NotEmpty(t, val)
	}
	assert.Equal(t, []int{0, 1, 4}, offs)
	n, err := Count(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestIndex(t *testing.T) {
	assert.Equal(t, 1, WidthFor(0xff))
	assert.Equal(t, 2, WidthFor(0x100))
	assert.Equal(t, 4, WidthFor(0x10000))
	assert.Equal(t, 8, WidthFor(0x100000000))
	offsets := []uint64{0, 3, 300}
	buf := AppendIndex(nil, WidthFor(300), offsets)
	assert.Equal(t, SizeOfIndex(2, 3), len(buf))
	assert.Equal(t, []byte{0x26, 0, 0, 3, 0, 0x2c, 0x01}, buf)
	x, n, err := ParseIndex(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, 3, x.Count)
	for i, off := range offsets {
		assert.Equal(t, off, x.Pointer(i))
	}
}

func TestParseIndexRejects(t *testing.T) {
	// width 3
	_, _, err := ParseIndex([]byte{0x33, 0, 0, 0})
	assert.True(t, nerr.Is(err, nerr.MalformedHeader))
	// length 3 with width 2
	_, _, err = ParseIndex([]byte{0x23, 0, 0, 0})
	assert.True(t, nerr.Is(err, nerr.MalformedHeader))
	// table runs past the buffer
	_, _, err = ParseIndex([]byte{0x14, 0, 0})
	assert.True(t, nerr.Is(err, nerr.MalformedHeader))
}
