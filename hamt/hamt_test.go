package hamt

import (
	"fmt"
	"testing"

	nerr "github.com/brimdata/nibs/errors"
	"github.com/brimdata/nibs/ncode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utf8Key(s string) []byte {
	return append(ncode.AppendPair(nil, ncode.TypeUTF8, uint64(len(s))), s...)
}

func TestBuildSmall(t *testing.T) {
	entries := []Entry{
		{Key: utf8Key("a"), Offset: 0},
		{Key: utf8Key("b"), Offset: 3},
		{Key: utf8Key("c"), Offset: 6},
	}
	x, err := Build(entries, Options{TrialBudget: -1})
	require.NoError(t, err)
	assert.Equal(t, uint(3), x.Power)
	assert.Equal(t, uint64(0), x.Seed)
	// All three keys land in distinct root slots (5, 7 and 6) so the index
	// is one node: the slots high to low, the bitfield, then the seed.
	assert.Equal(t, []byte{0x15, 0x83, 0x86, 0x80, 0xe0, 0x00}, x.AppendTo(nil))
	assert.Equal(t, 6, x.Size())
}

func TestBuildEmpty(t *testing.T) {
	x, err := Build(nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x00, 0x00}, x.AppendTo(nil))
	r, n, err := Parse(x.AppendTo(nil))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	_, ok, err := r.Lookup(utf8Key("x"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLookupMany(t *testing.T) {
	for _, count := range []int{1, 2, 7, 50, 300, 2000} {
		t.Run(fmt.Sprint(count), func(t *testing.T) {
			var entries []Entry
			var off uint64
			for i := 0; i < count; i++ {
				key := utf8Key(fmt.Sprintf("key-%d", i))
				entries = append(entries, Entry{Key: key, Offset: off})
				off += uint64(len(key) + 1)
			}
			x, err := Build(entries, Options{})
			require.NoError(t, err)
			buf := x.AppendTo(nil)
			r, n, err := Parse(buf)
			require.NoError(t, err)
			assert.Equal(t, len(buf), n)
			assert.Equal(t, x.Seed, r.Seed())
			assert.Equal(t, x.Power, r.Power())
			for _, e := range entries {
				got, ok, err := r.Lookup(e.Key)
				require.NoError(t, err)
				require.True(t, ok, "%s", e.Key)
				assert.Equal(t, e.Offset, got)
			}
		})
	}
}

func TestMinimumPowerFollowsOffsets(t *testing.T) {
	// An offset of 200 does not fit beside the leaf bit of a byte.
	x, err := Build([]Entry{{Key: utf8Key("a"), Offset: 200}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, uint(4), x.Power)
}

func TestSeedSelection(t *testing.T) {
	entries := []Entry{{Key: utf8Key("a"), Offset: 0}}
	x, err := Build(entries, Options{SeedStart: 300, TrialBudget: -1})
	require.NoError(t, err)
	// Seed 300 needs at least 16-bit words.
	assert.Equal(t, uint(4), x.Power)
	assert.Equal(t, uint64(300), x.Seed)
}

func TestDuplicateKeysFirstWins(t *testing.T) {
	entries := []Entry{
		{Key: utf8Key("a"), Offset: 0},
		{Key: utf8Key("a"), Offset: 5},
	}
	x, err := Build(entries, Options{TrialBudget: -1})
	require.NoError(t, err)
	r, _, err := Parse(x.AppendTo(nil))
	require.NoError(t, err)
	off, ok, err := r.Lookup(utf8Key("a"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(0), off)
}

func TestNoViableEncoding(t *testing.T) {
	_, err := Build([]Entry{{Key: utf8Key("a"), Offset: 1 << 63}}, Options{})
	assert.True(t, nerr.Is(err, nerr.NoViableEncoding))
}

func TestParseRejects(t *testing.T) {
	_, _, err := Parse([]byte{0x11, 0x00})
	assert.True(t, nerr.Is(err, nerr.MalformedHeader))
	// A bitfield claiming three slots in a two-word index.
	r, _, err := Parse([]byte{0x12, 0x07, 0x00})
	require.NoError(t, err)
	_, _, err = r.LookupHash(0)
	assert.True(t, nerr.Is(err, nerr.MalformedHeader))
}

func TestDefaultTrialBudget(t *testing.T) {
	assert.Equal(t, 255, DefaultTrialBudget(0))
	assert.Equal(t, 40, DefaultTrialBudget(100))
	assert.Equal(t, 1, DefaultTrialBudget(100000))
}

func BenchmarkBuild(b *testing.B) {
	var entries []Entry
	for i := 0; i < 100; i++ {
		entries = append(entries, Entry{Key: utf8Key(fmt.Sprintf("k%d", i)), Offset: uint64(i * 5)})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Build(entries, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
