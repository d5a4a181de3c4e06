package xxh64

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vectors = []struct {
	input string
	seed  uint64
	sum   uint64
}{
	{"", 0, 0xef46db3751d8e999},
	{"", 1, 0xd5afba1336a3be4b},
	{"a", 0, 0xd24ec4f1a98c6e5b},
	{"as", 0, 0x1c330fb2d66be179},
	{"asd", 0, 0x631c37ce72a97393},
	{"asdf", 0, 0x415872f599cea71e},
	{"Call me Ishmael.", 0, 0x6d04390fc9d61a90},
	{"Some years ago--never mind how long precisely-", 0, 0x8f26f2b986afdc52},
	// 63 bytes: one stripe plus 8, 4 and 1 byte tails.
	{"Call me Ishmael. Some years ago--never mind how long precisely-", 0, 0x02a2e85470d6fd96},
	{"0123456789abcdef", 0, 0x5c5b90c34e376d0b},
	{"0123456789abcdef0123456789abcdef", 0, 0x642a94958e71e6c5},
	// 64 bytes: exactly two stripes and an empty tail.
	{"0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", 0, 0x1af3ac4760fe2f85},
	{"0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", 1, 0x717da041e097c0ea},
}

func TestSum64Vectors(t *testing.T) {
	for _, v := range vectors {
		t.Run(fmt.Sprintf("%d/%d", len(v.input), v.seed), func(t *testing.T) {
			assert.Equal(t, v.sum, Sum64([]byte(v.input), v.seed))
		})
	}
}

func TestSum64MatchesReference(t *testing.T) {
	var buf []byte
	for n := 0; n <= 200; n++ {
		assert.Equal(t, xxhash.Sum64(buf), Sum64(buf, 0), "length %d", n)
		buf = append(buf, byte(n*7+3))
	}
}

func TestDigestChunking(t *testing.T) {
	data := bytes.Repeat([]byte("nibs-hamt-"), 23)
	for _, seed := range []uint64{0, 1, 0xdeadbeef} {
		want := Sum64(data, seed)
		for _, chunk := range []int{1, 3, 7, 31, 32, 33, 64, len(data)} {
			d := New(seed)
			for b := data; len(b) > 0; {
				n := chunk
				if n > len(b) {
					n = len(b)
				}
				_, err := d.Write(b[:n])
				require.NoError(t, err)
				b = b[n:]
			}
			assert.Equal(t, want, d.Sum64(), "seed %d chunk %d", seed, chunk)
		}
	}
}

func TestDigestReset(t *testing.T) {
	d := New(1)
	d.Write([]byte("garbage"))
	d.Reset()
	assert.Equal(t, uint64(0xd5afba1336a3be4b), d.Sum64())
	assert.Equal(t, []byte{0xd5, 0xaf, 0xba, 0x13, 0x36, 0xa3, 0xbe, 0x4b}, d.Sum(nil))
	assert.Equal(t, Size, d.Size())
	assert.Equal(t, BlockSize, d.BlockSize())
}

func BenchmarkSum64(b *testing.B) {
	for _, n := range []int{8, 32, 1024} {
		buf := make([]byte, n)
		b.Run(fmt.Sprint(n), func(b *testing.B) {
			b.SetBytes(int64(n))
			for i := 0; i < b.N; i++ {
				Sum64(buf, uint64(i))
			}
		})
	}
}
