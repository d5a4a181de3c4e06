package nibsio_test

import (
	"bytes"
	"testing"

	"github.com/brimdata/nibs"
	nerr "github.com/brimdata/nibs/errors"
	"github.com/brimdata/nibs/nio"
	"github.com/brimdata/nibs/nio/nibsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream(t *testing.T) {
	var buf bytes.Buffer
	w := nibsio.NewWriter(nio.NopCloser(&buf), nibsio.WriterOpts{})
	require.NoError(t, w.Write(nibs.Int(1)))
	require.NoError(t, w.Write(nibs.String("hi")))
	assert.Equal(t, int64(4), w.BytesWritten())
	r, err := nibsio.NewReader(&buf)
	require.NoError(t, err)
	v, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, nibs.Int(1), v)
	v, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, nibs.String("hi"), v)
	v, err = r.Read()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestOptimizingWriter(t *testing.T) {
	var buf bytes.Buffer
	w := nibsio.NewWriter(nio.NopCloser(&buf), nibsio.WriterOpts{Optimize: true})
	doc := nibs.List{nibs.String("hello"), nibs.String("hello")}
	require.NoError(t, w.Write(doc))
	// The document is written as a scope.
	assert.Equal(t, byte(0xf0), buf.Bytes()[0]&0xf0)
	v, err := nibs.Decode(buf.Bytes())
	require.NoError(t, err)
	eq, err := nibs.Equal(doc, v)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestValidate(t *testing.T) {
	// A list whose only element carries a reserved tag.
	bad := []byte{0xb1, 0x40}
	r := nibsio.NewBytesReader(bad, nibsio.ReaderOpts{})
	_, err := r.Read()
	require.NoError(t, err)

	r = nibsio.NewBytesReader(bad, nibsio.ReaderOpts{Validate: true})
	_, err = r.Read()
	assert.True(t, nerr.Is(err, nerr.UnsupportedType))
	assert.Contains(t, err.Error(), "offset 0")
}

func TestValidateStrayBytes(t *testing.T) {
	// An array of two ints with a stray byte between them.  The ends of
	// the element area line up so only a full validation notices.
	doc := []byte{0xd6, 0x12, 0x00, 0x02, 0x02, 0x05, 0x04}
	r := nibsio.NewBytesReader(doc, nibsio.ReaderOpts{})
	v, err := r.Read()
	require.NoError(t, err)
	assert.IsType(t, &nibs.LazyArray{}, v)

	r = nibsio.NewBytesReader(doc, nibsio.ReaderOpts{Validate: true})
	_, err = r.Read()
	assert.True(t, nerr.Is(err, nerr.MalformedHeader), "%v", err)
	assert.Contains(t, err.Error(), "array element 1 at offset 2, expected 1")
}

func TestValidateCycle(t *testing.T) {
	r := nibsio.NewBytesReader([]byte{0xf5, 0x30, 0x11, 0x00, 0xb1, 0x30}, nibsio.ReaderOpts{Validate: true})
	v, err := r.Read()
	require.NoError(t, err)
	assert.IsType(t, &nibs.LazyList{}, v)
}
