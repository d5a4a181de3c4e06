// Package nio defines readers and writers of Nibs documents along with
// helpers to connect them.
package nio

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/brimdata/nibs"
	"go.uber.org/multierr"
	"golang.org/x/exp/slices"
)

func Extension(format string) string {
	switch format {
	case "nibs":
		return ".nibs"
	case "tibs":
		return ".tibs"
	case "hex":
		return ".hex"
	default:
		return ""
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NopCloser returns a WriteCloser with a no-op Close method wrapping
// the provided Writer w.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopCloser{w}
}

// Reader wraps the Read method.
//
// Read returns the next document and a nil error, a nil document and the
// next error, or a nil document and nil error to indicate that no documents
// remain.
//
// Read never returns a non-nil document and non-nil error together, and it
// never returns io.EOF.
type Reader interface {
	Read() (nibs.Value, error)
}

type Writer interface {
	Write(nibs.Value) error
}

type ReadCloser interface {
	Reader
	io.Closer
}

type WriteCloser interface {
	Writer
	io.Closer
}

func NopReadCloser(r Reader) ReadCloser {
	return nopReadCloser{r}
}

type nopReadCloser struct {
	Reader
}

func (nopReadCloser) Close() error { return nil }

// ConcatReader returns a Reader that is the logical concatenation of readers,
// which are read sequentially.  Its Read method returns any non-nil error
// returned by a reader and returns end of stream after all readers have
// returned end of stream.
func ConcatReader(readers ...Reader) Reader {
	if len(readers) == 1 {
		return readers[0]
	}
	return &concatReader{slices.Clone(readers)}
}

type concatReader struct {
	readers []Reader
}

func (c *concatReader) Read() (nibs.Value, error) {
	for len(c.readers) > 0 {
		v, err := c.readers[0].Read()
		if v != nil || err != nil {
			return v, err
		}
		c.readers = c.readers[1:]
	}
	return nil, nil
}

// Counter counts the documents passing through a Reader.
type Counter struct {
	Reader
	n *int64
}

func NewCounter(r Reader, n *int64) *Counter {
	return &Counter{r, n}
}

func (c *Counter) Read() (nibs.Value, error) {
	v, err := c.Reader.Read()
	if v != nil {
		atomic.AddInt64(c.n, 1)
	}
	return v, err
}

// Copy copies src to dst a la io.Copy.
func Copy(dst Writer, src Reader) error {
	return CopyWithContext(context.Background(), dst, src)
}

func CopyWithContext(ctx context.Context, dst Writer, src Reader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := src.Read()
		if err != nil || v == nil {
			return err
		}
		if err := dst.Write(v); err != nil {
			return err
		}
	}
}

func CloseReaders(readers []Reader) error {
	var err error
	for _, reader := range readers {
		if closer, ok := reader.(io.Closer); ok {
			err = multierr.Append(err, closer.Close())
		}
	}
	return err
}
