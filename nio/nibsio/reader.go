// Package nibsio reads and writes concatenated binary Nibs documents.
package nibsio

import (
	"fmt"
	"io"

	"github.com/brimdata/nibs"
)

type ReaderOpts struct {
	// Validate checks the full structure of each document with
	// nibs.Validate as it is read rather than leaving errors to surface
	// from the lazy containers.
	Validate bool
}

type Reader struct {
	buf      []byte
	off      int
	validate bool
}

func NewReader(r io.Reader) (*Reader, error) {
	return NewReaderWithOpts(r, ReaderOpts{})
}

func NewReaderWithOpts(r io.Reader, opts ReaderOpts) (*Reader, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBytesReader(b, opts), nil
}

// NewBytesReader reads documents from b.  The returned documents reference b.
func NewBytesReader(b []byte, opts ReaderOpts) *Reader {
	return &Reader{buf: b, validate: opts.Validate}
}

func (r *Reader) Read() (nibs.Value, error) {
	if r.off >= len(r.buf) {
		return nil, nil
	}
	v, n, err := nibs.DecodePrefix(r.buf[r.off:])
	if err == nil && r.validate {
		err = nibs.Validate(r.buf[r.off : r.off+n])
	}
	if err != nil {
		return nil, fmt.Errorf("document at offset %d: %w", r.off, err)
	}
	r.off += n
	return v, nil
}
