// Package tibsio reads and writes documents in the Tibs text notation.
package tibsio

import (
	"io"

	"github.com/brimdata/nibs"
	"github.com/brimdata/nibs/tibs"
)

type Reader struct {
	parser *tibs.Parser
}

func NewReader(r io.Reader) (*Reader, error) {
	return NewNamedReader(r, "tibs")
}

// NewNamedReader is like NewReader but syntax errors are prefixed with name.
func NewNamedReader(r io.Reader, name string) (*Reader, error) {
	p, err := tibs.NewNamedParser(r, name)
	if err != nil {
		return nil, err
	}
	return &Reader{p}, nil
}

func (r *Reader) Read() (nibs.Value, error) {
	return r.parser.ParseValue()
}
