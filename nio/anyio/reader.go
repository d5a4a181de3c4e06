// Package anyio opens readers and writers by format name and detects the
// format of input documents.
package anyio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/brimdata/nibs/nio"
	"github.com/brimdata/nibs/nio/hexio"
	"github.com/brimdata/nibs/nio/nibsio"
	"github.com/brimdata/nibs/nio/tibsio"
)

var ErrInputTooLarge = errors.New("input exceeds maximum size")

type ReaderOpts struct {
	Format string
	// MaxSize bounds the bytes read from the input.  Zero means no limit.
	MaxSize int64
	Nibs    nibsio.ReaderOpts
	// Name identifies the input in syntax errors.
	Name string
}

// NewReaderWithOpts reads all of r, up to opts.MaxSize, and returns a
// reader of the documents it holds.  If opts.Format is empty or "auto",
// the format is detected.
func NewReaderWithOpts(r io.Reader, opts ReaderOpts) (nio.Reader, error) {
	b, err := readAll(r, opts.MaxSize)
	if err != nil {
		return nil, err
	}
	if opts.Format != "" && opts.Format != "auto" {
		return lookupReader(b, opts)
	}
	return detect(b, opts)
}

func NewReader(r io.Reader) (nio.Reader, error) {
	return NewReaderWithOpts(r, ReaderOpts{})
}

func readAll(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > max {
		return nil, fmt.Errorf("%w (%d bytes)", ErrInputTooLarge, max)
	}
	return b, nil
}

func detect(b []byte, opts ReaderOpts) (nio.Reader, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nibsio.NewBytesReader(nil, opts.Nibs), nil
	}
	// Text rarely decodes as binary Nibs since digits are refs outside any
	// scope and letters carry reserved tags, so binary is tried first with
	// full validation.
	nibsOpts := opts.Nibs
	nibsOpts.Validate = true
	nibsErr := match(nibsio.NewBytesReader(b, nibsOpts), "nibs", 10)
	if nibsErr == nil {
		return nibsio.NewBytesReader(b, opts.Nibs), nil
	}

	// Tibs comes before hex since a line of digits is valid in both and
	// is more likely meant as numbers.
	tibsErr := matchTibs(b, opts.Name)
	if tibsErr == nil {
		return lookupReader(b, ReaderOpts{Format: "tibs", Name: opts.Name})
	}

	hexErr := match(hexio.NewReader(bytes.NewReader(b)), "hex", 10)
	if hexErr == nil {
		return hexio.NewReader(bytes.NewReader(b)), nil
	}
	return nil, joinErrs([]error{nibsErr, tibsErr, hexErr})
}

func matchTibs(b []byte, name string) error {
	r, err := tibsio.NewNamedReader(bytes.NewReader(b), name)
	if err != nil {
		return err
	}
	return match(r, "tibs", 100)
}

func joinErrs(errs []error) error {
	s := "format detection error"
	for _, e := range errs {
		s += "\n\t" + e.Error()
	}
	return errors.New(s)
}

func match(r nio.Reader, name string, want int) error {
	for i := 0; i < want; i++ {
		v, err := r.Read()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if v == nil {
			if i == 0 {
				return fmt.Errorf("%s: no documents", name)
			}
			return nil
		}
	}
	return nil
}
