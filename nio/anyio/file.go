package anyio

import (
	"fmt"
	"io"
	"os"

	"github.com/brimdata/nibs/nio"
)

// Stdin is the path that names standard input.
const Stdin = "-"

// Open opens path, or standard input for "-", and returns a reader of the
// documents in it.
func Open(path string, opts ReaderOpts) (nio.Reader, error) {
	var r io.Reader = os.Stdin
	if path != Stdin {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	if opts.Name == "" {
		opts.Name = path
	}
	nr, err := NewReaderWithOpts(r, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return nr, nil
}
