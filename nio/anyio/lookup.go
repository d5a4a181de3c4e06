package anyio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/brimdata/nibs"
	"github.com/brimdata/nibs/nio"
	"github.com/brimdata/nibs/nio/hexio"
	"github.com/brimdata/nibs/nio/nibsio"
	"github.com/brimdata/nibs/nio/tibsio"
)

func lookupReader(b []byte, opts ReaderOpts) (nio.Reader, error) {
	switch opts.Format {
	case "nibs":
		return nibsio.NewBytesReader(b, opts.Nibs), nil
	case "tibs":
		name := opts.Name
		if name == "" {
			name = "tibs"
		}
		return tibsio.NewNamedReader(bytes.NewReader(b), name)
	case "hex":
		return hexio.NewReader(bytes.NewReader(b)), nil
	}
	return nil, fmt.Errorf("no such format: \"%s\"", opts.Format)
}

type WriterOpts struct {
	Format string
	Nibs   nibsio.WriterOpts
	Tibs   tibsio.WriterOpts
}

// NewWriter returns a writer of the format named by opts.Format.
func NewWriter(w io.WriteCloser, opts WriterOpts) (nio.WriteCloser, error) {
	switch opts.Format {
	case "nibs", "":
		return nibsio.NewWriter(w, opts.Nibs), nil
	case "tibs":
		return tibsio.NewWriter(w, opts.Tibs), nil
	case "hex":
		return &optimizer{hexio.NewWriter(w, opts.Nibs.Encoder), opts.Nibs}, nil
	}
	return nil, fmt.Errorf("unknown format: %s", opts.Format)
}

// optimizer applies the nibs writer's optimization settings ahead of
// another encoding writer.
type optimizer struct {
	nio.WriteCloser
	opts nibsio.WriterOpts
}

func (o *optimizer) Write(v nibs.Value) error {
	if o.opts.Optimize {
		var err error
		if v, err = nibs.Optimize(v, o.opts.OptimizeOptions); err != nil {
			return err
		}
	}
	return o.WriteCloser.Write(v)
}
