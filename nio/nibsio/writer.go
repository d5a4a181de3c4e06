package nibsio

import (
	"io"

	"github.com/brimdata/nibs"
)

type WriterOpts struct {
	Encoder nibs.Config
	// Optimize deduplicates each document with nibs.Optimize before it is
	// encoded.
	Optimize        bool
	OptimizeOptions nibs.OptimizeOptions
}

type Writer struct {
	writer  io.WriteCloser
	encoder *nibs.Encoder
	opts    WriterOpts
	buffer  []byte
	written int64
}

func NewWriter(w io.WriteCloser, opts WriterOpts) *Writer {
	if opts.OptimizeOptions.IndexLimit == 0 {
		opts.OptimizeOptions.IndexLimit = opts.Encoder.IndexLimit
	}
	if opts.OptimizeOptions.Logger == nil {
		opts.OptimizeOptions.Logger = opts.Encoder.Logger
	}
	return &Writer{
		writer:  w,
		encoder: nibs.NewEncoder(opts.Encoder),
		opts:    opts,
	}
}

func (w *Writer) Write(v nibs.Value) error {
	if w.opts.Optimize {
		var err error
		if v, err = nibs.Optimize(v, w.opts.OptimizeOptions); err != nil {
			return err
		}
	}
	b, err := w.encoder.Append(w.buffer[:0], v)
	if err != nil {
		return err
	}
	w.buffer = b
	n, err := w.writer.Write(b)
	w.written += int64(n)
	return err
}

// BytesWritten returns the number of encoded bytes written so far.
func (w *Writer) BytesWritten() int64 {
	return w.written
}

func (w *Writer) Close() error {
	return w.writer.Close()
}
