package tibsio

import (
	"io"

	"github.com/brimdata/nibs"
	"github.com/brimdata/nibs/tibs"
)

type WriterOpts struct {
	Pretty int
}

type Writer struct {
	writer    io.WriteCloser
	formatter *tibs.Formatter
}

func NewWriter(w io.WriteCloser, opts WriterOpts) *Writer {
	return &Writer{
		formatter: tibs.NewFormatter(opts.Pretty),
		writer:    w,
	}
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func (w *Writer) Write(v nibs.Value) error {
	s, err := w.formatter.Format(v)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w.writer, s+"\n")
	return err
}
