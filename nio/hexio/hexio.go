// Package hexio reads and writes binary Nibs documents as lines of hex,
// one document per line.  Whitespace within a line is ignored.
package hexio

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/brimdata/nibs"
)

type Reader struct {
	scanner *bufio.Scanner
	line    int
}

func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(nil, 64*1024*1024)
	return &Reader{scanner: s}
}

func (r *Reader) Read() (nibs.Value, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, r.scanner.Text())
		if text == "" {
			continue
		}
		b, err := hex.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		v, err := nibs.Decode(b)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		return v, nil
	}
	return nil, r.scanner.Err()
}

type Writer struct {
	writer  io.WriteCloser
	encoder *nibs.Encoder
	buffer  []byte
}

func NewWriter(w io.WriteCloser, c nibs.Config) *Writer {
	return &Writer{
		writer:  w,
		encoder: nibs.NewEncoder(c),
	}
}

func (w *Writer) Write(v nibs.Value) error {
	b, err := w.encoder.Append(w.buffer[:0], v)
	if err != nil {
		return err
	}
	w.buffer = b
	_, err = io.WriteString(w.writer, hex.EncodeToString(b)+"\n")
	return err
}

func (w *Writer) Close() error {
	return w.writer.Close()
}
