package tibs

import (
	"bytes"
	"io"
	"unicode"
	"unicode/utf8"

	nerr "github.com/brimdata/nibs/errors"
)

// Lexer is a cursor over Tibs text.  Whitespace and // and /* */ comments
// are skipped between tokens.
type Lexer struct {
	buffer []byte
	cursor []byte
	name   string
}

func NewLexer(r io.Reader, name string) (*Lexer, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &Lexer{
		buffer: b,
		cursor: b,
		name:   name,
	}, nil
}

func (l *Lexer) skip(n int) {
	l.cursor = l.cursor[n:]
}

func (l *Lexer) offset() int {
	return len(l.buffer) - len(l.cursor)
}

// errorf returns a Syntax error positioned at the cursor.
func (l *Lexer) errorf(format string, args ...interface{}) error {
	line, col := 1, 1
	for _, r := range string(l.buffer[:l.offset()]) {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	args = append([]interface{}{nerr.Syntax, "%s:%d:%d: " + format, l.name, line, col}, args...)
	return nerr.E(args...)
}

func (l *Lexer) unexpected() error {
	if len(l.cursor) == 0 {
		return l.errorf("unexpected end of input")
	}
	r, _ := utf8.DecodeRune(l.cursor)
	return l.errorf("unexpected %q", r)
}

func (l *Lexer) done() bool {
	return len(l.cursor) == 0
}

// peek returns the next non-space byte without consuming it.
func (l *Lexer) peek() (byte, error) {
	if err := l.skipSpace(); err != nil {
		return 0, err
	}
	if len(l.cursor) == 0 {
		return 0, io.EOF
	}
	return l.cursor[0], nil
}

func (l *Lexer) match(b byte) (bool, error) {
	if err := l.skipSpace(); err != nil {
		return false, err
	}
	return l.matchTight(b), nil
}

func (l *Lexer) matchTight(b byte) bool {
	if len(l.cursor) > 0 && l.cursor[0] == b {
		l.skip(1)
		return true
	}
	return false
}

func (l *Lexer) matchBytesTight(b []byte) bool {
	if bytes.HasPrefix(l.cursor, b) {
		l.skip(len(b))
		return true
	}
	return false
}

// matchWord matches a keyword that is not followed by another letter.
func (l *Lexer) matchWord(word string) bool {
	n := len(word)
	if len(l.cursor) < n || string(l.cursor[:n]) != word {
		return false
	}
	if len(l.cursor) > n {
		if r, _ := utf8.DecodeRune(l.cursor[n:]); unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	l.skip(n)
	return true
}

var slashCommentStart = []byte("//")
var starCommentStart = []byte("/*")

func (l *Lexer) skipSpace() error {
	for len(l.cursor) > 0 {
		r, n := utf8.DecodeRune(l.cursor)
		if unicode.IsSpace(r) {
			l.skip(n)
			continue
		}
		if r == '/' {
			if l.matchBytesTight(slashCommentStart) {
				l.skipLine()
				continue
			}
			if l.matchBytesTight(starCommentStart) {
				if err := l.skipMultiLine(); err != nil {
					return err
				}
				continue
			}
		}
		return nil
	}
	return nil
}

func (l *Lexer) skipLine() {
	if off := bytes.IndexByte(l.cursor, '\n'); off >= 0 {
		l.skip(off + 1)
		return
	}
	l.cursor = l.cursor[len(l.cursor):]
}

func (l *Lexer) skipMultiLine() error {
	off := bytes.Index(l.cursor, []byte("*/"))
	if off < 0 {
		return l.errorf("unterminated comment")
	}
	l.skip(off + 2)
	return nil
}

// scanWhile returns the longest prefix of the cursor whose bytes satisfy
// pred and advances past it.
func (l *Lexer) scanWhile(pred func(byte) bool) []byte {
	n := 0
	for n < len(l.cursor) && pred(l.cursor[n]) {
		n++
	}
	b := l.cursor[:n]
	l.skip(n)
	return b
}

// scanString returns a double-quoted string token, quotes included.
// Newlines may not appear inside it.
func (l *Lexer) scanString() ([]byte, error) {
	for off := 1; off < len(l.cursor); off++ {
		switch l.cursor[off] {
		case '"':
			s := l.cursor[:off+1]
			l.skip(off + 1)
			return s, nil
		case '\\':
			off++
		case '\n', '\r':
			l.skip(off)
			return nil, l.errorf("newline in string")
		}
	}
	l.cursor = l.cursor[len(l.cursor):]
	return nil, l.errorf("unterminated string")
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isNumberByte(c byte) bool {
	return isDigit(c) || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E'
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
