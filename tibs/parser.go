// Package tibs implements Tibs, the text notation for Nibs values.
//
// Tibs is JSON extended with the remaining Nibs types: nan, inf and -inf
// floats, <hex> byte strings, &N references, [# ...] arrays, {# ...} tries
// and (value, ref0, ref1, ...) scopes.  Trailing commas and // or /* */
// comments are allowed.
package tibs

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/brimdata/nibs"
)

type Parser struct {
	lexer *Lexer
}

func NewParser(r io.Reader) (*Parser, error) {
	return NewNamedParser(r, "tibs")
}

// NewNamedParser is like NewParser but errors are prefixed with name.
func NewNamedParser(r io.Reader, name string) (*Parser, error) {
	l, err := NewLexer(r, name)
	if err != nil {
		return nil, err
	}
	return &Parser{l}, nil
}

// Parse parses exactly one value from s.
func Parse(s string) (nibs.Value, error) {
	p, err := NewParser(strings.NewReader(s))
	if err != nil {
		return nil, err
	}
	v, err := p.ParseValue()
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, p.lexer.unexpected()
	}
	if err := p.lexer.skipSpace(); err != nil {
		return nil, err
	}
	if !p.lexer.done() {
		return nil, p.lexer.unexpected()
	}
	return v, nil
}

// ParseValue returns the next value of a whitespace-separated stream or nil
// at end of input.
func (p *Parser) ParseValue() (nibs.Value, error) {
	if err := p.lexer.skipSpace(); err != nil {
		return nil, err
	}
	if p.lexer.done() {
		return nil, nil
	}
	return p.parseValue()
}

func (p *Parser) parseValue() (nibs.Value, error) {
	v, err := p.matchValue()
	if err == io.EOF {
		return nil, p.lexer.unexpected()
	}
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, p.lexer.unexpected()
	}
	return v, nil
}

func (p *Parser) matchValue() (nibs.Value, error) {
	c, err := p.lexer.peek()
	if err != nil {
		return nil, err
	}
	switch c {
	case '[':
		return p.parseList()
	case '{':
		return p.parseMap()
	case '(':
		return p.parseScope()
	case '<':
		return p.parseBytes()
	case '&':
		return p.parseRef()
	case '"':
		return p.parseString()
	}
	return p.matchPrimitive()
}

func (p *Parser) matchPrimitive() (nibs.Value, error) {
	l := p.lexer
	switch {
	case l.matchWord("null"):
		return nibs.Null{}, nil
	case l.matchWord("true"):
		return nibs.Bool(true), nil
	case l.matchWord("false"):
		return nibs.Bool(false), nil
	case l.matchWord("nan"):
		return nibs.Float(math.NaN()), nil
	case l.matchWord("inf"):
		return nibs.Float(math.Inf(1)), nil
	case l.matchWord("-inf"):
		return nibs.Float(math.Inf(-1)), nil
	}
	if c := l.cursor[0]; c != '-' && !isDigit(c) {
		return nil, nil
	}
	tok := string(l.scanWhile(isNumberByte))
	if !strings.ContainsAny(tok, ".eE") {
		if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
			return nibs.Int(i), nil
		}
	}
	// Integers that overflow int64 fall back to floats as in JSON.
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil && !isRangeError(err) {
		return nil, l.errorf("invalid number %q", tok)
	}
	return nibs.Float(f), nil
}

func isRangeError(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

func (p *Parser) parseString() (nibs.Value, error) {
	tok, err := p.lexer.scanString()
	if err != nil {
		return nil, err
	}
	var s string
	if err := json.Unmarshal(tok, &s); err != nil {
		return nil, p.lexer.errorf("invalid string %s", tok)
	}
	return nibs.String(s), nil
}

// parseBytes parses <hex> where the hex digits may be separated by
// whitespace.
func (p *Parser) parseBytes() (nibs.Value, error) {
	l := p.lexer
	l.skip(1)
	var b []byte
	var hi byte
	var odd bool
	for {
		if err := l.skipSpace(); err != nil {
			return nil, err
		}
		if l.done() {
			return nil, l.errorf("unterminated byte string")
		}
		c := l.cursor[0]
		if c == '>' {
			l.skip(1)
			break
		}
		nib, ok := unhex(c)
		if !ok {
			return nil, l.errorf("invalid hex digit %q in byte string", c)
		}
		l.skip(1)
		if odd {
			b = append(b, hi<<4|nib)
		} else {
			hi = nib
		}
		odd = !odd
	}
	if odd {
		return nil, l.errorf("odd number of hex digits in byte string")
	}
	if b == nil {
		b = []byte{}
	}
	return nibs.Bytes(b), nil
}

func (p *Parser) parseRef() (nibs.Value, error) {
	l := p.lexer
	l.skip(1)
	tok := l.scanWhile(isDigit)
	if len(tok) == 0 {
		return nil, l.errorf("reference requires a non-negative integer")
	}
	id, err := strconv.ParseUint(string(tok), 10, 64)
	if err != nil {
		return nil, l.errorf("invalid reference &%s", tok)
	}
	return nibs.Ref(id), nil
}

// parseElems parses comma-separated values up to close.  A trailing comma
// is allowed.
func (p *Parser) parseElems(close byte) ([]nibs.Value, error) {
	vals := []nibs.Value{}
	for {
		ok, err := p.lexer.match(close)
		if err != nil {
			return nil, err
		}
		if ok {
			return vals, nil
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
		if err := p.matchSeparator(close); err != nil {
			return nil, err
		}
	}
}

// matchSeparator consumes a comma or leaves the closing delimiter in place.
func (p *Parser) matchSeparator(close byte) error {
	ok, err := p.lexer.match(',')
	if err != nil || ok {
		return err
	}
	c, err := p.lexer.peek()
	if err == io.EOF || (err == nil && c != close) {
		return p.lexer.unexpected()
	}
	return err
}

func (p *Parser) parseList() (nibs.Value, error) {
	l := p.lexer
	l.skip(1)
	indexed := l.matchTight('#')
	vals, err := p.parseElems(']')
	if err != nil {
		return nil, err
	}
	if indexed {
		return nibs.Array(vals), nil
	}
	return nibs.List(vals), nil
}

func (p *Parser) parseMap() (nibs.Value, error) {
	l := p.lexer
	l.skip(1)
	indexed := l.matchTight('#')
	entries := []nibs.Entry{}
	for {
		ok, err := l.match('}')
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		key, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		ok, err = l.match(':')
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, l.errorf("expected ':' after map key")
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		entries = append(entries, nibs.Entry{Key: key, Value: val})
		if err := p.matchSeparator('}'); err != nil {
			return nil, err
		}
	}
	if indexed {
		return nibs.Trie(entries), nil
	}
	return nibs.Map(entries), nil
}

// parseScope parses (value, ref0, ref1, ...).
func (p *Parser) parseScope() (nibs.Value, error) {
	p.lexer.skip(1)
	vals, err := p.parseElems(')')
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, p.lexer.errorf("scope requires a value")
	}
	return &nibs.Scope{Value: vals[0], Refs: vals[1:]}, nil
}
