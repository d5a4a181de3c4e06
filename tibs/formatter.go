package tibs

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/brimdata/nibs"
	nerr "github.com/brimdata/nibs/errors"
)

// Formatter renders values as Tibs.  With a positive pretty setting,
// containers are broken across lines and indented by that many spaces.
type Formatter struct {
	tab     int
	newline string
	colon   string
	builder strings.Builder
	// Lazy containers being formatted, for cycle detection.
	active map[nibs.Value]struct{}
}

func NewFormatter(pretty int) *Formatter {
	var newline, colon string
	if pretty > 0 {
		newline = "\n"
		colon = " "
	}
	return &Formatter{
		tab:     pretty,
		newline: newline,
		colon:   colon,
		active:  make(map[nibs.Value]struct{}),
	}
}

// Format renders v on a single line.
func Format(v nibs.Value) (string, error) {
	return NewFormatter(0).Format(v)
}

// String is like Format but renders errors in place of the value.
func String(v nibs.Value) string {
	s, err := Format(v)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return s
}

func (f *Formatter) Format(v nibs.Value) (string, error) {
	f.builder.Reset()
	if err := f.formatValue(0, v); err != nil {
		return "", err
	}
	return f.builder.String(), nil
}

func (f *Formatter) formatValue(indent int, v nibs.Value) error {
	switch v := v.(type) {
	case nil:
		return nerr.E(nerr.UnsupportedType, "cannot format nil value")
	case nibs.Int:
		f.build(strconv.FormatInt(int64(v), 10))
	case nibs.Float:
		f.build(formatFloat(float64(v)))
	case nibs.Bool:
		f.build(strconv.FormatBool(bool(v)))
	case nibs.Null:
		f.build("null")
	case nibs.Ref:
		f.build("&" + strconv.FormatUint(uint64(v), 10))
	case nibs.Bytes:
		f.build("<" + hex.EncodeToString(v) + ">")
	case nibs.String:
		s, err := quote(string(v))
		if err != nil {
			return err
		}
		f.build(s)
	case *nibs.Scope:
		return f.formatScope(indent, v)
	case nibs.Sequence:
		return f.guard(v, func() error {
			return f.formatSequence(indent, v)
		})
	case nibs.Mapping:
		return f.guard(v, func() error {
			return f.formatMapping(indent, v)
		})
	default:
		return nerr.E(nerr.UnsupportedType, "cannot format %T", v)
	}
	return nil
}

// guard fails on re-entry into a lazy container.  Plain slices cannot
// be tracked and are formatted as is.
func (f *Formatter) guard(v nibs.Value, fn func() error) error {
	switch v.(type) {
	case *nibs.LazyList, *nibs.LazyArray, *nibs.LazyMap, *nibs.LazyTrie:
		if _, ok := f.active[v]; ok {
			return nerr.E(nerr.UnsupportedType, "cannot format cyclic %s", v.Kind())
		}
		f.active[v] = struct{}{}
		defer delete(f.active, v)
	}
	return fn()
}

func openOf(v nibs.Value) (string, string) {
	switch v.Kind() {
	case nibs.KindArray:
		return "[#", "]"
	case nibs.KindTrie:
		return "{#", "}"
	case nibs.KindMap:
		return "{", "}"
	}
	return "[", "]"
}

func (f *Formatter) formatSequence(indent int, seq nibs.Sequence) error {
	open, close := openOf(seq)
	f.build(open)
	indent += f.tab
	sep := f.newline
	empty := true
	for it := seq.Iter(); !it.Done(); {
		v, err := it.Next()
		if err != nil {
			return err
		}
		empty = false
		f.build(sep)
		f.indent(indent, "")
		if err := f.formatValue(indent, v); err != nil {
			return err
		}
		sep = "," + f.newline
	}
	f.close(empty, indent-f.tab, close)
	return nil
}

func (f *Formatter) formatMapping(indent int, m nibs.Mapping) error {
	open, close := openOf(m)
	f.build(open)
	indent += f.tab
	sep := f.newline
	empty := true
	for it := m.Iter(); !it.Done(); {
		e, err := it.Next()
		if err != nil {
			return err
		}
		empty = false
		f.build(sep)
		f.indent(indent, "")
		if err := f.formatValue(indent, e.Key); err != nil {
			return err
		}
		f.build(":" + f.colon)
		if err := f.formatValue(indent, e.Value); err != nil {
			return err
		}
		sep = "," + f.newline
	}
	f.close(empty, indent-f.tab, close)
	return nil
}

func (f *Formatter) formatScope(indent int, s *nibs.Scope) error {
	f.build("(")
	if err := f.formatValue(indent, s.Value); err != nil {
		return err
	}
	for _, ref := range s.Refs {
		f.build("," + f.colon)
		if err := f.formatValue(indent, ref); err != nil {
			return err
		}
	}
	f.build(")")
	return nil
}

func (f *Formatter) close(empty bool, indent int, close string) {
	if empty {
		f.build(close)
		return
	}
	f.build(f.newline)
	f.indent(indent, close)
}

func (f *Formatter) indent(tab int, s string) {
	for k := 0; k < tab; k++ {
		f.builder.WriteByte(' ')
	}
	f.build(s)
}

func (f *Formatter) build(s string) {
	f.builder.WriteString(s)
}

// formatFloat renders f so that it parses back as a float and not an int.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func quote(s string) (string, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}
