package nibs

import (
	"bytes"
	"encoding"
	"math"
	"reflect"
	"strings"

	nerr "github.com/brimdata/nibs/errors"
	"golang.org/x/exp/slices"
)

const (
	tagName = "nibs"
	tagSep  = ","
)

var (
	valueType         = reflect.TypeOf((*Value)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Marshal converts native Go data into a Value.  Booleans, integers,
// floats, strings and byte slices become scalars, slices and arrays become
// lists, maps become maps sorted by key, and structs become maps of their
// exported fields named by the "nibs" or "json" tag.  A field tagged "-" is
// skipped and one tagged "omitempty" is left out when it is the zero value.
// Values that already implement Value are used as is and
// encoding.TextMarshaler implementations become strings.  Nil pointers,
// interfaces, maps and slices become Null.
//
// A slice, map or pointed-to struct reached more than once becomes the same
// List or Map each time, so shared and cyclic Go data keeps its shape and
// Optimize can turn it into refs.  A cycle of pointers that never passes
// through one of these is an error.
func Marshal(v any) (Value, error) {
	m := &marshaler{
		seen:   make(map[visit]Value),
		active: make(map[visit]struct{}),
	}
	return m.encodeAny(reflect.ValueOf(v))
}

// visit identifies Go data by address.  The type and length tell apart a
// struct from its first field and a slice from its prefixes.
type visit struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

type marshaler struct {
	seen   map[visit]Value
	active map[visit]struct{}
}

func (m *marshaler) encodeAny(v reflect.Value) (Value, error) {
	if !v.IsValid() {
		return Null{}, nil
	}
	if v.Type().Implements(valueType) {
		if isNil(v) {
			return Null{}, nil
		}
		return v.Interface().(Value), nil
	}
	if v.Type().Implements(textMarshalerType) {
		if isNil(v) {
			return Null{}, nil
		}
		b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, err
		}
		return String(b), nil
	}
	switch v.Kind() {
	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			return Bytes(b), nil
		}
		return m.encodeList(v, addrOf(v))
	case reflect.Slice:
		if v.IsNil() {
			return Null{}, nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return Bytes(slices.Clone(v.Bytes())), nil
		}
		var key *visit
		if v.Len() > 0 {
			key = &visit{v.Pointer(), v.Type(), v.Len()}
		}
		return m.encodeList(v, key)
	case reflect.Map:
		if v.IsNil() {
			return Null{}, nil
		}
		return m.encodeMap(v)
	case reflect.Struct:
		return m.encodeRecord(v)
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return Null{}, nil
		}
		if k := v.Elem().Kind(); v.Kind() == reflect.Pointer && (k == reflect.Pointer || k == reflect.Interface) {
			key := visit{ptr: v.Pointer(), typ: v.Type()}
			if _, ok := m.active[key]; ok {
				return nil, nerr.E(nerr.UnsupportedType, "cyclic %s", v.Type())
			}
			m.active[key] = struct{}{}
			defer delete(m.active, key)
		}
		return m.encodeAny(v.Elem())
	case reflect.String:
		return String(v.String()), nil
	case reflect.Bool:
		return Bool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt64 {
			return nil, nerr.E(nerr.UnsupportedType, "unsigned integer %d overflows int64", u)
		}
		return Int(u), nil
	case reflect.Float32, reflect.Float64:
		return Float(v.Float()), nil
	}
	return nil, nerr.E(nerr.UnsupportedType, "cannot marshal %s", v.Type())
}

func isNil(v reflect.Value) bool {
	return (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil()
}

// addrOf returns the key of an addressable array or struct, which is one
// reached through a pointer or inside one.
func addrOf(v reflect.Value) *visit {
	if !v.CanAddr() {
		return nil
	}
	return &visit{ptr: v.Addr().Pointer(), typ: v.Type()}
}

// lookup returns the value already made for key.  Otherwise it records val,
// whose elements are filled in afterward, as the value for key.
func (m *marshaler) lookup(key *visit, val Value) (Value, bool) {
	if key == nil {
		return nil, false
	}
	if prev, ok := m.seen[*key]; ok {
		return prev, true
	}
	m.seen[*key] = val
	return nil, false
}

func (m *marshaler) encodeList(v reflect.Value, key *visit) (Value, error) {
	l := make(List, v.Len())
	if prev, ok := m.lookup(key, l); ok {
		return prev, nil
	}
	for i := range l {
		elem, err := m.encodeAny(v.Index(i))
		if err != nil {
			return nil, err
		}
		l[i] = elem
	}
	return l, nil
}

func (m *marshaler) encodeMap(v reflect.Value) (Value, error) {
	out := make(Map, v.Len())
	if prev, ok := m.lookup(&visit{ptr: v.Pointer(), typ: v.Type()}, out); ok {
		return prev, nil
	}
	type keyed struct {
		entry Entry
		sort  []byte
	}
	entries := make([]keyed, 0, len(out))
	for it := v.MapRange(); it.Next(); {
		k, err := m.encodeAny(it.Key())
		if err != nil {
			return nil, err
		}
		val, err := m.encodeAny(it.Value())
		if err != nil {
			return nil, err
		}
		var sortKey []byte
		if s, ok := k.(String); ok {
			sortKey = []byte(s)
		} else if sortKey, err = Encode(k); err != nil {
			return nil, err
		}
		entries = append(entries, keyed{Entry{k, val}, sortKey})
	}
	if len(entries) != len(out) {
		return nil, nerr.E("map changed size while being marshaled")
	}
	slices.SortFunc(entries, func(a, b keyed) bool {
		return bytes.Compare(a.sort, b.sort) < 0
	})
	for i, e := range entries {
		out[i] = e.entry
	}
	return out, nil
}

func (m *marshaler) encodeRecord(v reflect.Value) (Value, error) {
	type field struct {
		name string
		val  reflect.Value
	}
	var fields []field
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, omitempty, skip := fieldName(sf)
		if skip {
			continue
		}
		fv := v.Field(i)
		if omitempty && fv.IsZero() {
			continue
		}
		fields = append(fields, field{name, fv})
	}
	out := make(Map, len(fields))
	if prev, ok := m.lookup(addrOf(v), out); ok {
		return prev, nil
	}
	for i, f := range fields {
		val, err := m.encodeAny(f.val)
		if err != nil {
			return nil, err
		}
		out[i] = Entry{Key: String(f.name), Value: val}
	}
	return out, nil
}

func fieldName(f reflect.StructField) (string, bool, bool) {
	tag := f.Tag.Get(tagName)
	if tag == "" {
		tag = f.Tag.Get("json")
	}
	if tag == "-" {
		return "", false, true
	}
	name := f.Name
	var omitempty bool
	if tag != "" {
		s := strings.Split(tag, tagSep)
		if s[0] != "" {
			name = s[0]
		}
		for _, opt := range s[1:] {
			if opt == "omitempty" {
				omitempty = true
			}
		}
	}
	return name, omitempty, false
}
