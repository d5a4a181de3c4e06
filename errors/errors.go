// Package nerr provides a mechanism to create or wrap errors with a Kind
// describing which class of invalid Nibs input or encoder failure occurred.
// Callers typically treat any of these as "this input is not valid Nibs".
package nerr

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
)

// A Kind represents a class of error.
type Kind int

const (
	Other Kind = iota
	// MalformedHeader means a buffer is too short for a declared header,
	// extension, or body.
	MalformedHeader
	// TrailingData means bytes remain after a value or container body.
	TrailingData
	// UnsupportedType means a value does not map to any tag in the lattice.
	UnsupportedType
	// InvalidSubtype means a fixed-set tag carries an out-of-range discriminant.
	InvalidSubtype
	// IndexOverflow means an offset index does not fit the widest pointer.
	IndexOverflow
	// NoViableEncoding means the trie search found no fitting configuration.
	NoViableEncoding
	// CyclicRefDuringDecode means a ref was forced while being resolved.
	CyclicRefDuringDecode
	// EncodingLengthMismatch means emitted bytes differ from the planned size.
	EncodingLengthMismatch
	// UnresolvedRef means a ref has no enclosing scope or an unknown id.
	UnresolvedRef
	// Syntax means Tibs text could not be parsed.
	Syntax
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "other error"
	case MalformedHeader:
		return "malformed header"
	case TrailingData:
		return "trailing data"
	case UnsupportedType:
		return "unsupported type"
	case InvalidSubtype:
		return "invalid subtype"
	case IndexOverflow:
		return "index overflow"
	case NoViableEncoding:
		return "no viable encoding"
	case CyclicRefDuringDecode:
		return "cyclic ref during decode"
	case EncodingLengthMismatch:
		return "encoding length mismatch"
	case UnresolvedRef:
		return "unresolved ref"
	case Syntax:
		return "syntax error"
	}
	return "unknown error kind"
}

type Error struct {
	Kind Kind
	Err  error
}

func pad(b *bytes.Buffer, s string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(s)
}

func (e *Error) Error() string {
	b := &bytes.Buffer{}
	if e.Kind != Other {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		pad(b, ": ")
		b.WriteString(e.Err.Error())
	}
	if b.Len() == 0 {
		return "no error"
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns just the Err.Error() string, if present, or the Kind
// string description.
func (e *Error) Message() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Kind != Other {
		return e.Kind.String()
	}
	return "no error"
}

// Function E generates an error from any mix of:
// - a Kind
// - an existing error
// - a string and optional formatting verbs, like fmt.Errorf (including support
//	for the `%w` verb).
//
// The string & format verbs must be last in the arguments, if present.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("no args to nerr.E")
	}
	e := &Error{}
	for i, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case error:
			e.Err = arg
		case string:
			e.Err = fmt.Errorf(arg, args[i+1:]...)
			return e
		default:
			_, file, line, _ := runtime.Caller(1)
			return fmt.Errorf("unknown type %T value %v in nerr.E call at %v:%v", arg, arg, file, line)
		}
	}
	return e
}

// KindOf returns the Kind of the outermost *Error in err's chain or Other.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
