// Package fs provides file helpers for command output and logs.
package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

var errAborted = errors.New("replacer aborted")

// Replacer is an io.WriteCloser that atomically replaces the content of a
// file.  Data is written to a temporary file in the same directory.  Close
// renames it over the target and Abort removes it, leaving any existing
// file untouched.
type Replacer struct {
	f        *os.File
	err      error
	filename string
	perm     os.FileMode
}

func NewFileReplacer(filename string, perm os.FileMode) (*Replacer, error) {
	filename, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(filepath.Dir(filename), ".tmp-"+filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	return &Replacer{
		f:        f,
		filename: filename,
		perm:     perm,
	}, nil
}

func (r *Replacer) Write(b []byte) (int, error) {
	n, err := r.f.Write(b)
	if err != nil && r.err == nil {
		r.err = err
	}
	return n, err
}

func (r *Replacer) Abort() {
	if r.err == nil {
		r.err = errAborted
	}
	_ = r.close()
}

func (r *Replacer) Close() error {
	return r.close()
}

func (r *Replacer) close() (err error) {
	tmp := r.f.Name()
	defer func() {
		if err != nil || r.err != nil {
			os.Remove(tmp)
		}
	}()
	if err := r.f.Close(); err != nil {
		return err
	}
	if r.err != nil {
		if r.err == errAborted {
			return nil
		}
		return r.err
	}
	if err := os.Chmod(tmp, r.perm); err != nil {
		return err
	}
	return os.Rename(tmp, r.filename)
}

// ReplaceFile atomically replaces name with the output of fn.  If fn fails
// the file is left as it was.
func ReplaceFile(name string, perm os.FileMode, fn func(w io.Writer) error) error {
	r, err := NewFileReplacer(name, perm)
	if err != nil {
		return err
	}
	if err := fn(r); err != nil {
		r.Abort()
		return err
	}
	return r.Close()
}

// OpenFile is like os.OpenFile but first creates any missing parent
// directories.
func OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(name, flag, perm)
}
