package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplaceFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "doc.nibs")
	require.NoError(t, os.WriteFile(fname, []byte{0x00}, 0666))
	err := ReplaceFile(fname, 0644, func(w io.Writer) error {
		_, err := w.Write([]byte{0xb3, 0x02, 0x04, 0x06})
		return err
	})
	require.NoError(t, err)
	b, err := os.ReadFile(fname)
	require.NoError(t, err)
	require.Equal(t, []byte{0xb3, 0x02, 0x04, 0x06}, b)
	entries, err := os.ReadDir(filepath.Dir(fname))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestReplaceFileAbort(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "doc.nibs")
	require.NoError(t, os.WriteFile(fname, []byte("data1"), 0666))
	fakeErr := errors.New("fake error")
	err := ReplaceFile(fname, 0666, func(w io.Writer) error {
		if _, err := w.Write([]byte("data2")); err != nil {
			t.Fatal("replace write unexpectedly failed")
		}
		return fakeErr
	})
	require.Equal(t, fakeErr, err)
	b, err := os.ReadFile(fname)
	require.NoError(t, err)
	require.Equal(t, "data1", string(b))
	entries, err := os.ReadDir(filepath.Dir(fname))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestOpenFileCreatesParents(t *testing.T) {
	name := filepath.Join(t.TempDir(), "a", "b", "log")
	f, err := OpenFile(name, os.O_WRONLY|os.O_CREATE, 0644)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	_, err = os.Stat(name)
	require.NoError(t, err)
}
