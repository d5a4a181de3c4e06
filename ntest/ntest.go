// Package ntest runs codec tests described by YAML files.
//
// Each file holds one test.  An encoding test parses its Tibs input,
// optionally optimizes it, encodes it, and compares the result with the
// expected hex.  It then decodes the encoding and compares its Tibs
// rendering with the expected output, which defaults to the input with
// refs resolved.  A decoding test has no input and decodes its hex
// directly.  A test that names an error passes only when the first failing
// step returns an error whose message contains it.
//
//	# Encoding a small map.
//	input: '{"name": "Tim"}'
//	hex: c9 94 6e616d65 93 54696d
//
// Set NTEST_TAG to run only the tests carrying that tag.
package ntest

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode"

	"github.com/brimdata/nibs"
	"github.com/brimdata/nibs/tibs"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"
)

type NTest struct {
	Skip string `yaml:"skip,omitempty"`
	Tag  string `yaml:"tag,omitempty"`

	// Input is a Tibs document.
	Input string `yaml:"input,omitempty"`
	// Optimize runs the input through nibs.Optimize before encoding.
	Optimize      bool        `yaml:"optimize,omitempty"`
	MinScalarSize int         `yaml:"min_scalar_size,omitempty"`
	Config        nibs.Config `yaml:"config,omitempty"`

	// Hex is the expected encoding.  Whitespace is ignored.
	Hex string `yaml:"hex,omitempty"`
	// Output is the expected Tibs rendering of the decoded document.
	Output string `yaml:"output,omitempty"`
	// Error is a substring of the expected error message.
	Error string `yaml:"error,omitempty"`
}

// Run runs the tests in the YAML files of dirname as subtests of t.
func Run(t *testing.T, dirname string) {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dirname, "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatalf("no tests in %s", dirname)
	}
	tag := os.Getenv("NTEST_TAG")
	for _, filename := range files {
		filename := filename
		name := strings.TrimSuffix(filepath.Base(filename), ".yaml")
		t.Run(name, func(t *testing.T) {
			n, err := FromYAMLFile(filename)
			if err != nil {
				t.Fatalf("%s: %s", filename, err)
			}
			if reason := n.ShouldSkip(tag); reason != "" {
				t.Skip("skipping test: " + reason)
			}
			if err := n.RunInternal(); err != nil {
				t.Fatalf("%s: %s", filename, err)
			}
		})
	}
}

// FromYAMLFile loads a test.  Unknown fields are rejected.
func FromYAMLFile(filename string) (*NTest, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	d := yaml.NewDecoder(bytes.NewReader(b))
	d.KnownFields(true)
	var n NTest
	if err := d.Decode(&n); err != nil {
		return nil, err
	}
	if n.Input == "" && n.Hex == "" {
		return nil, errors.New("test requires input or hex")
	}
	return &n, nil
}

func (n *NTest) ShouldSkip(tag string) string {
	switch {
	case n.Skip != "":
		return n.Skip
	case n.Tag != tag:
		return fmt.Sprintf("tag %q does not match NTEST_TAG=%q", n.Tag, tag)
	}
	return ""
}

// RunInternal runs the test in process.
func (n *NTest) RunInternal() error {
	out, err := n.run()
	if n.Error != "" {
		if err == nil {
			return fmt.Errorf("expected error containing %q, got none", n.Error)
		}
		if !strings.Contains(err.Error(), n.Error) {
			return fmt.Errorf("expected error containing %q, got %q", n.Error, err)
		}
		return nil
	}
	if err != nil {
		return err
	}
	want := n.Output
	if want == "" && n.Input != "" {
		v, err := tibs.Parse(n.Input)
		if err != nil {
			return err
		}
		if want, err = tibs.Format(resolve(v)); err != nil {
			return err
		}
	}
	if want == "" {
		return nil
	}
	return diffErr("output", strings.TrimSpace(want), out)
}

func (n *NTest) run() (string, error) {
	var encoded []byte
	if n.Input != "" {
		v, err := tibs.Parse(n.Input)
		if err != nil {
			return "", err
		}
		if n.Optimize {
			v, err = nibs.Optimize(v, nibs.OptimizeOptions{
				IndexLimit:    n.Config.IndexLimit,
				MinScalarSize: n.MinScalarSize,
			})
			if err != nil {
				return "", err
			}
		}
		if encoded, err = nibs.NewEncoder(n.Config).Encode(v); err != nil {
			return "", err
		}
		if n.Hex != "" {
			if err := diffErr("hex", compactHex(n.Hex), hex.EncodeToString(encoded)); err != nil {
				return "", err
			}
		}
	} else {
		var err error
		if encoded, err = hex.DecodeString(compactHex(n.Hex)); err != nil {
			return "", err
		}
	}
	v, err := nibs.Decode(encoded)
	if err != nil {
		return "", err
	}
	if err := nibs.Validate(encoded); err != nil {
		return "", err
	}
	return tibs.Format(v)
}

func compactHex(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

func diffErr(name, expected, actual string) error {
	if expected == actual {
		return nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		FromFile: "expected",
		B:        difflib.SplitLines(actual),
		ToFile:   "actual",
		Context:  5,
	})
	if err != nil {
		return err
	}
	return fmt.Errorf("%s mismatch:\n%s", name, diff)
}

// resolve replaces the refs of each scope in v with the values they name.
func resolve(v nibs.Value) nibs.Value {
	return resolveIn(v, nil)
}

func resolveIn(v nibs.Value, refs []nibs.Value) nibs.Value {
	switch v := v.(type) {
	case *nibs.Scope:
		return resolveIn(v.Value, v.Refs)
	case nibs.Ref:
		if v < nibs.Ref(len(refs)) {
			return resolveIn(refs[v], refs)
		}
	case nibs.List:
		return nibs.List(resolveAll(v, refs))
	case nibs.Array:
		return nibs.Array(resolveAll(v, refs))
	case nibs.Map:
		return nibs.Map(resolveEntries(v, refs))
	case nibs.Trie:
		return nibs.Trie(resolveEntries(v, refs))
	}
	return v
}

func resolveAll(vals []nibs.Value, refs []nibs.Value) []nibs.Value {
	out := make([]nibs.Value, 0, len(vals))
	for _, v := range vals {
		out = append(out, resolveIn(v, refs))
	}
	return out
}

func resolveEntries(entries []nibs.Entry, refs []nibs.Value) []nibs.Entry {
	out := make([]nibs.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, nibs.Entry{Key: resolveIn(e.Key, refs), Value: resolveIn(e.Value, refs)})
	}
	return out
}
