package main

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/brimdata/nibs/cmd/nibs/get"
	"github.com/brimdata/nibs/cmd/nibs/root"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) {
	t.Helper()
	require.NoError(t, root.Nibs.ExecRoot(args))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestEncodeDecode(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.tibs", "{\"name\": \"Tim\"}\n[1, 2, 3]\n")
	encoded := filepath.Join(dir, "out.nibs")
	run(t, "encode", "-o", encoded, in)
	assert.Equal(t, "c9946e616d659354696d"+"b3020406", hex.EncodeToString([]byte(readFile(t, encoded))))

	decoded := filepath.Join(dir, "out.tibs")
	run(t, "decode", "-t", "-o", decoded, encoded)
	assert.Equal(t, "{\"name\":\"Tim\"}\n[1,2,3]\n", readFile(t, decoded))
}

func TestEncodeOptimize(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.tibs", `["hello", "hello", 1, 1]`)
	out := filepath.Join(dir, "out.hex")
	run(t, "encode", "-optimize", "-f", "hex", "-o", out, in)
	assert.Equal(t, "fc0db430300202110095"+hex.EncodeToString([]byte("hello"))+"\n", readFile(t, out))
}

func TestEncodeOutdir(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.tibs", "1 2")
	b := writeFile(t, dir, "b.json", `{"k": true}`)
	outdir := filepath.Join(dir, "out")
	run(t, "encode", "-P", "1", "-outdir", outdir, a, b)
	assert.Equal(t, []byte{0x02, 0x04}, []byte(readFile(t, filepath.Join(outdir, "a.nibs"))))
	assert.Equal(t, "c3916b21", hex.EncodeToString([]byte(readFile(t, filepath.Join(outdir, "b.nibs")))))
}

func TestEncodeOutdirStdin(t *testing.T) {
	err := root.Nibs.ExecRoot([]string{"encode", "-outdir", t.TempDir(), "-"})
	assert.ErrorContains(t, err, "standard input")
}

func TestGet(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.tibs", `{"users": [{"name": "ann"}, {"name": "bob"}]} {"users": []}`)
	encoded := filepath.Join(dir, "in.nibs")
	run(t, "encode", "-o", encoded, in)
	out := filepath.Join(dir, "out.tibs")
	run(t, "get", "-missing", "-t", "-o", out, `["users", 1, "name"]`, encoded)
	assert.Equal(t, "\"bob\"\nnull\n", readFile(t, out))

	err := root.Nibs.ExecRoot([]string{"get", "-o", out, `["users", 1]`, encoded})
	assert.ErrorContains(t, err, "document 2")
}

func TestParsePath(t *testing.T) {
	_, err := get.ParsePath(`{"a": 1}`)
	assert.Error(t, err)
	path, err := get.ParsePath(`["a", 0]`)
	require.NoError(t, err)
	assert.Len(t, path, 2)
}
