package tibs_test

import (
	"math"
	"strings"
	"testing"

	"github.com/brimdata/nibs"
	nerr "github.com/brimdata/nibs/errors"
	"github.com/brimdata/nibs/tibs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want nibs.Value
	}{
		{"42", nibs.Int(42)},
		{"-7", nibs.Int(-7)},
		{"1.5", nibs.Float(1.5)},
		{"2e3", nibs.Float(2000)},
		{"inf", nibs.Float(math.Inf(1))},
		{"-inf", nibs.Float(math.Inf(-1))},
		{"true", nibs.Bool(true)},
		{"null", nibs.Null{}},
		{`"a\nbé"`, nibs.String("a\nbé")},
		{"<de ad BE ef>", nibs.Bytes{0xde, 0xad, 0xbe, 0xef}},
		{"<>", nibs.Bytes{}},
		{"&12", nibs.Ref(12)},
		{"[1, 2, 3,]", nibs.List{nibs.Int(1), nibs.Int(2), nibs.Int(3)}},
		{"[#]", nibs.Array{}},
		{"[# 1 ,2]", nibs.Array{nibs.Int(1), nibs.Int(2)}},
		{`{"a": 1, 2: [], }`, nibs.Map{
			{Key: nibs.String("a"), Value: nibs.Int(1)},
			{Key: nibs.Int(2), Value: nibs.List{}},
		}},
		{`{#"x":null}`, nibs.Trie{{Key: nibs.String("x"), Value: nibs.Null{}}}},
		{`([&0, &0], "hello")`, &nibs.Scope{
			Value: nibs.List{nibs.Ref(0), nibs.Ref(0)},
			Refs:  []nibs.Value{nibs.String("hello")},
		}},
		{"// leading\n[1 /* one */, 2]", nibs.List{nibs.Int(1), nibs.Int(2)}},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			v, err := tibs.Parse(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.want, v)
		})
	}
}

func TestParseNaN(t *testing.T) {
	v, err := tibs.Parse("nan")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(v.(nibs.Float))))
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"[1 2]",
		"[1,",
		`{"a" 1}`,
		"<abc>",
		"<zz>",
		"&",
		"()",
		"\"line\nbreak\"",
		"1 2",
		"nope",
		"/* open",
		"1.2.3",
	}
	for _, in := range cases {
		_, err := tibs.Parse(in)
		assert.True(t, nerr.Is(err, nerr.Syntax), "%q: %v", in, err)
	}
}

func TestErrorPosition(t *testing.T) {
	_, err := tibs.Parse("[\n  1,\n  ?]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tibs:3:3")

	_, err = tibs.Parse("[1 2]")
	assert.True(t, nerr.Is(err, nerr.Syntax))
	assert.EqualError(t, err, "syntax error: tibs:1:4: unexpected '2'")

	p, err := tibs.NewNamedParser(strings.NewReader("{\n\"a\" 1}"), "doc.tibs")
	require.NoError(t, err)
	_, err = p.ParseValue()
	assert.ErrorContains(t, err, "doc.tibs:2:5: expected ':' after map key")
}

func TestParserStream(t *testing.T) {
	p, err := tibs.NewParser(strings.NewReader("1 [2]\n{\"k\": <00>}\n"))
	require.NoError(t, err)
	var vals []nibs.Value
	for {
		v, err := p.ParseValue()
		require.NoError(t, err)
		if v == nil {
			break
		}
		vals = append(vals, v)
	}
	assert.Equal(t, []nibs.Value{
		nibs.Int(1),
		nibs.List{nibs.Int(2)},
		nibs.Map{{Key: nibs.String("k"), Value: nibs.Bytes{0}}},
	}, vals)
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in   nibs.Value
		want string
	}{
		{nibs.Float(1), "1.0"},
		{nibs.Float(math.Copysign(0, -1)), "-0.0"},
		{nibs.Float(math.NaN()), "nan"},
		{nibs.String("<&>"), `"<&>"`},
		{nibs.Bytes{1, 0xab}, "<01ab>"},
		{nibs.Array{}, "[#]"},
		{nibs.Trie{{Key: nibs.Int(1), Value: nibs.Ref(2)}}, "{#1:&2}"},
		{&nibs.Scope{Value: nibs.Ref(0), Refs: []nibs.Value{nibs.String("x")}}, `(&0,"x")`},
	}
	for _, c := range cases {
		s, err := tibs.Format(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, s)
	}
}

func TestFormatPretty(t *testing.T) {
	v := nibs.Map{
		{Key: nibs.String("a"), Value: nibs.List{nibs.Int(1), nibs.Int(2)}},
		{Key: nibs.String("b"), Value: nibs.Map{}},
	}
	s, err := tibs.NewFormatter(2).Format(v)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": {}\n}", s)
}

func TestRoundTrip(t *testing.T) {
	const text = `({"name": &0, "tags": [#&0, "x", <0102>], "n": {#1: 2.5, true: -inf}}, "shared")`
	v, err := tibs.Parse(text)
	require.NoError(t, err)
	b, err := nibs.Encode(v)
	require.NoError(t, err)
	decoded, err := nibs.Decode(b)
	require.NoError(t, err)
	s, err := tibs.Format(decoded)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"shared","tags":[#"shared","x",<0102>],"n":{#1:2.5,true:-inf}}`, s)
	again, err := tibs.Parse(s)
	require.NoError(t, err)
	eq, err := nibs.Equal(decoded, again)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestFormatCycle(t *testing.T) {
	// A scope whose only ref is a list containing itself.
	decoded, err := nibs.Decode([]byte{0xf5, 0x30, 0x11, 0x00, 0xb1, 0x30})
	require.NoError(t, err)
	_, err = tibs.Format(decoded)
	assert.Error(t, err)
}
