package nibs_test

import (
	"math"
	"testing"

	"github.com/brimdata/nibs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	cases := []struct {
		a, b nibs.Value
		eq   bool
	}{
		{nibs.Int(1), nibs.Int(1), true},
		{nibs.Int(1), nibs.Float(1), false},
		{nibs.Float(math.NaN()), nibs.Float(math.NaN()), true},
		{nibs.Float(0), nibs.Float(math.Copysign(0, -1)), false},
		{nibs.Float(math.Copysign(0, -1)), nibs.Float(math.Copysign(0, -1)), true},
		{nibs.Float(math.NaN()), nibs.Float(math.Float64frombits(0x7ff8000000000001)), true},
		{nibs.Bytes("ab"), nibs.Bytes("ab"), true},
		{nibs.Bytes("ab"), nibs.String("ab"), false},
		{nibs.Null{}, nibs.Null{}, true},
		{nibs.List{nibs.Int(1)}, nibs.Array{nibs.Int(1)}, true},
		{nibs.List{nibs.Int(1)}, nibs.List{nibs.Int(1), nibs.Int(2)}, false},
		{nibs.List{}, nibs.Map{}, false},
		{nibs.Map{{Key: nibs.Int(1), Value: nibs.Int(2)}}, nibs.Trie{{Key: nibs.Int(1), Value: nibs.Int(2)}}, true},
		{nibs.Map{{Key: nibs.Int(1), Value: nibs.Int(2)}}, nibs.Map{{Key: nibs.Int(1), Value: nibs.Int(3)}}, false},
		{
			&nibs.Scope{Value: nibs.Ref(0), Refs: []nibs.Value{nibs.String("x")}},
			&nibs.Scope{Value: nibs.Ref(0), Refs: []nibs.Value{nibs.String("x")}},
			true,
		},
		{nil, nil, true},
		{nil, nibs.Null{}, false},
	}
	for _, c := range cases {
		eq, err := nibs.Equal(c.a, c.b)
		require.NoError(t, err)
		assert.Equal(t, c.eq, eq, "%v == %v", c.a, c.b)
	}
}

func TestEqualCycles(t *testing.T) {
	a := make(nibs.List, 2)
	a[0] = nibs.Int(1)
	a[1] = a
	b := make(nibs.List, 2)
	b[0] = nibs.Int(1)
	b[1] = b
	eq, err := nibs.Equal(a, b)
	require.NoError(t, err)
	assert.True(t, eq)
	b[0] = nibs.Int(2)
	eq, err = nibs.Equal(a, b)
	require.NoError(t, err)
	assert.False(t, eq)
}

func TestGetSignedZero(t *testing.T) {
	negZero := nibs.Float(math.Copysign(0, -1))
	m := nibs.Map{
		{Key: nibs.Float(0), Value: nibs.String("pos")},
		{Key: negZero, Value: nibs.String("neg")},
	}
	trie := nibs.Trie(m)
	for _, v := range []nibs.Value{m, trie, roundTrip(t, m), roundTrip(t, trie)} {
		mapping := v.(nibs.Mapping)
		got, ok, err := mapping.Get(negZero)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, nibs.String("neg"), got)
		got, ok, err = mapping.Get(nibs.Float(0))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, nibs.String("pos"), got)
	}
}
