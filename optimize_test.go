package nibs_test

import (
	"fmt"
	"testing"

	"github.com/brimdata/nibs"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizeScalars(t *testing.T) {
	doc := nibs.List{nibs.String("hello"), nibs.String("hello"), nibs.Int(1), nibs.Int(1)}
	out, err := nibs.Optimize(doc, nibs.OptimizeOptions{})
	require.NoError(t, err)
	// Int(1) encodes to a single byte and is left alone.
	want := &nibs.Scope{
		Value: nibs.List{nibs.Ref(0), nibs.Ref(0), nibs.Int(1), nibs.Int(1)},
		Refs:  []nibs.Value{nibs.String("hello")},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOptimizeNothingShared(t *testing.T) {
	doc := nibs.Map{{Key: nibs.String("a"), Value: nibs.String("long value")}}
	out, err := nibs.Optimize(doc, nibs.OptimizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, doc, out)
}

func TestOptimizeRanksByCount(t *testing.T) {
	doc := nibs.List{
		nibs.String("twice"), nibs.String("thrice"),
		nibs.String("twice"), nibs.String("thrice"),
		nibs.String("thrice"),
	}
	out, err := nibs.Optimize(doc, nibs.OptimizeOptions{})
	require.NoError(t, err)
	scope := out.(*nibs.Scope)
	assert.Equal(t, []nibs.Value{nibs.String("thrice"), nibs.String("twice")}, scope.Refs)
	assert.Equal(t, nibs.List{nibs.Ref(1), nibs.Ref(0), nibs.Ref(1), nibs.Ref(0), nibs.Ref(0)}, scope.Value)
}

func TestOptimizeSharedContainer(t *testing.T) {
	shared := nibs.Map{{Key: nibs.String("x"), Value: nibs.Int(1)}}
	doc := nibs.List{shared, shared}
	out, err := nibs.Optimize(doc, nibs.OptimizeOptions{})
	require.NoError(t, err)
	want := &nibs.Scope{
		Value: nibs.List{nibs.Ref(0), nibs.Ref(0)},
		Refs:  []nibs.Value{nibs.Map{{Key: nibs.String("x"), Value: nibs.Int(1)}}},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	// Deep-equal but distinct maps are not merged.
	doc = nibs.List{
		nibs.Map{{Key: nibs.String("x"), Value: nibs.Int(1)}},
		nibs.Map{{Key: nibs.String("x"), Value: nibs.Int(1)}},
	}
	out, err = nibs.Optimize(doc, nibs.OptimizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, doc, out)
}

func TestOptimizeIndexes(t *testing.T) {
	var l nibs.List
	var m nibs.Map
	for i := 0; i < 4; i++ {
		l = append(l, nibs.Int(i))
		m = append(m, nibs.Entry{Key: nibs.Int(i), Value: nibs.Int(i)})
	}
	out, err := nibs.Optimize(nibs.List{l, m}, nibs.OptimizeOptions{IndexLimit: 4})
	require.NoError(t, err)
	outer := out.(nibs.List)
	assert.Equal(t, nibs.KindArray, outer[0].Kind())
	assert.Equal(t, nibs.KindTrie, outer[1].Kind())
}

func TestOptimizeExternalRefs(t *testing.T) {
	refs := []nibs.Value{nibs.String("known"), nibs.Int(1)}
	doc := nibs.List{nibs.String("known"), nibs.Int(1), nibs.String("unknown"), nibs.String("unknown")}
	out, err := nibs.Optimize(doc, nibs.OptimizeOptions{Refs: refs})
	require.NoError(t, err)
	want := &nibs.Scope{
		Value: nibs.List{nibs.Ref(0), nibs.Ref(1), nibs.String("unknown"), nibs.String("unknown")},
		Refs:  refs,
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func sampleDocument() nibs.Value {
	shared := nibs.Map{
		{Key: nibs.String("color"), Value: nibs.String("red")},
		{Key: nibs.String("size"), Value: nibs.Int(1000)},
	}
	var rows nibs.List
	for i := 0; i < 20; i++ {
		rows = append(rows, nibs.Map{
			{Key: nibs.String("id"), Value: nibs.Int(i)},
			{Key: nibs.String("name"), Value: nibs.String(fmt.Sprintf("row %d", i%5))},
			{Key: nibs.String("style"), Value: shared},
		})
	}
	return nibs.Map{
		{Key: nibs.String("rows"), Value: rows},
		{Key: nibs.String("default"), Value: shared},
	}
}

func TestOptimizeIdempotent(t *testing.T) {
	once, err := nibs.Optimize(sampleDocument(), nibs.OptimizeOptions{})
	require.NoError(t, err)
	twice, err := nibs.Optimize(once, nibs.OptimizeOptions{})
	require.NoError(t, err)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("mismatch (-once +twice):\n%s", diff)
	}
	b1, err := nibs.Encode(once)
	require.NoError(t, err)
	// Optimizing the decoded document finds the same structure again.
	decoded, err := nibs.Decode(b1)
	require.NoError(t, err)
	again, err := nibs.Optimize(decoded, nibs.OptimizeOptions{})
	require.NoError(t, err)
	b2, err := nibs.Encode(again)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestOptimizePreservesValue(t *testing.T) {
	doc := sampleDocument()
	opt, err := nibs.Optimize(doc, nibs.OptimizeOptions{})
	require.NoError(t, err)
	plain, err := nibs.Encode(doc)
	require.NoError(t, err)
	b, err := nibs.Encode(opt)
	require.NoError(t, err)
	assert.Less(t, len(b), len(plain))
	decoded, err := nibs.Decode(b)
	require.NoError(t, err)
	eq, err := nibs.Equal(doc, decoded)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestArenaBuild(t *testing.T) {
	a := nibs.NewArena()
	root := a.NewMap(false)
	list := a.NewList(false)
	name, err := a.NewScalar(nibs.String("shared name"))
	require.NoError(t, err)
	require.NoError(t, a.Append(list, name))
	require.NoError(t, a.Append(list, name))
	require.NoError(t, a.Append(list, list))
	key, err := a.NewScalar(nibs.String("k"))
	require.NoError(t, err)
	require.NoError(t, a.Set(root, key, name))
	other, err := a.NewScalar(nibs.String("k"))
	require.NoError(t, err)
	// An equal key replaces the existing entry.
	require.NoError(t, a.Set(root, other, list))
	assert.Equal(t, nibs.KindMap, a.Kind(root))

	_, err = a.NewScalar(nibs.List{})
	assert.Error(t, err)
	assert.Error(t, a.Append(root, name))

	out, err := a.Optimize(root, nibs.OptimizeOptions{})
	require.NoError(t, err)
	// The list and the name are both seen twice; the list is seen first.
	want := &nibs.Scope{
		Value: nibs.Map{{Key: nibs.String("k"), Value: nibs.Ref(0)}},
		Refs: []nibs.Value{
			nibs.List{nibs.Ref(1), nibs.Ref(1), nibs.Ref(0)},
			nibs.String("shared name"),
		},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
