package nibs

import (
	"math"
	"testing"

	nerr "github.com/brimdata/nibs/errors"
	"github.com/brimdata/nibs/ncode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanSizeOverflow(t *testing.T) {
	huge := &plan{typ: ncode.TypeBytes, size: math.MaxUint64 - 1}
	_, err := containerPlan(ncode.TypeList, 0, []*plan{huge, huge})
	assert.True(t, nerr.Is(err, nerr.IndexOverflow), "%v", err)

	_, err = offsetsOf([]*plan{huge, huge})
	assert.True(t, nerr.Is(err, nerr.IndexOverflow), "%v", err)

	_, err = planArray([]*plan{huge, huge})
	assert.True(t, nerr.Is(err, nerr.IndexOverflow), "%v", err)

	// The body fits but its header does not.
	body := &plan{typ: ncode.TypeBytes, size: math.MaxUint64 - 3}
	_, err = containerPlan(ncode.TypeList, 0, []*plan{body})
	assert.True(t, nerr.Is(err, nerr.IndexOverflow), "%v", err)
}

func TestPlanSize(t *testing.T) {
	kids := []*plan{scalarPlan(ncode.TypeZigZag, 2, nil), scalarPlan(ncode.TypeUTF8, 3, []byte("Tim"))}
	p, err := containerPlan(ncode.TypeList, 0, kids)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), p.big)
	assert.Equal(t, uint64(6), p.size)
	offsets, err := offsetsOf(kids)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1}, offsets)
}
