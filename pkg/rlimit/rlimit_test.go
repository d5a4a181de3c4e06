package rlimit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureOpenFiles(t *testing.T) {
	n, err := EnsureOpenFiles(0)
	require.NoError(t, err)
	require.NotZero(t, n)
	// A limit that already suffices is left as is.
	again, err := EnsureOpenFiles(0)
	require.NoError(t, err)
	assert.Equal(t, n, again)
	// An impossible request stops at the hard limit.
	most, err := EnsureOpenFiles(math.MaxUint64 / 2)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, most, n)
}

func TestTarget(t *testing.T) {
	assert.Equal(t, uint64(64), target(uint64(1024), 64))
	assert.Equal(t, uint64(1024), target(uint64(1024), 4096))
	assert.Equal(t, int64(64), target(int64(1024), 64))
	assert.Equal(t, int64(1024), target(int64(1024), 4096))
}
