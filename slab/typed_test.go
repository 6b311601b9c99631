package slab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type payload struct {
	ID   int
	Name string
}

func TestTypedPoolStableAddresses(t *testing.T) {
	p := NewTyped[payload](4, 0)

	ptrs := make([]*payload, 10)
	for i := range ptrs {
		v, err := p.Allocate()
		require.NoError(t, err)
		v.ID = i
		ptrs[i] = v
	}
	require.Equal(t, 3, p.Stats().Pages)

	for i, v := range ptrs {
		require.Equal(t, i, v.ID, "block contents must survive later allocations")
	}

	require.NoError(t, p.Free(ptrs[3]))
	require.ErrorIs(t, p.Free(ptrs[3]), ErrMultipleFree)
	require.ErrorIs(t, p.Free(&payload{}), ErrBadAddress)

	// The freed slot is recycled before any new page is grown.
	v, err := p.Allocate()
	require.NoError(t, err)
	require.Same(t, ptrs[3], v)
	require.Zero(t, v.ID, "recycled block must be zeroed")
}

func TestTypedPoolFreeEmptyPages(t *testing.T) {
	p := NewTyped[payload](2, 0)

	a, _ := p.Allocate()
	b, _ := p.Allocate()
	c, _ := p.Allocate()
	require.Equal(t, 2, p.Stats().Pages)

	require.NoError(t, p.Free(c))
	require.Equal(t, 1, p.FreeEmptyPages(), "second page is wholly free")
	require.Equal(t, 1, p.Stats().Pages)

	require.NoError(t, p.Free(a))
	require.NoError(t, p.Free(b))
	require.Equal(t, 1, p.FreeEmptyPages())
	require.Zero(t, p.Stats().Pages)
}

func TestTypedPoolMaxPages(t *testing.T) {
	p := NewTyped[payload](1, 2)
	_, err := p.Allocate()
	require.NoError(t, err)
	_, err = p.Allocate()
	require.NoError(t, err)
	_, err = p.Allocate()
	require.ErrorIs(t, err, ErrNoPages)
}
