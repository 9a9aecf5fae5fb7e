package pool_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cyphal-go/transport-core/pkg/pool"
)

func TestFixedAllocateExhaustion(t *testing.T) {
	p := pool.NewFixed[int](2)

	a, err := p.Allocate()
	require.NoError(t, err)
	require.NotNil(t, a)

	b, err := p.Allocate()
	require.NoError(t, err)
	require.NotNil(t, b)

	_, err = p.Allocate()
	require.Error(t, err)
	require.True(t, errors.Is(err, pool.ErrExhausted))
	require.Equal(t, 2, p.InUse())
}

func TestFixedDeallocateFreesSlot(t *testing.T) {
	p := pool.NewFixed[int](1)

	a, err := p.Allocate()
	require.NoError(t, err)

	_, err = p.Allocate()
	require.ErrorIs(t, err, pool.ErrExhausted)

	p.Deallocate(a)
	require.Equal(t, 0, p.InUse())

	b, err := p.Allocate()
	require.NoError(t, err)
	require.NotNil(t, b)
	require.Equal(t, 1, p.InUse())
}

func TestFixedAllocateReturnsZeroValue(t *testing.T) {
	p := pool.NewFixed[int](1)

	a, err := p.Allocate()
	require.NoError(t, err)
	*a = 42
	p.Deallocate(a)

	b, err := p.Allocate()
	require.NoError(t, err)
	require.Equal(t, 0, *b, "reused block must be reset to the zero value")
}

func TestUnboundedNeverExhausts(t *testing.T) {
	p := pool.NewUnbounded[int]()
	for i := 0; i < 1000; i++ {
		_, err := p.Allocate()
		require.NoError(t, err)
	}
	require.Equal(t, 1000, p.InUse())
	require.Equal(t, -1, p.Capacity())
}
