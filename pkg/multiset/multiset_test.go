package multiset_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cyphal-go/transport-core/pkg/multiset"
	"github.com/cyphal-go/transport-core/pkg/pool"
)

type entry struct {
	key   int
	value string
}

func TestAddFindRemove(t *testing.T) {
	ms := multiset.New[entry](pool.NewFixed[entry](4))

	p1, err := ms.Add(func(e *entry) { e.key = 1; e.value = "a" })
	require.NoError(t, err)
	_, err = ms.Add(func(e *entry) { e.key = 2; e.value = "b" })
	require.NoError(t, err)

	require.Equal(t, 2, ms.Len())

	found := ms.FindFirst(func(e *entry) bool { return e.key == 2 })
	require.NotNil(t, found)
	require.Equal(t, "b", found.value)

	require.True(t, ms.Remove(p1))
	require.Equal(t, 1, ms.Len())
	require.Nil(t, ms.FindFirst(func(e *entry) bool { return e.key == 1 }))
}

func TestAddressStableAcrossOtherInsertsAndRemovals(t *testing.T) {
	ms := multiset.New[entry](pool.NewFixed[entry](8))

	stable, err := ms.Add(func(e *entry) { e.key = 99 })
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := ms.Add(func(e *entry) { e.key = i })
		require.NoError(t, err)
	}
	ms.RemoveFirstMatching(func(e *entry) bool { return e.key == 2 })

	require.Equal(t, 99, stable.key, "element must not move on unrelated add/remove")
}

func TestExhaustionPropagates(t *testing.T) {
	ms := multiset.New[entry](pool.NewFixed[entry](1))

	_, err := ms.Add(func(e *entry) {})
	require.NoError(t, err)

	_, err = ms.Add(func(e *entry) {})
	require.Error(t, err)
	require.True(t, errors.Is(err, pool.ErrExhausted))
}

func TestRemoveAllMatching(t *testing.T) {
	ms := multiset.New[entry](pool.NewFixed[entry](8))
	for i := 0; i < 6; i++ {
		_, err := ms.Add(func(e *entry) { e.key = i % 2 })
		require.NoError(t, err)
	}

	removed := ms.RemoveAllMatching(func(e *entry) bool { return e.key == 0 })
	require.Equal(t, 3, removed)
	require.Equal(t, 3, ms.Len())
	ms.Each(func(e *entry) { require.Equal(t, 1, e.key) })
}
