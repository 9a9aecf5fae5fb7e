package txqueue_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
	"github.com/cyphal-go/transport-core/pkg/txqueue"
)

func tp(sec int) cyphal.TimePoint {
	return cyphal.TimePoint(time.Unix(int64(sec), 0))
}

func TestPriorityOrdering(t *testing.T) {
	q := txqueue.NewQueue(0)
	require.NoError(t, q.Enqueue(1, []byte("low"), tp(10), cyphal.PriorityLow))
	require.NoError(t, q.Enqueue(2, []byte("exceptional"), tp(10), cyphal.PriorityExceptional))
	require.NoError(t, q.Enqueue(3, []byte("nominal"), tp(10), cyphal.PriorityNominal))

	require.Equal(t, uint32(2), q.Pop().FrameID)
	require.Equal(t, uint32(3), q.Pop().FrameID)
	require.Equal(t, uint32(1), q.Pop().FrameID)
	require.Nil(t, q.Pop())
}

func TestFIFOWithinSamePriority(t *testing.T) {
	q := txqueue.NewQueue(0)
	for i := uint32(0); i < 5; i++ {
		require.NoError(t, q.Enqueue(i, nil, tp(10), cyphal.PriorityNominal))
	}
	for i := uint32(0); i < 5; i++ {
		require.Equal(t, i, q.Pop().FrameID)
	}
}

func TestPeekDoesNotRemove(t *testing.T) {
	q := txqueue.NewQueue(0)
	require.NoError(t, q.Enqueue(1, nil, tp(10), cyphal.PriorityNominal))

	require.Equal(t, 1, q.Len())
	require.NotNil(t, q.Peek())
	require.Equal(t, 1, q.Len())
}

func TestDrainEmptiesQueue(t *testing.T) {
	q := txqueue.NewQueue(0)
	require.NoError(t, q.Enqueue(1, nil, tp(10), cyphal.PriorityNominal))
	require.NoError(t, q.Enqueue(2, nil, tp(10), cyphal.PriorityNominal))
	q.Drain()
	require.Equal(t, 0, q.Len())
}

func TestEnqueueFailsAtCapacity(t *testing.T) {
	q := txqueue.NewQueue(2)
	require.NoError(t, q.Enqueue(1, nil, tp(10), cyphal.PriorityNominal))
	require.NoError(t, q.Enqueue(2, nil, tp(10), cyphal.PriorityNominal))

	err := q.Enqueue(3, nil, tp(10), cyphal.PriorityNominal)
	require.ErrorIs(t, err, cyphal.ErrMemory)
	require.Equal(t, 2, q.Len())
}
