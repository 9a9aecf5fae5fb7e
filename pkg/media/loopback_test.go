package media_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
	"github.com/cyphal-go/transport-core/pkg/media"
)

func TestLoopbackDeliversToOtherParticipantsOnly(t *testing.T) {
	bus := media.NewLoopbackBus(8, 3)

	_, err := bus[0].Push(cyphal.TimePoint(time.Now()), 0xABC, []byte{1, 2, 3})
	require.NoError(t, err)

	_, _, ok, err := bus[0].Pop()
	require.NoError(t, err)
	require.False(t, ok, "sender must not receive its own frame")

	id, data, ok, err := bus[1].Pop()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(0xABC), uint32(id))
	require.Equal(t, []byte{1, 2, 3}, data)

	_, _, ok, err = bus[2].Pop()
	require.NoError(t, err)
	require.True(t, ok, "every other participant should see the frame")
}

func TestLoopbackPopEmptyWhenNoTraffic(t *testing.T) {
	bus := media.NewLoopbackBus(8, 2)
	_, _, ok, err := bus[0].Pop()
	require.NoError(t, err)
	require.False(t, ok)
}
