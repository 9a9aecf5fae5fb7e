package log_test

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
	"github.com/cyphal-go/transport-core/pkg/log"
)

func TestNoopLoggerDiscards(t *testing.T) {
	require.NotPanics(t, func() { log.NoopLogger{}.Log(log.Event{}) })
}

func TestMultiLoggerFansOut(t *testing.T) {
	var a, b []log.Event
	rec := func(dst *[]log.Event) log.Logger {
		return recorder{dst: dst}
	}
	m := log.NewMultiLogger(rec(&a), rec(&b))
	m.Log(log.Event{ConnectionID: "x"})
	require.Len(t, a, 1)
	require.Len(t, b, 1)
}

type recorder struct{ dst *[]log.Event }

func (r recorder) Log(e log.Event) { *r.dst = append(*r.dst, e) }

func TestEventCBORRoundTrip(t *testing.T) {
	e := log.Event{
		Timestamp:    time.Unix(100, 0).UTC(),
		ConnectionID: "conn-1",
		Direction:    log.DirectionOut,
		Layer:        log.LayerTransfer,
		Category:     log.CategoryTransfer,
		Transfer: &log.TransferEvent{
			Kind:       cyphal.KindMessage,
			PortID:     7,
			TransferID: 0x13,
			Priority:   cyphal.PriorityNominal,
			PeerNode:   0x45,
			Size:       8,
		},
	}
	encoded, err := log.EncodeEvent(e)
	require.NoError(t, err)

	decoded, err := log.DecodeEvent(encoded)
	require.NoError(t, err)
	require.Equal(t, e.ConnectionID, decoded.ConnectionID)
	require.Equal(t, e.Transfer.TransferID, decoded.Transfer.TransferID)
	require.Equal(t, e.Transfer.PortID, decoded.Transfer.PortID)
}

func TestFileLoggerRoundTripThroughReader(t *testing.T) {
	path := t.TempDir() + "/trace.clog"
	fl, err := log.NewFileLogger(path)
	require.NoError(t, err)

	fl.Log(log.Event{ConnectionID: "a", Category: log.CategoryFrame, Frame: &log.FrameEvent{CANID: 1, Size: 8}})
	fl.Log(log.Event{ConnectionID: "b", Category: log.CategoryFrame, Frame: &log.FrameEvent{CANID: 2, Size: 4}})
	require.NoError(t, fl.Close())

	r, err := log.NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	first, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "a", first.ConnectionID)

	second, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "b", second.ConnectionID)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestFilteredReaderSkipsNonMatching(t *testing.T) {
	path := t.TempDir() + "/trace.clog"
	fl, err := log.NewFileLogger(path)
	require.NoError(t, err)
	fl.Log(log.Event{ConnectionID: "a", Direction: log.DirectionIn})
	fl.Log(log.Event{ConnectionID: "b", Direction: log.DirectionOut})
	require.NoError(t, fl.Close())

	out := log.DirectionOut
	r, err := log.NewFilteredReader(path, log.Filter{Direction: &out})
	require.NoError(t, err)
	defer r.Close()

	e, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "b", e.ConnectionID)
}
