package presentation_test

import (
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
	"github.com/cyphal-go/transport-core/pkg/presentation"
	"github.com/cyphal-go/transport-core/pkg/transport"
	"github.com/cyphal-go/transport-core/pkg/wireframe"
)

type fakeMedia struct {
	mtu    int
	outbox []wireframe.Frame
	inbox  []wireframe.Frame
}

func newFakeMedia(mtu int) *fakeMedia { return &fakeMedia{mtu: mtu} }

func (m *fakeMedia) MTU() int { return m.mtu }

func (m *fakeMedia) Push(deadline cyphal.TimePoint, id wireframe.CANID, payload []byte) (bool, error) {
	m.outbox = append(m.outbox, wireframe.Frame{ID: id, Payload: append([]byte{}, payload...)})
	return true, nil
}

func (m *fakeMedia) Pop() (wireframe.CANID, []byte, bool, error) {
	if len(m.inbox) == 0 {
		return 0, nil, false, nil
	}
	f := m.inbox[0]
	m.inbox = m.inbox[1:]
	return f.ID, f.Payload, true, nil
}

func (m *fakeMedia) SetFilters(filters []transport.Filter) error { return nil }

func deliver(a, b *fakeMedia) {
	b.inbox = append(b.inbox, a.outbox...)
	a.outbox = nil
}

func tp(sec int) cyphal.TimePoint { return cyphal.TimePoint(time.Unix(int64(sec), 0)) }

func TestRequestResolvesViaClientRun(t *testing.T) {
	clientMedia := newFakeMedia(8)
	clientEngine, err := transport.NewEngine([]transport.Media{clientMedia}, transport.EngineConfig{LocalNode: 1})
	require.NoError(t, err)

	serverMedia := newFakeMedia(8)
	serverEngine, err := transport.NewEngine([]transport.Media{serverMedia}, transport.EngineConfig{LocalNode: 2})
	require.NoError(t, err)

	serverRx, err := serverEngine.SubscribeRequest(10, 0, 0)
	require.NoError(t, err)
	serverTx, err := serverEngine.NewServiceResponseTxSession(10)
	require.NoError(t, err)
	require.NoError(t, serverEngine.Run(tp(0)))

	client, err := presentation.NewClient(clientEngine, 10)
	require.NoError(t, err)
	require.NoError(t, clientEngine.Run(tp(0)))

	promise, err := client.RequestRaw(2, cyphal.PriorityHigh, []byte("ping"), 5*time.Second, tp(0))
	require.NoError(t, err)
	require.NoError(t, clientEngine.Run(tp(0)))

	deliver(clientMedia, serverMedia)
	require.NoError(t, serverEngine.Run(tp(0)))

	req, ok := serverRx.Receive()
	require.True(t, ok)
	require.NoError(t, serverTx.Send(1, promise.TransferID(), cyphal.PriorityHigh, append([]byte("pong-for-"), req.Payload...), cyphal.TimePointNever))
	require.NoError(t, serverEngine.Run(tp(0)))

	deliver(serverMedia, clientMedia)
	for i := 0; i < 3; i++ {
		require.NoError(t, clientEngine.Run(tp(0)))
	}
	client.Run(tp(0))

	payload, ready, expired := promise.GetResult()
	require.True(t, ready)
	require.False(t, expired)
	require.Equal(t, "pong-for-ping", string(payload))

	got, expired, ok := promise.FetchResult()
	require.True(t, ok)
	require.False(t, expired)
	require.Equal(t, "pong-for-ping", string(got))
}

func TestPromiseCallbackFiresOnResolution(t *testing.T) {
	clientMedia := newFakeMedia(8)
	clientEngine, err := transport.NewEngine([]transport.Media{clientMedia}, transport.EngineConfig{LocalNode: 1})
	require.NoError(t, err)

	serverMedia := newFakeMedia(8)
	serverEngine, err := transport.NewEngine([]transport.Media{serverMedia}, transport.EngineConfig{LocalNode: 2})
	require.NoError(t, err)

	serverRx, err := serverEngine.SubscribeRequest(11, 0, 0)
	require.NoError(t, err)
	serverTx, err := serverEngine.NewServiceResponseTxSession(11)
	require.NoError(t, err)
	require.NoError(t, serverEngine.Run(tp(0)))

	client, err := presentation.NewClient(clientEngine, 11)
	require.NoError(t, err)
	require.NoError(t, clientEngine.Run(tp(0)))

	promise, err := client.RequestRaw(2, cyphal.PriorityHigh, []byte("ping"), 5*time.Second, tp(0))
	require.NoError(t, err)
	require.NoError(t, clientEngine.Run(tp(0)))

	var gotPayload []byte
	var gotExpired bool
	fired := 0
	promise.SetCallback(func(payload []byte, expired bool) {
		fired++
		gotPayload = payload
		gotExpired = expired
	})
	require.Zero(t, fired, "callback must not fire until the promise resolves")

	deliver(clientMedia, serverMedia)
	require.NoError(t, serverEngine.Run(tp(0)))
	req, ok := serverRx.Receive()
	require.True(t, ok)
	require.NoError(t, serverTx.Send(1, promise.TransferID(), cyphal.PriorityHigh, append([]byte("pong-for-"), req.Payload...), cyphal.TimePointNever))
	require.NoError(t, serverEngine.Run(tp(0)))

	deliver(serverMedia, clientMedia)
	for i := 0; i < 3; i++ {
		require.NoError(t, clientEngine.Run(tp(0)))
	}
	client.Run(tp(0))

	require.Equal(t, 1, fired)
	require.False(t, gotExpired)
	require.Equal(t, "pong-for-ping", string(gotPayload))

	// The callback detaches the promise same as FetchResult: a second
	// Run tick must not fire it again.
	client.Run(tp(0))
	require.Equal(t, 1, fired)

	_, _, ok = promise.FetchResult()
	require.False(t, ok, "fetch must not observe a promise already delivered via callback")
}

func TestPromiseCallbackFiresImmediatelyIfAlreadyResolved(t *testing.T) {
	m := newFakeMedia(8)
	engine, err := transport.NewEngine([]transport.Media{m}, transport.EngineConfig{LocalNode: 1})
	require.NoError(t, err)
	client, err := presentation.NewClient(engine, 12)
	require.NoError(t, err)
	require.NoError(t, engine.Run(tp(0)))

	promise, err := client.RequestRaw(2, cyphal.PriorityNominal, []byte("x"), time.Second, tp(0))
	require.NoError(t, err)

	client.Run(tp(5))
	_, ready, expired := promise.GetResult()
	require.True(t, ready)
	require.True(t, expired)

	fired := 0
	promise.SetCallback(func(payload []byte, exp bool) {
		fired++
		require.True(t, exp)
	})
	require.Equal(t, 1, fired, "SetCallback must fire immediately when a result is already stored")
}

func TestRequestExpiresAfterDeadline(t *testing.T) {
	m := newFakeMedia(8)
	engine, err := transport.NewEngine([]transport.Media{m}, transport.EngineConfig{LocalNode: 1})
	require.NoError(t, err)
	client, err := presentation.NewClient(engine, 10)
	require.NoError(t, err)
	require.NoError(t, engine.Run(tp(0)))

	promise, err := client.RequestRaw(2, cyphal.PriorityNominal, []byte("x"), time.Second, tp(0))
	require.NoError(t, err)

	client.Run(tp(0))
	_, ready, expired := promiseSnapshot(promise)
	require.False(t, ready)
	require.False(t, expired)

	client.Run(tp(5))
	_, ready, expired = promiseSnapshot(promise)
	require.True(t, ready)
	require.True(t, expired)
}

func promiseSnapshot(p *presentation.ResponsePromise) (payload []byte, ready, expired bool) {
	payload, ready, expired = p.GetResult()
	return
}

func TestTypedRequestDecodesResponse(t *testing.T) {
	clientMedia := newFakeMedia(8)
	clientEngine, err := transport.NewEngine([]transport.Media{clientMedia}, transport.EngineConfig{LocalNode: 1})
	require.NoError(t, err)
	serverMedia := newFakeMedia(8)
	serverEngine, err := transport.NewEngine([]transport.Media{serverMedia}, transport.EngineConfig{LocalNode: 2})
	require.NoError(t, err)

	serverRx, err := serverEngine.SubscribeRequest(20, 0, 0)
	require.NoError(t, err)
	serverTx, err := serverEngine.NewServiceResponseTxSession(20)
	require.NoError(t, err)
	require.NoError(t, serverEngine.Run(tp(0)))

	client, err := presentation.NewClient(clientEngine, 20)
	require.NoError(t, err)
	require.NoError(t, clientEngine.Run(tp(0)))

	typed, err := client.Request(2, cyphal.PriorityNominal, []byte("go"), 5*time.Second, tp(0))
	require.NoError(t, err)
	require.NoError(t, clientEngine.Run(tp(0)))

	deliver(clientMedia, serverMedia)
	require.NoError(t, serverEngine.Run(tp(0)))

	req, ok := serverRx.Receive()
	require.True(t, ok)

	type result struct {
		OK bool `cbor:"ok"`
	}
	body, err := cbor.Marshal(result{OK: true})
	require.NoError(t, err)
	require.NoError(t, serverTx.Send(1, typed.Underlying().TransferID(), cyphal.PriorityNominal, body, cyphal.TimePointNever))
	require.NoError(t, serverEngine.Run(tp(0)))
	_ = req

	deliver(serverMedia, clientMedia)
	for i := 0; i < 3; i++ {
		require.NoError(t, clientEngine.Run(tp(0)))
	}
	client.Run(tp(0))

	var got result
	expired, ok, err := typed.FetchTyped(&got)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, expired)
	require.True(t, got.OK)
}
