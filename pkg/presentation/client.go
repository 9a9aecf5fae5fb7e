package presentation

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
	"github.com/cyphal-go/transport-core/pkg/log"
	"github.com/cyphal-go/transport-core/pkg/transport"
)

// Deserializer decodes a raw response payload into out. The default
// uses CBOR, standing in for a generated (Nunavut-style) codec; hosts
// may supply their own for a different wire representation.
type Deserializer func(data []byte, out any) error

func defaultDeserializer(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}

// defaultResponseExtent bounds a response payload's assembled size,
// generous enough for a CBOR-encoded typed response without letting a
// misbehaving server grow the reassembly buffer without limit.
const defaultResponseExtent = 1 << 16

// ClientOption configures a Client at construction time.
type ClientOption func(*Client)

// WithDeserializer overrides the default CBOR response deserializer.
func WithDeserializer(d Deserializer) ClientOption {
	return func(c *Client) { c.deser = d }
}

// WithLogger attaches a log.Logger for promise resolution events.
func WithLogger(l log.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithResponseExtent overrides the maximum assembled size of a single
// response payload. The default is defaultResponseExtent.
func WithResponseExtent(extent int) ClientOption {
	return func(c *Client) { c.extent = extent }
}

// WithResponseTimeout overrides how long a partially-received
// multi-frame response is kept before being discarded. The default is
// transport.DefaultTransferIDTimeout.
func WithResponseTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.timeout = timeout }
}

// Client is a shared client for one service: every in-flight request
// to any destination node shares a single response subscription,
// demultiplexed by transfer id.
type Client struct {
	engine  *transport.Engine
	service cyphal.PortID
	respRx  *transport.ServiceResponseRxSession
	reqTx   map[cyphal.NodeID]*transport.ServiceRequestTxSession

	promises map[cyphal.TransferID]*ResponsePromise
	deser    Deserializer
	logger   log.Logger

	extent  int
	timeout time.Duration

	connectionID string
}

// NewClient creates a shared client for service. It fails if the
// engine's local node id is unset (anonymous nodes cannot issue
// service requests).
func NewClient(engine *transport.Engine, service cyphal.PortID, opts ...ClientOption) (*Client, error) {
	c := &Client{
		engine:       engine,
		service:      service,
		reqTx:        make(map[cyphal.NodeID]*transport.ServiceRequestTxSession),
		promises:     make(map[cyphal.TransferID]*ResponsePromise),
		deser:        defaultDeserializer,
		logger:       log.NoopLogger{},
		extent:       defaultResponseExtent,
		connectionID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.NoopLogger{}
	}
	respRx, err := engine.SubscribeResponse(service, c.extent, c.timeout)
	if err != nil {
		return nil, err
	}
	c.respRx = respRx
	return c, nil
}

// Close releases the client's response subscription. Any promises
// still pending will never resolve; callers should Cancel them first.
func (c *Client) Close() {
	c.respRx.Close()
}

// RequestRaw issues a request to destination and returns a promise
// for its raw response bytes. timeout is measured from now.
func (c *Client) RequestRaw(destination cyphal.NodeID, priority cyphal.Priority, payload []byte, timeout time.Duration, now cyphal.TimePoint) (*ResponsePromise, error) {
	tx, err := c.txFor(destination)
	if err != nil {
		return nil, err
	}
	deadline := now.Add(timeout)
	tid, err := tx.Send(priority, payload, deadline)
	if err != nil {
		return nil, err
	}
	p := &ResponsePromise{
		client:     c,
		transferID: tid,
		deadline:   deadline,
		requestAt:  now,
		state:      statePending,
	}
	c.promises[tid] = p
	return p, nil
}

// TypedPromise wraps a ResponsePromise with the client's deserializer
// for a typed request/response round trip.
type TypedPromise struct {
	raw    *ResponsePromise
	client *Client
}

// Underlying returns the wrapped raw promise.
func (t *TypedPromise) Underlying() *ResponsePromise { return t.raw }

// FetchTyped consumes the promise, decoding its payload into out via
// the client's Deserializer. ok is false while still pending.
func (t *TypedPromise) FetchTyped(out any) (expired bool, ok bool, err error) {
	payload, expired, ok := t.raw.FetchResult()
	if !ok || expired {
		return expired, ok, nil
	}
	if decErr := t.client.deser(payload, out); decErr != nil {
		return false, true, fmt.Errorf("presentation: decode response: %w", cyphal.ErrSerialization)
	}
	return false, true, nil
}

// Request issues a request to destination and returns a TypedPromise
// that decodes its response via the client's Deserializer.
func (c *Client) Request(destination cyphal.NodeID, priority cyphal.Priority, payload []byte, timeout time.Duration, now cyphal.TimePoint) (*TypedPromise, error) {
	raw, err := c.RequestRaw(destination, priority, payload, timeout, now)
	if err != nil {
		return nil, err
	}
	return &TypedPromise{raw: raw, client: c}, nil
}

func (c *Client) txFor(destination cyphal.NodeID) (*transport.ServiceRequestTxSession, error) {
	if tx, ok := c.reqTx[destination]; ok {
		return tx, nil
	}
	tx, err := c.engine.NewServiceRequestTxSession(c.service, destination)
	if err != nil {
		return nil, err
	}
	c.reqTx[destination] = tx
	return tx, nil
}

func (c *Client) forget(tid cyphal.TransferID) {
	delete(c.promises, tid)
}

// Run drains arrived responses into their matching promise and expires
// any promise whose deadline has passed, firing a promise's callback
// synchronously if one was installed via SetCallback. It must be
// polled by the host alongside the transport engine's own Run.
func (c *Client) Run(now cyphal.TimePoint) {
	for {
		resp, ok := c.respRx.Receive()
		if !ok {
			break
		}
		p, tracked := c.promises[resp.Metadata.TransferID]
		if !tracked {
			continue
		}
		p.state = stateResolved
		p.payload = resp.Payload
		c.logger.Log(log.Event{
			Timestamp:    time.Time(now),
			ConnectionID: c.connectionID,
			Category:     log.CategoryPromise,
			Layer:        log.LayerPromise,
			Promise: &log.PromiseEvent{
				ServiceID:  c.service,
				TransferID: p.transferID,
				Outcome:    "success",
				Latency:    now.Sub(p.requestAt),
			},
		})
		if p.callback != nil {
			p.fireCallback()
		}
	}
	for tid, p := range c.promises {
		if p.state == statePending && now.After(p.deadline) {
			p.state = stateExpired
			c.logger.Log(log.Event{
				Timestamp:    time.Time(now),
				ConnectionID: c.connectionID,
				Category:     log.CategoryPromise,
				Layer:        log.LayerPromise,
				Promise: &log.PromiseEvent{
					ServiceID:  c.service,
					TransferID: tid,
					Outcome:    "expired",
					Latency:    now.Sub(p.requestAt),
				},
			})
			if p.callback != nil {
				p.fireCallback()
			}
		}
	}
}
