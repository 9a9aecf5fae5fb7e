package presentation

import "github.com/cyphal-go/transport-core/pkg/cyphal"

// promiseState is the terminal or pending state of a ResponsePromise.
type promiseState uint8

const (
	statePending promiseState = iota
	stateResolved
	stateExpired
)

// ResponsePromise correlates one outstanding request with its
// eventual response. It is single-owner: obtained from Client.Request
// or Client.RequestRaw and consumed at most once via FetchResult.
type ResponsePromise struct {
	client     *Client
	transferID cyphal.TransferID
	deadline   cyphal.TimePoint
	requestAt  cyphal.TimePoint

	state    promiseState
	payload  []byte
	consumed bool

	callback func(payload []byte, expired bool)
}

// TransferID returns the transfer id the request was sent under, the
// same id the eventual response will carry.
func (p *ResponsePromise) TransferID() cyphal.TransferID { return p.transferID }

// RequestTime returns when the request was issued.
func (p *ResponsePromise) RequestTime() cyphal.TimePoint { return p.requestAt }

// GetResult peeks at the current state without consuming it: ready is
// true once a response has arrived or the deadline has passed. It is
// safe to call repeatedly.
func (p *ResponsePromise) GetResult() (payload []byte, ready bool, expired bool) {
	switch p.state {
	case stateResolved:
		return p.payload, true, false
	case stateExpired:
		return nil, true, true
	default:
		return nil, false, false
	}
}

// FetchResult consumes the promise: ok is false while still pending
// and stays false on every call after the first non-pending one, since
// the result was already delivered. The first non-pending call detaches
// the promise from its client.
func (p *ResponsePromise) FetchResult() (payload []byte, expired bool, ok bool) {
	if p.state == statePending || p.consumed {
		return nil, false, false
	}
	p.consumed = true
	p.client.forget(p.transferID)
	return p.payload, p.state == stateExpired, true
}

// Cancel abandons the promise before it resolves, releasing its slot
// in the client's pending set. It is a no-op if already resolved.
func (p *ResponsePromise) Cancel() {
	p.client.forget(p.transferID)
}

// SetCallback installs fn to be invoked once, the moment the promise
// resolves or expires, instead of requiring the caller to poll
// GetResult or FetchResult. Passing nil clears a previously installed
// callback without firing it. If the promise has already resolved or
// expired by the time SetCallback is called, fn fires immediately and
// synchronously, before SetCallback returns.
//
// Installing a callback is mutually exclusive with fetching: once fn
// fires, the promise is detached from its client exactly as FetchResult
// would detach it, so a subsequent FetchResult call only ever sees the
// pending state.
func (p *ResponsePromise) SetCallback(fn func(payload []byte, expired bool)) {
	p.callback = fn
	if fn == nil || p.state == statePending {
		return
	}
	p.fireCallback()
}

// fireCallback moves the installed callback out of the promise before
// invoking it, so a callback that reinstalls itself (or clears itself)
// during its own execution does not race the invocation in progress.
func (p *ResponsePromise) fireCallback() {
	fn := p.callback
	p.callback = nil
	payload, expired, _ := p.FetchResult()
	fn(payload, expired)
}
