package transport

import (
	"github.com/cyphal-go/transport-core/pkg/cyphal"
	"github.com/cyphal-go/transport-core/pkg/wireframe"
)

// Filter describes one hardware (or software) acceptance filter: a
// frame is accepted when (canID & Mask) == (ID & Mask).
type Filter struct {
	ID   uint32
	Mask uint32
}

// Media is one physical or virtual CAN interface. Push and Pop must
// never block: a full outgoing hardware queue reports itself busy
// rather than waiting, and Pop returns immediately with ok=false when
// nothing is available.
type Media interface {
	// MTU returns the number of payload bytes (including the tail
	// byte) a single frame on this medium can carry.
	MTU() int

	// Push attempts to hand one frame to the medium for transmission
	// before deadline elapses. accepted is false, with a nil error,
	// when the medium's own queue is momentarily full; the caller
	// should retry later. A non-nil error indicates a media failure
	// and wraps cyphal.ErrMedia.
	Push(deadline cyphal.TimePoint, id wireframe.CANID, payload []byte) (accepted bool, err error)

	// Pop retrieves the next received frame, if any. ok is false when
	// nothing is queued. A non-nil error wraps cyphal.ErrMedia.
	Pop() (id wireframe.CANID, payload []byte, ok bool, err error)

	// SetFilters installs the acceptance filter set computed from the
	// engine's active subscriptions. It is called whenever the
	// subscription set changes.
	SetFilters(filters []Filter) error
}
