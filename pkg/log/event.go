package log

import (
	"time"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
)

// Event is a single captured occurrence at any layer of the transport
// core. CBOR encoding uses integer keys for compactness.
type Event struct {
	Timestamp    time.Time `cbor:"1,keyasint"`
	ConnectionID string    `cbor:"2,keyasint"` // correlates events from one engine/client instance
	Direction    Direction `cbor:"3,keyasint"`
	Layer        Layer     `cbor:"4,keyasint"`
	Category     Category  `cbor:"5,keyasint"`

	Frame    *FrameEvent     `cbor:"10,keyasint,omitempty"`
	Transfer *TransferEvent  `cbor:"11,keyasint,omitempty"`
	Session  *SessionEvent   `cbor:"12,keyasint,omitempty"`
	Promise  *PromiseEvent   `cbor:"13,keyasint,omitempty"`
	Error    *ErrorEventData `cbor:"14,keyasint,omitempty"`
}

// Direction indicates the direction of flow.
type Direction uint8

const (
	DirectionIn  Direction = 0
	DirectionOut Direction = 1
)

func (d Direction) String() string {
	if d == DirectionOut {
		return "out"
	}
	return "in"
}

// Layer identifies which layer of the stack produced the event.
type Layer uint8

const (
	LayerFrame Layer = iota
	LayerTransfer
	LayerSession
	LayerPromise
)

func (l Layer) String() string {
	switch l {
	case LayerFrame:
		return "frame"
	case LayerTransfer:
		return "transfer"
	case LayerSession:
		return "session"
	case LayerPromise:
		return "promise"
	default:
		return "unknown"
	}
}

// Category classifies which typed payload field of Event is set.
type Category uint8

const (
	CategoryFrame Category = iota
	CategoryTransfer
	CategorySession
	CategoryPromise
	CategoryError
)

func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "frame"
	case CategoryTransfer:
		return "transfer"
	case CategorySession:
		return "session"
	case CategoryPromise:
		return "promise"
	case CategoryError:
		return "error"
	default:
		return "unknown"
	}
}

// FrameEvent captures a single CAN frame pushed to or popped from a
// medium.
type FrameEvent struct {
	MediaIndex int    `cbor:"1,keyasint"`
	CANID      uint32 `cbor:"2,keyasint"`
	Size       int    `cbor:"3,keyasint"`
}

// TransferEvent captures a complete transfer dispatched or received.
type TransferEvent struct {
	Kind       cyphal.Kind       `cbor:"1,keyasint"`
	PortID     cyphal.PortID     `cbor:"2,keyasint"`
	TransferID cyphal.TransferID `cbor:"3,keyasint"`
	Priority   cyphal.Priority   `cbor:"4,keyasint"`
	PeerNode   cyphal.NodeID     `cbor:"5,keyasint"`
	Size       int               `cbor:"6,keyasint"`
}

// SessionEvent captures a session attach/detach transition.
type SessionEvent struct {
	Kind     cyphal.Kind   `cbor:"1,keyasint"`
	PortID   cyphal.PortID `cbor:"2,keyasint"`
	OldState string        `cbor:"3,keyasint"`
	NewState string        `cbor:"4,keyasint"`
}

// PromiseEvent captures a response promise reaching a terminal state.
type PromiseEvent struct {
	ServiceID  cyphal.PortID     `cbor:"1,keyasint"`
	TransferID cyphal.TransferID `cbor:"2,keyasint"`
	Outcome    string            `cbor:"3,keyasint"` // "success" or "expired"
	Latency    time.Duration     `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData captures a fallible operation's failure.
type ErrorEventData struct {
	Layer   Layer  `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint"`
}
