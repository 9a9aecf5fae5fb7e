package cyphal

import "time"

// NodeID identifies a participant on the bus. UnsetNodeID marks an
// anonymous node: it may publish messages but never originate or
// receive service transfers.
type NodeID uint16

// UnsetNodeID is the distinguished "anonymous" node identifier.
const UnsetNodeID NodeID = 0xFFFF

// MaxNodeIDCAN is the largest valid node id on a Cyphal/CAN bus.
const MaxNodeIDCAN NodeID = 127

// IsSet reports whether id is a concrete (non-anonymous) node id.
func (id NodeID) IsSet() bool {
	return id != UnsetNodeID
}

// PortID identifies a subject (message) or service within its
// transfer-kind namespace. Subject-ids and service-ids share this
// numeric type but are never compared across kinds.
type PortID uint16

// TransferID is monotonically increasing modulo TransferIDModuloCAN (or
// a transport-specific modulo) per (source, destination, kind, port).
type TransferID uint64

// TransferIDModuloCAN is the modulo for Cyphal/CAN transfer ids (5-bit
// tail-byte field).
const TransferIDModuloCAN TransferID = 32

// Priority totally orders transfers for TX arbitration. Zero value is
// the highest priority, matching Cyphal's on-wire encoding.
type Priority uint8

const (
	PriorityExceptional Priority = iota
	PriorityImmediate
	PriorityFast
	PriorityHigh
	PriorityNominal
	PriorityLow
	PrioritySlow
	PriorityOptional
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch p {
	case PriorityExceptional:
		return "EXCEPTIONAL"
	case PriorityImmediate:
		return "IMMEDIATE"
	case PriorityFast:
		return "FAST"
	case PriorityHigh:
		return "HIGH"
	case PriorityNominal:
		return "NOMINAL"
	case PriorityLow:
		return "LOW"
	case PrioritySlow:
		return "SLOW"
	case PriorityOptional:
		return "OPTIONAL"
	default:
		return "UNKNOWN"
	}
}

// Less reports whether p should be serviced before other (lower
// numeric value wins).
func (p Priority) Less(other Priority) bool {
	return p < other
}

// Kind is the closed set of transfer kinds. Filter construction and
// subscription indexing are parametric on Kind, so it must never grow
// beyond these three values.
type Kind uint8

const (
	KindMessage Kind = iota
	KindRequest
	KindResponse
)

// String returns a human-readable transfer-kind name.
func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "MESSAGE"
	case KindRequest:
		return "REQUEST"
	case KindResponse:
		return "RESPONSE"
	default:
		return "UNKNOWN"
	}
}

// TimePoint is a monotonic-clock reading at microsecond resolution.
type TimePoint time.Time

// TimePointNever is the distinguished "never expires" deadline.
var TimePointNever = TimePoint(time.Unix(1<<62, 0))

// Before reports whether t is strictly earlier than other.
func (t TimePoint) Before(other TimePoint) bool {
	return time.Time(t).Before(time.Time(other))
}

// After reports whether t is strictly later than other.
func (t TimePoint) After(other TimePoint) bool {
	return time.Time(t).After(time.Time(other))
}

// Add returns t advanced by d.
func (t TimePoint) Add(d time.Duration) TimePoint {
	return TimePoint(time.Time(t).Add(d))
}

// Sub returns the duration between t and other.
func (t TimePoint) Sub(other TimePoint) time.Duration {
	return time.Time(t).Sub(time.Time(other))
}

// Metadata carries the per-transfer envelope common to inbound and
// outbound transfers.
type Metadata struct {
	Priority     Priority
	TransferID   TransferID
	SourceNode   NodeID // UnsetNodeID if not applicable/anonymous origin
	Timestamp    TimePoint
}

// Transfer is the application-level unit of communication: metadata
// plus an opaque payload. Fragmentation into frames and reassembly
// from frames is the concern of pkg/wireframe.
type Transfer struct {
	Metadata Metadata
	Payload  []byte
}

// ProtocolParams describes the operating envelope of a transport
// instance, computed from its configured media set.
type ProtocolParams struct {
	TransferIDModulo TransferID
	MinMTU           int
	MaxNodes         int
}
