package wireframe

import "github.com/cyphal-go/transport-core/pkg/cyphal"

// CANID is a 29-bit extended CAN identifier as used by Cyphal/CAN v1.
// Only the low 29 bits are significant; bit 28 is the MSB.
type CANID uint32

const canIDMask = 0x1FFFFFFF

// MessageID is the set of fields carried by a message-kind CAN
// identifier.
type MessageID struct {
	Priority   cyphal.Priority
	Anonymous  bool
	Subject    cyphal.PortID // 16 bits
	SourceNode cyphal.NodeID // 7 bits, ignored if Anonymous
}

// ServiceID is the set of fields carried by a service-kind (request or
// response) CAN identifier.
type ServiceID struct {
	Priority    cyphal.Priority
	IsRequest   bool
	Service     cyphal.PortID // 7 bits
	Destination cyphal.NodeID // 7 bits
	SourceNode  cyphal.NodeID // 7 bits
}

// Field layout (bit 28 is MSB):
//
//	[28:26] priority (3 bits)
//	[25]    service-not-message flag
//
// Message frames:
//
//	[24]    anonymous flag
//	[23:8]  subject-id (16 bits)
//	[7:1]   source node-id (7 bits, meaningless if anonymous)
//	[0]     reserved, always 0
//
// Service frames:
//
//	[24]    is-request flag
//	[23:17] service-id (7 bits)
//	[16:10] destination node-id (7 bits)
//	[9:3]   source node-id (7 bits)
//	[2:0]   reserved, always 0
const (
	priorityShift    = 26
	serviceFlagShift = 25

	msgAnonShift    = 24
	msgSubjectShift = 8
	msgSourceShift  = 1

	svcIsReqShift = 24
	svcServShift  = 17
	svcDestShift  = 10
	svcSourceShift = 3
)

// EncodeMessageID packs m into a 29-bit CAN identifier.
func EncodeMessageID(m MessageID) CANID {
	id := uint32(m.Priority)<<priorityShift | 0<<serviceFlagShift
	if m.Anonymous {
		id |= 1 << msgAnonShift
	}
	id |= uint32(m.Subject) << msgSubjectShift
	id |= uint32(m.SourceNode&0x7F) << msgSourceShift
	return CANID(id & canIDMask)
}

// EncodeServiceID packs s into a 29-bit CAN identifier.
func EncodeServiceID(s ServiceID) CANID {
	id := uint32(s.Priority)<<priorityShift | 1<<serviceFlagShift
	if s.IsRequest {
		id |= 1 << svcIsReqShift
	}
	id |= uint32(s.Service&0x7F) << svcServShift
	id |= uint32(s.Destination&0x7F) << svcDestShift
	id |= uint32(s.SourceNode&0x7F) << svcSourceShift
	return CANID(id & canIDMask)
}

// IsService reports whether id encodes a service (request/response)
// transfer rather than a message.
func (id CANID) IsService() bool {
	return uint32(id)&(1<<serviceFlagShift) != 0
}

// Priority extracts the arbitration priority field common to every
// identifier layout.
func (id CANID) Priority() cyphal.Priority {
	return cyphal.Priority(uint32(id) >> priorityShift & 0x7)
}

// DecodeMessageID unpacks id as a message identifier. The caller must
// have checked IsService() first.
func (id CANID) DecodeMessageID() MessageID {
	v := uint32(id)
	return MessageID{
		Priority:   id.Priority(),
		Anonymous:  v&(1<<msgAnonShift) != 0,
		Subject:    cyphal.PortID(v >> msgSubjectShift & 0xFFFF),
		SourceNode: cyphal.NodeID(v >> msgSourceShift & 0x7F),
	}
}

// DecodeServiceID unpacks id as a service identifier. The caller must
// have checked IsService() first.
func (id CANID) DecodeServiceID() ServiceID {
	v := uint32(id)
	return ServiceID{
		Priority:    id.Priority(),
		IsRequest:   v&(1<<svcIsReqShift) != 0,
		Service:     cyphal.PortID(v >> svcServShift & 0x7F),
		Destination: cyphal.NodeID(v >> svcDestShift & 0x7F),
		SourceNode:  cyphal.NodeID(v >> svcSourceShift & 0x7F),
	}
}
