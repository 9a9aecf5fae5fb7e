package wireframe

import "github.com/cyphal-go/transport-core/pkg/cyphal"

// FilterMessage returns the (id, mask) pair a Media should install to
// accept any message frame for subject, from any source node and at
// any priority.
func FilterMessage(subject cyphal.PortID) (id, mask uint32) {
	id = uint32(subject) << msgSubjectShift
	mask = 1<<serviceFlagShift | 0xFFFF<<msgSubjectShift
	return id, mask
}

// FilterService returns the (id, mask) pair a Media should install to
// accept service frames of the given request/response direction for
// service, addressed to destination, from any source node and at any
// priority.
func FilterService(isRequest bool, service cyphal.PortID, destination cyphal.NodeID) (id, mask uint32) {
	id = 1 << serviceFlagShift
	if isRequest {
		id |= 1 << svcIsReqShift
	}
	id |= uint32(service&0x7F) << svcServShift
	id |= uint32(destination&0x7F) << svcDestShift
	mask = 1<<serviceFlagShift | 1<<svcIsReqShift | 0x7F<<svcServShift | 0x7F<<svcDestShift
	return id, mask
}
