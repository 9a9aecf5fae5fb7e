package transport

import (
	"fmt"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
	"github.com/cyphal-go/transport-core/pkg/wireframe"
)

func (e *Engine) requireLocalNode() error {
	if !e.localNode.IsSet() {
		return fmt.Errorf("transport: node is anonymous, service transfers unavailable: %w", cyphal.ErrArgument)
	}
	return nil
}

// MessageTxSession publishes broadcast messages for one subject. An
// anonymous node may still publish single-frame messages, but never
// multi-frame ones: without a node id, a receiver has no way to
// associate the fragments of one transfer with their source, so
// anonymous multi-frame publication is rejected outright rather than
// sent and silently undeliverable.
type MessageTxSession struct {
	engine     *Engine
	subject    cyphal.PortID
	transferID cyphal.TransferID
}

// NewMessageTxSession creates a publisher for subject.
func (e *Engine) NewMessageTxSession(subject cyphal.PortID) *MessageTxSession {
	return &MessageTxSession{engine: e, subject: subject}
}

// Send broadcasts payload at priority, returning before deadline
// elapses on any medium that cannot accept it in time. It returns
// cyphal.ErrArgument without pushing anything if the node is anonymous
// and payload would require more than one frame on any configured
// medium.
func (s *MessageTxSession) Send(priority cyphal.Priority, payload []byte, deadline cyphal.TimePoint) error {
	anonymous := !s.engine.localNode.IsSet()
	if anonymous {
		for _, m := range s.engine.media {
			if !wireframe.FitsSingleFrame(len(payload), m.MTU()) {
				return fmt.Errorf("transport: anonymous node cannot send multi-frame message: %w", cyphal.ErrArgument)
			}
		}
	}
	id := wireframe.EncodeMessageID(wireframe.MessageID{
		Priority:   priority,
		Anonymous:  anonymous,
		Subject:    s.subject,
		SourceNode: s.engine.localNode,
	})
	tid := s.transferID
	s.transferID = (s.transferID + 1) % cyphal.TransferIDModuloCAN
	return s.engine.sendTransfer(id, priority, tid, payload, deadline)
}

// ServiceRequestTxSession issues requests to one service on a specific
// server node, on the client side. Constructing one requires the
// local node id to be set.
type ServiceRequestTxSession struct {
	engine      *Engine
	service     cyphal.PortID
	destination cyphal.NodeID
	transferID  cyphal.TransferID
}

// NewServiceRequestTxSession creates a client-side request issuer for
// service, targeting destination. It returns cyphal.ErrArgument if the
// local node id is unset.
func (e *Engine) NewServiceRequestTxSession(service cyphal.PortID, destination cyphal.NodeID) (*ServiceRequestTxSession, error) {
	if err := e.requireLocalNode(); err != nil {
		return nil, err
	}
	return &ServiceRequestTxSession{engine: e, service: service, destination: destination}, nil
}

// Send issues one request and returns the transfer id it was sent
// under, so the caller can correlate the eventual response.
func (s *ServiceRequestTxSession) Send(priority cyphal.Priority, payload []byte, deadline cyphal.TimePoint) (cyphal.TransferID, error) {
	id := wireframe.EncodeServiceID(wireframe.ServiceID{
		Priority:    priority,
		IsRequest:   true,
		Service:     s.service,
		Destination: s.destination,
		SourceNode:  s.engine.localNode,
	})
	tid := s.transferID
	s.transferID = (s.transferID + 1) % cyphal.TransferIDModuloCAN
	return tid, s.engine.sendTransfer(id, priority, tid, payload, deadline)
}

// ServiceResponseTxSession sends responses to requests this node
// received, on the server side. The response reuses the request's
// transfer id so the client can correlate it.
type ServiceResponseTxSession struct {
	engine  *Engine
	service cyphal.PortID
}

// NewServiceResponseTxSession creates a server-side response sender
// for service. It returns cyphal.ErrArgument if the local node id is
// unset.
func (e *Engine) NewServiceResponseTxSession(service cyphal.PortID) (*ServiceResponseTxSession, error) {
	if err := e.requireLocalNode(); err != nil {
		return nil, err
	}
	return &ServiceResponseTxSession{engine: e, service: service}, nil
}

// Send replies to destination with payload under the given transfer
// id (copied from the originating request).
func (s *ServiceResponseTxSession) Send(destination cyphal.NodeID, transferID cyphal.TransferID, priority cyphal.Priority, payload []byte, deadline cyphal.TimePoint) error {
	id := wireframe.EncodeServiceID(wireframe.ServiceID{
		Priority:    priority,
		IsRequest:   false,
		Service:     s.service,
		Destination: destination,
		SourceNode:  s.engine.localNode,
	})
	return s.engine.sendTransfer(id, priority, transferID, payload, deadline)
}
