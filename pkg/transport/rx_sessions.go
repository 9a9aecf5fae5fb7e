package transport

import (
	"time"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
	"github.com/cyphal-go/transport-core/pkg/log"
)

// MessageRxSession receives broadcast messages for one subject.
type MessageRxSession struct {
	*rxState
	engine  *Engine
	subject cyphal.PortID
}

// Subject returns the subscribed subject id.
func (s *MessageRxSession) Subject() cyphal.PortID { return s.subject }

// Close unsubscribes the session. Further Receive calls return
// nothing new.
func (s *MessageRxSession) Close() {
	if !s.attached {
		return
	}
	s.attached = false
	s.engine.tree.unsubscribe(cyphal.KindMessage, s.subject)
	s.engine.markFiltersDirty()
	s.engine.logSessionTransition(cyphal.KindMessage, s.subject, "attached", "closed")
}

// ServiceRequestRxSession receives incoming requests for one service,
// on the server side. Constructing one requires the local node id to
// be set: an anonymous node cannot be a service server.
type ServiceRequestRxSession struct {
	*rxState
	engine  *Engine
	service cyphal.PortID
}

func (s *ServiceRequestRxSession) Service() cyphal.PortID { return s.service }

func (s *ServiceRequestRxSession) Close() {
	if !s.attached {
		return
	}
	s.attached = false
	s.engine.tree.unsubscribe(cyphal.KindRequest, s.service)
	s.engine.markFiltersDirty()
	s.engine.logSessionTransition(cyphal.KindRequest, s.service, "attached", "closed")
}

// ServiceResponseRxSession receives responses to requests this node
// issued for one service, on the client side. Used internally by
// pkg/presentation's shared client.
type ServiceResponseRxSession struct {
	*rxState
	engine  *Engine
	service cyphal.PortID
}

func (s *ServiceResponseRxSession) Service() cyphal.PortID { return s.service }

func (s *ServiceResponseRxSession) Close() {
	if !s.attached {
		return
	}
	s.attached = false
	s.engine.tree.unsubscribe(cyphal.KindResponse, s.service)
	s.engine.markFiltersDirty()
	s.engine.logSessionTransition(cyphal.KindResponse, s.service, "attached", "closed")
}

// SubscribeMessage attaches a new MessageRxSession for subject. extent
// bounds the assembled payload size in bytes (zero means unbounded);
// timeout bounds how long a partial multi-frame transfer is kept
// before eviction (zero means DefaultTransferIDTimeout).
func (e *Engine) SubscribeMessage(subject cyphal.PortID, extent int, timeout time.Duration) (*MessageRxSession, error) {
	rs := newRXState(len(e.media), extent, timeout)
	sess := &MessageRxSession{rxState: rs, engine: e, subject: subject}
	if err := e.tree.subscribe(cyphal.KindMessage, subject, sess); err != nil {
		return nil, err
	}
	e.markFiltersDirty()
	e.logSessionTransition(cyphal.KindMessage, subject, "detached", "attached")
	return sess, nil
}

// SubscribeRequest attaches a new ServiceRequestRxSession for service.
// It returns cyphal.ErrArgument if the local node id is unset. extent
// and timeout are as for SubscribeMessage.
func (e *Engine) SubscribeRequest(service cyphal.PortID, extent int, timeout time.Duration) (*ServiceRequestRxSession, error) {
	if err := e.requireLocalNode(); err != nil {
		return nil, err
	}
	rs := newRXState(len(e.media), extent, timeout)
	sess := &ServiceRequestRxSession{rxState: rs, engine: e, service: service}
	if err := e.tree.subscribe(cyphal.KindRequest, service, sess); err != nil {
		return nil, err
	}
	e.markFiltersDirty()
	e.logSessionTransition(cyphal.KindRequest, service, "detached", "attached")
	return sess, nil
}

// SubscribeResponse attaches a new ServiceResponseRxSession for
// service. It returns cyphal.ErrArgument if the local node id is
// unset. extent and timeout are as for SubscribeMessage.
func (e *Engine) SubscribeResponse(service cyphal.PortID, extent int, timeout time.Duration) (*ServiceResponseRxSession, error) {
	if err := e.requireLocalNode(); err != nil {
		return nil, err
	}
	rs := newRXState(len(e.media), extent, timeout)
	sess := &ServiceResponseRxSession{rxState: rs, engine: e, service: service}
	if err := e.tree.subscribe(cyphal.KindResponse, service, sess); err != nil {
		return nil, err
	}
	e.markFiltersDirty()
	e.logSessionTransition(cyphal.KindResponse, service, "detached", "attached")
	return sess, nil
}

// logSessionTransition records a subscription attach/detach transition.
func (e *Engine) logSessionTransition(kind cyphal.Kind, port cyphal.PortID, oldState, newState string) {
	e.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: e.connectionID,
		Category:     log.CategorySession,
		Layer:        log.LayerSession,
		Session: &log.SessionEvent{
			Kind: kind, PortID: port, OldState: oldState, NewState: newState,
		},
	})
}
