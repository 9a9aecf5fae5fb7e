package transport

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
	"github.com/cyphal-go/transport-core/pkg/log"
	"github.com/cyphal-go/transport-core/pkg/txqueue"
	"github.com/cyphal-go/transport-core/pkg/wireframe"
)

// EngineConfig bootstraps an Engine.
type EngineConfig struct {
	// LocalNode is this participant's node id, or cyphal.UnsetNodeID
	// for an anonymous node (message-only participant).
	LocalNode cyphal.NodeID

	// TXQueueCapacity bounds each media's outgoing frame queue. Zero
	// means unbounded.
	TXQueueCapacity int

	// MaxSubscriptions bounds the subscription tree's pool. Zero means
	// unbounded.
	MaxSubscriptions int

	Logger log.Logger
}

// Engine is the transport-core run loop: it owns a redundant set of
// Media, fragments outgoing transfers across all of them, reassembles
// incoming frames into transfers, and routes them to subscribed
// sessions.
type Engine struct {
	media        []Media
	txQueues     []*txqueue.Queue
	tree         *subscriptionTree
	localNode    cyphal.NodeID
	logger       log.Logger
	connectionID string

	filtersDirty bool
}

// NewEngine constructs an Engine over the given media set. media must
// be non-empty.
func NewEngine(media []Media, cfg EngineConfig) (*Engine, error) {
	if len(media) == 0 {
		return nil, fmt.Errorf("transport: at least one medium required: %w", cyphal.ErrArgument)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	txQueues := make([]*txqueue.Queue, len(media))
	for i := range media {
		txQueues[i] = txqueue.NewQueue(cfg.TXQueueCapacity)
	}
	return &Engine{
		media:        media,
		txQueues:     txQueues,
		tree:         newSubscriptionTree(cfg.MaxSubscriptions),
		localNode:    cfg.LocalNode,
		logger:       logger,
		connectionID: uuid.NewString(),
		filtersDirty: true,
	}, nil
}

// LocalNode returns the engine's configured node id.
func (e *Engine) LocalNode() cyphal.NodeID {
	return e.localNode
}

// SetLocalNode assigns the local node id. Setting it to the value it
// already holds is a no-op; changing an already-set id to a different
// one is rejected, matching the underlying transport's
// single-node-id-per-lifetime rule.
func (e *Engine) SetLocalNode(id cyphal.NodeID) error {
	if e.localNode == id {
		return nil
	}
	if e.localNode.IsSet() {
		return fmt.Errorf("transport: local node id already set to %d: %w", e.localNode, cyphal.ErrArgument)
	}
	e.localNode = id
	e.filtersDirty = true
	return nil
}

// ProtocolParams reports the operating envelope derived from the
// configured media set.
func (e *Engine) ProtocolParams() cyphal.ProtocolParams {
	minMTU := e.media[0].MTU()
	for _, m := range e.media[1:] {
		if m.MTU() < minMTU {
			minMTU = m.MTU()
		}
	}
	return cyphal.ProtocolParams{
		TransferIDModulo: cyphal.TransferIDModuloCAN,
		MinMTU:           minMTU,
		MaxNodes:         int(cyphal.MaxNodeIDCAN) + 1,
	}
}

// Run drains every medium's outbound queue up to its own MTU and busy
// signal, pops at most one inbound frame per medium into subscribed
// sessions, and applies any pending filter reconfiguration. TX drains
// before RX so a medium backed up with inbound traffic can never starve
// this tick's transmissions, and RX is capped at one frame per medium
// per call so one saturated medium cannot starve the others' turn on
// the same tick. Run must be called periodically by the host; it never
// blocks.
func (e *Engine) Run(now cyphal.TimePoint) error {
	var errs error
	for i, m := range e.media {
		if err := e.pumpOutbound(i, m, now); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	for i, m := range e.media {
		if err := e.pumpInbound(i, m, now); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if e.filtersDirty {
		if err := e.reconfigureFilters(); err != nil {
			errs = multierr.Append(errs, err)
		}
		e.filtersDirty = false
	}
	return errs
}

func (e *Engine) pumpInbound(mediaIdx int, m Media, now cyphal.TimePoint) error {
	canID, payload, ok, err := m.Pop()
	if err != nil {
		return fmt.Errorf("transport: media %d pop: %w", mediaIdx, err)
	}
	if !ok {
		return nil
	}
	e.handleFrame(mediaIdx, canID, payload, now)
	return nil
}

func (e *Engine) handleFrame(mediaIdx int, id wireframe.CANID, payload []byte, now cyphal.TimePoint) {
	data, tail, err := wireframe.SplitTail(payload)
	if err != nil {
		return
	}

	var kind cyphal.Kind
	var port cyphal.PortID
	var source cyphal.NodeID
	var priority cyphal.Priority

	if id.IsService() {
		svc := id.DecodeServiceID()
		if svc.Destination != e.localNode {
			return
		}
		if svc.IsRequest {
			kind = cyphal.KindRequest
		} else {
			kind = cyphal.KindResponse
		}
		port, source, priority = svc.Service, svc.SourceNode, svc.Priority
	} else {
		msg := id.DecodeMessageID()
		kind, port, source, priority = cyphal.KindMessage, msg.Subject, msg.SourceNode, msg.Priority
	}

	sink := e.tree.find(kind, port)
	if sink == nil {
		return
	}
	transfer, err := sink.acceptFrame(mediaIdx, source, priority, data, tail, now)
	if err != nil {
		e.logger.Log(log.Event{
			Timestamp:    time.Time(now),
			ConnectionID: e.connectionID,
			Category:     log.CategoryError,
			Error:        &log.ErrorEventData{Layer: log.LayerFrame, Message: err.Error()},
		})
		return
	}
	if transfer == nil {
		return
	}
	e.logger.Log(log.Event{
		Timestamp:    time.Time(now),
		ConnectionID: e.connectionID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerTransfer,
		Category:     log.CategoryTransfer,
		Transfer: &log.TransferEvent{
			Kind: kind, PortID: port, TransferID: transfer.Metadata.TransferID,
			Priority: priority, PeerNode: source, Size: len(transfer.Payload),
		},
	})
}

func (e *Engine) pumpOutbound(mediaIdx int, m Media, now cyphal.TimePoint) error {
	q := e.txQueues[mediaIdx]
	var errs error
	for {
		item := q.Peek()
		if item == nil {
			return errs
		}
		if now.After(item.Deadline) {
			q.Pop()
			continue
		}
		accepted, err := m.Push(item.Deadline, wireframe.CANID(item.FrameID), item.Payload)
		if err != nil {
			// A media error means this frame cannot be sent on this
			// medium at all: drop it and keep draining, so one bad
			// frame never wedges every later-enqueued frame behind it.
			q.Pop()
			errs = multierr.Append(errs, fmt.Errorf("transport: media %d push: %w", mediaIdx, err))
			e.logger.Log(log.Event{
				Timestamp:    time.Time(now),
				ConnectionID: e.connectionID,
				Category:     log.CategoryError,
				Error:        &log.ErrorEventData{Layer: log.LayerFrame, Message: err.Error()},
			})
			continue
		}
		if !accepted {
			return errs
		}
		q.Pop()
		e.logger.Log(log.Event{
			Timestamp:    time.Time(now),
			ConnectionID: e.connectionID,
			Direction:    log.DirectionOut,
			Layer:        log.LayerFrame,
			Category:     log.CategoryFrame,
			Frame:        &log.FrameEvent{MediaIndex: mediaIdx, CANID: item.FrameID, Size: len(item.Payload)},
		})
	}
}

// sendTransfer fragments payload and enqueues it on every configured
// medium under id, using that medium's own MTU. Failures on
// individual media are aggregated with multierr rather than aborting
// the whole send, since a redundant transport should keep using
// whichever media remain healthy. The send only fails outright if
// every medium rejected it.
func (e *Engine) sendTransfer(id wireframe.CANID, priority cyphal.Priority, transferID cyphal.TransferID, payload []byte, deadline cyphal.TimePoint) error {
	var errs error
	sent := false
	for i, m := range e.media {
		frames, err := wireframe.Fragment(id, transferID, payload, m.MTU())
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("media %d: %w", i, err))
			continue
		}
		q := e.txQueues[i]
		mediaOK := true
		for _, f := range frames {
			if err := q.Enqueue(uint32(f.ID), f.Payload, deadline, priority); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("media %d: %w", i, err))
				mediaOK = false
				break
			}
		}
		if mediaOK {
			sent = true
		}
	}
	if !sent {
		if errs == nil {
			errs = cyphal.ErrMedia
		}
		return fmt.Errorf("transport: send failed on every medium: %w", errs)
	}
	return errs
}

func (e *Engine) markFiltersDirty() {
	e.filtersDirty = true
}

func (e *Engine) reconfigureFilters() error {
	filters := make([]Filter, 0, e.tree.len())
	e.tree.activePorts(func(k cyphal.Kind, port cyphal.PortID) {
		switch k {
		case cyphal.KindMessage:
			id, mask := wireframe.FilterMessage(port)
			filters = append(filters, Filter{ID: id, Mask: mask})
		case cyphal.KindRequest, cyphal.KindResponse:
			if !e.localNode.IsSet() {
				return
			}
			id, mask := wireframe.FilterService(k == cyphal.KindRequest, port, e.localNode)
			filters = append(filters, Filter{ID: id, Mask: mask})
		}
	})
	var errs error
	for i, m := range e.media {
		if err := m.SetFilters(filters); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("media %d: %w", i, err))
		}
	}
	return errs
}
