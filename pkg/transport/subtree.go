package transport

import (
	"fmt"
	"sort"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
	"github.com/cyphal-go/transport-core/pkg/multiset"
	"github.com/cyphal-go/transport-core/pkg/pool"
	"github.com/cyphal-go/transport-core/pkg/wireframe"
)

// rxSink is implemented by every RX session. The engine hands it raw
// frame fragments as they arrive; the session owns its own
// reassembly state and decides when a transfer is complete.
type rxSink interface {
	acceptFrame(mediaIdx int, source cyphal.NodeID, priority cyphal.Priority, data []byte, tail wireframe.TailByte, now cyphal.TimePoint) (*cyphal.Transfer, error)
}

type subscriptionKey struct {
	kind cyphal.Kind
	port cyphal.PortID
}

type subscription struct {
	key  subscriptionKey
	sink rxSink
}

// subscriptionTree indexes at most one RX subscriber per (Kind,
// PortID) pair, matching the bus rule that only one session may own a
// given subject or service id at a time. Storage is pool-backed so
// subscription objects have stable addresses for as long as they are
// attached.
type subscriptionTree struct {
	set   *multiset.Multiset[subscription]
	index map[subscriptionKey]*subscription
}

func newSubscriptionTree(capacity int) *subscriptionTree {
	var alloc pool.Allocator[subscription]
	if capacity <= 0 {
		alloc = pool.NewUnbounded[subscription]()
	} else {
		alloc = pool.NewFixed[subscription](capacity)
	}
	return &subscriptionTree{
		set:   multiset.New[subscription](alloc),
		index: make(map[subscriptionKey]*subscription),
	}
}

// subscribe registers sink to receive frames for the given kind and
// port. It returns cyphal.ErrAlreadyExists if the (kind, port) pair is
// already subscribed, or an error wrapping both cyphal.ErrMemory and the
// pool's error if the tree is at capacity.
func (t *subscriptionTree) subscribe(k cyphal.Kind, port cyphal.PortID, sink rxSink) error {
	sk := subscriptionKey{kind: k, port: port}
	if _, exists := t.index[sk]; exists {
		return fmt.Errorf("transport: subscription for %s port %d: %w", k, port, cyphal.ErrAlreadyExists)
	}
	el, err := t.set.Add(func(s *subscription) {
		s.key = sk
		s.sink = sink
	})
	if err != nil {
		return fmt.Errorf("transport: subscription for %s port %d: %w: %w", k, port, cyphal.ErrMemory, err)
	}
	t.index[sk] = el
	return nil
}

// unsubscribe removes any subscription for (kind, port). It is a
// no-op if none exists.
func (t *subscriptionTree) unsubscribe(k cyphal.Kind, port cyphal.PortID) {
	sk := subscriptionKey{kind: k, port: port}
	el, ok := t.index[sk]
	if !ok {
		return
	}
	delete(t.index, sk)
	t.set.Remove(el)
}

// find returns the subscriber for (kind, port), or nil.
func (t *subscriptionTree) find(k cyphal.Kind, port cyphal.PortID) rxSink {
	if el, ok := t.index[subscriptionKey{kind: k, port: port}]; ok {
		return el.sink
	}
	return nil
}

// activePorts visits every (kind, port) currently subscribed, in key
// order, for filter reconfiguration. t.set.Each walks the underlying
// multiset in its own storage order, which shifts as subscriptions
// come and go, so the keys are sorted before visiting.
func (t *subscriptionTree) activePorts(visit func(cyphal.Kind, cyphal.PortID)) {
	keys := make([]subscriptionKey, 0, len(t.index))
	for sk := range t.index {
		keys = append(keys, sk)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		return keys[i].port < keys[j].port
	})
	for _, sk := range keys {
		visit(sk.kind, sk.port)
	}
}

// len reports the number of active subscriptions.
func (t *subscriptionTree) len() int {
	return t.set.Len()
}
