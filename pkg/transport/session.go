package transport

import (
	"time"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
	"github.com/cyphal-go/transport-core/pkg/wireframe"
)

// DefaultTransferIDTimeout is the transfer-id timeout a subscription
// uses when SubscribeMessage/SubscribeRequest/SubscribeResponse are
// given a zero timeout: how long a partially-received multi-frame
// transfer is kept before being discarded, per medium.
const DefaultTransferIDTimeout = 2 * time.Second

// rxState is the reassembly and delivery state shared by every RX
// session kind. One Reassembler runs per medium so that redundant
// interfaces never interleave each other's frames; completed
// transfers are deduplicated by (source, transfer-id) so a transfer
// delivered late on a slower medium is dropped rather than delivered
// twice.
//
// A session normally holds at most the latest completed transfer for
// Receive to poll: a new transfer overwrites whatever was there
// before, so an un-polled session never grows unbounded. Installing a
// callback via SetCallback switches to push delivery instead:
// transfers are handed to the callback as they complete and never
// touch the slot.
type rxState struct {
	reassemblers []*wireframe.Reassembler
	lastAccepted map[cyphal.NodeID]cyphal.TransferID
	last         *cyphal.Transfer
	callback     func(*cyphal.Transfer)
	timeout      time.Duration

	attached bool
}

func newRXState(mediaCount, extent int, timeout time.Duration) *rxState {
	if timeout <= 0 {
		timeout = DefaultTransferIDTimeout
	}
	rs := make([]*wireframe.Reassembler, mediaCount)
	for i := range rs {
		rs[i] = wireframe.NewReassembler(extent)
	}
	return &rxState{
		reassemblers: rs,
		lastAccepted: make(map[cyphal.NodeID]cyphal.TransferID),
		timeout:      timeout,
		attached:     true,
	}
}

func (s *rxState) acceptFrame(mediaIdx int, source cyphal.NodeID, priority cyphal.Priority, data []byte, tail wireframe.TailByte, now cyphal.TimePoint) (*cyphal.Transfer, error) {
	if !s.attached || mediaIdx >= len(s.reassemblers) {
		return nil, nil
	}
	s.reassemblers[mediaIdx].EvictStale(now, s.timeout)
	transfer, complete, err := s.reassemblers[mediaIdx].Accept(source, priority, data, tail, now)
	if err != nil || !complete {
		return nil, err
	}
	if last, seen := s.lastAccepted[source]; seen && last == transfer.Metadata.TransferID {
		return nil, nil
	}
	s.lastAccepted[source] = transfer.Metadata.TransferID
	if fn := s.callback; fn != nil {
		fn(transfer)
		return transfer, nil
	}
	s.last = transfer
	return transfer, nil
}

// Receive pulls the latest transfer, if any un-consumed one is
// waiting: a transfer that arrives before the previous one is
// collected replaces it rather than queuing behind it. It never
// reports anything once a callback has been installed via SetCallback.
func (s *rxState) Receive() (*cyphal.Transfer, bool) {
	if s.last == nil {
		return nil, false
	}
	t := s.last
	s.last = nil
	return t, true
}

// SetCallback installs fn to be invoked synchronously as each transfer
// completes reassembly, in place of storing it for Receive to poll.
// Passing nil reverts the session to the polling model.
func (s *rxState) SetCallback(fn func(*cyphal.Transfer)) {
	s.callback = fn
}

// Attached reports whether the session is still subscribed.
func (s *rxState) Attached() bool {
	return s.attached
}
