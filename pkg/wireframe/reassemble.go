package wireframe

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
)

type reassemblyState struct {
	transferID   cyphal.TransferID
	priority     cyphal.Priority
	expectToggle bool
	buf          []byte
	lastActivity cyphal.TimePoint
}

// Reassembler rebuilds transfers from a stream of frames originating
// from any number of source nodes, for a single RX session (one
// (kind, port) pair). It is not safe for concurrent use.
type Reassembler struct {
	inProgress map[cyphal.NodeID]*reassemblyState
	extent     int
}

// NewReassembler creates an empty reassembler. extent bounds the
// assembled payload size in bytes; a multi-frame transfer that would
// grow past it is discarded rather than assembled without limit. Zero
// means unbounded.
func NewReassembler(extent int) *Reassembler {
	return &Reassembler{inProgress: make(map[cyphal.NodeID]*reassemblyState), extent: extent}
}

// Accept feeds one frame's data (payload with the tail byte already
// stripped off and decoded) into the reassembler. It returns a
// complete transfer and true when the frame completes one, or nil,
// false if more frames are needed or the frame was rejected as
// out-of-sequence.
func (r *Reassembler) Accept(source cyphal.NodeID, priority cyphal.Priority, data []byte, tail TailByte, now cyphal.TimePoint) (*cyphal.Transfer, bool, error) {
	if tail.Start && tail.End {
		if r.extent > 0 && len(data) > r.extent {
			return nil, false, fmt.Errorf("wireframe: transfer %d from node %d exceeds extent %d: %w", tail.TransferID, source, r.extent, cyphal.ErrArgument)
		}
		return &cyphal.Transfer{
			Metadata: cyphal.Metadata{
				Priority:   priority,
				TransferID: tail.TransferID,
				SourceNode: source,
				Timestamp:  now,
			},
			Payload: append([]byte{}, data...),
		}, true, nil
	}

	if tail.Start {
		r.inProgress[source] = &reassemblyState{
			transferID:   tail.TransferID,
			priority:     priority,
			expectToggle: false,
			buf:          append([]byte{}, data...),
			lastActivity: now,
		}
		return nil, false, nil
	}

	st, ok := r.inProgress[source]
	if !ok || st.transferID != tail.TransferID || st.expectToggle != tail.Toggle {
		return nil, false, nil
	}
	st.buf = append(st.buf, data...)
	st.lastActivity = now
	st.expectToggle = !st.expectToggle

	if r.extent > 0 && len(st.buf) > r.extent+2 {
		delete(r.inProgress, source)
		return nil, false, fmt.Errorf("wireframe: transfer %d from node %d exceeds extent %d: %w", tail.TransferID, source, r.extent, cyphal.ErrArgument)
	}

	if !tail.End {
		return nil, false, nil
	}

	delete(r.inProgress, source)
	if len(st.buf) < 2 {
		return nil, false, fmt.Errorf("wireframe: multi-frame transfer shorter than crc: %w", cyphal.ErrSerialization)
	}
	payload, wireCRC := st.buf[:len(st.buf)-2], st.buf[len(st.buf)-2:]
	if crc16(payload) != binary.BigEndian.Uint16(wireCRC) {
		return nil, false, fmt.Errorf("wireframe: crc mismatch reassembling transfer %d from node %d: %w", tail.TransferID, source, cyphal.ErrSerialization)
	}
	return &cyphal.Transfer{
		Metadata: cyphal.Metadata{
			Priority:   priority,
			TransferID: tail.TransferID,
			SourceNode: source,
			Timestamp:  now,
		},
		Payload: payload,
	}, true, nil
}

// EvictStale drops any in-progress reassembly whose last frame arrived
// more than timeout ago, freeing its buffer without ever delivering a
// transfer for it.
func (r *Reassembler) EvictStale(now cyphal.TimePoint, timeout time.Duration) {
	for src, st := range r.inProgress {
		if now.Sub(st.lastActivity) > timeout {
			delete(r.inProgress, src)
		}
	}
}
