// Package txqueue implements the per-media priority queue of outgoing
// frames described by the transport engine: frames are ordered by
// priority, ties broken by enqueue order (FIFO), and each frame
// carries its own deadline so a stalled queue can shed stale work
// instead of transmitting it late.
//
// The queue itself only orders and stores; the drain policy (peek,
// attempt push, drop on expiry, stop-on-busy) belongs to the engine in
// pkg/transport, which is the only component that knows about Media.
package txqueue
