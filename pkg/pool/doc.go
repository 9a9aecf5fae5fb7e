// Package pool implements the fixed-block-size allocator facade. In
// the transport core it backs the subscription tree's records only;
// sessions, reassembly state, TX queue items and response promises are
// allocated by the Go runtime and are not drawn from a pool.
//
// Allocation is bounded and failable, never blocking: once capacity is
// exhausted, Allocate returns pool.ErrExhausted instead of growing.
// This lets the core run within a caller-sized memory budget and
// degrade gracefully, while Go's garbage collector, not manual
// placement, keeps stored pointers stable for the lifetime of the
// pool.
package pool
