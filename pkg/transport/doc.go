// Package transport implements the subscription tree, the transport
// engine's run/dispatch loop, and the RX/TX session objects that sit
// between application code and a set of redundant Media instances.
//
// Every operation here is synchronous and non-blocking; there is no
// internal locking anywhere in this package. A host driving an Engine
// from more than one goroutine must serialize its own calls.
package transport
