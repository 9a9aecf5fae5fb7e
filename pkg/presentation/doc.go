// Package presentation implements the shared service client: a single
// subscription to a service's responses shared across every
// in-flight request to that service, demultiplexed by transfer id,
// with deadline-based expiry and a pull-style ResponsePromise per
// request.
//
// There is no goroutine or channel involved anywhere in this package:
// Client.Run must be polled by the host alongside the transport
// engine's own Run, matching the single-threaded cooperative model
// the rest of this module follows.
package presentation
