// Package cyphal defines the data model shared across the transport core:
// node and port identifiers, transfer priority, monotonic time, the
// application-level Transfer type, and the transport-wide error kinds.
//
// Nothing in this package touches media, wire format, or scheduling.
// It exists so that pkg/txqueue, pkg/wireframe, pkg/transport, and
// pkg/presentation can agree on one vocabulary without importing each
// other.
package cyphal
