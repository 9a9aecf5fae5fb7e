// Package wireframe implements the frame↔transfer codec: stateless
// fragmentation of an outgoing transfer into CAN frame payloads plus
// identifiers, and stateful reassembly of incoming frames back into
// transfers.
//
// Fragmentation follows the Cyphal/CAN v1 wire model: single-frame
// transfers carry the payload plus a one-byte tail; multi-frame
// transfers append a CRC16/CCITT-FALSE checksum to the payload before
// splitting it into (MTU-1)-byte chunks, each again with its own tail
// byte carrying start/end/toggle/transfer-id.
//
// The 29-bit CAN identifier layout implemented in canid.go follows the
// public structure of the Cyphal/CAN specification (priority,
// service/message discriminator, subject or service+node fields) but
// is not claimed to be byte-for-byte certified against the official
// DSDL reference; what this package guarantees, and what its tests
// check, is that encode/fragment and decode/reassemble are exact
// inverses of one another and that known single-frame and multi-frame
// byte layouts are reproduced exactly.
package wireframe
