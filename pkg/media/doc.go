// Package media provides transport.Media implementations: an
// in-memory loopback bus for tests and demos, and a real UDP
// multicast transport for hosts that want to run this stack without
// CAN hardware.
package media
