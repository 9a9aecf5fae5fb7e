package wireframe

import (
	"encoding/binary"
	"fmt"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
)

// Frame is a single CAN frame ready for a Media to transmit: an
// identifier and a payload whose last byte is always the tail byte.
type Frame struct {
	ID      CANID
	Payload []byte
}

// FitsSingleFrame reports whether a payload of payloadLen bytes fits
// in one frame at the given mtu, without needing the CRC16 and
// multi-frame split that Fragment applies above that size.
func FitsSingleFrame(payloadLen, mtu int) bool {
	return payloadLen <= mtu-1
}

// Fragment splits a transfer payload into one or more Frames under id,
// stamping each with transferID's low 5 bits. Transfers that do not
// fit in a single frame have a CRC16 appended before splitting, per
// the multi-frame transfer format.
//
// mtu is the number of payload bytes a frame can carry including the
// tail byte (8 for classic CAN 2.0B). Fragment returns cyphal.ErrArgument
// if mtu is below 2, leaving no room for a data byte beside the tail
// byte.
func Fragment(id CANID, transferID cyphal.TransferID, payload []byte, mtu int) ([]Frame, error) {
	if mtu < 2 {
		return nil, fmt.Errorf("wireframe: mtu %d too small: %w", mtu, cyphal.ErrArgument)
	}
	dataCap := mtu - 1

	if len(payload) <= dataCap {
		return []Frame{{
			ID: id,
			Payload: append(append([]byte{}, payload...), TailByte{
				Start:      true,
				End:        true,
				Toggle:     true,
				TransferID: transferID,
			}.encode()),
		}}, nil
	}

	full := make([]byte, len(payload)+2)
	copy(full, payload)
	binary.BigEndian.PutUint16(full[len(payload):], crc16(payload))

	n := (len(full) + dataCap - 1) / dataCap
	frames := make([]Frame, 0, n)
	toggle := true
	for i := 0; i < n; i++ {
		start := i * dataCap
		end := start + dataCap
		if end > len(full) {
			end = len(full)
		}
		chunk := full[start:end]
		tb := TailByte{
			Start:      i == 0,
			End:        i == n-1,
			Toggle:     toggle,
			TransferID: transferID,
		}
		frames = append(frames, Frame{
			ID:      id,
			Payload: append(append([]byte{}, chunk...), tb.encode()),
		})
		toggle = !toggle
	}
	return frames, nil
}
