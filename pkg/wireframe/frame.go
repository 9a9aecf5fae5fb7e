package wireframe

import (
	"fmt"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
)

// SplitTail separates a received frame payload into its data portion
// and decoded tail byte. It returns cyphal.ErrArgument if payload is
// empty.
func SplitTail(payload []byte) ([]byte, TailByte, error) {
	if len(payload) == 0 {
		return nil, TailByte{}, fmt.Errorf("wireframe: empty frame payload: %w", cyphal.ErrArgument)
	}
	return payload[:len(payload)-1], DecodeTailByte(payload[len(payload)-1]), nil
}
