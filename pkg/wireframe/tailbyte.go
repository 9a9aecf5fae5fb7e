package wireframe

import "github.com/cyphal-go/transport-core/pkg/cyphal"

// TailByte is the final byte of every Cyphal/CAN frame: it carries
// framing state for reassembly plus the low bits of the transfer id.
type TailByte struct {
	Start      bool
	End        bool
	Toggle     bool
	TransferID cyphal.TransferID // low 5 bits significant
}

const (
	tailStartBit  = 1 << 7
	tailEndBit    = 1 << 6
	tailToggleBit = 1 << 5
	tailTIDMask   = 0x1F
)

func (t TailByte) encode() byte {
	var b byte
	if t.Start {
		b |= tailStartBit
	}
	if t.End {
		b |= tailEndBit
	}
	if t.Toggle {
		b |= tailToggleBit
	}
	b |= byte(t.TransferID) & tailTIDMask
	return b
}

func DecodeTailByte(b byte) TailByte {
	return TailByte{
		Start:      b&tailStartBit != 0,
		End:        b&tailEndBit != 0,
		Toggle:     b&tailToggleBit != 0,
		TransferID: cyphal.TransferID(b & tailTIDMask),
	}
}
