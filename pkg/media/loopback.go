package media

import (
	"github.com/cyphal-go/transport-core/pkg/cyphal"
	"github.com/cyphal-go/transport-core/pkg/transport"
	"github.com/cyphal-go/transport-core/pkg/wireframe"
)

type loopbackFrame struct {
	from int
	id   wireframe.CANID
	data []byte
}

// loopbackBus is the shared medium every Loopback participant pushes
// to and pops from; frames are delivered to every participant except
// their own sender, mirroring a real bus.
type loopbackBus struct {
	frames []loopbackFrame
	cursor []int // per-participant read position
}

// Loopback is an in-memory transport.Media: pushing a frame makes it
// immediately visible to every other participant on the same bus. It
// never reports busy and never fails.
type Loopback struct {
	bus  *loopbackBus
	self int
	mtu  int
}

// NewLoopbackBus creates n participants sharing one in-memory bus with
// the given MTU.
func NewLoopbackBus(mtu int, n int) []*Loopback {
	bus := &loopbackBus{cursor: make([]int, n)}
	participants := make([]*Loopback, n)
	for i := range participants {
		participants[i] = &Loopback{bus: bus, self: i, mtu: mtu}
	}
	return participants
}

func (l *Loopback) MTU() int { return l.mtu }

func (l *Loopback) Push(_ cyphal.TimePoint, id wireframe.CANID, payload []byte) (bool, error) {
	l.bus.frames = append(l.bus.frames, loopbackFrame{
		from: l.self,
		id:   id,
		data: append([]byte{}, payload...),
	})
	return true, nil
}

func (l *Loopback) Pop() (wireframe.CANID, []byte, bool, error) {
	for l.bus.cursor[l.self] < len(l.bus.frames) {
		f := l.bus.frames[l.bus.cursor[l.self]]
		l.bus.cursor[l.self]++
		if f.from != l.self {
			return f.id, f.data, true, nil
		}
	}
	l.compact()
	return 0, nil, false, nil
}

// compact drops frames every participant has already read, so the bus
// does not grow without bound over a long-running process.
func (l *Loopback) compact() {
	min := l.bus.cursor[0]
	for _, c := range l.bus.cursor[1:] {
		if c < min {
			min = c
		}
	}
	if min == 0 {
		return
	}
	l.bus.frames = l.bus.frames[min:]
	for i := range l.bus.cursor {
		l.bus.cursor[i] -= min
	}
}

func (l *Loopback) SetFilters([]transport.Filter) error { return nil }

var _ transport.Media = (*Loopback)(nil)
