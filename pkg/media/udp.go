package media

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
	"github.com/cyphal-go/transport-core/pkg/transport"
	"github.com/cyphal-go/transport-core/pkg/wireframe"
)

// DefaultUDPMTU is the payload capacity (including the tail byte) this
// package uses for UDP media, well within any realistic path MTU.
const DefaultUDPMTU = 63

// UDP is a transport.Media backed by a UDP multicast group: each
// datagram carries a 4-byte big-endian CAN identifier prefix followed
// by one frame's payload (including its tail byte). It exists by
// symmetry with the CAN media, for hosts without CAN hardware.
type UDP struct {
	conn    *net.UDPConn
	group   *net.UDPAddr
	mtu     int
	filters []transport.Filter
}

// DialUDP joins the multicast group at addr (e.g. "239.10.10.10:9382")
// on the named interface, retrying the bind with exponential backoff
// up to maxAttempts times.
func DialUDP(addr, iface string, maxAttempts int) (*UDP, error) {
	group, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("media: resolve %q: %w", addr, err)
	}
	var netIface *net.Interface
	if iface != "" {
		netIface, err = net.InterfaceByName(iface)
		if err != nil {
			return nil, fmt.Errorf("media: interface %q: %w", iface, err)
		}
	}

	bo := newBackoff(50*time.Millisecond, 2*time.Second)
	var conn *net.UDPConn
	for attempt := 0; attempt < maxAttempts; attempt++ {
		conn, err = net.ListenMulticastUDP("udp", netIface, group)
		if err == nil {
			break
		}
		time.Sleep(bo.Next())
	}
	if err != nil {
		return nil, fmt.Errorf("media: bind %q after %d attempts: %w", addr, maxAttempts, cyphal.ErrMedia)
	}

	return &UDP{conn: conn, group: group, mtu: DefaultUDPMTU}, nil
}

func (u *UDP) MTU() int { return u.mtu }

func (u *UDP) Push(_ cyphal.TimePoint, id wireframe.CANID, payload []byte) (bool, error) {
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(id))
	copy(buf[4:], payload)
	if _, err := u.conn.WriteToUDP(buf, u.group); err != nil {
		return false, fmt.Errorf("media: udp write: %w", cyphal.ErrMedia)
	}
	return true, nil
}

func (u *UDP) Pop() (wireframe.CANID, []byte, bool, error) {
	buf := make([]byte, 4+u.mtu)
	if err := u.conn.SetReadDeadline(time.Now()); err != nil {
		return 0, nil, false, fmt.Errorf("media: udp set deadline: %w", cyphal.ErrMedia)
	}
	n, err := u.conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return 0, nil, false, nil
		}
		return 0, nil, false, fmt.Errorf("media: udp read: %w", cyphal.ErrMedia)
	}
	if n < 4 {
		return 0, nil, false, nil
	}
	id := wireframe.CANID(binary.BigEndian.Uint32(buf[:4]))
	if !u.accepts(id) {
		return 0, nil, false, nil
	}
	return id, buf[4:n], true, nil
}

func (u *UDP) accepts(id wireframe.CANID) bool {
	if len(u.filters) == 0 {
		return true
	}
	for _, f := range u.filters {
		if uint32(id)&f.Mask == f.ID&f.Mask {
			return true
		}
	}
	return false
}

func (u *UDP) SetFilters(filters []transport.Filter) error {
	u.filters = filters
	return nil
}

// Close releases the underlying socket.
func (u *UDP) Close() error {
	return u.conn.Close()
}

var _ transport.Media = (*UDP)(nil)
