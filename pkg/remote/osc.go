package remote

import (
	"fmt"
	"net"

	"github.com/9600org/go-osc/osc"
)

// Client sends packets to the remote surface.
type Client interface {
	Send(osc.Packet) error
}

// UDPClient sends packets over a connected UDP socket.
type UDPClient struct {
	Conn *net.UDPConn
}

var _ Client = &UDPClient{}

func (c *UDPClient) Send(p osc.Packet) error {
	data, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := c.Conn.Write(data); err != nil {
		return err
	}
	return nil
}

// DialUDP connects a client to addr ("host:port").
func DialUDP(addr string) (*UDPClient, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("invalid reply address %q: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("couldn't create reply UDP connection: %w", err)
	}
	return &UDPClient{Conn: conn}, nil
}

func getFloatArg(m *osc.Message, i int) (float32, error) {
	if l := len(m.Arguments); l <= i {
		return 0, fmt.Errorf("insufficient args (%d), wanted > %d", l, i)
	}
	switch v := m.Arguments[i].(type) {
	case float32:
		return v, nil
	case float64:
		return float32(v), nil
	}
	return 0, fmt.Errorf("got arg type %T, wanted float32", m.Arguments[i])
}

// getBoolArg accepts the int32, float32 and bool forms surfaces send for
// buttons.
func getBoolArg(m *osc.Message, i int) (bool, error) {
	if l := len(m.Arguments); l <= i {
		return false, fmt.Errorf("insufficient args (%d), wanted > %d", l, i)
	}
	switch v := m.Arguments[i].(type) {
	case int32:
		return v != 0, nil
	case float32:
		return v >= 0.5, nil
	case bool:
		return v, nil
	}
	return false, fmt.Errorf("got arg type %T, wanted int32", m.Arguments[i])
}

func getStringArg(m *osc.Message, i int) (string, error) {
	if l := len(m.Arguments); l <= i {
		return "", fmt.Errorf("insufficient args (%d), wanted > %d", l, i)
	}
	s, ok := m.Arguments[i].(string)
	if !ok {
		return "", fmt.Errorf("got arg type %T, wanted string", m.Arguments[i])
	}
	return s, nil
}
