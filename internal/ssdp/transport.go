package ssdp

import (
	"fmt"
	"net"

	"golang.org/x/net/ipv4"

	"github.com/muurk/ssdpscan/internal/logging"
	"go.uber.org/zap"
)

// DefaultMulticastTTL keeps M-SEARCH requests on the local segment
const DefaultMulticastTTL = 2

// Conn is a datagram socket scoped to one adapter.
type Conn interface {
	// JoinGroup joins the multicast group on the bound adapter
	JoinGroup(group *net.UDPAddr) error

	// WriteTo sends b to dst through the bound adapter
	WriteTo(b []byte, dst *net.UDPAddr) (int, error)

	// ReadFrom reads one datagram and reports the local address it was
	// delivered to and the sender's address
	ReadFrom(b []byte) (n int, local net.IP, remote net.Addr, err error)

	// Close leaves any joined group and releases the socket. A blocked
	// ReadFrom returns once Close is called.
	Close() error
}

// Transport opens adapter-scoped sockets.
type Transport interface {
	Bind(adapter Adapter) (Conn, error)
}

// UDPTransport is the default Transport backed by IPv4 UDP sockets.
type UDPTransport struct {
	// TTL is the multicast hop limit (0 = DefaultMulticastTTL)
	TTL int
}

// Bind opens a UDP socket on the adapter's address with an ephemeral port
// and routes outgoing multicast through the adapter.
func (t UDPTransport) Bind(adapter Adapter) (Conn, error) {
	if adapter.Addr == nil {
		return nil, fmt.Errorf("adapter %s has no IPv4 address", adapter.Name())
	}

	c, err := net.ListenPacket("udp4", net.JoinHostPort(adapter.Addr.String(), "0"))
	if err != nil {
		return nil, err
	}

	pc := ipv4.NewPacketConn(c)

	// Control messages are unavailable on some platforms; the bound address
	// is used as the local address then.
	if err := pc.SetControlMessage(ipv4.FlagDst|ipv4.FlagInterface, true); err != nil {
		logging.Debug("Control messages unavailable",
			zap.String("adapter", adapter.String()),
			zap.Error(err),
		)
	}

	ifi := adapter.Interface
	if err := pc.SetMulticastInterface(&ifi); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to select multicast interface: %w", err)
	}

	ttl := t.TTL
	if ttl == 0 {
		ttl = DefaultMulticastTTL
	}
	if err := pc.SetMulticastTTL(ttl); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to set multicast TTL: %w", err)
	}

	return &udpConn{pc: pc, raw: c, ifi: ifi, local: adapter.Addr}, nil
}

type udpConn struct {
	pc     *ipv4.PacketConn
	raw    net.PacketConn
	ifi    net.Interface
	local  net.IP
	joined *net.UDPAddr
}

func (u *udpConn) JoinGroup(group *net.UDPAddr) error {
	if err := u.pc.JoinGroup(&u.ifi, group); err != nil {
		return err
	}
	u.joined = group
	return nil
}

func (u *udpConn) WriteTo(b []byte, dst *net.UDPAddr) (int, error) {
	return u.pc.WriteTo(b, nil, dst)
}

func (u *udpConn) ReadFrom(b []byte) (int, net.IP, net.Addr, error) {
	n, cm, src, err := u.pc.ReadFrom(b)
	if err != nil {
		return 0, nil, nil, err
	}

	local := u.local
	if cm != nil && cm.Dst != nil {
		local = cm.Dst
	}
	return n, local, src, nil
}

func (u *udpConn) Close() error {
	if u.joined != nil {
		if err := u.pc.LeaveGroup(&u.ifi, u.joined); err != nil {
			logging.Debug("Leaving multicast group failed",
				zap.String("interface", u.ifi.Name),
				zap.Error(err),
			)
		}
		u.joined = nil
	}
	return u.raw.Close()
}
