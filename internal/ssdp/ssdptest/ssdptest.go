// Package ssdptest provides in-memory implementations of ssdp.Transport and
// ssdp.Conn for tests that must not touch real network interfaces.
package ssdptest

import (
	"fmt"
	"net"
	"sync"

	"github.com/muurk/ssdpscan/internal/ssdp"
)

// Packet is a datagram queued for delivery to a Conn
type Packet struct {
	Payload []byte
	Local   net.IP
	Remote  net.Addr
}

// Conn is a fake ssdp.Conn. Packets queued with Deliver are returned by
// ReadFrom in order; ReadFrom blocks until a packet arrives or Close is called.
type Conn struct {
	// JoinErr and WriteErr make the corresponding call fail
	JoinErr  error
	WriteErr error

	packets   chan Packet
	closed    chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	joined []*net.UDPAddr
	sent   [][]byte
}

// NewConn returns a Conn with packets already queued
func NewConn(packets ...Packet) *Conn {
	c := &Conn{
		packets: make(chan Packet, 64),
		closed:  make(chan struct{}),
	}
	for _, p := range packets {
		c.packets <- p
	}
	return c
}

// Deliver queues a packet for ReadFrom
func (c *Conn) Deliver(p Packet) {
	c.packets <- p
}

// JoinGroup implements ssdp.Conn
func (c *Conn) JoinGroup(group *net.UDPAddr) error {
	if c.JoinErr != nil {
		return c.JoinErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joined = append(c.joined, group)
	return nil
}

// WriteTo implements ssdp.Conn
func (c *Conn) WriteTo(b []byte, dst *net.UDPAddr) (int, error) {
	if c.WriteErr != nil {
		return 0, c.WriteErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, append([]byte(nil), b...))
	return len(b), nil
}

// ReadFrom implements ssdp.Conn
func (c *Conn) ReadFrom(b []byte) (int, net.IP, net.Addr, error) {
	// Prefer reporting closure so a closed Conn never yields more packets.
	select {
	case <-c.closed:
		return 0, nil, nil, net.ErrClosed
	default:
	}

	select {
	case p := <-c.packets:
		n := copy(b, p.Payload)
		return n, p.Local, p.Remote, nil
	case <-c.closed:
		return 0, nil, nil, net.ErrClosed
	}
}

// Close implements ssdp.Conn
func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// Closed reports whether Close has been called
func (c *Conn) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Joined returns the groups joined so far
func (c *Conn) Joined() []*net.UDPAddr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*net.UDPAddr(nil), c.joined...)
}

// Sent returns the datagrams written so far
func (c *Conn) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.sent...)
}

// Transport is a fake ssdp.Transport handing out Conns by adapter name.
// Adapters without a registered Conn get an empty one.
type Transport struct {
	mu       sync.Mutex
	conns    map[string]*Conn
	bindErrs map[string]error
	binds    []string
}

// NewTransport returns an empty Transport
func NewTransport() *Transport {
	return &Transport{
		conns:    make(map[string]*Conn),
		bindErrs: make(map[string]error),
	}
}

// Add registers the Conn returned when adapter name is bound
func (t *Transport) Add(name string, c *Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[name] = c
}

// FailBind makes binding adapter name fail with err
func (t *Transport) FailBind(name string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bindErrs[name] = err
}

// Conn returns the Conn for adapter name, if any
func (t *Transport) Conn(name string) *Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conns[name]
}

// Binds returns the adapter names bound so far, in call order
func (t *Transport) Binds() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.binds...)
}

// Bind implements ssdp.Transport
func (t *Transport) Bind(adapter ssdp.Adapter) (ssdp.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.binds = append(t.binds, adapter.Name())
	if err := t.bindErrs[adapter.Name()]; err != nil {
		return nil, err
	}

	c, ok := t.conns[adapter.Name()]
	if !ok {
		c = NewConn()
		t.conns[adapter.Name()] = c
	}
	return c, nil
}

// Interfaces is a fixed ssdp.InterfaceProvider
type Interfaces struct {
	Adapters []ssdp.Adapter
	Err      error
}

// ActiveAdapters implements ssdp.InterfaceProvider
func (i Interfaces) ActiveAdapters() ([]ssdp.Adapter, error) {
	return i.Adapters, i.Err
}

// Adapter builds an adapter with the given name, index and IPv4 address
func Adapter(name string, index int, ip string) ssdp.Adapter {
	return ssdp.Adapter{
		Interface: net.Interface{
			Index: index,
			Name:  name,
			Flags: net.FlagUp | net.FlagMulticast,
		},
		Addr: net.ParseIP(ip).To4(),
	}
}

// Reply builds a well-formed search reply pointing at location
func Reply(location, st string) []byte {
	return []byte(fmt.Sprintf("HTTP/1.1 200 OK\r\n"+
		"CACHE-CONTROL: max-age=1800\r\n"+
		"EXT:\r\n"+
		"LOCATION: %s\r\n"+
		"SERVER: UPnP/1.0 SonyImagingDevice/1.0\r\n"+
		"ST: %s\r\n"+
		"USN: uuid:00000000-0005-0010-8000-10a5d0b3c001::%s\r\n"+
		"\r\n", location, st, st))
}
