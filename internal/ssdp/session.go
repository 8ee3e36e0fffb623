package ssdp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/muurk/ssdpscan/internal/logging"
	"go.uber.org/zap"
)

// MaxDatagramSize is the receive buffer size for one reply
const MaxDatagramSize = 8192

// State is the lifecycle state of a Session
type State int

const (
	StateIdle State = iota
	StateBound
	StateSent
	StateListening
	StateClosed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBound:
		return "bound"
	case StateSent:
		return "sent"
	case StateListening:
		return "listening"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Reply is one datagram received by a Session
type Reply struct {
	// Payload is a private copy of the datagram
	Payload []byte

	// LocalAddr is the local address the datagram arrived on
	LocalAddr net.IP

	// RemoteAddr is the sender
	RemoteAddr net.Addr

	// Adapter is the adapter the session is bound to
	Adapter Adapter

	// ReceivedAt is when the datagram was read
	ReceivedAt time.Time
}

// TransportError reports a per-adapter socket failure. Op is one of
// "bind", "join", "send" or "read".
type TransportError struct {
	Op      string
	Adapter string
	Err     error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("ssdp %s on %s: %v", e.Op, e.Adapter, e.Err)
}

// Unwrap returns the underlying socket error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Session is one outstanding M-SEARCH on one adapter.
type Session struct {
	adapter   Adapter
	transport Transport
	query     []byte
	timeout   time.Duration

	mu       sync.Mutex
	state    State
	sentAt   time.Time
	deadline time.Time
}

// NewSession creates an idle session that will send query on adapter and
// listen for timeout once the query is sent.
func NewSession(adapter Adapter, transport Transport, query []byte, timeout time.Duration) *Session {
	return &Session{
		adapter:   adapter,
		transport: transport,
		query:     query,
		timeout:   timeout,
		state:     StateIdle,
	}
}

// Adapter returns the adapter the session is scoped to
func (s *Session) Adapter() Adapter {
	return s.adapter
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SentAt returns when the query was sent (zero if never sent)
func (s *Session) SentAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sentAt
}

// Deadline returns when the listen phase ends (zero before Listening)
func (s *Session) Deadline() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()

	logging.LogSessionState(s.adapter.String(), prev.String(), next.String())
}

// Run binds, sends the query and delivers replies to handle until the listen
// timeout elapses or ctx is done. handle is called from Run's goroutine, one
// reply at a time. Run returns nil when the session times out normally and a
// *TransportError when bind, join, send or read fails. The session is Closed
// and its socket released when Run returns.
func (s *Session) Run(ctx context.Context, handle func(Reply)) error {
	if s.State() != StateIdle {
		return fmt.Errorf("session on %s already started", s.adapter)
	}

	conn, err := s.transport.Bind(s.adapter)
	if err != nil {
		s.setState(StateClosed)
		return &TransportError{Op: "bind", Adapter: s.adapter.String(), Err: err}
	}
	s.setState(StateBound)

	var closeOnce sync.Once
	release := func() {
		closeOnce.Do(func() {
			if err := conn.Close(); err != nil {
				logging.Debug("Closing session socket failed",
					zap.String("adapter", s.adapter.String()),
					zap.Error(err),
				)
			}
		})
	}
	defer func() {
		release()
		s.setState(StateClosed)
	}()

	if err := conn.JoinGroup(MulticastGroup); err != nil {
		return &TransportError{Op: "join", Adapter: s.adapter.String(), Err: err}
	}

	if _, err := conn.WriteTo(s.query, MulticastGroup); err != nil {
		return &TransportError{Op: "send", Adapter: s.adapter.String(), Err: err}
	}
	logging.LogDatagram("sent", s.adapter.Addr, MulticastGroup, s.query)

	listenCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.mu.Lock()
	s.sentAt = time.Now()
	s.deadline, _ = listenCtx.Deadline()
	s.mu.Unlock()
	s.setState(StateSent)
	s.setState(StateListening)

	// Closing the socket is what unblocks ReadFrom when the timer fires.
	stop := context.AfterFunc(listenCtx, release)
	defer stop()

	buf := make([]byte, MaxDatagramSize)
	for {
		n, local, remote, err := conn.ReadFrom(buf)
		if listenCtx.Err() != nil {
			return nil
		}
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return &TransportError{Op: "read", Adapter: s.adapter.String(), Err: err}
		}

		if local == nil {
			local = s.adapter.Addr
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		logging.LogDatagram("received", local, remote, payload)

		handle(Reply{
			Payload:    payload,
			LocalAddr:  local,
			RemoteAddr: remote,
			Adapter:    s.adapter,
			ReceivedAt: time.Now(),
		})
	}
}
