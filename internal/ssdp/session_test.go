package ssdp_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/ssdpscan/internal/ssdp"
	"github.com/muurk/ssdpscan/internal/ssdp/ssdptest"
)

func newQuery(t *testing.T) []byte {
	t.Helper()
	q, err := ssdp.BuildSearchRequest(ssdp.ScalarWebAPIService, 1)
	require.NoError(t, err)
	return q
}

type replyRecorder struct {
	mu      sync.Mutex
	replies []ssdp.Reply
}

func (r *replyRecorder) handle(reply ssdp.Reply) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, reply)
}

func (r *replyRecorder) all() []ssdp.Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ssdp.Reply(nil), r.replies...)
}

func TestSession_Run(t *testing.T) {
	adapter := ssdptest.Adapter("eth0", 2, "192.168.1.10")
	remote := &net.UDPAddr{IP: net.ParseIP("192.168.1.50"), Port: 1900}
	conn := ssdptest.NewConn(
		ssdptest.Packet{Payload: ssdptest.Reply("http://192.168.1.50:64321/dd.xml", ssdp.ScalarWebAPIService), Local: net.ParseIP("192.168.1.10"), Remote: remote},
		ssdptest.Packet{Payload: ssdptest.Reply("http://192.168.1.51:64321/dd.xml", ssdp.ScalarWebAPIService), Local: net.ParseIP("192.168.1.10"), Remote: remote},
	)
	transport := ssdptest.NewTransport()
	transport.Add("eth0", conn)

	query := newQuery(t)
	session := ssdp.NewSession(adapter, transport, query, 150*time.Millisecond)
	assert.Equal(t, ssdp.StateIdle, session.State())

	rec := &replyRecorder{}
	start := time.Now()
	err := session.Run(context.Background(), rec.handle)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond, "session must listen until its timeout")
	assert.Equal(t, ssdp.StateClosed, session.State())
	assert.True(t, conn.Closed(), "socket must be released")

	sent := conn.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, query, sent[0])

	joined := conn.Joined()
	require.Len(t, joined, 1)
	assert.Equal(t, ssdp.MulticastGroup.String(), joined[0].String())

	replies := rec.all()
	require.Len(t, replies, 2)
	for _, reply := range replies {
		assert.Equal(t, "192.168.1.10", reply.LocalAddr.String())
		assert.Equal(t, "eth0", reply.Adapter.Name())
		_, found := ssdp.ParseLocation(reply.Payload)
		assert.True(t, found)
	}

	assert.False(t, session.SentAt().IsZero())
	assert.WithinDuration(t, session.SentAt().Add(150*time.Millisecond), session.Deadline(), 20*time.Millisecond)
}

func TestSession_PayloadIsCopied(t *testing.T) {
	conn := ssdptest.NewConn(
		ssdptest.Packet{Payload: []byte("HTTP/1.1 200 OK\r\nLOCATION: http://a/1.xml\r\n\r\n")},
		ssdptest.Packet{Payload: []byte("HTTP/1.1 200 OK\r\nLOCATION: http://b/2.xml\r\n\r\n")},
	)
	transport := ssdptest.NewTransport()
	transport.Add("eth0", conn)

	rec := &replyRecorder{}
	session := ssdp.NewSession(ssdptest.Adapter("eth0", 2, "10.0.0.2"), transport, newQuery(t), 50*time.Millisecond)
	require.NoError(t, session.Run(context.Background(), rec.handle))

	replies := rec.all()
	require.Len(t, replies, 2)
	loc0, _ := ssdp.ParseLocation(replies[0].Payload)
	loc1, _ := ssdp.ParseLocation(replies[1].Payload)
	assert.Equal(t, "http://a/1.xml", loc0)
	assert.Equal(t, "http://b/2.xml", loc1)
}

func TestSession_TransportFailures(t *testing.T) {
	bindErr := errors.New("interface went down")
	joinErr := errors.New("no such device")
	sendErr := errors.New("network is unreachable")

	tests := []struct {
		name   string
		setup  func(tr *ssdptest.Transport)
		wantOp string
		want   error
	}{
		{
			name:   "bind",
			setup:  func(tr *ssdptest.Transport) { tr.FailBind("eth0", bindErr) },
			wantOp: "bind",
			want:   bindErr,
		},
		{
			name: "join",
			setup: func(tr *ssdptest.Transport) {
				c := ssdptest.NewConn()
				c.JoinErr = joinErr
				tr.Add("eth0", c)
			},
			wantOp: "join",
			want:   joinErr,
		},
		{
			name: "send",
			setup: func(tr *ssdptest.Transport) {
				c := ssdptest.NewConn()
				c.WriteErr = sendErr
				tr.Add("eth0", c)
			},
			wantOp: "send",
			want:   sendErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := ssdptest.NewTransport()
			tt.setup(transport)

			called := false
			session := ssdp.NewSession(ssdptest.Adapter("eth0", 2, "10.0.0.2"), transport, newQuery(t), 5*time.Second)

			start := time.Now()
			err := session.Run(context.Background(), func(ssdp.Reply) { called = true })

			var terr *ssdp.TransportError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, tt.wantOp, terr.Op)
			assert.ErrorIs(t, err, tt.want)

			assert.Less(t, time.Since(start), time.Second, "failed session must close immediately")
			assert.Equal(t, ssdp.StateClosed, session.State())
			assert.False(t, called)

			if c := transport.Conn("eth0"); c != nil {
				assert.True(t, c.Closed(), "socket must be released on %s failure", tt.wantOp)
			}
		})
	}
}

func TestSession_ContextCancel(t *testing.T) {
	transport := ssdptest.NewTransport()
	session := ssdp.NewSession(ssdptest.Adapter("eth0", 2, "10.0.0.2"), transport, newQuery(t), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	require.NoError(t, session.Run(ctx, func(ssdp.Reply) {}))
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, ssdp.StateClosed, session.State())
	assert.True(t, transport.Conn("eth0").Closed())
}

func TestSession_NoRepliesAfterClose(t *testing.T) {
	conn := ssdptest.NewConn()
	transport := ssdptest.NewTransport()
	transport.Add("eth0", conn)

	rec := &replyRecorder{}
	session := ssdp.NewSession(ssdptest.Adapter("eth0", 2, "10.0.0.2"), transport, newQuery(t), 30*time.Millisecond)
	require.NoError(t, session.Run(context.Background(), rec.handle))

	conn.Deliver(ssdptest.Packet{Payload: ssdptest.Reply("http://late/dd.xml", ssdp.SearchAll)})
	assert.Empty(t, rec.all())
}

func TestSession_RunTwice(t *testing.T) {
	transport := ssdptest.NewTransport()
	session := ssdp.NewSession(ssdptest.Adapter("eth0", 2, "10.0.0.2"), transport, newQuery(t), 10*time.Millisecond)
	require.NoError(t, session.Run(context.Background(), func(ssdp.Reply) {}))

	assert.Error(t, session.Run(context.Background(), func(ssdp.Reply) {}))
	assert.Len(t, transport.Binds(), 1)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", ssdp.StateIdle.String())
	assert.Equal(t, "listening", ssdp.StateListening.String())
	assert.Equal(t, "closed", ssdp.StateClosed.String())
	assert.Equal(t, "State(9)", ssdp.State(9).String())
}
