package server

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yunqi/tideway/internal/code"
	"github.com/yunqi/tideway/internal/packet"
	sessionmgr "github.com/yunqi/tideway/internal/session"
)

// fakeConn is a minimal transport backed by in-memory buffers, for
// handler-level tests that never need a real socket.
type fakeConn struct {
	in  *bytes.Buffer
	out *bytes.Buffer
}

func newFakeConn(in []byte) *fakeConn {
	return &fakeConn{in: bytes.NewBuffer(in), out: &bytes.Buffer{}}
}

func (f *fakeConn) Read(p []byte) (int, error)          { return f.in.Read(p) }
func (f *fakeConn) Write(p []byte) (int, error)         { return f.out.Write(p) }
func (f *fakeConn) Close() error                        { return nil }
func (f *fakeConn) SetReadDeadline(time.Time) error     { return nil }

func encodeConnect(t *testing.T, c *packet.Connect) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, c.Encode(buf))
	return buf.Bytes()
}

func TestHandleConnectActivatesSession(t *testing.T) {
	s := newTestServer(t, "overlap")
	s.opts.mqtt.AllowZeroLenClientId = true

	raw := encodeConnect(t, &packet.Connect{
		Version:      packet.Version311,
		KeepAlive:    30,
		ClientId:     []byte("c1"),
		ConnectFlags: packet.ConnectFlags{CleanSession: true},
	})
	conn := newFakeConn(raw)
	c := newClient(s, conn)

	fh, err := packet.DecodeFixedHeader(c.r)
	require.NoError(t, err)
	assert.True(t, c.dispatch(fh))
	assert.Equal(t, sessionmgr.StateActive, c.sess.State())

	ackFh, err := packet.DecodeFixedHeader(conn.out)
	require.NoError(t, err)
	assert.Equal(t, packet.CONNACK, ackFh.PacketType)
}

func TestHandleConnectRejectsEmptyClientIdWhenDisallowed(t *testing.T) {
	s := newTestServer(t, "overlap")
	s.opts.mqtt.AllowZeroLenClientId = false

	raw := encodeConnect(t, &packet.Connect{
		Version:      packet.Version311,
		ClientId:     []byte(""),
		ConnectFlags: packet.ConnectFlags{CleanSession: true},
	})
	conn := newFakeConn(raw)
	c := newClient(s, conn)

	fh, err := packet.DecodeFixedHeader(c.r)
	require.NoError(t, err)
	assert.False(t, c.dispatch(fh))

	ackFh, err := packet.DecodeFixedHeader(conn.out)
	require.NoError(t, err)
	ack := &packet.Connack{}
	require.NoError(t, ack.Decode(conn.out, ackFh))
	assert.Equal(t, code.RefusedIdentifierRejected, ack.Code)
}

func TestDispatchRejectsPacketBeforeConnect(t *testing.T) {
	s := newTestServer(t, "overlap")
	conn := newFakeConn(nil)
	c := newClient(s, conn)

	fh := &packet.FixedHeader{PacketType: packet.PINGREQ}
	assert.False(t, c.dispatch(fh))
}

func TestHandlePubrecToleratesUntrackedIdByDefault(t *testing.T) {
	s := newTestServer(t, "overlap")
	s.opts.mqtt.TolerantPubrec = true
	conn := newFakeConn(nil)
	c := newClient(s, conn)
	c.sess.SetState(sessionmgr.StateActive)

	assert.True(t, c.handlePubrec(&packet.Pubrec{PacketId: 99}))
}

func TestHandlePubrecRejectsUntrackedIdWhenIntolerant(t *testing.T) {
	s := newTestServer(t, "overlap")
	s.opts.mqtt.TolerantPubrec = false
	conn := newFakeConn(nil)
	c := newClient(s, conn)
	c.sess.SetState(sessionmgr.StateActive)

	assert.False(t, c.handlePubrec(&packet.Pubrec{PacketId: 99}))
}

func TestHandlePublishRoutesAndRetains(t *testing.T) {
	s := newTestServer(t, "overlap")
	conn := newFakeConn(nil)
	c := newClient(s, conn)
	c.sess.SetState(sessionmgr.StateActive)

	ok := c.handlePublish(&packet.Publish{Qos: 0, Retain: true, Topic: []byte("a/b"), Payload: []byte("x")})
	assert.True(t, ok)
	assert.Equal(t, 1, s.retained.Len())
}

func TestHandlePublishRepeatedQos2WithoutDupIsRejected(t *testing.T) {
	s := newTestServer(t, "overlap")
	conn := newFakeConn(nil)
	c := newClient(s, conn)
	c.sess.SetState(sessionmgr.StateActive)
	other := activate(t, s, "subscriber")
	other.Subscriptions.Add("a/b", 2)

	pub := &packet.Publish{Qos: 2, Topic: []byte("a/b"), Payload: []byte("x"), PacketId: 7}
	assert.True(t, c.handlePublish(pub))
	assert.Len(t, other.Outbound.DrainAll(), 1)

	assert.False(t, c.handlePublish(pub), "a repeated packet id without dup=1 is a protocol violation")
}

func TestHandlePublishRepeatedQos2WithDupIsNotReRouted(t *testing.T) {
	s := newTestServer(t, "overlap")
	conn := newFakeConn(nil)
	c := newClient(s, conn)
	c.sess.SetState(sessionmgr.StateActive)
	other := activate(t, s, "subscriber")
	other.Subscriptions.Add("a/b", 2)

	pub := &packet.Publish{Qos: 2, Topic: []byte("a/b"), Payload: []byte("x"), PacketId: 7}
	require.True(t, c.handlePublish(pub))
	require.Len(t, other.Outbound.DrainAll(), 1)

	pub.Dup = true
	assert.True(t, c.handlePublish(pub))
	assert.Empty(t, other.Outbound.DrainAll(), "a tracked duplicate must not be routed again")
}
