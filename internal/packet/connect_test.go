package packet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yunqi/tideway/internal/code"
	"github.com/yunqi/tideway/internal/xerror"
)

func TestConnectRoundTrip(t *testing.T) {
	c := &Connect{
		Version:   Version311,
		KeepAlive: 60,
		ClientId:  []byte("client-1"),
		ConnectFlags: ConnectFlags{
			CleanSession: true,
			WillFlag:     true,
			WillQoS:      1,
		},
		WillTopic:   []byte("status/client-1"),
		WillMessage: []byte("offline"),
	}
	buf := &bytes.Buffer{}
	require.NoError(t, c.Encode(buf))

	fh, err := DecodeFixedHeader(buf)
	require.NoError(t, err)
	got, err := NewConnect(fh, buf)
	require.NoError(t, err)
	assert.Equal(t, Version311, got.Version)
	assert.Equal(t, "client-1", string(got.ClientId))
	assert.True(t, got.CleanSession)
	assert.True(t, got.WillFlag)
	assert.Equal(t, "status/client-1", string(got.WillTopic))
	assert.Equal(t, "offline", string(got.WillMessage))
}

func TestConnectRejectsUnknownProtocol(t *testing.T) {
	c := &Connect{Version: Version(9), ClientId: []byte("c1")}
	buf := &bytes.Buffer{}
	assert.Error(t, c.Encode(buf))
}

func TestConnectDecodeRejectsBadProtocolName(t *testing.T) {
	buf := &bytes.Buffer{}
	nameBytes, _, _ := UTF8EncodedStrings([]byte("bogus"))
	buf.Write(nameBytes)
	buf.WriteByte(4)
	buf.WriteByte(0x02) // clean session
	_ = writeUint16(buf, 60)
	clientIdBytes, _, _ := UTF8EncodedStrings([]byte("c1"))
	buf.Write(clientIdBytes)

	fh := &FixedHeader{PacketType: CONNECT, Flags: FixedHeaderFlagReserved, RemainLength: uint32(buf.Len())}
	_, err := NewConnect(fh, buf)
	assert.ErrorIs(t, err, xerror.ErrV3UnacceptableProtocolVersion)
}

func TestConnectDecodeRejectsEmptyClientIdNonClean(t *testing.T) {
	buf := &bytes.Buffer{}
	nameBytes, _, _ := UTF8EncodedStrings([]byte("MQTT"))
	buf.Write(nameBytes)
	buf.WriteByte(4)
	buf.WriteByte(0x00) // clean session false
	_ = writeUint16(buf, 60)
	clientIdBytes, _, _ := UTF8EncodedStrings([]byte(""))
	buf.Write(clientIdBytes)

	fh := &FixedHeader{PacketType: CONNECT, Flags: FixedHeaderFlagReserved, RemainLength: uint32(buf.Len())}
	_, err := NewConnect(fh, buf)
	assert.ErrorIs(t, err, xerror.ErrV3IdentifierRejected)
}

func TestNewConnackPacketForcesNoSessionPresentOnFailure(t *testing.T) {
	c := &Connect{}
	ack := c.NewConnackPacket(code.RefusedIdentifierRejected, true)
	assert.False(t, ack.SessionPresent)
	assert.Equal(t, code.RefusedIdentifierRejected, ack.Code)

	ack = c.NewConnackPacket(code.Success, true)
	assert.True(t, ack.SessionPresent)
}
