package packet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubackRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, (&Puback{PacketId: 7}).Encode(buf))

	fh, err := DecodeFixedHeader(buf)
	require.NoError(t, err)
	got, err := DecodePuback(fh, buf)
	require.NoError(t, err)
	assert.Equal(t, uint16(7), got.PacketId)
}

func TestPubrelRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, (&Pubrel{PacketId: 9}).Encode(buf))

	fh, err := DecodeFixedHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, byte(1), fh.Qos)
	got, err := DecodePubrel(fh, buf)
	require.NoError(t, err)
	assert.Equal(t, uint16(9), got.PacketId)
}

func TestDecodePubrelRejectsWrongQosBits(t *testing.T) {
	fh := &FixedHeader{PacketType: PUBREL, Qos: 0, RemainLength: 2}
	_, err := DecodePubrel(fh, bytes.NewBuffer([]byte{0, 1}))
	assert.Error(t, err)
}

func TestPubcompRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, (&Pubcomp{PacketId: 3}).Encode(buf))

	fh, err := DecodeFixedHeader(buf)
	require.NoError(t, err)
	got, err := DecodePubcomp(fh, buf)
	require.NoError(t, err)
	assert.Equal(t, uint16(3), got.PacketId)
}

func TestDecodeIDPacketRejectsWrongLength(t *testing.T) {
	fh := &FixedHeader{PacketType: PUBACK, RemainLength: 3}
	_, err := decodeIDPacket(fh, bytes.NewBuffer([]byte{0, 1, 2}))
	assert.Error(t, err)
}
