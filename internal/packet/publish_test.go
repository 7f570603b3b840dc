package packet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yunqi/tideway/internal/xerror"
)

func TestPublishRoundTripQoS0(t *testing.T) {
	p := &Publish{Qos: 0, Topic: []byte("a/b"), Payload: []byte("hi")}
	buf := &bytes.Buffer{}
	require.NoError(t, p.Encode(buf))

	fh, err := DecodeFixedHeader(buf)
	require.NoError(t, err)
	got, err := DecodePublish(fh, buf)
	require.NoError(t, err)
	assert.Equal(t, "a/b", string(got.Topic))
	assert.Equal(t, "hi", string(got.Payload))
	assert.Equal(t, uint16(0), got.PacketId)
}

func TestPublishRoundTripQoS2(t *testing.T) {
	p := &Publish{Qos: 2, Retain: true, Topic: []byte("a/b"), PacketId: 42, Payload: []byte("hi")}
	buf := &bytes.Buffer{}
	require.NoError(t, p.Encode(buf))

	fh, err := DecodeFixedHeader(buf)
	require.NoError(t, err)
	got, err := DecodePublish(fh, buf)
	require.NoError(t, err)
	assert.Equal(t, uint16(42), got.PacketId)
	assert.True(t, got.Retain)
}

func TestPublishRejectsWildcardTopic(t *testing.T) {
	p := &Publish{Qos: 0, Topic: []byte("a/+"), Payload: []byte("hi")}
	buf := &bytes.Buffer{}
	require.NoError(t, p.Encode(buf))

	fh, err := DecodeFixedHeader(buf)
	require.NoError(t, err)
	_, err = DecodePublish(fh, buf)
	assert.ErrorIs(t, err, xerror.ErrWildcardInTopicName)
}

func TestPublishRejectsDollarTopic(t *testing.T) {
	p := &Publish{Qos: 0, Topic: []byte("$SYS/stats"), Payload: []byte("hi")}
	buf := &bytes.Buffer{}
	require.NoError(t, p.Encode(buf))

	fh, err := DecodeFixedHeader(buf)
	require.NoError(t, err)
	_, err = DecodePublish(fh, buf)
	assert.ErrorIs(t, err, xerror.ErrTopicStartsWithDollar)
}

func TestDecodePublishRejectsDupWithQos0(t *testing.T) {
	fh := &FixedHeader{PacketType: PUBLISH, Qos: 0, Dup: true, RemainLength: 0}
	_, err := DecodePublish(fh, bytes.NewBuffer(nil))
	assert.ErrorIs(t, err, xerror.ErrMalformed)
}
