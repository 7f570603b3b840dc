package packet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yunqi/tideway/internal/code"
)

func TestConnackRoundTrip(t *testing.T) {
	a := &Connack{SessionPresent: true, Code: code.Success}
	buf := &bytes.Buffer{}
	require.NoError(t, a.Encode(buf))

	fh, err := DecodeFixedHeader(buf)
	require.NoError(t, err)
	got := &Connack{}
	require.NoError(t, got.Decode(buf, fh))
	assert.True(t, got.SessionPresent)
	assert.Equal(t, code.Success, got.Code)
}

func TestConnackDecodeRejectsReservedBits(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0xFE, 0x00})
	fh := &FixedHeader{RemainLength: 2}
	err := (&Connack{}).Decode(buf, fh)
	assert.Error(t, err)
}
