package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionDefaults(t *testing.T) {
	s := New("", 4, 4, 2)
	assert.Equal(t, StateHalfOpen, s.State())
	assert.Equal(t, 0, s.Subscriptions.Len())
}

func TestNextPacketIdWraps(t *testing.T) {
	s := New("c1", 4, 4, 2)
	s.nextPacketId = 0xFFFE

	assert.Equal(t, uint16(0xFFFF), s.NextPacketId())
	assert.Equal(t, uint16(1), s.NextPacketId(), "packet id 0 is reserved and must be skipped")
}

func TestInboundInflightBound(t *testing.T) {
	s := New("c1", 4, 4, 1)
	duplicate, ok := s.MarkInboundInflight(10)
	assert.False(t, duplicate)
	assert.True(t, ok)

	duplicate, ok = s.MarkInboundInflight(11)
	assert.False(t, ok, "second id exceeds MaxInflight of 1")
	assert.False(t, duplicate)

	duplicate, ok = s.MarkInboundInflight(10)
	assert.True(t, ok, "re-marking an already tracked id succeeds")
	assert.True(t, duplicate, "re-marking an already tracked id reports it as a duplicate")

	assert.True(t, s.ResolveInboundInflight(10))
	assert.False(t, s.ResolveInboundInflight(10), "already resolved")
}

func TestOutboundInflight(t *testing.T) {
	s := New("c1", 4, 4, 1)
	assert.False(t, s.HasOutboundInflight(5))
	assert.True(t, s.MarkOutboundInflight(5))
	assert.True(t, s.HasOutboundInflight(5))
	assert.False(t, s.MarkOutboundInflight(6), "exceeds MaxInflight of 1")

	assert.True(t, s.ResolveOutboundInflight(5))
	assert.False(t, s.HasOutboundInflight(5))
}

func TestStateTransitions(t *testing.T) {
	s := New("c1", 4, 4, 2)
	s.SetState(StateActive)
	assert.Equal(t, StateActive, s.State())
	s.SetState(StateDropped)
	assert.Equal(t, StateDropped, s.State())
}
