package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yunqi/tideway/internal/xerror"
)

func TestPendingEnqueueBound(t *testing.T) {
	p := NewPending(2)
	assert.NoError(t, p.Enqueue(Message{Topic: "a"}))
	assert.NoError(t, p.Enqueue(Message{Topic: "b"}))
	assert.ErrorIs(t, p.Enqueue(Message{Topic: "c"}), xerror.ErrQueueFull)
	assert.Equal(t, 2, p.Len())
}

func TestPendingDrainAll(t *testing.T) {
	p := NewPending(4)
	_ = p.Enqueue(Message{Topic: "a"})
	_ = p.Enqueue(Message{Topic: "b"})

	msgs := p.DrainAll()
	assert.Len(t, msgs, 2)
	assert.Equal(t, "a", msgs[0].Topic)
	assert.Equal(t, "b", msgs[1].Topic)
	assert.Equal(t, 0, p.Len())
	assert.Empty(t, p.DrainAll())
}
