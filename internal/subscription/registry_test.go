package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryAdd(t *testing.T) {
	r := NewRegistry(2)
	assert.True(t, r.Add("a/b", 1))
	assert.True(t, r.Add("c/d", 2))
	assert.False(t, r.Add("e/f", 0), "third distinct filter should overflow MaxSubscriptions")
	assert.True(t, r.Add("a/b", 2), "re-subscribing an existing filter succeeds even at the bound")
	assert.False(t, r.Add("bad+filter", 0), "malformed filter is rejected")
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry(4)
	r.Add("a/b", 1)
	assert.True(t, r.Remove("a/b"))
	assert.False(t, r.Remove("a/b"))
}

func TestRegistryMatching(t *testing.T) {
	r := NewRegistry(4)
	r.Add("sport/+", 1)
	r.Add("sport/tennis/#", 2)
	entries := r.Matching("sport/tennis")
	assert.Len(t, entries, 1)
	entries = r.Matching("sport/tennis/player1")
	assert.Len(t, entries, 1)
	assert.Equal(t, byte(2), entries[0].Qos)
}

func TestRegistryMaxQos(t *testing.T) {
	r := NewRegistry(4)
	r.Add("a/#", 0)
	r.Add("a/b", 2)
	best, matched := r.MaxQos("a/b")
	assert.True(t, matched)
	assert.Equal(t, byte(2), best)

	_, matched = r.MaxQos("unrelated")
	assert.False(t, matched)
}

func TestRegistrySnapshotAndClear(t *testing.T) {
	r := NewRegistry(4)
	r.Add("a/b", 1)
	r.Add("c/d", 0)
	assert.Len(t, r.Snapshot(), 2)
	assert.Equal(t, 2, r.Len())

	r.Clear()
	assert.Equal(t, 0, r.Len())
}
