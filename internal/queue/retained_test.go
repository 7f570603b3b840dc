package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yunqi/tideway/internal/topic"
)

func TestRetainedStoreSetAndDelete(t *testing.T) {
	s := NewRetainedStore(8)
	s.Set("a/b", []byte("hello"), 1)
	assert.Equal(t, 1, s.Len())

	s.Set("a/b", nil, 0)
	assert.Equal(t, 0, s.Len(), "empty payload clears the retained entry")
}

func TestRetainedStoreEvictsOldest(t *testing.T) {
	s := NewRetainedStore(2)
	s.Set("a", []byte("1"), 0)
	s.Set("b", []byte("2"), 0)
	s.Set("c", []byte("3"), 0)
	assert.Equal(t, 2, s.Len())

	found := s.Matching("a", topic.Match)
	assert.Empty(t, found, "oldest topic should have been evicted")
}

func TestRetainedStoreMatching(t *testing.T) {
	s := NewRetainedStore(8)
	s.Set("sport/tennis/player1", []byte("x"), 2)
	s.Set("sport/football", []byte("y"), 0)

	matches := s.Matching("sport/tennis/#", topic.Match)
	assert.Len(t, matches, 1)
	assert.Equal(t, "sport/tennis/player1", matches[0].Topic)
}
