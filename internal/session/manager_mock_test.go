package session

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	persistsub "github.com/yunqi/tideway/internal/persistence/subscription"
)

// TestManagerTreatsStoreLoadErrorAsNoStoredSession verifies Activate
// degrades to sessionPresent=false rather than failing the CONNECT when the
// backing store errors, since a broker that can't read Redis shouldn't
// refuse every reconnecting client.
func TestManagerTreatsStoreLoadErrorAsNoStoredSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockSessionStore(ctrl)
	store.EXPECT().Load(gomock.Any(), "c1").Return(nil, errors.New("dial tcp: timeout"))

	m := NewManager(4, 8, 4, 4, 2, store, persistsub.NewMemoryStore(), nil)
	s := m.Accept()

	present, _, err := m.Activate(context.Background(), s, "c1", false)
	require.NoError(t, err)
	assert.False(t, present)
}

// TestManagerEvictsOldestOnStoredOverflow verifies the overflow sweep reads
// Len and Oldest from the store and deletes exactly the id Oldest names.
func TestManagerEvictsOldestOnStoredOverflow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockSessionStore(ctrl)
	store.EXPECT().Load(gomock.Any(), "c1").Return(nil, nil)
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().Len(gomock.Any()).Return(9, nil)
	store.EXPECT().Oldest(gomock.Any()).Return("stale-client", nil)
	store.EXPECT().Delete(gomock.Any(), "stale-client").Return(nil)

	m := NewManager(4, 8, 4, 4, 2, store, persistsub.NewMemoryStore(), nil)
	s := m.Accept()
	_, _, err := m.Activate(context.Background(), s, "c1", false)
	require.NoError(t, err)

	m.Close(context.Background(), s)
}
