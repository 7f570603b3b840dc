package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Save(ctx, &StoredSession{ClientId: "c1", HasWill: true, WillTopic: "a/b", StoredAt: time.Now()}))

	got, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a/b", got.WillTopic)

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.Delete(ctx, "c1"))
	got, err = store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreOldest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Save(ctx, &StoredSession{ClientId: "old", StoredAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, store.Save(ctx, &StoredSession{ClientId: "new", StoredAt: time.Now()}))

	oldest, err := store.Oldest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old", oldest)
}

func TestMemoryStoreOldestEmpty(t *testing.T) {
	store := NewMemoryStore()
	oldest, err := store.Oldest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", oldest)
}
