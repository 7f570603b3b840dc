package subscription

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreReplaceLoadDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	entries := []Entry{{Filter: "a/b", Qos: 1}, {Filter: "c/#", Qos: 2}}
	require.NoError(t, store.Replace(ctx, "c1", entries))

	got, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	require.NoError(t, store.Replace(ctx, "c1", []Entry{{Filter: "x", Qos: 0}}))
	got, err = store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	require.NoError(t, store.Delete(ctx, "c1"))
	got, err = store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
