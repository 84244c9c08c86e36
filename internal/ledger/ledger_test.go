package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	ids := map[string]struct{}{
		"om_1": {},
		"om_2": {},
		"om_3": {},
	}
	require.NoError(t, store.Save(context.Background(), ids))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ids, loaded)
}

func TestMemoryStoreLoadEmpty(t *testing.T) {
	store := NewMemoryStore()

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	store := NewMemoryStore()

	ids := map[string]struct{}{"om_1": {}}
	require.NoError(t, store.Save(context.Background(), ids))

	// mutations after Save must not leak into the store
	ids["om_2"] = struct{}{}

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded, 1)

	// nor may mutations of a loaded set
	loaded["om_3"] = struct{}{}
	again, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestMemoryStoreSaveOverwrites(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Save(context.Background(), map[string]struct{}{"a": {}, "b": {}}))
	require.NoError(t, store.Save(context.Background(), map[string]struct{}{"c": {}}))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"c": {}}, loaded)
}
