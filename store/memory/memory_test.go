package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iangithub/langchain-ai-agent/store"
)

func checkpoint(id, session string, version int) *store.Checkpoint {
	return &store.Checkpoint{
		ID:        id,
		SessionID: session,
		NodeName:  "node-a",
		State:     map[string]any{"count": version},
		Timestamp: time.Now(),
		Version:   version,
	}
}

func TestMemoryStoreSaveAndLoad(t *testing.T) {
	s := NewMemoryCheckpointStore()
	ctx := context.Background()

	cp := checkpoint("cp-1", "sess-1", 1)
	require.NoError(t, s.Save(ctx, cp))

	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", loaded.SessionID)
	assert.Equal(t, map[string]any{"count": 1}, loaded.State)
}

func TestMemoryStoreLoadMissing(t *testing.T) {
	s := NewMemoryCheckpointStore()

	_, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryStoreLoadLatest(t *testing.T) {
	s := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, checkpoint("cp-1", "sess-1", 1)))
	require.NoError(t, s.Save(ctx, checkpoint("cp-3", "sess-1", 3)))
	require.NoError(t, s.Save(ctx, checkpoint("cp-2", "sess-1", 2)))

	latest, err := s.LoadLatest(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "cp-3", latest.ID)
}

func TestMemoryStoreLoadLatestEmpty(t *testing.T) {
	s := NewMemoryCheckpointStore()

	latest, err := s.LoadLatest(context.Background(), "no-such-session")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestMemoryStoreListOrdersByVersion(t *testing.T) {
	s := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, checkpoint("cp-2", "sess-1", 2)))
	require.NoError(t, s.Save(ctx, checkpoint("cp-1", "sess-1", 1)))
	require.NoError(t, s.Save(ctx, checkpoint("other", "sess-2", 1)))

	list, err := s.List(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "cp-1", list[0].ID)
	assert.Equal(t, "cp-2", list[1].ID)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, checkpoint("cp-1", "sess-1", 1)))
	require.NoError(t, s.Delete(ctx, "cp-1"))

	_, err := s.Load(ctx, "cp-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err := s.List(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryStoreClear(t *testing.T) {
	s := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, checkpoint("cp-1", "sess-1", 1)))
	require.NoError(t, s.Save(ctx, checkpoint("cp-2", "sess-1", 2)))
	require.NoError(t, s.Save(ctx, checkpoint("keep", "sess-2", 1)))

	require.NoError(t, s.Clear(ctx, "sess-1"))

	list, err := s.List(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.Load(ctx, "keep")
	assert.NoError(t, err)
}

func TestMemoryStoreCopiesOnSaveAndLoad(t *testing.T) {
	s := NewMemoryCheckpointStore()
	ctx := context.Background()

	cp := checkpoint("cp-1", "sess-1", 1)
	require.NoError(t, s.Save(ctx, cp))

	// Mutating the caller's checkpoint must not affect the stored copy.
	cp.NodeName = "changed"
	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "node-a", loaded.NodeName)
}
