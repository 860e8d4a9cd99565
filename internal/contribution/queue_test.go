package contribution

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amharic-dictionary/dictsync/internal/localstore"
)

func newTestQueue(t *testing.T) (*Queue, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.db")
	store, err := localstore.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return NewQueue(store), path
}

func TestQueue_EnqueueAndSnapshot(t *testing.T) {
	ctx := context.Background()
	queue, _ := newTestQueue(t)

	items, err := queue.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	base := time.Now()
	first := validContribution().Stamp("abebe", base)
	second := validContribution().Stamp("sara", base.Add(time.Second))

	require.NoError(t, queue.Enqueue(ctx, first))
	require.NoError(t, queue.Enqueue(ctx, second))

	items, err = queue.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	// insertion order is preserved
	assert.Equal(t, "abebe", items[0].Contributor)
	assert.Equal(t, "sara", items[1].Contributor)

	// snapshot does not remove
	n, err := queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestQueue_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	store, err := localstore.Open(path)
	require.NoError(t, err)
	queue := NewQueue(store)
	require.NoError(t, queue.Enqueue(ctx, validContribution().Stamp("abebe", time.Now())))
	require.NoError(t, store.Close())

	reopened, err := localstore.Open(path)
	require.NoError(t, err)
	defer func() {
		_ = reopened.Close()
	}()

	items, err := NewQueue(reopened).Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "abebe", items[0].Contributor)
}

func TestQueue_Remove(t *testing.T) {
	ctx := context.Background()
	queue, _ := newTestQueue(t)

	base := time.Now()
	first := validContribution().Stamp("abebe", base)
	second := validContribution().Stamp("sara", base.Add(time.Second))
	third := validContribution().Stamp("abebe", base.Add(2*time.Second))

	for _, c := range []Contribution{first, second, third} {
		require.NoError(t, queue.Enqueue(ctx, c))
	}

	require.NoError(t, queue.Remove(ctx, second))

	items, err := queue.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].SameIdentity(first))
	assert.True(t, items[1].SameIdentity(third))

	// removing an item that is no longer queued is a no-op
	require.NoError(t, queue.Remove(ctx, second))
	n, err := queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestQueue_Clear(t *testing.T) {
	ctx := context.Background()
	queue, _ := newTestQueue(t)

	require.NoError(t, queue.Enqueue(ctx, validContribution().Stamp("abebe", time.Now())))
	require.NoError(t, queue.Clear(ctx))

	items, err := queue.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
