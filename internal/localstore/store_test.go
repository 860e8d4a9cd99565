package localstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, ok, err := store.Get(ctx, KeyGitHubToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, KeyGitHubToken, "ghp_example"))

	value, ok, err := store.Get(ctx, KeyGitHubToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ghp_example", value)

	require.NoError(t, store.Set(ctx, KeyGitHubToken, "ghp_rotated"))
	value, _, err = store.Get(ctx, KeyGitHubToken)
	require.NoError(t, err)
	assert.Equal(t, "ghp_rotated", value)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Set(ctx, KeyCurrentUsername, "abebe"))
	require.NoError(t, store.Delete(ctx, KeyCurrentUsername))

	_, ok, err := store.Get(ctx, KeyCurrentUsername)
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting again is a no-op
	require.NoError(t, store.Delete(ctx, KeyCurrentUsername))
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key starts empty", func(t *testing.T) {
		store := openTestStore(t)
		err := store.Update(ctx, KeyContributions, func(current string, ok bool) (string, error) {
			assert.False(t, ok)
			assert.Empty(t, current)
			return "[]", nil
		})
		require.NoError(t, err)

		value, ok, err := store.Get(ctx, KeyContributions)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "[]", value)
	})

	t.Run("error from fn leaves value untouched", func(t *testing.T) {
		store := openTestStore(t)
		require.NoError(t, store.Set(ctx, KeyContributions, "[1]"))

		err := store.Update(ctx, KeyContributions, func(string, bool) (string, error) {
			return "", errors.New("boom")
		})
		require.Error(t, err)

		value, _, err := store.Get(ctx, KeyContributions)
		require.NoError(t, err)
		assert.Equal(t, "[1]", value)
	})

	t.Run("concurrent updates never lose writes", func(t *testing.T) {
		store := openTestStore(t)
		require.NoError(t, store.Set(ctx, "counter", "0"))

		const writers = 20
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := store.Update(ctx, "counter", func(current string, ok bool) (string, error) {
					var n int
					if ok {
						if _, err := fmt.Sscanf(current, "%d", &n); err != nil {
							return "", err
						}
					}
					return fmt.Sprintf("%d", n+1), nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		value, _, err := store.Get(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%d", writers), value)
	})
}

func TestStore_PersistenceError(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.Close())

	err := store.Set(ctx, "k", "v")
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "set", perr.Op)
}
