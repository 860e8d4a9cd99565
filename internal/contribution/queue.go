package contribution

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amharic-dictionary/dictsync/internal/localstore"
)

// Queue is the durable, insertion-ordered list of pending contributions.
// It is persisted as a JSON-encoded sequence under a single store key so it
// survives process restarts. Enqueue is append-only; removal is explicit.
type Queue struct {
	store *localstore.Store
}

// NewQueue creates a Queue on top of the local store.
func NewQueue(store *localstore.Store) *Queue {
	return &Queue{store: store}
}

func decodeQueue(raw string, ok bool) ([]Contribution, error) {
	if !ok || raw == "" {
		return nil, nil
	}
	var items []Contribution
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("json.Unmarshal() > %w", err)
	}
	return items, nil
}

// Enqueue appends c to the persisted sequence and returns once it is durably
// stored. Existing entries are never overwritten or reordered.
func (q *Queue) Enqueue(ctx context.Context, c Contribution) error {
	err := q.store.Update(ctx, localstore.KeyContributions, func(current string, ok bool) (string, error) {
		items, err := decodeQueue(current, ok)
		if err != nil {
			return "", err
		}
		items = append(items, c)
		encoded, err := json.Marshal(items)
		if err != nil {
			return "", fmt.Errorf("json.Marshal() > %w", err)
		}
		return string(encoded), nil
	})
	if err != nil {
		return fmt.Errorf("store.Update() > %w", err)
	}
	return nil
}

// Snapshot returns a copy of the full sequence without removing anything.
func (q *Queue) Snapshot(ctx context.Context) ([]Contribution, error) {
	raw, ok, err := q.store.Get(ctx, localstore.KeyContributions)
	if err != nil {
		return nil, fmt.Errorf("store.Get() > %w", err)
	}
	return decodeQueue(raw, ok)
}

// Remove deletes every queued item with the same identity as c.
func (q *Queue) Remove(ctx context.Context, c Contribution) error {
	err := q.store.Update(ctx, localstore.KeyContributions, func(current string, ok bool) (string, error) {
		items, err := decodeQueue(current, ok)
		if err != nil {
			return "", err
		}
		kept := items[:0]
		for _, item := range items {
			if !item.SameIdentity(c) {
				kept = append(kept, item)
			}
		}
		encoded, err := json.Marshal(kept)
		if err != nil {
			return "", fmt.Errorf("json.Marshal() > %w", err)
		}
		return string(encoded), nil
	})
	if err != nil {
		return fmt.Errorf("store.Update() > %w", err)
	}
	return nil
}

// Clear empties the sequence.
func (q *Queue) Clear(ctx context.Context) error {
	if err := q.store.Set(ctx, localstore.KeyContributions, "[]"); err != nil {
		return fmt.Errorf("store.Set() > %w", err)
	}
	return nil
}

// Len returns the number of queued contributions.
func (q *Queue) Len(ctx context.Context) (int, error) {
	items, err := q.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
