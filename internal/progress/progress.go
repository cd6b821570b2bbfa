// Package progress tracks watched episodes per work, stored as plain id
// arrays in the key-value store.
package progress

import (
	"context"
	"fmt"
	"sort"

	"courtracker/internal/storage"
)

const keyPrefix = "watched_episodes_"

type Store struct {
	store *storage.JSONStore
}

func New(store *storage.JSONStore) *Store {
	return &Store{store: store}
}

// Watched returns the sorted watched-episode ids for a work. Read failures
// yield an empty set.
func (s *Store) Watched(ctx context.Context, animeID int) []int {
	var ids []int
	if !s.store.Read(ctx, key(animeID), &ids) {
		return []int{}
	}
	sort.Ints(ids)
	return ids
}

// Toggle flips one episode's watched state and returns the updated set.
func (s *Store) Toggle(ctx context.Context, animeID, episodeID int) ([]int, error) {
	ids := s.Watched(ctx, animeID)

	updated := ids[:0:0]
	removed := false
	for _, id := range ids {
		if id == episodeID {
			removed = true
			continue
		}
		updated = append(updated, id)
	}
	if !removed {
		updated = append(updated, episodeID)
		sort.Ints(updated)
	}

	if err := s.store.Write(ctx, key(animeID), updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func key(animeID int) string {
	return fmt.Sprintf("%s%d", keyPrefix, animeID)
}
