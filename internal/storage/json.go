package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// JSONStore wraps a Store with JSON encoding and read-failure containment.
// A failed or corrupt read behaves as a miss; callers treat it as empty data
// and refetch. Write failures are surfaced so the caller can warn the admin,
// but in-memory results are never rolled back.
type JSONStore struct {
	store Store
	log   *logrus.Logger
}

func NewJSONStore(store Store, log *logrus.Logger) *JSONStore {
	return &JSONStore{store: store, log: log}
}

// Read decodes the value at key into v. It returns false on a miss, a
// backend error, or corrupt JSON; corrupt entries are removed so the next
// write starts clean.
func (s *JSONStore) Read(ctx context.Context, key string, v any) bool {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.WithError(err).WithField("key", key).Warn("Storage read failed, treating as miss")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Corrupt stored value, removing")
		if delErr := s.store.Del(ctx, key); delErr != nil {
			s.log.WithError(delErr).WithField("key", key).Warn("Failed to remove corrupt value")
		}
		return false
	}
	return true
}

func (s *JSONStore) Write(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Remove deletes the value at key. Deletion failures are logged, not returned;
// a leftover entry only costs a stale read later.
func (s *JSONStore) Remove(ctx context.Context, key string) {
	if err := s.store.Del(ctx, key); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Failed to remove key")
	}
}

// RemoveByPrefix deletes every key sharing the prefix.
func (s *JSONStore) RemoveByPrefix(ctx context.Context, prefix string) {
	keys, err := s.store.Keys(ctx, prefix)
	if err != nil {
		s.log.WithError(err).WithField("prefix", prefix).Warn("Failed to list keys")
		return
	}
	for _, key := range keys {
		s.Remove(ctx, key)
	}
}
