package datastore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courtracker/internal/models"
	"courtracker/internal/storage"

	"github.com/sirupsen/logrus"
)

// All overrides live as one map under a single key, mirroring how the
// record set is edited: the admin works on a handful of works per season,
// and every save replaces the whole map.
const savedDataKey = "admin_saved_anime_data"

// ErrSaveFailed wraps persistence-write failures so callers can tell them
// apart from not-found, which is silently ignored.
var ErrSaveFailed = errors.New("failed to save anime data")

// OverrideStore owns the admin-editable record set. Reads never fail: any
// storage problem yields an empty set and the public site keeps serving
// system-derived data.
type OverrideStore struct {
	store *storage.JSONStore
	log   *logrus.Logger
	now   func() time.Time
}

func New(store *storage.JSONStore, log *logrus.Logger) *OverrideStore {
	return &OverrideStore{store: store, log: log, now: time.Now}
}

// WithClock replaces the timestamp source. Tests only.
func (s *OverrideStore) WithClock(now func() time.Time) *OverrideStore {
	s.now = now
	return s
}

// GetAll returns every override keyed by work id. Never fails.
func (s *OverrideStore) GetAll(ctx context.Context) map[int]models.SavedAnime {
	overrides := make(map[int]models.SavedAnime)
	if !s.store.Read(ctx, savedDataKey, &overrides) {
		return map[int]models.SavedAnime{}
	}
	return overrides
}

// Get returns the override for a single work id.
func (s *OverrideStore) Get(ctx context.Context, id int) (models.SavedAnime, bool) {
	rec, ok := s.GetAll(ctx)[id]
	return rec, ok
}

// Save upserts the full record, stamping LastModified. Callers replacing a
// subset of fields should use Patch instead.
func (s *OverrideStore) Save(ctx context.Context, rec models.SavedAnime) error {
	all := s.GetAll(ctx)
	rec.LastModified = s.now().UnixMilli()
	all[rec.ID] = rec
	return s.write(ctx, all)
}

// Patch loads the stored override (or defaults for a new one: visible,
// unpublished), applies the set fields, and saves the result.
func (s *OverrideStore) Patch(ctx context.Context, id int, patch models.SavedAnimePatch) error {
	all := s.GetAll(ctx)
	rec, ok := all[id]
	if !ok {
		rec = models.SavedAnime{ID: id, IsVisible: true}
	}
	if patch.Title != nil {
		rec.Title = *patch.Title
	}
	if patch.Description != nil {
		rec.Description = *patch.Description
	}
	if patch.Genres != nil {
		rec.Genres = *patch.Genres
	}
	if patch.StreamingServices != nil {
		rec.StreamingServices = *patch.StreamingServices
	}
	if patch.IsVisible != nil {
		rec.IsVisible = *patch.IsVisible
	}
	if patch.CustomImageURL != nil {
		rec.CustomImageURL = *patch.CustomImageURL
	}
	if patch.RecommendationScore != nil {
		rec.RecommendationScore = patch.RecommendationScore
	}
	if patch.IsPublished != nil {
		rec.IsPublished = *patch.IsPublished
	}
	rec.LastModified = s.now().UnixMilli()
	all[id] = rec
	return s.write(ctx, all)
}

// Publish exposes the override's content fields to the public merge.
// A publish for a work without an override is silently ignored.
func (s *OverrideStore) Publish(ctx context.Context, id int) error {
	return s.setPublished(ctx, id, true)
}

// Unpublish returns the override to draft state.
func (s *OverrideStore) Unpublish(ctx context.Context, id int) error {
	return s.setPublished(ctx, id, false)
}

func (s *OverrideStore) setPublished(ctx context.Context, id int, published bool) error {
	all := s.GetAll(ctx)
	rec, ok := all[id]
	if !ok {
		s.log.WithField("anime_id", id).Warn("Publish state change for work without override, ignoring")
		return nil
	}
	rec.IsPublished = published
	rec.LastModified = s.now().UnixMilli()
	all[id] = rec
	return s.write(ctx, all)
}

// Delete removes the override; the public record fully reverts to
// system-derived values.
func (s *OverrideStore) Delete(ctx context.Context, id int) error {
	all := s.GetAll(ctx)
	if _, ok := all[id]; !ok {
		return nil
	}
	delete(all, id)
	return s.write(ctx, all)
}

func (s *OverrideStore) write(ctx context.Context, all map[int]models.SavedAnime) error {
	if err := s.store.Write(ctx, savedDataKey, all); err != nil {
		s.log.WithError(err).Error("Failed to persist anime overrides")
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return nil
}
