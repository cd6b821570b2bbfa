package cache

import (
	"context"
	"time"

	"courtracker/internal/storage"

	"github.com/sirupsen/logrus"
)

const (
	// TTL matches the upstream refresh cadence: season listings barely move
	// within a day, and the Annict/Jikan quotas are tight.
	TTL = 24 * time.Hour

	// SeasonPrefix keys the public season cache, AdminPrefix the admin
	// preview cache. The namespaces are disjoint so an admin force-refresh
	// never cools the public cache, and vice versa.
	SeasonPrefix = "anime_data_"
	AdminPrefix  = "admin_cache_data_"
)

// Entry is the stored form of one cached season.
type Entry[T any] struct {
	Timestamp int64  `json:"timestamp"`
	Season    string `json:"season"`
	Records   []T    `json:"records"`
}

// Cache is a time-boxed per-season cache over the key-value store. Entries
// are disposable projections; losing one only costs a refetch.
type Cache[T any] struct {
	prefix string
	ttl    time.Duration
	store  *storage.JSONStore
	log    *logrus.Logger
	now    func() time.Time
}

func New[T any](prefix string, store *storage.JSONStore, log *logrus.Logger) *Cache[T] {
	return &Cache[T]{prefix: prefix, ttl: TTL, store: store, log: log, now: time.Now}
}

// WithClock replaces the time source. Tests only.
func (c *Cache[T]) WithClock(now func() time.Time) *Cache[T] {
	c.now = now
	return c
}

// Get returns the cached records for a season, or false on a miss. An
// expired entry counts as a miss and is evicted on the way out.
func (c *Cache[T]) Get(ctx context.Context, season string) ([]T, bool) {
	key := c.prefix + season
	var entry Entry[T]
	if !c.store.Read(ctx, key, &entry) {
		return nil, false
	}
	if c.now().UnixMilli()-entry.Timestamp >= c.ttl.Milliseconds() {
		c.log.WithField("season", season).Debug("Cache entry expired, evicting")
		c.store.Remove(ctx, key)
		return nil, false
	}
	return entry.Records, true
}

// Put stores the records for a season, stamping the current time. A write
// failure is returned so the caller can warn, but the records it already
// holds stay valid.
func (c *Cache[T]) Put(ctx context.Context, season string, records []T) error {
	entry := Entry[T]{
		Timestamp: c.now().UnixMilli(),
		Season:    season,
		Records:   records,
	}
	return c.store.Write(ctx, c.prefix+season, entry)
}

// Invalidate drops the entry for one season.
func (c *Cache[T]) Invalidate(ctx context.Context, season string) {
	c.store.Remove(ctx, c.prefix+season)
}

// InvalidateAll drops every entry in this cache's namespace.
func (c *Cache[T]) InvalidateAll(ctx context.Context) {
	c.store.RemoveByPrefix(ctx, c.prefix)
}
