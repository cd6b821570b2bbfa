package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestReadWriteRoundTrip(t *testing.T) {
	js := NewJSONStore(NewMemoryStore(), quietLog())
	ctx := context.Background()

	in := map[string][]int{"a": {1, 2}, "b": nil}
	require.NoError(t, js.Write(ctx, "key", in))

	var out map[string][]int
	require.True(t, js.Read(ctx, "key", &out))
	assert.Equal(t, in, out)
}

func TestReadMissIsFalse(t *testing.T) {
	js := NewJSONStore(NewMemoryStore(), quietLog())

	var out map[string]int
	assert.False(t, js.Read(context.Background(), "absent", &out))
}

func TestCorruptValueIsRemovedAndMissed(t *testing.T) {
	mem := NewMemoryStore()
	js := NewJSONStore(mem, quietLog())
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "key", "{{{"))

	var out map[string]int
	assert.False(t, js.Read(ctx, "key", &out))

	_, err := mem.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrNotFound)
}

type readFailStore struct{ Store }

func (f readFailStore) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("backend down")
}

func TestBackendReadFailureIsContained(t *testing.T) {
	js := NewJSONStore(readFailStore{NewMemoryStore()}, quietLog())

	var out map[string]int
	assert.False(t, js.Read(context.Background(), "key", &out))
}

func TestRemoveByPrefix(t *testing.T) {
	mem := NewMemoryStore()
	js := NewJSONStore(mem, quietLog())
	ctx := context.Background()

	require.NoError(t, js.Write(ctx, "anime_data_2023-autumn", 1))
	require.NoError(t, js.Write(ctx, "anime_data_2024-winter", 2))
	require.NoError(t, js.Write(ctx, "admin_cache_data_2023-autumn", 3))

	js.RemoveByPrefix(ctx, "anime_data_")

	keys, err := mem.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin_cache_data_2023-autumn"}, keys)
}
