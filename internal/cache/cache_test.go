package cache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/crossflow/internal/cache"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	return cache.NewFromClient(client)
}

func TestCache_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key := cache.Key([]byte("<workflow-app/>"), map[string]string{"user.name": "demo"})

	_, err := store.Get(ctx, key)
	assert.True(t, errors.Is(err, cache.ErrMiss), "expected miss before Put")

	artifact := []byte("# generated artifact")
	require.NoError(t, store.Put(ctx, key, artifact))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, artifact, got)
}

func TestCache_KeyStability(t *testing.T) {
	def := []byte("<workflow-app name=\"demo\"/>")

	a := cache.Key(def, map[string]string{"a": "1", "b": "2"})
	b := cache.Key(def, map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, a, b, "key must not depend on map iteration order")

	c := cache.Key(def, map[string]string{"a": "1", "b": "3"})
	assert.NotEqual(t, a, c, "config changes must change the key")

	d := cache.Key([]byte("<workflow-app name=\"other\"/>"), map[string]string{"a": "1", "b": "2"})
	assert.NotEqual(t, a, d, "definition changes must change the key")
}
