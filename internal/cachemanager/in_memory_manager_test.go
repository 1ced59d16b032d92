package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type exampleStruct struct {
	ID   int
	Name string
}

type versionKey string

func TestInMemoryCacheManager_SetGet(t *testing.T) {
	cache := NewInMemoryCacheManager[string, exampleStruct]("test", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()

	example := exampleStruct{ID: 1, Name: "overview"}
	cache.Set(ctx, "ex:1", example, time.Minute)

	got, ok := cache.Get(ctx, "ex:1")
	require.True(t, ok)
	require.Equal(t, example, got)
	require.Equal(t, 1, cache.ItemCount())
}

func TestInMemoryCacheManager_NamedKeyType(t *testing.T) {
	cache := NewInMemoryCacheManager[versionKey, int]("test", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()

	cache.Set(ctx, versionKey("v1"), 42, 0)
	got, ok := cache.Get(ctx, versionKey("v1"))
	require.True(t, ok)
	require.Equal(t, 42, got)
}

func TestInMemoryCacheManager_Miss(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(context.Background(), "absent")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_Expires(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()

	cache.Set(ctx, "short", "lived", 10*time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := cache.Get(ctx, "short")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	cache := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()

	cache.Set(ctx, "a", 1, time.Minute)
	cache.Set(ctx, "b", 2, time.Minute)
	cache.Set(ctx, "c", 3, time.Minute)

	cache.Delete(ctx, "a", "b")
	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)
	require.Equal(t, 1, cache.ItemCount())

	cache.Flush(ctx)
	require.Equal(t, 0, cache.ItemCount())
}
