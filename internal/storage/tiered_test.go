package storage

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func TestTiered_SaveWritesThroughBothTiers(t *testing.T) {
	cache := NewSessionCache(10)
	durable := NewMockStore()
	tier := NewTiered(cache, durable, testLogger())

	s := testSession("Ada")
	tier.Save(context.Background(), s)

	_, ok := cache.Get(s.ID)
	assert.True(t, ok)
	assert.True(t, durable.Has(s.ID))
}

func TestTiered_DurableSaveFailureIsSwallowed(t *testing.T) {
	cache := NewSessionCache(10)
	durable := NewMockStore()
	durable.SetSaveError(errors.New("store down"))
	tier := NewTiered(cache, durable, testLogger())

	s := testSession("Ada")
	tier.Save(context.Background(), s)

	// The memory tier stays authoritative; gameplay continues.
	got := tier.Load(context.Background(), s.ID)
	require.NotNil(t, got)
	assert.Equal(t, s.ID, got.ID)
}

func TestTiered_ReadThroughOnCacheMiss(t *testing.T) {
	cache := NewSessionCache(10)
	durable := NewMockStore()
	tier := NewTiered(cache, durable, testLogger())

	s := testSession("Ada")
	require.NoError(t, durable.SaveSession(context.Background(), s.ID, s))

	got := tier.Load(context.Background(), s.ID)
	require.NotNil(t, got)
	assert.Equal(t, s.ID, got.ID)

	// A durable hit is installed into the memory tier.
	_, ok := cache.Get(s.ID)
	assert.True(t, ok)
}

func TestTiered_CacheHitSkipsDurable(t *testing.T) {
	cache := NewSessionCache(10)
	durable := NewMockStore()
	tier := NewTiered(cache, durable, testLogger())

	s := testSession("Ada")
	cache.Put(s)

	tier.Load(context.Background(), s.ID)
	assert.Zero(t, durable.LoadCalls)
}

func TestTiered_DurableLoadFailureIsAMiss(t *testing.T) {
	cache := NewSessionCache(10)
	durable := NewMockStore()
	durable.SetLoadError(errors.New("store down"))
	tier := NewTiered(cache, durable, testLogger())

	assert.Nil(t, tier.Load(context.Background(), "anything"))
}

func TestTiered_NoDurableTier(t *testing.T) {
	tier := NewTiered(NewSessionCache(10), nil, testLogger())

	s := testSession("Ada")
	tier.Save(context.Background(), s)

	got := tier.Load(context.Background(), s.ID)
	require.NotNil(t, got)
	assert.Nil(t, tier.Load(context.Background(), "missing"))
	assert.NoError(t, tier.Delete(context.Background(), s.ID))
}

func TestTiered_EvictedSessionRecoverableFromDurable(t *testing.T) {
	cache := NewSessionCache(1)
	durable := NewMockStore()
	tier := NewTiered(cache, durable, testLogger())

	a := testSession("a")
	b := testSession("b")
	tier.Save(context.Background(), a)
	tier.Save(context.Background(), b) // evicts a from memory

	_, ok := cache.Get(a.ID)
	require.False(t, ok)

	got := tier.Load(context.Background(), a.ID)
	require.NotNil(t, got, "evicted but durably stored sessions remain recoverable")
	assert.Equal(t, a.ID, got.ID)
}

func TestTiered_DeleteRemovesBothTiers(t *testing.T) {
	cache := NewSessionCache(10)
	durable := NewMockStore()
	tier := NewTiered(cache, durable, testLogger())

	s := testSession("Ada")
	tier.Save(context.Background(), s)
	require.NoError(t, tier.Delete(context.Background(), s.ID))

	assert.Nil(t, tier.Load(context.Background(), s.ID))
	assert.False(t, durable.Has(s.ID))
}
