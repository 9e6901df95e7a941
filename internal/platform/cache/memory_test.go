// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/platform/cache"
)

type cachedRow struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

/*
TestMemoryStore_RoundTrip checks that a value written for the current
generation is returned as an independent copy.
*/
func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore(time.Minute)

	token, err := store.Token(ctx)
	require.NoError(t, err)

	rows := []cachedRow{{ID: "b1", Score: 0.9}}
	require.NoError(t, store.Set(ctx, token, "top:10", rows))

	var got []cachedRow
	hit, err := store.Get(ctx, token, "top:10", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, rows, got)

	got[0].Score = 0
	var again []cachedRow
	_, _ = store.Get(ctx, token, "top:10", &again)
	assert.Equal(t, 0.9, again[0].Score)
}

/*
TestMemoryStore_Invalidate verifies that invalidation hides old entries and
drops writes carrying a stale token.
*/
func TestMemoryStore_Invalidate(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore(time.Minute)

	stale, _ := store.Token(ctx)
	require.NoError(t, store.Set(ctx, stale, "k", 1))
	require.NoError(t, store.Invalidate(ctx))

	var value int
	hit, err := store.Get(ctx, stale, "k", &value)
	require.NoError(t, err)
	assert.False(t, hit)

	// A build that started before the write must not publish
	require.NoError(t, store.Set(ctx, stale, "k", 2))
	assert.Equal(t, 0, store.Len())

	current, _ := store.Token(ctx)
	assert.NotEqual(t, stale, current)
	hit, _ = store.Get(ctx, current, "k", &value)
	assert.False(t, hit)
}

/*
TestMemoryStore_Expiry treats entries past their TTL as misses.
*/
func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := cache.NewMemoryStore(time.Minute).WithClock(func() time.Time { return now })

	token, _ := store.Token(ctx)
	require.NoError(t, store.Set(ctx, token, "k", "v"))

	var value string
	hit, _ := store.Get(ctx, token, "k", &value)
	assert.True(t, hit)

	now = now.Add(2 * time.Minute)
	hit, _ = store.Get(ctx, token, "k", &value)
	assert.False(t, hit)
	assert.Equal(t, 0, store.Len())
}
