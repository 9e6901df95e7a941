// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cache provides the explicit caches used by the recommendation engine.

Two shapes are offered:

  - Store: a keyed result cache (JSON values) with a TTL. Every read and write is
    scoped by a generation [Token]; [Store.Invalidate] moves the store to a new
    generation so that all earlier entries, and any write still in flight for an
    old generation, become unreachable at once.
  - Slot: an in-process single-value memo for structures that are expensive to
    build and not worth serialising (the similarity graph).

Implementations: [MemoryStore] for a single process and tests, [RedisStore] for
sharing results across API replicas.
*/
package cache

import (
	"context"
	"strconv"
)

// Token identifies a cache generation. It is opaque to callers.
type Token string

// tokenOf renders a numeric generation as a [Token].
func tokenOf(generation int64) Token {
	return Token(strconv.FormatInt(generation, 10))
}

// Store is a generation-scoped result cache.
//
// # Contract
//
//   - Get reports (false, nil) on a miss, including expired entries.
//   - Set with a token that is no longer current must not become visible.
//   - Invalidate is safe to call concurrently with Get and Set.
type Store interface {
	// Token returns the current generation.
	Token(ctx context.Context) (Token, error)

	// Get decodes the entry stored under key for the given generation into dest.
	Get(ctx context.Context, token Token, key string, dest any) (bool, error)

	// Set stores value under key for the given generation.
	Set(ctx context.Context, token Token, key string, value any) error

	// Invalidate starts a new generation.
	Invalidate(ctx context.Context) error
}
