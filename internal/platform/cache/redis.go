// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/libris/internal/platform/constants"
)

// RedisStore implements [Store] on top of Redis so that every API replica
// shares the same result lists and the same invalidation generation.
//
// # Key Layout
//
//	engine:generation               -> INCR counter
//	engine:result:<generation>:<key> -> JSON value with TTL
//
// Invalidation only bumps the counter; entries of older generations are never
// read again and expire on their own TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed [Store].
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

/*
Token returns the current generation counter.

Returns:
  - Token: "0" when the counter was never bumped
  - error: Connectivity errors
*/
func (store *RedisStore) Token(context context.Context) (Token, error) {

	// Read the generation counter
	generation, err := store.client.Get(context, constants.RedisKeyGeneration).Int64()

	// A missing counter is the initial generation
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return tokenOf(0), nil
		}
		return "", fmt.Errorf("redis_cache_token_failed: %w", err)
	}

	return tokenOf(generation), nil
}

/*
Get decodes a cached value.

Returns:
  - bool: false on miss
  - error: Connectivity or decoding errors
*/
func (store *RedisStore) Get(context context.Context, token Token, key string, dest any) (bool, error) {

	// Read the raw payload
	data, err := store.client.Get(context, store.key(token, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis_cache_get_failed: %w", err)
	}

	// Decode into the caller's destination
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("redis_cache_decode_failed: %w", err)
	}

	return true, nil
}

/*
Set stores a value for the given generation.

Description: A write for a generation that is no longer current is harmless:
it lands in a namespace nobody reads and expires with the TTL.
*/
func (store *RedisStore) Set(context context.Context, token Token, key string, value any) error {

	// Encode the payload
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis_cache_encode_failed: %w", err)
	}

	// Store with TTL
	if err := store.client.Set(context, store.key(token, key), data, store.ttl).Err(); err != nil {
		return fmt.Errorf("redis_cache_set_failed: %w", err)
	}

	return nil
}

// Invalidate bumps the shared generation counter.
func (store *RedisStore) Invalidate(context context.Context) error {
	if err := store.client.Incr(context, constants.RedisKeyGeneration).Err(); err != nil {
		return fmt.Errorf("redis_cache_invalidate_failed: %w", err)
	}
	return nil
}

// key builds the namespaced Redis key for an entry.
func (store *RedisStore) key(token Token, key string) string {
	return constants.RedisPrefixResult + string(token) + ":" + key
}
