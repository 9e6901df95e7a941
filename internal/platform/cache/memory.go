// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// memoryEntry is a single encoded value with its expiry.
type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is a thread-safe in-process [Store].
//
// Values are stored JSON-encoded so callers never share mutable state with
// the cache: every Get hands back a fresh copy.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	generation int64
	ttl        time.Duration
	now        func() time.Time
}

// NewMemoryStore creates a [MemoryStore] whose entries live for ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used by tests to move past the TTL.
func (store *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.now = now
	return store
}

// Token implements [Store].
func (store *MemoryStore) Token(_ context.Context) (Token, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return tokenOf(store.generation), nil
}

// Get implements [Store].
func (store *MemoryStore) Get(_ context.Context, token Token, key string, dest any) (bool, error) {
	store.mu.RLock()
	current := tokenOf(store.generation)
	entry, found := store.entries[key]
	now := store.now()
	store.mu.RUnlock()

	if token != current || !found {
		return false, nil
	}

	// Expired entries count as misses and are dropped lazily
	if now.After(entry.expiresAt) {
		store.mu.Lock()
		delete(store.entries, key)
		store.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, err
	}

	return true, nil
}

// Set implements [Store]. Writes for a stale token are discarded.
func (store *MemoryStore) Set(_ context.Context, token Token, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if token != tokenOf(store.generation) {
		return nil
	}

	store.entries[key] = memoryEntry{data: data, expiresAt: store.now().Add(store.ttl)}
	return nil
}

// Invalidate implements [Store].
func (store *MemoryStore) Invalidate(_ context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.generation++
	store.entries = make(map[string]memoryEntry)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (store *MemoryStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.entries)
}
