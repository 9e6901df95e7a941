// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Slot memoises a single value for a bounded time.
//
// # Atomic Publication
//
// Builders run outside the lock and publish only on success. A value built
// for a generation that was reset in the meantime is returned to its caller
// but never stored, so a write to the catalogue can never be masked by a
// build that started before it. Concurrent misses for the same generation
// share one build.
type Slot[T any] struct {
	mu         sync.Mutex
	value      T
	filled     bool
	expiresAt  time.Time
	generation uint64
	ttl        time.Duration
	now        func() time.Time
	group      singleflight.Group
}

// NewSlot creates a [Slot] whose value lives for ttl.
func NewSlot[T any](ttl time.Duration) *Slot[T] {
	return &Slot[T]{ttl: ttl, now: time.Now}
}

// WithClock replaces the time source. Used by tests to move past the TTL.
func (slot *Slot[T]) WithClock(now func() time.Time) *Slot[T] {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	slot.now = now
	return slot
}

// Get returns the memoised value, building it with build on a miss.
//
// The boolean reports whether the value came from the slot.
func (slot *Slot[T]) Get(build func() (T, error)) (T, bool, error) {
	slot.mu.Lock()
	if slot.filled && !slot.now().After(slot.expiresAt) {
		value := slot.value
		slot.mu.Unlock()
		return value, true, nil
	}
	generation := slot.generation
	slot.mu.Unlock()

	result, err, _ := slot.group.Do(strconv.FormatUint(generation, 10), func() (any, error) {
		value, err := build()
		if err != nil {
			return value, err
		}

		slot.mu.Lock()
		if slot.generation == generation {
			slot.value = value
			slot.filled = true
			slot.expiresAt = slot.now().Add(slot.ttl)
		}
		slot.mu.Unlock()

		return value, nil
	})

	if err != nil {
		var zero T
		return zero, false, err
	}

	return result.(T), false, nil
}

// Reset drops the memoised value and starts a new generation.
func (slot *Slot[T]) Reset() {
	slot.mu.Lock()
	defer slot.mu.Unlock()

	var zero T
	slot.value = zero
	slot.filled = false
	slot.generation++
}
