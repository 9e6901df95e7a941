// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/taibuivan/libris/internal/platform/apperr"
)

// MemoryRepository is an in-process [Repository] with the same semantics as
// [PostgresRepository]. It backs the tests and the seed command's dry runs.
//
// Records are copied on the way in and on the way out, so callers never hold
// a pointer into the store.
type MemoryRepository struct {
	mu      sync.RWMutex
	books   map[string]Book
	stats   map[string]reviewStats
	reviews []Review
	nextID  int64
}

// reviewStats accumulates the derived values of one book.
type reviewStats struct {
	count  int
	scored int
	sum    float64
}

// NewMemoryRepository creates an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		books: make(map[string]Book),
		stats: make(map[string]reviewStats),
	}
}

// # Reads

// FindByID implements [Repository].
func (repository *MemoryRepository) FindByID(_ context.Context, id string) (*Book, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	b, ok := repository.books[id]
	if !ok {
		return nil, apperr.NotFound(resourceBook)
	}
	return repository.hydrate(b), nil
}

// Filter implements [Repository].
func (repository *MemoryRepository) Filter(_ context.Context, condition Condition) ([]*Book, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	matched, err := repository.match(condition)
	if err != nil {
		return nil, err
	}

	// Paging
	if condition.Limit > 0 {
		start := min(max(condition.Offset, 0), len(matched))
		end := min(start+condition.Limit, len(matched))
		matched = matched[start:end]
	}

	books := make([]*Book, 0, len(matched))
	for _, b := range matched {
		books = append(books, repository.hydrate(b))
	}
	return books, nil
}

// FetchByIDs implements [Repository].
func (repository *MemoryRepository) FetchByIDs(_ context.Context, ids []string) ([]*Book, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	books := make([]*Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := repository.books[id]; ok {
			books = append(books, repository.hydrate(b))
		}
	}
	return books, nil
}

// Count implements [Repository].
func (repository *MemoryRepository) Count(_ context.Context, condition Condition) (int, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	matched, err := repository.match(condition)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// ReviewsByUser implements [Repository].
func (repository *MemoryRepository) ReviewsByUser(_ context.Context, userID string) ([]*Review, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	var reviews []*Review
	for _, r := range repository.reviews {
		if r.UserID == nil || *r.UserID != userID {
			continue
		}
		joined := r
		joined.Book = repository.hydrate(repository.books[r.BookID])
		reviews = append(reviews, &joined)
	}
	return reviews, nil
}

// # Writes

// CreateBooks implements [Repository].
func (repository *MemoryRepository) CreateBooks(_ context.Context, books []*Book) (int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	inserted := 0
	for _, b := range books {
		if _, exists := repository.books[b.ID]; exists {
			continue
		}
		stored := *b
		stored.AverageRating, stored.ReviewCount = nil, 0
		repository.books[b.ID] = stored
		inserted++
	}
	return inserted, nil
}

// CreateReviews implements [Repository].
func (repository *MemoryRepository) CreateReviews(_ context.Context, reviews []*Review) (int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	// The batch is all-or-nothing
	for _, r := range reviews {
		if _, ok := repository.books[r.BookID]; !ok {
			return 0, apperr.NotFound(resourceBook)
		}
	}

	for _, r := range reviews {
		repository.insertReview(r)
	}
	return len(reviews), nil
}

// CreateReview implements [Repository].
func (repository *MemoryRepository) CreateReview(_ context.Context, r *Review) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.books[r.BookID]; !ok {
		return apperr.NotFound(resourceBook)
	}
	r.ID = repository.insertReview(r)
	return nil
}

// DeleteBook implements [Repository].
func (repository *MemoryRepository) DeleteBook(_ context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.books[id]; !ok {
		return apperr.NotFound(resourceBook)
	}

	delete(repository.books, id)
	delete(repository.stats, id)
	repository.reviews = slices.DeleteFunc(repository.reviews, func(r Review) bool {
		return r.BookID == id
	})
	return nil
}

// # Internals

// insertReview appends a copy of r and returns its new ID. Callers hold mu.
func (repository *MemoryRepository) insertReview(r *Review) int64 {
	repository.nextID++
	stored := *r
	stored.ID = repository.nextID
	stored.Book = nil
	repository.reviews = append(repository.reviews, stored)

	stats := repository.stats[stored.BookID]
	stats.count++
	if stored.Score != nil {
		stats.sum += *stored.Score
		stats.scored++
	}
	repository.stats[stored.BookID] = stats

	return stored.ID
}

// hydrate copies b and attaches its review statistics. Callers hold mu.
func (repository *MemoryRepository) hydrate(b Book) *Book {
	stats := repository.stats[b.ID]

	b.ReviewCount = stats.count
	b.AverageRating = nil
	if stats.scored > 0 {
		average := stats.sum / float64(stats.scored)
		b.AverageRating = &average
	}
	return &b
}

// match returns the stored books satisfying condition, ordered by id.
// Callers hold mu.
func (repository *MemoryRepository) match(condition Condition) ([]Book, error) {
	predicate, err := predicateOf(condition)
	if err != nil {
		return nil, err
	}

	matched := make([]Book, 0, len(repository.books))
	for _, b := range repository.books {
		if predicate(&b) {
			matched = append(matched, b)
		}
	}

	slices.SortFunc(matched, func(a, b Book) int {
		return strings.Compare(a.ID, b.ID)
	})
	return matched, nil
}

// predicateOf compiles condition into an in-memory test.
func predicateOf(condition Condition) (func(*Book) bool, error) {
	if condition.IsZero() {
		return func(*Book) bool { return true }, nil
	}

	var values func(*Book) []string
	switch condition.Field {
	case FieldID:
		values = func(b *Book) []string { return []string{b.ID} }
	case FieldTitle:
		values = func(b *Book) []string { return []string{b.Title} }
	case FieldAuthors:
		values = func(b *Book) []string { return []string{b.Authors} }
	case FieldCategories:
		values = func(b *Book) []string { return []string{b.Categories} }
	case FieldPublisher:
		values = func(b *Book) []string { return []string{b.Publisher} }
	case FieldText:
		values = func(b *Book) []string { return []string{b.Title, b.Authors} }
	default:
		return nil, unsupported(condition)
	}

	var test func(string) bool
	needle := strings.ToLower(condition.Value)

	switch condition.Op {
	case OpEq:
		test = func(v string) bool { return v == condition.Value }
	case OpContains:
		test = func(v string) bool { return strings.Contains(strings.ToLower(v), needle) }
	case OpPrefix:
		test = func(v string) bool { return strings.HasPrefix(strings.ToLower(v), needle) }
	case OpOverlaps:
		wanted := make(map[string]struct{}, len(condition.Values))
		for _, v := range condition.Values {
			wanted[v] = struct{}{}
		}
		test = func(v string) bool {
			for _, token := range strings.Split(v, ",") {
				if _, ok := wanted[strings.TrimSpace(token)]; ok {
					return true
				}
			}
			return false
		}
	default:
		return nil, unsupported(condition)
	}

	return func(b *Book) bool {
		return slices.ContainsFunc(values(b), test)
	}, nil
}
