// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/pkg/pointer"
)

// seedCatalog loads a small catalog with two reviewers.
func seedCatalog(t *testing.T) *book.MemoryRepository {
	t.Helper()
	ctx := context.Background()
	repo := book.NewMemoryRepository()

	_, err := repo.CreateBooks(ctx, []*book.Book{
		{ID: "b3", Title: "Go in Action", Authors: "William Kennedy", Categories: "Programming"},
		{ID: "b1", Title: "The Go Programming Language", Authors: "Alan Donovan, Brian Kernighan", Categories: "Programming, Computers"},
		{ID: "b2", Title: "Dune", Authors: "Frank Herbert", Categories: "Fiction, Science Fiction"},
	})
	require.NoError(t, err)

	_, err = repo.CreateReviews(ctx, []*book.Review{
		{BookID: "b1", UserID: pointer.To("alice"), Score: pointer.To(5.0)},
		{BookID: "b1", UserID: pointer.To("bob"), Score: pointer.To(3.0)},
		{BookID: "b2", UserID: pointer.To("alice"), Score: pointer.To(4.0)},
		{BookID: "b2", UserID: nil, Score: nil},
	})
	require.NoError(t, err)

	return repo
}

/*
TestMemoryRepository_DerivedStats averages scored reviews and counts all.
*/
func TestMemoryRepository_DerivedStats(t *testing.T) {
	repo := seedCatalog(t)
	ctx := context.Background()

	b1, err := repo.FindByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, pointer.Val(b1.AverageRating))
	assert.Equal(t, 2, b1.ReviewCount)

	b2, _ := repo.FindByID(ctx, "b2")
	assert.Equal(t, 4.0, pointer.Val(b2.AverageRating))
	assert.Equal(t, 2, b2.ReviewCount)

	b3, _ := repo.FindByID(ctx, "b3")
	assert.Nil(t, b3.AverageRating)
	assert.Zero(t, b3.ReviewCount)

	_, err = repo.FindByID(ctx, "missing")
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestMemoryRepository_Filter evaluates each operator and orders by id.
*/
func TestMemoryRepository_Filter(t *testing.T) {
	repo := seedCatalog(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		condition book.Condition
		want      []string
	}{
		{"all", book.Condition{}, []string{"b1", "b2", "b3"}},
		{"eq", book.Condition{Field: book.FieldTitle, Op: book.OpEq, Value: "Dune"}, []string{"b2"}},
		{"contains", book.Condition{Field: book.FieldTitle, Op: book.OpContains, Value: "GO "}, []string{"b1", "b3"}},
		{"prefix", book.Condition{Field: book.FieldTitle, Op: book.OpPrefix, Value: "go"}, []string{"b3"}},
		{"text", book.Condition{Field: book.FieldText, Op: book.OpContains, Value: "herbert"}, []string{"b2"}},
		{"overlaps", book.Condition{Field: book.FieldCategories, Op: book.OpOverlaps, Values: []string{"Computers", "Fiction"}}, []string{"b1", "b2"}},
		{"page", book.Condition{Limit: 1, Offset: 1}, []string{"b2"}},
		{"past end", book.Condition{Limit: 5, Offset: 10}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := repo.Filter(ctx, tt.condition)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(books))
		})
	}

	_, err := repo.Filter(ctx, book.Condition{Field: "isbn", Op: book.OpEq})
	assert.Error(t, err)
}

/*
TestMemoryRepository_FetchByIDs preserves request order and skips unknown ids.
*/
func TestMemoryRepository_FetchByIDs(t *testing.T) {
	repo := seedCatalog(t)

	books, err := repo.FetchByIDs(context.Background(), []string{"b3", "nope", "b1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b3", "b1"}, ids(books))
}

/*
TestMemoryRepository_Writes covers conflicts, dangling reviews and cascades.
*/
func TestMemoryRepository_Writes(t *testing.T) {
	repo := seedCatalog(t)
	ctx := context.Background()

	inserted, err := repo.CreateBooks(ctx, []*book.Book{{ID: "b1", Title: "Duplicate"}, {ID: "b4"}})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	b1, _ := repo.FindByID(ctx, "b1")
	assert.Equal(t, "The Go Programming Language", b1.Title)

	_, err = repo.CreateReviews(ctx, []*book.Review{{BookID: "b4"}, {BookID: "ghost"}})
	assert.True(t, apperr.IsNotFound(err))
	b4, _ := repo.FindByID(ctx, "b4")
	assert.Zero(t, b4.ReviewCount)

	review := &book.Review{BookID: "b4", Score: pointer.To(2.0)}
	require.NoError(t, repo.CreateReview(ctx, review))
	assert.Positive(t, review.ID)

	require.NoError(t, repo.DeleteBook(ctx, "b1"))
	assert.True(t, apperr.IsNotFound(repo.DeleteBook(ctx, "b1")))

	reviews, err := repo.ReviewsByUser(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, reviews)

	total, _ := repo.Count(ctx, book.Condition{})
	assert.Equal(t, 3, total)
}

/*
TestMemoryRepository_ReviewsByUser joins each review with its book.
*/
func TestMemoryRepository_ReviewsByUser(t *testing.T) {
	repo := seedCatalog(t)

	reviews, err := repo.ReviewsByUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	assert.Equal(t, "b1", reviews[0].Book.ID)
	assert.Equal(t, "b2", reviews[1].Book.ID)
	assert.Equal(t, 5.0, pointer.Val(reviews[0].Score))
	assert.Less(t, reviews[0].ID, reviews[1].ID)
}
