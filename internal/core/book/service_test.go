// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/ctxutil"
	"github.com/taibuivan/libris/pkg/pagination"
	"github.com/taibuivan/libris/pkg/pointer"
)

// countingInvalidator records write notifications.
type countingInvalidator struct {
	calls int
	err   error
}

func (invalidator *countingInvalidator) Invalidate(context.Context) error {
	invalidator.calls++
	return invalidator.err
}

func newService(t *testing.T) (*book.Service, *countingInvalidator) {
	t.Helper()
	service := book.NewService(seedCatalog(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
	invalidator := &countingInvalidator{}
	service.OnWrite(invalidator)
	return service, invalidator
}

/*
TestService_Browse prefilters, pages and sorts the catalog.
*/
func TestService_Browse(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	firstPage := pagination.Params{Page: 1, Limit: 20}

	books, total, err := service.Browse(ctx, book.BrowseQuery{}, firstPage)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"b2", "b3", "b1"}, ids(books))

	books, total, err = service.Browse(ctx, book.BrowseQuery{Query: "go", Sort: book.SortRating, Order: book.OrderDesc}, firstPage)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"b1", "b3"}, ids(books))

	books, total, err = service.Browse(ctx, book.BrowseQuery{}, pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"b3"}, ids(books))
}

/*
TestService_BrowseValidation rejects unknown sort keys and orders.
*/
func TestService_BrowseValidation(t *testing.T) {
	service, _ := newService(t)

	_, _, err := service.Browse(context.Background(), book.BrowseQuery{Sort: "isbn", Order: "up"}, pagination.Params{Page: 1, Limit: 5})
	require.True(t, apperr.IsValidation(err))
	assert.Len(t, apperr.As(err).Details, 2)
}

/*
TestService_Autocomplete matches title prefixes within the limit.
*/
func TestService_Autocomplete(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	suggestions, err := service.Autocomplete(ctx, "Go", 10)
	require.NoError(t, err)
	assert.Equal(t, []book.Suggestion{{ID: "b3", Title: "Go in Action"}}, suggestions)

	suggestions, err = service.Autocomplete(ctx, "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, suggestions)

	_, err = service.Autocomplete(ctx, "Go", 51)
	assert.True(t, apperr.IsValidation(err))
}

/*
TestService_WritesInvalidate notifies hooks after each successful write
only.
*/
func TestService_WritesInvalidate(t *testing.T) {
	service, invalidator := newService(t)
	ctx := context.Background()

	result, err := service.ImportBooks(ctx,
		[]*book.Book{{ID: "b9", Title: "New"}},
		[]*book.Review{{BookID: "b9", UserID: pointer.To("carol"), Score: pointer.To(4.5)}},
	)
	require.NoError(t, err)
	assert.Equal(t, book.ImportResult{Books: 1, Reviews: 1}, result)
	assert.Equal(t, 1, invalidator.calls)

	review := &book.Review{Score: pointer.To(3.0)}
	require.NoError(t, service.AddReview(ctx, "b9", review))
	assert.Equal(t, "b9", review.BookID)
	assert.Equal(t, 2, invalidator.calls)

	require.NoError(t, service.DeleteBook(ctx, "b9"))
	assert.Equal(t, 3, invalidator.calls)

	// Rejected writes leave derived state alone
	err = service.AddReview(ctx, "b1", &book.Review{Score: pointer.To(7.0)})
	assert.True(t, apperr.IsValidation(err))

	err = service.AddReview(ctx, "b1", &book.Review{UserID: pointer.To(strings.Repeat("u", book.MaxUserIDLength+1))})
	assert.True(t, apperr.IsValidation(err))

	err = service.AddReview(ctx, "ghost", &book.Review{Score: pointer.To(1.0)})
	assert.True(t, apperr.IsNotFound(err))

	_, err = service.ImportBooks(ctx, []*book.Book{{ID: ""}}, nil)
	assert.True(t, apperr.IsValidation(err))

	for _, count := range []float64{math.Inf(1), math.NaN(), -2.9} {
		_, err = service.ImportBooks(ctx, []*book.Book{{ID: "b10", RatingsCount: pointer.To(count)}}, nil)
		assert.True(t, apperr.IsValidation(err), "%v", count)
	}

	assert.Equal(t, 3, invalidator.calls)
}

/*
TestService_InvalidationFailureIsNotFatal keeps the write successful.
*/
func TestService_InvalidationFailureIsNotFatal(t *testing.T) {
	service, invalidator := newService(t)
	invalidator.err = errors.New("redis down")

	assert.NoError(t, service.DeleteBook(context.Background(), "b3"))
	assert.Equal(t, 1, invalidator.calls)
}

/*
TestService_GetBook requires an id.
*/
func TestService_GetBook(t *testing.T) {
	service, _ := newService(t)

	_, err := service.GetBook(context.Background(), "")
	assert.True(t, apperr.IsValidation(err))

	b, err := service.GetBook(context.Background(), "b2")
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
}

/*
TestService_WriteActor logs admin writes apart from local imports.
*/
func TestService_WriteActor(t *testing.T) {
	var logs bytes.Buffer
	service := book.NewService(seedCatalog(t), slog.New(slog.NewJSONHandler(&logs, nil)))

	require.NoError(t, service.DeleteBook(ctxutil.WithAdmin(context.Background()), "b3"))
	assert.Contains(t, logs.String(), `"msg":"book_deleted","book_id":"b3","actor":"admin"`)

	logs.Reset()
	_, err := service.ImportBooks(context.Background(), []*book.Book{{ID: "b11", Title: "Seeded"}}, nil)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), `"actor":"system"`)
}
