// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package seed_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/internal/seed"
	"github.com/taibuivan/libris/pkg/pointer"
)

const export = `Id,Title,description,authors,image,publisher,publishedDate,categories,ratingsCount,User_id,review/score
0826414346,Dr. Seuss: American Icon,"A look at the man, and his work",['Philip Nel'],http://img/1,A&C Black,2005-01-01,['Biography & Autobiography'],3.0,A30TK6U7DNS82R,4.0
0826414346,Dr. Seuss: American Icon,"A look at the man, and his work",['Philip Nel'],http://img/1,A&C Black,2005-01-01,['Biography & Autobiography'],3.0,A3UH4UZ4RSVO82,5.0
0829814000,Wonderful Worship in Smaller Churches,,"['David R. Ray', 'Sam Ray']",,,2000,['Religion'],,,
,Orphan row,,,,,,,,,
0595344550,Whispers of the Wicked Saints,,['Veronica Haddon'],,iUniverse,2005-02,['Fiction'],null,AHD101501WCN1,12
`

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestRead_ParsesRows dedupes books and cleans list literals.
*/
func TestRead_ParsesRows(t *testing.T) {
	var batches []seed.Batch
	stats, err := seed.Read(strings.NewReader(export), seed.Options{}, func(batch seed.Batch) error {
		batches = append(batches, batch)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, seed.Stats{Rows: 5, Books: 3, Reviews: 3, Skipped: 2}, stats)
	require.Len(t, batches, 1)

	books := batches[0].Books
	require.Len(t, books, 3)
	assert.Equal(t, "Philip Nel", books[0].Authors)
	assert.Equal(t, "Biography & Autobiography", books[0].Categories)
	assert.Equal(t, "A look at the man, and his work", pointer.Val(books[0].Description))
	assert.Equal(t, 3.0, pointer.Val(books[0].RatingsCount))

	assert.Equal(t, "David R. Ray, Sam Ray", books[1].Authors)
	assert.Nil(t, books[1].Description)
	assert.Nil(t, books[1].RatingsCount)
	assert.Nil(t, books[2].RatingsCount)

	reviews := batches[0].Reviews
	require.Len(t, reviews, 3)
	assert.Equal(t, "A30TK6U7DNS82R", pointer.Val(reviews[0].UserID))
	assert.Equal(t, 5.0, pointer.Val(reviews[1].Score))
	assert.Nil(t, reviews[2].UserID)
	assert.Nil(t, reviews[2].Score)
}

/*
TestRead_Batches emits once both thresholds are met.
*/
func TestRead_Batches(t *testing.T) {
	var sizes [][2]int
	_, err := seed.Read(strings.NewReader(export), seed.Options{BookBatch: 1, ReviewBatch: 1}, func(batch seed.Batch) error {
		sizes = append(sizes, [2]int{len(batch.Books), len(batch.Reviews)})
		return nil
	})
	require.NoError(t, err)

	// The second review of the first book waits for the next new book
	assert.Equal(t, [][2]int{{1, 1}, {1, 2}, {1, 0}}, sizes)
}

/*
TestRead_InvalidRatingsCount skips rows whose ratings count cannot be scored.
*/
func TestRead_InvalidRatingsCount(t *testing.T) {
	const corrupt = `Id,Title,ratingsCount,User_id,review/score
b1,Dune,inf,u1,4.0
b2,Hyperion,-2.9,u2,5.0
b1,Dune,12,u3,3.0
b3,Solaris,Infinity,,
`
	var books []*book.Book
	var reviews []*book.Review
	stats, err := seed.Read(strings.NewReader(corrupt), seed.Options{}, func(batch seed.Batch) error {
		books = append(books, batch.Books...)
		reviews = append(reviews, batch.Reviews...)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, seed.Stats{Rows: 4, Books: 1, Reviews: 1, Skipped: 3}, stats)
	require.Len(t, books, 1)
	assert.Equal(t, "b1", books[0].ID)
	assert.Equal(t, 12.0, pointer.Val(books[0].RatingsCount))
	require.Len(t, reviews, 1)
	assert.Equal(t, "u3", pointer.Val(reviews[0].UserID))
}

/*
TestRead_Errors reports malformed input.
*/
func TestRead_Errors(t *testing.T) {
	noop := func(seed.Batch) error { return nil }

	_, err := seed.Read(strings.NewReader("Title\nDune\n"), seed.Options{}, noop)
	assert.ErrorContains(t, err, "missing column Id")

	_, err = seed.Read(strings.NewReader("Id,review/score\nb1,great\n"), seed.Options{}, noop)
	assert.ErrorContains(t, err, "line 2")

	boom := errors.New("boom")
	_, err = seed.Read(strings.NewReader(export), seed.Options{}, func(seed.Batch) error { return boom })
	assert.ErrorIs(t, err, boom)
}

/*
TestLoad_IntoCatalog imports the export through the catalogue service.
*/
func TestLoad_IntoCatalog(t *testing.T) {
	ctx := context.Background()
	repo := book.NewMemoryRepository()
	service := book.NewService(repo, discard())

	result, err := seed.Load(ctx, strings.NewReader(export), service, seed.Options{BookBatch: 1, ReviewBatch: 1}, discard())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, book.ImportResult{Books: 3, Reviews: 3}, result.Inserted)

	seuss, err := repo.FindByID(ctx, "0826414346")
	require.NoError(t, err)
	assert.Equal(t, 4.5, pointer.Val(seuss.AverageRating))
	assert.Equal(t, 2, seuss.ReviewCount)

	// A second run inserts no duplicate books
	result, err = seed.Load(ctx, strings.NewReader(export), service, seed.Options{}, discard())
	require.NoError(t, err)
	assert.Zero(t, result.Inserted.Books)
}
