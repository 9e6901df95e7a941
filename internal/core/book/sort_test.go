// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/pkg/pointer"
)

func ids(books []*book.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.ID)
	}
	return out
}

/*
TestSortBooks_Title orders titles ignoring case.
*/
func TestSortBooks_Title(t *testing.T) {
	books := []*book.Book{
		{ID: "c", Title: "Book C"},
		{ID: "a", Title: "book A"},
		{ID: "b", Title: "Book B"},
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(book.SortBooks(books, book.SortTitle, true)))
	assert.Equal(t, []string{"c", "b", "a"}, ids(book.SortBooks(books, book.SortTitle, false)))

	// The input is left untouched
	assert.Equal(t, []string{"c", "a", "b"}, ids(books))
}

/*
TestSortBooks_Stability keeps input order among equal keys, and descending
is the exact reverse of ascending.
*/
func TestSortBooks_Stability(t *testing.T) {
	books := []*book.Book{
		{ID: "1", PublishedDate: "2001"},
		{ID: "2", PublishedDate: "1999"},
		{ID: "3", PublishedDate: "2001-05"},
		{ID: "4"},
		{ID: "5", PublishedDate: "1999-01-01"},
	}

	ascending := book.SortBooks(books, book.SortDate, true)
	assert.Equal(t, []string{"4", "2", "5", "1", "3"}, ids(ascending))

	descending := book.SortBooks(books, book.SortDate, false)
	reversed := slices.Clone(ascending)
	slices.Reverse(reversed)
	assert.Equal(t, ids(reversed), ids(descending))
}

/*
TestSortBooks_Keys covers the numeric and author criteria with absent values.
*/
func TestSortBooks_Keys(t *testing.T) {
	books := []*book.Book{
		{ID: "x", Authors: "zed, amy", AverageRating: pointer.To(4.0), RatingsCount: pointer.To(10.0)},
		{ID: "y", Authors: "", RatingsCount: nil},
		{ID: "z", Authors: "Bob", AverageRating: pointer.To(2.5), RatingsCount: pointer.To(3.0)},
	}

	tests := []struct {
		criteria book.Criteria
		want     []string
	}{
		{book.SortRating, []string{"y", "z", "x"}},
		{book.SortRatingsCount, []string{"y", "z", "x"}},
		{book.SortAuthor, []string{"y", "z", "x"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.criteria), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(book.SortBooks(books, tt.criteria, true)))
		})
	}
}

/*
TestSortBooks_Identity returns the input for unknown criteria and empty lists.
*/
func TestSortBooks_Identity(t *testing.T) {
	books := []*book.Book{{ID: "b"}, {ID: "a"}}

	assert.Equal(t, []string{"b", "a"}, ids(book.SortBooks(books, "popularity", true)))
	assert.Empty(t, book.SortBooks(nil, book.SortTitle, true))
}
