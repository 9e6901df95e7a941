// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"cmp"
	"slices"
	"strings"
)

// # Sorting

// Criteria selects the key used by [SortBooks].
type Criteria string

const (
	SortRating       Criteria = "rating"
	SortTitle        Criteria = "title"
	SortAuthor       Criteria = "author"
	SortDate         Criteria = "date"
	SortRatingsCount Criteria = "ratings_count"
)

// SortKeys lists the supported sort keys.
var SortKeys = []string{string(SortRating), string(SortTitle), string(SortAuthor), string(SortDate), string(SortRatingsCount)}

// compareBy returns the ascending comparator for criteria.
func compareBy(criteria Criteria) (func(a, b *Book) int, bool) {
	switch criteria {
	case SortRating:
		return func(a, b *Book) int { return cmp.Compare(a.Rating(), b.Rating()) }, true
	case SortRatingsCount:
		return func(a, b *Book) int { return cmp.Compare(a.Ratings(), b.Ratings()) }, true
	case SortAuthor:
		return func(a, b *Book) int { return strings.Compare(a.FirstAuthor(), b.FirstAuthor()) }, true
	case SortDate:
		return func(a, b *Book) int { return cmp.Compare(yearOrZero(a), yearOrZero(b)) }, true
	case SortTitle:
		return func(a, b *Book) int { return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)) }, true
	}
	return nil, false
}

/*
SortBooks orders books by criteria.

Description: The ascending order is a stable sort, so books with equal keys
keep their input order. Descending is the exact reverse of the ascending
result, which puts equal-key books in reversed input order.

Parameters:
  - books: []*Book
  - criteria: Criteria
  - ascending: bool

Returns:
  - []*Book: A sorted copy, or books itself for an empty input or an
    unknown criteria
*/
func SortBooks(books []*Book, criteria Criteria, ascending bool) []*Book {
	compare, ok := compareBy(criteria)
	if !ok || len(books) == 0 {
		return books
	}

	sorted := slices.Clone(books)
	slices.SortStableFunc(sorted, compare)

	if !ascending {
		slices.Reverse(sorted)
	}
	return sorted
}

func yearOrZero(b *Book) int {
	year, _ := b.Year()
	return year
}
