// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book defines the catalog records (books and their reviews) and the
operations that work directly on lists of them.

Core Responsibility:

  - Records: [Book] and [Review] with fixed, typed fields.
  - Storage: the [Repository] contract with PostgreSQL and in-memory versions.
  - Ordering: the stable multi-criteria sorter and the substring search index
    used by the browse page.

Multi-valued text columns (authors, categories) stay comma-separated on the
record and are parsed once through the accessor methods.
*/
package book

import (
	"math"
	"strings"

	"github.com/taibuivan/libris/pkg/pointer"
	"github.com/taibuivan/libris/pkg/query"
)

// # Domain Records

// Book is a catalog entry.
//
// AverageRating and ReviewCount are derived from the book's reviews by the
// repository on every read and are never written.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       string   `json:"authors"`
	Description   *string  `json:"description,omitempty"`
	Categories    string   `json:"categories"`
	Publisher     string   `json:"publisher"`
	PublishedDate string   `json:"published_date"`
	Image         string   `json:"image"`
	RatingsCount  *float64 `json:"ratings_count"`

	AverageRating *float64 `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
}

// Review is a single user rating of a book.
type Review struct {
	ID     int64    `json:"id"`
	BookID string   `json:"book_id"`
	UserID *string  `json:"user_id,omitempty"` // nil for anonymous reviews
	Score  *float64 `json:"score"`

	// Book is populated when reviews are fetched by user.
	Book *Book `json:"book,omitempty"`
}

// # Derived Values

// AuthorList returns the trimmed author names.
func (book *Book) AuthorList() []string {
	return query.StringSlice(book.Authors)
}

// CategoryList returns the trimmed category tokens.
func (book *Book) CategoryList() []string {
	return query.StringSlice(book.Categories)
}

// FirstAuthor returns the lower-cased text before the first comma of
// Authors, trimmed. A leading empty token yields "".
func (book *Book) FirstAuthor() string {
	first, _, _ := strings.Cut(book.Authors, ",")
	return strings.ToLower(strings.TrimSpace(first))
}

// Year parses the leading four-digit year of PublishedDate ("2005-03-01",
// "1999"). The boolean is false when the date is missing or malformed.
func (book *Book) Year() (int, bool) {
	date := strings.TrimSpace(book.PublishedDate)

	digits := 0
	for digits < len(date) && digits < 4 && date[digits] >= '0' && date[digits] <= '9' {
		digits++
	}
	if digits != 4 {
		return 0, false
	}

	year := 0
	for _, r := range date[:4] {
		year = year*10 + int(r-'0')
	}
	return year, true
}

// Rating is the average review score, 0 when the book has no reviews.
func (book *Book) Rating() float64 {
	rating := pointer.Val(book.AverageRating)
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return 0
	}
	return rating
}

// Ratings is the ratingsCount column, 0 when absent or not a valid count.
func (book *Book) Ratings() float64 {
	count := pointer.Val(book.RatingsCount)
	if !ValidRatingsCount(count) {
		return 0
	}
	return count
}

// ValidRatingsCount reports whether count is finite and not negative.
func ValidRatingsCount(count float64) bool {
	return !math.IsNaN(count) && !math.IsInf(count, 0) && count >= 0
}

// # Query Conditions

// Field names a filterable book column.
type Field string

const (
	FieldID         Field = "id"
	FieldTitle      Field = "title"
	FieldAuthors    Field = "authors"
	FieldCategories Field = "categories"
	FieldPublisher  Field = "publisher"

	// FieldText matches either the title or the authors.
	FieldText Field = "text"
)

// Op is the comparison applied by a [Condition].
type Op string

const (
	// OpEq is exact, case-sensitive equality.
	OpEq Op = "eq"

	// OpContains is a case-insensitive substring match.
	OpContains Op = "contains"

	// OpPrefix is a case-insensitive prefix match.
	OpPrefix Op = "prefix"

	// OpOverlaps matches when any comma-separated token of the field equals
	// one of Values.
	OpOverlaps Op = "overlaps"
)

// Condition selects books by one field. The zero Condition selects every book.
//
// Results are ordered by id; Limit and Offset page through them when Limit
// is positive.
type Condition struct {
	Field  Field
	Op     Op
	Value  string
	Values []string

	Limit  int
	Offset int
}

// IsZero reports whether the condition selects every book.
func (condition Condition) IsZero() bool {
	return condition.Field == ""
}

// Global field names for validation
const (
	FieldNameID      = "id"
	FieldNameBookID  = "book_id"
	FieldNameScore   = "score"
	FieldNameUserID  = "user_id"
	FieldNameRatings = "ratings_count"
	FieldNameTitle   = "title"
	FieldNameQuery   = "q"
	FieldNameSort    = "sort"
	FieldNameOrder   = "order"
)

// Bounds of the review scale.
const (
	MinScore = 0.0
	MaxScore = 5.0
)

// MaxUserIDLength bounds the opaque reviewer id.
const MaxUserIDLength = 128
