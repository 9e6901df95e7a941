// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "context"

// # Catalog Data Access

// Repository defines the data access contract for books and reviews.
//
// Every read derives AverageRating and ReviewCount from the current reviews.
type Repository interface {

	/*
		FindByID returns the book with the given id.

		Returns:
		  - *Book: The hydrated record
		  - error: apperr NotFound("Book") when missing
	*/
	FindByID(context context.Context, id string) (*Book, error)

	/*
		Filter returns the books matching condition, ordered by id.

		Parameters:
		  - context: context.Context
		  - condition: Condition (zero value selects everything)

		Returns:
		  - []*Book: Matching records, possibly empty
		  - error: Storage failures
	*/
	Filter(context context.Context, condition Condition) ([]*Book, error)

	/*
		FetchByIDs resolves ids to books.

		Description: The result follows the order of ids. Unknown ids are
		skipped without error.
	*/
	FetchByIDs(context context.Context, ids []string) ([]*Book, error)

	// Count returns the number of books matching condition, ignoring paging.
	Count(context context.Context, condition Condition) (int, error)

	// ReviewsByUser returns the user's reviews in creation order, each joined
	// with its book.
	ReviewsByUser(context context.Context, userID string) ([]*Review, error)

	// CreateBooks bulk-inserts books, skipping ids that already exist. It
	// returns the number of rows inserted.
	CreateBooks(context context.Context, books []*Book) (int, error)

	// CreateReviews bulk-inserts reviews. A review for an unknown book fails
	// the whole batch with NotFound("Book").
	CreateReviews(context context.Context, reviews []*Review) (int, error)

	// CreateReview inserts one review and assigns its ID.
	CreateReview(context context.Context, review *Review) error

	// DeleteBook removes a book together with its reviews.
	DeleteBook(context context.Context, id string) error
}
