// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/libris/internal/platform/constants"
	"github.com/taibuivan/libris/internal/platform/ctxutil"
	"github.com/taibuivan/libris/internal/platform/validate"
	"github.com/taibuivan/libris/pkg/pagination"
	"github.com/taibuivan/libris/pkg/pointer"
)

// Invalidator drops state derived from the catalog. It is called after every
// successful write.
type Invalidator interface {
	Invalidate(context context.Context) error
}

// Order values accepted by [Service.Browse].
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// BrowseQuery holds the parameters of the browse page.
type BrowseQuery struct {
	Query string
	Sort  Criteria // defaults to title
	Order string   // asc or desc, defaults to asc
}

// Suggestion is a single autocomplete entry.
type Suggestion struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ImportResult reports how many rows a bulk import inserted.
type ImportResult struct {
	Books   int `json:"books"`
	Reviews int `json:"reviews"`
}

// # Service Layer

// Service orchestrates reads and writes of the catalog.
type Service struct {
	repo         Repository
	logger       *slog.Logger
	invalidators []Invalidator
}

// NewService constructs a new [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// OnWrite registers hooks to run after each successful write.
func (service *Service) OnWrite(invalidators ...Invalidator) {
	service.invalidators = append(service.invalidators, invalidators...)
}

// # Lookups

// GetBook returns a single book by id.
func (service *Service) GetBook(context context.Context, id string) (*Book, error) {
	validator := &validate.Validator{}
	if err := validator.Required(FieldNameID, id).Err(); err != nil {
		return nil, err
	}
	return service.repo.FindByID(context, id)
}

// Count returns the number of books in the catalog.
func (service *Service) Count(context context.Context) (int, error) {
	return service.repo.Count(context, Condition{})
}

/*
Autocomplete suggests titles starting with prefix.

Parameters:
  - context: context.Context
  - prefix: string (Blank yields no suggestions)
  - limit: int (1 to constants.MaxAutocomplete)

Returns:
  - []Suggestion: Matches ordered by book id
  - error: Validation or repository errors
*/
func (service *Service) Autocomplete(context context.Context, prefix string, limit int) ([]Suggestion, error) {
	validator := &validate.Validator{}
	if err := validator.Range("max", limit, 1, constants.MaxAutocomplete).Err(); err != nil {
		return nil, err
	}

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []Suggestion{}, nil
	}

	books, err := service.repo.Filter(context, Condition{Field: FieldTitle, Op: OpPrefix, Value: prefix, Limit: limit})
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(books))
	for _, b := range books {
		suggestions = append(suggestions, Suggestion{ID: b.ID, Title: b.Title})
	}
	return suggestions, nil
}

/*
Browse returns one page of the catalog, searched and sorted.

Description: The repository narrows the catalog to books whose title or
authors contain the query and returns the requested page. The page is then
passed through the substring index and the stable sorter, so the ordering
within a page follows the chosen criteria.

Parameters:
  - context: context.Context
  - query: BrowseQuery
  - page: pagination.Params

Returns:
  - []*Book: The sorted page
  - int: Total number of matching books
  - error: Validation or repository errors
*/
func (service *Service) Browse(context context.Context, query BrowseQuery, page pagination.Params) ([]*Book, int, error) {

	// 1. Defaults and validation
	if query.Sort == "" {
		query.Sort = SortTitle
	}
	if query.Order == "" {
		query.Order = OrderAsc
	}

	validator := &validate.Validator{}
	validator.OneOf(FieldNameSort, string(query.Sort), SortKeys...)
	validator.OneOf(FieldNameOrder, query.Order, OrderAsc, OrderDesc)
	if err := validator.Err(); err != nil {
		return nil, 0, err
	}

	// 2. Repository prefilter
	condition := Condition{}
	if q := strings.TrimSpace(query.Query); q != "" {
		condition = Condition{Field: FieldText, Op: OpContains, Value: q}
	}

	total, err := service.repo.Count(context, condition)
	if err != nil {
		return nil, 0, err
	}

	condition.Limit, condition.Offset = page.Limit, page.Offset()
	books, err := service.repo.Filter(context, condition)
	if err != nil {
		return nil, 0, err
	}

	// 3. Search and order the page
	found := SearchBooks(books, strings.TrimSpace(query.Query))
	return SortBooks(found, query.Sort, query.Order == OrderAsc), total, nil
}

// # Writes

/*
ImportBooks bulk-loads books and their reviews.

Description: Books whose id already exists are skipped. Reviews are inserted
after the books so they may reference books of the same batch.

Returns:
  - ImportResult: Inserted row counts
  - error: Validation errors (nothing is written) or repository errors
*/
func (service *Service) ImportBooks(context context.Context, books []*Book, reviews []*Review) (ImportResult, error) {
	validator := &validate.Validator{}
	for _, b := range books {
		validator.Required(FieldNameID, b.ID)
		if b.RatingsCount != nil {
			validator.Custom(FieldNameRatings, !ValidRatingsCount(*b.RatingsCount), "Must be a finite, non-negative number")
		}
	}
	for _, r := range reviews {
		validateReview(validator, r)
	}
	if err := validator.Err(); err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	var err error

	if result.Books, err = service.repo.CreateBooks(context, books); err != nil {
		return ImportResult{}, err
	}

	if result.Reviews, err = service.repo.CreateReviews(context, reviews); err != nil {
		service.invalidate(context)
		return result, err
	}

	service.logger.Info("catalog_imported",
		slog.String("actor", actorOf(context)),
		slog.Int("books", result.Books),
		slog.Int("reviews", result.Reviews),
	)

	service.invalidate(context)
	return result, nil
}

// AddReview records a review of bookID.
func (service *Service) AddReview(context context.Context, bookID string, review *Review) error {
	review.BookID = bookID

	validator := &validate.Validator{}
	validateReview(validator, review)
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.CreateReview(context, review); err != nil {
		return err
	}

	service.logger.Info("review_created",
		slog.String("book_id", bookID),
		slog.Int64("review_id", review.ID),
		slog.String("user_id", pointer.Fallback(review.UserID, "anonymous")),
	)

	service.invalidate(context)
	return nil
}

// DeleteBook removes a book and its reviews.
func (service *Service) DeleteBook(context context.Context, id string) error {
	if err := service.repo.DeleteBook(context, id); err != nil {
		return err
	}

	service.logger.Warn("book_deleted",
		slog.String("book_id", id),
		slog.String("actor", actorOf(context)),
	)

	service.invalidate(context)
	return nil
}

// # Helpers

// actorOf names who performed a write: the admin API or a local process
// such as the seed command.
func actorOf(context context.Context) string {
	if ctxutil.IsAdmin(context) {
		return "admin"
	}
	return "system"
}

// validateReview checks the book reference, the reviewer id and the score scale.
func validateReview(validator *validate.Validator, review *Review) {
	validator.Required(FieldNameBookID, review.BookID)
	if review.UserID != nil {
		validator.MaxLen(FieldNameUserID, *review.UserID, MaxUserIDLength)
	}
	if review.Score != nil {
		validator.FloatRange(FieldNameScore, pointer.Val(review.Score), MinScore, MaxScore)
	}
}

// invalidate runs the write hooks. Failures are logged; the write already
// succeeded and derived state expires with its TTL.
func (service *Service) invalidate(context context.Context) {
	for _, invalidator := range service.invalidators {
		if err := invalidator.Invalidate(context); err != nil {
			service.logger.Warn("invalidation_failed", slog.Any("error", err))
		}
	}
}
