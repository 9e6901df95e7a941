// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/database/schema"
	"github.com/taibuivan/libris/internal/platform/dberr"
)

// # PostgreSQL Repository

// PostgresRepository implements [Repository] using pgx.
//
// Averages are computed per read with a lateral aggregate over the review
// table, so a new review is visible to the next query without any
// denormalised counter to maintain.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed catalog store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// resourceBook is the resource name used in not-found errors.
const resourceBook = "Book"

var (
	bookTable   = schema.CatalogBook
	reviewTable = schema.CatalogReview

	// bookColumns selects a book row aliased as b plus its review statistics.
	bookColumns = fmt.Sprintf(`b.%s, b.%s, b.%s, b.%s, b.%s, b.%s, b.%s, b.%s, b.%s, stats.average, stats.total`,
		bookTable.ID, bookTable.Title, bookTable.Authors, bookTable.Description, bookTable.Categories,
		bookTable.Publisher, bookTable.PublishedDate, bookTable.Image, bookTable.RatingsCount,
	)

	// statsJoin attaches the derived average and review count to b.
	statsJoin = fmt.Sprintf(`
		LEFT JOIN LATERAL (
			SELECT AVG(r.%s) AS average, COUNT(*)::int AS total
			FROM %s r
			WHERE r.%s = b.%s
		) stats ON TRUE`,
		reviewTable.Score, reviewTable.Table, reviewTable.BookID, bookTable.ID,
	)

	// byID orders with byte-wise collation to match the in-memory store.
	byID = fmt.Sprintf(` ORDER BY b.%s COLLATE "C"`, bookTable.ID)
)

// scanBook reads the columns listed in bookColumns.
func scanBook(row pgx.Row) (*Book, error) {
	b := &Book{}
	err := row.Scan(
		&b.ID, &b.Title, &b.Authors, &b.Description, &b.Categories,
		&b.Publisher, &b.PublishedDate, &b.Image, &b.RatingsCount,
		&b.AverageRating, &b.ReviewCount,
	)
	return b, err
}

// # Reads

// FindByID implements [Repository].
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s b %s WHERE b.%s = $1`, bookColumns, bookTable.Table, statsJoin, bookTable.ID)

	b, err := scanBook(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.WrapResource(err, resourceBook, "find_book")
	}
	return b, nil
}

/*
Filter implements [Repository].

Description: The condition is translated into a single WHERE predicate.
Case-insensitive matches use strpos/starts_with over lower() so user input
never needs LIKE escaping. Category overlap unnests the comma-separated
column and compares trimmed tokens.
*/
func (repository *PostgresRepository) Filter(context context.Context, condition Condition) ([]*Book, error) {
	where, args, err := buildWhere(condition)
	if err != nil {
		return nil, err
	}

	var queryBuilder strings.Builder
	fmt.Fprintf(&queryBuilder, `SELECT %s FROM %s b %s%s%s`, bookColumns, bookTable.Table, statsJoin, where, byID)

	// Paging
	if condition.Limit > 0 {
		fmt.Fprintf(&queryBuilder, " LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, condition.Limit, max(condition.Offset, 0))
	}

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, dberr.Wrap(err, "filter_books")
	}

	books, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Book, error) {
		return scanBook(row)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "scan_books")
	}

	return books, nil
}

// FetchByIDs implements [Repository].
func (repository *PostgresRepository) FetchByIDs(context context.Context, ids []string) ([]*Book, error) {
	if len(ids) == 0 {
		return []*Book{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s b %s WHERE b.%s = ANY($1)`, bookColumns, bookTable.Table, statsJoin, bookTable.ID)

	rows, err := repository.pool.Query(context, query, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "fetch_books")
	}

	found, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Book, error) {
		return scanBook(row)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "scan_books")
	}

	return orderByIDs(found, ids), nil
}

// Count implements [Repository].
func (repository *PostgresRepository) Count(context context.Context, condition Condition) (int, error) {
	where, args, err := buildWhere(condition)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s b%s`, bookTable.Table, where)

	var total int
	if err := repository.pool.QueryRow(context, query, args...).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_books")
	}
	return total, nil
}

// ReviewsByUser implements [Repository].
func (repository *PostgresRepository) ReviewsByUser(context context.Context, userID string) ([]*Review, error) {
	query := fmt.Sprintf(`
		SELECT rv.%s, rv.%s, rv.%s, rv.%s, %s
		FROM %s rv
		JOIN %s b ON b.%s = rv.%s
		%s
		WHERE rv.%s = $1
		ORDER BY rv.%s`,
		reviewTable.ID, reviewTable.BookID, reviewTable.UserID, reviewTable.Score, bookColumns,
		reviewTable.Table,
		bookTable.Table, bookTable.ID, reviewTable.BookID,
		statsJoin,
		reviewTable.UserID,
		reviewTable.ID,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_user_reviews")
	}

	reviews, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Review, error) {
		r := &Review{Book: &Book{}}
		b := r.Book
		err := row.Scan(
			&r.ID, &r.BookID, &r.UserID, &r.Score,
			&b.ID, &b.Title, &b.Authors, &b.Description, &b.Categories,
			&b.Publisher, &b.PublishedDate, &b.Image, &b.RatingsCount,
			&b.AverageRating, &b.ReviewCount,
		)
		return r, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, "scan_user_reviews")
	}

	return reviews, nil
}

// # Writes

/*
CreateBooks implements [Repository].

Description: Rows are streamed with COPY into a transaction-scoped staging
table and moved with INSERT ... ON CONFLICT DO NOTHING, since COPY itself
cannot skip existing keys.
*/
func (repository *PostgresRepository) CreateBooks(context context.Context, books []*Book) (int, error) {
	if len(books) == 0 {
		return 0, nil
	}

	tx, err := repository.pool.Begin(context)
	if err != nil {
		return 0, dberr.Wrap(err, "begin_book_import")
	}
	defer func() { _ = tx.Rollback(context) }()

	// 1. Stage
	staging := fmt.Sprintf(`CREATE TEMP TABLE book_import (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP`, bookTable.Table)
	if _, err := tx.Exec(context, staging); err != nil {
		return 0, dberr.Wrap(err, "stage_book_import")
	}

	columns := bookTable.Columns()
	_, err = tx.CopyFrom(context, pgx.Identifier{"book_import"}, columns, pgx.CopyFromSlice(len(books), func(i int) ([]any, error) {
		b := books[i]
		return []any{b.ID, b.Title, b.Authors, b.Description, b.Categories, b.Publisher, b.PublishedDate, b.Image, b.RatingsCount}, nil
	}))
	if err != nil {
		return 0, dberr.Wrap(err, "copy_books")
	}

	// 2. Merge
	list := strings.Join(columns, ", ")
	merge := fmt.Sprintf(`INSERT INTO %s (%s) SELECT %s FROM book_import ON CONFLICT (%s) DO NOTHING`, bookTable.Table, list, list, bookTable.ID)

	tag, err := tx.Exec(context, merge)
	if err != nil {
		return 0, dberr.Wrap(err, "merge_books")
	}

	if err := tx.Commit(context); err != nil {
		return 0, dberr.Wrap(err, "commit_book_import")
	}

	return int(tag.RowsAffected()), nil
}

// CreateReviews implements [Repository].
func (repository *PostgresRepository) CreateReviews(context context.Context, reviews []*Review) (int, error) {
	if len(reviews) == 0 {
		return 0, nil
	}

	copied, err := repository.pool.CopyFrom(context, pgx.Identifier(strings.Split(reviewTable.Table, ".")), reviewTable.Columns(), pgx.CopyFromSlice(len(reviews), func(i int) ([]any, error) {
		r := reviews[i]
		return []any{r.BookID, r.UserID, r.Score}, nil
	}))
	if err != nil {
		return 0, dberr.WrapResource(err, resourceBook, "copy_reviews")
	}

	return int(copied), nil
}

// CreateReview implements [Repository].
func (repository *PostgresRepository) CreateReview(context context.Context, r *Review) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3) RETURNING %s`,
		reviewTable.Table, reviewTable.BookID, reviewTable.UserID, reviewTable.Score, reviewTable.ID,
	)

	err := repository.pool.QueryRow(context, query, r.BookID, r.UserID, r.Score).Scan(&r.ID)
	return dberr.WrapResource(err, resourceBook, "create_review")
}

// DeleteBook implements [Repository]. Reviews go with the book through the
// ON DELETE CASCADE foreign key.
func (repository *PostgresRepository) DeleteBook(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, bookTable.Table, bookTable.ID)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_book")
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceBook)
	}
	return nil
}

// # Query Building

// columnOf maps a [Field] to its qualified column(s).
func columnOf(field Field) ([]string, bool) {
	switch field {
	case FieldID:
		return []string{"b." + bookTable.ID}, true
	case FieldTitle:
		return []string{"b." + bookTable.Title}, true
	case FieldAuthors:
		return []string{"b." + bookTable.Authors}, true
	case FieldCategories:
		return []string{"b." + bookTable.Categories}, true
	case FieldPublisher:
		return []string{"b." + bookTable.Publisher}, true
	case FieldText:
		return []string{"b." + bookTable.Title, "b." + bookTable.Authors}, true
	}
	return nil, false
}

/*
buildWhere renders condition as a WHERE clause with positional arguments.

Returns:
  - string: " WHERE ..." or "" for the zero condition
  - []any: Arguments for the placeholders
  - error: Internal error for unsupported fields or operators
*/
func buildWhere(condition Condition) (string, []any, error) {
	if condition.IsZero() {
		return "", nil, nil
	}

	columns, ok := columnOf(condition.Field)
	if !ok {
		return "", nil, unsupported(condition)
	}

	// Every alternative column shares placeholder $1
	var arg any = condition.Value
	predicates := make([]string, 0, len(columns))

	for _, column := range columns {
		switch condition.Op {
		case OpEq:
			predicates = append(predicates, column+" = $1")
		case OpContains:
			predicates = append(predicates, "strpos(lower("+column+"), lower($1)) > 0")
		case OpPrefix:
			predicates = append(predicates, "starts_with(lower("+column+"), lower($1))")
		case OpOverlaps:
			arg = condition.Values
			predicates = append(predicates, "EXISTS (SELECT 1 FROM unnest(string_to_array("+column+", ',')) AS token WHERE btrim(token) = ANY($1))")
		default:
			return "", nil, unsupported(condition)
		}
	}

	return " WHERE (" + strings.Join(predicates, " OR ") + ")", []any{arg}, nil
}

// unsupported reports a condition no store can evaluate.
func unsupported(condition Condition) error {
	return apperr.Internal(fmt.Errorf("unsupported condition: field=%q op=%q", condition.Field, condition.Op))
}

// orderByIDs arranges books in the order of ids, skipping unknown ids.
func orderByIDs(books []*Book, ids []string) []*Book {
	index := make(map[string]*Book, len(books))
	for _, b := range books {
		index[b.ID] = b
	}

	ordered := make([]*Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := index[id]; ok {
			ordered = append(ordered, b)
		}
	}
	return ordered
}
