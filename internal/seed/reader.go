// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package seed bulk-loads the catalogue from the merged books and ratings export.

Every CSV row carries one review together with the full record of the reviewed
book:

	Id,Title,description,authors,image,publisher,publishedDate,categories,ratingsCount,User_id,review/score

Books are de-duplicated by Id across the whole file; reviews are kept as they
come. Rows are grouped into batches so a large export never sits in memory.
*/
package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/pkg/query"
)

// Column names of the export.
const (
	ColumnID            = "Id"
	ColumnTitle         = "Title"
	ColumnDescription   = "description"
	ColumnAuthors       = "authors"
	ColumnImage         = "image"
	ColumnPublisher     = "publisher"
	ColumnPublishedDate = "publishedDate"
	ColumnCategories    = "categories"
	ColumnRatingsCount  = "ratingsCount"
	ColumnUserID        = "User_id"
	ColumnScore         = "review/score"
)

// Default batch sizes.
const (
	DefaultBookBatch   = 500
	DefaultReviewBatch = 1000
)

// Batch is one unit of work for the importer.
type Batch struct {
	Books   []*book.Book
	Reviews []*book.Review
}

// Stats summarises a read.
type Stats struct {
	Rows    int `json:"rows"`
	Books   int `json:"books"`
	Reviews int `json:"reviews"`
	Skipped int `json:"skipped"`
}

// Options tune the reader.
type Options struct {
	// A batch is emitted once both thresholds are reached.
	BookBatch   int
	ReviewBatch int
}

func (options Options) withDefaults() Options {
	if options.BookBatch <= 0 {
		options.BookBatch = DefaultBookBatch
	}
	if options.ReviewBatch <= 0 {
		options.ReviewBatch = DefaultReviewBatch
	}
	return options
}

/*
Read parses the export and hands it to emit batch by batch.

Description: Rows without an Id, and rows introducing a book whose
ratingsCount is infinite or negative, are skipped along with their review.
Review scores outside the 0 to 5 scale drop the review but keep the book. All
of these count as skipped. A malformed
number fails the read with its line number.

Returns:
  - Stats: Rows read, distinct books, reviews and skipped rows
  - error: CSV, header or emit errors
*/
func Read(source io.Reader, options Options, emit func(Batch) error) (Stats, error) {
	options = options.withDefaults()

	reader := csv.NewReader(source)
	reader.FieldsPerRecord = -1

	// 1. Header
	header, err := reader.Read()
	if err != nil {
		return Stats{}, fmt.Errorf("seed: read header: %w", err)
	}
	index := headerIndex(header)
	if _, ok := index[ColumnID]; !ok {
		return Stats{}, fmt.Errorf("seed: missing column %s", ColumnID)
	}

	// 2. Rows
	var stats Stats
	var batch Batch
	seen := make(map[string]struct{})

	flush := func() error {
		if len(batch.Books) == 0 && len(batch.Reviews) == 0 {
			return nil
		}
		if err := emit(batch); err != nil {
			return err
		}
		batch = Batch{}
		return nil
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("seed: %w", err)
		}
		stats.Rows++

		row := rowOf(record, index)
		line, _ := reader.FieldPos(0)

		id := row.get(ColumnID)
		if id == "" {
			stats.Skipped++
			continue
		}

		if _, ok := seen[id]; !ok {
			b, err := row.book(id)
			if err != nil {
				return stats, fmt.Errorf("seed: line %d: %w", line, err)
			}
			if b == nil {
				stats.Skipped++
				continue
			}
			seen[id] = struct{}{}
			batch.Books = append(batch.Books, b)
			stats.Books++
		}

		review, err := row.review(id)
		if err != nil {
			return stats, fmt.Errorf("seed: line %d: %w", line, err)
		}
		if review == nil {
			stats.Skipped++
		} else {
			batch.Reviews = append(batch.Reviews, review)
			stats.Reviews++
		}

		if len(batch.Books) >= options.BookBatch && len(batch.Reviews) >= options.ReviewBatch {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}

	return stats, flush()
}

// # Rows

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	return index
}

type row struct {
	record []string
	index  map[string]int
}

func rowOf(record []string, index map[string]int) row {
	return row{record: record, index: index}
}

// get returns the trimmed value of column, "" when absent.
func (r row) get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// float parses an optional number. Empty and "null" are absent.
func (r row) float(column string) (*float64, error) {
	raw := r.get(column)
	if raw == "" || strings.EqualFold(raw, "null") || strings.EqualFold(raw, "nan") {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("column %s: %q is not a number", column, raw)
	}
	return &value, nil
}

// book returns nil when ratingsCount is infinite or negative.
func (r row) book(id string) (*book.Book, error) {
	ratings, err := r.float(ColumnRatingsCount)
	if err != nil {
		return nil, err
	}
	if ratings != nil && !book.ValidRatingsCount(*ratings) {
		return nil, nil
	}

	b := &book.Book{
		ID:            id,
		Title:         r.get(ColumnTitle),
		Authors:       query.ListLiteral(r.get(ColumnAuthors)),
		Image:         r.get(ColumnImage),
		Publisher:     r.get(ColumnPublisher),
		PublishedDate: r.get(ColumnPublishedDate),
		Categories:    query.ListLiteral(r.get(ColumnCategories)),
		RatingsCount:  ratings,
	}
	if description := r.get(ColumnDescription); description != "" {
		b.Description = &description
	}
	return b, nil
}

// review returns nil when the score is off the review scale or the reviewer
// id would not pass catalogue validation.
func (r row) review(id string) (*book.Review, error) {
	score, err := r.float(ColumnScore)
	if err != nil {
		return nil, err
	}
	if score != nil && (*score < book.MinScore || *score > book.MaxScore) {
		return nil, nil
	}

	review := &book.Review{BookID: id, Score: score}
	if userID := r.get(ColumnUserID); userID != "" {
		if utf8.RuneCountInString(userID) > book.MaxUserIDLength {
			return nil, nil
		}
		review.UserID = &userID
	}
	return review, nil
}
