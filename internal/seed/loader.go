// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package seed

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/taibuivan/libris/internal/core/book"
)

// Importer writes one batch of the catalogue. [book.Service] implements it.
type Importer interface {
	ImportBooks(context context.Context, books []*book.Book, reviews []*book.Review) (book.ImportResult, error)
}

// Result reports what a load read and what the importer inserted.
type Result struct {
	Read     Stats             `json:"read"`
	Inserted book.ImportResult `json:"inserted"`
	Batches  int               `json:"batches"`
}

/*
Load streams source into importer batch by batch.

Description: Batches are imported in file order so reviews always follow the
books they reference. A failing batch stops the load; earlier batches stay
committed.
*/
func Load(context context.Context, source io.Reader, importer Importer, options Options, logger *slog.Logger) (Result, error) {
	var result Result
	started := time.Now()

	stats, err := Read(source, options, func(batch Batch) error {
		if err := context.Err(); err != nil {
			return err
		}

		inserted, err := importer.ImportBooks(context, batch.Books, batch.Reviews)
		if err != nil {
			return err
		}

		result.Batches++
		result.Inserted.Books += inserted.Books
		result.Inserted.Reviews += inserted.Reviews

		logger.Debug("seed_batch_imported",
			slog.Int("batch", result.Batches),
			slog.Int("books", inserted.Books),
			slog.Int("reviews", inserted.Reviews),
		)
		return nil
	})
	result.Read = stats

	if err != nil {
		logger.Error("seed_failed", slog.Int("batches", result.Batches), slog.Any("error", err))
		return result, err
	}

	logger.Info("seed_completed",
		slog.Int("rows", stats.Rows),
		slog.Int("books_inserted", result.Inserted.Books),
		slog.Int("reviews_inserted", result.Inserted.Reviews),
		slog.Int("skipped", stats.Skipped),
		slog.Int64("duration_ms", time.Since(started).Milliseconds()),
	)
	return result, nil
}
