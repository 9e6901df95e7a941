// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/internal/platform/cache"
	"github.com/taibuivan/libris/internal/platform/config"
	"github.com/taibuivan/libris/internal/platform/constants"
	"github.com/taibuivan/libris/internal/platform/migration"
	pgstore "github.com/taibuivan/libris/internal/platform/postgres"
	redisstore "github.com/taibuivan/libris/internal/platform/redis"
	"github.com/taibuivan/libris/internal/seed"
)

// seedPoolConns is enough for one writer; the import is sequential.
const seedPoolConns = 2

// flags of the seed command.
type flags struct {
	dbURL         string
	redisURL      string
	migrationPath string
	migrate       bool
	dryRun        bool
	verbose       bool
	bookBatch     int
	reviewBatch   int
}

func newRootCommand() *cobra.Command {
	opts := &flags{}

	cmd := &cobra.Command{
		Use:   "seed [file]",
		Short: "Load the books and ratings CSV export into the catalogue",
		Long: `Load the merged books and ratings CSV export into the catalogue.

Books are de-duplicated by Id and existing books are left untouched. Reviews
are appended. When --redis is given the API result caches are invalidated
after the load.

Examples:
  seed --db $DATABASE_URL --migrate merged_dataframe.csv
  seed --dry-run merged_dataframe.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       constants.AppVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.dbURL, "db", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.Flags().StringVar(&opts.redisURL, "redis", os.Getenv("REDIS_URL"), "Redis URL of the API result cache (optional)")
	cmd.Flags().StringVar(&opts.migrationPath, "migrations-dir", "", "Migration directory overriding the embedded migrations")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "Apply pending migrations before loading")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Parse and import into memory only")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log every batch")
	cmd.Flags().IntVar(&opts.bookBatch, "book-batch", seed.DefaultBookBatch, "Books per batch")
	cmd.Flags().IntVar(&opts.reviewBatch, "review-batch", seed.DefaultReviewBatch, "Reviews per batch")

	return cmd
}

func run(cmd *cobra.Command, opts *flags, path string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})).
		With(slog.String("app", "libris-seed"))

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer file.Close()

	// 1. Catalogue backend
	service, closeBackend, err := openCatalog(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	// 2. Load
	result, err := seed.Load(ctx, file, service, seed.Options{
		BookBatch:   opts.bookBatch,
		ReviewBatch: opts.reviewBatch,
	}, logger)
	if err != nil {
		return err
	}

	// 3. Report
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// openCatalog returns the catalogue service for the chosen backend and a
// function releasing its connections.
func openCatalog(ctx context.Context, opts *flags, logger *slog.Logger) (*book.Service, func(), error) {
	if opts.dryRun {
		return book.NewService(book.NewMemoryRepository(), logger), func() {}, nil
	}

	if opts.dbURL == "" {
		return nil, nil, errors.New("seed: --db or DATABASE_URL is required unless --dry-run is set")
	}

	if opts.migrate {
		if err := migration.RunUp(opts.dbURL, migration.Source(opts.migrationPath), logger); err != nil {
			return nil, nil, err
		}
	}

	pool, err := pgstore.NewPool(ctx, opts.dbURL, config.Pool{MaxConns: seedPoolConns, MinConns: 1}, logger)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){pool.Close}

	service := book.NewService(book.NewPostgresRepository(pool), logger)

	if opts.redisURL != "" {
		rdb, err := redisstore.NewClient(ctx, opts.redisURL, logger)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		service.OnWrite(cache.NewRedisStore(rdb, 0))
	}

	return service, func() {
		for _, closer := range closers {
			closer()
		}
	}, nil
}
