// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package recommend implements the recommendation and ranking engine of the
catalog.

Three algorithms are offered over the current repository contents:

  - Graph: breadth-first expansion over a similarity graph of shared
    categories and authors, seeded by a book.
  - Content: a user's category interest vector scored against candidate
    books.
  - Ranking: a Bayesian-smoothed composite score with a bounded top-K
    selection.

Every call goes through one pipeline in [Engine]: validate, consult the
result cache, execute, log, publish to the cache. The similarity graph is
memoised in-process; result lists are kept in a [cache.Store] scoped by a
generation that [Engine.Invalidate] advances on every catalog write.
*/
package recommend

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/internal/platform/cache"
	"github.com/taibuivan/libris/internal/platform/config"
	"github.com/taibuivan/libris/internal/platform/constants"
	"github.com/taibuivan/libris/internal/platform/ctxutil"
	"github.com/taibuivan/libris/internal/platform/validate"
)

// Field names for validation
const (
	FieldSeedID     = "seed_id"
	FieldUserID     = "user_id"
	FieldMaxDepth   = "max_depth"
	FieldMaxResults = "max_results"
	FieldN          = "n"
	FieldK          = "k"
)

// # Engine

// Engine runs the recommendation algorithms against a [book.Repository].
//
// It is safe for concurrent use.
type Engine struct {
	repo     book.Repository
	results  cache.Store
	graph    *cache.Slot[*Graph]
	settings config.Engine

	// graphToken is the result generation the memoised graph belongs to.
	// Another replica's invalidation shows up here as a new token.
	graphMu    sync.Mutex
	graphToken cache.Token

	logger *slog.Logger
	now    func() time.Time
}

// NewEngine wires an engine. results may be shared between processes; the
// graph memo is always local.
func NewEngine(repo book.Repository, results cache.Store, settings config.Engine, logger *slog.Logger) *Engine {
	return &Engine{
		repo:     repo,
		results:  results,
		graph:    cache.NewSlot[*Graph](settings.GraphTTL),
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for the recency scale.
func (engine *Engine) WithClock(now func() time.Time) *Engine {
	engine.now = now
	return engine
}

/*
Recommendations returns books related to seedID in breadth-first order.

Parameters:
  - context: context.Context
  - seedID: string (Must exist)
  - maxDepth: int (Hops to expand, positive)
  - maxResults: int (Upper bound of the result, positive)

Returns:
  - []*book.Book: Related books, never including the seed
  - error: Validation errors, NotFound("Book") for an unknown seed
*/
func (engine *Engine) Recommendations(context stdctx.Context, seedID string, maxDepth, maxResults int) ([]*book.Book, error) {
	op := operation{
		name: "graph_recommendations",
		key:  fmt.Sprintf("graph:%s:%d:%d", seedID, maxDepth, maxResults),
		attrs: []slog.Attr{
			slog.String(FieldSeedID, seedID),
			slog.Int(FieldMaxDepth, maxDepth),
			slog.Int(FieldMaxResults, maxResults),
		},
	}

	// 1. Validate
	validator := &validate.Validator{}
	validator.Required(FieldSeedID, seedID)
	validator.Positive(FieldMaxDepth, maxDepth)
	validator.Positive(FieldMaxResults, maxResults)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// 2. Execute through the cache
	started := engine.now()
	ids, hit, err := cached(context, engine, op, func(context stdctx.Context, token cache.Token) ([]string, error) {
		if _, err := engine.repo.FindByID(context, seedID); err != nil {
			return nil, err
		}

		graph, err := engine.similarityGraph(context, token)
		if err != nil {
			return nil, err
		}
		return graph.Traverse(seedID, maxDepth, maxResults), nil
	})

	// 3. Resolve and log
	books, err := engine.resolve(context, ids, err)
	engine.observe(context, op, started, len(books), hit, err)
	return books, err
}

/*
ContentBased returns up to n books matching the category interests of
userID's review history.

Description: An empty list is returned for users without reviews, for
histories spanning a single category and for all-zero interest vectors.
Candidates are the books sharing a category with the history; books the user
already reviewed stay eligible.
*/
func (engine *Engine) ContentBased(context stdctx.Context, userID string, n int) ([]*book.Book, error) {
	op := operation{
		name:  "content_recommendations",
		key:   fmt.Sprintf("cbf:%s:%d", userID, n),
		attrs: []slog.Attr{slog.String(FieldUserID, userID), slog.Int(FieldN, n)},
	}

	// 1. Validate
	validator := &validate.Validator{}
	validator.Required(FieldUserID, userID)
	validator.Positive(FieldN, n)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// 2. Execute through the cache
	started := engine.now()
	ids, hit, err := cached(context, engine, op, func(context stdctx.Context, _ cache.Token) ([]string, error) {
		reviews, err := engine.repo.ReviewsByUser(context, userID)
		if err != nil {
			return nil, err
		}

		profile, ok := BuildProfile(reviews)
		if !ok {
			return []string{}, nil
		}

		candidates, err := engine.repo.Filter(context, book.Condition{
			Field:  book.FieldCategories,
			Op:     book.OpOverlaps,
			Values: profile.Categories,
		})
		if err != nil {
			return nil, err
		}
		return RankCandidates(profile, candidates, n), nil
	})

	// 3. Resolve and log
	books, err := engine.resolve(context, ids, err)
	engine.observe(context, op, started, len(books), hit, err)
	return books, err
}

/*
TopK ranks the whole catalog and returns the k best books.

Returns:
  - []TopBook: At most k rows, score descending; all books when fewer than k
  - error: Validation or repository errors
*/
func (engine *Engine) TopK(context stdctx.Context, k int) ([]TopBook, error) {
	op := operation{
		name:  "top_k",
		key:   fmt.Sprintf("top:%d", k),
		attrs: []slog.Attr{slog.Int(FieldK, k)},
	}

	validator := &validate.Validator{}
	if err := validator.Positive(FieldK, k).Err(); err != nil {
		return nil, err
	}

	started := engine.now()
	rows, hit, err := cached(context, engine, op, func(context stdctx.Context, _ cache.Token) ([]TopBook, error) {
		books, err := engine.repo.Filter(context, book.Condition{})
		if err != nil {
			return nil, err
		}
		return TopK(books, k, engine.scorer()), nil
	})

	engine.observe(context, op, started, len(rows), hit, err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Invalidate drops every derived structure. It implements
// [book.Invalidator].
func (engine *Engine) Invalidate(context stdctx.Context) error {
	engine.graph.Reset()
	if err := engine.results.Invalidate(context); err != nil {
		return fmt.Errorf("recommend: invalidate results: %w", err)
	}
	return nil
}

// # Pipeline

// operation describes one engine call for caching and logging.
type operation struct {
	name  string
	key   string
	attrs []slog.Attr
}

/*
cached returns the stored value of op or computes and publishes it.

Description: The generation token is read before executing, so a result
computed across a concurrent invalidation is published under the old
generation and never served. Cache failures are logged and bypassed; execute
then receives an empty token.

Returns:
  - T: The value
  - bool: Whether it came from the cache
  - error: Errors of execute only
*/
func cached[T any](context stdctx.Context, engine *Engine, op operation, execute func(stdctx.Context, cache.Token) (T, error)) (T, bool, error) {
	logger := engine.loggerFor(context)

	token, tokenErr := engine.results.Token(context)
	if tokenErr != nil {
		logger.Warn("cache_unavailable", slog.String("operation", op.name), slog.Any("error", tokenErr))
	}

	if tokenErr == nil {
		var value T
		hit, err := engine.results.Get(context, token, op.key, &value)
		if err != nil {
			logger.Warn("cache_read_failed", slog.String("operation", op.name), slog.Any("error", err))
		}
		if hit {
			return value, true, nil
		}
	}

	value, err := execute(context, token)
	if err != nil {
		return value, false, err
	}

	if tokenErr == nil {
		if err := engine.results.Set(context, token, op.key, value); err != nil {
			logger.Warn("cache_write_failed", slog.String("operation", op.name), slog.Any("error", err))
		}
	}

	return value, false, nil
}

// observe logs the outcome of an operation.
func (engine *Engine) observe(context stdctx.Context, op operation, started time.Time, count int, hit bool, err error) {
	logger := engine.loggerFor(context)
	elapsed := engine.now().Sub(started)

	attrs := append([]slog.Attr{
		slog.String("operation", op.name),
		slog.Int("result_count", count),
		slog.Int64("duration_ms", elapsed.Milliseconds()),
		slog.Bool("cache_hit", hit),
	}, op.attrs...)

	switch {
	case err != nil:
		logger.LogAttrs(context, slog.LevelError, "operation_failed", append(attrs, slog.Any("error", err))...)
	case elapsed > constants.SlowOperationThreshold:
		logger.LogAttrs(context, slog.LevelWarn, "slow_operation", attrs...)
	default:
		logger.LogAttrs(context, slog.LevelInfo, "operation_completed", attrs...)
	}
}

// loggerFor tags the engine logger with the request id, if any.
func (engine *Engine) loggerFor(context stdctx.Context) *slog.Logger {
	if requestID := ctxutil.GetRequestID(context); requestID != "" {
		return engine.logger.With(slog.String("request_id", requestID))
	}
	return engine.logger
}

// resolve turns result ids into books, preserving order.
func (engine *Engine) resolve(context stdctx.Context, ids []string, err error) ([]*book.Book, error) {
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*book.Book{}, nil
	}
	return engine.repo.FetchByIDs(context, ids)
}

// similarityGraph returns the memoised graph, building it on a miss. A token
// different from the one the graph was built under drops the memo first.
func (engine *Engine) similarityGraph(ctx stdctx.Context, token cache.Token) (*Graph, error) {
	if token != "" {
		engine.graphMu.Lock()
		if token != engine.graphToken {
			engine.graph.Reset()
			engine.graphToken = token
		}
		engine.graphMu.Unlock()
	}

	graph, _, err := engine.graph.Get(func() (*Graph, error) {
		// Shared by concurrent callers; one caller's cancellation must not
		// fail the others.
		books, err := engine.repo.Filter(stdctx.WithoutCancel(ctx), book.Condition{})
		if err != nil {
			return nil, err
		}

		started := engine.now()
		graph := BuildGraph(books)
		engine.loggerFor(ctx).Debug("similarity_graph_built",
			slog.Int("nodes", graph.Len()),
			slog.Int64("duration_ms", engine.now().Sub(started).Milliseconds()),
		)
		return graph, nil
	})
	return graph, err
}

// scorer builds the ranking scorer for the current year.
func (engine *Engine) scorer() Scorer {
	settings := engine.settings
	return Scorer{
		Weights: Weights{
			Rating:     settings.RatingWeight,
			Recency:    settings.RecencyWeight,
			Category:   settings.CategoryWeight,
			Popularity: settings.PopularityWeight,
		},
		Prior:       settings.PriorRating,
		PseudoCount: settings.PseudoCount,
		MinYear:     settings.MinYear,
		CurrentYear: engine.now().Year(),
	}
}
