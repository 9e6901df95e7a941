// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/api"
	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/internal/core/recommend"
	"github.com/taibuivan/libris/internal/platform/cache"
	"github.com/taibuivan/libris/internal/platform/config"
)

const adminToken = "s3cret"

func newServer(t *testing.T, deps api.HealthDependencies) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		ServerPort:     "0",
		Environment:    "test",
		AdminToken:     adminToken,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		Engine: config.Engine{
			GraphTTL:       time.Minute,
			ResultTTL:      time.Minute,
			RatingWeight:   0.6,
			RecencyWeight:  0.2,
			CategoryWeight: 0.1,
			PriorRating:    3.5,
			PseudoCount:    3,
			MinYear:        1900,
		},
	}

	repo := book.NewMemoryRepository()
	engine := recommend.NewEngine(repo, cache.NewMemoryStore(cfg.Engine.ResultTTL), cfg.Engine, logger)
	books := book.NewService(repo, logger)
	books.OnWrite(engine)

	liveness, readiness := api.NewHealthHandlers(deps, logger)
	server := api.NewServer(ctx, cfg, logger, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Book:      book.NewHandler(books),
		Recommend: recommend.NewHandler(books, engine),
	})
	return server.Handler()
}

func call(handler http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestServer_Health reports a failing dependency as degraded.
*/
func TestServer_Health(t *testing.T) {
	handler := newServer(t, api.HealthDependencies{
		Database: func(context.Context) error { return nil },
		Cache:    func(context.Context) error { return errors.New("connection refused") },
	})

	recorder := call(handler, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))

	recorder = call(handler, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"degraded"`)
	assert.Contains(t, recorder.Body.String(), "connection refused")
}

/*
TestServer_AdminRequiresToken rejects writes without the bearer token.
*/
func TestServer_AdminRequiresToken(t *testing.T) {
	handler := newServer(t, api.HealthDependencies{})
	body := `{"books":[{"id":"b1","title":"Dune"}]}`

	assert.Equal(t, http.StatusUnauthorized, call(handler, http.MethodPost, "/api/v1/admin/books", body, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(handler, http.MethodPost, "/api/v1/admin/books", body, "wrong").Code)
	assert.Equal(t, http.StatusCreated, call(handler, http.MethodPost, "/api/v1/admin/books", body, adminToken).Code)
}

/*
TestServer_ImportThenRecommend sees imported books in the recommendations
of an already warmed engine.
*/
func TestServer_ImportThenRecommend(t *testing.T) {
	handler := newServer(t, api.HealthDependencies{})

	first := `{"books":[
		{"id":"b1","title":"Dune","authors":"Frank Herbert","categories":"Science Fiction"},
		{"id":"b2","title":"Hyperion","authors":"Dan Simmons","categories":"Science Fiction"}
	]}`
	require.Equal(t, http.StatusCreated, call(handler, http.MethodPost, "/api/v1/admin/books", first, adminToken).Code)

	recorder := call(handler, http.MethodGet, "/api/v1/books/b1/recommendations", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"id":"b2"`)
	assert.NotContains(t, recorder.Body.String(), `"id":"b3"`)

	second := `{"books":[{"id":"b3","title":"Dune Messiah","authors":"Frank Herbert","categories":"Fiction"}]}`
	require.Equal(t, http.StatusCreated, call(handler, http.MethodPost, "/api/v1/admin/books", second, adminToken).Code)

	recorder = call(handler, http.MethodGet, "/api/v1/books/b1/recommendations", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"id":"b3"`)

	recorder = call(handler, http.MethodGet, "/api/v1/books?q=dune", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"total":2`)

	assert.Equal(t, http.StatusOK, call(handler, http.MethodGet, "/api/v1/books/top?k=2", "", "").Code)
	assert.Equal(t, http.StatusOK, call(handler, http.MethodGet, "/api/v1/users/nobody/recommendations", "", "").Code)
}
