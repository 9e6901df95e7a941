// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package recommend

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/libris/internal/core/book"
	"github.com/taibuivan/libris/internal/platform/constants"
	"github.com/taibuivan/libris/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/libris/internal/platform/request"
	"github.com/taibuivan/libris/internal/platform/respond"
	"github.com/taibuivan/libris/internal/platform/validate"
)

// Handler exposes the engine over HTTP.
type Handler struct {
	books  *book.Service
	engine *Engine
}

// NewHandler creates a recommendation [Handler].
func NewHandler(books *book.Service, engine *Engine) *Handler {
	return &Handler{books: books, engine: engine}
}

// Detail is a book page: the book and the books related to it.
type Detail struct {
	Book            *book.Book   `json:"book"`
	Recommendations []*book.Book `json:"recommendations"`
}

// RegisterBookRoutes mounts the ranking and graph routes on a /books router.
func (handler *Handler) RegisterBookRoutes(router chi.Router) {
	router.Get("/top", handler.topK)
	router.Get("/{id}", handler.detail)
	router.Get("/{id}/recommendations", handler.graphRecommendations)
}

// RegisterUserRoutes mounts the personalised routes on a /users router.
func (handler *Handler) RegisterUserRoutes(router chi.Router) {
	router.Get("/{userID}/recommendations", handler.contentRecommendations)
}

func (handler *Handler) topK(writer http.ResponseWriter, request *http.Request) {
	k, err := requestutil.IntQuery(request, FieldK, constants.DefaultTopK)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.Range(FieldK, k, 1, constants.MaxTopK).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	rows, err := handler.engine.TopK(request.Context(), k)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, rows)
}

func (handler *Handler) detail(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	id := requestutil.Param(request, "id")

	found, err := handler.books.GetBook(ctx, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	related, err := handler.engine.Recommendations(ctx, id, constants.DefaultMaxDepth, constants.DetailRecommendations)
	if err != nil {
		// The page still renders without its sidebar
		ctxutil.GetLogger(ctx).Warn("detail_recommendations_failed", "book_id", id, "error", err)
		related = []*book.Book{}
	}

	respond.OK(writer, Detail{Book: found, Recommendations: related})
}

func (handler *Handler) graphRecommendations(writer http.ResponseWriter, request *http.Request) {
	maxDepth, err := requestutil.IntQuery(request, FieldMaxDepth, constants.DefaultMaxDepth)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	maxResults, err := requestutil.IntQuery(request, FieldMaxResults, constants.DefaultMaxResults)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	books, err := handler.engine.Recommendations(request.Context(), requestutil.Param(request, "id"), maxDepth, maxResults)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, books)
}

func (handler *Handler) contentRecommendations(writer http.ResponseWriter, request *http.Request) {
	n, err := requestutil.IntQuery(request, FieldN, constants.DefaultRecommendations)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	books, err := handler.engine.ContentBased(request.Context(), requestutil.Param(request, "userID"), n)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, books)
}
