// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/libris/internal/platform/constants"
	requestutil "github.com/taibuivan/libris/internal/platform/request"
	"github.com/taibuivan/libris/internal/platform/respond"
	"github.com/taibuivan/libris/pkg/pagination"
)

// Handler exposes the catalog over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates a catalog [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public catalog routes on a /books router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.browse)
	router.Get("/autocomplete", handler.autocomplete)
}

// RegisterAdminRoutes mounts the write routes on an already protected
// /admin/books router.
func (handler *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/", handler.importBooks)
	router.Delete("/{id}", handler.deleteBook)
	router.Post("/{id}/reviews", handler.addReview)
}

// # Public

func (handler *Handler) browse(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()
	params := pagination.Parse(values)

	query := BrowseQuery{
		Query: values.Get("q"),
		Sort:  Criteria(values.Get("sort")),
		Order: values.Get("order"),
	}

	books, total, err := handler.service.Browse(request.Context(), query, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, books, pagination.NewMeta(params, total))
}

func (handler *Handler) autocomplete(writer http.ResponseWriter, request *http.Request) {
	limit, err := requestutil.IntQuery(request, "max", constants.DefaultAutocomplete)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	suggestions, err := handler.service.Autocomplete(request.Context(), request.URL.Query().Get("q"), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, suggestions)
}

// # Admin

type importRequest struct {
	Books   []*Book   `json:"books"`
	Reviews []*Review `json:"reviews"`
}

type reviewRequest struct {
	UserID *string  `json:"user_id"`
	Score  *float64 `json:"score"`
}

func (handler *Handler) importBooks(writer http.ResponseWriter, request *http.Request) {
	var input importRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.ImportBooks(request.Context(), input.Books, input.Reviews)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, result)
}

func (handler *Handler) addReview(writer http.ResponseWriter, request *http.Request) {
	var input reviewRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	review := &Review{UserID: input.UserID, Score: input.Score}
	if err := handler.service.AddReview(request.Context(), requestutil.Param(request, "id"), review); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, review)
}

func (handler *Handler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteBook(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
