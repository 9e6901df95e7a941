// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/respond"
	"github.com/taibuivan/libris/pkg/pagination"
)

func TestPaginated(t *testing.T) {
	recorder := httptest.NewRecorder()
	meta := pagination.NewMeta(pagination.Params{Page: 1, Limit: 2}, 3)
	respond.Paginated(recorder, []string{"a", "b"}, meta)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json; charset=utf-8", recorder.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":["a","b"],"meta":{"page":1,"limit":2,"total":3,"total_pages":2,"has_next":true}}`, recorder.Body.String())
}

func TestError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{
			name: "validation",
			err:  apperr.ValidationError("bad input", apperr.FieldError{Field: "k", Message: "too large"}),
			code: http.StatusBadRequest,
			body: `{"error":"bad input","code":"VALIDATION_ERROR","details":[{"field":"k","message":"too large"}]}`,
		},
		{
			name: "opaque",
			err:  errors.New("pq: relation does not exist"),
			code: http.StatusInternalServerError,
			body: `{"error":"An unexpected error occurred","code":"INTERNAL_ERROR"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respond.Error(recorder, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.code, recorder.Code)
			assert.JSONEq(t, tt.body, recorder.Body.String())
		})
	}
}

func TestJSON_Unencodable(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.JSON(recorder, http.StatusOK, map[string]any{"bad": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
