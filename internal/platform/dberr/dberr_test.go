// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/dberr"
)

/*
TestWrap classifies the driver errors the repositories can observe.
*/
func TestWrap(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "noop"))

	notFound := dberr.WrapResource(fmt.Errorf("scan: %w", pgx.ErrNoRows), "Book", "find_book")
	assert.True(t, apperr.IsNotFound(notFound))
	assert.Equal(t, "Book not found", notFound.Error())

	dangling := dberr.WrapResource(&pgconn.PgError{Code: "23503"}, "Book", "insert_review")
	assert.True(t, apperr.IsNotFound(dangling))

	cause := errors.New("connection refused")
	internal := dberr.Wrap(cause, "count_books")
	ae := apperr.As(internal)
	if assert.NotNil(t, ae) {
		assert.Equal(t, apperr.CodeInternal, ae.Code)
		assert.ErrorIs(t, internal, cause)
	}
}
