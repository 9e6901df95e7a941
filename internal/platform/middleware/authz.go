// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/constants"
	"github.com/taibuivan/libris/internal/platform/ctxutil"
	"github.com/taibuivan/libris/internal/platform/respond"
)

// RequireAdmin blocks requests that do not present the configured admin token.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. Compare the token in constant time against the configured secret.
//  3. Mark the request context as admin for downstream handlers.
func RequireAdmin(token string) func(http.Handler) http.Handler {
	expected := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// ── 1. Format Validation ──────────────────────────────────────────
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(parts[1]), expected) != 1 {
				respond.Error(writer, request, apperr.Unauthorized("Invalid admin token"))
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAdmin(request.Context())
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
