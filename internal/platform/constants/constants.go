// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, engine defaults and cross-cutting keys
that are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: IP tracking intervals (rates and bursts are configured).
  - Engine Defaults: Depth, result and K defaults of the recommendation calls.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "libris-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Engine Defaults

const (
	// DefaultMaxDepth is the BFS depth used when the caller does not pass one.
	DefaultMaxDepth = 2

	// DefaultMaxResults caps graph recommendations when unspecified.
	DefaultMaxResults = 10

	// DetailRecommendations is the number of graph recommendations on a book page.
	DetailRecommendations = 8

	// DefaultRecommendations is the content-based list length when unspecified.
	DefaultRecommendations = 10

	// DefaultTopK is the ranking size when unspecified.
	DefaultTopK = 10

	// MaxTopK bounds the ranking size accepted over HTTP.
	MaxTopK = 500

	// SlowOperationThreshold marks engine calls that are logged at WARN.
	SlowOperationThreshold = 1 * time.Second

	// DefaultAutocomplete and MaxAutocomplete bound title suggestions.
	DefaultAutocomplete = 10
	MaxAutocomplete     = 50
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
)

// # JSON Field Identifiers

const (
	FieldError  = "error"
	FieldCode   = "code"
	FieldStatus = "status"
	FieldChecks = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixResult namespaces engine result lists.
	RedisPrefixResult = "engine:result:"

	// RedisKeyGeneration holds the counter bumped on every catalogue write.
	RedisKeyGeneration = "engine:generation"
)
