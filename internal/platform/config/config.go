// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, engine) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Libris API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Pool sizing and per-statement limits
	Pool Pool `envPrefix:"DB_"`

	// MigrationPath overrides the embedded SQL migrations with a directory on disk.
	MigrationPath string `env:"MIGRATION_PATH"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// AdminToken guards the catalogue write endpoints.
	AdminToken string `env:"ADMIN_TOKEN,required"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`

	// Per-IP token bucket
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"100"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"150"`

	// Engine holds the recommendation and ranking settings.
	Engine Engine `envPrefix:"ENGINE_"`
}

// Pool sizes the PostgreSQL connection pool.
type Pool struct {
	MaxConns         int32         `env:"MAX_CONNS"         envDefault:"25"`
	MinConns         int32         `env:"MIN_CONNS"         envDefault:"5"`
	StatementTimeout time.Duration `env:"STATEMENT_TIMEOUT" envDefault:"30s"`
}

// Engine groups the tunables of the recommendation engine.
type Engine struct {
	// GraphTTL bounds how long a built similarity graph is reused.
	GraphTTL time.Duration `env:"GRAPH_TTL" envDefault:"5m"`

	// ResultTTL bounds how long computed result lists stay in the shared cache.
	ResultTTL time.Duration `env:"RESULT_TTL" envDefault:"10m"`

	// Composite score weights for the top-K ranker.
	RatingWeight     float64 `env:"RATING_WEIGHT"     envDefault:"0.6"`
	RecencyWeight    float64 `env:"RECENCY_WEIGHT"    envDefault:"0.2"`
	CategoryWeight   float64 `env:"CATEGORY_WEIGHT"   envDefault:"0.1"`
	PopularityWeight float64 `env:"POPULARITY_WEIGHT" envDefault:"0.1"`

	// Bayesian smoothing prior and pseudo-count.
	PriorRating float64 `env:"PRIOR_RATING" envDefault:"3.5"`
	PseudoCount float64 `env:"PSEUDO_COUNT" envDefault:"3"`

	// MinYear is the lower clip of the recency signal.
	MinYear int `env:"MIN_YEAR" envDefault:"1900"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
