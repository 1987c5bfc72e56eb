// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

// Package config provides layered application configuration.
//
// Loading order (later layers override earlier ones):
//  1. Defaults: built-in sensible defaults for every setting
//  2. Config file: optional YAML file (config.yaml)
//  3. Environment variables: override any setting
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Matching MatchingConfig `koanf:"matching"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig holds DuckDB settings.
//
// Environment Variables:
//   - DUCKDB_PATH: database file path (default: /data/shoplink.duckdb)
//   - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
//   - DUCKDB_THREADS: DuckDB thread count, 0 = all CPUs (default: 0)
//   - SEED_DEMO_DATA: insert demo products and articles on startup
type DatabaseConfig struct {
	Path         string `koanf:"path"`
	MaxMemory    string `koanf:"max_memory"`
	Threads      int    `koanf:"threads"`
	SeedDemoData bool   `koanf:"seed_demo_data"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT, HTTP_HOST, HTTP_TIMEOUT
//   - CORS_ORIGINS: comma-separated allowed origins (default: *)
//   - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
type ServerConfig struct {
	Port              int           `koanf:"port"`
	Host              string        `koanf:"host"`
	Timeout           time.Duration `koanf:"timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// MatchingConfig holds selection engine defaults. Per-request query
// parameters override MaxProducts and MinRelevanceScore.
//
// Environment Variables:
//   - MATCH_MAX_PRODUCTS: default result cap (default: 10)
//   - MATCH_MIN_RELEVANCE: default relevance threshold (default: 20)
//   - MATCH_CANDIDATE_LIMIT: candidate pool cap (default: 100)
type MatchingConfig struct {
	MaxProducts       int     `koanf:"max_products"`
	MinRelevanceScore float64 `koanf:"min_relevance_score"`
	CandidateLimit    int     `koanf:"candidate_limit"`
}

// LoggingConfig holds log output settings.
//
// Environment Variables:
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file and line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database threads must not be negative, got %d", c.Database.Threads)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server timeout must be positive, got %s", c.Server.Timeout)
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			return fmt.Errorf("rate limit requests must be positive, got %d", c.Server.RateLimitReqs)
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("rate limit window must be positive, got %s", c.Server.RateLimitWindow)
		}
	}
	if c.Matching.MaxProducts < 1 {
		return fmt.Errorf("matching max_products must be positive, got %d", c.Matching.MaxProducts)
	}
	if c.Matching.MinRelevanceScore < 0 || c.Matching.MinRelevanceScore > 100 {
		return fmt.Errorf("matching min_relevance_score must be in [0, 100], got %f", c.Matching.MinRelevanceScore)
	}
	if c.Matching.CandidateLimit < 1 {
		return fmt.Errorf("matching candidate_limit must be positive, got %d", c.Matching.CandidateLimit)
	}
	return nil
}
