// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

// Package main is the entry point for the Shoplink matching server.
//
// Shoplink matches affiliate products to published content. The server
// analyzes article text, scores the product catalog for relevance, and
// serves ranked product selections over a REST API for embedding in
// blog pages and widgets.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Database: Initialize DuckDB holding the product catalog and articles
//  3. Matching Engine: Keyword extraction, relevance scoring and final ranking
//  4. HTTP Server: REST API with health checks and Prometheus metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// Common settings:
//   - DUCKDB_PATH: Database file location (default /data/shoplink.duckdb)
//   - HTTP_PORT: Listen port (default 8460)
//   - MATCH_MAX_PRODUCTS: Default result size per selection (default 10)
//   - MATCH_MIN_RELEVANCE: Default relevance threshold (default 20)
//   - SEED_DEMO_DATA=true: Populate an empty database with demo products
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Checkpoints and closes the database
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shoplink/shoplink/internal/api"
	"github.com/shoplink/shoplink/internal/config"
	"github.com/shoplink/shoplink/internal/database"
	"github.com/shoplink/shoplink/internal/logging"
	"github.com/shoplink/shoplink/internal/matching"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Int("max_products", cfg.Matching.MaxProducts).
		Float64("min_relevance", cfg.Matching.MinRelevanceScore).
		Msg("Starting Shoplink matching server")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// Seed demo data if enabled (for local development and screenshots)
	if cfg.Database.SeedDemoData {
		logging.Info().Msg("Demo data seeding enabled (SEED_DEMO_DATA=true)")
		if err := db.SeedDemoData(context.Background()); err != nil {
			logging.Error().Err(err).Msg("Failed to seed demo data")
			return
		}
	}

	engine, err := matching.NewEngine(&matching.Config{
		MaxProducts:       cfg.Matching.MaxProducts,
		MinRelevanceScore: cfg.Matching.MinRelevanceScore,
		CandidateLimit:    cfg.Matching.CandidateLimit,
	}, db, db, logging.Logger())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create matching engine")
		return
	}

	handler := api.NewHandler(engine, db, cfg)
	router := api.NewRouter(handler, &cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("HTTP server error")
			return
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logging.Info().Msg("Application stopped gracefully")
}
