// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

// Package api provides HTTP routing and handlers using the Chi router.
package api

import (
	"context"
	"time"

	"github.com/shoplink/shoplink/internal/config"
	"github.com/shoplink/shoplink/internal/matching"
)

// Version is the reported application version.
const Version = "1.0.0"

// Selector is the product selection surface the handlers consume. It is
// implemented by *matching.Engine.
type Selector interface {
	SelectForContent(ctx context.Context, content matching.ContentContext, opts matching.Options) ([]matching.Match, error)
	SelectForContentBySlug(ctx context.Context, slug string, opts matching.Options) ([]matching.Match, error)
	SelectForCategory(ctx context.Context, category string, opts matching.Options) ([]matching.Match, error)
}

// Pinger reports storage liveness for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	engine    Selector
	db        Pinger
	config    *config.Config
	startTime time.Time
}

// NewHandler creates a handler set over the given engine and store.
func NewHandler(engine Selector, db Pinger, cfg *config.Config) *Handler {
	return &Handler{
		engine:    engine,
		db:        db,
		config:    cfg,
		startTime: time.Now(),
	}
}
