// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shoplink/shoplink/internal/config"
	"github.com/shoplink/shoplink/internal/middleware"
)

// Router wires handlers and middleware into the HTTP routing tree.
type Router struct {
	handler *Handler
	chimw   *ChiMiddleware
}

// NewRouter creates a router over the given handler set, deriving the
// middleware configuration from the server config.
func NewRouter(handler *Handler, cfg *config.ServerConfig) *Router {
	mwConfig := DefaultChiMiddlewareConfig()
	if cfg != nil {
		if len(cfg.CORSOrigins) > 0 {
			mwConfig.CORSAllowedOrigins = cfg.CORSOrigins
		}
		if cfg.RateLimitReqs > 0 {
			mwConfig.RateLimitRequests = cfg.RateLimitReqs
		}
		if cfg.RateLimitWindow > 0 {
			mwConfig.RateLimitWindow = cfg.RateLimitWindow
		}
		mwConfig.RateLimitDisabled = cfg.RateLimitDisabled
	}

	return &Router{
		handler: handler,
		chimw:   NewChiMiddleware(mwConfig),
	}
}

// Setup configures all HTTP routes using the Chi router.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chimw.CORS())

	// Prometheus scrape endpoint.
	r.Handle("/metrics", promhttp.Handler())

	// Health endpoints with permissive rate limiting.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chimw.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// Match endpoints.
	r.Route("/api/v1/match", func(r chi.Router) {
		r.Use(router.chimw.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/content/{slug}", router.handler.MatchBySlug)
		r.Post("/content", router.handler.MatchContent)
		r.Get("/category/{category}", router.handler.MatchCategory)
	})

	return r
}
