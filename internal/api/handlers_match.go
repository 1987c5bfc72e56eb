// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/shoplink/shoplink/internal/logging"
	"github.com/shoplink/shoplink/internal/matching"
	"github.com/shoplink/shoplink/internal/metrics"
	"github.com/shoplink/shoplink/internal/models"
)

// matchOptionsQuery carries the per-request selection tuning parsed
// from query parameters.
type matchOptionsQuery struct {
	MaxProducts  int     `validate:"omitempty,min=1,max=50"`
	MinRelevance float64 `validate:"omitempty,gte=-1,lte=100"`
	Placement    string  `validate:"omitempty,max=64"`
}

// matchContentRequest is the POST body for ad-hoc content matching.
type matchContentRequest struct {
	Title      string   `json:"title" validate:"omitempty,max=512"`
	Body       string   `json:"body" validate:"omitempty,max=200000"`
	Categories []string `json:"categories" validate:"omitempty,max=20,dive,min=1,max=128"`
	Keywords   []string `json:"keywords" validate:"omitempty,max=50,dive,min=1,max=64"`
}

// matchData is the success payload of all match endpoints.
type matchData struct {
	Matches []matching.Match `json:"matches"`
	Count   int              `json:"count"`
}

// parseOptions reads and validates the selection options from query
// parameters. A nil return means the response has already been written.
func (h *Handler) parseOptions(w http.ResponseWriter, r *http.Request) *matching.Options {
	maxProducts, err := getIntParam(r, "max_products", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return nil
	}
	minRelevance, err := getFloatParam(r, "min_relevance", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return nil
	}

	query := matchOptionsQuery{
		MaxProducts:  maxProducts,
		MinRelevance: minRelevance,
		Placement:    r.URL.Query().Get("placement"),
	}
	if apiErr := validateRequest(&query); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return nil
	}

	return &matching.Options{
		MaxProducts:       query.MaxProducts,
		MinRelevanceScore: query.MinRelevance,
		Placement:         query.Placement,
	}
}

// MatchBySlug handles GET /api/v1/match/content/{slug}.
// An unknown or unpublished slug yields an empty match list, not an
// error, so embedding widgets degrade gracefully.
func (h *Handler) MatchBySlug(w http.ResponseWriter, r *http.Request) {
	opts := h.parseOptions(w, r)
	if opts == nil {
		return
	}
	slug := chi.URLParam(r, "slug")

	start := time.Now()
	matches, err := h.engine.SelectForContentBySlug(r.Context(), slug, *opts)
	metrics.RecordSelection("slug", len(matches), time.Since(start), err)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to select products", err)
		return
	}

	h.respondMatches(w, r, matches, start)
}

// MatchContent handles POST /api/v1/match/content. The caller supplies
// the content inline, which serves previews and external callers whose
// content is not stored here.
func (h *Handler) MatchContent(w http.ResponseWriter, r *http.Request) {
	opts := h.parseOptions(w, r)
	if opts == nil {
		return
	}

	var req matchContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	content := matching.ContentContext{
		Title:      req.Title,
		Body:       req.Body,
		Categories: req.Categories,
		Keywords:   req.Keywords,
	}

	start := time.Now()
	matches, err := h.engine.SelectForContent(r.Context(), content, *opts)
	metrics.RecordSelection("content", len(matches), time.Since(start), err)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to select products", err)
		return
	}

	h.respondMatches(w, r, matches, start)
}

// MatchCategory handles GET /api/v1/match/category/{category}.
func (h *Handler) MatchCategory(w http.ResponseWriter, r *http.Request) {
	opts := h.parseOptions(w, r)
	if opts == nil {
		return
	}
	category := chi.URLParam(r, "category")

	start := time.Now()
	matches, err := h.engine.SelectForCategory(r.Context(), category, *opts)
	metrics.RecordSelection("category", len(matches), time.Since(start), err)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to select products", err)
		return
	}

	h.respondMatches(w, r, matches, start)
}

// respondMatches writes the standard match response envelope.
func (h *Handler) respondMatches(w http.ResponseWriter, r *http.Request, matches []matching.Match, start time.Time) {
	if isFallback(matches) {
		metrics.RecordFallback()
	}
	if matches == nil {
		matches = []matching.Match{}
	}

	logging.Ctx(r.Context()).Debug().
		Int("count", len(matches)).
		Str("path", r.URL.Path).
		Msg("Match request served")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: matchData{
			Matches: matches,
			Count:   len(matches),
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// isFallback reports whether the matches came from the popularity
// fallback, which annotates every match with the fallback reason.
func isFallback(matches []matching.Match) bool {
	if len(matches) == 0 {
		return false
	}
	reasons := matches[0].Reasons
	return len(reasons) == 1 && reasons[0] == matching.FallbackReason
}
