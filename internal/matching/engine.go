// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

package matching

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// Engine orchestrates candidate retrieval, relevance scoring and final
// ranking into the three public selection entry points. It holds no
// per-call state and is safe for concurrent use.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	products ProductStore
	content  ContentStore
}

// NewEngine creates a selection engine over the given stores.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, products ProductStore, content ContentStore, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if products == nil {
		return nil, fmt.Errorf("product store not set")
	}

	return &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "matching").Logger(),
		products: products,
		content:  content,
	}, nil
}

// SelectForContent selects up to opts.MaxProducts products relevant to
// the given content, sorted by final score descending. Matches scoring
// below the minimum relevance are dropped unless they came from the
// popularity fallback, which bypasses both scoring and the filter.
func (e *Engine) SelectForContent(ctx context.Context, content ContentContext, opts Options) ([]Match, error) {
	opts = e.applyDefaults(opts)
	logger := e.logger.With().Str("placement", opts.Placement).Logger()

	if len(content.Keywords) == 0 {
		content.Keywords = ExtractKeywords(content.Body, content.Title)
	}

	candidates, err := e.products.QueryActive(ctx, e.buildFilter(content), e.config.CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}

	if len(candidates) == 0 {
		logger.Debug().Msg("no candidates matched, using popularity fallback")
		return e.selectFallback(ctx, opts)
	}

	matches := make([]Match, 0, len(candidates))
	for _, product := range candidates {
		relevance, reasons := ScoreProduct(content, product)
		if relevance < opts.MinRelevanceScore {
			continue
		}
		matches = append(matches, Match{
			Product:        product,
			RelevanceScore: relevance,
			FinalScore:     FinalScore(product, relevance),
			Reasons:        reasons,
		})
	}

	sortMatches(matches)
	matches = truncate(matches, opts.MaxProducts)

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("returned", len(matches)).
		Msg("content selection complete")

	return matches, nil
}

// SelectForContentBySlug resolves slug to content via the content store
// and delegates to SelectForContent. An unknown or unpublished slug
// yields an empty list, not an error.
func (e *Engine) SelectForContentBySlug(ctx context.Context, slug string, opts Options) ([]Match, error) {
	if e.content == nil {
		return nil, fmt.Errorf("content store not set")
	}

	content, err := e.content.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("resolve slug %q: %w", slug, err)
	}
	if content == nil {
		e.logger.Debug().Str("slug", slug).Msg("content not found")
		return []Match{}, nil
	}

	return e.SelectForContent(ctx, ContentContext{
		Title:      content.Title,
		Body:       content.Body,
		Categories: content.Categories,
	}, opts)
}

// SelectForCategory selects products whose category equals categoryName
// exactly, bypassing relevance scoring: every match carries a fixed
// relevance of CategoryRelevanceScore and a category reason, and the
// minimum-relevance option is ignored.
func (e *Engine) SelectForCategory(ctx context.Context, categoryName string, opts Options) ([]Match, error) {
	opts = e.applyDefaults(opts)

	// Fetch twice the requested count so final-score ordering has slack
	// beyond the store's priority/popularity ordering.
	products, err := e.products.ActiveByCategory(ctx, categoryName, 2*opts.MaxProducts)
	if err != nil {
		return nil, fmt.Errorf("query category %q: %w", categoryName, err)
	}

	reason := fmt.Sprintf("Category match: %s", categoryName)
	matches := make([]Match, len(products))
	for i, product := range products {
		matches[i] = Match{
			Product:        product,
			RelevanceScore: CategoryRelevanceScore,
			FinalScore:     FinalScore(product, CategoryRelevanceScore),
			Reasons:        []string{reason},
		}
	}

	sortMatches(matches)
	matches = truncate(matches, opts.MaxProducts)

	e.logger.Debug().
		Str("category", categoryName).
		Int("returned", len(matches)).
		Msg("category selection complete")

	return matches, nil
}

// selectFallback returns the top active products by priority and
// popularity with a fixed relevance, bypassing the relevance filter by
// construction. The result is empty only when the store holds no
// active products at all.
func (e *Engine) selectFallback(ctx context.Context, opts Options) ([]Match, error) {
	products, err := e.products.TopActive(ctx, opts.MaxProducts)
	if err != nil {
		return nil, fmt.Errorf("query fallback products: %w", err)
	}

	matches := make([]Match, len(products))
	for i, product := range products {
		matches[i] = Match{
			Product:        product,
			RelevanceScore: FallbackRelevanceScore,
			FinalScore:     FinalScore(product, FallbackRelevanceScore),
			Reasons:        []string{FallbackReason},
		}
	}

	sortMatches(matches)
	return matches, nil
}

// buildFilter derives the candidate filter from the content: its
// category labels plus the single highest-frequency keyword. Content
// with neither yields an empty filter, skipping pre-filtering.
func (e *Engine) buildFilter(content ContentContext) CandidateFilter {
	filter := CandidateFilter{Categories: content.Categories}
	if len(content.Keywords) > 0 {
		filter.Keyword = content.Keywords[0]
	}
	return filter
}

// applyDefaults fills unset options from the engine config.
func (e *Engine) applyDefaults(opts Options) Options {
	if opts.MaxProducts <= 0 {
		opts.MaxProducts = e.config.MaxProducts
	}
	if opts.MinRelevanceScore == 0 {
		opts.MinRelevanceScore = e.config.MinRelevanceScore
	}
	return opts
}

// sortMatches orders matches by final score descending. The sort is
// stable so equal scores keep the store's priority/popularity order,
// keeping output deterministic for a fixed snapshot.
func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].FinalScore > matches[j].FinalScore
	})
}

func truncate(matches []Match, limit int) []Match {
	if len(matches) > limit {
		return matches[:limit]
	}
	return matches
}
