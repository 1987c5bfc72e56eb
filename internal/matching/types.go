// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

package matching

import (
	"context"
	"time"
)

// ProductStatusActive is the status a product must have to be eligible
// for selection. Products in any other state are never returned.
const ProductStatusActive = "active"

// ContentContext describes the piece of content a product selection is
// made for. It is constructed fresh per call and never mutated.
type ContentContext struct {
	// Title is the content title.
	Title string `json:"title"`

	// Body is the content body. It may contain markup, which is
	// stripped before keyword extraction.
	Body string `json:"body"`

	// Categories are the content's category labels. Order is irrelevant.
	Categories []string `json:"categories,omitempty"`

	// Keywords is an optional precomputed keyword list. When empty it is
	// derived from Body and Title via ExtractKeywords.
	Keywords []string `json:"keywords,omitempty"`
}

// Product is a read-only snapshot of a product record as fetched from
// the store. Optional columns are represented as pointers so that an
// absent value can be distinguished from a zero.
type Product struct {
	// ID is the store's product identifier.
	ID int64 `json:"id"`

	// Name is the product name.
	Name string `json:"name"`

	// Category is the product's single category label, if any.
	Category string `json:"category,omitempty"`

	// Description may contain markup; it is stripped before matching.
	Description string `json:"description,omitempty"`

	// Tags is the parsed tag list. A malformed stored value degrades to
	// an empty list at the store boundary rather than failing the call.
	Tags []string `json:"tags,omitempty"`

	// AdminPriority is a business-assigned boost value, intended range
	// 0-100. Nil when the store holds no value.
	AdminPriority *float64 `json:"admin_priority,omitempty"`

	// PopularityScore is an externally tracked engagement metric,
	// intended range 0-100+. Nil when the store holds no value.
	PopularityScore *float64 `json:"popularity_score,omitempty"`

	// LastSyncedAt is when the product data was last refreshed.
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`

	// Status is the product's activity status.
	Status string `json:"status"`
}

// Match pairs a product with its selection scores. It is a projection
// over the product snapshot and never mutates it.
type Match struct {
	// Product is the matched product.
	Product Product `json:"product"`

	// RelevanceScore is the 0-100 textual/categorical match score.
	RelevanceScore float64 `json:"relevance_score"`

	// FinalScore is the weighted blend used for ranking, rounded to two
	// decimal places.
	FinalScore float64 `json:"final_score"`

	// Reasons lists one human-readable string per contributing signal,
	// in evaluation order.
	Reasons []string `json:"reasons,omitempty"`
}

// Options tunes a single selection call.
type Options struct {
	// MaxProducts caps the result length. Zero means the engine default.
	MaxProducts int `json:"max_products,omitempty"`

	// MinRelevanceScore filters SelectForContent results. Zero means the
	// engine default; a negative value disables the filter. Ignored by
	// SelectForCategory and by the fallback path.
	MinRelevanceScore float64 `json:"min_relevance_score,omitempty"`

	// Placement identifies the caller's display slot. It is carried for
	// logging only and has no effect on scoring.
	Placement string `json:"placement,omitempty"`
}

// CandidateFilter narrows the active-product candidate pool. An empty
// filter matches every active product.
type CandidateFilter struct {
	// Categories matches products whose category equals one of the
	// content's category labels.
	Categories []string

	// Keyword is the single highest-frequency content keyword, matched
	// as a case-insensitive substring of name, description or category.
	// Only the top keyword is used for pre-filtering; full relevance
	// scoring sees the whole keyword list.
	Keyword string
}

// Empty reports whether the filter matches every active product.
func (f CandidateFilter) Empty() bool {
	return len(f.Categories) == 0 && f.Keyword == ""
}

// ProductStore is the read-only product access the engine consumes.
// This is typically implemented by the database layer; the interface
// lives here to avoid a dependency on storage packages.
type ProductStore interface {
	// QueryActive returns active products matching the filter, ordered
	// by admin priority then popularity, capped at limit.
	QueryActive(ctx context.Context, filter CandidateFilter, limit int) ([]Product, error)

	// TopActive returns the top active products ordered by admin
	// priority then popularity, ignoring any filter.
	TopActive(ctx context.Context, limit int) ([]Product, error)

	// ActiveByCategory returns active products whose category equals
	// category exactly, ordered by admin priority then popularity.
	ActiveByCategory(ctx context.Context, category string, limit int) ([]Product, error)
}

// Content is a published article as resolved from its slug.
type Content struct {
	Title      string
	Body       string
	Categories []string
}

// ContentStore resolves a slug to published content. A missing or
// unpublished slug yields (nil, nil), not an error.
type ContentStore interface {
	GetBySlug(ctx context.Context, slug string) (*Content, error)
}
