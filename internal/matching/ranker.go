// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

package matching

import (
	"math"
	"time"
)

// Final score blend weights. These must sum to 1.0 and are fixed design
// constants; changing them changes ranking compatibility.
const (
	RelevanceWeight  = 0.50
	PriorityWeight   = 0.25
	PopularityWeight = 0.15
	RecencyWeight    = 0.10
)

const (
	// DefaultAdminPriority substitutes for a missing admin priority.
	DefaultAdminPriority = 50.0

	// DefaultRecencyScore substitutes when a product was never synced.
	DefaultRecencyScore = 50.0

	// RecencyDecayPerDay is how many recency points a product loses per
	// day since its last sync, floored at zero.
	RecencyDecayPerDay = 2.0
)

// FinalScore blends a product's relevance with its business signals
// into one ordering value, rounded to two decimal places. Admin
// priority and popularity are clamped into [0, 100] here, at the
// scoring boundary; the store does not enforce ranges.
func FinalScore(product Product, relevance float64) float64 {
	return finalScoreAt(product, relevance, time.Now())
}

func finalScoreAt(product Product, relevance float64, now time.Time) float64 {
	priority := clamp(valueOr(product.AdminPriority, DefaultAdminPriority), 0, 100)
	popularity := clamp(valueOr(product.PopularityScore, 0), 0, 100)

	recency := DefaultRecencyScore
	if product.LastSyncedAt != nil {
		days := math.Floor(now.Sub(*product.LastSyncedAt).Hours() / 24)
		recency = math.Max(0, 100-RecencyDecayPerDay*days)
	}

	score := relevance*RelevanceWeight +
		priority*PriorityWeight +
		popularity*PopularityWeight +
		recency*RecencyWeight

	return math.Round(score*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
