// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

package matching

import "fmt"

// Config contains the engine's operational defaults. Per-call Options
// override MaxProducts and MinRelevanceScore.
type Config struct {
	// MaxProducts is the default result cap.
	// Default: 10.
	MaxProducts int `json:"max_products"`

	// MinRelevanceScore is the default relevance threshold for content
	// selections. The fallback path and category selections bypass it.
	// Default: 20.
	MinRelevanceScore float64 `json:"min_relevance_score"`

	// CandidateLimit caps the candidate pool fetched from the store.
	// Default: 100.
	CandidateLimit int `json:"candidate_limit"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxProducts:       10,
		MinRelevanceScore: 20,
		CandidateLimit:    100,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.MaxProducts < 1 {
		return fmt.Errorf("max_products must be positive, got %d", c.MaxProducts)
	}
	if c.MinRelevanceScore < 0 || c.MinRelevanceScore > 100 {
		return fmt.Errorf("min_relevance_score must be in [0, 100], got %f", c.MinRelevanceScore)
	}
	if c.CandidateLimit < 1 {
		return fmt.Errorf("candidate_limit must be positive, got %d", c.CandidateLimit)
	}
	return nil
}
