// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

package matching

import (
	"fmt"
	"strings"
)

// Relevance signal caps and per-match points. These are business-tunable
// constants; the four caps sum to MaxRelevanceScore, so an uncapped sum
// can never exceed the clamp.
const (
	// CategoryMatchPoints is awarded once when a content category label
	// and the product category overlap as case-insensitive substrings.
	CategoryMatchPoints = 40.0

	// NameMatchPoints per keyword matched in the product name, capped.
	NameMatchPoints = 10.0
	NameMatchCap    = 30.0

	// DescriptionMatchPoints per keyword matched in the description, capped.
	DescriptionMatchPoints = 5.0
	DescriptionMatchCap    = 20.0

	// TagMatchPoints per keyword matched against a tag, capped.
	TagMatchPoints = 3.0
	TagMatchCap    = 10.0

	// MaxRelevanceScore is the upper clamp on relevance.
	MaxRelevanceScore = 100.0

	// FallbackRelevanceScore is assigned to products returned via the
	// popularity fallback path, which bypasses scoring entirely.
	FallbackRelevanceScore = 30.0

	// CategoryRelevanceScore is assigned to every product returned by a
	// category selection, which also bypasses scoring.
	CategoryRelevanceScore = 50.0
)

// FallbackReason annotates matches produced by the popularity fallback.
const FallbackReason = "Popular product"

// ScoreProduct scores one product against the content's signals. It
// evaluates four additive, independently capped signals in fixed order
// (category, name, description, tags), clamps the sum to [0, 100] and
// returns one reason string per signal that contributed. A product with
// no signals scores 0 with no reasons; that is a valid result, not an
// error.
//
// The content's keyword list is used as supplied; when empty it is
// derived from Body and Title.
func ScoreProduct(content ContentContext, product Product) (float64, []string) {
	keywords := content.Keywords
	if len(keywords) == 0 {
		keywords = ExtractKeywords(content.Body, content.Title)
	}

	var score float64
	var reasons []string

	if category, ok := matchCategory(content.Categories, product.Category); ok {
		score += CategoryMatchPoints
		reasons = append(reasons, fmt.Sprintf("Category match: %s", category))
	}

	nameTokens := matchableTokens(product.Name)
	if n := countTokenMatches(keywords, nameTokens); n > 0 {
		score += capped(float64(n)*NameMatchPoints, NameMatchCap)
		reasons = append(reasons, fmt.Sprintf("%d keyword(s) matched in product name", n))
	}

	descTokens := matchableTokens(markupRE.ReplaceAllString(product.Description, " "))
	if n := countTokenMatches(keywords, descTokens); n > 0 {
		score += capped(float64(n)*DescriptionMatchPoints, DescriptionMatchCap)
		reasons = append(reasons, fmt.Sprintf("%d keyword(s) matched in description", n))
	}

	if n := countTagMatches(keywords, product.Tags); n > 0 {
		score += capped(float64(n)*TagMatchPoints, TagMatchCap)
		reasons = append(reasons, fmt.Sprintf("%d tag(s) matched", n))
	}

	if score > MaxRelevanceScore {
		score = MaxRelevanceScore
	}
	return score, reasons
}

// matchCategory reports whether any content category label and the
// product category are case-insensitive substrings of one another,
// returning the product category that matched.
func matchCategory(labels []string, productCategory string) (string, bool) {
	if productCategory == "" {
		return "", false
	}
	pc := strings.ToLower(productCategory)
	for _, label := range labels {
		l := strings.ToLower(label)
		if l == "" {
			continue
		}
		if strings.Contains(pc, l) || strings.Contains(l, pc) {
			return productCategory, true
		}
	}
	return "", false
}

// matchableTokens lowercases and splits text, keeping tokens long
// enough to be meaningful match targets.
func matchableTokens(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) > minKeywordLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// countTokenMatches counts keywords that substring-match (in either
// direction) at least one token. Each keyword counts at most once;
// empty keywords are ignored, since an empty substring matches
// everything.
func countTokenMatches(keywords, tokens []string) int {
	if len(tokens) == 0 {
		return 0
	}
	var n int
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		for _, tok := range tokens {
			if strings.Contains(tok, kw) || strings.Contains(kw, tok) {
				n++
				break
			}
		}
	}
	return n
}

// countTagMatches counts keywords that substring-match a tag string.
// Tags are matched whole, not tokenized.
func countTagMatches(keywords, tags []string) int {
	if len(tags) == 0 {
		return 0
	}
	lowered := make([]string, len(tags))
	for i, t := range tags {
		lowered[i] = strings.ToLower(t)
	}
	var n int
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		for _, tag := range lowered {
			if strings.Contains(tag, kw) || strings.Contains(kw, tag) {
				n++
				break
			}
		}
	}
	return n
}

func capped(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}
