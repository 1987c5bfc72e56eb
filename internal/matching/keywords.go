// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

package matching

import (
	"regexp"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	// MaxKeywords is the number of terms ExtractKeywords returns.
	MaxKeywords = 20

	// minKeywordLength is the exclusive lower bound on term length;
	// tokens of this length or shorter are discarded.
	minKeywordLength = 3
)

// markupRE matches markup tag sequences, which are replaced with a
// space before tokenization.
var markupRE = regexp.MustCompile(`<[^>]*>`)

// nonAlnumRE strips non-alphanumeric characters from a lowercased token.
var nonAlnumRE = regexp.MustCompile(`[^a-z0-9]`)

// stopWords is a fixed, language-neutral set of common function words
// (articles, pronouns, auxiliary verbs, conjunctions) excluded from
// keyword extraction. Words of length <= 3 are filtered separately, so
// only longer function words appear here.
var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "these": {}, "those": {},
	"with": {}, "from": {}, "into": {}, "over": {}, "under": {},
	"your": {}, "yours": {}, "their": {}, "theirs": {}, "ours": {},
	"they": {}, "them": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "whose": {},
	"have": {}, "been": {}, "being": {}, "were": {}, "does": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "shall": {},
	"must": {}, "might": {},
	"because": {}, "about": {}, "between": {}, "through": {},
	"after": {}, "before": {}, "than": {}, "then": {}, "there": {},
	"also": {}, "just": {}, "only": {}, "very": {}, "more": {},
	"most": {}, "some": {}, "such": {}, "each": {}, "other": {},
	"both": {}, "here": {},
}

// ExtractKeywords turns raw content text into a ranked list of up to
// MaxKeywords significant terms. Markup tags are stripped, text is
// lowercased and tokenized, short tokens and stop words are discarded,
// and the remaining terms are ranked by descending frequency. Ties keep
// first-seen order: counting uses an insertion-ordered map and the sort
// is stable, so a term seen earlier in the text outranks an equally
// frequent later one.
//
// Empty input yields an empty list; there are no error conditions.
func ExtractKeywords(body, title string) []string {
	text := markupRE.ReplaceAllString(body+" "+title, " ")
	text = strings.ToLower(text)

	counts := orderedmap.New[string, int]()
	for _, token := range strings.Fields(text) {
		token = nonAlnumRE.ReplaceAllString(token, "")
		if len(token) <= minKeywordLength {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if n, ok := counts.Get(token); ok {
			counts.Set(token, n+1)
		} else {
			counts.Set(token, 1)
		}
	}

	type term struct {
		word  string
		count int
	}
	ranked := make([]term, 0, counts.Len())
	for pair := counts.Oldest(); pair != nil; pair = pair.Next() {
		ranked = append(ranked, term{word: pair.Key, count: pair.Value})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].count > ranked[j].count
	})

	if len(ranked) > MaxKeywords {
		ranked = ranked[:MaxKeywords]
	}

	keywords := make([]string, len(ranked))
	for i, t := range ranked {
		keywords[i] = t.word
	}
	return keywords
}
