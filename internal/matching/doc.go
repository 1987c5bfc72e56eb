// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

// Package matching selects and ranks products for contextual display
// alongside content (articles or category pages).
//
// Given a piece of content, the engine fetches a bounded candidate pool
// from the product store, scores each candidate against the content's
// keywords and categories, blends that relevance with business signals
// (admin priority, popularity, sync recency) and returns a sorted,
// truncated list of matches, each carrying human-readable reasons.
//
// The engine is stateless: every call is a single-pass computation over
// one fetched snapshot, with no caching and no shared mutable state, so
// concurrent calls need no coordination. Store access goes through the
// ProductStore and ContentStore interfaces defined in this package;
// this package imports no other internal packages.
package matching
