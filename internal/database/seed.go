// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/shoplink/shoplink/internal/logging"
	"github.com/shoplink/shoplink/internal/matching"
)

// SeedDemoData inserts a small demo catalog and one published article.
// It is a no-op when the products table is not empty, so it is safe to
// run on every startup with SEED_DEMO_DATA enabled.
func (db *DB) SeedDemoData(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		logging.Debug().Int("products", count).Msg("Demo seed skipped, catalog not empty")
		return nil
	}

	now := time.Now().UTC()
	recent := now.Add(-24 * time.Hour)
	stale := now.Add(-30 * 24 * time.Hour)

	products := []matching.Product{
		{
			Name:            "AeroBrew Espresso Machine",
			Category:        "Coffee",
			Description:     "Compact espresso machine with a built-in grinder and milk frother.",
			Tags:            []string{"espresso", "grinder", "kitchen"},
			AdminPriority:   ptr(80),
			PopularityScore: ptr(72),
			LastSyncedAt:    &recent,
		},
		{
			Name:            "BaristaPro Burr Grinder",
			Category:        "Coffee",
			Description:     "Conical burr grinder with 40 grind settings for espresso and filter.",
			Tags:            []string{"grinder", "espresso"},
			AdminPriority:   ptr(60),
			PopularityScore: ptr(85),
			LastSyncedAt:    &recent,
		},
		{
			Name:            "SoundWave Wireless Headphones",
			Category:        "Electronics",
			Description:     "Over-ear wireless headphones with active noise cancellation.",
			Tags:            []string{"wireless", "audio", "bluetooth"},
			AdminPriority:   ptr(70),
			PopularityScore: ptr(90),
			LastSyncedAt:    &stale,
		},
		{
			Name:        "TrailLite Hiking Backpack",
			Category:    "Outdoor",
			Description: "Lightweight 40L backpack with rain cover.",
			Tags:        []string{"hiking", "travel"},
		},
		{
			Name:            "Discontinued Kettle",
			Category:        "Coffee",
			Description:     "Gooseneck kettle, no longer stocked.",
			Status:          "archived",
			AdminPriority:   ptr(95),
			PopularityScore: ptr(95),
		},
	}

	for _, p := range products {
		if _, err := db.InsertProduct(ctx, p); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}

	article := struct {
		slug, title, body string
		categories        []string
	}{
		slug:  "best-espresso-gear",
		title: "The Best Espresso Gear This Year",
		body: "<p>A great espresso setup starts with a quality espresso machine and a " +
			"consistent burr grinder. We tested a dozen machines and grinders to find " +
			"the combinations that pull the best shots at home.</p>",
		categories: []string{"Coffee"},
	}
	if _, err := db.InsertArticle(ctx, article.slug, article.title, article.body, true, article.categories); err != nil {
		return fmt.Errorf("seed article %q: %w", article.slug, err)
	}

	logging.Info().Int("products", len(products)).Msg("Demo data seeded")
	return nil
}

func ptr(v float64) *float64 { return &v }
