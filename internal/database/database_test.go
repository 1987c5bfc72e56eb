// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

package database

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/shoplink/shoplink/internal/config"
	"github.com/shoplink/shoplink/internal/matching"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
		Threads:   1,
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	})
	return db
}

func mustInsertProduct(t *testing.T, db *DB, p matching.Product) int64 {
	t.Helper()
	id, err := db.InsertProduct(context.Background(), p)
	if err != nil {
		t.Fatalf("InsertProduct(%q) error: %v", p.Name, err)
	}
	return id
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "json array", raw: `["espresso","grinder"]`, want: []string{"espresso", "grinder"}},
		{name: "json array with padding", raw: ` ["a", "b"] `, want: []string{"a", "b"}},
		{name: "comma separated", raw: "espresso, grinder ,kitchen", want: []string{"espresso", "grinder", "kitchen"}},
		{name: "single plain tag", raw: "espresso", want: []string{"espresso"}},
		{name: "malformed json", raw: `["unterminated`, want: nil},
		{name: "json of wrong type", raw: `[1,2,3]`, want: nil},
		{name: "only separators", raw: ", ,", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTags(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseTags(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestInsertAndScanProduct(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	synced := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	id := mustInsertProduct(t, db, matching.Product{
		Name:            "AeroBrew Espresso Machine",
		Category:        "Coffee",
		Description:     "Compact espresso machine.",
		Tags:            []string{"espresso", "kitchen"},
		AdminPriority:   ptr(80),
		PopularityScore: ptr(70),
		LastSyncedAt:    &synced,
	})
	if id == 0 {
		t.Fatal("InsertProduct returned zero ID")
	}

	products, err := db.TopActive(ctx, 10)
	if err != nil {
		t.Fatalf("TopActive() error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1", len(products))
	}

	p := products[0]
	if p.ID != id || p.Name != "AeroBrew Espresso Machine" || p.Category != "Coffee" {
		t.Errorf("product = %+v", p)
	}
	if !reflect.DeepEqual(p.Tags, []string{"espresso", "kitchen"}) {
		t.Errorf("tags = %v", p.Tags)
	}
	if p.AdminPriority == nil || *p.AdminPriority != 80 {
		t.Errorf("admin priority = %v", p.AdminPriority)
	}
	if p.LastSyncedAt == nil || !p.LastSyncedAt.Equal(synced) {
		t.Errorf("last synced = %v, want %v", p.LastSyncedAt, synced)
	}
	if p.Status != matching.ProductStatusActive {
		t.Errorf("status = %q", p.Status)
	}
}

func TestInsertProductNullableColumns(t *testing.T) {
	db := newTestDB(t)

	mustInsertProduct(t, db, matching.Product{Name: "Bare Product"})

	products, err := db.TopActive(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopActive() error: %v", err)
	}
	p := products[0]
	if p.AdminPriority != nil || p.PopularityScore != nil || p.LastSyncedAt != nil {
		t.Errorf("optional fields not nil: %+v", p)
	}
	if p.Tags != nil {
		t.Errorf("tags = %v, want nil", p.Tags)
	}
}

func TestQueryActive(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustInsertProduct(t, db, matching.Product{Name: "Espresso Machine", Category: "Coffee", AdminPriority: ptr(50)})
	mustInsertProduct(t, db, matching.Product{Name: "Desk Lamp", Category: "Home", Description: "LED lamp"})
	mustInsertProduct(t, db, matching.Product{Name: "Headphones", Category: "Electronics", Description: "wireless espresso-themed edition"})
	mustInsertProduct(t, db, matching.Product{Name: "Archived Espresso Pot", Category: "Coffee", Status: "archived"})

	t.Run("category filter", func(t *testing.T) {
		got, err := db.QueryActive(ctx, matching.CandidateFilter{Categories: []string{"Coffee"}}, 10)
		if err != nil {
			t.Fatalf("QueryActive() error: %v", err)
		}
		if len(got) != 1 || got[0].Name != "Espresso Machine" {
			t.Errorf("got %v, want only the active coffee product", names(got))
		}
	})

	t.Run("keyword matches name and description case-insensitively", func(t *testing.T) {
		got, err := db.QueryActive(ctx, matching.CandidateFilter{Keyword: "ESPRESSO"}, 10)
		if err != nil {
			t.Fatalf("QueryActive() error: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %v, want espresso machine and headphones", names(got))
		}
	})

	t.Run("category and keyword widen the pool", func(t *testing.T) {
		got, err := db.QueryActive(ctx, matching.CandidateFilter{Categories: []string{"Home"}, Keyword: "espresso"}, 10)
		if err != nil {
			t.Fatalf("QueryActive() error: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("got %v, want all three active products", names(got))
		}
	})

	t.Run("empty filter returns all active", func(t *testing.T) {
		got, err := db.QueryActive(ctx, matching.CandidateFilter{}, 10)
		if err != nil {
			t.Fatalf("QueryActive() error: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("got %v, want three active products", names(got))
		}
	})

	t.Run("limit respected", func(t *testing.T) {
		got, err := db.QueryActive(ctx, matching.CandidateFilter{}, 2)
		if err != nil {
			t.Fatalf("QueryActive() error: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %d products, want 2", len(got))
		}
	})

	t.Run("no matches yields empty", func(t *testing.T) {
		got, err := db.QueryActive(ctx, matching.CandidateFilter{Keyword: "zzzznope"}, 10)
		if err != nil {
			t.Fatalf("QueryActive() error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %v, want none", names(got))
		}
	})
}

func TestQueryActiveKeywordLiteral(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustInsertProduct(t, db, matching.Product{Name: "100% Arabica Beans", Category: "Coffee"})
	mustInsertProduct(t, db, matching.Product{Name: "Decaf Blend", Category: "Coffee"})

	t.Run("percent matches literally", func(t *testing.T) {
		got, err := db.QueryActive(ctx, matching.CandidateFilter{Keyword: "100%"}, 10)
		if err != nil {
			t.Fatalf("QueryActive() error: %v", err)
		}
		if len(got) != 1 || got[0].Name != "100% Arabica Beans" {
			t.Errorf("got %v, want only the literal match", names(got))
		}
	})

	t.Run("underscore is not a wildcard", func(t *testing.T) {
		got, err := db.QueryActive(ctx, matching.CandidateFilter{Keyword: "_ecaf"}, 10)
		if err != nil {
			t.Fatalf("QueryActive() error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %v, want no matches", names(got))
		}
	})
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "espresso", want: "espresso"},
		{in: "100%", want: `100\%`},
		{in: "a_b", want: `a\_b`},
		{in: `back\slash`, want: `back\\slash`},
	}

	for _, tt := range tests {
		if got := escapeLike(tt.in); got != tt.want {
			t.Errorf("escapeLike(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTopActiveOrdering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	low := mustInsertProduct(t, db, matching.Product{Name: "Low", AdminPriority: ptr(10)})
	high := mustInsertProduct(t, db, matching.Product{Name: "High", AdminPriority: ptr(90)})
	noPriority := mustInsertProduct(t, db, matching.Product{Name: "NoPriority", PopularityScore: ptr(99)})

	got, err := db.TopActive(ctx, 10)
	if err != nil {
		t.Fatalf("TopActive() error: %v", err)
	}

	wantOrder := []int64{high, low, noPriority}
	if len(got) != 3 {
		t.Fatalf("got %d products, want 3", len(got))
	}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d: product %d, want %d (priority before popularity, nulls last)", i, got[i].ID, id)
		}
	}
}

func TestActiveByCategory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustInsertProduct(t, db, matching.Product{Name: "Coffee Maker", Category: "Coffee"})
	mustInsertProduct(t, db, matching.Product{Name: "Coffee Table", Category: "Coffee Furniture"})
	mustInsertProduct(t, db, matching.Product{Name: "Retired Pot", Category: "Coffee", Status: "archived"})

	got, err := db.ActiveByCategory(ctx, "Coffee", 10)
	if err != nil {
		t.Fatalf("ActiveByCategory() error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Coffee Maker" {
		t.Errorf("got %v, want exact-category active product only", names(got))
	}
}

func TestGetBySlug(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.InsertArticle(ctx, "published-post", "Published Post", "<p>body text</p>", true, []string{"Coffee", "Gear"}); err != nil {
		t.Fatalf("InsertArticle() error: %v", err)
	}
	if _, err := db.InsertArticle(ctx, "draft-post", "Draft Post", "draft", false, nil); err != nil {
		t.Fatalf("InsertArticle() error: %v", err)
	}

	t.Run("published article resolved with categories", func(t *testing.T) {
		content, err := db.GetBySlug(ctx, "published-post")
		if err != nil {
			t.Fatalf("GetBySlug() error: %v", err)
		}
		if content == nil {
			t.Fatal("content is nil")
		}
		if content.Title != "Published Post" || content.Body != "<p>body text</p>" {
			t.Errorf("content = %+v", content)
		}
		if !reflect.DeepEqual(content.Categories, []string{"Coffee", "Gear"}) {
			t.Errorf("categories = %v", content.Categories)
		}
	})

	t.Run("unpublished article not resolved", func(t *testing.T) {
		content, err := db.GetBySlug(ctx, "draft-post")
		if err != nil {
			t.Fatalf("GetBySlug() error: %v", err)
		}
		if content != nil {
			t.Errorf("content = %+v, want nil", content)
		}
	})

	t.Run("unknown slug", func(t *testing.T) {
		content, err := db.GetBySlug(ctx, "missing")
		if err != nil {
			t.Fatalf("GetBySlug() error: %v", err)
		}
		if content != nil {
			t.Errorf("content = %+v, want nil", content)
		}
	})
}

func TestSeedDemoData(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.SeedDemoData(ctx); err != nil {
		t.Fatalf("SeedDemoData() error: %v", err)
	}

	products, err := db.TopActive(ctx, 100)
	if err != nil {
		t.Fatalf("TopActive() error: %v", err)
	}
	if len(products) == 0 {
		t.Fatal("no products seeded")
	}
	for _, p := range products {
		if p.Status != matching.ProductStatusActive {
			t.Errorf("TopActive returned non-active product %q", p.Name)
		}
	}

	content, err := db.GetBySlug(ctx, "best-espresso-gear")
	if err != nil {
		t.Fatalf("GetBySlug() error: %v", err)
	}
	if content == nil {
		t.Fatal("seeded article not resolvable")
	}

	// Seeding twice must not duplicate the catalog.
	if err := db.SeedDemoData(ctx); err != nil {
		t.Fatalf("second SeedDemoData() error: %v", err)
	}
	again, err := db.TopActive(ctx, 100)
	if err != nil {
		t.Fatalf("TopActive() error: %v", err)
	}
	if len(again) != len(products) {
		t.Errorf("products after reseed = %d, want %d", len(again), len(products))
	}
}

func names(products []matching.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}
