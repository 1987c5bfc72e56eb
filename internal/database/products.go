// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/shoplink/shoplink/internal/matching"
	"github.com/shoplink/shoplink/internal/metrics"
)

// *DB implements the matching package's product store.
var _ matching.ProductStore = (*DB)(nil)

// productColumns is the select list shared by all product queries. The
// scan order in scanProduct must match.
const productColumns = `
	id,
	name,
	COALESCE(category, '') AS category,
	COALESCE(description, '') AS description,
	COALESCE(tags, '') AS tags,
	admin_priority,
	popularity_score,
	last_synced_at,
	status`

// productOrder ranks products by business priority, then engagement.
// The trailing id keeps ordering deterministic across equal scores.
const productOrder = ` ORDER BY admin_priority DESC NULLS LAST, popularity_score DESC NULLS LAST, id`

// QueryActive returns active products matching the filter, capped at
// limit. Category labels and the keyword widen the pool (OR semantics):
// a product qualifies when its category equals one of the labels, or
// when the keyword appears in its name, description or category.
func (db *DB) QueryActive(ctx context.Context, filter matching.CandidateFilter, limit int) ([]matching.Product, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + productColumns + ` FROM products WHERE status = ?`)
	args := []interface{}{matching.ProductStatusActive}

	var clauses []string
	if len(filter.Categories) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.Categories)), ",")
		clauses = append(clauses, "category IN ("+placeholders+")")
		for _, c := range filter.Categories {
			args = append(args, c)
		}
	}
	if filter.Keyword != "" {
		pattern := "%" + escapeLike(filter.Keyword) + "%"
		clauses = append(clauses, `(name ILIKE ? ESCAPE '\' OR description ILIKE ? ESCAPE '\' OR category ILIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if len(clauses) > 0 {
		sb.WriteString(" AND (" + strings.Join(clauses, " OR ") + ")")
	}

	sb.WriteString(productOrder + " LIMIT ?")
	args = append(args, limit)

	return db.queryProducts(ctx, "query_active", sb.String(), args...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE metacharacters in a caller-supplied
// keyword so it matches literally. Extracted keywords are alphanumeric,
// but keywords arriving with the content can carry % and _.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// TopActive returns the top active products by priority and popularity,
// ignoring any content filter. This backs the popularity fallback.
func (db *DB) TopActive(ctx context.Context, limit int) ([]matching.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE status = ?` + productOrder + ` LIMIT ?`
	return db.queryProducts(ctx, "top_active", query, matching.ProductStatusActive, limit)
}

// ActiveByCategory returns active products whose category equals
// category exactly.
func (db *DB) ActiveByCategory(ctx context.Context, category string, limit int) ([]matching.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE status = ? AND category = ?` + productOrder + ` LIMIT ?`
	return db.queryProducts(ctx, "active_by_category", query, matching.ProductStatusActive, category, limit)
}

// queryProducts runs a product select and scans the result rows.
func (db *DB) queryProducts(ctx context.Context, operation, query string, args ...interface{}) ([]matching.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery(operation, "products", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []matching.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// scanProduct scans one row in productColumns order.
func scanProduct(rows *sql.Rows) (matching.Product, error) {
	var (
		product    matching.Product
		rawTags    string
		priority   sql.NullFloat64
		popularity sql.NullFloat64
		syncedAt   sql.NullTime
	)

	if err := rows.Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Description,
		&rawTags,
		&priority,
		&popularity,
		&syncedAt,
		&product.Status,
	); err != nil {
		return matching.Product{}, err
	}

	product.Tags = parseTags(rawTags)
	if priority.Valid {
		product.AdminPriority = &priority.Float64
	}
	if popularity.Valid {
		product.PopularityScore = &popularity.Float64
	}
	if syncedAt.Valid {
		t := syncedAt.Time
		product.LastSyncedAt = &t
	}

	return product, nil
}

// parseTags parses the stored tags column. The canonical format is a
// JSON string array; comma-separated plain text is accepted as a
// legacy fallback. A malformed value degrades to no tags rather than
// failing the query.
func parseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return nil
		}
		return trimNonEmpty(tags)
	}

	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// InsertProduct inserts a product and returns its assigned ID. Tags
// are stored as a JSON array.
func (db *DB) InsertProduct(ctx context.Context, p matching.Product) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rawTags := ""
	if len(p.Tags) > 0 {
		encoded, err := json.Marshal(p.Tags)
		if err != nil {
			return 0, fmt.Errorf("encode tags: %w", err)
		}
		rawTags = string(encoded)
	}

	status := p.Status
	if status == "" {
		status = matching.ProductStatusActive
	}

	query := `
		INSERT INTO products (name, category, description, tags, admin_priority, popularity_score, last_synced_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	start := time.Now()
	var id int64
	err := db.conn.QueryRowContext(ctx, query,
		p.Name,
		nullString(p.Category),
		nullString(p.Description),
		nullString(rawTags),
		nullFloat(p.AdminPriority),
		nullFloat(p.PopularityScore),
		nullTime(p.LastSyncedAt),
		status,
	).Scan(&id)
	metrics.RecordDBQuery("insert", "products", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}

	return id, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
