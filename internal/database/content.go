// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shoplink/shoplink/internal/matching"
	"github.com/shoplink/shoplink/internal/metrics"
)

// *DB implements the matching package's content store.
var _ matching.ContentStore = (*DB)(nil)

// GetBySlug resolves a published article by slug, aggregating its
// category labels. Returns (nil, nil) when the slug is unknown or the
// article is unpublished.
func (db *DB) GetBySlug(ctx context.Context, slug string) (*matching.Content, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, title, COALESCE(body, '') AS body
		FROM articles
		WHERE slug = ? AND published`

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query, slug)

	var (
		id      int64
		content matching.Content
	)
	err := row.Scan(&id, &content.Title, &content.Body)
	metrics.RecordDBQuery("get_by_slug", "articles", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query article %q: %w", slug, err)
	}

	categories, err := db.articleCategories(ctx, id)
	if err != nil {
		return nil, err
	}
	content.Categories = categories

	return &content, nil
}

// articleCategories returns the distinct category labels of an article.
func (db *DB) articleCategories(ctx context.Context, articleID int64) ([]string, error) {
	query := `
		SELECT DISTINCT category
		FROM article_categories
		WHERE article_id = ?
		ORDER BY category`

	rows, err := db.conn.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, fmt.Errorf("query article categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("scan article category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate article categories: %w", err)
	}

	return categories, nil
}

// InsertArticle inserts an article with its category labels and
// returns its assigned ID.
func (db *DB) InsertArticle(ctx context.Context, slug, title, body string, published bool, categories []string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO articles (slug, title, body, published)
		VALUES (?, ?, ?, ?)
		RETURNING id`

	start := time.Now()
	var id int64
	err := db.conn.QueryRowContext(ctx, query, slug, title, nullString(body), published).Scan(&id)
	metrics.RecordDBQuery("insert", "articles", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("insert article: %w", err)
	}

	for _, category := range categories {
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO article_categories (article_id, category) VALUES (?, ?)`, id, category); err != nil {
			return 0, fmt.Errorf("insert article category: %w", err)
		}
	}

	return id, nil
}

// ignoreNoRows keeps "not found" out of the query error metrics.
func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
