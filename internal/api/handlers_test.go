// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/shoplink/shoplink/internal/matching"
	"github.com/shoplink/shoplink/internal/models"
)

// stubSelector implements Selector with overridable behavior per test.
type stubSelector struct {
	selectForContent func(ctx context.Context, content matching.ContentContext, opts matching.Options) ([]matching.Match, error)
	selectBySlug     func(ctx context.Context, slug string, opts matching.Options) ([]matching.Match, error)
	selectByCategory func(ctx context.Context, category string, opts matching.Options) ([]matching.Match, error)
}

func (s *stubSelector) SelectForContent(ctx context.Context, content matching.ContentContext, opts matching.Options) ([]matching.Match, error) {
	if s.selectForContent == nil {
		return nil, nil
	}
	return s.selectForContent(ctx, content, opts)
}

func (s *stubSelector) SelectForContentBySlug(ctx context.Context, slug string, opts matching.Options) ([]matching.Match, error) {
	if s.selectBySlug == nil {
		return nil, nil
	}
	return s.selectBySlug(ctx, slug, opts)
}

func (s *stubSelector) SelectForCategory(ctx context.Context, category string, opts matching.Options) ([]matching.Match, error) {
	if s.selectByCategory == nil {
		return nil, nil
	}
	return s.selectByCategory(ctx, category, opts)
}

// stubPinger implements Pinger.
type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(context.Context) error { return s.err }

func newTestServer(t *testing.T, engine Selector, db Pinger) *httptest.Server {
	t.Helper()
	handler := NewHandler(engine, db, nil)
	server := httptest.NewServer(NewRouter(handler, nil).Setup())
	t.Cleanup(server.Close)
	return server
}

type matchResponse struct {
	Status string `json:"status"`
	Data   struct {
		Matches []matching.Match `json:"matches"`
		Count   int              `json:"count"`
	} `json:"data"`
	Error *models.APIError `json:"error"`
}

func decodeMatchResponse(t *testing.T, resp *http.Response) matchResponse {
	t.Helper()
	defer resp.Body.Close()
	var out matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func sampleMatches() []matching.Match {
	return []matching.Match{
		{
			Product:        matching.Product{ID: 1, Name: "Espresso Machine", Category: "Coffee"},
			RelevanceScore: 60,
			FinalScore:     47.5,
			Reasons:        []string{"Category match: Coffee"},
		},
	}
}

func TestMatchBySlug(t *testing.T) {
	var gotSlug string
	var gotOpts matching.Options
	engine := &stubSelector{
		selectBySlug: func(_ context.Context, slug string, opts matching.Options) ([]matching.Match, error) {
			gotSlug = slug
			gotOpts = opts
			return sampleMatches(), nil
		},
	}
	server := newTestServer(t, engine, &stubPinger{})

	resp, err := http.Get(server.URL + "/api/v1/match/content/best-espresso-gear?max_products=5&min_relevance=30&placement=sidebar")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}

	out := decodeMatchResponse(t, resp)
	if out.Status != "success" {
		t.Errorf("status = %q", out.Status)
	}
	if out.Data.Count != 1 || len(out.Data.Matches) != 1 {
		t.Errorf("count = %d, matches = %d", out.Data.Count, len(out.Data.Matches))
	}
	if out.Data.Matches[0].Product.Name != "Espresso Machine" {
		t.Errorf("product = %q", out.Data.Matches[0].Product.Name)
	}

	if gotSlug != "best-espresso-gear" {
		t.Errorf("slug = %q", gotSlug)
	}
	want := matching.Options{MaxProducts: 5, MinRelevanceScore: 30, Placement: "sidebar"}
	if gotOpts != want {
		t.Errorf("opts = %+v, want %+v", gotOpts, want)
	}
}

func TestMatchBySlugEmptyResult(t *testing.T) {
	server := newTestServer(t, &stubSelector{}, &stubPinger{})

	resp, err := http.Get(server.URL + "/api/v1/match/content/unknown-slug")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 for unknown slug", resp.StatusCode)
	}

	out := decodeMatchResponse(t, resp)
	if out.Data.Matches == nil || len(out.Data.Matches) != 0 {
		t.Errorf("matches = %v, want empty array", out.Data.Matches)
	}
	if out.Data.Count != 0 {
		t.Errorf("count = %d, want 0", out.Data.Count)
	}
}

func TestMatchBySlugInvalidParams(t *testing.T) {
	server := newTestServer(t, &stubSelector{}, &stubPinger{})

	tests := []struct {
		name  string
		query string
	}{
		{name: "non-numeric max", query: "?max_products=abc"},
		{name: "max above cap", query: "?max_products=100"},
		{name: "relevance above hundred", query: "?min_relevance=500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(server.URL + "/api/v1/match/content/some-slug" + tt.query)
			if err != nil {
				t.Fatalf("request error: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			out := decodeMatchResponse(t, resp)
			if out.Error == nil || out.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("error = %+v, want VALIDATION_ERROR", out.Error)
			}
		})
	}
}

func TestMatchBySlugEngineError(t *testing.T) {
	engine := &stubSelector{
		selectBySlug: func(context.Context, string, matching.Options) ([]matching.Match, error) {
			return nil, errors.New("query candidates: connection lost")
		},
	}
	server := newTestServer(t, engine, &stubPinger{})

	resp, err := http.Get(server.URL + "/api/v1/match/content/some-slug")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	out := decodeMatchResponse(t, resp)
	if out.Error == nil || out.Error.Code != "DATABASE_ERROR" {
		t.Errorf("error = %+v, want DATABASE_ERROR", out.Error)
	}
}

func TestMatchContent(t *testing.T) {
	var gotContent matching.ContentContext
	engine := &stubSelector{
		selectForContent: func(_ context.Context, content matching.ContentContext, _ matching.Options) ([]matching.Match, error) {
			gotContent = content
			return sampleMatches(), nil
		},
	}
	server := newTestServer(t, engine, &stubPinger{})

	body, _ := json.Marshal(matchContentRequest{
		Title:      "Espresso Guide",
		Body:       "How to pull the perfect shot.",
		Categories: []string{"Coffee"},
		Keywords:   []string{"espresso"},
	})
	resp, err := http.Post(server.URL+"/api/v1/match/content", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	out := decodeMatchResponse(t, resp)
	if out.Data.Count != 1 {
		t.Errorf("count = %d, want 1", out.Data.Count)
	}
	if gotContent.Title != "Espresso Guide" || len(gotContent.Categories) != 1 || len(gotContent.Keywords) != 1 {
		t.Errorf("content = %+v", gotContent)
	}
}

func TestMatchContentInvalidJSON(t *testing.T) {
	server := newTestServer(t, &stubSelector{}, &stubPinger{})

	resp, err := http.Post(server.URL+"/api/v1/match/content", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMatchContentRejectsEmptyKeywords(t *testing.T) {
	server := newTestServer(t, &stubSelector{}, &stubPinger{})

	body, _ := json.Marshal(matchContentRequest{
		Title:    "Espresso Guide",
		Keywords: []string{""},
	})
	resp, err := http.Post(server.URL+"/api/v1/match/content", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	out := decodeMatchResponse(t, resp)
	if out.Error == nil || out.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", out.Error)
	}
}

func TestMatchCategory(t *testing.T) {
	var gotCategory string
	engine := &stubSelector{
		selectByCategory: func(_ context.Context, category string, _ matching.Options) ([]matching.Match, error) {
			gotCategory = category
			return sampleMatches(), nil
		},
	}
	server := newTestServer(t, engine, &stubPinger{})

	resp, err := http.Get(server.URL + "/api/v1/match/category/Coffee")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if gotCategory != "Coffee" {
		t.Errorf("category = %q, want Coffee", gotCategory)
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		server := newTestServer(t, &stubSelector{}, &stubPinger{})

		resp, err := http.Get(server.URL + "/api/v1/health")
		if err != nil {
			t.Fatalf("request error: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}

		var out struct {
			Data models.HealthStatus `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if out.Data.Status != "healthy" || out.Data.Database != "connected" {
			t.Errorf("health = %+v", out.Data)
		}
	})

	t.Run("degraded when database down", func(t *testing.T) {
		server := newTestServer(t, &stubSelector{}, &stubPinger{err: errors.New("down")})

		resp, err := http.Get(server.URL + "/api/v1/health")
		if err != nil {
			t.Fatalf("request error: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}

		var out struct {
			Data models.HealthStatus `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if out.Data.Status != "degraded" {
			t.Errorf("status = %q, want degraded", out.Data.Status)
		}
	})

	t.Run("ready", func(t *testing.T) {
		server := newTestServer(t, &stubSelector{}, &stubPinger{})
		resp, err := http.Get(server.URL + "/api/v1/health/ready")
		if err != nil {
			t.Fatalf("request error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("not ready when database down", func(t *testing.T) {
		server := newTestServer(t, &stubSelector{}, &stubPinger{err: errors.New("down")})
		resp, err := http.Get(server.URL + "/api/v1/health/ready")
		if err != nil {
			t.Fatalf("request error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", resp.StatusCode)
		}
	})

	t.Run("live", func(t *testing.T) {
		server := newTestServer(t, &stubSelector{}, nil)
		resp, err := http.Get(server.URL + "/api/v1/health/live")
		if err != nil {
			t.Fatalf("request error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t, &stubSelector{}, &stubPinger{})

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestGenerateETagStable(t *testing.T) {
	a := generateETag([]byte("payload"))
	b := generateETag([]byte("payload"))
	c := generateETag([]byte("other"))
	if a != b {
		t.Errorf("ETag not stable: %q vs %q", a, b)
	}
	if a == c {
		t.Errorf("ETag collision for different payloads")
	}
}
