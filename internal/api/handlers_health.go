// Shoplink - Content Publishing and Affiliate Commerce Platform
// Copyright 2026 Shoplink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplink/shoplink

package api

import (
	"net/http"
	"time"

	"github.com/shoplink/shoplink/internal/models"
)

// Health handles GET /api/v1/health. Reports "degraded" when the
// database is unreachable but still returns 200; probes should use
// the ready endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "connected"
	status := "healthy"
	if h.db == nil || h.db.Ping(r.Context()) != nil {
		dbStatus = "disconnected"
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HealthStatus{
			Status:    status,
			Version:   Version,
			Database:  dbStatus,
			Timestamp: time.Now(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 503 until the database is reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.db == nil || h.db.Ping(r.Context()) != nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "Database not reachable", nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"ready": true,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
