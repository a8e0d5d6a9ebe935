// Package handler provides HTTP handlers for all API endpoints. Handlers
// read the in-memory match store directly — no service layer.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/skynolimit/topscores/internal/api/respond"
	"github.com/skynolimit/topscores/internal/config"
	"github.com/skynolimit/topscores/internal/db"
	"github.com/skynolimit/topscores/internal/feed"
	"github.com/skynolimit/topscores/internal/notify"
	"github.com/skynolimit/topscores/internal/profile"
	"github.com/skynolimit/topscores/internal/sim"
	"github.com/skynolimit/topscores/internal/store"
	"github.com/skynolimit/topscores/internal/teams"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	cfg        *config.Config
	live       *store.Store
	engine     *sim.Engine
	profiles   *profile.Cache
	refresher  *feed.Refresher
	dispatcher *notify.Dispatcher
	envelopes  notify.EnvelopeStore
	registry   *teams.Registry
	pool       *db.Pool // nil when no database is configured
	logger     *slog.Logger
}

// Deps bundles the collaborators the handlers need.
type Deps struct {
	Cfg        *config.Config
	Live       *store.Store
	Engine     *sim.Engine
	Profiles   *profile.Cache
	Refresher  *feed.Refresher
	Dispatcher *notify.Dispatcher
	Envelopes  notify.EnvelopeStore
	Registry   *teams.Registry
	Pool       *db.Pool
	Logger     *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(d Deps) *Handler {
	return &Handler{
		cfg:        d.Cfg,
		live:       d.Live,
		engine:     d.Engine,
		profiles:   d.Profiles,
		refresher:  d.Refresher,
		dispatcher: d.Dispatcher,
		envelopes:  d.Envelopes,
		registry:   d.Registry,
		pool:       d.Pool,
		logger:     d.Logger,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Top Scores API",
		"version": "2.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status along with store counts.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/healthcheck [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"matches":   h.live.Count(),
		"predicted": h.engine.Store().Count(),
		"users":     len(h.profiles.All()),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"database": "not configured",
		})
		return
	}
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "unhealthy",
			"database": "disconnected",
			"error":    "Database connection check failed",
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"database": "connected",
	})
}
