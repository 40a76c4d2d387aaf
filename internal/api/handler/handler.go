// Package handler provides HTTP handlers for all API endpoints. Handlers talk
// to the account store directly for plain reads and writes, and to the
// check-in service and monitor for everything with behaviour attached.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/silema/silema/internal/api/respond"
	"github.com/silema/silema/internal/cache"
	"github.com/silema/silema/internal/checkin"
	"github.com/silema/silema/internal/domain"
	"github.com/silema/silema/internal/monitor"
	"github.com/silema/silema/internal/notifier"
	"github.com/silema/silema/internal/store"
)

// Monitor is the part of the liveness engine exposed over HTTP.
type Monitor interface {
	RunCycle(ctx context.Context) (monitor.CycleReport, error)
	SendTestAlert(ctx context.Context, userID int64) (monitor.TestAlertReport, error)
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store    store.Store
	checkins *checkin.Service
	monitor  Monitor
	cache    *cache.Cache
	logger   *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(st store.Store, checkins *checkin.Service, mon Monitor, c *cache.Cache, logger *slog.Logger) *Handler {
	return &Handler{
		store:    st,
		checkins: checkins,
		monitor:  mon,
		cache:    c,
		logger:   logger,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Silema API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies the account store is reachable.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("Database health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns the number of cached statistics entries and how many are past their deadline.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// MessageResponse acknowledges a write that returns no body of its own.
type MessageResponse struct {
	Message string `json:"message"`
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// userID parses {userID}, writing a 400 when it is malformed.
func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := pathID(r, "userID")
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "User ID must be a positive integer")
	}
	return id, ok
}

// writeError maps domain and store errors onto HTTP responses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		respond.WriteErrorDetail(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Message, verr.Field)
	case errors.Is(err, store.ErrNotFound):
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, monitor.ErrCycleInProgress):
		respond.WriteError(w, http.StatusConflict, "CYCLE_IN_PROGRESS", "A monitor cycle is already running")
	case errors.Is(err, notifier.ErrNotConfigured):
		respond.WriteError(w, http.StatusBadRequest, "SMTP_NOT_CONFIGURED", "Configure SMTP credentials first")
	case errors.Is(err, monitor.ErrNoContacts):
		respond.WriteError(w, http.StatusBadRequest, "NO_CONTACTS", "Add at least one emergency contact first")
	default:
		h.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
	}
}
