package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"vulnguardian/pkg/api"
	"vulnguardian/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger checks that a dependency answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabasePool is the part of the connection pool the readiness probe needs
type DatabasePool interface {
	Pinger
	Stats() sql.DBStats
}

// HealthHandler handles HTTP requests for health check operations
type HealthHandler struct {
	// Logger is used for logging operations within the handler
	Logger logger.LoggerInterface
	// API provides standardized API response patterns
	API api.Api
	// DB is the database connection pool
	DB DatabasePool
	// Cache is the Redis endpoint, nil when not configured
	Cache Pinger
}

// NewHealthHandler creates a new instance of HealthHandler
func NewHealthHandler(appLogger logger.LoggerInterface, apiClient api.Api, db DatabasePool, cache Pinger) *HealthHandler {
	return &HealthHandler{
		Logger: appLogger,
		API:    apiClient,
		DB:     db,
		Cache:  cache,
	}
}

// HealthCheckHandler reports that the process is up
func (h *HealthHandler) HealthCheckHandler(w http.ResponseWriter, req *http.Request) {
	h.API.Success(req.Context(), w, map[string]any{
		"status":  "healthy",
		"message": "Service is running",
	})
}

// ReadinessHandler pings the database and the cache.
// Returns a 200 status code with pool statistics when both answer
// Returns a 503 status code naming every dependency that does not
func (h *HealthHandler) ReadinessHandler(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), readinessTimeout)
	defer cancel()

	var failed []api.ErrorDetail
	check := func(name string, dep Pinger) {
		if err := dep.Ping(ctx); err != nil {
			h.Logger.WarnContext(ctx, "Readiness check failed", "dependency", name, "error", err)
			failed = append(failed, api.ErrorDetail{Field: name, Message: err.Error()})
		}
	}

	check("postgres", h.DB)
	if h.Cache != nil {
		check("redis", h.Cache)
	}

	if len(failed) > 0 {
		h.API.ServiceUnavailable(req.Context(), w, "Dependencies unavailable", failed...)
		return
	}

	stats := h.DB.Stats()
	h.API.Success(req.Context(), w, map[string]any{
		"status": "ready",
		"pool": map[string]any{
			"max_open":      stats.MaxOpenConnections,
			"open":          stats.OpenConnections,
			"in_use":        stats.InUse,
			"idle":          stats.Idle,
			"wait_count":    stats.WaitCount,
			"wait_duration": stats.WaitDuration.String(),
		},
	})
}
