// Package http contains HTTP delivery implementations for the application
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"vulnguardian/pkg/api"
	"vulnguardian/pkg/logger"
	"vulnguardian/pkg/postgres"

	"github.com/go-chi/chi/v5/middleware"
)

// SessionAcquirer hands out database sessions
type SessionAcquirer interface {
	Acquire(ctx context.Context) (*postgres.Session, error)
}

// LoggingMiddleware adds detailed request logging
// It takes a logger instance and returns a middleware function
// The middleware logs information about each HTTP request including method, path, status, duration, and client information
func LoggingMiddleware(logger logger.LoggerInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.InfoContext(r.Context(), "HTTP request completed",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).String(),
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		})
	}
}

// SessionMiddleware scopes one database session to each request.
// The session is stored in the request context (see postgres.SessionFromContext)
// and closed when the handler returns, panics included. Uncommitted work is
// rolled back. Returns a 503 status code when no connection frees up in time.
func SessionMiddleware(sessions SessionAcquirer, logger logger.LoggerInterface, apiClient api.Api) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			session, err := sessions.Acquire(ctx)
			if err != nil {
				switch {
				case errors.Is(err, context.Canceled):
					logger.DebugContext(ctx, "Client went away before a database session was acquired")
				case errors.Is(err, postgres.ErrAcquireTimeout):
					logger.WarnContext(ctx, "Database pool exhausted", "error", err)
					apiClient.ServiceUnavailable(ctx, w, "Database is busy, retry later")
				default:
					logger.ErrorContext(ctx, "Failed to acquire database session", "error", err)
					apiClient.ServiceUnavailable(ctx, w, "Database unavailable")
				}
				return
			}

			defer func() {
				if err := session.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to release database session", "session_id", session.ID(), "error", err)
				}
			}()

			next.ServeHTTP(w, r.WithContext(postgres.ContextWithSession(ctx, session)))
		})
	}
}
