package http

import (
	"net/http"

	"vulnguardian/pkg/api"
	"vulnguardian/pkg/logger"
	"vulnguardian/pkg/postgres"
)

// SystemInfo describes the running application
type SystemInfo struct {
	Name    string
	Version string
	Modules []string
}

// SystemHandler serves application and database information
type SystemHandler struct {
	Info   SystemInfo
	Logger logger.LoggerInterface
	API    api.Api
}

// NewSystemHandler creates a new instance of SystemHandler
func NewSystemHandler(info SystemInfo, appLogger logger.LoggerInterface, apiClient api.Api) *SystemHandler {
	return &SystemHandler{
		Info:   info,
		Logger: appLogger,
		API:    apiClient,
	}
}

// InfoHandler returns the application name, version, enabled modules and
// the database server version, read through the request's session.
// Must be mounted behind SessionMiddleware.
func (h *SystemHandler) InfoHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, ok := postgres.SessionFromContext(ctx)
	if !ok {
		h.Logger.ErrorContext(ctx, "No database session in request context")
		h.API.InternalServerError(ctx, w, "Database session missing")
		return
	}

	var serverVersion string
	if err := session.DB().Raw("SELECT version()").Scan(&serverVersion).Error; err != nil {
		h.Logger.ErrorContext(ctx, "Failed to read database version", "session_id", session.ID(), "error", err)
		h.API.InternalServerError(ctx, w, "Failed to query database")
		return
	}

	h.API.Success(ctx, w, map[string]any{
		"name":     h.Info.Name,
		"version":  h.Info.Version,
		"modules":  h.Info.Modules,
		"database": serverVersion,
	})
}
