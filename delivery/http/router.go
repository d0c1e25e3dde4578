package http

import (
	"net/http"

	"vulnguardian/pkg/api"
	"vulnguardian/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Router struct {
	HealthHandler *HealthHandler
	SystemHandler *SystemHandler
	Sessions      SessionAcquirer
	API           api.Api
	AppLogger     logger.LoggerInterface

	modules map[string]http.Handler
}

func NewRouter(healthHandler *HealthHandler, systemHandler *SystemHandler, sessions SessionAcquirer, apiClient api.Api, appLogger logger.LoggerInterface) *Router {
	return &Router{
		HealthHandler: healthHandler,
		SystemHandler: systemHandler,
		Sessions:      sessions,
		API:           apiClient,
		AppLogger:     appLogger,
		modules:       make(map[string]http.Handler),
	}
}

// Mount registers a feature module's handler under /api/v1/{name}.
// Module handlers run behind SessionMiddleware.
func (r *Router) Mount(name string, handler http.Handler) {
	r.modules[name] = handler
}

func (r *Router) SetupRoutes() http.Handler {
	router := chi.NewRouter()

	// Add middleware
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(LoggingMiddleware(r.AppLogger))
	router.Use(middleware.Heartbeat("/ping"))

	router.NotFound(func(w http.ResponseWriter, req *http.Request) {
		r.API.NotFound(req.Context(), w, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		r.API.MethodNotAllowed(req.Context(), w, "Method not allowed")
	})

	router.Get("/health", r.HealthHandler.HealthCheckHandler)
	router.Get("/ready", r.HealthHandler.ReadinessHandler)

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(SessionMiddleware(r.Sessions, r.AppLogger, r.API))

		v1.Get("/system", r.SystemHandler.InfoHandler)
		for name, handler := range r.modules {
			v1.Mount("/"+name, handler)
		}
	})
	return router
}
