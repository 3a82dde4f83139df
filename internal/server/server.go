package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/trailbook/internal/controller"
	"github.com/claude/trailbook/internal/live"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	ctrl   *controller.Controller
	hub    *live.Hub
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey
// leaves the mutating routes open.
func New(ctrl *controller.Controller, hub *live.Hub, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		ctrl:   ctrl,
		hub:    hub,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/api/v1/workouts", s.handleListWorkouts)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Get("/api/v1/status", s.handleStatus)
	s.router.Get("/api/v1/view", s.handleView)
	s.router.Get("/api/v1/events", s.handleEvents)
	s.router.Get("/api/v1/export.gpx", s.handleExportGPX)
	s.router.Handle("/metrics", promhttp.Handler())

	// UI events (API key required when configured)
	s.router.Group(func(r chi.Router) {
		r.Use(s.requireKey)
		r.Post("/api/v1/location", s.handleLocation)
		r.Post("/api/v1/map/click", s.handleMapClick)
		r.Post("/api/v1/form/type", s.handleFormType)
		r.Post("/api/v1/workouts", s.handleSubmit)
		r.Post("/api/v1/record", s.handleRecord)
		r.Post("/api/v1/workouts/{id}/focus", s.handleFocus)
		r.Delete("/api/v1/workouts", s.handleReset)
	})
}

// SetMCP mounts an MCP transport at /mcp behind the same key check as the
// mutating routes.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(s.requireKey).Handle("/mcp", h)
}

func (s *Server) requireKey(next http.Handler) http.Handler {
	if s.apiKey == "" {
		return next
	}
	return APIKeyAuth(s.apiKey)(next)
}
