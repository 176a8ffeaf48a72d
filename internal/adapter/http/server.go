package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/rio-alert-service/internal/app"
	"github.com/couchcryptid/rio-alert-service/internal/monitor"
	"github.com/couchcryptid/rio-alert-service/internal/view"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the services the HTTP API sits on.
type Deps struct {
	Flows    *app.Flows
	Monitor  *monitor.Service
	Renderer *view.Renderer
	Ready    sharedobs.ReadinessChecker
}

// Server exposes the launch flow, the gated screens, the river data API, and
// the health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	flows      *app.Flows
	monitor    *monitor.Service
	renderer   *view.Renderer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with every route registered.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		flows:    deps.Flows,
		monitor:  deps.Monitor,
		renderer: deps.Renderer,
		logger:   logger,
	}

	// Launch lifecycle.
	mux.HandleFunc("POST /v1/launches", s.handleStartLaunch)
	mux.HandleFunc("GET /v1/launches/{id}", s.handleGetLaunch)
	mux.HandleFunc("POST /v1/launches/{id}/splash", s.handleSplash)
	mux.HandleFunc("POST /v1/launches/{id}/onboarding", s.handleOnboarding)
	mux.HandleFunc("POST /v1/launches/{id}/register", s.handleRegister)
	mux.HandleFunc("POST /v1/launches/{id}/login", s.handleLogin)
	mux.HandleFunc("POST /v1/launches/{id}/location", s.handleLocation)
	mux.HandleFunc("POST /v1/launches/{id}/logout", s.handleLogout)

	// Screens, answered only once the launch is on Main.
	mux.HandleFunc("GET /v1/launches/{id}/screens/{screen}", s.handleScreen)
	mux.HandleFunc("GET /v1/launches/{id}/rivers/{riverID}", s.handleRiverDetails)

	// River data.
	mux.HandleFunc("GET /v1/rivers", s.handleRivers)
	mux.HandleFunc("GET /v1/rivers/{id}/alert", s.handleRiverAlert)
	mux.HandleFunc("PUT /v1/rivers/{id}/level", s.handleUpdateLevel)
	mux.HandleFunc("GET /v1/shelters", s.handleShelters)
	mux.HandleFunc("GET /v1/forecast", s.handleForecast)

	// The backend contract the riverapi client speaks, so one instance can
	// serve another.
	mux.HandleFunc("GET /rios", s.handleRivers)
	mux.HandleFunc("GET /alerta/{id}", s.handleBackendAlert)
	mux.HandleFunc("GET /abrigos", s.handleShelters)
	mux.HandleFunc("GET /previsao/{cidade}", s.handleBackendForecast)
	mux.HandleFunc("PUT /rios/{id}/nivel", s.handleUpdateLevel)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
