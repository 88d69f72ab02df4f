package server

import (
	"log/slog"
	"net/http"

	"tienda-dashboard/internal/handlers"
	"tienda-dashboard/internal/services"
)

type Server struct {
	analytics    *services.Analytics
	mux          *http.ServeMux
	logger       *slog.Logger
	pageHandlers *handlers.PageHandlers
	apiHandlers  *handlers.APIHandlers
	sseHandlers  *handlers.SSEHandlers
}

func NewServer(analytics *services.Analytics, logger *slog.Logger) *Server {
	s := &Server{
		analytics:    analytics,
		mux:          http.NewServeMux(),
		logger:       logger,
		pageHandlers: handlers.NewPageHandlers(analytics, logger),
		apiHandlers:  handlers.NewAPIHandlers(analytics, logger),
		sseHandlers:  handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", s.pageHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/charts/{chart}", s.apiHandlers.HandleChart)
	s.mux.HandleFunc("GET /api/records", s.apiHandlers.HandleRecords)
	s.mux.HandleFunc("GET /charts/{chart}", s.apiHandlers.HandleChartSVG)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/controls/{control}", s.sseHandlers.HandleControl)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
	s.mux.HandleFunc("GET /sse/records", s.sseHandlers.HandleRecords)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
