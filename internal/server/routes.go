package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Dashboard payloads
	mux.HandleFunc("/api/scores", s.app.PayloadHandler.ScoresHandler)
	mux.HandleFunc("/api/news", s.app.PayloadHandler.NewsHandler)

	// External scheduler trigger
	mux.HandleFunc("/api/poll", RouteByMethod(MethodRouter{
		http.MethodPost: s.app.PollHandler.PollHandler,
	}))

	// Archive
	mux.HandleFunc("/api/runs", s.app.HistoryHandler.RunsHandler)
	mux.HandleFunc("/api/runs/", s.app.HistoryHandler.RunHandler)
	mux.HandleFunc("/api/history", s.app.HistoryHandler.TickerHistoryHandler)

	// System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
