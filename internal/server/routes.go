package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route - content events and log lines for live consumers
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Content catalog
	mux.HandleFunc("/api/posts", s.app.ContentHandler.ListPostsHandler)
	mux.HandleFunc("/api/pages", s.app.ContentHandler.ListPagesHandler)
	mux.HandleFunc("/api/content/", s.handleContentRoutes) // GET /{slug} and /{slug}/revisions
	mux.HandleFunc("/api/tags", s.app.ContentHandler.TagsHandler)
	mux.HandleFunc("/api/categories", s.app.ContentHandler.CategoriesHandler)
	mux.HandleFunc("/api/stats", s.app.ContentHandler.StatsHandler)

	// API routes - Catalog maintenance
	mux.HandleFunc("/api/scan", s.app.ScanHandler.TriggerScanHandler)
	mux.HandleFunc("/api/validate", s.app.ContentHandler.ValidateHandler)
	mux.HandleFunc("/api/import/html", s.app.ImportHandler.ImportHTMLHandler)
	mux.HandleFunc("/api/sync/github", s.app.SyncHandler.SyncGitHubHandler)

	// API routes - Scheduler
	mux.HandleFunc("/api/scheduler/jobs", s.app.ScanHandler.JobStatusHandler)

	// API routes - Logs
	mux.HandleFunc("/api/logs/recent", s.app.WSHandler.GetRecentLogsHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/shutdown", s.ShutdownHandler) // Graceful shutdown endpoint

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleContentRoutes routes /api/content/{slug} requests to the
// appropriate handler
func (s *Server) handleContentRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if len(path) <= len("/api/content/") {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	// GET /api/content/{slug}/revisions
	if strings.HasSuffix(path, "/revisions") {
		RouteByMethod(w, r, MethodRouter{
			http.MethodGet: s.app.ContentHandler.ListRevisionsHandler,
		})
		return
	}

	// GET /api/content/{slug}
	RouteByMethod(w, r, MethodRouter{
		http.MethodGet: s.app.ContentHandler.GetContentHandler,
	})
}
