package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// OAuth redirect from the authorization server
	mux.HandleFunc("/auth/callback", s.app.AuthHandler.HandleOAuthCallback)

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Authentication
	mux.HandleFunc("/api/status", s.app.AuthHandler.GetAuthStatusHandler) // GET - credential snapshot
	mux.HandleFunc("/api/auth/", s.app.AuthHandler.ServeAuthRoutes)       // POST /{service}/{login|oauth/start|logout|clear-error}

	// API routes - Jira
	mux.HandleFunc("/api/jira/projects", s.app.JiraHandler.GetProjectsHandler)
	mux.HandleFunc("/api/jira/select", s.app.JiraHandler.SelectProjectHandler)
	mux.HandleFunc("/api/jira/projects/", s.app.JiraHandler.ServeProjectRoutes) // GET /{key}

	// API routes - Confluence
	mux.HandleFunc("/api/confluence/spaces", s.app.ConfluenceHandler.GetSpacesHandler)
	mux.HandleFunc("/api/confluence/select", s.app.ConfluenceHandler.SelectSpaceHandler)
	mux.HandleFunc("/api/confluence/spaces/", s.app.ConfluenceHandler.ServeSpaceRoutes) // GET /{key}, /{key}/content

	// API routes - Notifications
	mux.HandleFunc("/api/notifications", s.app.NotificationHandler.ServeNotifications)        // GET (list), DELETE (clear)
	mux.HandleFunc("/api/notifications/", s.app.NotificationHandler.ServeNotificationRoutes) // DELETE /{id}

	// API routes - System
	mux.HandleFunc("/api/connections", s.app.StatusHandler.ConnectionsHandler)
	mux.HandleFunc("/api/version", s.app.StatusHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.StatusHandler.HealthHandler)

	return mux
}
