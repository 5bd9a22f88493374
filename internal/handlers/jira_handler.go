package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atlasdash/internal/services/data"
)

// JiraHandler exposes the Jira dataset.
type JiraHandler struct {
	dataset *data.JiraDataset
	logger  arbor.ILogger
}

// NewJiraHandler creates a Jira handler.
func NewJiraHandler(dataset *data.JiraDataset, logger arbor.ILogger) *JiraHandler {
	return &JiraHandler{
		dataset: dataset,
		logger:  logger,
	}
}

// GetProjectsHandler handles GET /api/jira/projects. Passing refresh=true
// fetches from the backend before returning the snapshot.
func (h *JiraHandler) GetProjectsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if r.URL.Query().Get("refresh") == "true" || h.dataset.Snapshot().LastFetchedAt.IsZero() {
		if err := h.dataset.LoadProjects(r.Context()); err != nil {
			// Stale items stay visible; the snapshot carries the error.
			h.logger.Warn().Err(err).Msg("Project refresh failed")
		}
	}

	WriteJSON(w, http.StatusOK, h.dataset.Snapshot())
}

// SelectProjectHandler handles POST /api/jira/select.
func (h *JiraHandler) SelectProjectHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !h.dataset.SelectProject(req.Key) {
		WriteError(w, http.StatusNotFound, "Project not found: "+req.Key)
		return
	}

	WriteJSON(w, http.StatusOK, h.dataset.Snapshot())
}

// ServeProjectRoutes dispatches GET /api/jira/projects/{key}.
func (h *JiraHandler) ServeProjectRoutes(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/api/jira/projects/")
	if key == "" || strings.Contains(key, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	project, err := h.dataset.ProjectDetails(r.Context(), key)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, project)
}
