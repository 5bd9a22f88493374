package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atlasdash/internal/services/data"
)

// ConfluenceHandler exposes the Confluence dataset.
type ConfluenceHandler struct {
	dataset *data.ConfluenceDataset
	logger  arbor.ILogger
}

// NewConfluenceHandler creates a Confluence handler.
func NewConfluenceHandler(dataset *data.ConfluenceDataset, logger arbor.ILogger) *ConfluenceHandler {
	return &ConfluenceHandler{
		dataset: dataset,
		logger:  logger,
	}
}

// GetSpacesHandler handles GET /api/confluence/spaces. Passing refresh=true
// fetches from the backend before returning the snapshot.
func (h *ConfluenceHandler) GetSpacesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if r.URL.Query().Get("refresh") == "true" || h.dataset.Snapshot().LastFetchedAt.IsZero() {
		if err := h.dataset.LoadSpaces(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("Space refresh failed")
		}
	}

	WriteJSON(w, http.StatusOK, h.dataset.Snapshot())
}

// SelectSpaceHandler handles POST /api/confluence/select. Selecting a
// space clears the previously loaded content and loads the new space's
// content.
func (h *ConfluenceHandler) SelectSpaceHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Key   string `json:"key"`
		Limit int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !h.dataset.SelectSpace(req.Key) {
		WriteError(w, http.StatusNotFound, "Space not found: "+req.Key)
		return
	}

	if req.Key != "" {
		if err := h.dataset.LoadSpaceContent(r.Context(), req.Key, req.Limit); err != nil {
			h.logger.Warn().Err(err).Str("space", req.Key).Msg("Content load failed")
		}
	}

	WriteJSON(w, http.StatusOK, h.dataset.Snapshot())
}

// ServeSpaceRoutes dispatches /api/confluence/spaces/{key} and
// /api/confluence/spaces/{key}/content.
func (h *ConfluenceHandler) ServeSpaceRoutes(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/confluence/spaces/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		h.spaceDetails(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "content":
		h.spaceContent(w, r, parts[0])
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (h *ConfluenceHandler) spaceDetails(w http.ResponseWriter, r *http.Request, key string) {
	space, err := h.dataset.SpaceDetails(r.Context(), key)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, space)
}

func (h *ConfluenceHandler) spaceContent(w http.ResponseWriter, r *http.Request, key string) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	if err := h.dataset.LoadSpaceContent(r.Context(), key, limit); err != nil {
		WriteServiceError(w, err)
		return
	}

	snap := h.dataset.Snapshot()
	items := make([]map[string]interface{}, 0, len(snap.SpaceContent))
	for i := range snap.SpaceContent {
		content := snap.SpaceContent[i]
		items = append(items, map[string]interface{}{
			"content": content,
			"preview": data.ContentPreview(&content, 280),
		})
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"space_key": key,
		"items":     items,
	})
}
