package data

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atlasdash/internal/gateway"
	"github.com/ternarybob/atlasdash/internal/interfaces"
	"github.com/ternarybob/atlasdash/internal/models"
)

// DefaultContentLimit bounds space content fetches when no limit is given.
const DefaultContentLimit = 25

// ConfluenceSnapshot is a point-in-time copy of the Confluence dataset.
type ConfluenceSnapshot struct {
	Spaces        []models.ConfluenceSpace   `json:"spaces"`
	SelectedSpace *models.ConfluenceSpace    `json:"selected_space"`
	SpaceContent  []models.ConfluenceContent `json:"space_content"`
	IsLoading     bool                       `json:"is_loading"`
	Error         string                     `json:"error,omitempty"`
	LastFetchedAt time.Time                  `json:"last_fetched_at,omitzero"`
}

// ConfluenceDataset holds the fetched Confluence state. Selecting a space
// always clears the previously loaded content, even when reselecting the
// same space. Overlapping content loads are not cancelled; the response
// that lands last wins.
type ConfluenceDataset struct {
	mu            sync.RWMutex
	spaces        []models.ConfluenceSpace
	selectedSpace *models.ConfluenceSpace
	spaceContent  []models.ConfluenceContent
	isLoading     bool
	lastError     string
	lastFetchedAt time.Time

	backend interfaces.BackendClient
	logger  arbor.ILogger
}

// NewConfluenceDataset creates an empty Confluence dataset.
func NewConfluenceDataset(backend interfaces.BackendClient, logger arbor.ILogger) *ConfluenceDataset {
	return &ConfluenceDataset{
		backend: backend,
		logger:  logger,
	}
}

// LoadSpaces fetches the space list from the backend. A failed load keeps
// previously fetched spaces.
func (d *ConfluenceDataset) LoadSpaces(ctx context.Context) error {
	d.mu.Lock()
	d.isLoading = true
	d.lastError = ""
	d.mu.Unlock()

	spaces, err := d.backend.ConfluenceSpaces(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.isLoading = false
	if err != nil {
		d.lastError = gateway.UserMessage(err)
		d.logger.Warn().Err(err).Msg("Failed to load Confluence spaces")
		return err
	}

	d.spaces = spaces
	d.lastFetchedAt = time.Now()
	d.logger.Info().Int("count", len(spaces)).Msg("Loaded Confluence spaces")
	return nil
}

// SelectSpace marks a space as selected by key and clears any loaded
// content. Passing an empty key clears the selection; content is cleared in
// every case.
func (d *ConfluenceDataset) SelectSpace(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.spaceContent = nil

	if key == "" {
		d.selectedSpace = nil
		return true
	}
	for i := range d.spaces {
		if d.spaces[i].Key == key {
			space := d.spaces[i]
			d.selectedSpace = &space
			return true
		}
	}
	d.selectedSpace = nil
	return false
}

// LoadSpaceContent fetches content for a space. A non-positive limit uses
// DefaultContentLimit. Overlapping requests are not cancelled; whichever
// response lands last replaces the content list.
func (d *ConfluenceDataset) LoadSpaceContent(ctx context.Context, spaceKey string, limit int) error {
	if limit <= 0 {
		limit = DefaultContentLimit
	}

	d.mu.Lock()
	d.isLoading = true
	d.lastError = ""
	d.mu.Unlock()

	content, err := d.backend.ConfluenceSpaceContent(ctx, spaceKey, limit)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.isLoading = false
	if err != nil {
		d.lastError = gateway.UserMessage(err)
		d.logger.Warn().Err(err).Str("space", spaceKey).Msg("Failed to load space content")
		return err
	}

	d.spaceContent = content
	d.logger.Info().Str("space", spaceKey).Int("count", len(content)).Msg("Loaded space content")
	return nil
}

// SpaceDetails fetches a single space by key from the backend and refreshes
// the matching entry in the loaded list.
func (d *ConfluenceDataset) SpaceDetails(ctx context.Context, key string) (*models.ConfluenceSpace, error) {
	space, err := d.backend.ConfluenceSpace(ctx, key)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	for i := range d.spaces {
		if d.spaces[i].Key == key {
			d.spaces[i] = *space
			break
		}
	}
	d.mu.Unlock()
	return space, nil
}

// Reset clears all fetched Confluence state.
func (d *ConfluenceDataset) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spaces = nil
	d.selectedSpace = nil
	d.spaceContent = nil
	d.isLoading = false
	d.lastError = ""
	d.lastFetchedAt = time.Time{}
}

// Snapshot returns a copy of the current dataset.
func (d *ConfluenceDataset) Snapshot() ConfluenceSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := ConfluenceSnapshot{
		Spaces:        make([]models.ConfluenceSpace, len(d.spaces)),
		SpaceContent:  make([]models.ConfluenceContent, len(d.spaceContent)),
		IsLoading:     d.isLoading,
		Error:         d.lastError,
		LastFetchedAt: d.lastFetchedAt,
	}
	copy(snap.Spaces, d.spaces)
	copy(snap.SpaceContent, d.spaceContent)
	if d.selectedSpace != nil {
		space := *d.selectedSpace
		snap.SelectedSpace = &space
	}
	return snap
}
