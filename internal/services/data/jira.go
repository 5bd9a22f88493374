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

// JiraSnapshot is a point-in-time copy of the Jira dataset.
type JiraSnapshot struct {
	Projects        []models.JiraProject `json:"projects"`
	SelectedProject *models.JiraProject  `json:"selected_project"`
	IsLoading       bool                 `json:"is_loading"`
	Error           string               `json:"error,omitempty"`
	LastFetchedAt   time.Time            `json:"last_fetched_at,omitzero"`
}

// JiraDataset holds the fetched Jira state. Loads that fail keep the
// previously fetched items so the dashboard degrades to stale data rather
// than an empty view. Overlapping loads are not serialized; the response
// that lands last wins.
type JiraDataset struct {
	mu              sync.RWMutex
	projects        []models.JiraProject
	selectedProject *models.JiraProject
	isLoading       bool
	lastError       string
	lastFetchedAt   time.Time

	backend interfaces.BackendClient
	logger  arbor.ILogger
}

// NewJiraDataset creates an empty Jira dataset.
func NewJiraDataset(backend interfaces.BackendClient, logger arbor.ILogger) *JiraDataset {
	return &JiraDataset{
		backend: backend,
		logger:  logger,
	}
}

// LoadProjects fetches the project list from the backend.
func (d *JiraDataset) LoadProjects(ctx context.Context) error {
	d.mu.Lock()
	d.isLoading = true
	d.lastError = ""
	d.mu.Unlock()

	projects, err := d.backend.JiraProjects(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.isLoading = false
	if err != nil {
		d.lastError = gateway.UserMessage(err)
		d.logger.Warn().Err(err).Msg("Failed to load Jira projects")
		return err
	}

	d.projects = projects
	d.lastFetchedAt = time.Now()
	d.logger.Info().Int("count", len(projects)).Msg("Loaded Jira projects")
	return nil
}

// SelectProject marks a project as selected by key. Passing an empty key
// clears the selection. The key must be in the loaded list.
func (d *JiraDataset) SelectProject(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if key == "" {
		d.selectedProject = nil
		return true
	}
	for i := range d.projects {
		if d.projects[i].Key == key {
			project := d.projects[i]
			d.selectedProject = &project
			return true
		}
	}
	return false
}

// ProjectDetails fetches a single project by key from the backend. The
// result refreshes the matching entry in the loaded list.
func (d *JiraDataset) ProjectDetails(ctx context.Context, key string) (*models.JiraProject, error) {
	project, err := d.backend.JiraProject(ctx, key)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	for i := range d.projects {
		if d.projects[i].Key == key {
			d.projects[i] = *project
			break
		}
	}
	d.mu.Unlock()
	return project, nil
}

// Reset clears all fetched Jira state.
func (d *JiraDataset) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.projects = nil
	d.selectedProject = nil
	d.isLoading = false
	d.lastError = ""
	d.lastFetchedAt = time.Time{}
}

// Snapshot returns a copy of the current dataset.
func (d *JiraDataset) Snapshot() JiraSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := JiraSnapshot{
		Projects:      make([]models.JiraProject, len(d.projects)),
		IsLoading:     d.isLoading,
		Error:         d.lastError,
		LastFetchedAt: d.lastFetchedAt,
	}
	copy(snap.Projects, d.projects)
	if d.selectedProject != nil {
		project := *d.selectedProject
		snap.SelectedProject = &project
	}
	return snap
}
