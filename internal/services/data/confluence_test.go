package data

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atlasdash/internal/gateway"
	"github.com/ternarybob/atlasdash/internal/models"
)

func testSpaces() []models.ConfluenceSpace {
	return []models.ConfluenceSpace{
		{ID: "1", Key: "DOCS", Name: "Documentation"},
		{ID: "2", Key: "TEAM", Name: "Team Space"},
	}
}

func testContent(titles ...string) []models.ConfluenceContent {
	result := make([]models.ConfluenceContent, 0, len(titles))
	for i, title := range titles {
		result = append(result, models.ConfluenceContent{
			ID:    string(rune('a' + i)),
			Type:  "page",
			Title: title,
		})
	}
	return result
}

func loadedDataset(t *testing.T, backend *mockBackend) *ConfluenceDataset {
	t.Helper()
	dataset := NewConfluenceDataset(backend, arbor.NewLogger())
	require.NoError(t, dataset.LoadSpaces(context.Background()))
	return dataset
}

func TestConfluenceLoadSpaces(t *testing.T) {
	backend := newMockBackend()
	backend.spacesFunc = func(ctx context.Context) ([]models.ConfluenceSpace, error) {
		return testSpaces(), nil
	}
	dataset := loadedDataset(t, backend)

	snap := dataset.Snapshot()
	assert.Len(t, snap.Spaces, 2)
	assert.Empty(t, snap.Error)
	assert.False(t, snap.LastFetchedAt.IsZero())
}

func TestConfluenceSelectSpace_AlwaysClearsContent(t *testing.T) {
	backend := newMockBackend()
	backend.spacesFunc = func(ctx context.Context) ([]models.ConfluenceSpace, error) {
		return testSpaces(), nil
	}
	backend.spaceContentFunc = func(ctx context.Context, key string, limit int) ([]models.ConfluenceContent, error) {
		return testContent("Getting Started", "Architecture"), nil
	}
	dataset := loadedDataset(t, backend)

	require.True(t, dataset.SelectSpace("DOCS"))
	require.NoError(t, dataset.LoadSpaceContent(context.Background(), "DOCS", 0))
	require.Len(t, dataset.Snapshot().SpaceContent, 2)

	// Switching spaces clears the old space's content immediately
	require.True(t, dataset.SelectSpace("TEAM"))
	assert.Empty(t, dataset.Snapshot().SpaceContent)

	// Reselecting the same space also clears
	require.NoError(t, dataset.LoadSpaceContent(context.Background(), "TEAM", 0))
	require.Len(t, dataset.Snapshot().SpaceContent, 2)
	require.True(t, dataset.SelectSpace("TEAM"))
	assert.Empty(t, dataset.Snapshot().SpaceContent)

	// Clearing the selection clears content too
	require.True(t, dataset.SelectSpace(""))
	snap := dataset.Snapshot()
	assert.Nil(t, snap.SelectedSpace)
	assert.Empty(t, snap.SpaceContent)
}

func TestConfluenceLoadSpaceContent_LateResponseLands(t *testing.T) {
	backend := newMockBackend()
	backend.spacesFunc = func(ctx context.Context) ([]models.ConfluenceSpace, error) {
		return testSpaces(), nil
	}

	release := make(chan struct{})
	backend.spaceContentFunc = func(ctx context.Context, key string, limit int) ([]models.ConfluenceContent, error) {
		<-release
		return testContent("Late Page"), nil
	}
	dataset := loadedDataset(t, backend)
	require.True(t, dataset.SelectSpace("DOCS"))

	done := make(chan error, 1)
	go func() {
		done <- dataset.LoadSpaceContent(context.Background(), "DOCS", 0)
	}()

	// The user switches spaces while the DOCS fetch is in flight; the
	// response that lands last still replaces the content list.
	require.True(t, dataset.SelectSpace("TEAM"))
	close(release)
	require.NoError(t, <-done)

	snap := dataset.Snapshot()
	require.NotNil(t, snap.SelectedSpace)
	assert.Equal(t, "TEAM", snap.SelectedSpace.Key)
	require.Len(t, snap.SpaceContent, 1)
	assert.Equal(t, "Late Page", snap.SpaceContent[0].Title)
}

func TestConfluenceLoadSpaceContent_LandsWithoutSelection(t *testing.T) {
	backend := newMockBackend()
	backend.spacesFunc = func(ctx context.Context) ([]models.ConfluenceSpace, error) {
		return testSpaces(), nil
	}
	backend.spaceContentFunc = func(ctx context.Context, key string, limit int) ([]models.ConfluenceContent, error) {
		return testContent("Getting Started", "Architecture"), nil
	}
	dataset := loadedDataset(t, backend)

	require.NoError(t, dataset.LoadSpaceContent(context.Background(), "DOCS", 10))

	snap := dataset.Snapshot()
	assert.Nil(t, snap.SelectedSpace)
	assert.Len(t, snap.SpaceContent, 2)
}

func TestConfluenceLoadSpaceContent_DefaultLimit(t *testing.T) {
	backend := newMockBackend()
	backend.spacesFunc = func(ctx context.Context) ([]models.ConfluenceSpace, error) {
		return testSpaces(), nil
	}

	var gotLimit int
	backend.spaceContentFunc = func(ctx context.Context, key string, limit int) ([]models.ConfluenceContent, error) {
		gotLimit = limit
		return nil, nil
	}
	dataset := loadedDataset(t, backend)
	require.True(t, dataset.SelectSpace("DOCS"))

	require.NoError(t, dataset.LoadSpaceContent(context.Background(), "DOCS", 0))
	assert.Equal(t, DefaultContentLimit, gotLimit)

	require.NoError(t, dataset.LoadSpaceContent(context.Background(), "DOCS", 50))
	assert.Equal(t, 50, gotLimit)
}

func TestConfluenceLoadSpaces_OverlappingLoadsLastWriteWins(t *testing.T) {
	backend := newMockBackend()

	releaseFirst := make(chan struct{})
	var calls atomic.Int32
	backend.spacesFunc = func(ctx context.Context) ([]models.ConfluenceSpace, error) {
		if calls.Add(1) == 1 {
			// First request stalls and resolves after the second
			<-releaseFirst
			return []models.ConfluenceSpace{{ID: "1", Key: "OLD", Name: "Old Result"}}, nil
		}
		return []models.ConfluenceSpace{{ID: "2", Key: "NEW", Name: "New Result"}}, nil
	}
	dataset := NewConfluenceDataset(backend, arbor.NewLogger())

	done := make(chan error, 1)
	go func() {
		done <- dataset.LoadSpaces(context.Background())
	}()

	// Second load starts and finishes while the first is still in flight.
	// Spin until the mock has seen the first call to keep ordering stable.
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)
	require.NoError(t, dataset.LoadSpaces(context.Background()))

	close(releaseFirst)
	require.NoError(t, <-done)

	snap := dataset.Snapshot()
	require.Len(t, snap.Spaces, 1)
	assert.Equal(t, "OLD", snap.Spaces[0].Key, "the response that lands last wins")
}

func TestConfluenceLoadSpaces_FailureKeepsStaleItems(t *testing.T) {
	backend := newMockBackend()
	backend.spacesFunc = func(ctx context.Context) ([]models.ConfluenceSpace, error) {
		return testSpaces(), nil
	}
	dataset := loadedDataset(t, backend)

	backend.spacesFunc = func(ctx context.Context) ([]models.ConfluenceSpace, error) {
		return nil, &gateway.StatusError{Status: 503, StatusText: "Service Unavailable"}
	}
	require.Error(t, dataset.LoadSpaces(context.Background()))

	snap := dataset.Snapshot()
	assert.Len(t, snap.Spaces, 2)
	assert.NotEmpty(t, snap.Error)
}

func TestConfluenceSelectSpace_UnknownKey(t *testing.T) {
	backend := newMockBackend()
	backend.spacesFunc = func(ctx context.Context) ([]models.ConfluenceSpace, error) {
		return testSpaces(), nil
	}
	dataset := loadedDataset(t, backend)

	assert.False(t, dataset.SelectSpace("MISSING"))
	assert.Nil(t, dataset.Snapshot().SelectedSpace)
}

func TestConfluenceLoadSpaceContent_Error(t *testing.T) {
	backend := newMockBackend()
	backend.spacesFunc = func(ctx context.Context) ([]models.ConfluenceSpace, error) {
		return testSpaces(), nil
	}
	backend.spaceContentFunc = func(ctx context.Context, key string, limit int) ([]models.ConfluenceContent, error) {
		return nil, errors.New("boom")
	}
	dataset := loadedDataset(t, backend)
	require.True(t, dataset.SelectSpace("DOCS"))

	require.Error(t, dataset.LoadSpaceContent(context.Background(), "DOCS", 0))
	snap := dataset.Snapshot()
	assert.NotEmpty(t, snap.Error)
	assert.False(t, snap.IsLoading)
}
