package canvas

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/lumiflow/backend/internal/config"
	"github.com/lumiflow/backend/internal/models"
	"github.com/lumiflow/backend/internal/repository"
	"github.com/lumiflow/backend/internal/store"
)

func newTestSession(t *testing.T) (*Session, repository.Repository, string) {
	t.Helper()

	cfg := &config.Config{
		StorePath: filepath.Join(t.TempDir(), "test.db"),
	}
	st, err := store.NewBoltStore(cfg, zap.NewNop())
	assert.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, st.Close())
	})

	repo := repository.NewStoreRepository(st, zap.NewNop())
	project := models.Project{
		ID:   "canvas-project",
		Name: "Canvas Project",
		DesignData: models.DesignData{
			LightPoints: []models.DesignLightPoint{},
		},
	}
	assert.NoError(t, repo.Insert(context.Background(), &project))

	session := NewSession(repo, zap.NewNop(), project.ID)
	assert.NoError(t, session.Load(context.Background()))
	return session, repo, project.ID
}

func TestLoad_UnknownProject(t *testing.T) {
	_, repo, _ := newTestSession(t)

	session := NewSession(repo, zap.NewNop(), "nonexistent")
	err := session.Load(context.Background())
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestPlaceAt_MapsClickToPercentages(t *testing.T) {
	session, repo, projectID := newTestSession(t)
	ctx := context.Background()

	point, err := session.PlaceAt(ctx, 50, 25, 400, 300)

	assert.NoError(t, err)
	assert.Equal(t, 12.5, point.X)
	assert.InDelta(t, 8.3333, point.Y, 0.0001)
	assert.Equal(t, models.FixtureDownlight, point.FixtureType)
	assert.NotEmpty(t, point.ID)

	// The new point is selected and already persisted.
	selected, ok := session.Selected()
	assert.True(t, ok)
	assert.Equal(t, point.ID, selected.ID)

	stored, err := repo.GetByID(ctx, projectID)
	assert.NoError(t, err)
	assert.Len(t, stored.DesignData.LightPoints, 1)
	assert.Equal(t, point.ID, stored.DesignData.LightPoints[0].ID)
}

func TestPlaceAt_CornersStayInBounds(t *testing.T) {
	session, _, _ := newTestSession(t)
	ctx := context.Background()

	topLeft, err := session.PlaceAt(ctx, 0, 0, 400, 300)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, topLeft.X)
	assert.Equal(t, 0.0, topLeft.Y)

	bottomRight, err := session.PlaceAt(ctx, 400, 300, 400, 300)
	assert.NoError(t, err)
	assert.Equal(t, 100.0, bottomRight.X)
	assert.Equal(t, 100.0, bottomRight.Y)
}

func TestSelect_UnknownPoint(t *testing.T) {
	session, _, _ := newTestSession(t)

	err := session.Select("nonexistent")
	assert.ErrorIs(t, err, ErrPointNotFound)
}

func TestSetFixtureType_ClearsProductLink(t *testing.T) {
	session, repo, projectID := newTestSession(t)
	ctx := context.Background()

	point, err := session.PlaceAt(ctx, 100, 100, 400, 400)
	assert.NoError(t, err)

	// Give the point a product link first, then reassign the category.
	_, err = repo.Update(ctx, projectID, func(p *models.Project) {
		p.DesignData.LightPoints[0].ProductID = "prod001"
	})
	assert.NoError(t, err)
	assert.NoError(t, session.Load(ctx))
	assert.NoError(t, session.Select(point.ID))

	updated, err := session.SetFixtureType(ctx, models.FixtureSpotlight)

	assert.NoError(t, err)
	assert.Equal(t, models.FixtureSpotlight, updated.FixtureType)
	assert.Empty(t, updated.ProductID)
	assert.Equal(t, point.X, updated.X)
	assert.Equal(t, point.Y, updated.Y)
}

func TestSetFixtureType_NoSelection(t *testing.T) {
	session, _, _ := newTestSession(t)

	_, err := session.SetFixtureType(context.Background(), models.FixtureSpotlight)
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestRemoveSelected_RemovesExactlyOne(t *testing.T) {
	session, repo, projectID := newTestSession(t)
	ctx := context.Background()

	first, err := session.PlaceAt(ctx, 40, 60, 400, 300)
	assert.NoError(t, err)
	second, err := session.PlaceAt(ctx, 200, 150, 400, 300)
	assert.NoError(t, err)

	assert.NoError(t, session.Select(first.ID))
	assert.NoError(t, session.RemoveSelected(ctx))

	points := session.Points()
	assert.Len(t, points, 1)
	assert.Equal(t, second.ID, points[0].ID)
	assert.Equal(t, second.X, points[0].X)

	// Selection is cleared with the removed point.
	_, ok := session.Selected()
	assert.False(t, ok)
	assert.ErrorIs(t, session.RemoveSelected(ctx), ErrNoSelection)

	stored, err := repo.GetByID(ctx, projectID)
	assert.NoError(t, err)
	assert.Len(t, stored.DesignData.LightPoints, 1)
}

func TestGlowColor(t *testing.T) {
	tests := []struct {
		temperature models.LightTemperature
		expected    string
	}{
		{models.TemperatureCool, "rgba(173, 216, 230, 0.7)"},
		{models.TemperatureNeutral, "rgba(255, 250, 200, 0.7)"},
		{models.TemperatureWarm, "rgba(255, 223, 100, 0.7)"},
		{models.LightTemperature(""), "rgba(255, 223, 100, 0.7)"},
	}

	for _, tt := range tests {
		t.Run(string(tt.temperature), func(t *testing.T) {
			assert.Equal(t, tt.expected, GlowColor(tt.temperature))
		})
	}
}
