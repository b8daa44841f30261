// Package canvas manages placement of light-point markers on a project's
// floor plan. Every mutation is persisted through the project repository
// before it returns; there is no draft state to lose.
package canvas

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumiflow/backend/internal/models"
	"github.com/lumiflow/backend/internal/repository"
)

// ErrProjectNotFound is returned when the session's project id is absent
// from the store.
var ErrProjectNotFound = errors.New("project not found")

// ErrPointNotFound is returned when an operation targets an unknown light
// point id.
var ErrPointNotFound = errors.New("light point not found")

// ErrNoSelection is returned when a selection-scoped operation runs without
// a selected light point.
var ErrNoSelection = errors.New("no light point selected")

// Session edits the light-point layout of one project.
type Session struct {
	repo      repository.Repository
	logger    *zap.Logger
	projectID string
	points    []models.DesignLightPoint
	selected  string
}

// NewSession creates an unloaded session for the given project.
func NewSession(repo repository.Repository, logger *zap.Logger, projectID string) *Session {
	return &Session{
		repo:      repo,
		logger:    logger,
		projectID: projectID,
	}
}

// Load pulls the project's current light points into the session.
func (s *Session) Load(ctx context.Context) error {
	project, err := s.repo.GetByID(ctx, s.projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrProjectNotFound
	}
	s.points = append([]models.DesignLightPoint(nil), project.DesignData.LightPoints...)
	return nil
}

// Points returns the session's light points in placement order.
func (s *Session) Points() []models.DesignLightPoint {
	return append([]models.DesignLightPoint(nil), s.points...)
}

// Selected returns the currently selected light point.
func (s *Session) Selected() (models.DesignLightPoint, bool) {
	for _, p := range s.points {
		if p.ID == s.selected {
			return p, true
		}
	}
	return models.DesignLightPoint{}, false
}

// PlaceAt maps a click inside the rendered floor-plan element to normalized
// percentage coordinates, appends a new downlight marker there, persists and
// selects it. The handler scopes clicks to the element, so offsets divide out
// to [0,100] by construction.
func (s *Session) PlaceAt(ctx context.Context, clickX, clickY, width, height float64) (models.DesignLightPoint, error) {
	point := models.DesignLightPoint{
		ID:          "light-" + uuid.New().String(),
		X:           clickX / width * 100,
		Y:           clickY / height * 100,
		FixtureType: models.FixtureDownlight,
	}

	updated := append(append([]models.DesignLightPoint(nil), s.points...), point)
	if err := s.persist(ctx, updated); err != nil {
		return models.DesignLightPoint{}, err
	}

	s.points = updated
	s.selected = point.ID
	s.logger.Info("Placed light point",
		zap.String("project_id", s.projectID),
		zap.String("light_id", point.ID),
		zap.Float64("x", point.X),
		zap.Float64("y", point.Y),
	)
	return point, nil
}

// Select marks a placed light point as the edit target.
func (s *Session) Select(id string) error {
	for _, p := range s.points {
		if p.ID == id {
			s.selected = id
			return nil
		}
	}
	return ErrPointNotFound
}

// SetFixtureType reassigns the selected light point's fixture category and
// clears any product link, since the link was category-specific.
func (s *Session) SetFixtureType(ctx context.Context, t models.FixtureType) (models.DesignLightPoint, error) {
	if s.selected == "" {
		return models.DesignLightPoint{}, ErrNoSelection
	}

	updated := append([]models.DesignLightPoint(nil), s.points...)
	var changed *models.DesignLightPoint
	for i := range updated {
		if updated[i].ID == s.selected {
			updated[i].FixtureType = t
			updated[i].ProductID = ""
			changed = &updated[i]
			break
		}
	}
	if changed == nil {
		return models.DesignLightPoint{}, ErrPointNotFound
	}

	if err := s.persist(ctx, updated); err != nil {
		return models.DesignLightPoint{}, err
	}
	s.points = updated
	return *changed, nil
}

// RemoveSelected deletes the selected light point and clears the selection.
// Other points keep their ids, positions and categories.
func (s *Session) RemoveSelected(ctx context.Context) error {
	if s.selected == "" {
		return ErrNoSelection
	}

	updated := make([]models.DesignLightPoint, 0, len(s.points))
	found := false
	for _, p := range s.points {
		if p.ID == s.selected {
			found = true
			continue
		}
		updated = append(updated, p)
	}
	if !found {
		return ErrPointNotFound
	}

	if err := s.persist(ctx, updated); err != nil {
		return err
	}
	s.points = updated
	s.selected = ""
	s.logger.Info("Removed light point", zap.String("project_id", s.projectID))
	return nil
}

func (s *Session) persist(ctx context.Context, points []models.DesignLightPoint) error {
	project, err := s.repo.Update(ctx, s.projectID, func(p *models.Project) {
		p.DesignData.LightPoints = append([]models.DesignLightPoint(nil), points...)
	})
	if err != nil {
		return err
	}
	if project == nil {
		return ErrProjectNotFound
	}
	return nil
}

// GlowColor picks the simulated glow tint for the interior-photo concept
// view from the color-temperature preference.
func GlowColor(temperature models.LightTemperature) string {
	switch temperature {
	case models.TemperatureCool:
		return "rgba(173, 216, 230, 0.7)"
	case models.TemperatureNeutral:
		return "rgba(255, 250, 200, 0.7)"
	default:
		return "rgba(255, 223, 100, 0.7)"
	}
}
