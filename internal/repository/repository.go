// Package repository provides project persistence against the local store.
// The whole collection is serialized as one JSON array under one well-known
// key, mirroring the single-user browser-storage layout it replaces.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumiflow/backend/internal/models"
	"github.com/lumiflow/backend/internal/store"
)

// Repository defines the interface for project data operations.
type Repository interface {
	// List retrieves all projects, newest-created first.
	List(ctx context.Context) ([]models.Project, error)

	// GetByID retrieves a project by its ID. Returns (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*models.Project, error)

	// Create builds a new project from the request and appends it.
	Create(ctx context.Context, req *models.CreateProjectRequest) (*models.Project, error)

	// Insert appends an already-built project (e.g. from the wizard).
	Insert(ctx context.Context, project *models.Project) error

	// Update applies mutate to the project with the given id in a
	// read-modify-write cycle and bumps its UpdatedAt. Last writer wins.
	// Returns (nil, nil) when the id is absent.
	Update(ctx context.Context, id string, mutate func(*models.Project)) (*models.Project, error)

	// Delete removes a project by id. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error
}

// StoreRepository implements Repository on top of the local key-value store.
type StoreRepository struct {
	store  store.Store
	logger *zap.Logger
}

// NewStoreRepository creates a store-backed project repository.
func NewStoreRepository(st store.Store, logger *zap.Logger) *StoreRepository {
	return &StoreRepository{
		store:  st,
		logger: logger,
	}
}

// SampleProject returns the seed project used when the store is empty or its
// payload cannot be decoded. Fixed values keep the self-heal deterministic.
func SampleProject() models.Project {
	area := 25.0
	return models.Project{
		ID:   "sample-project-001",
		Name: "Sample: Apartment Living Room",
		ClientInfo: models.ClientInfo{
			Name:  "Sample Client",
			Phone: "0123456789",
			Email: "sample@example.com",
		},
		SpaceInfo: models.SpaceInfo{
			ProjectType: models.ProjectTypeApartment,
			RoomType:    models.RoomLivingRoom,
			Area:        &area,
			Dimensions:  &models.Dimensions{Length: 5, Width: 5},
		},
		Preferences: models.LightingPreferences{
			AgeGroup:         "25-34",
			LightTemperature: models.TemperatureNeutral,
			LightBrightness:  models.BrightnessMedium,
			LightingStyle:    models.StyleModern,
			UsagePurposes:    []models.UsagePurpose{models.PurposeRelaxation, models.PurposeEntertainment},
		},
		InteriorPhotos: []models.FileRef{},
		DesignData: models.DesignData{
			LightPoints: []models.DesignLightPoint{
				{ID: "spl1", X: 20, Y: 30, FixtureType: models.FixtureDownlight, ProductID: "prod001"},
				{ID: "spl2", X: 80, Y: 70, FixtureType: models.FixtureSpotlight, ProductID: "prod002"},
			},
		},
		CreatedAt: time.Date(2023, 11, 15, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2023, 11, 16, 0, 0, 0, 0, time.UTC),
	}
}

// load reads the full collection, self-healing to a single sample project if
// the store is empty or holds a payload that no longer decodes. Corruption is
// logged, never surfaced.
func (r *StoreRepository) load() []models.Project {
	raw, found, err := r.store.Load(store.ProjectsKey)
	if err == nil && found {
		var projects []models.Project
		if err := json.Unmarshal(raw, &projects); err == nil {
			return projects
		}
		r.logger.Warn("Stored project collection is corrupt, reseeding",
			zap.Int("size", len(raw)))
	} else if err != nil {
		r.logger.Warn("Failed to read project collection, reseeding", zap.Error(err))
	}

	seeded := []models.Project{SampleProject()}
	if err := r.save(seeded); err != nil {
		r.logger.Error("Failed to persist seeded collection", zap.Error(err))
	}
	return seeded
}

func (r *StoreRepository) save(projects []models.Project) error {
	raw, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("failed to serialize projects: %w", err)
	}
	if err := r.store.Save(store.ProjectsKey, raw); err != nil {
		return fmt.Errorf("failed to persist projects: %w", err)
	}
	return nil
}

// List retrieves all projects, newest-created first.
func (r *StoreRepository) List(ctx context.Context) ([]models.Project, error) {
	projects := r.load()
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

// GetByID retrieves a project by its ID.
func (r *StoreRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	for _, p := range r.load() {
		if p.ID == id {
			project := p
			return &project, nil
		}
	}
	return nil, nil
}

// Create builds a new project from the request and appends it. If the store
// write fails the project is not added and the error is returned.
func (r *StoreRepository) Create(ctx context.Context, req *models.CreateProjectRequest) (*models.Project, error) {
	now := time.Now().UTC()
	project := &models.Project{
		ID:             uuid.New().String(),
		Name:           req.Name,
		ClientInfo:     req.ClientInfo,
		SpaceInfo:      req.SpaceInfo,
		Preferences:    req.Preferences,
		InteriorPhotos: []models.FileRef{},
		DesignData:     models.DesignData{LightPoints: []models.DesignLightPoint{}},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := r.Insert(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Insert appends an already-built project.
func (r *StoreRepository) Insert(ctx context.Context, project *models.Project) error {
	projects := append(r.load(), *project)
	if err := r.save(projects); err != nil {
		r.logger.Error("Failed to create project", zap.String("id", project.ID), zap.Error(err))
		return err
	}
	r.logger.Info("Created project", zap.String("id", project.ID), zap.String("name", project.Name))
	return nil
}

// Update applies mutate to a single project and bumps UpdatedAt.
func (r *StoreRepository) Update(ctx context.Context, id string, mutate func(*models.Project)) (*models.Project, error) {
	projects := r.load()
	for i := range projects {
		if projects[i].ID != id {
			continue
		}
		mutate(&projects[i])
		projects[i].UpdatedAt = time.Now().UTC()
		if err := r.save(projects); err != nil {
			r.logger.Error("Failed to update project", zap.String("id", id), zap.Error(err))
			return nil, err
		}
		updated := projects[i]
		r.logger.Info("Updated project", zap.String("id", id))
		return &updated, nil
	}
	return nil, nil
}

// Delete removes a project by id. Unknown ids leave the collection unchanged.
func (r *StoreRepository) Delete(ctx context.Context, id string) error {
	projects := r.load()
	kept := projects[:0]
	for _, p := range projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(projects) {
		return nil
	}
	if err := r.save(kept); err != nil {
		r.logger.Error("Failed to delete project", zap.String("id", id), zap.Error(err))
		return err
	}
	r.logger.Info("Deleted project", zap.String("id", id))
	return nil
}
