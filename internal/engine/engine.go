// Package engine implements the lighting estimation and product
// recommendation heuristics. Estimation is a deterministic lookup over the
// catalog's standards table; the configured delay stands in for where a real
// photometric computation would run.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/lumiflow/backend/internal/catalog"
	"github.com/lumiflow/backend/internal/config"
	"github.com/lumiflow/backend/internal/models"
)

const (
	fallbackLux        = 250
	fallbackUniformity = 0.5
	defaultUniformity  = 0.4
	fallbackBundleSize = 3
)

// Engine estimates illumination metrics and recommends a product bundle.
type Engine struct {
	catalog *catalog.Catalog
	delay   time.Duration
	logger  *zap.Logger
}

// New creates an estimation engine with the simulated latency from config.
func New(cat *catalog.Catalog, cfg *config.Config, logger *zap.Logger) *Engine {
	return &Engine{
		catalog: cat,
		delay:   cfg.EstimateDelay,
		logger:  logger,
	}
}

// Estimate computes the lighting estimate for a project. The computation
// itself never fails; it degrades to fixed defaults when the project has no
// matching standard or no floor area. The only possible error is context
// cancellation while waiting out the simulated latency, in which case the
// result is discarded.
func (e *Engine) Estimate(ctx context.Context, project *models.Project) (*models.LightingCalculationResults, error) {
	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	results := e.compute(project)

	e.logger.Info("Estimated lighting",
		zap.String("project_id", project.ID),
		zap.Int("average_lux", results.AverageLux),
		zap.Int("recommended", len(results.RecommendedProducts)),
		zap.Int64("total_cost", results.TotalCost),
	)
	return results, nil
}

func (e *Engine) compute(project *models.Project) *models.LightingCalculationResults {
	space := project.SpaceInfo
	prefs := project.Preferences

	standard, ok := e.catalog.StandardFor(space.RoomType)
	if !ok || space.Area == nil || *space.Area <= 0 {
		return e.fallback()
	}

	averageLux := standard.TargetLux
	uniformity := standard.Uniformity
	if uniformity == 0 {
		uniformity = defaultUniformity
	}

	var recommended []models.Product
	var totalCost int64

	lumensNeeded := *space.Area * float64(averageLux)

	// General lighting: copies of the first downlight, one per lumen budget
	// slice. Presentation ids keep repeated entries distinct for rendering.
	if main, found := e.catalog.FirstOfType(models.FixtureDownlight); found {
		count := int(math.Ceil(lumensNeeded / float64(main.Lumens)))
		for i := 0; i < count; i++ {
			recommended = append(recommended, main.WithPresentationID(fmt.Sprintf("%s_%d", main.ID, i)))
			totalCost += main.Price
		}
	}

	// Task lighting for display or reading purposes.
	if prefs.HasPurpose(models.PurposeDisplay) || prefs.HasPurpose(models.PurposeReading) {
		if spot, found := e.catalog.FirstOfType(models.FixtureSpotlight); found {
			recommended = append(recommended, spot.WithPresentationID(spot.ID+"_task"))
			totalCost += spot.Price
		}
	}

	// Accent lighting for modern styles or entertainment spaces.
	if prefs.LightingStyle == models.StyleModern || prefs.HasPurpose(models.PurposeEntertainment) {
		if strip, found := e.catalog.FirstOfType(models.FixtureStripLight); found {
			recommended = append(recommended, strip.WithPresentationID(strip.ID+"_accent"))
			totalCost += strip.Price
		}
	}

	switch prefs.LightBrightness {
	case models.BrightnessHigh:
		averageLux = int(math.Round(float64(averageLux) * 1.2))
	case models.BrightnessLow:
		averageLux = int(math.Round(float64(averageLux) * 0.8))
	}

	if recommended == nil {
		recommended = []models.Product{}
	}

	return &models.LightingCalculationResults{
		AverageLux:          averageLux,
		Uniformity:          uniformity,
		RecommendedProducts: recommended,
		TotalCost:           totalCost,
	}
}

// fallback is the engine's availability guarantee: a fixed bundle of the
// first catalog products at fixed metrics, regardless of preferences.
func (e *Engine) fallback() *models.LightingCalculationResults {
	products := e.catalog.Products()
	if len(products) > fallbackBundleSize {
		products = products[:fallbackBundleSize]
	}

	recommended := make([]models.Product, 0, len(products))
	var totalCost int64
	for i, p := range products {
		recommended = append(recommended, p.WithPresentationID(fmt.Sprintf("%s_fallback_%d", p.ID, i)))
		totalCost += p.Price
	}

	return &models.LightingCalculationResults{
		AverageLux:          fallbackLux,
		Uniformity:          fallbackUniformity,
		RecommendedProducts: recommended,
		TotalCost:           totalCost,
	}
}
