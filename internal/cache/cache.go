// Package cache provides in-process caching of estimation results.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/lumiflow/backend/internal/models"
)

const (
	// Cache key prefix
	estimateKeyPrefix = "estimate:"

	// Default TTL for cached items
	defaultTTL = 5 * time.Minute
)

// Cache defines the interface for estimation-result caching. Estimation is
// idempotent, so a stale entry is only ever a freshness concern.
type Cache interface {
	// Get retrieves cached results for a project.
	Get(projectID string) (*models.LightingCalculationResults, bool)

	// Set stores results for a project.
	Set(projectID string, results *models.LightingCalculationResults)

	// Invalidate drops the cached results for a project.
	Invalidate(projectID string)
}

// ResultsCache implements Cache with an in-process TTL cache.
type ResultsCache struct {
	cache  *gocache.Cache
	logger *zap.Logger
}

// NewResultsCache creates a results cache with the default TTL.
func NewResultsCache(logger *zap.Logger) *ResultsCache {
	return &ResultsCache{
		cache:  gocache.New(defaultTTL, 2*defaultTTL),
		logger: logger,
	}
}

// Get retrieves cached results for a project.
func (c *ResultsCache) Get(projectID string) (*models.LightingCalculationResults, bool) {
	v, found := c.cache.Get(estimateKeyPrefix + projectID)
	if !found {
		return nil, false
	}
	results, ok := v.(*models.LightingCalculationResults)
	if !ok {
		return nil, false
	}
	c.logger.Debug("Cache hit", zap.String("project_id", projectID))
	return results, true
}

// Set stores results for a project.
func (c *ResultsCache) Set(projectID string, results *models.LightingCalculationResults) {
	c.cache.SetDefault(estimateKeyPrefix+projectID, results)
	c.logger.Debug("Cached estimation results", zap.String("project_id", projectID))
}

// Invalidate drops the cached results for a project. Called after any design
// mutation so the next estimate reflects current data.
func (c *ResultsCache) Invalidate(projectID string) {
	c.cache.Delete(estimateKeyPrefix + projectID)
}
