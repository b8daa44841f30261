// Package catalog provides the immutable product and lighting-standard
// reference tables. The data is embedded at build time and never mutated.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/lumiflow/backend/internal/models"
)

//go:embed catalog.yaml
var rawCatalog []byte

// Catalog is the process-wide reference data: products in a fixed iteration
// order and one lighting standard per room category.
type Catalog struct {
	products  []models.Product
	standards map[models.RoomType]models.LightingStandard
}

type catalogFile struct {
	Products  []models.Product          `yaml:"products"`
	Standards []models.LightingStandard `yaml:"standards"`
}

// New parses the embedded catalog data. Failure means the embedded data is
// broken and the binary is unusable.
func New() (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(rawCatalog, &file); err != nil {
		return nil, fmt.Errorf("failed to parse embedded catalog: %w", err)
	}

	standards := make(map[models.RoomType]models.LightingStandard, len(file.Standards))
	for _, s := range file.Standards {
		if _, dup := standards[s.RoomType]; dup {
			return nil, fmt.Errorf("duplicate lighting standard for room type %q", s.RoomType)
		}
		standards[s.RoomType] = s
	}

	for _, p := range file.Products {
		if !p.Type.Valid() {
			return nil, fmt.Errorf("product %s has unknown fixture type %q", p.ID, p.Type)
		}
		// Lumen counts divide area budgets in the estimation engine.
		if p.Lumens <= 0 {
			return nil, fmt.Errorf("product %s has non-positive lumens", p.ID)
		}
	}

	return &Catalog{
		products:  file.Products,
		standards: standards,
	}, nil
}

// Products returns all catalog products in iteration order.
func (c *Catalog) Products() []models.Product {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// ProductByID returns the catalog entry with the given id.
func (c *Catalog) ProductByID(id string) (models.Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// FirstOfType returns the first product of the given fixture category in
// iteration order.
func (c *Catalog) FirstOfType(t models.FixtureType) (models.Product, bool) {
	for _, p := range c.products {
		if p.Type == t {
			return p, true
		}
	}
	return models.Product{}, false
}

// StandardFor returns the lighting standard for a room category. Lookup is
// exact-match; room categories without a standard report false.
func (c *Catalog) StandardFor(rt models.RoomType) (models.LightingStandard, bool) {
	s, ok := c.standards[rt]
	return s, ok
}
