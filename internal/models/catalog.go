package models

// Product is an immutable catalog entry for a purchasable light fixture.
type Product struct {
	ID               string      `json:"id" yaml:"id"`
	Name             string      `json:"name" yaml:"name"`
	Type             FixtureType `json:"type" yaml:"type"`
	Power            int         `json:"power" yaml:"power"`   // Watts
	Lumens           int         `json:"lumens" yaml:"lumens"` // luminous output
	ColorTemperature int         `json:"color_temperature" yaml:"color_temperature"` // Kelvin, 0 = variable/RGB
	CRI              int         `json:"cri" yaml:"cri"`
	BeamAngle        int         `json:"beam_angle,omitempty" yaml:"beam_angle,omitempty"` // degrees
	ImageURL         string      `json:"image_url" yaml:"image_url"`
	Price            int64       `json:"price" yaml:"price"` // VND
}

// WithPresentationID returns a copy of the product carrying a distinct id so
// repeated recommendations render with stable unique keys. The copy is not a
// new catalog entry.
func (p Product) WithPresentationID(id string) Product {
	p.ID = id
	return p
}

// LightingStandard defines the illuminance band and color requirements for a
// room category. One standard per room category, exact-match lookup.
type LightingStandard struct {
	RoomType   RoomType `json:"room_type" yaml:"room_type"`
	MinLux     int      `json:"min_lux" yaml:"min_lux"`
	TargetLux  int      `json:"target_lux" yaml:"target_lux"`
	MaxLux     int      `json:"max_lux" yaml:"max_lux"`
	MinCCT     int      `json:"min_cct" yaml:"min_cct"` // Kelvin
	MaxCCT     int      `json:"max_cct" yaml:"max_cct"` // Kelvin
	MinCRI     int      `json:"min_cri" yaml:"min_cri"`
	Uniformity float64  `json:"uniformity,omitempty" yaml:"uniformity,omitempty"` // U0, 0 = unset
}

// LightingCalculationResults is the derived output of an estimation run.
// It is never persisted.
type LightingCalculationResults struct {
	AverageLux          int       `json:"average_lux"`
	Uniformity          float64   `json:"uniformity"` // U0
	RecommendedProducts []Product `json:"recommended_products"`
	TotalCost           int64     `json:"total_cost"`
}
