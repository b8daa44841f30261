// Package models contains the data models for the application.
package models

import (
	"time"
)

// ProjectType categorizes the building a project belongs to.
type ProjectType string

const (
	ProjectTypeApartment ProjectType = "apartment"
	ProjectTypeTownhouse ProjectType = "townhouse"
	ProjectTypeVilla     ProjectType = "villa"
	ProjectTypeResort    ProjectType = "resort"
	ProjectTypeOffice    ProjectType = "office"
	ProjectTypeHotel     ProjectType = "hotel"
	ProjectTypeStore     ProjectType = "store"
	ProjectTypeOther     ProjectType = "other"
)

// RoomType categorizes the room being lit. Lighting standards are keyed by it.
type RoomType string

const (
	RoomLivingRoom RoomType = "living-room"
	RoomKitchen    RoomType = "kitchen"
	RoomBedroom    RoomType = "bedroom"
	RoomHallway    RoomType = "hallway"
	RoomBathroom   RoomType = "bathroom"
	RoomDiningRoom RoomType = "dining-room"
	RoomOffice     RoomType = "office-room"
	RoomOther      RoomType = "other"
)

// LightTemperature is the preferred color-temperature bucket.
type LightTemperature string

const (
	TemperatureWarm    LightTemperature = "warm"    // 2700-3000K
	TemperatureNeutral LightTemperature = "neutral" // 3500-4500K
	TemperatureCool    LightTemperature = "cool"    // 5000-6500K
)

// LightBrightness is the preferred brightness bucket.
type LightBrightness string

const (
	BrightnessHigh   LightBrightness = "high"
	BrightnessMedium LightBrightness = "medium"
	BrightnessLow    LightBrightness = "low"
)

// LightingStyle is the preferred design style.
type LightingStyle string

const (
	StyleMinimalist   LightingStyle = "minimalist"
	StyleModern       LightingStyle = "modern"
	StyleClassic      LightingStyle = "classic"
	StyleIndustrial   LightingStyle = "industrial"
	StyleScandinavian LightingStyle = "scandinavian"
)

// UsagePurpose is one of the activities the space is used for.
type UsagePurpose string

const (
	PurposeReading       UsagePurpose = "reading"
	PurposeRelaxation    UsagePurpose = "relaxation"
	PurposeWork          UsagePurpose = "work"
	PurposeDining        UsagePurpose = "dining"
	PurposeEntertainment UsagePurpose = "entertainment"
	PurposeDisplay       UsagePurpose = "display"
)

// FixtureType is the category of a light fixture.
type FixtureType string

const (
	FixtureDownlight    FixtureType = "downlight"
	FixtureSpotlight    FixtureType = "spotlight"
	FixtureStripLight   FixtureType = "strip-light"
	FixturePendant      FixtureType = "pendant"
	FixtureWallLight    FixtureType = "wall-light"
	FixtureAmbientPanel FixtureType = "ambient-panel"
)

// FixtureTypes lists all fixture categories in presentation order.
func FixtureTypes() []FixtureType {
	return []FixtureType{
		FixtureDownlight,
		FixtureSpotlight,
		FixtureStripLight,
		FixturePendant,
		FixtureWallLight,
		FixtureAmbientPanel,
	}
}

// Valid reports whether t is a known fixture category.
func (t FixtureType) Valid() bool {
	switch t {
	case FixtureDownlight, FixtureSpotlight, FixtureStripLight,
		FixturePendant, FixtureWallLight, FixtureAmbientPanel:
		return true
	}
	return false
}

// ClientInfo holds the contact details of the project's client.
type ClientInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Dimensions is a room footprint in meters.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

// SpaceInfo describes the space a project lights.
type SpaceInfo struct {
	ProjectType       ProjectType `json:"project_type"`
	CustomProjectType string      `json:"custom_project_type,omitempty"`
	RoomType          RoomType    `json:"room_type"`
	CustomRoomType    string      `json:"custom_room_type,omitempty"`
	Area              *float64    `json:"area,omitempty"` // m²
	Dimensions        *Dimensions `json:"dimensions,omitempty"`
}

// LightingPreferences captures what the client wants from the lighting.
type LightingPreferences struct {
	AgeGroup         string           `json:"age_group"`
	LightTemperature LightTemperature `json:"light_temperature"`
	LightBrightness  LightBrightness  `json:"light_brightness"`
	LightingStyle    LightingStyle    `json:"lighting_style"`
	UsagePurposes    []UsagePurpose   `json:"usage_purposes"`
}

// HasPurpose reports whether the purpose set contains p. Order-insensitive.
func (lp LightingPreferences) HasPurpose(p UsagePurpose) bool {
	for _, v := range lp.UsagePurposes {
		if v == p {
			return true
		}
	}
	return false
}

// FileRef points at an uploaded file. The bytes live in the in-memory upload
// store and do not survive a restart; only this metadata is persisted.
type FileRef struct {
	UploadID    string `json:"upload_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	PreviewURL  string `json:"preview_url"`
}

// DesignLightPoint is a fixture marker placed on the floor plan. X and Y are
// percentages (0-100) of the rendered floor-plan bounds.
type DesignLightPoint struct {
	ID          string      `json:"id"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	FixtureType FixtureType `json:"fixture_type"`
	ProductID   string      `json:"product_id,omitempty"`
}

// DesignData holds everything produced in the design phase.
type DesignData struct {
	LightPoints []DesignLightPoint `json:"light_points"`
}

// Project is the aggregate root: its floor plan, photos and light points have
// no lifecycle of their own.
type Project struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	ClientInfo     ClientInfo          `json:"client_info"`
	SpaceInfo      SpaceInfo           `json:"space_info"`
	Preferences    LightingPreferences `json:"lighting_preferences"`
	FloorPlan      *FileRef            `json:"floor_plan,omitempty"`
	InteriorPhotos []FileRef           `json:"interior_photos"`
	DesignData     DesignData          `json:"design_data"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}
