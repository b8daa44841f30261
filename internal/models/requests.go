package models

// CreateProjectRequest represents the request body for creating a project
// directly, without going through the wizard.
type CreateProjectRequest struct {
	Name        string              `json:"name"`
	ClientInfo  ClientInfo          `json:"client_info" binding:"required"`
	SpaceInfo   SpaceInfo           `json:"space_info" binding:"required"`
	Preferences LightingPreferences `json:"lighting_preferences"`
}

// PlaceLightRequest carries the click geometry used to place a light point:
// the pointer offset within the rendered floor-plan element and that
// element's rendered size in pixels.
type PlaceLightRequest struct {
	ClickX float64 `json:"click_x" binding:"min=0"`
	ClickY float64 `json:"click_y" binding:"min=0"`
	Width  float64 `json:"width" binding:"required,gt=0"`
	Height float64 `json:"height" binding:"required,gt=0"`
}

// UpdateLightRequest represents a fixture-category reassignment for a placed
// light point.
type UpdateLightRequest struct {
	FixtureType FixtureType `json:"fixture_type" binding:"required"`
}

// ProjectResponse wraps a single project in the API response.
type ProjectResponse struct {
	Data Project `json:"data"`
}

// ProjectsResponse wraps multiple projects in the API response.
type ProjectsResponse struct {
	Data []Project `json:"data"`
}

// ResultsResponse wraps estimation results in the API response.
type ResultsResponse struct {
	Data LightingCalculationResults `json:"data"`
}

// LightPointResponse wraps a single placed light point.
type LightPointResponse struct {
	Data DesignLightPoint `json:"data"`
}

// UploadResponse describes an accepted upload.
type UploadResponse struct {
	Data FileRef `json:"data"`
}

// ProductsResponse wraps the product catalog in the API response.
type ProductsResponse struct {
	Data []Product `json:"data"`
}

// ErrorResponse represents an error response from the API. Redirect carries
// the path the client should navigate to after showing the message, and Step
// the first incomplete wizard step when validation fails.
type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Step     int    `json:"step,omitempty"`
}
