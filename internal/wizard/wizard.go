// Package wizard drives the guided project-creation flow: a four-step draft
// mutated by explicit typed commands and validated on submit. Commands
// replace the original UI's field-keyed change callbacks so every mutation
// is type-checked and replayable.
package wizard

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lumiflow/backend/internal/models"
)

// Wizard steps, in order.
const (
	StepProjectInfo    = 1
	StepSpaceDetails   = 2
	StepInteriorPhotos = 3
	StepPreferences    = 4

	totalSteps = 4
)

// DefaultProjectName is used when the draft is submitted without a name.
const DefaultProjectName = "New Lighting Project"

// ValidationError reports a required field missing at submission, carrying
// the first step the user must return to. No partial save happens.
type ValidationError struct {
	Step    int
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %d: %s", e.Step, e.Message)
}

// Draft is the in-progress project state owned by a wizard session.
type Draft struct {
	Name           string
	Client         models.ClientInfo
	Space          models.SpaceInfo
	Preferences    models.LightingPreferences
	FloorPlan      *models.FileRef
	InteriorPhotos []models.FileRef
}

// Command is a single typed mutation of the draft.
type Command interface {
	apply(d *Draft)
}

type SetProjectName struct {
	Value string `json:"value"`
}

func (c SetProjectName) apply(d *Draft) { d.Name = c.Value }

type SetClientName struct {
	Value string `json:"value"`
}

func (c SetClientName) apply(d *Draft) { d.Client.Name = c.Value }

type SetClientPhone struct {
	Value string `json:"value"`
}

func (c SetClientPhone) apply(d *Draft) { d.Client.Phone = c.Value }

type SetClientEmail struct {
	Value string `json:"value"`
}

func (c SetClientEmail) apply(d *Draft) { d.Client.Email = c.Value }

type SetProjectType struct {
	Value models.ProjectType `json:"value"`
}

func (c SetProjectType) apply(d *Draft) { d.Space.ProjectType = c.Value }

type SetCustomProjectType struct {
	Value string `json:"value"`
}

func (c SetCustomProjectType) apply(d *Draft) { d.Space.CustomProjectType = c.Value }

type SetRoomType struct {
	Value models.RoomType `json:"value"`
}

func (c SetRoomType) apply(d *Draft) { d.Space.RoomType = c.Value }

type SetCustomRoomType struct {
	Value string `json:"value"`
}

func (c SetCustomRoomType) apply(d *Draft) { d.Space.CustomRoomType = c.Value }

type SetArea struct {
	Value float64 `json:"value"`
}

func (c SetArea) apply(d *Draft) {
	if c.Value > 0 {
		v := c.Value
		d.Space.Area = &v
	} else {
		d.Space.Area = nil
	}
}

type SetDimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

func (c SetDimensions) apply(d *Draft) {
	if c.Length > 0 && c.Width > 0 {
		d.Space.Dimensions = &models.Dimensions{Length: c.Length, Width: c.Width}
	} else {
		d.Space.Dimensions = nil
	}
}

type SetAgeGroup struct {
	Value string `json:"value"`
}

func (c SetAgeGroup) apply(d *Draft) { d.Preferences.AgeGroup = c.Value }

type SetLightTemperature struct {
	Value models.LightTemperature `json:"value"`
}

func (c SetLightTemperature) apply(d *Draft) { d.Preferences.LightTemperature = c.Value }

type SetLightBrightness struct {
	Value models.LightBrightness `json:"value"`
}

func (c SetLightBrightness) apply(d *Draft) { d.Preferences.LightBrightness = c.Value }

type SetLightingStyle struct {
	Value models.LightingStyle `json:"value"`
}

func (c SetLightingStyle) apply(d *Draft) { d.Preferences.LightingStyle = c.Value }

type SetUsagePurposes struct {
	Values []models.UsagePurpose `json:"values"`
}

func (c SetUsagePurposes) apply(d *Draft) {
	d.Preferences.UsagePurposes = append([]models.UsagePurpose(nil), c.Values...)
}

type AttachFloorPlan struct {
	File models.FileRef `json:"file"`
}

func (c AttachFloorPlan) apply(d *Draft) {
	file := c.File
	d.FloorPlan = &file
}

type RemoveFloorPlan struct{}

func (c RemoveFloorPlan) apply(d *Draft) { d.FloorPlan = nil }

type AttachInteriorPhoto struct {
	File models.FileRef `json:"file"`
}

func (c AttachInteriorPhoto) apply(d *Draft) {
	d.InteriorPhotos = append(d.InteriorPhotos, c.File)
}

type RemoveInteriorPhoto struct {
	Index int `json:"index"`
}

func (c RemoveInteriorPhoto) apply(d *Draft) {
	if c.Index < 0 || c.Index >= len(d.InteriorPhotos) {
		return
	}
	d.InteriorPhotos = append(d.InteriorPhotos[:c.Index], d.InteriorPhotos[c.Index+1:]...)
}

// ParseCommand decodes a named command and its JSON payload into the typed
// command it stands for.
func ParseCommand(name string, payload json.RawMessage) (Command, error) {
	var cmd Command
	switch name {
	case "set_project_name":
		cmd = &SetProjectName{}
	case "set_client_name":
		cmd = &SetClientName{}
	case "set_client_phone":
		cmd = &SetClientPhone{}
	case "set_client_email":
		cmd = &SetClientEmail{}
	case "set_project_type":
		cmd = &SetProjectType{}
	case "set_custom_project_type":
		cmd = &SetCustomProjectType{}
	case "set_room_type":
		cmd = &SetRoomType{}
	case "set_custom_room_type":
		cmd = &SetCustomRoomType{}
	case "set_area":
		cmd = &SetArea{}
	case "set_dimensions":
		cmd = &SetDimensions{}
	case "set_age_group":
		cmd = &SetAgeGroup{}
	case "set_light_temperature":
		cmd = &SetLightTemperature{}
	case "set_light_brightness":
		cmd = &SetLightBrightness{}
	case "set_lighting_style":
		cmd = &SetLightingStyle{}
	case "set_usage_purposes":
		cmd = &SetUsagePurposes{}
	case "attach_floor_plan":
		cmd = &AttachFloorPlan{}
	case "remove_floor_plan":
		cmd = &RemoveFloorPlan{}
	case "attach_interior_photo":
		cmd = &AttachInteriorPhoto{}
	case "remove_interior_photo":
		cmd = &RemoveInteriorPhoto{}
	default:
		return nil, fmt.Errorf("unknown wizard command %q", name)
	}

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, cmd); err != nil {
			return nil, fmt.Errorf("invalid payload for %s: %w", name, err)
		}
	}
	return cmd, nil
}

// Session holds a draft and the current wizard step.
type Session struct {
	step  int
	draft Draft
}

// NewSession starts a fresh draft at step 1 with the original's defaults.
func NewSession() *Session {
	return &Session{
		step: StepProjectInfo,
		draft: Draft{
			Name: DefaultProjectName,
			Space: models.SpaceInfo{
				ProjectType: models.ProjectTypeApartment,
				RoomType:    models.RoomLivingRoom,
			},
			Preferences: models.LightingPreferences{
				LightTemperature: models.TemperatureNeutral,
				LightBrightness:  models.BrightnessMedium,
				LightingStyle:    models.StyleModern,
			},
		},
	}
}

// Step returns the current step (1-based).
func (s *Session) Step() int { return s.step }

// Next advances one step, clamped to the last step.
func (s *Session) Next() int {
	if s.step < totalSteps {
		s.step++
	}
	return s.step
}

// Prev goes back one step, clamped to the first step.
func (s *Session) Prev() int {
	if s.step > StepProjectInfo {
		s.step--
	}
	return s.step
}

// Apply runs a command against the draft.
func (s *Session) Apply(cmd Command) {
	cmd.apply(&s.draft)
}

// Draft returns a copy of the current draft state.
func (s *Session) Draft() Draft {
	d := s.draft
	d.InteriorPhotos = append([]models.FileRef(nil), s.draft.InteriorPhotos...)
	return d
}

// Submit validates the draft and builds the project to persist. On a
// validation failure it returns the first incomplete step; nothing is saved.
func (s *Session) Submit() (*models.Project, error) {
	if err := s.validate(); err != nil {
		s.step = err.Step
		return nil, err
	}

	name := s.draft.Name
	if name == "" {
		name = DefaultProjectName
	}

	photos := s.draft.InteriorPhotos
	if photos == nil {
		photos = []models.FileRef{}
	}

	now := time.Now().UTC()
	return &models.Project{
		ID:             uuid.New().String(),
		Name:           name,
		ClientInfo:     s.draft.Client,
		SpaceInfo:      s.draft.Space,
		Preferences:    s.draft.Preferences,
		FloorPlan:      s.draft.FloorPlan,
		InteriorPhotos: photos,
		DesignData:     models.DesignData{LightPoints: []models.DesignLightPoint{}},
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (s *Session) validate() *ValidationError {
	if s.draft.Client.Name == "" {
		return &ValidationError{Step: StepProjectInfo, Message: "client name is required"}
	}
	if s.draft.Space.ProjectType == "" {
		return &ValidationError{Step: StepProjectInfo, Message: "project type is required"}
	}
	if s.draft.Space.RoomType == "" {
		return &ValidationError{Step: StepSpaceDetails, Message: "room type is required"}
	}
	if len(s.draft.Preferences.UsagePurposes) == 0 {
		return &ValidationError{Step: StepPreferences, Message: "at least one usage purpose is required"}
	}
	return nil
}
