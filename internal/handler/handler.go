// Package handler provides the business logic handlers for the wizard,
// project, design-canvas, estimation and report operations.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lumiflow/backend/internal/cache"
	"github.com/lumiflow/backend/internal/canvas"
	"github.com/lumiflow/backend/internal/catalog"
	"github.com/lumiflow/backend/internal/engine"
	"github.com/lumiflow/backend/internal/exporter"
	"github.com/lumiflow/backend/internal/models"
	"github.com/lumiflow/backend/internal/report"
	"github.com/lumiflow/backend/internal/repository"
	"github.com/lumiflow/backend/internal/store"
	"github.com/lumiflow/backend/internal/upload"
	"github.com/lumiflow/backend/internal/wizard"
)

// projectsPath is where clients are redirected after a not-found error.
const projectsPath = "/projects"

// Handler provides HTTP handlers for all application operations. The app is
// single-user: one wizard draft and one canvas session per project at a time.
type Handler struct {
	repo     repository.Repository
	cache    cache.Cache
	catalog  *catalog.Catalog
	engine   *engine.Engine
	reports  *report.Formatter
	exports  *exporter.Exporter
	uploads  *upload.Store
	logger   *zap.Logger

	mu       sync.Mutex
	wizard   *wizard.Session
	canvases map[string]*canvas.Session
}

// NewHandler creates the application handler.
func NewHandler(
	repo repository.Repository,
	resultsCache cache.Cache,
	cat *catalog.Catalog,
	eng *engine.Engine,
	reports *report.Formatter,
	exports *exporter.Exporter,
	uploads *upload.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		repo:     repo,
		cache:    resultsCache,
		catalog:  cat,
		engine:   eng,
		reports:  reports,
		exports:  exports,
		uploads:  uploads,
		logger:   logger,
		canvases: make(map[string]*canvas.Session),
	}
}

// RegisterRoutes registers the handler routes on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products", h.ListProducts)

	rg.GET("/projects", h.ListProjects)
	rg.POST("/projects", h.CreateProject)
	rg.GET("/projects/:id", h.GetProject)
	rg.DELETE("/projects/:id", h.DeleteProject)

	rg.POST("/projects/:id/estimate", h.Estimate)
	rg.GET("/projects/:id/report", h.Report)

	rg.POST("/projects/:id/lights", h.PlaceLight)
	rg.POST("/projects/:id/lights/:lightID/select", h.SelectLight)
	rg.PATCH("/projects/:id/lights/:lightID", h.UpdateLight)
	rg.DELETE("/projects/:id/lights/:lightID", h.DeleteLight)
	rg.POST("/projects/:id/visualize", h.Visualize)

	rg.POST("/wizard", h.StartWizard)
	rg.GET("/wizard", h.WizardState)
	rg.POST("/wizard/commands", h.ApplyWizardCommand)
	rg.POST("/wizard/next", h.WizardNext)
	rg.POST("/wizard/prev", h.WizardPrev)
	rg.POST("/wizard/submit", h.SubmitWizard)

	rg.POST("/uploads/floor-plan", h.UploadFloorPlan)
	rg.POST("/uploads/photos", h.UploadPhoto)
	rg.GET("/uploads/:id", h.GetUpload)
}

// ListProducts returns the immutable product catalog.
func (h *Handler) ListProducts(c *gin.Context) {
	c.JSON(http.StatusOK, models.ProductsResponse{Data: h.catalog.Products()})
}

// ListProjects returns all projects, newest-created first.
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list projects", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: "failed to retrieve projects",
		})
		return
	}
	c.JSON(http.StatusOK, models.ProjectsResponse{Data: projects})
}

// CreateProject creates a project directly from a full request body.
func (h *Handler) CreateProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid create request", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	if req.ClientInfo.Name == "" || req.SpaceInfo.ProjectType == "" || req.SpaceInfo.RoomType == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_failed",
			Message: "client name, project type and room type are required",
			Step:    wizard.StepProjectInfo,
		})
		return
	}

	project, err := h.repo.Create(c.Request.Context(), &req)
	if err != nil {
		h.storeWriteError(c, "failed to create project", err)
		return
	}

	c.JSON(http.StatusCreated, models.ProjectResponse{Data: *project})
}

// GetProject retrieves a single project by ID.
func (h *Handler) GetProject(c *gin.Context) {
	project, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Failed to get project", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: "failed to retrieve project",
		})
		return
	}
	if project == nil {
		h.projectNotFound(c)
		return
	}
	c.JSON(http.StatusOK, models.ProjectResponse{Data: *project})
}

// DeleteProject removes a project. Deleting an unknown id is a no-op so the
// operation is idempotent.
func (h *Handler) DeleteProject(c *gin.Context) {
	id := c.Param("id")
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.storeWriteError(c, "failed to delete project", err)
		return
	}

	h.cache.Invalidate(id)
	h.mu.Lock()
	delete(h.canvases, id)
	h.mu.Unlock()

	c.Status(http.StatusNoContent)
}

// Estimate runs (or returns the cached result of) the lighting estimation
// for a project.
func (h *Handler) Estimate(c *gin.Context) {
	id := c.Param("id")

	project, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: "failed to retrieve project",
		})
		return
	}
	if project == nil {
		h.projectNotFound(c)
		return
	}

	// Try cache first
	if results, found := h.cache.Get(id); found {
		c.JSON(http.StatusOK, models.ResultsResponse{Data: *results})
		return
	}

	results, err := h.engine.Estimate(c.Request.Context(), project)
	if err != nil {
		// The client navigated away mid-estimation; the late result is
		// discarded, which is the documented no-op.
		h.logger.Debug("Estimation abandoned", zap.String("project_id", id), zap.Error(err))
		c.Status(http.StatusRequestTimeout)
		return
	}

	h.cache.Set(id, results)
	c.JSON(http.StatusOK, models.ResultsResponse{Data: *results})
}

// Report renders the design report as a plain-text download. With ?export=1
// the report is also written to the export directory.
func (h *Handler) Report(c *gin.Context) {
	id := c.Param("id")

	project, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: "failed to retrieve project",
		})
		return
	}
	if project == nil {
		h.projectNotFound(c)
		return
	}

	results, found := h.cache.Get(id)
	if !found {
		results, err = h.engine.Estimate(c.Request.Context(), project)
		if err != nil {
			c.Status(http.StatusRequestTimeout)
			return
		}
		h.cache.Set(id, results)
	}

	content := h.reports.Format(project, results)

	if c.Query("export") == "1" {
		path, err := h.exports.Export(project.Name, content)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "internal_error",
				Message: "failed to export report",
			})
			return
		}
		c.Header("X-Export-Path", path)
	}

	c.Header("Content-Disposition", `attachment; filename="`+report.Filename(project.Name)+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

// PlaceLight creates a light point from click geometry and persists it.
func (h *Handler) PlaceLight(c *gin.Context) {
	var req models.PlaceLightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	session, ok := h.canvasSession(c)
	if !ok {
		return
	}

	point, err := session.PlaceAt(c.Request.Context(), req.ClickX, req.ClickY, req.Width, req.Height)
	if err != nil {
		h.canvasError(c, err)
		return
	}

	h.cache.Invalidate(c.Param("id"))
	c.JSON(http.StatusCreated, models.LightPointResponse{Data: point})
}

// SelectLight marks a light point as the edit target.
func (h *Handler) SelectLight(c *gin.Context) {
	session, ok := h.canvasSession(c)
	if !ok {
		return
	}

	if err := session.Select(c.Param("lightID")); err != nil {
		h.canvasError(c, err)
		return
	}

	point, _ := session.Selected()
	c.JSON(http.StatusOK, models.LightPointResponse{Data: point})
}

// UpdateLight reassigns a light point's fixture category.
func (h *Handler) UpdateLight(c *gin.Context) {
	var req models.UpdateLightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}
	if !req.FixtureType.Valid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "unknown fixture type",
		})
		return
	}

	session, ok := h.canvasSession(c)
	if !ok {
		return
	}

	if err := session.Select(c.Param("lightID")); err != nil {
		h.canvasError(c, err)
		return
	}
	point, err := session.SetFixtureType(c.Request.Context(), req.FixtureType)
	if err != nil {
		h.canvasError(c, err)
		return
	}

	h.cache.Invalidate(c.Param("id"))
	c.JSON(http.StatusOK, models.LightPointResponse{Data: point})
}

// DeleteLight removes a light point. The selection is cleared with it.
func (h *Handler) DeleteLight(c *gin.Context) {
	session, ok := h.canvasSession(c)
	if !ok {
		return
	}

	if err := session.Select(c.Param("lightID")); err != nil {
		h.canvasError(c, err)
		return
	}
	if err := session.RemoveSelected(c.Request.Context()); err != nil {
		h.canvasError(c, err)
		return
	}

	h.cache.Invalidate(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// Visualize maps a click on an interior photo to a simulated glow effect.
func (h *Handler) Visualize(c *gin.Context) {
	var req models.PlaceLightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	project, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil || project == nil {
		h.projectNotFound(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"x":     req.ClickX / req.Width * 100,
		"y":     req.ClickY / req.Height * 100,
		"color": canvas.GlowColor(project.Preferences.LightTemperature),
		"size":  50,
	})
}

// StartWizard begins a fresh project draft, replacing any existing one.
func (h *Handler) StartWizard(c *gin.Context) {
	h.mu.Lock()
	h.wizard = wizard.NewSession()
	session := h.wizard
	h.mu.Unlock()

	c.JSON(http.StatusCreated, h.wizardState(session))
}

// WizardState reports the current step and draft.
func (h *Handler) WizardState(c *gin.Context) {
	session, ok := h.wizardSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.wizardState(session))
}

// ApplyWizardCommand applies one typed mutation to the draft.
func (h *Handler) ApplyWizardCommand(c *gin.Context) {
	var req struct {
		Command string          `json:"command" binding:"required"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	session, ok := h.wizardSession(c)
	if !ok {
		return
	}

	cmd, err := wizard.ParseCommand(req.Command, req.Payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	session.Apply(cmd)
	c.JSON(http.StatusOK, h.wizardState(session))
}

// WizardNext advances the wizard one step.
func (h *Handler) WizardNext(c *gin.Context) {
	session, ok := h.wizardSession(c)
	if !ok {
		return
	}
	session.Next()
	c.JSON(http.StatusOK, h.wizardState(session))
}

// WizardPrev moves the wizard back one step.
func (h *Handler) WizardPrev(c *gin.Context) {
	session, ok := h.wizardSession(c)
	if !ok {
		return
	}
	session.Prev()
	c.JSON(http.StatusOK, h.wizardState(session))
}

// SubmitWizard validates the draft and persists the new project. Validation
// failures return the first incomplete step and save nothing.
func (h *Handler) SubmitWizard(c *gin.Context) {
	session, ok := h.wizardSession(c)
	if !ok {
		return
	}

	project, err := session.Submit()
	if err != nil {
		var verr *wizard.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "validation_failed",
				Message: verr.Message,
				Step:    verr.Step,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: "failed to build project",
		})
		return
	}

	if err := h.repo.Insert(c.Request.Context(), project); err != nil {
		h.storeWriteError(c, "failed to save project", err)
		return
	}

	h.mu.Lock()
	h.wizard = nil
	h.mu.Unlock()

	c.JSON(http.StatusCreated, models.ProjectResponse{Data: *project})
}

// UploadFloorPlan accepts a floor-plan file.
func (h *Handler) UploadFloorPlan(c *gin.Context) {
	h.acceptUpload(c, upload.KindFloorPlan)
}

// UploadPhoto accepts an interior photo.
func (h *Handler) UploadPhoto(c *gin.Context) {
	h.acceptUpload(c, upload.KindPhoto)
}

// GetUpload serves the bytes of an accepted upload for previews.
func (h *Handler) GetUpload(c *gin.Context) {
	blob, ok := h.uploads.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "upload not found",
		})
		return
	}
	c.Data(http.StatusOK, blob.Ref.ContentType, blob.Data)
}

func (h *Handler) acceptUpload(c *gin.Context, kind upload.Kind) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "missing file field",
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: "failed to read upload",
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: "failed to read upload",
		})
		return
	}

	ref, err := h.uploads.Accept(kind, header.Filename, data)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, upload.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, models.ErrorResponse{
			Error:   "upload_rejected",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, models.UploadResponse{Data: ref})
}

// canvasSession returns the (lazily loaded) canvas session for the project
// in the route. It writes the error response itself on failure.
func (h *Handler) canvasSession(c *gin.Context) (*canvas.Session, bool) {
	id := c.Param("id")

	h.mu.Lock()
	session, ok := h.canvases[id]
	h.mu.Unlock()
	if ok {
		return session, true
	}

	session = canvas.NewSession(h.repo, h.logger, id)
	if err := session.Load(c.Request.Context()); err != nil {
		h.canvasError(c, err)
		return nil, false
	}

	h.mu.Lock()
	h.canvases[id] = session
	h.mu.Unlock()
	return session, true
}

func (h *Handler) wizardSession(c *gin.Context) (*wizard.Session, bool) {
	h.mu.Lock()
	session := h.wizard
	h.mu.Unlock()

	if session == nil {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "no_active_wizard",
			Message: "start a wizard session first",
		})
		return nil, false
	}
	return session, true
}

func (h *Handler) wizardState(session *wizard.Session) gin.H {
	draft := session.Draft()
	return gin.H{
		"step": session.Step(),
		"draft": gin.H{
			"name":                 draft.Name,
			"client_info":          draft.Client,
			"space_info":           draft.Space,
			"lighting_preferences": draft.Preferences,
			"floor_plan":           draft.FloorPlan,
			"interior_photos":      draft.InteriorPhotos,
		},
	}
}

func (h *Handler) canvasError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, canvas.ErrProjectNotFound):
		h.projectNotFound(c)
	case errors.Is(err, canvas.ErrPointNotFound), errors.Is(err, canvas.ErrNoSelection):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	default:
		h.storeWriteError(c, "failed to persist design change", err)
	}
}

func (h *Handler) projectNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:    "not_found",
		Message:  "project not found",
		Redirect: projectsPath,
	})
}

func (h *Handler) storeWriteError(c *gin.Context, message string, err error) {
	h.logger.Error(message, zap.Error(err))
	if errors.Is(err, store.ErrCapacityExceeded) {
		c.JSON(http.StatusInsufficientStorage, models.ErrorResponse{
			Error:   "store_write_failed",
			Message: "the local store refused the write; nothing was saved",
		})
		return
	}
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: message,
	})
}
