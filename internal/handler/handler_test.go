package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/lumiflow/backend/internal/catalog"
	"github.com/lumiflow/backend/internal/config"
	"github.com/lumiflow/backend/internal/engine"
	"github.com/lumiflow/backend/internal/exporter"
	"github.com/lumiflow/backend/internal/models"
	"github.com/lumiflow/backend/internal/report"
	"github.com/lumiflow/backend/internal/upload"
)

// MockRepository implements repository.Repository for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]models.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, req *models.CreateProjectRequest) (*models.Project, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockRepository) Insert(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, id string, mutate func(*models.Project)) (*models.Project, error) {
	args := m.Called(ctx, id, mutate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCache implements cache.Cache for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(projectID string) (*models.LightingCalculationResults, bool) {
	args := m.Called(projectID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*models.LightingCalculationResults), args.Bool(1)
}

func (m *MockCache) Set(projectID string, results *models.LightingCalculationResults) {
	m.Called(projectID, results)
}

func (m *MockCache) Invalidate(projectID string) {
	m.Called(projectID)
}

func setupTestHandler(t *testing.T) (*Handler, *MockRepository, *MockCache, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockRepository)
	mockCache := new(MockCache)
	logger, _ := zap.NewDevelopment()

	cat, err := catalog.New()
	assert.NoError(t, err)

	cfg := &config.Config{
		EstimateDelay: 0,
		MaxUploadSize: 1024,
		ExportDir:     t.TempDir(),
	}

	handler := NewHandler(
		mockRepo,
		mockCache,
		cat,
		engine.New(cat, cfg, logger),
		report.NewFormatter(cat),
		exporter.New(cfg, logger),
		upload.NewStore(cfg, logger),
		logger,
	)

	ginEngine := gin.New()
	rg := ginEngine.Group("/api/v1")
	handler.RegisterRoutes(rg)

	return handler, mockRepo, mockCache, ginEngine
}

func testProject(id string) *models.Project {
	area := 25.0
	return &models.Project{
		ID:   id,
		Name: "Test Project",
		ClientInfo: models.ClientInfo{
			Name: "Nguyen Van A",
		},
		SpaceInfo: models.SpaceInfo{
			ProjectType: models.ProjectTypeApartment,
			RoomType:    models.RoomLivingRoom,
			Area:        &area,
		},
		Preferences: models.LightingPreferences{
			LightTemperature: models.TemperatureNeutral,
			LightBrightness:  models.BrightnessMedium,
			LightingStyle:    models.StyleModern,
			UsagePurposes:    []models.UsagePurpose{models.PurposeRelaxation},
		},
		InteriorPhotos: []models.FileRef{},
		DesignData:     models.DesignData{LightPoints: []models.DesignLightPoint{}},
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

func TestListProducts(t *testing.T) {
	_, _, _, ginEngine := setupTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.ProductsResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response.Data, 8)
}

func TestListProjects_Success(t *testing.T) {
	_, mockRepo, _, ginEngine := setupTestHandler(t)

	projects := []models.Project{*testProject("p1"), *testProject("p2")}
	mockRepo.On("List", mock.Anything).Return(projects, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.ProjectsResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response.Data, 2)

	mockRepo.AssertExpectations(t)
}

func TestGetProject_NotFound(t *testing.T) {
	_, mockRepo, _, ginEngine := setupTestHandler(t)

	mockRepo.On("GetByID", mock.Anything, "nonexistent").Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/nonexistent", nil)
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response models.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "not_found", response.Error)
	assert.Equal(t, "/projects", response.Redirect)

	mockRepo.AssertExpectations(t)
}

func TestCreateProject_MissingRequiredFields(t *testing.T) {
	_, _, _, ginEngine := setupTestHandler(t)

	body := `{"name": "No Client", "client_info": {}, "space_info": {}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response models.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "validation_failed", response.Error)
	assert.Equal(t, 1, response.Step)
}

func TestDeleteProject_Idempotent(t *testing.T) {
	_, mockRepo, mockCache, ginEngine := setupTestHandler(t)

	mockRepo.On("Delete", mock.Anything, "p1").Return(nil)
	mockCache.On("Invalidate", "p1").Return()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/projects/p1", nil)
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestEstimate_CacheHit(t *testing.T) {
	_, mockRepo, mockCache, ginEngine := setupTestHandler(t)

	project := testProject("p1")
	cached := &models.LightingCalculationResults{
		AverageLux:          300,
		Uniformity:          0.4,
		RecommendedProducts: []models.Product{},
		TotalCost:           250000,
	}

	mockRepo.On("GetByID", mock.Anything, "p1").Return(project, nil)
	mockCache.On("Get", "p1").Return(cached, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/p1/estimate", nil)
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.ResultsResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 300, response.Data.AverageLux)

	mockCache.AssertNotCalled(t, "Set")
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestEstimate_CacheMiss(t *testing.T) {
	_, mockRepo, mockCache, ginEngine := setupTestHandler(t)

	project := testProject("p1")
	mockRepo.On("GetByID", mock.Anything, "p1").Return(project, nil)
	mockCache.On("Get", "p1").Return(nil, false)
	mockCache.On("Set", "p1", mock.Anything).Return()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/p1/estimate", nil)
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.ResultsResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	// Living room at 300 lux target, medium brightness keeps it unscaled.
	assert.Equal(t, 300, response.Data.AverageLux)
	assert.Equal(t, 0.4, response.Data.Uniformity)
	assert.NotEmpty(t, response.Data.RecommendedProducts)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestReport_Download(t *testing.T) {
	_, mockRepo, mockCache, ginEngine := setupTestHandler(t)

	project := testProject("p1")
	cached := &models.LightingCalculationResults{
		AverageLux:          300,
		Uniformity:          0.4,
		RecommendedProducts: []models.Product{},
	}

	mockRepo.On("GetByID", mock.Anything, "p1").Return(project, nil)
	mockCache.On("Get", "p1").Return(cached, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/p1/report", nil)
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="Report_Test_Project.txt"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "LIGHTING DESIGN REPORT")
	assert.Contains(t, w.Body.String(), "PROJECT: Test Project")

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestReport_Export(t *testing.T) {
	_, mockRepo, mockCache, ginEngine := setupTestHandler(t)

	project := testProject("p1")
	cached := &models.LightingCalculationResults{RecommendedProducts: []models.Product{}}

	mockRepo.On("GetByID", mock.Anything, "p1").Return(project, nil)
	mockCache.On("Get", "p1").Return(cached, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/p1/report?export=1", nil)
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Export-Path"))
}

func TestPlaceLight_Success(t *testing.T) {
	_, mockRepo, mockCache, ginEngine := setupTestHandler(t)

	project := testProject("p1")
	mockRepo.On("GetByID", mock.Anything, "p1").Return(project, nil)
	mockRepo.On("Update", mock.Anything, "p1", mock.Anything).Return(project, nil)
	mockCache.On("Invalidate", "p1").Return()

	body := `{"click_x": 50, "click_y": 25, "width": 400, "height": 300}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/p1/lights", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response models.LightPointResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 12.5, response.Data.X)
	assert.InDelta(t, 8.3333, response.Data.Y, 0.0001)
	assert.Equal(t, models.FixtureDownlight, response.Data.FixtureType)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestPlaceLight_ProjectNotFound(t *testing.T) {
	_, mockRepo, _, ginEngine := setupTestHandler(t)

	mockRepo.On("GetByID", mock.Anything, "nonexistent").Return(nil, nil)

	body := `{"click_x": 50, "click_y": 25, "width": 400, "height": 300}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/nonexistent/lights", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response models.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "/projects", response.Redirect)
}

func TestPlaceLight_InvalidGeometry(t *testing.T) {
	_, _, _, ginEngine := setupTestHandler(t)

	// Zero width fails binding before any repository access.
	body := `{"click_x": 50, "click_y": 25, "width": 0, "height": 300}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/p1/lights", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateLight_UnknownFixtureType(t *testing.T) {
	_, _, _, ginEngine := setupTestHandler(t)

	body := `{"fixture_type": "chandelier"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/projects/p1/lights/light-1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWizard_NoActiveSession(t *testing.T) {
	_, _, _, ginEngine := setupTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wizard", nil)
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response models.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "no_active_wizard", response.Error)
}

func TestWizard_FullFlow(t *testing.T) {
	_, mockRepo, _, ginEngine := setupTestHandler(t)

	mockRepo.On("Insert", mock.Anything, mock.MatchedBy(func(p *models.Project) bool {
		return p.ClientInfo.Name == "Nguyen Van A" && len(p.Preferences.UsagePurposes) == 1
	})).Return(nil)

	// Start a fresh draft.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wizard", nil)
	w := httptest.NewRecorder()
	ginEngine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Submitting immediately fails on the missing client name.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/wizard/submit", nil)
	w = httptest.NewRecorder()
	ginEngine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResponse models.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResponse))
	assert.Equal(t, "validation_failed", errResponse.Error)
	assert.Equal(t, 1, errResponse.Step)

	// Fill the required fields through commands.
	for _, body := range []string{
		`{"command": "set_client_name", "payload": {"value": "Nguyen Van A"}}`,
		`{"command": "set_usage_purposes", "payload": {"values": ["relaxation"]}}`,
	} {
		req = httptest.NewRequest(http.MethodPost, "/api/v1/wizard/commands", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w = httptest.NewRecorder()
		ginEngine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// Now the draft persists and the wizard session ends.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/wizard/submit", nil)
	w = httptest.NewRecorder()
	ginEngine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/wizard", nil)
	w = httptest.NewRecorder()
	ginEngine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	mockRepo.AssertExpectations(t)
}

func TestWizard_UnknownCommand(t *testing.T) {
	_, _, _, ginEngine := setupTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wizard", nil)
	w := httptest.NewRecorder()
	ginEngine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	body := `{"command": "launch_rocket"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/wizard/commands", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadFloorPlan_PNG(t *testing.T) {
	_, _, _, ginEngine := setupTestHandler(t)

	pngBytes := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "plan.png")
	assert.NoError(t, err)
	_, err = part.Write(pngBytes)
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/floor-plan", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response models.UploadResponse
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "image/png", response.Data.ContentType)

	// The accepted bytes are served back for previews.
	req = httptest.NewRequest(http.MethodGet, response.Data.PreviewURL, nil)
	w = httptest.NewRecorder()
	ginEngine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngBytes, w.Body.Bytes())
}

func TestUploadPhoto_UnsupportedType(t *testing.T) {
	_, _, _, ginEngine := setupTestHandler(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "notes.txt")
	assert.NoError(t, err)
	_, err = part.Write([]byte("plain text"))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/photos", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response models.ErrorResponse
	err = json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "upload_rejected", response.Error)
}

func TestGetUpload_NotFound(t *testing.T) {
	_, _, _, ginEngine := setupTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/uploads/nonexistent", nil)
	w := httptest.NewRecorder()

	ginEngine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
