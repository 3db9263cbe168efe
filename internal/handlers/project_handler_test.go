package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/portfolio-api/internal/models"
	apperrors "github.com/portfolio-site/portfolio-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newProjectRouter(service *mockProjectService) *gin.Engine {
	handler := NewProjectHandler(service)
	router := gin.New()
	router.GET("/api/v1/projects", handler.List)
	router.GET("/api/v1/projects/:id", handler.Get)
	router.POST("/api/v1/admin/projects", handler.Create)
	router.PUT("/api/v1/admin/projects/:id", handler.Save)
	router.DELETE("/api/v1/admin/projects/:id", handler.Delete)
	router.POST("/api/v1/admin/projects/:id/image", handler.UploadImage)
	return router
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func TestProjectHandler_List(t *testing.T) {
	service := new(mockProjectService)
	router := newProjectRouter(service)

	live := "https://demo.example.dev"
	service.On("GetAll", mock.Anything, false).Return(&models.ProjectsResponse{
		Projects: []*models.Project{{
			ID:        "p1",
			Title:     "Demo",
			LiveURL:   &live,
			TechStack: []models.ProjectTech{{Name: "TypeScript", Color: "#3178c6"}},
		}},
		Total: 1,
	}, nil).Once()

	w := doRequest(router, http.MethodGet, "/api/v1/projects", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"projects": [{
			"id": "p1",
			"title": "Demo",
			"description": "",
			"longDescription": "",
			"image": "",
			"githubUrl": "",
			"liveUrl": "https://demo.example.dev",
			"techStack": [{"name": "TypeScript", "color": "#3178c6"}]
		}],
		"total": 1
	}`, w.Body.String())
}

func TestProjectHandler_List_NotReady(t *testing.T) {
	service := new(mockProjectService)
	router := newProjectRouter(service)

	service.On("GetAll", mock.Anything, false).Return(nil, errors.New("cache not ready")).Once()

	w := doRequest(router, http.MethodGet, "/api/v1/projects", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestProjectHandler_Get(t *testing.T) {
	service := new(mockProjectService)
	router := newProjectRouter(service)

	service.On("GetByID", mock.Anything, "p1").Return(&models.Project{ID: "p1", Title: "Demo"}, nil).Once()
	service.On("GetByID", mock.Anything, "nope").Return(nil, apperrors.NotFoundError("project")).Once()

	w := doRequest(router, http.MethodGet, "/api/v1/projects/p1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"p1"`)
	assert.NotContains(t, w.Body.String(), "liveUrl")

	w = doRequest(router, http.MethodGet, "/api/v1/projects/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Project not found"}`, w.Body.String())
}

const validProjectBody = `{
	"title": "Weather",
	"description": "Forecasts",
	"githubUrl": "https://github.com/me/weather",
	"techStack": [{"name": "Go", "color": "#00ADD8"}]
}`

func TestProjectHandler_Create(t *testing.T) {
	service := new(mockProjectService)
	router := newProjectRouter(service)

	service.On("Create", mock.Anything, mock.AnythingOfType("*models.SaveProjectRequest")).
		Return(&models.Project{ID: "weather", Title: "Weather"}, nil).Once()

	w := doRequest(router, http.MethodPost, "/api/v1/admin/projects", validProjectBody)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestProjectHandler_Create_Conflict(t *testing.T) {
	service := new(mockProjectService)
	router := newProjectRouter(service)

	service.On("Create", mock.Anything, mock.Anything).Return(nil, apperrors.ErrConflict).Once()

	w := doRequest(router, http.MethodPost, "/api/v1/admin/projects", validProjectBody)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProjectHandler_Save(t *testing.T) {
	tests := []struct {
		name       string
		created    bool
		err        error
		wantStatus int
	}{
		{name: "created", created: true, wantStatus: http.StatusCreated},
		{name: "replaced", created: false, wantStatus: http.StatusOK},
		{name: "read-only", err: apperrors.ReadOnlyError("save project"), wantStatus: http.StatusConflict},
		{name: "invalid id", err: apperrors.InvalidInputError("id", "bad"), wantStatus: http.StatusBadRequest},
		{name: "failure", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(mockProjectService)
			router := newProjectRouter(service)

			if tt.err != nil {
				service.On("Save", mock.Anything, "weather", mock.Anything).Return(nil, false, tt.err).Once()
			} else {
				service.On("Save", mock.Anything, "weather", mock.Anything).
					Return(&models.Project{ID: "weather"}, tt.created, nil).Once()
			}

			w := doRequest(router, http.MethodPut, "/api/v1/admin/projects/weather", validProjectBody)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestProjectHandler_Save_ValidationFailed(t *testing.T) {
	service := new(mockProjectService)
	router := newProjectRouter(service)

	w := doRequest(router, http.MethodPut, "/api/v1/admin/projects/weather", `{"title":"Weather","githubUrl":"not a url"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Validation failed")
	service.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectHandler_Delete(t *testing.T) {
	service := new(mockProjectService)
	router := newProjectRouter(service)

	service.On("Delete", mock.Anything, "weather").Return(nil).Once()
	service.On("Delete", mock.Anything, "gone").Return(apperrors.NotFoundError("project")).Once()

	w := doRequest(router, http.MethodDelete, "/api/v1/admin/projects/weather", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/v1/admin/projects/gone", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectHandler_UploadImage(t *testing.T) {
	service := new(mockProjectService)
	router := newProjectRouter(service)

	service.On("UploadImage", mock.Anything, "weather", mock.MatchedBy(func(req *models.UploadProjectImageRequest) bool {
		return req.ContentType == "image/png" && req.FileName == "cover.png"
	})).Return("https://cdn.example.dev/projects/weather/1.png", nil).Once()

	w := doRequest(router, http.MethodPost, "/api/v1/admin/projects/weather/image",
		`{"image":"aGVsbG8=","fileName":"cover.png","contentType":"image/png"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"imageUrl":"https://cdn.example.dev/projects/weather/1.png"}`, w.Body.String())
}

func TestProjectHandler_UploadImage_StorageDisabled(t *testing.T) {
	service := new(mockProjectService)
	router := newProjectRouter(service)

	service.On("UploadImage", mock.Anything, "weather", mock.Anything).
		Return("", apperrors.UnavailableError("image storage")).Once()

	w := doRequest(router, http.MethodPost, "/api/v1/admin/projects/weather/image",
		`{"image":"aGVsbG8=","fileName":"cover.png","contentType":"image/png"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
