package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/portfolio-api/internal/models"
	"github.com/portfolio-site/portfolio-api/internal/services"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"go.uber.org/zap"
)

const projectNotFound = "Project not found"

type ProjectHandler struct {
	service services.ProjectServiceInterface
}

func NewProjectHandler(service services.ProjectServiceInterface) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// List handles GET /api/v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	resp, err := h.service.GetAll(c.Request.Context(), false)
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "Failed to fetch projects", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, projectNotFound)
		return
	}

	c.JSON(http.StatusOK, project)
}

// Create handles POST /api/v1/admin/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req models.SaveProjectRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		if rejectOversizedBody(c, bindErr) {
			return
		}
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(bindErr), bindErr)
		return
	}

	project, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err, projectNotFound)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// Save handles PUT /api/v1/admin/projects/:id
func (h *ProjectHandler) Save(c *gin.Context) {
	var req models.SaveProjectRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		if rejectOversizedBody(c, bindErr) {
			return
		}
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(bindErr), bindErr)
		return
	}

	project, created, err := h.service.Save(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err, projectNotFound)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, project)
}

// Delete handles DELETE /api/v1/admin/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, projectNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UploadImage handles POST /api/v1/admin/projects/:id/image
func (h *ProjectHandler) UploadImage(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondError(c, http.StatusBadRequest, "Invalid project ID", errors.New("missing route param: id"))
		return
	}

	var req models.UploadProjectImageRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		if rejectOversizedBody(c, bindErr) {
			return
		}
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", gin.H{"message": bindErr.Error()}, bindErr)
		return
	}

	imageURL, err := h.service.UploadImage(c.Request.Context(), id, &req)
	if err != nil {
		logger.Warn("Project image upload failed", zap.String("project_id", id), zap.Error(err))
		respondServiceError(c, err, projectNotFound)
		return
	}

	c.JSON(http.StatusOK, models.UploadProjectImageResponse{
		Success:  true,
		ImageURL: imageURL,
	})
}
