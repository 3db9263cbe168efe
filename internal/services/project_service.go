package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/portfolio-site/portfolio-api/internal/models"
	"github.com/portfolio-site/portfolio-api/internal/repository"
	apperrors "github.com/portfolio-site/portfolio-api/pkg/errors"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
	"github.com/portfolio-site/portfolio-api/pkg/retry"
	"github.com/portfolio-site/portfolio-api/pkg/slug"
	"github.com/portfolio-site/portfolio-api/pkg/storage"
	"go.uber.org/zap"
)

// ProjectService serves the showcase and the admin project operations
type ProjectService struct {
	repo        repository.ProjectRepositoryInterface
	storage     ImageStorage
	retryConfig retry.Config
	now         func() time.Time
}

// NewProjectService creates a project service. imageStorage may be nil,
// in which case image uploads report ErrUnavailable.
func NewProjectService(repo repository.ProjectRepositoryInterface, imageStorage ImageStorage) *ProjectService {
	return &ProjectService{
		repo:        repo,
		storage:     imageStorage,
		retryConfig: retry.StorageConfig(),
		now:         time.Now,
	}
}

// GetAll returns every project in display order
func (s *ProjectService) GetAll(ctx context.Context, forceRefresh bool) (*models.ProjectsResponse, error) {
	projects, err := s.repo.GetAll(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	return &models.ProjectsResponse{Projects: projects, Total: len(projects)}, nil
}

// GetByID returns one project and counts the view
func (s *ProjectService) GetByID(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.ProjectViews.WithLabelValues(project.ID).Inc()
	return project, nil
}

// Create stores a new project under an id derived from its title
func (s *ProjectService) Create(ctx context.Context, req *models.SaveProjectRequest) (*models.Project, error) {
	id := slug.ProjectID(req.Title)
	if id == "" {
		return nil, apperrors.InvalidInputError("title", "must contain letters or digits")
	}

	project := req.ToProject(id)
	if err := s.repo.Create(ctx, project, req.Position); err != nil {
		status := "error"
		if errors.Is(err, apperrors.ErrConflict) {
			status = "conflict"
		}
		metrics.ProjectUpdates.WithLabelValues("create", status).Inc()
		return nil, err
	}

	metrics.ProjectUpdates.WithLabelValues("create", "success").Inc()
	logger.Info("Project created", zap.String("project_id", id))

	return project, nil
}

// Save creates or replaces the project stored under id
func (s *ProjectService) Save(ctx context.Context, id string, req *models.SaveProjectRequest) (*models.Project, bool, error) {
	if !slug.Valid(id) {
		return nil, false, apperrors.InvalidInputError("id", "must be lowercase letters, digits and dashes")
	}

	project := req.ToProject(id)

	created, err := s.repo.Save(ctx, project, req.Position)
	if err != nil {
		metrics.ProjectUpdates.WithLabelValues("save", "error").Inc()
		return nil, false, err
	}

	metrics.ProjectUpdates.WithLabelValues("save", "success").Inc()
	logger.Info("Project saved",
		zap.String("project_id", id),
		zap.Bool("created", created))

	return project, created, nil
}

// Delete removes a project
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		metrics.ProjectUpdates.WithLabelValues("delete", "error").Inc()
		return err
	}
	metrics.ProjectUpdates.WithLabelValues("delete", "success").Inc()
	logger.Info("Project deleted", zap.String("project_id", id))
	return nil
}

// UploadImage uploads a new project image and points the project at it.
// The previous image is removed when it lives in the same bucket.
func (s *ProjectService) UploadImage(ctx context.Context, id string, req *models.UploadProjectImageRequest) (string, error) {
	if s.storage == nil {
		return "", apperrors.UnavailableError("image storage")
	}

	if err := storage.ValidateImageType(req.ContentType); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if err := storage.ValidateImageSize(req.Image); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	key := storage.ProjectImageKey(id, req.ContentType, s.now())
	imageURL, err := retry.DoWithResult(ctx, s.retryConfig, "storage.uploadImage", func() (string, error) {
		return s.storage.UploadImage(ctx, req.Image, key, req.ContentType)
	})
	if err != nil {
		metrics.ProjectUpdates.WithLabelValues("upload_image", "error").Inc()
		return "", err
	}

	if err := s.repo.UpdateImage(ctx, id, imageURL); err != nil {
		metrics.ProjectUpdates.WithLabelValues("upload_image", "error").Inc()
		return "", err
	}

	if oldKey, ok := s.storage.KeyFromURL(project.Image); ok && oldKey != key {
		if err := s.storage.DeleteImage(ctx, oldKey); err != nil {
			logger.Warn("Failed to delete previous project image",
				zap.String("project_id", id),
				zap.String("key", oldKey),
				zap.Error(err))
		}
	}

	metrics.ProjectUpdates.WithLabelValues("upload_image", "success").Inc()
	logger.Info("Project image uploaded",
		zap.String("project_id", id),
		zap.String("file_name", req.FileName),
		zap.String("url", imageURL))

	return imageURL, nil
}
