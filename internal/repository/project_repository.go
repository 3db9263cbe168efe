package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/portfolio-site/portfolio-api/internal/cache"
	"github.com/portfolio-site/portfolio-api/internal/models"
	apperrors "github.com/portfolio-site/portfolio-api/pkg/errors"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/retry"
	"go.uber.org/zap"
)

// ProjectRepositoryInterface defines the interface for project data access operations
type ProjectRepositoryInterface interface {
	GetAll(ctx context.Context, forceRefresh bool) ([]*models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	Create(ctx context.Context, project *models.Project, position *int) error
	Save(ctx context.Context, project *models.Project, position *int) (bool, error)
	Delete(ctx context.Context, id string) error
	UpdateImage(ctx context.Context, id, imageURL string) error
	IsReady() bool
}

// ProjectRepository serves projects from the cache and writes through to
// the data source, keeping the cache in step
type ProjectRepository struct {
	source      ProjectDataSource
	cache       *cache.ProjectCache
	retryConfig retry.Config
}

// validatingSource rejects collections with invalid or duplicate projects
// before they reach the cache
type validatingSource struct {
	ProjectDataSource
}

func (v validatingSource) GetAllProjects(ctx context.Context) ([]*models.Project, error) {
	projects, err := v.ProjectDataSource.GetAllProjects(ctx)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateProjects(projects); err != nil {
		return nil, err
	}
	for _, p := range projects {
		p.Normalize()
		if dups := p.DuplicateTechNames(); len(dups) > 0 {
			logger.Warn("Project lists a technology more than once",
				zap.String("project_id", p.ID),
				zap.Strings("tech", dups))
		}
	}
	return projects, nil
}

// NewProjectRepository creates a repository whose cache reloads every ttlSeconds
func NewProjectRepository(source ProjectDataSource, ttlSeconds int) *ProjectRepository {
	retryConfig := retry.DatabaseConfig()
	retryConfig.RetryableErrors = isTransient

	return &ProjectRepository{
		source:      source,
		cache:       cache.NewProjectCache(validatingSource{source}, ttlSeconds),
		retryConfig: retryConfig,
	}
}

// Initialize loads the cache; call before serving requests
func (r *ProjectRepository) Initialize(ctx context.Context) error {
	return r.cache.Initialize(ctx)
}

// Stop ends background cache refreshes
func (r *ProjectRepository) Stop() {
	r.cache.Stop()
}

// IsReady reports whether the cache has been loaded
func (r *ProjectRepository) IsReady() bool {
	return r.cache.IsReady()
}

// GetAll returns every project in display order
func (r *ProjectRepository) GetAll(ctx context.Context, forceRefresh bool) ([]*models.Project, error) {
	if forceRefresh {
		return r.cache.ForceRefresh()
	}
	return r.cache.Get()
}

// GetByID returns one project. A cache miss falls through to the data
// source, which sees rows written since the last refresh.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	p, err := r.cache.GetByID(id)
	if !errors.Is(err, cache.ErrProjectNotFound) {
		return p, err
	}

	p, err = retry.DoWithResult(ctx, r.retryConfig, "project.getByID", func() (*models.Project, error) {
		return r.source.GetProjectByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	p.Normalize()
	return p, nil
}

// Create validates and stores a new project. It never replaces an existing
// row: a taken id is reported as ErrConflict by the data source.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project, position *int) error {
	if err := validateForWrite(project); err != nil {
		return err
	}

	err := retry.Do(ctx, r.retryConfig, "project.create", func() error {
		return r.source.InsertProject(ctx, project, position)
	})
	if err != nil {
		return err
	}

	r.cacheWritten(ctx, project, position)
	return nil
}

// Save validates and creates or replaces a project
func (r *ProjectRepository) Save(ctx context.Context, project *models.Project, position *int) (bool, error) {
	if err := validateForWrite(project); err != nil {
		return false, err
	}

	created, err := retry.DoWithResult(ctx, r.retryConfig, "project.save", func() (bool, error) {
		return r.source.UpsertProject(ctx, project, position)
	})
	if err != nil {
		return false, err
	}

	r.cacheWritten(ctx, project, position)
	return created, nil
}

func validateForWrite(project *models.Project) error {
	project.Normalize()
	if err := project.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return nil
}

// cacheWritten puts a stored project into the cache. An explicit position
// can move other projects, so the whole collection is reloaded instead.
func (r *ProjectRepository) cacheWritten(ctx context.Context, project *models.Project, position *int) {
	if position != nil {
		r.syncCache(func() error { return r.cache.Refresh(ctx) })
		return
	}
	r.syncCache(func() error { return r.cache.Upsert(project) })
}

// Delete removes a project
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	err := retry.Do(ctx, r.retryConfig, "project.delete", func() error {
		return r.source.DeleteProject(ctx, id)
	})
	if err != nil {
		return err
	}

	r.syncCache(func() error { return r.cache.Remove(id) })
	return nil
}

// UpdateImage stores a new image URL for a project
func (r *ProjectRepository) UpdateImage(ctx context.Context, id, imageURL string) error {
	err := retry.Do(ctx, r.retryConfig, "project.updateImage", func() error {
		return r.source.UpdateProjectImage(ctx, id, imageURL)
	})
	if err != nil {
		return err
	}

	r.syncCache(func() error {
		p, err := r.cache.GetByID(id)
		if err != nil {
			return r.cache.Refresh(ctx)
		}
		p.Image = imageURL
		return r.cache.Upsert(p)
	})
	return nil
}

// syncCache applies a cache update after a successful write. The write has
// already happened, so failures are logged and healed by the next refresh.
func (r *ProjectRepository) syncCache(update func() error) {
	if err := update(); err != nil {
		logger.Warn("Failed to sync project cache after write", zap.Error(err))
	}
}

// isTransient reports whether a data source error is worth retrying
func isTransient(err error) bool {
	return !apperrors.IsPermanent(err) && retry.IsRetryable(err)
}

var _ ProjectRepositoryInterface = (*ProjectRepository)(nil)
