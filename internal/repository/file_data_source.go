package repository

import (
	"context"
	"fmt"
	"os"

	"github.com/portfolio-site/portfolio-api/internal/models"
	apperrors "github.com/portfolio-site/portfolio-api/pkg/errors"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk layout of the offline project catalog
type catalogFile struct {
	Projects []*models.Project `yaml:"projects"`
}

// FileProjectDataSource serves projects from a YAML catalog.
// The file is re-read on every load so edits show up on the next cache
// refresh. Writes are rejected.
type FileProjectDataSource struct {
	path string
}

// NewFileProjectDataSource creates a read-only data source over path
func NewFileProjectDataSource(path string) *FileProjectDataSource {
	return &FileProjectDataSource{path: path}
}

// ParseCatalog decodes and validates a YAML project catalog
func ParseCatalog(data []byte) ([]*models.Project, error) {
	var catalog catalogFile
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode project catalog: %w", err)
	}

	projects := catalog.Projects
	if projects == nil {
		projects = []*models.Project{}
	}
	for _, p := range projects {
		if p != nil {
			p.Normalize()
		}
	}

	if err := models.ValidateProjects(projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (ds *FileProjectDataSource) GetAllProjects(ctx context.Context) ([]*models.Project, error) {
	data, err := os.ReadFile(ds.path)
	if err != nil {
		return nil, fmt.Errorf("read project catalog %s: %w", ds.path, err)
	}

	projects, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ds.path, err)
	}

	logger.Debug("Project catalog loaded",
		zap.String("path", ds.path),
		zap.Int("count", len(projects)))

	return projects, nil
}

func (ds *FileProjectDataSource) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	projects, err := ds.GetAllProjects(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, apperrors.NotFoundError("project " + id)
}

func (ds *FileProjectDataSource) InsertProject(ctx context.Context, project *models.Project, position *int) error {
	return apperrors.ReadOnlyError("insert project")
}

func (ds *FileProjectDataSource) UpsertProject(ctx context.Context, project *models.Project, position *int) (bool, error) {
	return false, apperrors.ReadOnlyError("upsert project")
}

func (ds *FileProjectDataSource) DeleteProject(ctx context.Context, id string) error {
	return apperrors.ReadOnlyError("delete project")
}

func (ds *FileProjectDataSource) UpdateProjectImage(ctx context.Context, id, imageURL string) error {
	return apperrors.ReadOnlyError("update project image")
}

var _ ProjectDataSource = (*FileProjectDataSource)(nil)
