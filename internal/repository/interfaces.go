package repository

import (
	"context"

	"github.com/portfolio-site/portfolio-api/internal/models"
)

// ProjectDataSource defines the backing store for portfolio projects.
// This allows switching between PostgreSQL and the offline YAML catalog.
type ProjectDataSource interface {
	// GetAllProjects fetches all projects in display order
	GetAllProjects(ctx context.Context) ([]*models.Project, error)

	// GetProjectByID fetches a single project
	GetProjectByID(ctx context.Context, id string) (*models.Project, error)

	// InsertProject creates a project; ErrConflict when the id is taken
	InsertProject(ctx context.Context, project *models.Project, position *int) error

	// UpsertProject creates or replaces a project; reports whether it was created
	UpsertProject(ctx context.Context, project *models.Project, position *int) (bool, error)

	// DeleteProject removes a project
	DeleteProject(ctx context.Context, id string) error

	// UpdateProjectImage sets the image URL of a project
	UpdateProjectImage(ctx context.Context, id, imageURL string) error
}

// ContactMessageStore persists contact form submissions
type ContactMessageStore interface {
	// Create stores msg and fills CreatedAt
	Create(ctx context.Context, msg *models.ContactMessage) error

	// List returns up to limit messages, newest first, and the total stored
	List(ctx context.Context, limit int) ([]*models.ContactMessage, int, error)
}
