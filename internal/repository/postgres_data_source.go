package repository

import (
	"context"

	"github.com/portfolio-site/portfolio-api/internal/database/postgres"
	"github.com/portfolio-site/portfolio-api/internal/models"
)

// PostgresProjectDataSource implements ProjectDataSource using PostgreSQL
type PostgresProjectDataSource struct {
	client *postgres.Client
}

// NewPostgresProjectDataSource creates a new PostgreSQL project data source
func NewPostgresProjectDataSource(client *postgres.Client) *PostgresProjectDataSource {
	return &PostgresProjectDataSource{client: client}
}

func (ds *PostgresProjectDataSource) GetAllProjects(ctx context.Context) ([]*models.Project, error) {
	return ds.client.GetAllProjects(ctx)
}

func (ds *PostgresProjectDataSource) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	return ds.client.GetProjectByID(ctx, id)
}

func (ds *PostgresProjectDataSource) InsertProject(ctx context.Context, project *models.Project, position *int) error {
	return ds.client.InsertProject(ctx, project, position)
}

func (ds *PostgresProjectDataSource) UpsertProject(ctx context.Context, project *models.Project, position *int) (bool, error) {
	return ds.client.UpsertProject(ctx, project, position)
}

func (ds *PostgresProjectDataSource) DeleteProject(ctx context.Context, id string) error {
	return ds.client.DeleteProject(ctx, id)
}

func (ds *PostgresProjectDataSource) UpdateProjectImage(ctx context.Context, id, imageURL string) error {
	return ds.client.UpdateProjectImage(ctx, id, imageURL)
}

var _ ProjectDataSource = (*PostgresProjectDataSource)(nil)

// PostgresContactMessageStore implements ContactMessageStore using PostgreSQL
type PostgresContactMessageStore struct {
	client *postgres.Client
}

// NewPostgresContactMessageStore creates a new PostgreSQL contact message store
func NewPostgresContactMessageStore(client *postgres.Client) *PostgresContactMessageStore {
	return &PostgresContactMessageStore{client: client}
}

func (s *PostgresContactMessageStore) Create(ctx context.Context, msg *models.ContactMessage) error {
	return s.client.CreateContactMessage(ctx, msg)
}

func (s *PostgresContactMessageStore) List(ctx context.Context, limit int) ([]*models.ContactMessage, int, error) {
	return s.client.ListContactMessages(ctx, limit)
}

var _ ContactMessageStore = (*PostgresContactMessageStore)(nil)
