package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/portfolio-site/portfolio-api/internal/models"
	apperrors "github.com/portfolio-site/portfolio-api/pkg/errors"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
	"go.uber.org/zap"
)

const projectColumns = `id, title, description, long_description, image, github_url, live_url`

// GetAllProjects fetches every project in display order with its tech stack
func (c *Client) GetAllProjects(ctx context.Context) ([]*models.Project, error) {
	start := time.Now()
	operation := "getAllProjects"

	rows, err := c.db.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, c.fail(ctx, operation, start, fmt.Errorf("failed to query projects: %w", err))
	}

	projects, err := pgx.CollectRows(rows, scanProject)
	if err != nil {
		return nil, c.fail(ctx, operation, start, fmt.Errorf("failed to scan project rows: %w", err))
	}

	byID := make(map[string]*models.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	techRows, err := c.db.Query(ctx, `SELECT project_id, name, color FROM project_tech ORDER BY project_id, position`)
	if err != nil {
		return nil, c.fail(ctx, operation, start, fmt.Errorf("failed to query project tech: %w", err))
	}
	defer techRows.Close()

	for techRows.Next() {
		var projectID string
		var tech models.ProjectTech
		if err := techRows.Scan(&projectID, &tech.Name, &tech.Color); err != nil {
			return nil, c.fail(ctx, operation, start, fmt.Errorf("failed to scan project tech row: %w", err))
		}
		if p, ok := byID[projectID]; ok {
			p.TechStack = append(p.TechStack, tech)
		}
	}
	if err := techRows.Err(); err != nil {
		return nil, c.fail(ctx, operation, start, fmt.Errorf("error iterating project tech rows: %w", err))
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "postgres", operation, "success", duration, zap.Int("count", len(projects)))

	return projects, nil
}

// GetProjectByID fetches a single project
func (c *Client) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	start := time.Now()
	operation := "getProjectByID"

	rows, err := c.db.Query(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	if err != nil {
		return nil, c.fail(ctx, operation, start, fmt.Errorf("failed to query project: %w", err))
	}

	project, err := pgx.CollectExactlyOneRow(rows, scanProject)
	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", metrics.MeasureDuration(start))
		return nil, apperrors.NotFoundError("project " + id)
	}
	if err != nil {
		return nil, c.fail(ctx, operation, start, fmt.Errorf("failed to scan project: %w", err))
	}

	techRows, err := c.db.Query(ctx, `SELECT name, color FROM project_tech WHERE project_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, c.fail(ctx, operation, start, fmt.Errorf("failed to query project tech: %w", err))
	}
	tech, err := pgx.CollectRows(techRows, pgx.RowToStructByPos[models.ProjectTech])
	if err != nil {
		return nil, c.fail(ctx, operation, start, fmt.Errorf("failed to scan project tech: %w", err))
	}
	project.TechStack = tech

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "postgres", operation, "success", duration, zap.String("project_id", id))

	return project, nil
}

// UpsertProject creates or replaces a project and its tech stack in one
// transaction. A nil position appends new projects and keeps the position
// of existing ones. Reports whether the row was created.
func (c *Client) UpsertProject(ctx context.Context, p *models.Project, position *int) (bool, error) {
	start := time.Now()
	operation := "upsertProject"

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return false, c.fail(ctx, operation, start, fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var created bool
	err = tx.QueryRow(ctx, `
		INSERT INTO projects (id, title, description, long_description, image, github_url, live_url, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
			COALESCE($8::int, (SELECT COALESCE(MAX(position) + 1, 0) FROM projects)))
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			long_description = EXCLUDED.long_description,
			image = EXCLUDED.image,
			github_url = EXCLUDED.github_url,
			live_url = EXCLUDED.live_url,
			position = COALESCE($8::int, projects.position),
			updated_at = NOW()
		RETURNING (xmax = 0)`,
		p.ID, p.Title, p.Description, p.LongDescription, p.Image, p.GithubURL, p.LiveURL, position,
	).Scan(&created)
	if err != nil {
		return false, c.fail(ctx, operation, start, fmt.Errorf("failed to upsert project: %w", err))
	}

	if err := replaceTech(ctx, tx, p); err != nil {
		return false, c.fail(ctx, operation, start, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, c.fail(ctx, operation, start, fmt.Errorf("failed to commit project: %w", err))
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "postgres", operation, "success", duration,
		zap.String("project_id", p.ID),
		zap.Bool("created", created),
		zap.Int("tech_count", len(p.TechStack)))

	return created, nil
}

// InsertProject creates a project and its tech stack. An existing row with
// the same id is left untouched and reported as ErrConflict.
func (c *Client) InsertProject(ctx context.Context, p *models.Project, position *int) error {
	start := time.Now()
	operation := "insertProject"

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return c.fail(ctx, operation, start, fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	tag, err := tx.Exec(ctx, `
		INSERT INTO projects (id, title, description, long_description, image, github_url, live_url, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
			COALESCE($8::int, (SELECT COALESCE(MAX(position) + 1, 0) FROM projects)))
		ON CONFLICT (id) DO NOTHING`,
		p.ID, p.Title, p.Description, p.LongDescription, p.Image, p.GithubURL, p.LiveURL, position,
	)
	if err != nil {
		return c.fail(ctx, operation, start, fmt.Errorf("failed to insert project: %w", err))
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "conflict", metrics.MeasureDuration(start))
		return apperrors.ConflictError("project " + p.ID)
	}

	if err := replaceTech(ctx, tx, p); err != nil {
		return c.fail(ctx, operation, start, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return c.fail(ctx, operation, start, fmt.Errorf("failed to commit project: %w", err))
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "postgres", operation, "success", duration,
		zap.String("project_id", p.ID),
		zap.Int("tech_count", len(p.TechStack)))

	return nil
}

// replaceTech rewrites the tech rows of p inside tx, keeping display order
func replaceTech(ctx context.Context, tx pgx.Tx, p *models.Project) error {
	if _, err := tx.Exec(ctx, `DELETE FROM project_tech WHERE project_id = $1`, p.ID); err != nil {
		return fmt.Errorf("failed to clear project tech: %w", err)
	}
	if len(p.TechStack) == 0 {
		return nil
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"project_tech"},
		[]string{"project_id", "position", "name", "color"},
		pgx.CopyFromSlice(len(p.TechStack), func(i int) ([]any, error) {
			return []any{p.ID, i, p.TechStack[i].Name, p.TechStack[i].Color}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to insert project tech: %w", err)
	}
	return nil
}

// DeleteProject removes a project; its tech rows cascade
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.execOne(ctx, "deleteProject", id, `DELETE FROM projects WHERE id = $1`, id)
}

// UpdateProjectImage sets the image URL of a project
func (c *Client) UpdateProjectImage(ctx context.Context, id, imageURL string) error {
	return c.execOne(ctx, "updateProjectImage", id,
		`UPDATE projects SET image = $2, updated_at = NOW() WHERE id = $1`, id, imageURL)
}

// execOne runs a statement that must affect exactly one project row
func (c *Client) execOne(ctx context.Context, operation, id, sql string, args ...any) error {
	start := time.Now()

	tag, err := c.db.Exec(ctx, sql, args...)
	if err != nil {
		return c.fail(ctx, operation, start, fmt.Errorf("failed to %s: %w", operation, err))
	}

	duration := metrics.MeasureDuration(start)
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("project " + id)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "postgres", operation, "success", duration, zap.String("project_id", id))
	return nil
}

func (c *Client) fail(ctx context.Context, operation string, start time.Time, err error) error {
	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "error", duration)
	logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
	return err
}

func scanProject(row pgx.CollectableRow) (*models.Project, error) {
	p := &models.Project{TechStack: []models.ProjectTech{}}
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.LongDescription, &p.Image, &p.GithubURL, &p.LiveURL)
	return p, err
}
