package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/portfolio-site/portfolio-api/internal/models"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
	"go.uber.org/zap"
)

// CreateContactMessage stores a contact submission and fills CreatedAt
func (c *Client) CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	start := time.Now()
	operation := "createContactMessage"

	id, err := uuid.Parse(msg.ID)
	if err != nil {
		return fmt.Errorf("invalid contact message id %q: %w", msg.ID, err)
	}

	err = c.db.QueryRow(ctx, `
		INSERT INTO contact_messages (id, name, email, message, client_ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		id, msg.Name, msg.Email, msg.Message, msg.ClientIP, msg.UserAgent,
	).Scan(&msg.CreatedAt)
	if err != nil {
		return c.fail(ctx, operation, start, fmt.Errorf("failed to insert contact message: %w", err))
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "postgres", operation, "success", duration, zap.String("message_id", msg.ID))

	return nil
}

// ListContactMessages returns the newest messages first, up to limit,
// along with the total number stored
func (c *Client) ListContactMessages(ctx context.Context, limit int) ([]*models.ContactMessage, int, error) {
	start := time.Now()
	operation := "listContactMessages"

	var total int
	if err := c.db.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&total); err != nil {
		return nil, 0, c.fail(ctx, operation, start, fmt.Errorf("failed to count contact messages: %w", err))
	}

	rows, err := c.db.Query(ctx, `
		SELECT id::text, name, email, message, client_ip, user_agent, created_at
		FROM contact_messages
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, 0, c.fail(ctx, operation, start, fmt.Errorf("failed to query contact messages: %w", err))
	}

	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.ContactMessage, error) {
		m := &models.ContactMessage{}
		err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.ClientIP, &m.UserAgent, &m.CreatedAt)
		return m, err
	})
	if err != nil {
		return nil, 0, c.fail(ctx, operation, start, fmt.Errorf("failed to scan contact messages: %w", err))
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "postgres", operation, "success", duration, zap.Int("count", len(messages)))

	return messages, total, nil
}
