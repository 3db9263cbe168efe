package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio-site/portfolio-api/internal/models"
	"github.com/portfolio-site/portfolio-api/internal/repository"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/mailer"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
	"github.com/portfolio-site/portfolio-api/pkg/retry"
	"go.uber.org/zap"
)

const (
	// CaptchaFailedMessage is shown when the captcha token is rejected
	CaptchaFailedMessage = "Captcha verification failed"

	DefaultMessagesLimit = 50
	MaxMessagesLimit     = 200

	ContactCreatedEvent = "contact.created"

	notifyTimeout = 30 * time.Second
)

// ContactService handles contact form submissions
type ContactService struct {
	store       repository.ContactMessageStore
	captcha     CaptchaVerifier
	notifier    EventNotifier
	mailer      OwnerMailer
	retryConfig retry.Config
	newID       func() string
}

// NewContactService creates a new contact service instance.
// notifier and ownerMailer may be nil.
func NewContactService(
	store repository.ContactMessageStore,
	captcha CaptchaVerifier,
	notifier EventNotifier,
	ownerMailer OwnerMailer,
) *ContactService {
	return &ContactService{
		store:       store,
		captcha:     captcha,
		notifier:    notifier,
		mailer:      ownerMailer,
		retryConfig: retry.DatabaseConfig(),
		newID:       uuid.NewString,
	}
}

// contactCreatedPayload is the webhook body for a stored contact message
type contactCreatedPayload struct {
	Event     string    `json:"event"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubmitContactForm stores a validated contact form and notifies the owner.
//
// The returned state follows the form lifecycle: submitting, then either
// submitted or failed with a message. A rejected captcha is reported in the
// response with a nil error; a storage failure returns both the failed
// response and the error.
func (s *ContactService) SubmitContactForm(ctx context.Context, req *models.ContactFormRequest, meta models.SubmissionMeta) (*models.ContactResponse, error) {
	state := models.NewFormState()
	if err := state.BeginSubmit(); err != nil {
		return nil, err
	}

	if s.captcha != nil {
		if err := s.captcha.Verify(ctx, req.RecaptchaToken, meta.ClientIP); err != nil {
			metrics.ContactFormSubmissions.WithLabelValues("captcha_failed").Inc()
			logger.Warn("ReCAPTCHA verification failed", zap.Error(err))
			_ = state.FailSubmit(CaptchaFailedMessage) //nolint:errcheck // state is submitting
			return &models.ContactResponse{Success: false, State: state}, nil
		}
	}

	msg := &models.ContactMessage{
		ID:        s.newID(),
		Name:      req.Name,
		Email:     req.Email,
		Message:   req.Message,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	err := retry.Do(ctx, s.retryConfig, "contact.create", func() error {
		return s.store.Create(ctx, msg)
	})
	if err != nil {
		metrics.ContactFormSubmissions.WithLabelValues("error").Inc()
		logger.Error("Failed to store contact message", zap.Error(err))
		_ = state.FailSubmit(models.DefaultSubmissionError) //nolint:errcheck // state is submitting
		return &models.ContactResponse{Success: false, State: state}, err
	}

	_ = state.CompleteSubmit() //nolint:errcheck // state is submitting
	metrics.ContactFormSubmissions.WithLabelValues("success").Inc()
	logger.Info("Contact message stored", zap.String("message_id", msg.ID))

	s.notify(msg)

	return &models.ContactResponse{Success: true, ID: msg.ID, State: state}, nil
}

// notify fans a stored message out to the webhook and owner email.
// Neither can fail the submission.
func (s *ContactService) notify(msg *models.ContactMessage) {
	if s.notifier != nil {
		s.notifier.SendAsync(ContactCreatedEvent, contactCreatedPayload{
			Event:     ContactCreatedEvent,
			ID:        msg.ID,
			Name:      msg.Name,
			Email:     msg.Email,
			Message:   msg.Message,
			CreatedAt: msg.CreatedAt,
		})
	}

	if s.mailer != nil && s.mailer.Enabled() {
		notification := mailer.ContactNotification{
			ID:        msg.ID,
			Name:      msg.Name,
			Email:     msg.Email,
			Message:   msg.Message,
			CreatedAt: msg.CreatedAt,
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := s.mailer.NotifyContact(ctx, notification); err != nil {
				logger.Error("Failed to email contact notification",
					zap.String("message_id", notification.ID),
					zap.Error(err))
			}
		}()
	}
}

// ListMessages returns stored contact messages, newest first
func (s *ContactService) ListMessages(ctx context.Context, limit int) (*models.ContactMessagesResponse, error) {
	switch {
	case limit <= 0:
		limit = DefaultMessagesLimit
	case limit > MaxMessagesLimit:
		limit = MaxMessagesLimit
	}

	messages, total, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	return &models.ContactMessagesResponse{Messages: messages, Total: total}, nil
}
