package services

import (
	"context"

	"github.com/portfolio-site/portfolio-api/internal/models"
	"github.com/portfolio-site/portfolio-api/pkg/jwt"
	"github.com/portfolio-site/portfolio-api/pkg/mailer"
)

// ContactServiceInterface defines the interface for contact service operations
type ContactServiceInterface interface {
	SubmitContactForm(ctx context.Context, req *models.ContactFormRequest, meta models.SubmissionMeta) (*models.ContactResponse, error)
	ListMessages(ctx context.Context, limit int) (*models.ContactMessagesResponse, error)
}

// ProjectServiceInterface defines the interface for project service operations
type ProjectServiceInterface interface {
	GetAll(ctx context.Context, forceRefresh bool) (*models.ProjectsResponse, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	Create(ctx context.Context, req *models.SaveProjectRequest) (*models.Project, error)
	Save(ctx context.Context, id string, req *models.SaveProjectRequest) (*models.Project, bool, error)
	Delete(ctx context.Context, id string) error
	UploadImage(ctx context.Context, id string, req *models.UploadProjectImageRequest) (string, error)
}

// AdminAuthServiceInterface defines password login for the site owner
type AdminAuthServiceInterface interface {
	Enabled() bool
	Login(ctx context.Context, password string) (*models.AdminSession, string, error)
	Logout(ctx context.Context, token string)
	GetSessionTTL() int
	GetCookieDomain() string
	GetCookieSecure() bool
	GetTokenManager() *jwt.TokenManager
}

// CaptchaVerifier checks a client captcha token
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// EventNotifier delivers events to an outbound webhook without blocking
type EventNotifier interface {
	SendAsync(event string, payload any)
}

// OwnerMailer emails the site owner
type OwnerMailer interface {
	Enabled() bool
	NotifyContact(ctx context.Context, n mailer.ContactNotification) error
}

// ImageStorage stores project images
type ImageStorage interface {
	UploadImage(ctx context.Context, imageData, key, contentType string) (string, error)
	DeleteImage(ctx context.Context, key string) error
	KeyFromURL(imageURL string) (string, bool)
}

// Ensure services implement their interfaces
var _ ContactServiceInterface = (*ContactService)(nil)
var _ ProjectServiceInterface = (*ProjectService)(nil)
var _ AdminAuthServiceInterface = (*AdminAuthService)(nil)
