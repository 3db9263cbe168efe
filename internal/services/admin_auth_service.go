package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/portfolio-site/portfolio-api/config"
	"github.com/portfolio-site/portfolio-api/internal/models"
	"github.com/portfolio-site/portfolio-api/pkg/jwt"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
	"go.uber.org/zap"
)

// adminSubject is the JWT subject of the single site owner
const adminSubject = "owner"

var (
	ErrAdminDisabled           = errors.New("admin API is not configured")
	ErrAdminInvalidCredentials = errors.New("invalid admin credentials")
)

// AdminAuthService handles password login for the site owner
type AdminAuthService struct {
	config       config.AdminConfig
	tokenManager *jwt.TokenManager
}

// NewAdminAuthService creates the service; without a password and JWT
// secret it stays disabled
func NewAdminAuthService(cfg config.AdminConfig) *AdminAuthService {
	var tokenManager *jwt.TokenManager
	if cfg.JWTSecret != "" {
		tokenManager = jwt.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.SessionTTLHours)*time.Hour)
	}

	return &AdminAuthService{
		config:       cfg,
		tokenManager: tokenManager,
	}
}

// Enabled reports whether admin login is possible
func (s *AdminAuthService) Enabled() bool {
	return s.config.Password != "" && s.tokenManager != nil
}

// Login checks password and issues a session token
func (s *AdminAuthService) Login(ctx context.Context, password string) (*models.AdminSession, string, error) {
	if !s.Enabled() {
		return nil, "", ErrAdminDisabled
	}

	if !jwt.EqualSecret(password, s.config.Password) {
		metrics.AdminLogins.WithLabelValues("failure").Inc()
		logger.Warn("Admin login failed: wrong password")
		return nil, "", ErrAdminInvalidCredentials
	}

	issued, err := s.tokenManager.Issue(adminSubject, models.AdminRole)
	if err != nil {
		metrics.AdminLogins.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("failed to generate admin session token: %w", err)
	}

	session := &models.AdminSession{
		Subject:   adminSubject,
		Role:      models.AdminRole,
		ExpiresAt: issued.ExpiresAt.Unix(),
		IssuedAt:  issued.IssuedAt.Unix(),
	}

	metrics.AdminLogins.WithLabelValues("success").Inc()
	logger.Info("Admin logged in", zap.Int64("expires_at", session.ExpiresAt))

	return session, issued.Token, nil
}

// Logout revokes token when it is still a valid session. Unknown or
// expired tokens are ignored.
func (s *AdminAuthService) Logout(ctx context.Context, token string) {
	if !s.Enabled() || token == "" {
		return
	}

	claims, err := s.tokenManager.Validate(token)
	if err != nil {
		logger.Debug("Admin logout with unusable token", zap.Error(err))
		return
	}

	s.tokenManager.Revoke(claims)
	logger.Info("Admin logged out", zap.String("session_id", claims.ID))
}

func (s *AdminAuthService) GetSessionTTL() int {
	return s.config.SessionTTLHours * 3600
}

func (s *AdminAuthService) GetCookieDomain() string {
	return s.config.CookieDomain
}

func (s *AdminAuthService) GetCookieSecure() bool {
	return s.config.CookieSecure
}

func (s *AdminAuthService) GetTokenManager() *jwt.TokenManager {
	return s.tokenManager
}
