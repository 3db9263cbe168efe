package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/portfolio-api/internal/models"
	"github.com/portfolio-site/portfolio-api/pkg/jwt"
)

const (
	// AdminSessionCookieName is the cookie used for the site owner session.
	AdminSessionCookieName = "admin_session"

	// AdminSessionContextKey stores the authenticated admin session in request context.
	AdminSessionContextKey = "admin_session"
)

var (
	ErrAdminSessionNotFound = errors.New("admin session not found in context")
	ErrInvalidAdminSession  = errors.New("invalid admin session type")
)

// SessionToken returns the admin token, preferring an Authorization bearer
// token over the session cookie
func SessionToken(c *gin.Context) (token string, fromCookie bool, err error) {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, value, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(value) == "" {
			return "", false, fmt.Errorf("malformed authorization header")
		}
		return strings.TrimSpace(value), false, nil
	}

	cookie, err := c.Cookie(AdminSessionCookieName)
	if err != nil || cookie == "" {
		return "", false, fmt.Errorf("missing admin session cookie")
	}
	return cookie, true, nil
}

// AdminSessionMiddleware validates the admin JWT and stores the session in context.
func AdminSessionMiddleware(tokenManager *jwt.TokenManager, cookieDomain string, cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, fromCookie, err := SessionToken(c)
		if err != nil {
			_ = c.Error(err) //nolint:errcheck
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		claims, err := tokenManager.Validate(token)
		if err != nil {
			_ = c.Error(fmt.Errorf("invalid admin session token: %w", err)) //nolint:errcheck
			if fromCookie {
				ClearAdminSessionCookie(c, cookieDomain, cookieSecure)
			}
			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			case errors.Is(err, jwt.ErrRevokedToken):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session ended"})
			default:
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			}
			c.Abort()
			return
		}

		if claims.Role != models.AdminRole {
			_ = c.Error(fmt.Errorf("unexpected role %q", claims.Role)) //nolint:errcheck
			if fromCookie {
				ClearAdminSessionCookie(c, cookieDomain, cookieSecure)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		session := &models.AdminSession{
			Subject:   claims.Subject,
			Role:      claims.Role,
			ExpiresAt: claims.ExpiresAt.Unix(),
			IssuedAt:  claims.IssuedAt.Unix(),
		}

		c.Set(AdminSessionContextKey, session)
		c.Next()
	}
}

func GetAdminSession(c *gin.Context) (*models.AdminSession, error) {
	val, exists := c.Get(AdminSessionContextKey)
	if !exists {
		return nil, ErrAdminSessionNotFound
	}

	session, ok := val.(*models.AdminSession)
	if !ok {
		return nil, ErrInvalidAdminSession
	}

	return session, nil
}

func SetAdminSessionCookie(c *gin.Context, token string, ttlSeconds int, domain string, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		AdminSessionCookieName,
		token,
		ttlSeconds,
		"/api/v1/admin",
		domain,
		secure,
		true,
	)
}

func ClearAdminSessionCookie(c *gin.Context, domain string, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		AdminSessionCookieName,
		"",
		-1,
		"/api/v1/admin",
		domain,
		secure,
		true,
	)
}
