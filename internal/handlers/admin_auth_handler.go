package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/portfolio-api/internal/middleware"
	"github.com/portfolio-site/portfolio-api/internal/models"
	"github.com/portfolio-site/portfolio-api/internal/services"
)

// AdminAuthHandler handles site owner login and logout.
type AdminAuthHandler struct {
	service services.AdminAuthServiceInterface
}

func NewAdminAuthHandler(service services.AdminAuthServiceInterface) *AdminAuthHandler {
	return &AdminAuthHandler{service: service}
}

// Login handles POST /api/v1/admin/login. The token is returned in the body
// and set as an HttpOnly cookie.
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if rejectOversizedBody(c, err) {
			return
		}
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	session, token, err := h.service.Login(c.Request.Context(), req.Password)
	if err != nil {
		attachError(c, err)
		switch {
		case errors.Is(err, services.ErrAdminInvalidCredentials):
			c.JSON(http.StatusUnauthorized, models.AdminLoginResponse{Success: false, Error: "Invalid credentials"})
		case errors.Is(err, services.ErrAdminDisabled):
			c.JSON(http.StatusServiceUnavailable, models.AdminLoginResponse{Success: false, Error: "Admin API is not configured"})
		default:
			c.JSON(http.StatusInternalServerError, models.AdminLoginResponse{Success: false, Error: "Internal server error"})
		}
		return
	}

	middleware.SetAdminSessionCookie(
		c,
		token,
		h.service.GetSessionTTL(),
		h.service.GetCookieDomain(),
		h.service.GetCookieSecure(),
	)

	c.JSON(http.StatusOK, models.AdminLoginResponse{
		Success: true,
		Token:   token,
		Session: session,
	})
}

// Logout revokes the presented session, if any, and clears the cookie
func (h *AdminAuthHandler) Logout(c *gin.Context) {
	if token, _, err := middleware.SessionToken(c); err == nil {
		h.service.Logout(c.Request.Context(), token)
	}

	middleware.ClearAdminSessionCookie(
		c,
		h.service.GetCookieDomain(),
		h.service.GetCookieSecure(),
	)

	c.JSON(http.StatusOK, models.LogoutResponse{Success: true})
}

func (h *AdminAuthHandler) GetSession(c *gin.Context) {
	session, err := middleware.GetAdminSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session,
	})
}
