package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/portfolio-site/portfolio-api/pkg/errors"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin context
// so the observability middleware can include the reason in the request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// respondErrorWithDetails sends an error response with an additional details field.
func respondErrorWithDetails(c *gin.Context, status int, message string, details any, err error) { //nolint:unparam
	attachError(c, err)
	c.JSON(status, gin.H{"error": message, "details": details})
}

// rejectOversizedBody answers 413 when a bind failed because the body ran
// past the limit installed by BodySizeLimitMiddleware
func rejectOversizedBody(c *gin.Context, err error) bool {
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		return false
	}
	respondError(c, http.StatusRequestEntityTooLarge, "Request body too large", err)
	return true
}

// respondServiceError maps application errors to HTTP statuses.
// notFoundMessage names the missing resource for 404s.
func respondServiceError(c *gin.Context, err error, notFoundMessage string) {
	status := apperrors.HTTPStatus(err)
	switch {
	case status == http.StatusNotFound:
		respondError(c, status, notFoundMessage, err)
	case status == http.StatusBadRequest:
		respondErrorWithDetails(c, status, "Invalid request", gin.H{"message": err.Error()}, err)
	case errors.Is(err, apperrors.ErrReadOnly):
		respondError(c, status, "Projects are read-only in offline mode", err)
	case status == http.StatusConflict:
		respondError(c, status, "Already exists", err)
	case status == http.StatusUnauthorized:
		respondError(c, status, "Unauthorized", err)
	case status == http.StatusServiceUnavailable:
		respondError(c, status, "Service temporarily unavailable", err)
	default:
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
