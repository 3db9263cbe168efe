package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthPingTimeout = 2 * time.Second

// HealthChecks are the probes behind the healthcheck. Nil probes are skipped.
type HealthChecks struct {
	ProjectsReady func() bool
	PingDatabase  func(ctx context.Context) error
	WebhookState  func() string
}

type HealthHandler struct {
	checks HealthChecks
}

func NewHealthHandler(checks HealthChecks) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	if h.checks.ProjectsReady != nil && !h.checks.ProjectsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "project cache not initialized",
		})
		return
	}

	resp := gin.H{"status": "ok"}

	if h.checks.PingDatabase != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		if err := h.checks.PingDatabase(ctx); err != nil {
			attachError(c, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"reason": "database unreachable",
			})
			return
		}
		resp["database"] = "ok"
	}

	// An open breaker degrades notifications only
	if h.checks.WebhookState != nil {
		resp["webhook"] = h.checks.WebhookState()
	}

	c.JSON(http.StatusOK, resp)
}
