package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-site/portfolio-api/internal/models"
	"github.com/portfolio-site/portfolio-api/internal/services"
)

type ContactHandler struct {
	service services.ContactServiceInterface
}

func NewContactHandler(service services.ContactServiceInterface) *ContactHandler {
	return &ContactHandler{service: service}
}

// Submit handles POST /api/v1/contact.
// Every response carries the form state the client should display.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req models.ContactFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if rejectOversizedBody(c, err) {
			return
		}
		formErrors := ParseFormErrors(err)
		if formErrors.IsEmpty() {
			respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", gin.H{"message": err.Error()}, err)
			return
		}
		attachError(c, err)
		c.JSON(http.StatusBadRequest, models.ContactResponse{
			Success: false,
			State:   models.NewFormState(),
			Errors:  &formErrors,
		})
		return
	}

	resp, err := h.service.SubmitContactForm(c.Request.Context(), &req, models.SubmissionMeta{
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		attachError(c, err)
		if resp == nil {
			respondError(c, http.StatusInternalServerError, "Internal server error", err)
			return
		}
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	if !resp.Success {
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListMessages handles GET /api/v1/admin/contact-messages
func (h *ContactHandler) ListMessages(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(c, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = parsed
	}

	resp, err := h.service.ListMessages(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err, "Messages not found")
		return
	}

	c.JSON(http.StatusOK, resp)
}
