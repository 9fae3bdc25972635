package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grindhub/grindhub-api/internal/middleware"
	"github.com/grindhub/grindhub-api/internal/service"
	appErrors "github.com/grindhub/grindhub-api/pkg/errors"
	"github.com/grindhub/grindhub-api/pkg/response"
)

// TimerHandler wires HTTP endpoints to the timer service.
type TimerHandler struct {
	service *service.TimerService
}

// NewTimerHandler creates a new handler.
func NewTimerHandler(svc *service.TimerService) *TimerHandler {
	return &TimerHandler{service: svc}
}

// Record godoc
// @Summary Log a study session
// @Description Sessions for the same module, assignment and day are merged
// @Tags Timer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.RecordSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timer/sessions [post]
func (h *TimerHandler) Record(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.RecordSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}

	session, err := h.service.Record(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, session)
}

// Summary godoc
// @Summary Studied time summary
// @Description Aggregated seconds per module, assignment and day
// @Tags Timer
// @Produce json
// @Security BearerAuth
// @Param since query string false "Only include sessions on or after this date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /timer/summary [get]
func (h *TimerHandler) Summary(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var since *string
	if raw := c.Query("since"); raw != "" {
		since = &raw
	}

	rows, err := h.service.Summary(c.Request.Context(), claims.UserID, since)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rows, nil)
}
