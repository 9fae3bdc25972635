package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grindhub/grindhub-api/internal/middleware"
	"github.com/grindhub/grindhub-api/internal/service"
	appErrors "github.com/grindhub/grindhub-api/pkg/errors"
	"github.com/grindhub/grindhub-api/pkg/response"
)

// ModuleHandler wires HTTP endpoints to the module service.
type ModuleHandler struct {
	service *service.ModuleService
}

// NewModuleHandler creates a new handler.
func NewModuleHandler(svc *service.ModuleService) *ModuleHandler {
	return &ModuleHandler{service: svc}
}

// Create godoc
// @Summary Enroll in a module
// @Tags Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateModuleRequest true "Module payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /modules [post]
func (h *ModuleHandler) Create(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid module payload"))
		return
	}

	module, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, module)
}

// List godoc
// @Summary List enrolled modules
// @Tags Modules
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /modules [get]
func (h *ModuleHandler) List(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	modules, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, modules, nil)
}

// Names godoc
// @Summary List distinct module names
// @Description Every module name the user references, including assignment-only ones
// @Tags Modules
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /modules/names [get]
func (h *ModuleHandler) Names(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	names, err := h.service.Names(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, names, nil)
}
