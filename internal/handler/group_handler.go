package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grindhub/grindhub-api/internal/middleware"
	"github.com/grindhub/grindhub-api/internal/service"
	appErrors "github.com/grindhub/grindhub-api/pkg/errors"
	"github.com/grindhub/grindhub-api/pkg/response"
)

// GroupHandler wires HTTP endpoints to the group service.
type GroupHandler struct {
	service *service.GroupService
}

// NewGroupHandler creates a new handler.
func NewGroupHandler(svc *service.GroupService) *GroupHandler {
	return &GroupHandler{service: svc}
}

type joinGroupRequest struct {
	InvitationCode string `json:"invitationcode"`
}

// Create godoc
// @Summary Create a study group
// @Tags Groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateGroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid group payload"))
		return
	}

	group, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, group)
}

// Join godoc
// @Summary Join a group by invitation code
// @Tags Groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body joinGroupRequest true "Invitation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /groups/join [post]
func (h *GroupHandler) Join(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req joinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invitation payload"))
		return
	}

	group, err := h.service.Join(c.Request.Context(), claims.UserID, req.InvitationCode)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, group, nil)
}

// List godoc
// @Summary List the user's groups
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	groups, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, groups, nil)
}

// Description godoc
// @Summary Group metadata with member roster
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /groups/{id}/description [get]
func (h *GroupHandler) Description(c *gin.Context) {
	if _, ok := middleware.CurrentClaims(c); !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	entries, err := h.service.Description(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}

// MemberClassTimes godoc
// @Summary Class slots of every group member
// @Description Used to find meeting slots that avoid members' classes
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/classtimes [get]
func (h *GroupHandler) MemberClassTimes(c *gin.Context) {
	if _, ok := middleware.CurrentClaims(c); !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	times, err := h.service.MemberClassTimes(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, times, nil)
}
