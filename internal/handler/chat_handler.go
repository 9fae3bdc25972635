package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/middleware"
	"github.com/grindhub/grindhub-api/internal/relay"
	"github.com/grindhub/grindhub-api/internal/service"
	appErrors "github.com/grindhub/grindhub-api/pkg/errors"
	"github.com/grindhub/grindhub-api/pkg/response"
)

// ChatHandler serves message history over REST and live chat over
// websockets.
type ChatHandler struct {
	chat         *service.ChatService
	auth         *service.AuthService
	hub          *relay.Hub
	metrics      *service.MetricsService
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewChatHandler creates a new handler.
func NewChatHandler(chat *service.ChatService, auth *service.AuthService, hub *relay.Hub, metrics *service.MetricsService, logger *zap.Logger, writeTimeout time.Duration) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		chat:         chat,
		auth:         auth,
		hub:          hub,
		metrics:      metrics,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

type sendMessageRequest struct {
	Content string `json:"messagecontent"`
}

// History godoc
// @Summary Group message history
// @Description Messages in server order; an empty group yields an empty list
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/messages [get]
func (h *ChatHandler) History(c *gin.Context) {
	if _, ok := middleware.CurrentClaims(c); !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	messages, err := h.chat.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, messages, nil)
}

// Send godoc
// @Summary Post a message
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Param payload body sendMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /groups/{id}/messages [post]
func (h *ChatHandler) Send(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}

	username := ""
	if user, err := h.auth.GetUser(c.Request.Context(), claims.UserID); err == nil {
		username = user.Username
	}

	msg, err := h.chat.Post(c.Request.Context(), c.Param("id"), claims.UserID, username, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, msg)
}

// Latest godoc
// @Summary Newest message per group
// @Description Chat list preview of the user's groups
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /messages/latest [get]
func (h *ChatHandler) Latest(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	messages, err := h.chat.Latest(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, messages, nil)
}

// Socket godoc
// @Summary Live chat websocket
// @Description Upgrade to a websocket session; join a group then exchange chat messages
// @Tags Chat
// @Param token query string false "Bearer token when headers are unavailable"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} response.Envelope
// @Router /ws [get]
func (h *ChatHandler) Socket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = parts[1]
		}
	}
	if _, err := h.auth.ValidateToken(token); err != nil {
		response.Error(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	session := relay.NewSession(c.Request.Context(), relay.NewConn(conn, h.writeTimeout), h.hub, h.chat, h.metrics, h.logger)
	session.Run()
}
