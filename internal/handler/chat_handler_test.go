package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/middleware"
	"github.com/grindhub/grindhub-api/internal/models"
	"github.com/grindhub/grindhub-api/internal/relay"
	"github.com/grindhub/grindhub-api/internal/service"
)

type messageStoreMock struct {
	gotContent string
	appended   bool
}

func (m *messageStoreMock) History(context.Context, string, int) ([]models.GroupMessage, error) {
	return nil, nil
}

func (m *messageStoreMock) Append(_ context.Context, groupID, userID, content string, timeSent int) (*models.GroupMessage, error) {
	m.appended = true
	m.gotContent = content
	return &models.GroupMessage{ID: "m1", GroupID: groupID, UserID: userID, Content: content, TimeSent: timeSent}, nil
}

func (m *messageStoreMock) LatestPerGroup(context.Context, string) ([]models.LatestMessage, error) {
	return nil, nil
}

type userLookupMock struct {
	user *models.User
}

func (m *userLookupMock) FindByEmail(context.Context, string) (*models.User, error) {
	return m.user, nil
}

func (m *userLookupMock) FindByID(context.Context, string) (*models.User, error) {
	return m.user, nil
}

func (m *userLookupMock) Create(context.Context, *models.User) error {
	return nil
}

func newChatHandler(messages *messageStoreMock, users *userLookupMock) *ChatHandler {
	chatSvc := service.NewChatService(messages, nil, zap.NewNop(), 0, 0)
	authSvc := service.NewAuthService(users, nil, zap.NewNop(), service.AuthConfig{TokenSecret: "secret"})
	return NewChatHandler(chatSvc, authSvc, relay.NewHub(zap.NewNop()), nil, zap.NewNop(), time.Second)
}

func chatSendContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/groups/g1/messages", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "g1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Email: "ana@example.com"})
	return c, w
}

func TestChatSendPersistsTrimmedMessage(t *testing.T) {
	messages := &messageStoreMock{}
	users := &userLookupMock{user: &models.User{ID: "u1", Username: "ana"}}
	handler := newChatHandler(messages, users)
	c, w := chatSendContext(t, `{"messagecontent":"  hi there  "}`)

	handler.Send(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "hi there", messages.gotContent)

	var body struct {
		Data models.GroupMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ana", body.Data.Username)
	assert.Equal(t, "g1", body.Data.GroupID)
}

func TestChatSendRejectsWhitespaceOnlyMessage(t *testing.T) {
	messages := &messageStoreMock{}
	users := &userLookupMock{user: &models.User{ID: "u1", Username: "ana"}}
	handler := newChatHandler(messages, users)
	c, w := chatSendContext(t, `{"messagecontent":"   "}`)

	handler.Send(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, messages.appended)
}
