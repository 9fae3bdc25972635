package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/middleware"
	"github.com/grindhub/grindhub-api/internal/models"
	"github.com/grindhub/grindhub-api/internal/service"
)

type classSourceMock struct {
	classes []models.Class
	called  bool
}

func (m *classSourceMock) ListByUser(context.Context, string) ([]models.Class, error) {
	m.called = true
	return m.classes, nil
}

type assignmentSourceMock struct {
	assignments []models.Assignment
}

func (m *assignmentSourceMock) ListByUser(context.Context, string) ([]models.Assignment, error) {
	return m.assignments, nil
}

func newTimetableHandler(classes *classSourceMock, assignments *assignmentSourceMock) *TimetableHandler {
	svc := service.NewTimetableService(classes, assignments, nil, zap.NewNop(), 0)
	return NewTimetableHandler(svc)
}

func timetableContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1"})
	return c, w
}

func TestTimetableWindowDefaultsToSevenDays(t *testing.T) {
	classes := &classSourceMock{}
	handler := newTimetableHandler(classes, &assignmentSourceMock{})
	c, w := timetableContext(t, "/timetable?start=2026-03-09")

	handler.Window(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, classes.called)

	var body struct {
		Data []models.DayView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 7)
	assert.Equal(t, "2026-03-09", body.Data[0].Date)
	for _, day := range body.Data {
		assert.True(t, day.Free)
	}
}

func TestTimetableWindowRejectsOutOfRangeDays(t *testing.T) {
	for _, days := range []string{"0", "32", "abc"} {
		classes := &classSourceMock{}
		handler := newTimetableHandler(classes, &assignmentSourceMock{})
		c, w := timetableContext(t, "/timetable?days="+days)

		handler.Window(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, classes.called)
	}
}

func TestTimetableWindowRejectsMalformedStart(t *testing.T) {
	classes := &classSourceMock{}
	handler := newTimetableHandler(classes, &assignmentSourceMock{})
	c, w := timetableContext(t, "/timetable?start=09-03-2026")

	handler.Window(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, classes.called)
}

func TestTimetableWindowRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTimetableHandler(&classSourceMock{}, &assignmentSourceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/timetable", nil)
	require.NoError(t, err)
	c.Request = req

	handler.Window(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
