package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/models"
	appErrors "github.com/grindhub/grindhub-api/pkg/errors"
)

type timerRepository interface {
	FindForDay(ctx context.Context, userID, moduleID string, assignmentID *string, day string) (*models.StudySession, error)
	Extend(ctx context.Context, id int64, duration int64, endTime time.Time) (*models.StudySession, error)
	Insert(ctx context.Context, session *models.StudySession) (*models.StudySession, error)
	Summary(ctx context.Context, userID string, since *string) ([]models.SessionSummaryRow, error)
}

// RecordSessionRequest is the payload for logging a finished study session.
type RecordSessionRequest struct {
	ModuleID     string    `json:"module_id" validate:"required,min=1"`
	AssignmentID *string   `json:"assignment_id,omitempty"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" validate:"required"`
}

// TimerService records study sessions and aggregates studied time. Sessions
// for the same module, assignment and day merge into one row.
type TimerService struct {
	repo      timerRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimerService constructs a TimerService.
func NewTimerService(repo timerRepository, validate *validator.Validate, logger *zap.Logger) *TimerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TimerService{repo: repo, validator: validate, logger: logger}
}

// Record logs a finished session, merging it into an existing row for the
// same module, assignment and day when one exists.
func (s *TimerService) Record(ctx context.Context, userID string, req RecordSessionRequest) (*models.StudySession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}

	duration := int64(req.EndTime.Sub(req.StartTime).Seconds())
	day := req.StartTime.UTC().Format("2006-01-02")

	existing, err := s.repo.FindForDay(ctx, userID, req.ModuleID, req.AssignmentID, day)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up existing session")
	}

	if existing != nil {
		merged, err := s.repo.Extend(ctx, existing.ID, duration, req.EndTime.UTC())
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to extend session")
		}
		return merged, nil
	}

	session := &models.StudySession{
		UserID:       userID,
		ModuleID:     req.ModuleID,
		AssignmentID: req.AssignmentID,
		StartTime:    req.StartTime.UTC(),
		EndTime:      req.EndTime.UTC(),
		Duration:     duration,
	}
	created, err := s.repo.Insert(ctx, session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record session")
	}
	return created, nil
}

// Summary aggregates studied seconds per module, assignment and day.
func (s *TimerService) Summary(ctx context.Context, userID string, since *string) ([]models.SessionSummaryRow, error) {
	if since != nil {
		if _, err := time.Parse("2006-01-02", *since); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid since date")
		}
	}
	rows, err := s.repo.Summary(ctx, userID, since)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study summary")
	}
	if rows == nil {
		rows = []models.SessionSummaryRow{}
	}
	return rows, nil
}
