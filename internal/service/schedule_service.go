package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/models"
	appErrors "github.com/grindhub/grindhub-api/pkg/errors"
)

type scheduleClassRepository interface {
	Create(ctx context.Context, class *models.Class) error
	ListByUser(ctx context.Context, userID string) ([]models.Class, error)
}

type scheduleAssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	ListByUser(ctx context.Context, userID string) ([]models.Assignment, error)
	UpdatePercentage(ctx context.Context, id string, percentage int) error
}

// CreateClassRequest is the payload for adding a class session.
type CreateClassRequest struct {
	ModuleName string `json:"modulename" validate:"required,min=1"`
	ClassType  string `json:"classtype" validate:"required,min=1"`
	Location   string `json:"classlocation"`
	StartDate  string `json:"startdate" validate:"required"`
	StartTime  int    `json:"starttime"`
	EndDate    string `json:"enddate" validate:"required"`
	EndTime    int    `json:"endtime"`
}

// CreateAssignmentRequest is the payload for adding an assignment.
type CreateAssignmentRequest struct {
	Name        string `json:"assignmentname" validate:"required,min=1"`
	ModuleName  string `json:"assignmentmodule" validate:"required,min=1"`
	DueDate     string `json:"assignmentduedate" validate:"required"`
	TimeDueDate int    `json:"assignmenttimeduedate"`
	TimeNeeded  *int   `json:"timeneeded,omitempty"`
}

// UpdatePercentageRequest is the payload for moving an assignment's
// completion tracker.
type UpdatePercentageRequest struct {
	Percentage int `json:"assignmentpercentage" validate:"gte=0,lte=100"`
}

// ScheduleService manages the class and assignment rows that feed the
// timetable.
type ScheduleService struct {
	classes     scheduleClassRepository
	assignments scheduleAssignmentRepository
	timetable   *TimetableService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(classes scheduleClassRepository, assignments scheduleAssignmentRepository, timetable *TimetableService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ScheduleService{classes: classes, assignments: assignments, timetable: timetable, validator: validate, logger: logger}
}

// CreateClass validates and stores a new class session.
func (s *ScheduleService) CreateClass(ctx context.Context, userID string, req CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if err := validateDate(req.StartDate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start date")
	}
	if err := validateDate(req.EndDate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end date")
	}
	if err := validateTimeOfDay(req.StartTime); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start time")
	}
	if err := validateTimeOfDay(req.EndTime); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end time")
	}

	class := &models.Class{
		UserID:     userID,
		ModuleName: req.ModuleName,
		ClassType:  req.ClassType,
		Location:   req.Location,
		StartDate:  models.DateKey(req.StartDate),
		StartTime:  req.StartTime,
		EndDate:    models.DateKey(req.EndDate),
		EndTime:    req.EndTime,
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	s.invalidateTimetable(ctx, userID)
	return class, nil
}

// ListClasses returns the user's classes.
func (s *ScheduleService) ListClasses(ctx context.Context, userID string) ([]models.Class, error) {
	classes, err := s.classes.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	if classes == nil {
		classes = []models.Class{}
	}
	return classes, nil
}

// CreateAssignment validates and stores a new assignment. Completion always
// starts at zero regardless of the payload.
func (s *ScheduleService) CreateAssignment(ctx context.Context, userID string, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if err := validateDate(req.DueDate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid due date")
	}
	if err := validateTimeOfDay(req.TimeDueDate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid due time")
	}

	assignment := &models.Assignment{
		Name:        req.Name,
		ModuleName:  req.ModuleName,
		DueDate:     models.DateKey(req.DueDate),
		TimeDueDate: req.TimeDueDate,
		TimeNeeded:  req.TimeNeeded,
		UserID:      userID,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	s.invalidateTimetable(ctx, userID)
	return assignment, nil
}

// ListAssignments returns the user's assignments.
func (s *ScheduleService) ListAssignments(ctx context.Context, userID string) ([]models.Assignment, error) {
	assignments, err := s.assignments.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	if assignments == nil {
		assignments = []models.Assignment{}
	}
	return assignments, nil
}

// UpdatePercentage moves the completion tracker of an assignment.
func (s *ScheduleService) UpdatePercentage(ctx context.Context, userID, assignmentID string, req UpdatePercentageRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid percentage payload")
	}
	if err := s.assignments.UpdatePercentage(ctx, assignmentID, req.Percentage); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update percentage")
	}
	s.invalidateTimetable(ctx, userID)
	return nil
}

func (s *ScheduleService) invalidateTimetable(ctx context.Context, userID string) {
	if s.timetable != nil {
		s.timetable.Invalidate(ctx, userID)
	}
}

func validateDate(date string) error {
	_, err := time.Parse("2006-01-02", models.DateKey(date))
	return err
}

func validateTimeOfDay(minutes int) error {
	if minutes < 0 || minutes >= models.MinutesPerDay {
		return appErrors.Clone(appErrors.ErrValidation, "time of day out of range")
	}
	return nil
}
