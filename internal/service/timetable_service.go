package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/models"
	appErrors "github.com/grindhub/grindhub-api/pkg/errors"
)

type timetableClassRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Class, error)
}

type timetableAssignmentRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Assignment, error)
}

// TimetableService merges classes and assignment deadlines into a single
// chronological agenda.
type TimetableService struct {
	classes     timetableClassRepository
	assignments timetableAssignmentRepository
	cache       *CacheService
	logger      *zap.Logger
	cacheTTL    time.Duration
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(classes timetableClassRepository, assignments timetableAssignmentRepository, cache *CacheService, logger *zap.Logger, cacheTTL time.Duration) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{classes: classes, assignments: assignments, cache: cache, logger: logger, cacheTTL: cacheTTL}
}

// Combine converts class and assignment rows into schedule items and sorts
// them chronologically. The sort is stable, so rows sharing an instant keep
// their input order with classes ahead of assignments. Rows whose stored
// date or time cannot be interpreted are logged and skipped rather than
// sorted against a bogus instant.
func (s *TimetableService) Combine(classes []models.Class, assignments []models.Assignment) []models.ScheduleItem {
	items := make([]models.ScheduleItem, 0, len(classes)+len(assignments))
	for _, c := range classes {
		item, err := models.ItemFromClass(c)
		if err != nil {
			s.logger.Warn("skipping class with invalid schedule data",
				zap.String("classid", c.ID),
				zap.String("modulename", c.ModuleName),
				zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	for _, a := range assignments {
		item, err := models.ItemFromAssignment(a)
		if err != nil {
			s.logger.Warn("skipping assignment with invalid schedule data",
				zap.String("assignmentid", a.ID),
				zap.String("assignmentname", a.Name),
				zap.Error(err))
			continue
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartsAt.Before(items[j].StartsAt)
	})
	return items
}

// BucketByDay groups sorted items under their YYYY-MM-DD key. Items stay in
// chronological order within each bucket.
func (s *TimetableService) BucketByDay(items []models.ScheduleItem) map[string][]models.ScheduleItem {
	buckets := make(map[string][]models.ScheduleItem)
	for _, item := range items {
		key := models.DateKey(item.Date)
		buckets[key] = append(buckets[key], item)
	}
	return buckets
}

// RenderWindow produces exactly days consecutive day views starting at
// start. Days without items are present and marked free, never omitted.
func (s *TimetableService) RenderWindow(items []models.ScheduleItem, start time.Time, days int) []models.DayView {
	if days < 1 {
		days = 1
	}
	buckets := s.BucketByDay(items)
	views := make([]models.DayView, 0, days)
	for i := 0; i < days; i++ {
		key := start.AddDate(0, 0, i).Format("2006-01-02")
		bucket := buckets[key]
		views = append(views, models.DayView{
			Date:  key,
			Free:  len(bucket) == 0,
			Items: bucket,
		})
	}
	return views
}

// Window loads the merged agenda for a user over the given day range. A
// failure on one source degrades the view to the other source rather than
// failing the whole request; only both sources failing is an error.
func (s *TimetableService) Window(ctx context.Context, userID string, start time.Time, days int) ([]models.DayView, error) {
	start = start.UTC().Truncate(24 * time.Hour)
	cacheKey := fmt.Sprintf("timetable:%s:%s:%d", userID, start.Format("2006-01-02"), days)

	if s.cache.Enabled() {
		var cached []models.DayView
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	classes, classErr := s.classes.ListByUser(ctx, userID)
	if classErr != nil {
		s.logger.Warn("failed to load classes for timetable", zap.String("userid", userID), zap.Error(classErr))
	}
	assignments, assignErr := s.assignments.ListByUser(ctx, userID)
	if assignErr != nil {
		s.logger.Warn("failed to load assignments for timetable", zap.String("userid", userID), zap.Error(assignErr))
	}
	if classErr != nil && assignErr != nil {
		return nil, appErrors.Wrap(classErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable sources")
	}

	views := s.RenderWindow(s.Combine(classes, assignments), start, days)

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, views, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache timetable window", zap.Error(err))
		}
	}
	return views, nil
}

// Items loads the flat merged agenda for a user without day bucketing.
func (s *TimetableService) Items(ctx context.Context, userID string) ([]models.ScheduleItem, error) {
	classes, classErr := s.classes.ListByUser(ctx, userID)
	if classErr != nil {
		s.logger.Warn("failed to load classes for timetable", zap.String("userid", userID), zap.Error(classErr))
	}
	assignments, assignErr := s.assignments.ListByUser(ctx, userID)
	if assignErr != nil {
		s.logger.Warn("failed to load assignments for timetable", zap.String("userid", userID), zap.Error(assignErr))
	}
	if classErr != nil && assignErr != nil {
		return nil, appErrors.Wrap(classErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable sources")
	}
	return s.Combine(classes, assignments), nil
}

// Invalidate drops any cached windows for the user after schedule writes.
func (s *TimetableService) Invalidate(ctx context.Context, userID string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("timetable:%s:*", userID)); err != nil {
		s.logger.Warn("failed to invalidate timetable cache", zap.String("userid", userID), zap.Error(err))
	}
}
