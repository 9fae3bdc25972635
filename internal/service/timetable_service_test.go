package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/models"
)

type fakeClassRepo struct {
	classes []models.Class
	err     error
}

func (f *fakeClassRepo) ListByUser(context.Context, string) ([]models.Class, error) {
	return f.classes, f.err
}

type fakeAssignmentRepo struct {
	assignments []models.Assignment
	err         error
}

func (f *fakeAssignmentRepo) ListByUser(context.Context, string) ([]models.Assignment, error) {
	return f.assignments, f.err
}

func newTimetableService(classes *fakeClassRepo, assignments *fakeAssignmentRepo) *TimetableService {
	return NewTimetableService(classes, assignments, nil, zap.NewNop(), 0)
}

func TestCombineSortsAcrossSources(t *testing.T) {
	svc := newTimetableService(nil, nil)

	classes := []models.Class{
		{ID: "c1", ModuleName: "CS2040", ClassType: "Lecture", Location: "LT19", StartDate: "2026-03-10", StartTime: 14 * 60},
		{ID: "c2", ModuleName: "MA1521", ClassType: "Tutorial", Location: "S17", StartDate: "2026-03-10", StartTime: 9 * 60},
	}
	assignments := []models.Assignment{
		{ID: "a1", Name: "Problem Set 4", ModuleName: "CS2040", DueDate: "2026-03-10", TimeDueDate: 12 * 60},
	}

	items := svc.Combine(classes, assignments)
	require.Len(t, items, 3)
	assert.Equal(t, "MA1521", items[0].ModuleCode)
	assert.Equal(t, "Problem Set 4", items[1].Name)
	assert.Equal(t, "CS2040", items[2].ModuleCode)
	assert.Equal(t, models.KindLecture, items[2].Kind)
}

func TestCombineTieBreakKeepsInputOrder(t *testing.T) {
	svc := newTimetableService(nil, nil)

	classes := []models.Class{
		{ID: "c1", ModuleName: "CS2040", ClassType: "Lecture", StartDate: "2026-03-10", StartTime: 12 * 60},
	}
	assignments := []models.Assignment{
		{ID: "a1", Name: "Problem Set 4", ModuleName: "CS2040", DueDate: "2026-03-10", TimeDueDate: 12 * 60},
	}

	items := svc.Combine(classes, assignments)
	require.Len(t, items, 2)
	assert.Equal(t, models.KindLecture, items[0].Kind)
	assert.Equal(t, models.KindAssignment, items[1].Kind)
}

func TestCombineSkipsUnparsableRows(t *testing.T) {
	svc := newTimetableService(nil, nil)

	classes := []models.Class{
		{ID: "c1", ModuleName: "CS2040", ClassType: "Lecture", StartDate: "not-a-date", StartTime: 10 * 60},
		{ID: "c2", ModuleName: "MA1521", ClassType: "Tutorial", StartDate: "2026-03-11", StartTime: 10 * 60},
	}
	assignments := []models.Assignment{
		{ID: "a1", Name: "Essay", ModuleName: "GEQ1000", DueDate: "2026-03-11", TimeDueDate: -5},
	}

	items := svc.Combine(classes, assignments)
	require.Len(t, items, 1)
	assert.Equal(t, "MA1521", items[0].ModuleCode)
}

func TestCombineTimestampPrefixedDate(t *testing.T) {
	svc := newTimetableService(nil, nil)

	classes := []models.Class{
		{ID: "c1", ModuleName: "CS2040", ClassType: "Lecture", StartDate: "2026-03-10T00:00:00Z", StartTime: 8 * 60},
	}

	items := svc.Combine(classes, nil)
	require.Len(t, items, 1)
	assert.Equal(t, "2026-03-10", items[0].Date)
	assert.Equal(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), items[0].StartsAt)
}

func TestBucketByDayGroupsUnderDateKey(t *testing.T) {
	svc := newTimetableService(nil, nil)

	items := svc.Combine([]models.Class{
		{ID: "c1", ModuleName: "CS2040", ClassType: "Lecture", StartDate: "2026-03-10", StartTime: 10 * 60},
		{ID: "c2", ModuleName: "CS2040", ClassType: "Tutorial", StartDate: "2026-03-11", StartTime: 10 * 60},
		{ID: "c3", ModuleName: "MA1521", ClassType: "Lecture", StartDate: "2026-03-10", StartTime: 16 * 60},
	}, nil)

	buckets := svc.BucketByDay(items)
	require.Len(t, buckets, 2)
	require.Len(t, buckets["2026-03-10"], 2)
	assert.Equal(t, "CS2040", buckets["2026-03-10"][0].ModuleCode)
	assert.Equal(t, "MA1521", buckets["2026-03-10"][1].ModuleCode)
	require.Len(t, buckets["2026-03-11"], 1)
}

func TestRenderWindowAlwaysHasSevenDays(t *testing.T) {
	svc := newTimetableService(nil, nil)

	items := svc.Combine([]models.Class{
		{ID: "c1", ModuleName: "CS2040", ClassType: "Lecture", StartDate: "2026-03-11", StartTime: 10 * 60},
	}, nil)

	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	views := svc.RenderWindow(items, start, 7)
	require.Len(t, views, 7)

	for i, view := range views {
		assert.Equal(t, start.AddDate(0, 0, i).Format("2006-01-02"), view.Date)
		if view.Date == "2026-03-11" {
			assert.False(t, view.Free)
			assert.Len(t, view.Items, 1)
		} else {
			assert.True(t, view.Free)
			assert.Empty(t, view.Items)
		}
	}
}

func TestRenderWindowEmptyAgendaAllFree(t *testing.T) {
	svc := newTimetableService(nil, nil)

	views := svc.RenderWindow(nil, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), 7)
	require.Len(t, views, 7)
	for _, view := range views {
		assert.True(t, view.Free)
	}
}

func TestWindowDegradesWhenOneSourceFails(t *testing.T) {
	classes := &fakeClassRepo{err: errors.New("db down")}
	assignments := &fakeAssignmentRepo{assignments: []models.Assignment{
		{ID: "a1", Name: "Essay", ModuleName: "GEQ1000", DueDate: "2026-03-10", TimeDueDate: 23 * 60},
	}}
	svc := newTimetableService(classes, assignments)

	views, err := svc.Window(context.Background(), "u1", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), 7)
	require.NoError(t, err)
	require.Len(t, views, 7)
	assert.False(t, views[1].Free)
	assert.Equal(t, "Essay", views[1].Items[0].Name)
}

func TestWindowFailsWhenBothSourcesFail(t *testing.T) {
	svc := newTimetableService(
		&fakeClassRepo{err: errors.New("db down")},
		&fakeAssignmentRepo{err: errors.New("db down")},
	)

	_, err := svc.Window(context.Background(), "u1", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), 7)
	require.Error(t, err)
}
