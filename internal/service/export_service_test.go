package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/models"
	"github.com/grindhub/grindhub-api/pkg/jobs"
	"github.com/grindhub/grindhub-api/pkg/storage"
)

func newExportService(t *testing.T, classes *fakeClassRepo, assignments *fakeAssignmentRepo) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	timetable := NewTimetableService(classes, assignments, nil, zap.NewNop(), 0)
	return NewExportService(timetable, store, signer, ExportConfig{APIPrefix: "/api/auth"}, zap.NewNop())
}

func TestEnqueueRejectsUnknownFormat(t *testing.T) {
	svc := newExportService(t, &fakeClassRepo{}, &fakeAssignmentRepo{})

	_, err := svc.Enqueue("u1", "docx", time.Now(), 7)
	require.Error(t, err)
}

func TestEnqueueRejectsBadDayRange(t *testing.T) {
	svc := newExportService(t, &fakeClassRepo{}, &fakeAssignmentRepo{})

	_, err := svc.Enqueue("u1", models.ExportFormatCSV, time.Now(), 0)
	require.Error(t, err)
	_, err = svc.Enqueue("u1", models.ExportFormatCSV, time.Now(), 40)
	require.Error(t, err)
}

func TestProcessRendersAndCompletesJob(t *testing.T) {
	classes := &fakeClassRepo{classes: []models.Class{
		{ID: "c1", ModuleName: "CS2040", ClassType: "Lecture", Location: "LT19", StartDate: "2026-03-10", StartTime: 14 * 60},
	}}
	svc := newExportService(t, classes, &fakeAssignmentRepo{})

	job := &models.ExportJob{
		ID:        "job1",
		UserID:    "u1",
		Format:    models.ExportFormatCSV,
		StartDate: "2026-03-09",
		Days:      7,
		Status:    models.ExportStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	svc.mu.Lock()
	svc.jobByID[job.ID] = job
	svc.mu.Unlock()

	err := svc.process(context.Background(), jobs.Job{ID: job.ID, Payload: job.ID})
	require.NoError(t, err)

	state, err := svc.Get(job.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusCompleted, state.Status)
	assert.Contains(t, state.DownloadURL, "/api/auth/exports/download/")
	require.NotNil(t, state.CompletedAt)

	token := strings.TrimPrefix(state.DownloadURL, "/api/auth/exports/download/")
	file, relPath, err := svc.Resolve(token)
	require.NoError(t, err)
	defer file.Close()
	assert.Contains(t, relPath, "timetable_u1_2026-03-09.csv")
}

func TestGetHidesOtherUsersJobs(t *testing.T) {
	svc := newExportService(t, &fakeClassRepo{}, &fakeAssignmentRepo{})
	svc.mu.Lock()
	svc.jobByID["job1"] = &models.ExportJob{ID: "job1", UserID: "u1"}
	svc.mu.Unlock()

	_, err := svc.Get("job1", "u2")
	require.Error(t, err)
}

func TestTimetableDatasetSkipsFreeDays(t *testing.T) {
	location := "LT19"
	completion := 40
	views := []models.DayView{
		{Date: "2026-03-09", Free: true},
		{Date: "2026-03-10", Items: []models.ScheduleItem{
			{ModuleCode: "CS2040", Name: "Lecture", Kind: models.KindLecture, Location: &location, TimeOfDay: 14 * 60},
			{ModuleCode: "CS2040", Name: "Problem Set 4", Kind: models.KindAssignment, CompletionPercentage: &completion, TimeOfDay: 23 * 60},
		}},
	}

	dataset := timetableDataset(views)
	require.Len(t, dataset.Rows, 2)
	assert.Equal(t, []string{"2026-03-10", "14:00", "CS2040", "LECTURE", "Lecture", "LT19", ""}, dataset.Rows[0])
	assert.Equal(t, "40%", dataset.Rows[1][6])
	assert.Equal(t, "23:00", dataset.Rows[1][1])
}
