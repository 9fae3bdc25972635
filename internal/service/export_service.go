package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grindhub/grindhub-api/internal/models"
	appErrors "github.com/grindhub/grindhub-api/pkg/errors"
	"github.com/grindhub/grindhub-api/pkg/export"
	"github.com/grindhub/grindhub-api/pkg/jobs"
	"github.com/grindhub/grindhub-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	Workers   int
	Retries   int
}

// ExportService renders timetable windows to downloadable CSV or PDF files
// through a background worker queue. Job state lives in process memory; the
// rendered files outlive the jobs on disk until cleanup.
type ExportService struct {
	timetable *TimetableService
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	queue     *jobs.Queue
	logger    *zap.Logger
	cfg       ExportConfig

	mu      sync.RWMutex
	jobByID map[string]*models.ExportJob
}

// NewExportService constructs an ExportService. Start must be called before
// jobs are enqueued.
func NewExportService(timetable *TimetableService, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	s := &ExportService{
		timetable: timetable,
		storage:   store,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
		jobByID:   make(map[string]*models.ExportJob),
	}
	s.queue = jobs.NewQueue("timetable-export", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue registers a new export job and hands it to the worker pool.
func (s *ExportService) Enqueue(userID string, format models.ExportFormat, start time.Time, days int) (*models.ExportJob, error) {
	switch format {
	case models.ExportFormatCSV, models.ExportFormatPDF:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if days < 1 || days > 31 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "days must be between 1 and 31")
	}

	job := &models.ExportJob{
		ID:        uuid.NewString(),
		UserID:    userID,
		Format:    format,
		StartDate: start.UTC().Format("2006-01-02"),
		Days:      days,
		Status:    models.ExportStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobByID[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "timetable-export", Payload: job.ID}); err != nil {
		s.fail(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return s.snapshot(job.ID), nil
}

// Get returns the job's current state. Jobs are only visible to their owner.
func (s *ExportService) Get(jobID, userID string) (*models.ExportJob, error) {
	job := s.snapshot(jobID)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	if job.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export job belongs to another user")
	}
	return job, nil
}

// Resolve validates a signed download token and opens the rendered file.
func (s *ExportService) Resolve(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file no longer available")
	}
	return file, relPath, nil
}

// Cleanup removes rendered files older than the result TTL.
func (s *ExportService) Cleanup() {
	removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(removed) > 0 {
		s.logger.Info("export cleanup removed files", zap.Int("count", len(removed)))
	}
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	jobID, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	s.transition(jobID, models.ExportStatusProcessing)
	state := s.snapshot(jobID)
	if state == nil {
		return fmt.Errorf("export job %s not found", jobID)
	}

	start, err := time.Parse("2006-01-02", state.StartDate)
	if err != nil {
		s.fail(jobID, err)
		return err
	}

	views, err := s.timetable.Window(ctx, state.UserID, start, state.Days)
	if err != nil {
		s.fail(jobID, err)
		return err
	}

	dataset := timetableDataset(views)
	var payload []byte
	switch state.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		title := fmt.Sprintf("Timetable %s (%d days)", state.StartDate, state.Days)
		payload, err = s.pdf.Render(dataset, title)
	}
	if err != nil {
		s.fail(jobID, err)
		return err
	}

	filename := fmt.Sprintf("timetable_%s_%s.%s", state.UserID, state.StartDate, state.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.fail(jobID, err)
		return err
	}

	token, _, err := s.signer.Generate(jobID, relPath)
	if err != nil {
		s.fail(jobID, err)
		return err
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	downloadURL := fmt.Sprintf("%s/exports/download/%s", prefix, token)

	now := time.Now().UTC()
	s.update(jobID, func(j *models.ExportJob) {
		j.Status = models.ExportStatusCompleted
		j.FilePath = relPath
		j.DownloadURL = downloadURL
		j.CompletedAt = &now
	})
	return nil
}

func timetableDataset(views []models.DayView) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Date", "Time", "Module", "Kind", "Name", "Location", "Completion"},
	}
	for _, view := range views {
		for _, item := range view.Items {
			location := ""
			if item.Location != nil {
				location = *item.Location
			}
			completion := ""
			if item.CompletionPercentage != nil {
				completion = fmt.Sprintf("%d%%", *item.CompletionPercentage)
			}
			dataset.Rows = append(dataset.Rows, []string{
				view.Date,
				models.FormatTimeOfDay(item.TimeOfDay),
				item.ModuleCode,
				string(item.Kind),
				item.Name,
				location,
				completion,
			})
		}
	}
	return dataset
}

func (s *ExportService) snapshot(jobID string) *models.ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobByID[jobID]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

func (s *ExportService) transition(jobID string, status models.ExportStatus) {
	s.update(jobID, func(j *models.ExportJob) {
		j.Status = status
	})
}

func (s *ExportService) fail(jobID string, err error) {
	now := time.Now().UTC()
	s.update(jobID, func(j *models.ExportJob) {
		j.Status = models.ExportStatusFailed
		j.Error = err.Error()
		j.CompletedAt = &now
	})
}

func (s *ExportService) update(jobID string, fn func(*models.ExportJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobByID[jobID]; ok {
		fn(job)
	}
}
