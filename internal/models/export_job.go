package models

import "time"

// ExportStatus tracks the lifecycle of a timetable export job.
type ExportStatus string

const (
	ExportStatusPending    ExportStatus = "PENDING"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusCompleted  ExportStatus = "COMPLETED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportJob is an asynchronous timetable export request. Jobs are ephemeral
// to the process; the rendered file outlives them on disk until cleanup.
type ExportJob struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userid"`
	Format      ExportFormat `json:"format"`
	StartDate   string       `json:"start_date"`
	Days        int          `json:"days"`
	Status      ExportStatus `json:"status"`
	FilePath    string       `json:"-"`
	DownloadURL string       `json:"download_url,omitempty"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}
