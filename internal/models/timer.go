package models

import "time"

// StudySession is a row in the timer table. Sessions for the same
// user/module/assignment/day are merged by accumulating duration.
type StudySession struct {
	ID           int64     `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	ModuleID     string    `db:"module_id" json:"module_id"`
	AssignmentID *string   `db:"assignment_id" json:"assignment_id,omitempty"`
	StartTime    time.Time `db:"start_time" json:"start_time"`
	EndTime      time.Time `db:"end_time" json:"end_time"`
	Duration     int64     `db:"duration" json:"duration"`
}

// SessionSummaryRow aggregates studied seconds per module/assignment/day.
type SessionSummaryRow struct {
	ModuleID      string  `db:"module_id" json:"module_id"`
	AssignmentID  *string `db:"assignment_id" json:"assignment_id,omitempty"`
	SessionDate   string  `db:"session_date" json:"session_date"`
	TotalDuration int64   `db:"total_duration" json:"total_duration"`
}
