package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/grindhub/grindhub-api/internal/models"
)

// TimerRepository provides persistence for study timer sessions.
type TimerRepository struct {
	db *sqlx.DB
}

// NewTimerRepository creates a new timer repository.
func NewTimerRepository(db *sqlx.DB) *TimerRepository {
	return &TimerRepository{db: db}
}

// FindForDay returns the session matching user/module/assignment on the
// given calendar day, if any.
func (r *TimerRepository) FindForDay(ctx context.Context, userID, moduleID string, assignmentID *string, day string) (*models.StudySession, error) {
	const query = `SELECT id, user_id, module_id, assignment_id, start_time, end_time, duration FROM timer WHERE user_id = $1 AND module_id = $2 AND (assignment_id = $3 OR ($3 IS NULL AND assignment_id IS NULL)) AND DATE(start_time) = $4 LIMIT 1`
	var session models.StudySession
	if err := r.db.GetContext(ctx, &session, query, userID, moduleID, assignmentID, day); err != nil {
		return nil, err
	}
	return &session, nil
}

// Extend accumulates duration onto an existing session and pushes out its
// end time.
func (r *TimerRepository) Extend(ctx context.Context, id int64, duration int64, endTime time.Time) (*models.StudySession, error) {
	const query = `UPDATE timer SET duration = duration + $1, end_time = $2 WHERE id = $3 RETURNING id, user_id, module_id, assignment_id, start_time, end_time, duration`
	var session models.StudySession
	if err := r.db.GetContext(ctx, &session, query, duration, endTime, id); err != nil {
		return nil, fmt.Errorf("extend timer session: %w", err)
	}
	return &session, nil
}

// Insert creates a fresh session row.
func (r *TimerRepository) Insert(ctx context.Context, session *models.StudySession) (*models.StudySession, error) {
	const query = `INSERT INTO timer (user_id, module_id, assignment_id, start_time, end_time, duration) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, user_id, module_id, assignment_id, start_time, end_time, duration`
	var created models.StudySession
	if err := r.db.GetContext(ctx, &created, query, session.UserID, session.ModuleID, session.AssignmentID, session.StartTime, session.EndTime, session.Duration); err != nil {
		return nil, fmt.Errorf("insert timer session: %w", err)
	}
	return &created, nil
}

// Summary aggregates studied time per module/assignment/day, newest first.
func (r *TimerRepository) Summary(ctx context.Context, userID string, since *string) ([]models.SessionSummaryRow, error) {
	query := `SELECT module_id, assignment_id, to_char(DATE(start_time), 'YYYY-MM-DD') AS session_date, SUM(duration) AS total_duration FROM timer WHERE user_id = $1`
	args := []interface{}{userID}
	if since != nil && *since != "" {
		query += ` AND DATE(start_time) >= $2::date`
		args = append(args, *since)
	}
	query += ` GROUP BY module_id, assignment_id, session_date ORDER BY session_date DESC, module_id`

	var rows []models.SessionSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("timer summary: %w", err)
	}
	return rows, nil
}
