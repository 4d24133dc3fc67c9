package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rollbook/rollbook-api/internal/models"
)

// AttendanceRepository handles persistence for attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const upsertMarkQuery = `INSERT INTO attendance (id, student_id, date, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (student_id, date)
DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
RETURNING id, student_id, date, status, created_at, updated_at`

// Upsert inserts or replaces the single mark for a (student, date) pair.
func (r *AttendanceRepository) Upsert(ctx context.Context, mark *models.AttendanceMark) (*models.AttendanceMark, error) {
	now := time.Now().UTC()
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	if mark.CreatedAt.IsZero() {
		mark.CreatedAt = now
	}
	mark.UpdatedAt = now

	var stored models.AttendanceMark
	if err := r.db.GetContext(ctx, &stored, upsertMarkQuery,
		mark.ID, mark.StudentID, mark.Date, mark.Status, mark.CreatedAt, mark.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert mark: %w", err)
	}
	return &stored, nil
}

// BulkUpsert applies every mark with upsert semantics inside one transaction.
// Any failure rolls back the whole batch. Returns the number of rows written.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, marks []models.AttendanceMark) (int, error) {
	if len(marks) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk mark: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for i := range marks {
		mark := &marks[i]
		if mark.ID == "" {
			mark.ID = uuid.NewString()
		}
		if mark.CreatedAt.IsZero() {
			mark.CreatedAt = now
		}
		mark.UpdatedAt = now
		var stored models.AttendanceMark
		if err := tx.GetContext(ctx, &stored, upsertMarkQuery,
			mark.ID, mark.StudentID, mark.Date, mark.Status, mark.CreatedAt, mark.UpdatedAt); err != nil {
			return 0, fmt.Errorf("bulk mark student %s: %w", mark.StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk mark: %w", err)
	}
	commit = true
	return len(marks), nil
}

// RosterForDate joins every student with their mark for the date, if any.
// Students without a mark come back with a NULL status.
func (r *AttendanceRepository) RosterForDate(ctx context.Context, date string) ([]models.RosterRow, error) {
	const query = `SELECT s.id, s.roll_no, s.name, s.email, a.status
        FROM students s
        LEFT JOIN attendance a ON a.student_id = s.id AND a.date = $1
        ORDER BY s.roll_no ASC`
	rows := []models.RosterRow{}
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("roster for date: %w", err)
	}
	return rows, nil
}

// SummaryForDate aggregates the mark rows for one date. Total counts mark
// rows, not roster size.
func (r *AttendanceRepository) SummaryForDate(ctx context.Context, date string) (*models.DateSummary, error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE status = 'present') AS present_count,
        COUNT(*) FILTER (WHERE status = 'absent') AS absent_count,
        COUNT(*) AS total_count
        FROM attendance WHERE date = $1`
	var summary models.DateSummary
	if err := r.db.GetContext(ctx, &summary, query, date); err != nil {
		return nil, fmt.Errorf("summary for date: %w", err)
	}
	return &summary, nil
}

// History returns per-date aggregates, most recent date first.
func (r *AttendanceRepository) History(ctx context.Context, limit int) ([]models.DateAggregate, error) {
	const query = `SELECT date,
        COUNT(*) FILTER (WHERE status = 'present') AS present_count,
        COUNT(*) FILTER (WHERE status = 'absent') AS absent_count,
        COUNT(*) AS total_count
        FROM attendance
        GROUP BY date
        ORDER BY date DESC
        LIMIT $1`
	rows := []models.DateAggregate{}
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("attendance history: %w", err)
	}
	return rows, nil
}

// StudentHistory returns all marks for one student, most recent date first.
func (r *AttendanceRepository) StudentHistory(ctx context.Context, studentID string) ([]models.StudentMarkRow, error) {
	const query = `SELECT date, status FROM attendance WHERE student_id = $1 ORDER BY date DESC`
	rows := []models.StudentMarkRow{}
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("student attendance history: %w", err)
	}
	return rows, nil
}

// DeleteByID removes a single mark and reports how many rows were removed.
func (r *AttendanceRepository) DeleteByID(ctx context.Context, id string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete mark: %w", err)
	}
	return rowsAffected(result)
}

// DeleteByDate removes every mark for a date.
func (r *AttendanceRepository) DeleteByDate(ctx context.Context, date string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE date = $1`, date)
	if err != nil {
		return 0, fmt.Errorf("delete marks by date: %w", err)
	}
	return rowsAffected(result)
}

// DeleteAll clears the attendance table.
func (r *AttendanceRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM attendance`)
	if err != nil {
		return 0, fmt.Errorf("delete all marks: %w", err)
	}
	return rowsAffected(result)
}
