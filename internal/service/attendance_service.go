package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rollbook/rollbook-api/internal/models"
	apperrors "github.com/rollbook/rollbook-api/pkg/errors"
)

// Cache keys for the reporting queries. Every write path invalidates the
// whole namespace; the queries are cheap enough that precision is not worth
// the bookkeeping.
const (
	reportCachePattern = "attendance:*"
	summaryCacheKeyFmt = "attendance:summary:%s"
	historyCacheKey    = "attendance:history"
)

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type attendanceRepository interface {
	Upsert(ctx context.Context, mark *models.AttendanceMark) (*models.AttendanceMark, error)
	BulkUpsert(ctx context.Context, marks []models.AttendanceMark) (int, error)
	RosterForDate(ctx context.Context, date string) ([]models.RosterRow, error)
	SummaryForDate(ctx context.Context, date string) (*models.DateSummary, error)
	History(ctx context.Context, limit int) ([]models.DateAggregate, error)
	DeleteByID(ctx context.Context, id string) (int64, error)
	DeleteByDate(ctx context.Context, date string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// AttendanceService implements mark recording and the reporting queries.
type AttendanceService struct {
	marks        attendanceRepository
	students     studentFinder
	cache        reportCache
	cacheTTL     time.Duration
	historyLimit int
	logger       *zap.Logger
}

// NewAttendanceService wires an AttendanceService. cache may be nil.
func NewAttendanceService(marks attendanceRepository, students studentFinder, cache reportCache, cacheTTL time.Duration, historyLimit int, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if historyLimit <= 0 {
		historyLimit = 30
	}
	return &AttendanceService{
		marks:        marks,
		students:     students,
		cache:        cache,
		cacheTTL:     cacheTTL,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// MarkInput is one attendance mark request.
type MarkInput struct {
	StudentID string `json:"student_id"`
	Date      string `json:"date"`
	Status    string `json:"status"`
}

func (in MarkInput) wellFormed() bool {
	return in.StudentID != "" && in.Date != "" && in.Status != ""
}

// ValidDate reports whether the value is a calendar date in YYYY-MM-DD form.
func ValidDate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

// Mark records one attendance mark, replacing any existing mark for the
// same (student, date) pair.
func (s *AttendanceService) Mark(ctx context.Context, input MarkInput) (*models.AttendanceMark, error) {
	if !input.wellFormed() {
		return nil, apperrors.Clone(apperrors.ErrValidation, "student_id, date and status are required")
	}
	if !ValidDate(input.Date) {
		return nil, apperrors.Clone(apperrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	status := models.MarkStatus(input.Status)
	if !status.Valid() {
		return nil, apperrors.Clone(apperrors.ErrValidation, "status must be present or absent")
	}
	if _, err := s.students.FindByID(ctx, input.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "student not found")
		}
		return nil, err
	}

	mark, err := s.marks.Upsert(ctx, &models.AttendanceMark{
		StudentID: input.StudentID,
		Date:      input.Date,
		Status:    status,
	})
	if err != nil {
		return nil, err
	}
	s.invalidateReports(ctx)
	return mark, nil
}

// BulkMarkResult reports the outcome of a bulk submission.
type BulkMarkResult struct {
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
}

// BulkMark applies a batch of marks in one transaction. Records with missing
// fields or an unknown status are skipped rather than failing the batch; the
// valid remainder commits or rolls back as a unit.
func (s *AttendanceService) BulkMark(ctx context.Context, inputs []MarkInput) (*BulkMarkResult, error) {
	if len(inputs) == 0 {
		return nil, apperrors.Clone(apperrors.ErrValidation, "records are required")
	}

	marks := make([]models.AttendanceMark, 0, len(inputs))
	skipped := 0
	for _, input := range inputs {
		status := models.MarkStatus(input.Status)
		if !input.wellFormed() || !ValidDate(input.Date) || !status.Valid() {
			skipped++
			continue
		}
		marks = append(marks, models.AttendanceMark{
			StudentID: input.StudentID,
			Date:      input.Date,
			Status:    status,
		})
	}

	saved, err := s.marks.BulkUpsert(ctx, marks)
	if err != nil {
		return nil, err
	}
	if saved > 0 {
		s.invalidateReports(ctx)
	}
	s.logger.Info("bulk attendance saved", zap.Int("saved", saved), zap.Int("skipped", skipped))
	return &BulkMarkResult{Saved: saved, Skipped: skipped}, nil
}

// Roster returns every student joined with their mark for the date.
func (s *AttendanceService) Roster(ctx context.Context, date string) ([]models.RosterRow, error) {
	if !ValidDate(date) {
		return nil, apperrors.Clone(apperrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	return s.marks.RosterForDate(ctx, date)
}

// Summary returns the aggregate counts for one date, served from cache when
// fresh.
func (s *AttendanceService) Summary(ctx context.Context, date string) (*models.DateSummary, error) {
	if !ValidDate(date) {
		return nil, apperrors.Clone(apperrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	key := fmt.Sprintf(summaryCacheKeyFmt, date)
	if s.cache != nil {
		var cached models.DateSummary
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	summary, err := s.marks.SummaryForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, summary)
	return summary, nil
}

// History returns recent per-date aggregates, newest first.
func (s *AttendanceService) History(ctx context.Context) ([]models.DateAggregate, error) {
	if s.cache != nil {
		var cached []models.DateAggregate
		if err := s.cache.Get(ctx, historyCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	history, err := s.marks.History(ctx, s.historyLimit)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, historyCacheKey, history)
	return history, nil
}

// DeleteRecord removes one mark by id.
func (s *AttendanceService) DeleteRecord(ctx context.Context, id string) error {
	affected, err := s.marks.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.Clone(apperrors.ErrNotFound, "attendance record not found")
	}
	s.invalidateReports(ctx)
	return nil
}

// DeleteByDate removes every mark for one date.
func (s *AttendanceService) DeleteByDate(ctx context.Context, date string) (int64, error) {
	if !ValidDate(date) {
		return 0, apperrors.Clone(apperrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	affected, err := s.marks.DeleteByDate(ctx, date)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, apperrors.Clone(apperrors.ErrNotFound, "no attendance records for date")
	}
	s.invalidateReports(ctx)
	return affected, nil
}

// DeleteAll clears the whole attendance table.
func (s *AttendanceService) DeleteAll(ctx context.Context) (int64, error) {
	affected, err := s.marks.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.invalidateReports(ctx)
	s.logger.Warn("all attendance records deleted", zap.Int64("deleted", affected))
	return affected, nil
}

func (s *AttendanceService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *AttendanceService) invalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, reportCachePattern); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
}
