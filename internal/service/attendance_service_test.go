package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollbook/rollbook-api/internal/models"
	apperrors "github.com/rollbook/rollbook-api/pkg/errors"
)

type fakeAttendanceRepo struct {
	upserted     []*models.AttendanceMark
	bulkBatches  [][]models.AttendanceMark
	roster       []models.RosterRow
	summary      models.DateSummary
	summaryCalls int
	history      []models.DateAggregate
	historyCalls int
	deleteByID   int64
	deleteByDate int64
	deleteAll    int64
}

func (f *fakeAttendanceRepo) Upsert(ctx context.Context, mark *models.AttendanceMark) (*models.AttendanceMark, error) {
	mark.ID = "a1"
	f.upserted = append(f.upserted, mark)
	return mark, nil
}

func (f *fakeAttendanceRepo) BulkUpsert(ctx context.Context, marks []models.AttendanceMark) (int, error) {
	f.bulkBatches = append(f.bulkBatches, marks)
	return len(marks), nil
}

func (f *fakeAttendanceRepo) RosterForDate(ctx context.Context, date string) ([]models.RosterRow, error) {
	return f.roster, nil
}

func (f *fakeAttendanceRepo) SummaryForDate(ctx context.Context, date string) (*models.DateSummary, error) {
	f.summaryCalls++
	summary := f.summary
	return &summary, nil
}

func (f *fakeAttendanceRepo) History(ctx context.Context, limit int) ([]models.DateAggregate, error) {
	f.historyCalls++
	return f.history, nil
}

func (f *fakeAttendanceRepo) DeleteByID(ctx context.Context, id string) (int64, error) {
	return f.deleteByID, nil
}

func (f *fakeAttendanceRepo) DeleteByDate(ctx context.Context, date string) (int64, error) {
	return f.deleteByDate, nil
}

func (f *fakeAttendanceRepo) DeleteAll(ctx context.Context) (int64, error) {
	return f.deleteAll, nil
}

type fakeStudentFinder struct {
	known map[string]bool
}

func (f *fakeStudentFinder) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if f.known[id] {
		return &models.Student{ID: id}, nil
	}
	return nil, sql.ErrNoRows
}

func newAttendanceService(repo *fakeAttendanceRepo, cache *fakeCache) *AttendanceService {
	finder := &fakeStudentFinder{known: map[string]bool{"s1": true, "s2": true}}
	var c reportCache
	if cache != nil {
		c = cache
	}
	return NewAttendanceService(repo, finder, c, time.Minute, 30, nil)
}

func TestAttendanceServiceMark(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc := newAttendanceService(repo, nil)

	mark, err := svc.Mark(context.Background(), MarkInput{StudentID: "s1", Date: "2026-03-02", Status: "present"})

	require.NoError(t, err)
	assert.Equal(t, "a1", mark.ID)
	require.Len(t, repo.upserted, 1)
}

func TestAttendanceServiceMarkInvalidStatus(t *testing.T) {
	svc := newAttendanceService(&fakeAttendanceRepo{}, nil)

	_, err := svc.Mark(context.Background(), MarkInput{StudentID: "s1", Date: "2026-03-02", Status: "late"})

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrValidation.Code, appErr.Code)
}

func TestAttendanceServiceMarkInvalidDate(t *testing.T) {
	svc := newAttendanceService(&fakeAttendanceRepo{}, nil)

	_, err := svc.Mark(context.Background(), MarkInput{StudentID: "s1", Date: "03/02/2026", Status: "present"})

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrValidation.Code, appErr.Code)
}

func TestAttendanceServiceMarkUnknownStudent(t *testing.T) {
	svc := newAttendanceService(&fakeAttendanceRepo{}, nil)

	_, err := svc.Mark(context.Background(), MarkInput{StudentID: "ghost", Date: "2026-03-02", Status: "present"})

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound.Code, appErr.Code)
}

func TestAttendanceServiceBulkMarkSkipsMalformed(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc := newAttendanceService(repo, nil)

	result, err := svc.BulkMark(context.Background(), []MarkInput{
		{StudentID: "s1", Date: "2026-03-02", Status: "present"},
		{StudentID: "", Date: "2026-03-02", Status: "present"},
		{StudentID: "s2", Date: "", Status: "absent"},
		{StudentID: "s2", Date: "2026-03-02", Status: "tardy"},
		{StudentID: "s2", Date: "2026-03-02", Status: "absent"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Saved)
	assert.Equal(t, 3, result.Skipped)
	require.Len(t, repo.bulkBatches, 1)
	assert.Len(t, repo.bulkBatches[0], 2)
}

func TestAttendanceServiceBulkMarkEmpty(t *testing.T) {
	svc := newAttendanceService(&fakeAttendanceRepo{}, nil)

	_, err := svc.BulkMark(context.Background(), nil)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrValidation.Code, appErr.Code)
}

func TestAttendanceServiceSummaryUsesCache(t *testing.T) {
	repo := &fakeAttendanceRepo{summary: models.DateSummary{PresentCount: 18, AbsentCount: 2, TotalCount: 20}}
	cache := newFakeCache()
	svc := newAttendanceService(repo, cache)

	first, err := svc.Summary(context.Background(), "2026-03-02")
	require.NoError(t, err)
	second, err := svc.Summary(context.Background(), "2026-03-02")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.summaryCalls)
}

func TestAttendanceServiceMarkInvalidatesCache(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	cache := newFakeCache()
	svc := newAttendanceService(repo, cache)

	_, err := svc.Summary(context.Background(), "2026-03-02")
	require.NoError(t, err)
	_, err = svc.Mark(context.Background(), MarkInput{StudentID: "s1", Date: "2026-03-02", Status: "absent"})
	require.NoError(t, err)
	_, err = svc.Summary(context.Background(), "2026-03-02")
	require.NoError(t, err)

	assert.Equal(t, 2, repo.summaryCalls)
	assert.GreaterOrEqual(t, cache.invalidated, 1)
}

func TestAttendanceServiceHistoryUsesCache(t *testing.T) {
	repo := &fakeAttendanceRepo{history: []models.DateAggregate{
		{Date: "2026-03-02", DateSummary: models.DateSummary{PresentCount: 18, AbsentCount: 2, TotalCount: 20}},
	}}
	cache := newFakeCache()
	svc := newAttendanceService(repo, cache)

	_, err := svc.History(context.Background())
	require.NoError(t, err)
	history, err := svc.History(context.Background())
	require.NoError(t, err)

	require.Len(t, history, 1)
	assert.Equal(t, "2026-03-02", history[0].Date)
	assert.Equal(t, 1, repo.historyCalls)
}

func TestAttendanceServiceDeleteRecordNotFound(t *testing.T) {
	svc := newAttendanceService(&fakeAttendanceRepo{deleteByID: 0}, nil)

	err := svc.DeleteRecord(context.Background(), "ghost")

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound.Code, appErr.Code)
}

func TestAttendanceServiceDeleteByDate(t *testing.T) {
	svc := newAttendanceService(&fakeAttendanceRepo{deleteByDate: 20}, nil)

	deleted, err := svc.DeleteByDate(context.Background(), "2026-03-02")

	require.NoError(t, err)
	assert.Equal(t, int64(20), deleted)
}

func TestAttendanceServiceDeleteByDateNoRecords(t *testing.T) {
	svc := newAttendanceService(&fakeAttendanceRepo{deleteByDate: 0}, nil)

	_, err := svc.DeleteByDate(context.Background(), "2026-03-02")

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound.Code, appErr.Code)
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2026-03-02"))
	assert.False(t, ValidDate("2026-3-2"))
	assert.False(t, ValidDate("02-03-2026"))
	assert.False(t, ValidDate("2026-02-30"))
	assert.False(t, ValidDate(""))
}
