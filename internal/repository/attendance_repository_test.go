package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollbook/rollbook-api/internal/models"
)

func markRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "student_id", "date", "status", "created_at", "updated_at"}).
		AddRow("a1", "s1", "2026-03-02", "present", now, now)
}

func TestAttendanceRepositoryUpsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (student_id, date)")).
		WithArgs(sqlmock.AnyArg(), "s1", "2026-03-02", "present", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(markRows())

	mark, err := repo.Upsert(context.Background(), &models.AttendanceMark{
		StudentID: "s1",
		Date:      "2026-03-02",
		Status:    models.MarkStatusPresent,
	})

	require.NoError(t, err)
	assert.Equal(t, "a1", mark.ID)
	assert.Equal(t, models.MarkStatusPresent, mark.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryBulkUpsertSingleTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	upsert := regexp.QuoteMeta("ON CONFLICT (student_id, date)")
	mock.ExpectBegin()
	mock.ExpectQuery(upsert).WillReturnRows(markRows())
	mock.ExpectQuery(upsert).WillReturnRows(markRows())
	mock.ExpectCommit()

	saved, err := repo.BulkUpsert(context.Background(), []models.AttendanceMark{
		{StudentID: "s1", Date: "2026-03-02", Status: models.MarkStatusPresent},
		{StudentID: "s2", Date: "2026-03-02", Status: models.MarkStatusAbsent},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryBulkUpsertRollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	upsert := regexp.QuoteMeta("ON CONFLICT (student_id, date)")
	mock.ExpectBegin()
	mock.ExpectQuery(upsert).WillReturnRows(markRows())
	mock.ExpectQuery(upsert).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.BulkUpsert(context.Background(), []models.AttendanceMark{
		{StudentID: "s1", Date: "2026-03-02", Status: models.MarkStatusPresent},
		{StudentID: "ghost", Date: "2026-03-02", Status: models.MarkStatusAbsent},
	})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryRosterForDate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN attendance a ON a.student_id = s.id AND a.date = $1")).
		WithArgs("2026-03-02").
		WillReturnRows(sqlmock.NewRows([]string{"id", "roll_no", "name", "email", "status"}).
			AddRow("s1", "1", "Asha Rao", "asha@example.com", "present").
			AddRow("s2", "2", "Ben Kim", "", nil))

	rows, err := repo.RosterForDate(context.Background(), "2026-03-02")

	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Status)
	assert.Equal(t, models.MarkStatusPresent, *rows[0].Status)
	assert.Nil(t, rows[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositorySummaryForDate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance WHERE date = $1")).
		WithArgs("2026-03-02").
		WillReturnRows(sqlmock.NewRows([]string{"present_count", "absent_count", "total_count"}).
			AddRow(18, 2, 20))

	summary, err := repo.SummaryForDate(context.Background(), "2026-03-02")

	require.NoError(t, err)
	assert.Equal(t, 18, summary.PresentCount)
	assert.Equal(t, 2, summary.AbsentCount)
	assert.Equal(t, 20, summary.TotalCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryHistory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY date")).
		WithArgs(30).
		WillReturnRows(sqlmock.NewRows([]string{"date", "present_count", "absent_count", "total_count"}).
			AddRow("2026-03-02", 18, 2, 20).
			AddRow("2026-03-01", 17, 3, 20))

	history, err := repo.History(context.Background(), 30)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2026-03-02", history[0].Date)
	assert.Equal(t, 18, history[0].PresentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryDeleteByDate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance WHERE date = $1")).
		WithArgs("2026-03-02").
		WillReturnResult(sqlmock.NewResult(0, 20))

	deleted, err := repo.DeleteByDate(context.Background(), "2026-03-02")

	require.NoError(t, err)
	assert.Equal(t, int64(20), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
