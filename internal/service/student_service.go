package service

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rollbook/rollbook-api/internal/models"
	apperrors "github.com/rollbook/rollbook-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByRollNo(ctx context.Context, rollNo string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	DeleteCascade(ctx context.Context, id string) error
}

type studentMarkReader interface {
	StudentHistory(ctx context.Context, studentID string) ([]models.StudentMarkRow, error)
}

// StudentService implements roster management.
type StudentService struct {
	students  studentRepository
	marks     studentMarkReader
	cache     reportCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService wires a StudentService.
func NewStudentService(students studentRepository, marks studentMarkReader, cache reportCache, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		students:  students,
		marks:     marks,
		cache:     cache,
		validator: validator.New(),
		logger:    logger,
	}
}

// CreateStudentInput carries the fields for manual student creation.
type CreateStudentInput struct {
	RollNo string `json:"roll_no" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"omitempty,email"`
}

// List returns the full roster ordered by roll number.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	return s.students.List(ctx)
}

// Create adds one student. A duplicate roll number is rejected with a
// conflict error rather than surfacing the database constraint.
func (s *StudentService) Create(ctx context.Context, input CreateStudentInput) (*models.Student, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "roll_no and name are required")
	}

	taken, err := s.students.ExistsByRollNo(ctx, input.RollNo)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.Clone(apperrors.ErrConflict, "roll number already exists")
	}

	student := &models.Student{
		RollNo: input.RollNo,
		Name:   input.Name,
		Email:  input.Email,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info("student created", zap.String("student_id", student.ID), zap.String("roll_no", student.RollNo))
	return student, nil
}

// Delete removes a student together with all of their marks.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.students.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.Clone(apperrors.ErrNotFound, "student not found")
		}
		return err
	}
	s.invalidateReports(ctx)
	s.logger.Info("student deleted", zap.String("student_id", id))
	return nil
}

// Report returns a student's full mark history with derived statistics.
func (s *StudentService) Report(ctx context.Context, id string) (*models.StudentReport, error) {
	if _, err := s.students.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "student not found")
		}
		return nil, err
	}

	records, err := s.marks.StudentHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	report := &models.StudentReport{
		Records:    records,
		TotalCount: len(records),
	}
	for _, record := range records {
		if record.Status == models.MarkStatusPresent {
			report.PresentCount++
		}
	}
	if report.TotalCount > 0 {
		pct := float64(report.PresentCount) / float64(report.TotalCount) * 100
		report.Percentage = math.Round(pct*100) / 100
	}
	return report, nil
}

func (s *StudentService) invalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, reportCachePattern); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
}
