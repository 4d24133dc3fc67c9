package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rollbook/rollbook-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns all students ordered by roll number ascending.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT id, roll_no, name, email, created_at FROM students ORDER BY roll_no ASC`
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a single student.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, roll_no, name, email, created_at FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByRollNo checks whether a roll number is already taken.
func (r *StudentRepository) ExistsByRollNo(ctx context.Context, rollNo string) (bool, error) {
	const query = `SELECT 1 FROM students WHERE roll_no = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, rollNo); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check roll no: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO students (id, roll_no, name, email, created_at)
        VALUES (:id, :roll_no, :name, :email, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// ImportBatch inserts candidates in one transaction, ignoring roll numbers
// that already exist. It returns the number of rows actually inserted.
func (r *StudentRepository) ImportBatch(ctx context.Context, candidates []models.RosterCandidate) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	const query = `INSERT INTO students (id, roll_no, name, email, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (roll_no) DO NOTHING
        RETURNING id`
	now := time.Now().UTC()
	inserted := 0
	for _, candidate := range candidates {
		var insertedID string
		err := tx.QueryRowxContext(ctx, query, uuid.NewString(), candidate.RollNo, candidate.Name, candidate.Email, now).Scan(&insertedID)
		if err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return 0, fmt.Errorf("import student %s: %w", candidate.RollNo, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	commit = true
	return inserted, nil
}

// DeleteCascade removes a student and all of their attendance marks in one
// transaction. Marks go first so the foreign key is never violated. Returns
// sql.ErrNoRows when the student does not exist, leaving nothing deleted.
func (r *StudentRepository) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete student: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE student_id = $1`, id); err != nil {
		return fmt.Errorf("delete student marks: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete student rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete student: %w", err)
	}
	commit = true
	return nil
}
