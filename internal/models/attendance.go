package models

import "time"

// MarkStatus is the persisted attendance state. "pending" is a client-side
// presentation of a missing mark and is never stored.
type MarkStatus string

const (
	MarkStatusPresent MarkStatus = "present"
	MarkStatusAbsent  MarkStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s MarkStatus) Valid() bool {
	switch s {
	case MarkStatusPresent, MarkStatusAbsent:
		return true
	default:
		return false
	}
}

// AttendanceMark is one attendance row for a (student, date) pair.
// At most one mark may exist per pair; a second write replaces the status.
type AttendanceMark struct {
	ID        string     `db:"id" json:"id"`
	StudentID string     `db:"student_id" json:"student_id"`
	Date      string     `db:"date" json:"date"`
	Status    MarkStatus `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// RosterRow joins a student with their mark (if any) for one date.
// Status is nil when no mark exists for the date.
type RosterRow struct {
	ID     string      `db:"id" json:"id"`
	RollNo string      `db:"roll_no" json:"roll_no"`
	Name   string      `db:"name" json:"name"`
	Email  string      `db:"email" json:"email"`
	Status *MarkStatus `db:"status" json:"status"`
}

// DateSummary aggregates mark rows for a single date.
type DateSummary struct {
	PresentCount int `db:"present_count" json:"present_count"`
	AbsentCount  int `db:"absent_count" json:"absent_count"`
	TotalCount   int `db:"total_count" json:"total_count"`
}

// DateAggregate is one history entry: per-date counts.
type DateAggregate struct {
	Date string `db:"date" json:"date"`
	DateSummary
}

// StudentMarkRow is one entry in a student's attendance history.
type StudentMarkRow struct {
	Date   string     `db:"date" json:"date"`
	Status MarkStatus `db:"status" json:"status"`
}

// StudentReport bundles a student's history with derived statistics.
// Percentage is present/total*100 rounded to two decimals, 0 when no marks exist.
type StudentReport struct {
	Records      []StudentMarkRow `json:"records"`
	PresentCount int              `json:"present_count"`
	TotalCount   int              `json:"total_count"`
	Percentage   float64          `json:"percentage"`
}
