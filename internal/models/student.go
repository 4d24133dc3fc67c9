package models

import "time"

// Student is one roster entry. The roll number is the human-assigned natural
// key; the id is server-assigned and stable.
type Student struct {
	ID        string    `db:"id" json:"id"`
	RollNo    string    `db:"roll_no" json:"roll_no"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RosterCandidate is a student record extracted from an uploaded sheet,
// before it has been inserted.
type RosterCandidate struct {
	RollNo string `json:"roll_no"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}
