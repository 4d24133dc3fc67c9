package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is an authenticated identity backed by a Google account.
type User struct {
	ID        string     `db:"id" json:"id"`
	GoogleID  string     `db:"google_id" json:"-"`
	Name      string     `db:"name" json:"name"`
	Email     string     `db:"email" json:"email"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	LastLogin *time.Time `db:"last_login" json:"last_login,omitempty"`
}

// SessionClaims are the JWT claims carried by the session cookie.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}
