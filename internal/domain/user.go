package domain

import (
	"context"
	"time"
)

// User represents a registered account
type User struct {
	ID           string // UUID assigned by the store
	Username     string // Unique, case-sensitive
	Email        string // Unique, stored lowercased and trimmed
	PasswordHash string // Bcrypt hash (never returned in API)
	CreatedAt    time.Time
}

// UserRepository defines data access for users.
// Create must enforce username/email uniqueness atomically and report a
// violation as ErrDuplicateUsername or ErrDuplicateEmail, with the username
// collision taking precedence when both values conflict.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
