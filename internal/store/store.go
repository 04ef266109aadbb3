package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when registering an email that is already in use.
	ErrEmailTaken = errors.New("email already registered")
)

// Persisted presence statuses.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// User represents an account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       string
	StatusAt     *time.Time
	CreatedAt    time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, name, email, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// ListUsers returns all users except excludeID, sorted by name.
	ListUsers(ctx context.Context, excludeID string) ([]*User, error)
}

// StatusStore records the last known presence status of a user.
type StatusStore interface {
	SetUserStatus(ctx context.Context, userID, status string) error
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	StatusStore

	// Close releases the underlying connection.
	Close() error
}
