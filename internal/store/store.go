package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("not found")

// User is a provisioned user record. The table is written only during
// startup seeding and is read-only afterwards.
type User struct {
	ID        int64
	Username  string
	Token     string
	RoomID    int64
	CreatedAt time.Time
}

// UserStore handles user provisioning persistence.
type UserStore interface {
	// UpsertUser inserts the user or updates the existing record by ID.
	UpsertUser(ctx context.Context, u *User) error

	// GetUserByToken retrieves a user by its opaque token.
	GetUserByToken(ctx context.Context, token string) (*User, error)

	// ListUsers returns every provisioned user.
	ListUsers(ctx context.Context) ([]*User, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore

	// Close closes the underlying database connection.
	Close() error
}
