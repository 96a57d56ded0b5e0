package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for resource owner persistence.
type Repository interface {
	// Create persists a new user.
	Create(ctx context.Context, u *User) error

	// GetByID retrieves a user by id.
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Update persists changes to an existing user.
	Update(ctx context.Context, u *User) error

	// UpdateLastLogin records a successful authentication.
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}
