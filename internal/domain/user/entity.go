package user

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the account state of a resource owner.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// User represents a resource owner.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        *string
	PasswordHash []byte // Argon2id, PHC-formatted
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// NewUser creates a new resource owner.
func NewUser(username string, passwordHash []byte) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SetEmail sets the user's email.
func (u *User) SetEmail(email string) {
	u.Email = &email
	u.UpdatedAt = time.Now().UTC()
}

// IsActive checks if the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// UpdateLastLogin records a successful authentication.
func (u *User) UpdateLastLogin() {
	now := time.Now().UTC()
	u.LastLoginAt = &now
}
