package identity

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account owned by the identity provider.
type User struct {
	ID             uuid.UUID
	Email          string
	PasswordHash   string
	FullName       string
	EmailConfirmed bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewUser carries the attributes for privileged user provisioning.
type NewUser struct {
	Email        string
	Password     string
	FullName     string
	EmailConfirm bool
}
