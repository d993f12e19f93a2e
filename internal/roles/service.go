package roles

import (
	"context"

	"github.com/google/uuid"
)

// Service handles role-store business logic.
type Service struct {
	store Store
}

// NewService builds a Service instance.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// RolesFor returns the full set of roles held by the user.
func (s *Service) RolesFor(ctx context.Context, userID uuid.UUID) ([]Role, error) {
	return s.store.ListForUser(ctx, userID)
}

// HasAdmin reports whether the user holds an admin-level role.
func (s *Service) HasAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	held, err := s.store.ListForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return IsAdmin(held), nil
}
