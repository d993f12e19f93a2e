package staff

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/almanar-edu/almanar/internal/shared"
)

// Service handles staff business logic.
type Service struct {
	repo   RepositoryPort
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService builds a Service instance. audit may be nil.
func NewService(repo RepositoryPort, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// List returns a page of staff members.
func (s *Service) List(ctx context.Context, page shared.Pagination) ([]Member, shared.Pagination, error) {
	list, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page.Page, page.PerPage, total), nil
}

// Get fetches one staff member.
func (s *Service) Get(ctx context.Context, id int64) (Member, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a staff member.
func (s *Service) Create(ctx context.Context, actor uuid.UUID, input MemberInput) (Member, error) {
	member, err := s.repo.Create(ctx, input)
	if err != nil {
		return Member{}, err
	}
	s.recordAudit(ctx, actor, "staff_created", member)
	return member, nil
}

// Update edits a staff member.
func (s *Service) Update(ctx context.Context, actor uuid.UUID, id int64, input MemberInput) (Member, error) {
	member, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return Member{}, err
	}
	s.recordAudit(ctx, actor, "staff_updated", member)
	return member, nil
}

// Delete removes a staff member.
func (s *Service) Delete(ctx context.Context, actor uuid.UUID, id int64) error {
	member, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "staff_deleted", member)
	return nil
}

// Count returns the total number of staff members.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) recordAudit(ctx context.Context, actor uuid.UUID, action string, member Member) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor,
		Action:   action,
		Entity:   "staff_members",
		EntityID: fmt.Sprintf("%d", member.ID),
		Meta:     map[string]any{"full_name": member.FullName},
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}
