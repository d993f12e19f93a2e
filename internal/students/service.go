package students

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/almanar-edu/almanar/internal/platform/storage"
	"github.com/almanar-edu/almanar/internal/shared"
)

// Service handles student business logic.
type Service struct {
	repo   RepositoryPort
	store  storage.ObjectStore
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService builds a Service instance. store and audit may be nil.
func NewService(repo RepositoryPort, store storage.ObjectStore, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, store: store, audit: audit, logger: logger}
}

// List returns a page of students with presigned photo URLs attached.
func (s *Service) List(ctx context.Context, page shared.Pagination) ([]Student, shared.Pagination, error) {
	list, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	for i := range list {
		s.attachPhotoURL(ctx, &list[i])
	}
	return list, shared.NewPagination(page.Page, page.PerPage, total), nil
}

// Get fetches one student.
func (s *Service) Get(ctx context.Context, id int64) (Student, error) {
	student, err := s.repo.Get(ctx, id)
	if err != nil {
		return Student{}, err
	}
	s.attachPhotoURL(ctx, &student)
	return student, nil
}

// Create registers a new student.
func (s *Service) Create(ctx context.Context, actor uuid.UUID, input StudentInput) (Student, error) {
	student, err := s.repo.Create(ctx, input)
	if err != nil {
		return Student{}, err
	}
	s.recordAudit(ctx, actor, "student_created", student)
	return student, nil
}

// Update edits a student record.
func (s *Service) Update(ctx context.Context, actor uuid.UUID, id int64, input StudentInput) (Student, error) {
	student, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return Student{}, err
	}
	s.recordAudit(ctx, actor, "student_updated", student)
	return student, nil
}

// ErrUnsupportedPhotoType signals an upload with a content type outside the
// accepted image formats.
var ErrUnsupportedPhotoType = errors.New("unsupported photo type")

// allowed photo content types and their extensions.
var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadPhoto stores a student photo in object storage and links its key.
func (s *Service) UploadPhoto(ctx context.Context, id int64, body io.Reader, contentType string) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("students: object storage not configured")
	}
	ext, ok := photoExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnsupportedPhotoType, contentType)
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return "", err
	}
	key := path.Join("students", fmt.Sprintf("%d", id), uuid.NewString()+ext)
	if err := s.store.Put(ctx, key, body, contentType); err != nil {
		return "", err
	}
	if err := s.repo.SetPhotoKey(ctx, id, key); err != nil {
		return "", err
	}
	return key, nil
}

// Count returns the total number of students.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) attachPhotoURL(ctx context.Context, student *Student) {
	if s.store == nil || student.PhotoKey == "" {
		return
	}
	url, err := s.store.PresignGet(ctx, student.PhotoKey, 15*time.Minute)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("presign student photo", slog.Int64("student_id", student.ID), slog.Any("error", err))
		}
		return
	}
	student.PhotoURL = url
}

func (s *Service) recordAudit(ctx context.Context, actor uuid.UUID, action string, student Student) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor,
		Action:   action,
		Entity:   "students",
		EntityID: fmt.Sprintf("%d", student.ID),
		Meta:     map[string]any{"admission_no": student.AdmissionNo},
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}
