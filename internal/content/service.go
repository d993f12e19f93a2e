package content

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
)

// ErrUnsupportedImageType signals an upload with a content type outside the
// accepted image formats.
var ErrUnsupportedImageType = errors.New("unsupported image type")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Service handles landing page content.
type Service struct {
	repo   RepositoryPort
	store  storage.ObjectStore
	logger *slog.Logger
}

// NewService builds a Service instance. store may be nil.
func NewService(repo RepositoryPort, store storage.ObjectStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, store: store, logger: logger}
}

// Landing returns the published sections shown on the public page.
func (s *Service) Landing(ctx context.Context) ([]Section, error) {
	list, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		s.attachImageURL(ctx, &list[i])
	}
	return list, nil
}

// ListAll returns every section, drafts included, for the admin editor.
func (s *Service) ListAll(ctx context.Context) ([]Section, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		s.attachImageURL(ctx, &list[i])
	}
	return list, nil
}

// Get fetches one section.
func (s *Service) Get(ctx context.Context, id int64) (Section, error) {
	section, err := s.repo.Get(ctx, id)
	if err != nil {
		return Section{}, err
	}
	s.attachImageURL(ctx, &section)
	return section, nil
}

// Create adds a section.
func (s *Service) Create(ctx context.Context, input SectionInput) (Section, error) {
	return s.repo.Create(ctx, input)
}

// Update edits a section.
func (s *Service) Update(ctx context.Context, id int64, input SectionInput) (Section, error) {
	return s.repo.Update(ctx, id, input)
}

// Delete removes a section.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// UploadImage stores a section image in object storage and links its key.
func (s *Service) UploadImage(ctx context.Context, id int64, body io.Reader, contentType string) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("content: object storage not configured")
	}
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnsupportedImageType, contentType)
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return "", err
	}
	key := path.Join("landing", fmt.Sprintf("%d", id), uuid.NewString()+ext)
	if err := s.store.Put(ctx, key, body, contentType); err != nil {
		return "", err
	}
	if err := s.repo.SetImageKey(ctx, id, key); err != nil {
		return "", err
	}
	return key, nil
}

func (s *Service) attachImageURL(ctx context.Context, section *Section) {
	if s.store == nil || section.ImageKey == "" {
		return
	}
	url, err := s.store.PresignGet(ctx, section.ImageKey, time.Hour)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("presign section image", slog.Int64("section_id", section.ID), slog.Any("error", err))
		}
		return
	}
	section.ImageURL = url
}
