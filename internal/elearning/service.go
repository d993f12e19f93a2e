package elearning

import "context"

// Service handles lesson management.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Playlist returns the ordered lessons of a subject.
func (s *Service) Playlist(ctx context.Context, subject string) ([]Lesson, error) {
	return s.repo.ListBySubject(ctx, subject)
}

// Get fetches one lesson.
func (s *Service) Get(ctx context.Context, id int64) (Lesson, error) {
	return s.repo.Get(ctx, id)
}

// Create resolves the video embed and stores the lesson.
func (s *Service) Create(ctx context.Context, input LessonInput) (Lesson, error) {
	embed, err := DetectProvider(input.VideoURL)
	if err != nil {
		return Lesson{}, err
	}
	return s.repo.Create(ctx, input, embed)
}

// Update re-resolves the embed and replaces the lesson.
func (s *Service) Update(ctx context.Context, id int64, input LessonInput) (Lesson, error) {
	embed, err := DetectProvider(input.VideoURL)
	if err != nil {
		return Lesson{}, err
	}
	return s.repo.Update(ctx, id, input, embed)
}

// Delete removes a lesson.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Count returns the total number of lessons.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
