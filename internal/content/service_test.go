package content

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/almanar-edu/almanar/internal/shared"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]Section
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, byID: map[int64]Section{}}
}

func (m *memoryRepo) sections(publishedOnly bool) []Section {
	var out []Section
	for _, s := range m.byID {
		if publishedOnly && !s.Published {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *memoryRepo) ListPublished(_ context.Context) ([]Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sections(true), nil
}

func (m *memoryRepo) ListAll(_ context.Context) ([]Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sections(false), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return Section{}, shared.ErrNotFound
	}
	return s, nil
}

func (m *memoryRepo) Create(_ context.Context, input SectionInput) (Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.Key == input.Key {
			return Section{}, shared.ErrDuplicate
		}
	}
	s := Section{
		ID:        m.nextID,
		Key:       input.Key,
		Title:     input.Title,
		Body:      input.Body,
		Position:  input.Position,
		Published: input.Published,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.byID[s.ID] = s
	m.nextID++
	return s, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, input SectionInput) (Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return Section{}, shared.ErrNotFound
	}
	s.Key = input.Key
	s.Title = input.Title
	s.Body = input.Body
	s.Position = input.Position
	s.Published = input.Published
	s.UpdatedAt = time.Now()
	m.byID[id] = s
	return s, nil
}

func (m *memoryRepo) SetImageKey(_ context.Context, id int64, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	s.ImageKey = key
	m.byID[id] = s
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func TestLandingShowsOnlyPublishedInOrder(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, SectionInput{Key: "announcement", Title: "PPDB dibuka", Position: 2, Published: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, SectionInput{Key: "hero", Title: "Selamat datang", Position: 0, Published: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, SectionInput{Key: "draft", Title: "Belum tayang", Position: 1, Published: false})
	require.NoError(t, err)

	sections, err := svc.Landing(ctx)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	require.Equal(t, "hero", sections[0].Key)
	require.Equal(t, "announcement", sections[1].Key)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestCreateDuplicateKey(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, SectionInput{Key: "hero", Title: "A"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, SectionInput{Key: "hero", Title: "B"})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

type fakeStore struct {
	objects map[string][]byte
}

func (f *fakeStore) Put(_ context.Context, key string, body io.Reader, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, "", shared.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(string(data))), "", nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key, nil
}

func TestUploadImageLinksSection(t *testing.T) {
	repo := newMemoryRepo()
	store := &fakeStore{objects: map[string][]byte{}}
	svc := NewService(repo, store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, SectionInput{Key: "hero", Title: "A", Published: true})
	require.NoError(t, err)

	key, err := svc.UploadImage(ctx, created.ID, strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key, "landing/"))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, key, got.ImageKey)
	require.Equal(t, "https://cdn.test/"+key, got.ImageURL)
}

func TestUploadImageRejectsUnknownType(t *testing.T) {
	repo := newMemoryRepo()
	store := &fakeStore{objects: map[string][]byte{}}
	svc := NewService(repo, store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, SectionInput{Key: "hero", Title: "A"})
	require.NoError(t, err)

	_, err = svc.UploadImage(ctx, created.ID, strings.NewReader("x"), "image/gif")
	require.ErrorIs(t, err, ErrUnsupportedImageType)
	require.Empty(t, store.objects)
}
