package students

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/almanar-edu/almanar/internal/shared"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]Student
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, byID: map[int64]Student{}}
}

func (m *memoryRepo) List(_ context.Context, page shared.Pagination) ([]Student, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]Student, 0, len(m.byID))
	for _, s := range m.byID {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].AdmissionNo < all[j].AdmissionNo })
	start := page.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + page.PerPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return Student{}, shared.ErrNotFound
	}
	return s, nil
}

func (m *memoryRepo) Create(_ context.Context, input StudentInput) (Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.AdmissionNo == input.AdmissionNo {
			return Student{}, shared.ErrDuplicate
		}
	}
	s := Student{
		ID:            m.nextID,
		AdmissionNo:   input.AdmissionNo,
		FullName:      input.FullName,
		Guardian:      input.Guardian,
		GuardianEmail: input.GuardianEmail,
		Phone:         input.Phone,
		ClassName:     input.ClassName,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	m.byID[s.ID] = s
	m.nextID++
	return s, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, input StudentInput) (Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return Student{}, shared.ErrNotFound
	}
	s.AdmissionNo = input.AdmissionNo
	s.FullName = input.FullName
	s.Guardian = input.Guardian
	s.GuardianEmail = input.GuardianEmail
	s.Phone = input.Phone
	s.ClassName = input.ClassName
	s.UpdatedAt = time.Now()
	m.byID[id] = s
	return s, nil
}

func (m *memoryRepo) SetPhotoKey(_ context.Context, id int64, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	s.PhotoKey = key
	m.byID[id] = s
	return nil
}

func (m *memoryRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byID)), nil
}

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStore) Put(_ context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, "", shared.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), m.types[key], nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.types, key)
	return nil
}

func (m *memoryStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key, nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo, *memoryStore) {
	t.Helper()
	repo := newMemoryRepo()
	store := newMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, store, nil, logger), repo, store
}

func sampleInput(admission string) StudentInput {
	return StudentInput{
		AdmissionNo:   admission,
		FullName:      "Ahmad Fauzi",
		Guardian:      "Bapak Fauzi",
		GuardianEmail: "fauzi@contoh.id",
		Phone:         "081234567890",
		ClassName:     "Tahfidz 1A",
	}
}

func TestCreateAndGetStudent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New(), sampleInput("ALM-2026-001"))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Ahmad Fauzi", got.FullName)
	require.Equal(t, "Tahfidz 1A", got.ClassName)
}

func TestCreateDuplicateAdmissionNo(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), sampleInput("ALM-2026-001"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, uuid.New(), sampleInput("ALM-2026-001"))
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestUpdateMissingStudent(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Update(context.Background(), uuid.New(), 404, sampleInput("ALM-2026-002"))
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListPaginates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, no := range []string{"ALM-2026-001", "ALM-2026-002", "ALM-2026-003"} {
		_, err := svc.Create(ctx, uuid.New(), sampleInput(no))
		require.NoError(t, err)
	}

	list, page, err := svc.List(ctx, shared.Pagination{Page: 2, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "ALM-2026-003", list[0].AdmissionNo)
	require.Equal(t, 3, page.Total)
	require.Equal(t, 2, page.TotalPages)
}

func TestUploadPhotoStoresAndLinks(t *testing.T) {
	svc, repo, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New(), sampleInput("ALM-2026-001"))
	require.NoError(t, err)

	key, err := svc.UploadPhoto(ctx, created.ID, strings.NewReader("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key, "students/"))
	require.True(t, strings.HasSuffix(key, ".jpg"))

	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, key, stored.PhotoKey)

	body, contentType, err := store.Get(ctx, key)
	require.NoError(t, err)
	defer body.Close()
	require.Equal(t, "image/jpeg", contentType)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.test/"+key, got.PhotoURL)
}

func TestUploadPhotoRejectsUnknownType(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New(), sampleInput("ALM-2026-001"))
	require.NoError(t, err)

	_, err = svc.UploadPhoto(ctx, created.ID, strings.NewReader("<svg/>"), "image/svg+xml")
	require.ErrorIs(t, err, ErrUnsupportedPhotoType)
	require.Empty(t, store.objects)
}

func TestUploadPhotoMissingStudent(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UploadPhoto(context.Background(), 404, strings.NewReader("x"), "image/png")
	require.ErrorIs(t, err, shared.ErrNotFound)
}
