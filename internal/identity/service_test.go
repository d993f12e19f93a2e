package identity

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/almanar-edu/almanar/internal/shared"
)

type memoryRepo struct {
	byEmail map[string]*User
	byID    map[uuid.UUID]*User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byEmail: make(map[string]*User), byID: make(map[uuid.UUID]*User)}
}

func (r *memoryRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (r *memoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (r *memoryRepo) Create(ctx context.Context, user *User) error {
	if _, ok := r.byEmail[user.Email]; ok {
		return shared.ErrDuplicate
	}
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := newMemoryRepo()
	svc := NewService(repo,
		NewTokenIssuer([]byte("test-secret"), time.Hour),
		NewSessionManager(client, time.Hour),
	)
	return svc, repo
}

func seedUser(t *testing.T, repo *memoryRepo, email, password string, active bool) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &User{ID: uuid.New(), Email: email, PasswordHash: string(hash), FullName: "Test User", IsActive: active}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestLoginAndVerifySession(t *testing.T) {
	svc, repo := newTestService(t)
	user := seedUser(t, repo, "ustadz@almanar.test", "password123", true)

	token, got, err := svc.Login(context.Background(), "ustadz@almanar.test", "password123")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.NotEmpty(t, token)

	id, err := svc.VerifySession(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, user.ID, id.UserID)
	require.Equal(t, user.Email, id.Email)
	require.NotEmpty(t, id.SessionID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, repo := newTestService(t)
	seedUser(t, repo, "ustadz@almanar.test", "password123", true)

	_, _, err := svc.Login(context.Background(), "ustadz@almanar.test", "wrong-password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	svc, repo := newTestService(t)
	seedUser(t, repo, "former@almanar.test", "password123", false)

	_, _, err := svc.Login(context.Background(), "former@almanar.test", "password123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestVerifySessionAfterSignOut(t *testing.T) {
	svc, repo := newTestService(t)
	seedUser(t, repo, "ustadz@almanar.test", "password123", true)

	token, _, err := svc.Login(context.Background(), "ustadz@almanar.test", "password123")
	require.NoError(t, err)

	id, err := svc.VerifySession(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(context.Background(), id.SessionID))

	_, err = svc.VerifySession(context.Background(), token)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestVerifySessionGarbageToken(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.VerifySession(context.Background(), "not-a-token")
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestCreateUserConfirmedEmail(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.CreateUser(context.Background(), NewUser{
		Email:        "Guru.Baru@Almanar.Test",
		Password:     "password123",
		FullName:     "Guru Baru",
		EmailConfirm: true,
	})
	require.NoError(t, err)
	require.True(t, created.EmailConfirmed)
	require.True(t, created.IsActive)

	// Round-trip through the privileged lookup.
	found, err := svc.GetUserByEmail(context.Background(), "guru.baru@almanar.test")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
	require.Equal(t, "Guru Baru", found.FullName)
	require.True(t, found.EmailConfirmed)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte("password123")))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateUser(context.Background(), NewUser{Email: "a@almanar.test", Password: "password123", FullName: "A", EmailConfirm: true})
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), NewUser{Email: "a@almanar.test", Password: "password456", FullName: "A2", EmailConfirm: true})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}
