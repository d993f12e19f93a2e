package adminfn_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/almanar-edu/almanar/internal/adminfn"
	"github.com/almanar-edu/almanar/internal/identity"
	"github.com/almanar-edu/almanar/internal/roles"
	"github.com/almanar-edu/almanar/internal/shared"
	_ "github.com/almanar-edu/almanar/testing"
)

// stubVerifier resolves bearer tokens from a fixed map.
type stubVerifier struct {
	tokens map[string]*shared.Identity
}

func (v *stubVerifier) VerifySession(ctx context.Context, bearer string) (*shared.Identity, error) {
	id, ok := v.tokens[bearer]
	if !ok {
		return nil, shared.ErrUnauthenticated
	}
	return id, nil
}

// stubStore is an in-memory role store. A mutex around the bootstrap path
// mirrors the advisory-lock contract of the real store.
type stubStore struct {
	mu          sync.Mutex
	assignments []roles.Assignment
	countErr    error
	assignErr   error
}

func (s *stubStore) CountAssignments(ctx context.Context) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.assignments)), nil
}

func (s *stubStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]roles.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var held []roles.Role
	for _, a := range s.assignments {
		if a.UserID == userID {
			held = append(held, a.Role)
		}
	}
	return held, nil
}

func (s *stubStore) Assign(ctx context.Context, userID uuid.UUID, role roles.Role) error {
	if s.assignErr != nil {
		return s.assignErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.assignments {
		if a.UserID == userID && a.Role == role {
			return shared.ErrDuplicate
		}
	}
	s.assignments = append(s.assignments, roles.Assignment{UserID: userID, Role: role})
	return nil
}

func (s *stubStore) AssignFirstSuperAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	if s.assignErr != nil {
		return false, s.assignErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.assignments) > 0 {
		return false, nil
	}
	s.assignments = append(s.assignments, roles.Assignment{UserID: userID, Role: roles.RoleSuperAdmin})
	return true, nil
}

// stubIdentityAdmin provisions accounts in memory.
type stubIdentityAdmin struct {
	mu        sync.Mutex
	created   []*identity.User
	createErr error
}

func (a *stubIdentityAdmin) CreateUser(ctx context.Context, input identity.NewUser) (*identity.User, error) {
	if a.createErr != nil {
		return nil, a.createErr
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, u := range a.created {
		if u.Email == input.Email {
			return nil, shared.ErrDuplicate
		}
	}
	user := &identity.User{
		ID:             uuid.New(),
		Email:          input.Email,
		FullName:       input.FullName,
		EmailConfirmed: input.EmailConfirm,
		IsActive:       true,
	}
	a.created = append(a.created, user)
	return user, nil
}

type fixture struct {
	router   http.Handler
	verifier *stubVerifier
	store    *stubStore
	admin    *stubIdentityAdmin
}

func newFixture() *fixture {
	verifier := &stubVerifier{tokens: make(map[string]*shared.Identity)}
	store := &stubStore{}
	admin := &stubIdentityAdmin{}
	handler := adminfn.NewHandler(slog.Default(), verifier, admin, store, nil, nil)
	r := chi.NewRouter()
	r.Route("/functions/v1", handler.MountRoutes)
	return &fixture{router: r, verifier: verifier, store: store, admin: admin}
}

func (f *fixture) addSession(token string) uuid.UUID {
	userID := uuid.New()
	f.verifier.tokens[token] = &shared.Identity{UserID: userID, Email: token + "@almanar.test", SessionID: uuid.NewString()}
	return userID
}

func (f *fixture) call(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}
