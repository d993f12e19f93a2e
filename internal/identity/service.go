package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/almanar-edu/almanar/internal/shared"
)

// Service wraps identity business rules: credential checks, token
// verification and privileged provisioning.
type Service struct {
	repo     Repository
	tokens   *TokenIssuer
	sessions *SessionManager
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenIssuer, sessions *SessionManager) *Service {
	return &Service{repo: repo, tokens: tokens, sessions: sessions}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a bearer token bound to a fresh session.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	sid, err := s.sessions.Register(ctx, user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("register session: %w", err)
	}
	token, err := s.tokens.Sign(user, sid)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

// VerifySession resolves a bearer token to the caller identity. Any parse
// failure, revoked session or inactive account yields ErrUnauthenticated.
func (s *Service) VerifySession(ctx context.Context, bearer string) (*shared.Identity, error) {
	claims, err := s.tokens.Parse(bearer)
	if err != nil {
		return nil, shared.ErrUnauthenticated
	}
	active, err := s.sessions.Active(ctx, claims.SessionID)
	if err != nil || !active {
		return nil, shared.ErrUnauthenticated
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, shared.ErrUnauthenticated
	}
	return &shared.Identity{UserID: user.ID, Email: user.Email, SessionID: claims.SessionID}, nil
}

// SignOut revokes the session bound to the token.
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	return s.sessions.Revoke(ctx, sessionID)
}

// CreateUser provisions an account through the privileged admin API. The
// password is hashed, the email stored lower-cased and, when EmailConfirm is
// set, the account is marked confirmed without a verification round-trip.
func (s *Service) CreateUser(ctx context.Context, input NewUser) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &User{
		ID:             uuid.New(),
		Email:          strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash:   string(hash),
		FullName:       strings.TrimSpace(input.FullName),
		EmailConfirmed: input.EmailConfirm,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail exposes privileged account lookup.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}
