// Package adminfn hosts the privileged administrative functions: the
// one-time super-admin bootstrap and role-assigning user provisioning.
// These are the only write paths into the role store, and the only places
// where privilege elevation happens.
package adminfn

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/almanar-edu/almanar/internal/identity"
	"github.com/almanar-edu/almanar/internal/platform/httpx"
	"github.com/almanar-edu/almanar/internal/roles"
	"github.com/almanar-edu/almanar/internal/shared"
)

// SessionVerifier resolves a bearer token to a caller identity.
type SessionVerifier interface {
	VerifySession(ctx context.Context, bearer string) (*shared.Identity, error)
}

// IdentityAdmin is the privileged identity-provisioning API.
type IdentityAdmin interface {
	CreateUser(ctx context.Context, input identity.NewUser) (*identity.User, error)
}

// WelcomeMailer enqueues a welcome email for a freshly provisioned account.
// Best effort: failures are logged, never surfaced.
type WelcomeMailer interface {
	EnqueueWelcome(ctx context.Context, email, fullName string) error
}

// Handler wires the two function endpoints.
type Handler struct {
	logger   *slog.Logger
	sessions SessionVerifier
	admin    IdentityAdmin
	store    roles.Store
	audit    *shared.AuditLogger
	mailer   WelcomeMailer
}

// NewHandler constructs a Handler instance. audit and mailer may be nil.
func NewHandler(logger *slog.Logger, sessions SessionVerifier, admin IdentityAdmin, store roles.Store, audit *shared.AuditLogger, mailer WelcomeMailer) *Handler {
	return &Handler{logger: logger, sessions: sessions, admin: admin, store: store, audit: audit, mailer: mailer}
}

// MountRoutes registers the function endpoints on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(CORS)
	r.Post("/bootstrap-admin", h.handleBootstrapAdmin)
	r.Options("/bootstrap-admin", noContent)
	r.Post("/create-user", h.handleCreateUser)
	r.Options("/create-user", noContent)
}

// noContent exists so chi routes OPTIONS into the CORS middleware instead
// of returning 405 before it runs.
func noContent(w http.ResponseWriter, r *http.Request) {}

// resolveCaller authenticates the request, writing the 401 wire responses
// itself. Returns nil when the response has already been written.
func (h *Handler) resolveCaller(w http.ResponseWriter, r *http.Request) *shared.Identity {
	bearer := identity.BearerFromRequest(r)
	if bearer == "" {
		httpx.Error(w, http.StatusUnauthorized, "Authorization required")
		return nil
	}
	caller, err := h.sessions.VerifySession(r.Context(), bearer)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Invalid session")
		return nil
	}
	return caller
}

func (h *Handler) recordAudit(ctx context.Context, log shared.AuditLog) {
	if h.audit == nil {
		return
	}
	if err := h.audit.Record(ctx, log); err != nil {
		h.logger.Warn("audit record", slog.String("action", log.Action), slog.Any("error", err))
	}
}
