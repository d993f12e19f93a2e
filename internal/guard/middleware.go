package guard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/almanar-edu/almanar/internal/identity"
	"github.com/almanar-edu/almanar/internal/platform/httpx"
	"github.com/almanar-edu/almanar/internal/roles"
	"github.com/almanar-edu/almanar/internal/shared"
)

// SessionVerifier resolves a bearer token to a caller identity.
type SessionVerifier interface {
	VerifySession(ctx context.Context, bearer string) (*shared.Identity, error)
}

// Middleware wires guard evaluation into the HTTP router. Public routes are
// simply not wrapped; everything wrapped requires authentication.
type Middleware struct {
	Sessions SessionVerifier
	Fetcher  RoleFetcher
	Logger   *slog.Logger
}

type redirectBody struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
	From     string `json:"from,omitempty"`
}

// Require builds a middleware enforcing the given requirement.
func (m Middleware) Require(requirement Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			eval := NewEvaluator(requirement, m.Fetcher, m.Logger)

			var user *shared.Identity
			if bearer := identity.BearerFromRequest(r); bearer != "" {
				if resolved, err := m.Sessions.VerifySession(r.Context(), bearer); err == nil {
					user = resolved
				}
			}
			eval.SetAuth(user, nil)

			switch eval.Evaluate(r.Context()) {
			case DecisionAllow:
				ctx := shared.ContextWithIdentity(r.Context(), user)
				ctx = contextWithRoles(ctx, eval.Roles())
				next.ServeHTTP(w, r.WithContext(ctx))
			case DecisionRedirectLogin:
				httpx.JSON(w, http.StatusUnauthorized, redirectBody{
					Error:    "Authentication required",
					Redirect: "/login",
					From:     r.URL.RequestURI(),
				})
			case DecisionRedirectHome:
				httpx.JSON(w, http.StatusForbidden, redirectBody{
					Error:    "Insufficient role",
					Redirect: "/",
				})
			default:
				httpx.Error(w, http.StatusInternalServerError, shared.GenericErrorMessage)
			}
		})
	}
}

// RequireAdmin is shorthand for the admin gate.
func (m Middleware) RequireAdmin() func(http.Handler) http.Handler {
	return m.Require(Requirement{Admin: true})
}

// RequireAccountant is shorthand for the accountant gate.
func (m Middleware) RequireAccountant() func(http.Handler) http.Handler {
	return m.Require(Requirement{Accountant: true})
}

// RequireTeacher is shorthand for the teacher gate.
func (m Middleware) RequireTeacher() func(http.Handler) http.Handler {
	return m.Require(Requirement{Teacher: true})
}

// RequireAuth enforces authentication without any role gate.
func (m Middleware) RequireAuth() func(http.Handler) http.Handler {
	return m.Require(Requirement{})
}

type rolesContextKey struct{}

func contextWithRoles(ctx context.Context, held []roles.Role) context.Context {
	return context.WithValue(ctx, rolesContextKey{}, held)
}

// RolesFromContext extracts the resolved role set from a request context.
func RolesFromContext(ctx context.Context) []roles.Role {
	held, _ := ctx.Value(rolesContextKey{}).([]roles.Role)
	return held
}
