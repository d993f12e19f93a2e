package identity

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/almanar-edu/almanar/internal/platform/httpx"
	"github.com/almanar-edu/almanar/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	User        userBrief `json:"user"`
}

type userBrief struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	httpx.JSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		User:        userBrief{ID: user.ID.String(), Email: user.Email, FullName: user.FullName},
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	bearer := BearerFromRequest(r)
	if bearer == "" {
		httpx.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}
	id, err := h.service.VerifySession(r.Context(), bearer)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Invalid session")
		return
	}
	if err := h.service.SignOut(r.Context(), id.SessionID); err != nil {
		h.logger.Warn("sign out", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, shared.GenericErrorMessage)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// BearerFromRequest extracts the bearer token from the Authorization header,
// returning "" when the header is absent or not a bearer scheme.
func BearerFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
