package adminfn

import (
	"log/slog"
	"net/http"

	"github.com/almanar-edu/almanar/internal/identity"
	"github.com/almanar-edu/almanar/internal/platform/httpx"
	"github.com/almanar-edu/almanar/internal/roles"
	"github.com/almanar-edu/almanar/internal/shared"
)

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type createUserResponse struct {
	Success bool           `json:"success"`
	User    createUserInfo `json:"user"`
}

type createUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// handleCreateUser provisions a new account and assigns it exactly one role.
// Only callers already holding super_admin or admin may use it. User creation
// is the primary effect; the role insert afterwards is best effort, so a new
// account can legitimately exist with zero roles and must be repaired out of
// band if that happens.
func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	caller := h.resolveCaller(w, r)
	if caller == nil {
		return
	}
	ctx := r.Context()

	// Authorization reads the caller's full role set through the trusted
	// store, independent of anything the caller could see client-side.
	held, err := h.store.ListForUser(ctx, caller.UserID)
	if err != nil {
		h.logger.Error("create-user: load caller roles", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !roles.IsAdmin(held) {
		httpx.Error(w, http.StatusForbidden, "Admin access required")
		return
	}

	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		httpx.Error(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	role, err := roles.Parse(req.Role)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid role")
		return
	}

	created, err := h.admin.CreateUser(ctx, identity.NewUser{
		Email:        req.Email,
		Password:     req.Password,
		FullName:     req.FullName,
		EmailConfirm: true,
	})
	if err != nil {
		h.logger.Error("create-user: provision identity", slog.String("email", req.Email), slog.Any("error", err))
		httpx.Error(w, http.StatusBadRequest, shared.UserSafeMessage(err))
		return
	}

	h.recordAudit(ctx, shared.AuditLog{
		ActorID:  caller.UserID,
		Action:   "user_provisioned",
		Entity:   "auth_users",
		EntityID: created.ID.String(),
		Meta:     map[string]any{"email": created.Email},
	})

	// Role assignment failure is tolerated: the account already exists and
	// the caller gets success for the creation either way.
	if err := h.store.Assign(ctx, created.ID, role); err != nil {
		h.logger.Error("create-user: assign role", slog.String("user_id", created.ID.String()), slog.String("role", string(role)), slog.Any("error", err))
	} else {
		h.recordAudit(ctx, shared.AuditLog{
			ActorID:  caller.UserID,
			Action:   "role_assigned",
			Entity:   "user_roles",
			EntityID: created.ID.String(),
			Meta:     map[string]any{"role": string(role)},
		})
	}

	if h.mailer != nil {
		if err := h.mailer.EnqueueWelcome(ctx, created.Email, created.FullName); err != nil {
			h.logger.Warn("create-user: enqueue welcome mail", slog.Any("error", err))
		}
	}

	httpx.JSON(w, http.StatusOK, createUserResponse{
		Success: true,
		User:    createUserInfo{ID: created.ID.String(), Email: created.Email},
	})
}
