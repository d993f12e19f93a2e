package adminfn

import (
	"log/slog"
	"net/http"

	"github.com/almanar-edu/almanar/internal/platform/httpx"
	"github.com/almanar-edu/almanar/internal/roles"
	"github.com/almanar-edu/almanar/internal/shared"
)

// handleBootstrapAdmin promotes the very first authenticated caller to
// super_admin. The promotion happens at most once for the lifetime of the
// system: once any role assignment exists the endpoint becomes a no-op that
// reports already_initialized, which is success, not an error.
func (h *Handler) handleBootstrapAdmin(w http.ResponseWriter, r *http.Request) {
	caller := h.resolveCaller(w, r)
	if caller == nil {
		return
	}
	ctx := r.Context()

	count, err := h.store.CountAssignments(ctx)
	if err != nil {
		h.logger.Error("bootstrap: count role assignments", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to check roles")
		return
	}
	if count > 0 {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "already_initialized"})
		return
	}

	// The store re-checks emptiness atomically, so two concurrent first
	// callers cannot both win even though the count above is unguarded.
	won, err := h.store.AssignFirstSuperAdmin(ctx, caller.UserID)
	if err != nil {
		h.logger.Error("bootstrap: assign super admin", slog.String("user_id", caller.UserID.String()), slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to set admin role")
		return
	}
	if !won {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "already_initialized"})
		return
	}

	h.recordAudit(ctx, shared.AuditLog{
		ActorID:  caller.UserID,
		Action:   "bootstrap_super_admin",
		Entity:   "user_roles",
		EntityID: caller.UserID.String(),
		Meta:     map[string]any{"role": string(roles.RoleSuperAdmin)},
	})
	h.logger.Info("bootstrap: first super admin assigned", slog.String("user_id", caller.UserID.String()))

	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "role": string(roles.RoleSuperAdmin)})
}
