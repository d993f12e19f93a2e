// Package guard gates access to protected routes by authentication state
// and role requirements. The evaluator is an explicit per-mount
// authorization context: construct one, feed it the resolved auth state,
// then ask it for a decision.
package guard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/almanar-edu/almanar/internal/roles"
	"github.com/almanar-edu/almanar/internal/shared"
)

// Requirement names the role gates a protected route enforces.
type Requirement struct {
	Admin      bool
	Accountant bool
	Teacher    bool
}

// NeedsRole reports whether any role gate is configured.
func (r Requirement) NeedsRole() bool {
	return r.Admin || r.Accountant || r.Teacher
}

// State tracks the evaluator through auth and role resolution.
type State int

const (
	// StateAuthLoading means authentication state is still unresolved.
	StateAuthLoading State = iota
	// StateRoleCheckPending means a role refresh is in flight.
	StateRoleCheckPending
	// StateReady means a final decision can be evaluated.
	StateReady
)

// Decision is the terminal render outcome for a guard evaluation.
type Decision int

const (
	// DecisionPending means keep showing the loading state.
	DecisionPending Decision = iota
	// DecisionAllow renders the protected content.
	DecisionAllow
	// DecisionRedirectLogin sends the caller to the login page, carrying
	// the originally requested path for post-login return.
	DecisionRedirectLogin
	// DecisionRedirectHome sends an authenticated but unauthorized caller
	// back to the home page.
	DecisionRedirectHome
)

// RoleFetcher loads the role set for a user.
type RoleFetcher interface {
	RolesFor(ctx context.Context, userID uuid.UUID) ([]roles.Role, error)
}

// Evaluator resolves a single mount's authorization decision. It performs
// at most one role refresh for its lifetime: a refresh that fails or comes
// back empty still moves the evaluator to ready, where missing roles fail
// every gate.
type Evaluator struct {
	requirement Requirement
	fetcher     RoleFetcher
	logger      *slog.Logger

	mu             sync.Mutex
	state          State
	user           *shared.Identity
	held           []roles.Role
	fetchAttempted bool
}

// NewEvaluator constructs an Evaluator for one mount.
func NewEvaluator(requirement Requirement, fetcher RoleFetcher, logger *slog.Logger) *Evaluator {
	return &Evaluator{requirement: requirement, fetcher: fetcher, logger: logger, state: StateAuthLoading}
}

// SetAuth feeds the resolved authentication state into the evaluator.
// user may be nil (unauthenticated); preloaded roles may accompany a user
// when the session layer already knows them.
func (e *Evaluator) SetAuth(user *shared.Identity, preloaded []roles.Role) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateAuthLoading {
		return
	}
	e.user = user
	e.held = preloaded
	if !e.requirement.NeedsRole() || user == nil || len(preloaded) > 0 {
		e.state = StateReady
		return
	}
	e.state = StateRoleCheckPending
}

// State reports the current evaluator state.
func (e *Evaluator) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Roles returns the role set the evaluator resolved.
func (e *Evaluator) Roles() []roles.Role {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.held
}

// Evaluate drives the evaluator to a decision. While authentication is
// unresolved it reports pending; a required role refresh happens here,
// exactly once, with errors tolerated rather than retried.
func (e *Evaluator) Evaluate(ctx context.Context) Decision {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateAuthLoading:
		return DecisionPending
	case StateRoleCheckPending:
		if !e.fetchAttempted {
			e.fetchAttempted = true
			held, err := e.fetcher.RolesFor(ctx, e.user.UserID)
			if err != nil {
				if e.logger != nil {
					e.logger.Warn("guard: role refresh failed", slog.String("user_id", e.user.UserID.String()), slog.Any("error", err))
				}
			} else {
				e.held = held
			}
		}
		e.state = StateReady
	}

	return e.decide()
}

// decide evaluates the final rules. Callers hold the lock.
func (e *Evaluator) decide() Decision {
	if e.user == nil {
		return DecisionRedirectLogin
	}
	if e.requirement.Admin && !roles.IsAdmin(e.held) {
		return DecisionRedirectHome
	}
	if e.requirement.Accountant && !roles.Satisfies(e.held, roles.GateAccountant) {
		return DecisionRedirectHome
	}
	if e.requirement.Teacher && !roles.Satisfies(e.held, roles.GateTeacher) {
		return DecisionRedirectHome
	}
	return DecisionAllow
}
