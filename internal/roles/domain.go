package roles

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is a label assigned to a user in the role store.
type Role string

// The five role labels known to the system.
const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleAccountant Role = "accountant"
	RoleTeacher    Role = "teacher"
	RoleStaff      Role = "staff"
)

// All lists every valid role label.
func All() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleAccountant, RoleTeacher, RoleStaff}
}

// Parse validates a raw role string against the known labels.
func Parse(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleAccountant, RoleTeacher, RoleStaff:
		return role, nil
	}
	return "", fmt.Errorf("roles: unknown role %q", raw)
}

// Assignment is a record binding a user to one role. A user may hold zero,
// one or several assignments; the pair (user, role) is unique.
type Assignment struct {
	UserID    uuid.UUID
	Role      Role
	CreatedAt time.Time
}

// Gate names a requirement a protected resource enforces.
type Gate string

const (
	GateAdmin      Gate = "admin"
	GateAccountant Gate = "accountant"
	GateTeacher    Gate = "teacher"
)

// IsAdmin reports whether the set contains an admin-level role.
// super_admin and admin are equivalent for authorization purposes.
func IsAdmin(held []Role) bool {
	for _, r := range held {
		if r == RoleSuperAdmin || r == RoleAdmin {
			return true
		}
	}
	return false
}

// Satisfies reports whether the held roles pass the gate. Admin-level roles
// satisfy every gate; accountant and teacher satisfy only their own.
func Satisfies(held []Role, gate Gate) bool {
	if IsAdmin(held) {
		return true
	}
	for _, r := range held {
		switch gate {
		case GateAccountant:
			if r == RoleAccountant {
				return true
			}
		case GateTeacher:
			if r == RoleTeacher {
				return true
			}
		}
	}
	return false
}
