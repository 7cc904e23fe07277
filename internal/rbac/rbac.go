// Package rbac maps risk levels to required permissions and checks a
// user's role against that requirement. It has no Python counterpart in
// the retained source tree — neither rbac.py nor a test file for it
// survived distillation — so its shape follows spec.md §3/§4.3 directly.
package rbac

import "github.com/tafyai/agentsh-security-core/internal/classifier"

// Permission is a capability a Role may grant.
type Permission string

const (
	PermRead        Permission = "READ"
	PermRunSafe     Permission = "RUN_SAFE"
	PermRunMedium   Permission = "RUN_MEDIUM"
	PermRunHigh     Permission = "RUN_HIGH"
	PermRunCritical Permission = "RUN_CRITICAL"
	PermApprove     Permission = "APPROVE"
	PermConfigure   Permission = "CONFIGURE"
)

// Role is a fixed set of permissions a User is assigned.
type Role string

const (
	RoleViewer   Role = "VIEWER"
	RoleOperator Role = "OPERATOR"
	RoleAdmin    Role = "ADMIN"
	RoleRoot     Role = "ROOT"
)

var permissionsByRole = map[Role]map[Permission]bool{
	RoleViewer: {
		PermRead:    true,
		PermRunSafe: true,
	},
	RoleOperator: {
		PermRead:      true,
		PermRunSafe:   true,
		PermRunMedium: true,
	},
	RoleAdmin: {
		PermRead:        true,
		PermRunSafe:     true,
		PermRunMedium:   true,
		PermRunHigh:     true,
		PermRunCritical: true,
		PermApprove:     true,
		PermConfigure:   true,
	},
	RoleRoot: {
		PermRead:        true,
		PermRunSafe:     true,
		PermRunMedium:   true,
		PermRunHigh:     true,
		PermRunCritical: true,
		PermApprove:     true,
		PermConfigure:   true,
	},
}

// Has reports whether role grants perm.
func (r Role) Has(perm Permission) bool {
	return permissionsByRole[r][perm]
}

// RequiredPermission maps a risk level to the minimum permission
// required to execute at that level.
func RequiredPermission(level classifier.RiskLevel) Permission {
	switch level {
	case classifier.SAFE:
		return PermRead
	case classifier.LOW:
		return PermRunSafe
	case classifier.MEDIUM:
		return PermRunMedium
	case classifier.HIGH:
		return PermRunHigh
	default:
		return PermRunCritical
	}
}

// User identifies the actor requesting a decision.
type User struct {
	ID          string
	DisplayName string
	Role        Role
}

// CheckAccess reports whether user may execute an action at level,
// whether approval would allow it instead, and a human-readable reason
// when neither is true. OPERATOR may escalate through approval up to
// its RBAC ceiling; VIEWER has no escalation path and is denied outright
// above RUN_SAFE. ADMIN and ROOT hold every permission directly, so
// this branch never applies to them; CRITICAL is blocked unconditionally
// upstream, by the classifier and policy layers, regardless of role.
func CheckAccess(user User, level classifier.RiskLevel) (allowed bool, needsApproval bool, reason string) {
	required := RequiredPermission(level)
	if user.Role.Has(required) {
		return true, false, ""
	}

	if user.Role == RoleOperator {
		return false, true, "Role " + string(user.Role) + " requires approval to run at " + string(required)
	}

	return false, false, "Role " + string(user.Role) + " lacks permission " + string(required)
}
