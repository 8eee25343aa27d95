package entities

import "strings"

// Role is the totally ordered role hierarchy attached to a principal.
type Role string

const (
	RoleSystemAdmin Role = "system_admin"
	RoleOrgAdmin    Role = "org_admin"
	RoleManager     Role = "manager"
	RoleSalesperson Role = "salesperson"
	RoleUser        Role = "user"
)

// Rank maps a role to its position in the hierarchy. Unknown roles rank
// below every known role so they never satisfy a requirement.
func (r Role) Rank() int {
	switch r {
	case RoleSystemAdmin:
		return 5
	case RoleOrgAdmin:
		return 4
	case RoleManager:
		return 3
	case RoleSalesperson:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

// HasRole reports whether r satisfies the required role by numeric rank.
func (r Role) HasRole(required Role) bool {
	return r.Rank() >= required.Rank()
}

// ParseRole normalizes a raw role string from a token claim or header.
// Unrecognized values are kept as-is and rank below every known role.
func ParseRole(raw string) Role {
	return Role(strings.ToLower(strings.TrimSpace(raw)))
}

// Principal identifies the caller of a guarded operation together with
// its home organization.
type Principal struct {
	UserID         string `json:"user_id"`
	Role           Role   `json:"role"`
	OrganizationID string `json:"organization_id"`
}
