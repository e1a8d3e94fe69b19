package auth

import "strings"

// Role is the access level carried by a token. A higher role includes
// everything a lower one may do.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

var roleRanks = map[Role]int{
	RoleViewer:   1,
	RoleOperator: 2,
	RoleAdmin:    3,
}

// Action is a baseline API operation. Actions name both the role check
// and the audit entry of a request.
type Action string

const (
	ActionList      Action = "baseline.list"
	ActionExport    Action = "baseline.export.xlsx"
	ActionCalculate Action = "baseline.calculate"
)

// Calculate overwrites stored results, so it needs admin.
var actionRoles = map[Action]Role{
	ActionList:      RoleViewer,
	ActionExport:    RoleOperator,
	ActionCalculate: RoleAdmin,
}

// ParseRole accepts a role name in any case.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := roleRanks[role]; !ok {
		return "", ErrInvalidRole
	}
	return role, nil
}

// Allows reports whether r satisfies required.
func (r Role) Allows(required Role) bool {
	rank, ok := roleRanks[r]
	return ok && rank >= roleRanks[required]
}

// RequiredRole is the minimum role for a. Unknown actions need admin.
func (a Action) RequiredRole() Role {
	if role, ok := actionRoles[a]; ok {
		return role
	}
	return RoleAdmin
}
