package auth

// Role is the account's role
type Role string

const (
	// RoleIndividual is a standalone account with no family linkage
	RoleIndividual Role = "individual"
	// RoleParent can mint linking codes and view linked children
	RoleParent Role = "parent"
	// RoleChild is linked to exactly one parent account
	RoleChild Role = "child"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleIndividual, RoleParent, RoleChild:
		return true
	default:
		return false
	}
}

// CanGenerateLinkingCodes reports whether this role may mint linking codes
func (r Role) CanGenerateLinkingCodes() bool {
	return r == RoleParent
}

// CanRedeemLinkingCodes reports whether this role may redeem a linking code.
// Parents never redeem; individuals become children through redemption.
func (r Role) CanRedeemLinkingCodes() bool {
	switch r {
	case RoleIndividual, RoleChild:
		return true
	default:
		return false
	}
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []Role {
	return []Role{
		RoleIndividual,
		RoleParent,
		RoleChild,
	}
}

// ParseRole safely parses a string into a Role type
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}
