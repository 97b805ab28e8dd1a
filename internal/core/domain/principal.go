package domain

// Role enumerates the closed set of roles a principal may hold.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a claim string onto the closed role set.
func ParseRole(name string) (Role, bool) {
	switch Role(name) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// Principal is the verified identity attached to a request, carrying the
// role set frozen into its token at issuance time.
type Principal struct {
	Identifier string
	Roles      []Role
}

// HasRole reports whether the principal holds the given role.
func (p Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the principal's role set intersects roles.
func (p Principal) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}

// RoleNames converts a role set to its claim representation.
func RoleNames(roles []Role) []string {
	if len(roles) == 0 {
		return nil
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	return names
}

// RolesFromNames parses claim strings, dropping anything outside the closed set.
func RolesFromNames(names []string) []Role {
	if len(names) == 0 {
		return nil
	}
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		if role, ok := ParseRole(name); ok {
			roles = append(roles, role)
		}
	}
	return roles
}
