package models

// Role is one of the closed set of permission tags carried by a user.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// IsValid reports whether r belongs to the known role set.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// RolesFor maps identity attributes to role tags. Every user carries USER;
// administrators additionally carry ADMIN.
func RolesFor(u *User) []Role {
	if u == nil {
		return nil
	}
	if u.IsAdmin {
		return []Role{RoleAdmin, RoleUser}
	}
	return []Role{RoleUser}
}

// RoleStrings is RolesFor rendered for JSON responses.
func RoleStrings(u *User) []string {
	roles := RolesFor(u)
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
