package domain

import "time"

// Role is the permission category attached to a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

// ParseRole returns the role named by s, if it is part of the enumeration.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles() {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// User is the stored credential record keyed by Name.
type User struct {
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
