package domain

import "slices"

// Identity is the verified caller of a single request. It is immutable once
// built; a nil *Identity stands for an anonymous caller.
type Identity struct {
	subject string
	roles   []string
}

// NewIdentity builds an identity with a deduplicated, sorted role set.
func NewIdentity(subject string, roles ...string) *Identity {
	set := make([]string, 0, len(roles))
	for _, r := range roles {
		if r == "" || slices.Contains(set, r) {
			continue
		}
		set = append(set, r)
	}
	slices.Sort(set)
	return &Identity{subject: subject, roles: set}
}

// Subject returns the username the identity was established for.
func (id *Identity) Subject() string {
	return id.subject
}

// Roles returns a copy of the role set in sorted order.
func (id *Identity) Roles() []string {
	return slices.Clone(id.roles)
}

// HasAnyRole reports whether the identity holds at least one of roles.
func (id *Identity) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(id.roles, r) {
			return true
		}
	}
	return false
}
