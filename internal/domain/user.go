package domain

import "strings"

// Role enumerates the actor roles injected by the auth layer.
type Role string

const (
	RoleStudent  Role = "student"
	RoleEmployer Role = "employer"
	RoleAdmin    Role = "admin"
)

// ParseRole normalizes a role claim, reporting whether it is known.
func ParseRole(v string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(v)))
	switch r {
	case RoleStudent, RoleEmployer, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

// Actor is the authenticated caller of a core operation.
type Actor struct {
	ID   string
	Role Role
}

func Student(id string) Actor  { return Actor{ID: id, Role: RoleStudent} }
func Employer(id string) Actor { return Actor{ID: id, Role: RoleEmployer} }
func Admin(id string) Actor    { return Actor{ID: id, Role: RoleAdmin} }

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Require fails with ErrUnauthorized unless the actor holds one of roles.
func (a Actor) Require(roles ...Role) error {
	if strings.TrimSpace(a.ID) == "" {
		return Forbidden("missing actor")
	}
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return Forbidden("role %q may not perform this operation", a.Role)
}

// Owns reports whether the actor is the given owner id in the given role.
func (a Actor) Owns(role Role, ownerID string) bool {
	return a.Role == role && ownerID != "" && a.ID == ownerID
}
