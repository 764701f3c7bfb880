package identity

import "errors"

var ErrInvalidRole = errors.New("invalid role")

// Role is the capability level carried in a session token.
// The core never creates sessions; it only consumes them.
type Role string

const (
	// RoleClient books for itself.
	RoleClient Role = "client"
	// RoleOperator acts on behalf of the business (owner override on cancel,
	// confirming pending bookings).
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

func NewRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleOperator, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanOverrideOwnership reports whether the role may act on bookings owned by
// other clients.
func (r Role) CanOverrideOwnership() bool {
	return r == RoleOperator || r == RoleAdmin
}
