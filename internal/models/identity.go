package models

// Role is the caller role carried in the bearer credential.
type Role string

// Roles known to the back-office.
const (
	RoleAdmin      Role = "admin"
	RoleDirector   Role = "director"
	RoleManager    Role = "manager"
	RoleVP         Role = "vp"
	RoleAgent      Role = "agent"
	RoleCallCenter Role = "call_center"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDirector, RoleManager, RoleVP, RoleAgent, RoleCallCenter:
		return true
	}

	return false
}

// Identity is the verified caller of a request.
type Identity struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}
