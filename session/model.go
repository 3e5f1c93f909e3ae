package session

// Role is one of the four closed account kinds recognized by the portal.
//
// Role values outside the enumerated set never authorize anything: the
// dispatcher renders a terminal invalid-role view and the store refuses to
// persist them.
type Role string

const (
	// RoleAdmin is an account kind accepted by the portal.
	RoleAdmin Role = "admin"
	// RoleStudent is an account kind accepted by the portal.
	RoleStudent Role = "student"
	// RoleWarden is an account kind accepted by the portal.
	RoleWarden Role = "warden"
	// RoleSecurity is an account kind accepted by the portal.
	RoleSecurity Role = "security"
)

// Roles returns the closed set of valid roles in display order.
func Roles() [4]Role {
	return [4]Role{RoleAdmin, RoleWarden, RoleSecurity, RoleStudent}
}

// ParseRole maps a wire string onto the closed role set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleStudent:
		return RoleStudent, true
	case RoleWarden:
		return RoleWarden, true
	case RoleSecurity:
		return RoleSecurity, true
	default:
		return "", false
	}
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Identity is the account record the upstream API resolved during login.
type Identity struct {
	ID       string
	FullName string
	Email    string
	Role     Role
}

// Valid reports whether the identity is structurally usable: a known role
// and a non-empty email. ID and FullName are display data and may be empty.
func (id Identity) Valid() bool {
	return id.Role.Valid() && id.Email != ""
}

// Session defines the persisted authenticated state for one portal visitor.
//
// Session instances are intended to be written once on login and treated as
// immutable until logout.
type Session struct {
	Token    string
	Identity Identity

	CreatedAt int64
	ExpiresAt int64
}

// Valid reports whether the session carries both halves of the pair.
func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.Identity.Valid()
}
