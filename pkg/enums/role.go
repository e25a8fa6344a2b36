package enums

import "fmt"

// Role represents an account-level role stored on the user record.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleStore        Role = "store"
	RoleCustomer     Role = "customer"
	RoleStorePending Role = "store_pending"
)

// RoleVisitor is never persisted; it is the derived role of a caller
// without a session.
const RoleVisitor Role = "visitor"

var validRoles = []Role{
	RoleAdmin,
	RoleStore,
	RoleCustomer,
	RoleStorePending,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a persistable Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
