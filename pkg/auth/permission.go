// Package auth provides users, per-device access grants and permission
// checks.
package auth

import "fmt"

// Permission defines an action that can be controlled
type Permission string

// Standard permissions
const (
	PermRead   Permission = "read"
	PermWrite  Permission = "write"
	PermDelete Permission = "delete"
	PermAdmin  Permission = "admin" // user management, device creation
)

// Role is a user's global role
type Role string

const (
	RoleAdmin Role = "admin" // Passes every check
	RoleUser  Role = "user"  // Needs a grant per device
)

// Valid returns true for a known role
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// ParseRole converts s to a Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return r, fmt.Errorf("invalid role: %s (must be 'admin' or 'user')", s)
	}
	return r, nil
}

// IsReadOnly returns true if the permission is read-only
func (p Permission) IsReadOnly() bool {
	return p == PermRead
}

// IsWriteOperation returns true if the permission involves modification
func (p Permission) IsWriteOperation() bool {
	return !p.IsReadOnly()
}
