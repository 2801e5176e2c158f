package auth

import (
	"fmt"

	"github.com/netconfig/netconfig/pkg/util"
)

// Checker validates user permissions against a registry's grants
type Checker struct {
	registry *Registry
}

// NewChecker creates a permission checker
func NewChecker(registry *Registry) *Checker {
	return &Checker{registry: registry}
}

// Registry returns the registry the checker reads grants from
func (c *Checker) Registry() *Registry {
	return c.registry
}

// Check verifies that user holds permission on deviceID. Admins pass
// every check; other users need a grant on the device.
func (c *Checker) Check(user *User, deviceID string, permission Permission) error {
	if user == nil {
		return util.ErrUnauthenticated
	}
	if user.IsAdmin() {
		return nil
	}
	if permission != PermAdmin {
		if g, ok := c.registry.Grant(user.ID, deviceID); ok && g.Allows(permission) {
			return nil
		}
	}
	return &PermissionError{
		User:       user.Username,
		Permission: permission,
		Device:     deviceID,
	}
}

// RequireAdmin verifies that user has the admin role
func (c *Checker) RequireAdmin(user *User) error {
	return c.Check(user, "", PermAdmin)
}

// Allowed is Check reduced to a bool
func (c *Checker) Allowed(user *User, deviceID string, permission Permission) bool {
	return c.Check(user, deviceID, permission) == nil
}

// ListPermissionsForUser returns the permissions a user holds on a device
func (c *Checker) ListPermissionsForUser(user *User, deviceID string) []Permission {
	var perms []Permission
	for _, p := range []Permission{PermRead, PermWrite, PermDelete} {
		if c.Allowed(user, deviceID, p) {
			perms = append(perms, p)
		}
	}
	return perms
}

// PermissionError represents a permission denial
type PermissionError struct {
	User       string
	Permission Permission
	Device     string
}

func (e *PermissionError) Error() string {
	if e.Permission == PermAdmin {
		return fmt.Sprintf("permission denied: user '%s' is not an administrator", e.User)
	}
	msg := fmt.Sprintf("permission denied: user '%s' does not have '%s' permission", e.User, e.Permission)
	if e.Device != "" {
		msg += fmt.Sprintf(" on device '%s'", e.Device)
	}
	return msg
}

func (e *PermissionError) Unwrap() error {
	return util.ErrPermissionDenied
}
