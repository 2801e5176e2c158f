package auth

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is an account that can log in
type User struct {
	ID           string    `yaml:"id" json:"id"`
	Username     string    `yaml:"username" json:"username"`
	PasswordHash string    `yaml:"password_hash" json:"-"`
	DisplayName  string    `yaml:"display_name,omitempty" json:"displayName"`
	Role         Role      `yaml:"role" json:"role"`
	CreatedAt    time.Time `yaml:"created_at" json:"createdAt"`
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Grant gives one user access to one device
type Grant struct {
	ID        string    `yaml:"id" json:"id"`
	UserID    string    `yaml:"user_id" json:"userId"`
	DeviceID  string    `yaml:"device_id" json:"deviceId"`
	CanRead   bool      `yaml:"can_read" json:"canRead"`
	CanWrite  bool      `yaml:"can_write" json:"canWrite"`
	CanDelete bool      `yaml:"can_delete" json:"canDelete"`
	CreatedAt time.Time `yaml:"created_at" json:"createdAt"`
}

// Allows reports whether the grant covers p
func (g *Grant) Allows(p Permission) bool {
	switch p {
	case PermRead:
		return g.CanRead
	case PermWrite:
		return g.CanWrite
	case PermDelete:
		return g.CanDelete
	}
	return false
}

// HashPassword hashes a plain text password using bcrypt
func HashPassword(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword compares a bcrypt hashed password with a plain text password
func ComparePassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
