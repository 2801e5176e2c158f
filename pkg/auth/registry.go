package auth

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/netconfig/netconfig/pkg/util"
)

// Account constraints
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 6
)

// Default admin account created by EnsureDefaultAdmin
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "password"
)

// accessFile is the YAML layout of a persisted registry
type accessFile struct {
	Users  []User  `yaml:"users"`
	Grants []Grant `yaml:"grants"`
}

// Registry holds users and device grants. A registry opened with
// LoadRegistry writes every change back to its file.
type Registry struct {
	mu     sync.RWMutex
	path   string
	cost   int
	users  []User
	grants []Grant
}

// NewRegistry returns an empty in-memory registry
func NewRegistry() *Registry {
	return &Registry{cost: bcrypt.DefaultCost}
}

// LoadRegistry reads a registry from path. A missing file yields an empty
// registry that will be created on the first change.
func LoadRegistry(path string) (*Registry, error) {
	r := NewRegistry()
	r.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading access file: %w", err)
	}

	var f accessFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing access file: %w", err)
	}
	r.users = f.Users
	r.grants = f.Grants
	return r, nil
}

// Path returns the backing file, or "" for an in-memory registry
func (r *Registry) Path() string {
	return r.path
}

// save writes the registry to its file. Caller holds the write lock.
func (r *Registry) save() error {
	if r.path == "" {
		return nil
	}
	data, err := yaml.Marshal(accessFile{Users: r.users, Grants: r.grants})
	if err != nil {
		return fmt.Errorf("marshaling access file: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0600); err != nil {
		return fmt.Errorf("writing access file: %w", err)
	}
	return nil
}

// CreateUser adds an account. An empty display name defaults to the
// username and an empty role to RoleUser.
func (r *Registry) CreateUser(username, password, displayName string, role Role) (User, error) {
	if role == "" {
		role = RoleUser
	}
	v := util.NewValidationBuilder("")
	v.Add(len(username) >= MinUsernameLength, fmt.Sprintf("username must be at least %d characters", MinUsernameLength))
	v.Add(len(username) <= MaxUsernameLength, fmt.Sprintf("username must be at most %d characters", MaxUsernameLength))
	v.Add(len(password) >= MinPasswordLength, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	v.Add(role.Valid(), fmt.Sprintf("invalid role: %s", role))
	if err := v.Build(); err != nil {
		return User{}, err
	}

	hash, err := HashPassword(password, r.cost)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}
	if displayName == "" {
		displayName = username
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.findByName(username); ok {
		return User{}, fmt.Errorf("username %s already taken: %w", username, util.ErrAlreadyExists)
	}
	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	r.users = append(r.users, u)
	if err := r.save(); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate returns the user if the password matches. Unknown users
// and wrong passwords both return ErrUnauthenticated.
func (r *Registry) Authenticate(username, password string) (User, error) {
	r.mu.RLock()
	u, ok := r.findByName(username)
	r.mu.RUnlock()

	if !ok || ComparePassword(u.PasswordHash, password) != nil {
		return User{}, fmt.Errorf("invalid username or password: %w", util.ErrUnauthenticated)
	}
	return u, nil
}

// User returns the account with the given ID
func (r *Registry) User(id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.users[i], nil
	}
	return User{}, util.NewNotFoundError("user", id)
}

// UserByName returns the account with the given username
func (r *Registry) UserByName(username string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.findByName(username); ok {
		return u, nil
	}
	return User{}, util.NewNotFoundError("user", username)
}

// Users returns all accounts sorted by username
func (r *Registry) Users() []User {
	r.mu.RLock()
	users := make([]User, len(r.users))
	copy(users, r.users)
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users
}

// SetRole changes a user's role
func (r *Registry) SetRole(userID string, role Role) error {
	if !role.Valid() {
		return util.NewValidationError(fmt.Sprintf("invalid role: %s (must be 'admin' or 'user')", role))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(userID)
	if i < 0 {
		return util.NewNotFoundError("user", userID)
	}
	r.users[i].Role = role
	return r.save()
}

// SetPassword replaces a user's password
func (r *Registry) SetPassword(userID, password string) error {
	if len(password) < MinPasswordLength {
		return util.NewValidationError(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	hash, err := HashPassword(password, r.cost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(userID)
	if i < 0 {
		return util.NewNotFoundError("user", userID)
	}
	r.users[i].PasswordHash = hash
	return r.save()
}

// DeleteUser removes a user and its grants
func (r *Registry) DeleteUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(userID)
	if i < 0 {
		return util.NewNotFoundError("user", userID)
	}
	r.users = append(r.users[:i], r.users[i+1:]...)
	r.grants = filterGrants(r.grants, func(g Grant) bool { return g.UserID != userID })
	return r.save()
}

// EnsureDefaultAdmin creates the default admin account when the registry
// has no users. It reports whether the account was created.
func (r *Registry) EnsureDefaultAdmin() (bool, error) {
	r.mu.RLock()
	empty := len(r.users) == 0
	r.mu.RUnlock()
	if !empty {
		return false, nil
	}

	if _, err := r.CreateUser(DefaultAdminUsername, DefaultAdminPassword, "Administrator", RoleAdmin); err != nil {
		return false, err
	}
	util.Warnf("Default admin user created (username: %s, password: %s)", DefaultAdminUsername, DefaultAdminPassword)
	return true, nil
}

// GrantDeviceAccess creates or replaces the grant for g.UserID and
// g.DeviceID
func (r *Registry) GrantDeviceAccess(g Grant) (Grant, error) {
	if g.UserID == "" || g.DeviceID == "" {
		return Grant{}, util.NewValidationError("userId and deviceId are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(g.UserID) < 0 {
		return Grant{}, util.NewNotFoundError("user", g.UserID)
	}

	for i := range r.grants {
		if r.grants[i].UserID == g.UserID && r.grants[i].DeviceID == g.DeviceID {
			r.grants[i].CanRead = g.CanRead
			r.grants[i].CanWrite = g.CanWrite
			r.grants[i].CanDelete = g.CanDelete
			return r.grants[i], r.save()
		}
	}

	g.ID = uuid.NewString()
	g.CreatedAt = time.Now().UTC()
	r.grants = append(r.grants, g)
	return g, r.save()
}

// RevokeDeviceAccess removes the grant for a user and device
func (r *Registry) RevokeDeviceAccess(userID, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.grants)
	r.grants = filterGrants(r.grants, func(g Grant) bool {
		return g.UserID != userID || g.DeviceID != deviceID
	})
	if len(r.grants) == n {
		return util.NewNotFoundError("permission", userID+"/"+deviceID)
	}
	return r.save()
}

// RevokeDevice removes every grant on a device
func (r *Registry) RevokeDevice(deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.grants)
	r.grants = filterGrants(r.grants, func(g Grant) bool { return g.DeviceID != deviceID })
	if len(r.grants) == n {
		return nil
	}
	return r.save()
}

// Grant returns the grant for a user and device
func (r *Registry) Grant(userID, deviceID string) (Grant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.grants {
		if g.UserID == userID && g.DeviceID == deviceID {
			return g, true
		}
	}
	return Grant{}, false
}

// GrantsForUser returns a user's grants in creation order
func (r *Registry) GrantsForUser(userID string) []Grant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return filterGrants(r.grants, func(g Grant) bool { return g.UserID == userID })
}

// GrantsForDevice returns the grants on a device in creation order
func (r *Registry) GrantsForDevice(deviceID string) []Grant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return filterGrants(r.grants, func(g Grant) bool { return g.DeviceID == deviceID })
}

func (r *Registry) indexOf(id string) int {
	for i := range r.users {
		if r.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) findByName(username string) (User, bool) {
	for _, u := range r.users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

// filterGrants returns a new slice with the grants that satisfy keep
func filterGrants(grants []Grant, keep func(Grant) bool) []Grant {
	out := make([]Grant, 0, len(grants))
	for _, g := range grants {
		if keep(g) {
			out = append(out, g)
		}
	}
	return out
}
