// Package settings manages persistent user settings for the netconfig CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Settings holds persistent user preferences
type Settings struct {
	// DefaultDevice is the device to use when -d is not specified
	DefaultDevice string `json:"default_device,omitempty"`

	// Store is the backend name: memory, redis or mysql
	Store string `json:"store,omitempty"`

	RedisAddr string `json:"redis_addr,omitempty"`
	RedisDB   int    `json:"redis_db,omitempty"`
	MySQLDSN  string `json:"mysql_dsn,omitempty"`

	// Inventory is loaded into the memory store when -f is not specified
	Inventory string `json:"inventory,omitempty"`

	// AuditLog overrides the default audit log path
	AuditLog string `json:"audit_log,omitempty"`

	// AccessFile overrides the default users and grants file
	AccessFile string `json:"access_file,omitempty"`
}

// DefaultDir returns the directory holding settings and local state
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".netconfig"
	}
	return filepath.Join(home, ".netconfig")
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	return filepath.Join(DefaultDir(), "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	// The MySQL DSN may carry a password
	return os.WriteFile(path, data, 0600)
}

// GetAuditLog returns the audit log path (with fallback)
func (s *Settings) GetAuditLog() string {
	if s.AuditLog != "" {
		return s.AuditLog
	}
	return filepath.Join(DefaultDir(), "audit.log")
}

// GetAccessFile returns the access file path (with fallback)
func (s *Settings) GetAccessFile() string {
	if s.AccessFile != "" {
		return s.AccessFile
	}
	return filepath.Join(DefaultDir(), "access.yaml")
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}

// field binds a settings key to its struct field
type field struct {
	get func(*Settings) string
	set func(*Settings, string) error
}

func stringField(p func(*Settings) *string) field {
	return field{
		get: func(s *Settings) string { return *p(s) },
		set: func(s *Settings, v string) error { *p(s) = v; return nil },
	}
}

var fields = map[string]field{
	"device":      stringField(func(s *Settings) *string { return &s.DefaultDevice }),
	"store":       storeField(),
	"redis_addr":  stringField(func(s *Settings) *string { return &s.RedisAddr }),
	"redis_db":    redisDBField(),
	"mysql_dsn":   stringField(func(s *Settings) *string { return &s.MySQLDSN }),
	"inventory":   stringField(func(s *Settings) *string { return &s.Inventory }),
	"audit_log":   stringField(func(s *Settings) *string { return &s.AuditLog }),
	"access_file": stringField(func(s *Settings) *string { return &s.AccessFile }),
}

func storeField() field {
	return field{
		get: func(s *Settings) string { return s.Store },
		set: func(s *Settings, v string) error {
			switch v {
			case "", "memory", "redis", "mysql":
				s.Store = v
				return nil
			}
			return fmt.Errorf("invalid store backend: %s (valid: memory, redis, mysql)", v)
		},
	}
}

func redisDBField() field {
	return field{
		get: func(s *Settings) string {
			if s.RedisDB == 0 {
				return ""
			}
			return strconv.Itoa(s.RedisDB)
		},
		set: func(s *Settings, v string) error {
			if v == "" {
				s.RedisDB = 0
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid redis_db: %s", v)
			}
			s.RedisDB = n
			return nil
		},
	}
}

// Keys returns the setting names accepted by Get and Set, sorted
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a setting by name. Unset settings return "".
func (s *Settings) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown setting: %s (valid: %v)", key, Keys())
	}
	return f.get(s), nil
}

// Set changes a setting by name. An empty value unsets it.
func (s *Settings) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown setting: %s (valid: %v)", key, Keys())
	}
	return f.set(s, value)
}
