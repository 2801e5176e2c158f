package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/netconfig/netconfig/pkg/inventory"
	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/settings"
	"github.com/netconfig/netconfig/pkg/util"
)

func intPtr(n int) *int { return &n }

func TestVlanSummary(t *testing.T) {
	tests := []struct {
		name  string
		iface model.Interface
		want  string
	}{
		{"access", model.Interface{Mode: model.ModeAccess, AccessVlan: intPtr(10)}, "10"},
		{"access without vlan", model.Interface{Mode: model.ModeAccess}, ""},
		{"trunk", model.Interface{Mode: model.ModeTrunk, TrunkAllowedVlans: []int{10, 20, 21, 22}}, "10,20-22"},
		{"trunk with native", model.Interface{Mode: model.ModeTrunk, TrunkAllowedVlans: []int{10}, NativeVlan: intPtr(99)}, "10 (native 99)"},
		{"trunk native only", model.Interface{Mode: model.ModeTrunk, NativeVlan: intPtr(99)}, "(native 99)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vlanSummary(tt.iface); got != tt.want {
				t.Errorf("vlanSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLast(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"24h", 24 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"0d", 0, true},
		{"-1h", 0, true},
		{"yesterday", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLast(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLast(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseLast(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadServeConfig(t *testing.T) {
	userSettings = &settings.Settings{AccessFile: "/tmp/access.yaml", AuditLog: "/tmp/audit.log"}
	storeBackend, redisAddr, redisDB, mysqlDSN, inventoryPath = "", "", 0, "", "lab.yaml"
	defer func() { inventoryPath = "" }()

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("NETCONFIG_JWT_SECRET", "secret")
		cfg, err := loadServeConfig()
		if err != nil {
			t.Fatalf("loadServeConfig() error = %v", err)
		}
		if cfg.Addr != ":5000" {
			t.Errorf("Addr = %q, want :5000", cfg.Addr)
		}
		if cfg.TokenTTL != 24*time.Hour {
			t.Errorf("TokenTTL = %v, want 24h", cfg.TokenTTL)
		}
		if cfg.Inventory != "lab.yaml" {
			t.Errorf("Inventory = %q, want lab.yaml from the flag", cfg.Inventory)
		}
		if cfg.AccessFile != "/tmp/access.yaml" {
			t.Errorf("AccessFile = %q, want the settings value", cfg.AccessFile)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("NETCONFIG_JWT_SECRET", "secret")
		t.Setenv("NETCONFIG_ADDR", "127.0.0.1:8080")
		t.Setenv("NETCONFIG_STORE", "redis")
		t.Setenv("NETCONFIG_REDIS_DB", "3")
		t.Setenv("NETCONFIG_TOKEN_TTL", "15m")
		cfg, err := loadServeConfig()
		if err != nil {
			t.Fatalf("loadServeConfig() error = %v", err)
		}
		if cfg.Addr != "127.0.0.1:8080" || cfg.Store != "redis" || cfg.RedisDB != 3 || cfg.TokenTTL != 15*time.Minute {
			t.Errorf("loadServeConfig() = %+v", cfg)
		}
	})

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"bad ttl", map[string]string{"NETCONFIG_JWT_SECRET": "s", "NETCONFIG_TOKEN_TTL": "soon"}},
		{"zero ttl", map[string]string{"NETCONFIG_JWT_SECRET": "s", "NETCONFIG_TOKEN_TTL": "0s"}},
		{"bad redis db", map[string]string{"NETCONFIG_JWT_SECRET": "s", "NETCONFIG_REDIS_DB": "one"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NETCONFIG_JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := loadServeConfig()
			if !errors.Is(err, util.ErrInvalidConfig) {
				t.Errorf("loadServeConfig() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSaveAfterError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lab.yaml")
	err := inventory.Save(path, &inventory.Inventory{Devices: []inventory.DeviceSpec{{
		Hostname:  "sw1",
		IPAddress: "10.0.0.1",
		Vendor:    model.VendorCisco,
		Model:     "Catalyst 9300",
	}}})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	userSettings = &settings.Settings{AuditLog: filepath.Join(dir, "audit.log")}
	storeBackend, inventoryPath = "", path
	defer func() { inventoryPath = "" }()

	ctx := context.Background()
	if err := initService(ctx); err != nil {
		t.Fatalf("initService() error = %v", err)
	}
	d, err := svc.ResolveDevice(ctx, "sw1")
	if err != nil {
		t.Fatalf("ResolveDevice() error = %v", err)
	}
	// a VLAN committed before the command failed
	if _, err := st.CreateVlan(ctx, model.Vlan{DeviceID: d.ID, VlanID: 10, Name: "Committed"}); err != nil {
		t.Fatalf("CreateVlan() error = %v", err)
	}
	markDirty()

	failure := errors.New("vlan 20 (line 3): store unavailable")
	if err := saveAfterError(ctx, failure); !errors.Is(err, failure) {
		t.Errorf("saveAfterError() = %v, want the original error", err)
	}
	if st != nil || dirty {
		t.Error("store left open after saveAfterError()")
	}

	saved, err := inventory.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	vlans := saved.Devices[0].Vlans
	if len(vlans) != 1 || vlans[0].VlanID != 10 || vlans[0].Name != "Committed" {
		t.Errorf("saved vlans = %+v, want the committed vlan 10", vlans)
	}
}
