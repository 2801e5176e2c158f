//go:build integration

package store

import (
	"encoding/json"
	"testing"

	"github.com/netconfig/netconfig/internal/testutil"
	"github.com/netconfig/netconfig/pkg/model"
)

func newTestRedisStore(t *testing.T) Store {
	t.Helper()
	testutil.SkipIfNoRedis(t)
	testutil.FlushDB(t, testutil.RedisAddr(), testutil.RedisTestDB)

	s, err := NewRedisStore(testutil.Context(t), testutil.RedisAddr(), testutil.RedisTestDB)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRedisStore(t *testing.T) {
	runStoreSuite(t, newTestRedisStore)
}

func TestRedisStore_KeyLayout(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := testutil.Context(t)

	d, err := s.CreateDevice(ctx, model.Device{Hostname: "switch-core-01", Vendor: model.VendorCisco})
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}

	vals := testutil.ReadEntry(t, testutil.RedisAddr(), testutil.RedisTestDB, "DEVICE", d.ID)
	var stored model.Device
	if err := json.Unmarshal([]byte(vals["data"]), &stored); err != nil {
		t.Fatalf("DEVICE|%s data is not JSON: %v", d.ID, err)
	}
	if stored.Hostname != "switch-core-01" {
		t.Errorf("stored hostname = %q, want switch-core-01", stored.Hostname)
	}
}

func TestRedisStore_DanglingIndexEntry(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := testutil.Context(t)

	d, _ := s.CreateDevice(ctx, model.Device{Hostname: "sw1", Vendor: model.VendorCisco})
	v, _ := s.CreateVlan(ctx, model.Vlan{DeviceID: d.ID, VlanID: 10, Name: "a"})
	s.CreateVlan(ctx, model.Vlan{DeviceID: d.ID, VlanID: 20, Name: "b"})

	testutil.DeleteEntry(t, testutil.RedisAddr(), testutil.RedisTestDB, "VLAN", v.ID)

	vlans, err := s.ListVlans(ctx, d.ID)
	if err != nil {
		t.Fatalf("ListVlans: %v", err)
	}
	if len(vlans) != 1 || vlans[0].VlanID != 20 {
		t.Errorf("ListVlans() = %+v, want only vlan 20", vlans)
	}
}
