package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/util"
)

// runStoreSuite checks the behavior every backend must share. newStore
// must return an empty store.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("DeviceCRUD", func(t *testing.T) { testDeviceCRUD(t, newStore(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newStore(t)) })
	t.Run("DuplicateID", func(t *testing.T) { testDuplicateID(t, newStore(t)) })
	t.Run("ListOrder", func(t *testing.T) { testListOrder(t, newStore(t)) })
	t.Run("InterfaceUpdate", func(t *testing.T) { testInterfaceUpdate(t, newStore(t)) })
	t.Run("DuplicateVlansAllowed", func(t *testing.T) { testDuplicateVlans(t, newStore(t)) })
	t.Run("DeleteLacpGroupClearsMembers", func(t *testing.T) { testDeleteLacpGroup(t, newStore(t)) })
	t.Run("DeleteDeviceCascades", func(t *testing.T) { testDeleteDeviceCascades(t, newStore(t)) })
	t.Run("Stats", func(t *testing.T) { testStats(t, newStore(t)) })
	t.Run("CopiesAreIsolated", func(t *testing.T) { testCopies(t, newStore(t)) })
}

func seedDevice(t *testing.T, s Store, hostname string, status model.DeviceStatus) model.Device {
	t.Helper()
	d, err := s.CreateDevice(context.Background(), model.Device{
		Hostname:  hostname,
		IPAddress: "192.168.1.1",
		Vendor:    model.VendorCisco,
		Model:     "Catalyst 9300",
		Status:    status,
	})
	require.NoError(t, err)
	return d
}

func seedInterface(t *testing.T, s Store, deviceID, name string) model.Interface {
	t.Helper()
	i, err := s.CreateInterface(context.Background(), model.Interface{
		DeviceID:          deviceID,
		Name:              name,
		Status:            model.PortUp,
		Speed:             model.Speed1G,
		Duplex:            model.DuplexFull,
		Mode:              model.ModeTrunk,
		TrunkAllowedVlans: []int{10, 20},
		NativeVlan:        model.IntPtr(1),
	})
	require.NoError(t, err)
	return i
}

func testDeviceCRUD(t *testing.T, s Store) {
	ctx := context.Background()
	d := seedDevice(t, s, "switch-core-01", model.DeviceOffline)
	require.NotEmpty(t, d.ID, "CreateDevice should assign an id")

	got, err := s.GetDevice(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "switch-core-01", got.Hostname)
	assert.Equal(t, model.VendorCisco, got.Vendor)
	assert.Nil(t, got.LastSyncedAt)

	now := time.Now().UTC().Truncate(time.Second)
	online := model.DeviceOnline
	updated, err := s.UpdateDevice(ctx, d.ID, model.DeviceUpdate{Status: &online, LastSyncedAt: &now})
	require.NoError(t, err)
	assert.Equal(t, model.DeviceOnline, updated.Status)
	assert.Equal(t, model.VendorCisco, updated.Vendor)

	got, err = s.GetDevice(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastSyncedAt)
	assert.True(t, now.Equal(*got.LastSyncedAt), "LastSyncedAt = %v, want %v", got.LastSyncedAt, now)
}

func testNotFound(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.GetDevice(ctx, "missing")
	assert.True(t, errors.Is(err, util.ErrNotFound))
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, KindDevice, nf.Kind)
	assert.Equal(t, "missing", nf.ID)

	_, err = s.GetInterface(ctx, "missing")
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, err = s.UpdateInterface(ctx, "missing", model.InterfaceUpdate{})
	assert.ErrorIs(t, err, util.ErrNotFound)
	assert.ErrorIs(t, s.DeleteDevice(ctx, "missing"), util.ErrNotFound)
	assert.ErrorIs(t, s.DeleteVlan(ctx, "missing"), util.ErrNotFound)
	assert.ErrorIs(t, s.DeleteLacpGroup(ctx, "missing"), util.ErrNotFound)
}

func testDuplicateID(t *testing.T, s Store) {
	ctx := context.Background()
	d := seedDevice(t, s, "sw1", model.DeviceOffline)

	_, err := s.CreateDevice(ctx, model.Device{ID: d.ID, Hostname: "sw2", Vendor: model.VendorCisco})
	assert.ErrorIs(t, err, util.ErrAlreadyExists)

	v, err := s.CreateVlan(ctx, model.Vlan{ID: "fixed-id", DeviceID: d.ID, VlanID: 10, Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", v.ID)
	_, err = s.CreateVlan(ctx, model.Vlan{ID: "fixed-id", DeviceID: d.ID, VlanID: 20, Name: "b"})
	assert.ErrorIs(t, err, util.ErrAlreadyExists)
}

func testListOrder(t *testing.T, s Store) {
	ctx := context.Background()
	names := []string{"zulu", "alpha", "mike"}
	for _, n := range names {
		seedDevice(t, s, n, model.DeviceOffline)
	}

	devices, err := s.ListDevices(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 3)
	for i, n := range names {
		assert.Equal(t, n, devices[i].Hostname)
	}

	dev := devices[0]
	for _, n := range []string{"Gi0/3", "Gi0/1", "Gi0/2"} {
		seedInterface(t, s, dev.ID, n)
	}
	seedInterface(t, s, devices[1].ID, "other")

	ifaces, err := s.ListInterfaces(ctx, dev.ID)
	require.NoError(t, err)
	require.Len(t, ifaces, 3)
	assert.Equal(t, "Gi0/3", ifaces[0].Name)
	assert.Equal(t, "Gi0/1", ifaces[1].Name)
	assert.Equal(t, "Gi0/2", ifaces[2].Name)
}

func testInterfaceUpdate(t *testing.T, s Store) {
	ctx := context.Background()
	d := seedDevice(t, s, "sw1", model.DeviceOffline)
	i := seedInterface(t, s, d.ID, "Gi0/1")

	mode := model.ModeAccess
	trunk := []int{}
	updated, err := s.UpdateInterface(ctx, i.ID, model.InterfaceUpdate{
		Mode:              &mode,
		AccessVlan:        model.IntPtr(30),
		TrunkAllowedVlans: &trunk,
		ClearNativeVlan:   true,
		Description:       model.StringPtr("Server port"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ModeAccess, updated.Mode)

	got, err := s.GetInterface(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ModeAccess, got.Mode)
	require.NotNil(t, got.AccessVlan)
	assert.Equal(t, 30, *got.AccessVlan)
	assert.Empty(t, got.TrunkAllowedVlans)
	assert.Nil(t, got.NativeVlan)
	assert.Equal(t, "Server port", got.Description)
	assert.Equal(t, model.Speed1G, got.Speed, "untouched fields keep their value")
}

func testDuplicateVlans(t *testing.T, s Store) {
	ctx := context.Background()
	d := seedDevice(t, s, "sw1", model.DeviceOffline)

	for i := 0; i < 2; i++ {
		_, err := s.CreateVlan(ctx, model.Vlan{DeviceID: d.ID, VlanID: 10, Name: "Production"})
		require.NoError(t, err)
	}

	vlans, err := s.ListVlans(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, vlans, 2)
	assert.NotEqual(t, vlans[0].ID, vlans[1].ID)
	assert.Equal(t, vlans[0].VlanID, vlans[1].VlanID)
}

func testDeleteLacpGroup(t *testing.T, s Store) {
	ctx := context.Background()
	d := seedDevice(t, s, "sw1", model.DeviceOffline)
	g, err := s.CreateLacpGroup(ctx, model.LacpGroup{
		DeviceID: d.ID, GroupNumber: 1, Name: "Uplink-Bundle",
		Mode: model.LacpActive, LoadBalancing: model.BalanceSrcDstIP, MinLinks: 1, MaxLinks: 4,
	})
	require.NoError(t, err)

	member := seedInterface(t, s, d.ID, "Te0/1")
	other := seedInterface(t, s, d.ID, "Gi0/1")
	_, err = s.UpdateInterface(ctx, member.ID, model.InterfaceUpdate{LacpGroupID: &g.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteLacpGroup(ctx, g.ID))

	_, err = s.GetLacpGroup(ctx, g.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	got, err := s.GetInterface(ctx, member.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LacpGroupID, "member should be detached")

	got, err = s.GetInterface(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gi0/1", got.Name)

	groups, err := s.ListLacpGroups(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func testDeleteDeviceCascades(t *testing.T, s Store) {
	ctx := context.Background()
	doomed := seedDevice(t, s, "doomed", model.DeviceOffline)
	kept := seedDevice(t, s, "kept", model.DeviceOffline)

	for _, d := range []model.Device{doomed, kept} {
		seedInterface(t, s, d.ID, "Gi0/1")
		_, err := s.CreateVlan(ctx, model.Vlan{DeviceID: d.ID, VlanID: 10, Name: "v"})
		require.NoError(t, err)
		_, err = s.CreateLacpGroup(ctx, model.LacpGroup{DeviceID: d.ID, GroupNumber: 1,
			Mode: model.LacpActive, LoadBalancing: model.BalanceSrcMac, MinLinks: 1, MaxLinks: 2})
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteDevice(ctx, doomed.ID))

	_, err := s.GetDevice(ctx, doomed.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	ifaces, err := s.ListInterfaces(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, ifaces)
	vlans, err := s.ListVlans(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, vlans)
	groups, err := s.ListLacpGroups(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, groups)

	allVlans, err := s.ListAllVlans(ctx)
	require.NoError(t, err)
	require.Len(t, allVlans, 1)
	assert.Equal(t, kept.ID, allVlans[0].DeviceID)

	allGroups, err := s.ListAllLacpGroups(ctx)
	require.NoError(t, err)
	require.Len(t, allGroups, 1)

	ifaces, err = s.ListInterfaces(ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, ifaces, 1)
}

func testStats(t *testing.T, s Store) {
	ctx := context.Background()
	a := seedDevice(t, s, "a", model.DeviceOnline)
	seedDevice(t, s, "b", model.DeviceOnline)
	seedDevice(t, s, "c", model.DeviceOffline)

	for _, id := range []int{10, 20, 30} {
		_, err := s.CreateVlan(ctx, model.Vlan{DeviceID: a.ID, VlanID: id, Name: "v"})
		require.NoError(t, err)
	}
	_, err := s.CreateLacpGroup(ctx, model.LacpGroup{DeviceID: a.ID, GroupNumber: 1,
		Mode: model.LacpActive, LoadBalancing: model.BalanceSrcDstIP, MinLinks: 1, MaxLinks: 4})
	require.NoError(t, err)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalDevices: 3, OnlineDevices: 2, TotalVlans: 3, TotalLacpGroups: 1}, st)
}

func testCopies(t *testing.T, s Store) {
	ctx := context.Background()
	d := seedDevice(t, s, "sw1", model.DeviceOffline)
	i := seedInterface(t, s, d.ID, "Gi0/1")

	ifaces, err := s.ListInterfaces(ctx, d.ID)
	require.NoError(t, err)
	ifaces[0].TrunkAllowedVlans[0] = 999
	*ifaces[0].NativeVlan = 999

	got, err := s.GetInterface(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20}, got.TrunkAllowedVlans)
	assert.Equal(t, 1, *got.NativeVlan)
}

func TestLoadSnapshot(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	d := seedDevice(t, s, "sw1", model.DeviceOffline)
	seedInterface(t, s, d.ID, "Gi0/1")
	_, err := s.CreateVlan(ctx, model.Vlan{DeviceID: d.ID, VlanID: 10, Name: "v"})
	require.NoError(t, err)

	snap, err := LoadSnapshot(ctx, s, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "sw1", snap.Device.Hostname)
	assert.Len(t, snap.Interfaces, 1)
	assert.Len(t, snap.Vlans, 1)
	assert.Empty(t, snap.LacpGroups)

	_, err = LoadSnapshot(ctx, s, "missing")
	assert.ErrorIs(t, err, util.ErrNotFound)
}
