package netconfig

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netconfig/netconfig/pkg/audit"
	"github.com/netconfig/netconfig/pkg/auth"
	"github.com/netconfig/netconfig/pkg/health"
	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/store"
	"github.com/netconfig/netconfig/pkg/util"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, *audit.MemoryLogger) {
	t.Helper()
	log := audit.NewMemoryLogger()
	opts = append([]Option{WithAudit(log), WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(store.NewMemoryStore(), opts...), log
}

func createDevice(t *testing.T, s *Service, ctx context.Context, hostname string, vendor model.Vendor) model.Device {
	t.Helper()
	d, err := s.CreateDevice(ctx, model.Device{
		Hostname:  hostname,
		IPAddress: "10.0.0.1",
		Vendor:    vendor,
		Model:     "lab",
	})
	require.NoError(t, err)
	return d
}

func TestCreateDevice(t *testing.T) {
	ctx := context.Background()
	s, log := newTestService(t)

	tests := []struct {
		vendor    model.Vendor
		firstPort string
		lastPort  string
	}{
		{model.VendorCisco, "GigabitEthernet0/1", "GigabitEthernet0/24"},
		{model.VendorJuniper, "ge-0/0/1", "ge-0/0/24"},
	}
	for _, tt := range tests {
		t.Run(string(tt.vendor), func(t *testing.T) {
			d := createDevice(t, s, ctx, "sw-"+string(tt.vendor), tt.vendor)
			assert.NotEmpty(t, d.ID)
			assert.Equal(t, model.DeviceOffline, d.Status)
			assert.Nil(t, d.LastSyncedAt)

			ifaces, err := s.ListInterfaces(ctx, d.ID)
			require.NoError(t, err)
			require.Len(t, ifaces, DefaultPortCount)
			assert.Equal(t, tt.firstPort, ifaces[0].Name)
			assert.Equal(t, tt.lastPort, ifaces[23].Name)
			for _, i := range ifaces {
				assert.Equal(t, model.PortDown, i.Status)
				assert.Equal(t, model.ModeAccess, i.Mode)
				assert.Equal(t, model.SpeedAuto, i.Speed)
				assert.Equal(t, model.DuplexAuto, i.Duplex)
				require.NotNil(t, i.AccessVlan)
				assert.Equal(t, 1, *i.AccessVlan)
			}

			vlans, err := s.ListVlans(ctx, d.ID)
			require.NoError(t, err)
			require.Len(t, vlans, 1)
			assert.Equal(t, model.Vlan{ID: vlans[0].ID, DeviceID: d.ID, VlanID: 1, Name: "default", Description: "Default VLAN"}, vlans[0])
		})
	}

	// status supplied by the caller is ignored
	d, err := s.CreateDevice(ctx, model.Device{Hostname: "x", IPAddress: "10.0.0.2", Vendor: model.VendorCisco, Model: "m", Status: model.DeviceOnline})
	require.NoError(t, err)
	assert.Equal(t, model.DeviceOffline, d.Status)

	_, err = s.CreateDevice(ctx, model.Device{Hostname: "", IPAddress: "nope", Vendor: "arista"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrValidationFailed))

	events, _ := log.Query(audit.Filter{Operation: audit.OpDeviceCreate})
	require.Len(t, events, 4)
	assert.True(t, events[0].Success)
	assert.False(t, events[3].Success)
}

func TestResolveDevice(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	d := createDevice(t, s, ctx, "sw1", model.VendorCisco)

	byID, err := s.ResolveDevice(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, byID.ID)

	byName, err := s.ResolveDevice(ctx, "sw1")
	require.NoError(t, err)
	assert.Equal(t, d.ID, byName.ID)

	_, err = s.ResolveDevice(ctx, "sw9")
	assert.True(t, errors.Is(err, util.ErrNotFound))
	assert.EqualError(t, err, "device 'sw9' not found")
}

func TestUpdateAndDeleteDevice(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	d := createDevice(t, s, ctx, "sw1", model.VendorCisco)

	name := "sw1-renamed"
	updated, err := s.UpdateDevice(ctx, d.ID, model.DeviceUpdate{Hostname: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Hostname)

	bad := "not-an-ip"
	_, err = s.UpdateDevice(ctx, d.ID, model.DeviceUpdate{IPAddress: &bad})
	assert.True(t, errors.Is(err, util.ErrValidationFailed))

	require.NoError(t, s.DeleteDevice(ctx, d.ID))
	_, err = s.GetDevice(ctx, d.ID)
	assert.True(t, errors.Is(err, util.ErrNotFound))
	assert.True(t, errors.Is(s.DeleteDevice(ctx, d.ID), util.ErrNotFound))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.Stats{}, stats)
}

func TestGenerateConfig(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	cisco := createDevice(t, s, ctx, "sw1", model.VendorCisco)
	text, err := s.GenerateConfig(ctx, cisco.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "!\nhostname sw1\n!\n!\nvlan 1\n name default\n"), text)
	assert.Contains(t, text, "interface GigabitEthernet0/24\n no shutdown\n switchport mode access\n switchport access vlan 1")
	assert.True(t, strings.HasSuffix(text, "!\nend"))

	juniper := createDevice(t, s, ctx, "sw2", model.VendorJuniper)
	text, err = s.GenerateConfig(ctx, juniper.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "system {\n    host-name sw2;\n}"), text)
	assert.Contains(t, text, "default {\n        vlan-id 1;")

	// same input, same output
	again, err := s.GenerateConfig(ctx, juniper.ID)
	require.NoError(t, err)
	assert.Equal(t, text, again)

	_, err = s.GenerateConfig(ctx, "missing")
	assert.True(t, errors.Is(err, util.ErrNotFound))

	odd, err := s.Store().CreateDevice(ctx, model.Device{Hostname: "odd", IPAddress: "10.0.0.3", Vendor: "arista", Model: "m"})
	require.NoError(t, err)
	_, err = s.GenerateConfig(ctx, odd.ID)
	assert.True(t, errors.Is(err, util.ErrUnsupportedVendor))
}

func TestImportConfig(t *testing.T) {
	ctx := context.Background()
	s, log := newTestService(t)
	d := createDevice(t, s, ctx, "sw1", model.VendorCisco)

	text := "vlan 10\n name Prod\n!\nvlan 20\n!\ninterface Gi0/1\n"
	result, err := s.ImportConfig(ctx, d.ID, text)
	require.NoError(t, err)
	require.Len(t, result.Vlans, 2)
	assert.Equal(t, "Prod", result.Vlans[0].Name)
	assert.Equal(t, "VLAN20", result.Vlans[1].Name)
	assert.Equal(t, model.DeviceOnline, result.Device.Status)
	require.NotNil(t, result.Device.LastSyncedAt)
	assert.True(t, fixedNow.Equal(*result.Device.LastSyncedAt))

	// importing again duplicates
	_, err = s.ImportConfig(ctx, d.ID, text)
	require.NoError(t, err)
	vlans, err := s.ListVlans(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, vlans, 5)

	// unmatched text imports nothing but still syncs
	result, err = s.ImportConfig(ctx, d.ID, "hostname sw1\n")
	require.NoError(t, err)
	assert.Empty(t, result.Vlans)

	_, err = s.ImportConfig(ctx, d.ID, "")
	assert.True(t, errors.Is(err, util.ErrValidationFailed))

	events, _ := log.Query(audit.Filter{Operation: audit.OpConfigImport})
	require.Len(t, events, 4)
	assert.Equal(t, "2 vlans", events[0].Detail)
	assert.Equal(t, "cisco", events[0].Vendor)
	assert.False(t, events[3].Success)
}

func TestImportConfigJuniper(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	d := createDevice(t, s, ctx, "sw2", model.VendorJuniper)

	result, err := s.ImportConfig(ctx, d.ID, "vlans {\n    Production {\n        vlan-id 10;\n    }\n}")
	require.NoError(t, err)
	require.Len(t, result.Vlans, 1)
	assert.Equal(t, 10, result.Vlans[0].VlanID)
	assert.Equal(t, "Production", result.Vlans[0].Name)
}

// failingStore fails CreateVlan after allow successful calls
type failingStore struct {
	*store.MemoryStore
	allow int
}

func (f *failingStore) CreateVlan(ctx context.Context, v model.Vlan) (model.Vlan, error) {
	if f.allow == 0 {
		return model.Vlan{}, errors.New("disk full")
	}
	f.allow--
	return f.MemoryStore.CreateVlan(ctx, v)
}

func TestImportConfigPartialFailure(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	d, err := mem.CreateDevice(ctx, model.Device{Hostname: "sw1", IPAddress: "10.0.0.1", Vendor: model.VendorCisco, Model: "m", Status: model.DeviceOffline})
	require.NoError(t, err)

	s := New(&failingStore{MemoryStore: mem, allow: 1})
	_, err = s.ImportConfig(ctx, d.ID, "vlan 10\n!\nvlan 20\n!\nvlan 30\n")
	require.Error(t, err)

	var ie *ImportError
	require.True(t, errors.As(err, &ie))
	require.Len(t, ie.Committed, 1)
	assert.Equal(t, 10, ie.Committed[0].VlanID)
	assert.Contains(t, err.Error(), "vlan 20 (line 3): disk full")

	// committed records stay, device stays offline
	vlans, err := mem.ListVlans(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, vlans, 1)
	got, err := mem.GetDevice(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DeviceOffline, got.Status)
}

func TestDiffConfig(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	d := createDevice(t, s, ctx, "sw1", model.VendorCisco)

	generated, err := s.GenerateConfig(ctx, d.ID)
	require.NoError(t, err)

	diff, err := s.DiffConfig(ctx, d.ID, generated)
	require.NoError(t, err)
	assert.Empty(t, diff)

	crlf := strings.ReplaceAll(generated, "\n", "\r\n") + "\r\n"
	diff, err = s.DiffConfig(ctx, d.ID, crlf)
	require.NoError(t, err)
	assert.Empty(t, diff)

	running := strings.Replace(generated, "hostname sw1", "hostname old", 1)
	diff, err = s.DiffConfig(ctx, d.ID, running)
	require.NoError(t, err)
	assert.Contains(t, diff, "--- running")
	assert.Contains(t, diff, "+++ generated")
	assert.Contains(t, diff, "-hostname old")
	assert.Contains(t, diff, "+hostname sw1")
}

func TestUpdateInterface(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	sw1 := createDevice(t, s, ctx, "sw1", model.VendorCisco)
	sw2 := createDevice(t, s, ctx, "sw2", model.VendorCisco)

	ifaces, err := s.ListInterfaces(ctx, sw1.ID)
	require.NoError(t, err)
	port := ifaces[0]

	group, err := s.CreateLacpGroup(ctx, model.LacpGroup{
		DeviceID: sw1.ID, GroupNumber: 1, Name: "Uplink",
		Mode: model.LacpActive, LoadBalancing: model.BalanceSrcDstIP, MinLinks: 1, MaxLinks: 4,
	})
	require.NoError(t, err)
	foreign, err := s.CreateLacpGroup(ctx, model.LacpGroup{
		DeviceID: sw2.ID, GroupNumber: 1,
		Mode: model.LacpPassive, LoadBalancing: model.BalanceSrcMac, MinLinks: 1, MaxLinks: 2,
	})
	require.NoError(t, err)

	trunk := model.ModeTrunk
	allowed := []int{10, 20}
	updated, err := s.UpdateInterface(ctx, port.ID, model.InterfaceUpdate{
		Mode:              &trunk,
		TrunkAllowedVlans: &allowed,
		LacpGroupID:       &group.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ModeTrunk, updated.Mode)
	assert.Equal(t, []int{10, 20}, updated.TrunkAllowedVlans)
	assert.True(t, updated.InGroup(group.ID))

	tests := []struct {
		name string
		upd  model.InterfaceUpdate
	}{
		{"group on another device", model.InterfaceUpdate{LacpGroupID: &foreign.ID}},
		{"unknown group", model.InterfaceUpdate{LacpGroupID: model.StringPtr("nope")}},
		{"vlan out of range", model.InterfaceUpdate{NativeVlan: model.IntPtr(5000)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpdateInterface(ctx, port.ID, tt.upd)
			assert.True(t, errors.Is(err, util.ErrValidationFailed), "err = %v", err)
		})
	}

	cleared, err := s.UpdateInterface(ctx, port.ID, model.InterfaceUpdate{ClearLacpGroup: true})
	require.NoError(t, err)
	assert.False(t, cleared.IsLacpMember())

	_, err = s.UpdateInterface(ctx, "missing", model.InterfaceUpdate{})
	assert.True(t, errors.Is(err, util.ErrNotFound))
}

func TestBulkUpdateInterfaces(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	sw1 := createDevice(t, s, ctx, "sw1", model.VendorCisco)
	sw2 := createDevice(t, s, ctx, "sw2", model.VendorCisco)
	ports1, _ := s.ListInterfaces(ctx, sw1.ID)
	ports2, _ := s.ListInterfaces(ctx, sw2.ID)

	disabled := model.PortDisabled
	upd := model.InterfaceUpdate{Status: &disabled}

	updated, err := s.BulkUpdateInterfaces(ctx, []string{ports1[0].ID, ports1[1].ID}, upd)
	require.NoError(t, err)
	require.Len(t, updated, 2)
	for _, i := range updated {
		assert.Equal(t, model.PortDisabled, i.Status)
	}

	_, err = s.BulkUpdateInterfaces(ctx, nil, upd)
	assert.True(t, errors.Is(err, util.ErrValidationFailed))

	_, err = s.BulkUpdateInterfaces(ctx, []string{ports1[2].ID, ports2[0].ID}, upd)
	assert.True(t, errors.Is(err, util.ErrValidationFailed))

	_, err = s.BulkUpdateInterfaces(ctx, []string{ports1[2].ID, "missing"}, upd)
	assert.True(t, errors.Is(err, util.ErrNotFound))

	// nothing changed by the failed calls
	p, err := s.GetInterface(ctx, ports1[2].ID)
	require.NoError(t, err)
	assert.Equal(t, model.PortDown, p.Status)
}

func TestVlanAndLacpLifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	d := createDevice(t, s, ctx, "sw1", model.VendorCisco)

	v, err := s.CreateVlan(ctx, model.Vlan{DeviceID: d.ID, VlanID: 10, Name: "Prod"})
	require.NoError(t, err)
	_, err = s.CreateVlan(ctx, model.Vlan{DeviceID: d.ID, VlanID: 10, Name: "Prod"})
	require.NoError(t, err, "duplicate VLAN IDs are allowed")

	_, err = s.CreateVlan(ctx, model.Vlan{DeviceID: d.ID, VlanID: 0, Name: "bad"})
	assert.True(t, errors.Is(err, util.ErrValidationFailed))
	_, err = s.CreateVlan(ctx, model.Vlan{DeviceID: "missing", VlanID: 10, Name: "x"})
	assert.True(t, errors.Is(err, util.ErrNotFound))

	desc := "production"
	renamed, err := s.UpdateVlan(ctx, v.ID, model.VlanUpdate{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "production", renamed.Description)

	require.NoError(t, s.DeleteVlan(ctx, v.ID))
	assert.True(t, errors.Is(s.DeleteVlan(ctx, v.ID), util.ErrNotFound))

	g, err := s.CreateLacpGroup(ctx, model.LacpGroup{
		DeviceID: d.ID, GroupNumber: 2, Mode: model.LacpActive,
		LoadBalancing: model.BalanceSrcDstMac, MinLinks: 1, MaxLinks: 8,
	})
	require.NoError(t, err)
	_, err = s.CreateLacpGroup(ctx, model.LacpGroup{DeviceID: d.ID, GroupNumber: 0, Mode: "on"})
	assert.True(t, errors.Is(err, util.ErrValidationFailed))

	maxLinks := 4
	g2, err := s.UpdateLacpGroup(ctx, g.ID, model.LacpGroupUpdate{MaxLinks: &maxLinks})
	require.NoError(t, err)
	assert.Equal(t, 4, g2.MaxLinks)

	ports, _ := s.ListInterfaces(ctx, d.ID)
	_, err = s.UpdateInterface(ctx, ports[0].ID, model.InterfaceUpdate{LacpGroupID: &g.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteLacpGroup(ctx, g.ID))
	p, err := s.GetInterface(ctx, ports[0].ID)
	require.NoError(t, err)
	assert.False(t, p.IsLacpMember())

	groups, err := s.ListLacpGroups(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestPermissions(t *testing.T) {
	reg := auth.NewRegistry()
	admin, err := reg.CreateUser("root", "secret123", "", auth.RoleAdmin)
	require.NoError(t, err)
	alice, err := reg.CreateUser("alice", "secret123", "", auth.RoleUser)
	require.NoError(t, err)

	s, log := newTestService(t, WithChecker(auth.NewChecker(reg)))
	asAdmin := auth.WithUser(context.Background(), &admin)
	asAlice := auth.WithUser(context.Background(), &alice)
	anonymous := context.Background()

	sw1 := createDevice(t, s, asAdmin, "sw1", model.VendorCisco)
	sw2 := createDevice(t, s, asAdmin, "sw2", model.VendorJuniper)

	_, err = s.CreateDevice(asAlice, model.Device{Hostname: "sw3", IPAddress: "10.0.0.3", Vendor: model.VendorCisco, Model: "m"})
	assert.True(t, errors.Is(err, util.ErrPermissionDenied))

	_, err = s.ListDevices(anonymous)
	assert.True(t, errors.Is(err, util.ErrUnauthenticated))
	_, err = s.Stats(anonymous)
	assert.True(t, errors.Is(err, util.ErrUnauthenticated))

	devices, err := s.ListDevices(asAlice)
	require.NoError(t, err)
	assert.Empty(t, devices)

	_, err = reg.GrantDeviceAccess(auth.Grant{UserID: alice.ID, DeviceID: sw1.ID, CanRead: true})
	require.NoError(t, err)

	devices, err = s.ListDevices(asAlice)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, sw1.ID, devices[0].ID)

	_, err = s.GenerateConfig(asAlice, sw1.ID)
	assert.NoError(t, err)
	_, err = s.GenerateConfig(asAlice, sw2.ID)
	assert.True(t, errors.Is(err, util.ErrPermissionDenied))
	_, err = s.ResolveDevice(asAlice, "sw2")
	assert.True(t, errors.Is(err, util.ErrPermissionDenied))

	ports, err := s.ListInterfaces(asAlice, sw1.ID)
	require.NoError(t, err)
	up := model.PortUp
	_, err = s.UpdateInterface(asAlice, ports[0].ID, model.InterfaceUpdate{Status: &up})
	assert.True(t, errors.Is(err, util.ErrPermissionDenied))
	_, err = s.ImportConfig(asAlice, sw1.ID, "vlan 10\n")
	assert.True(t, errors.Is(err, util.ErrPermissionDenied))

	_, err = reg.GrantDeviceAccess(auth.Grant{UserID: alice.ID, DeviceID: sw1.ID, CanRead: true, CanWrite: true})
	require.NoError(t, err)
	_, err = s.UpdateInterface(asAlice, ports[0].ID, model.InterfaceUpdate{Status: &up})
	assert.NoError(t, err)
	assert.True(t, errors.Is(s.DeleteDevice(asAlice, sw1.ID), util.ErrPermissionDenied))

	require.NoError(t, s.DeleteDevice(asAdmin, sw1.ID))
	assert.Empty(t, reg.GrantsForDevice(sw1.ID))

	events, _ := log.Query(audit.Filter{User: "alice", FailureOnly: true})
	assert.NotEmpty(t, events)
	events, _ = log.Query(audit.Filter{User: "root", Operation: audit.OpDeviceDelete})
	require.Len(t, events, 1)
	assert.Equal(t, "sw1", events[0].Device)
}

func TestClientIPRecorded(t *testing.T) {
	s, log := newTestService(t)
	ctx := WithClientIP(context.Background(), "192.0.2.7")
	createDevice(t, s, ctx, "sw1", model.VendorCisco)

	events, _ := log.Query(audit.Filter{})
	require.Len(t, events, 1)
	assert.Equal(t, "192.0.2.7", events[0].ClientIP)
}

func TestCheckHealth(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	d := createDevice(t, s, ctx, "sw1", model.VendorCisco)

	report, err := s.CheckHealth(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "sw1", report.Device)
	assert.Equal(t, health.StatusCritical, report.Overall, "new devices have every port down")

	ifaces, err := s.ListInterfaces(ctx, d.ID)
	require.NoError(t, err)
	ids := make([]string, len(ifaces))
	for i, iface := range ifaces {
		ids[i] = iface.ID
	}
	up := model.PortUp
	_, err = s.BulkUpdateInterfaces(ctx, ids, model.InterfaceUpdate{Status: &up})
	require.NoError(t, err)
	vlan := 30
	_, err = s.UpdateInterface(ctx, ids[0], model.InterfaceUpdate{AccessVlan: &vlan})
	require.NoError(t, err)

	report, err = s.CheckHealth(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, health.StatusWarning, report.Overall)
	require.Len(t, report.Results, 3)
	assert.Equal(t, health.StatusOK, report.Results[0].Status)
	assert.Equal(t, health.StatusWarning, report.Results[1].Status)
	assert.Equal(t, "1 undefined VLAN references", report.Results[1].Message)

	_, err = s.CheckHealth(ctx, "missing")
	assert.True(t, errors.Is(err, util.ErrNotFound))
}
