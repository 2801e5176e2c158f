package health

import (
	"context"
	"reflect"
	"testing"

	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/store"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func port(name string, status model.PortStatus) model.Interface {
	return model.Interface{
		ID:     name,
		Name:   name,
		Status: status,
		Speed:  model.Speed1G,
		Duplex: model.DuplexAuto,
		Mode:   model.ModeAccess,
	}
}

func TestStatusConstants(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusOK, "ok"},
		{StatusWarning, "warning"},
		{StatusCritical, "critical"},
		{StatusUnknown, "unknown"},
	}

	for _, tt := range tests {
		if string(tt.status) != tt.expected {
			t.Errorf("Status %v = %q, want %q", tt.status, string(tt.status), tt.expected)
		}
	}
}

func TestWorse(t *testing.T) {
	tests := []struct {
		a, b, want Status
	}{
		{StatusOK, StatusOK, StatusOK},
		{StatusOK, StatusWarning, StatusWarning},
		{StatusCritical, StatusWarning, StatusCritical},
		{StatusUnknown, StatusOK, StatusUnknown},
		{StatusUnknown, StatusWarning, StatusWarning},
	}
	for _, tt := range tests {
		if got := Worse(tt.a, tt.b); got != tt.want {
			t.Errorf("Worse(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

type customCheck struct {
	name   string
	status Status
}

func (c *customCheck) Name() string { return c.name }

func (c *customCheck) Run(ctx context.Context, snap *store.Snapshot) Result {
	return Result{Status: c.status, Message: "custom"}
}

func TestNewChecker(t *testing.T) {
	checker := NewChecker()
	want := []string{"interfaces", "vlans", "lacp"}
	if got := checker.ListChecks(); !reflect.DeepEqual(got, want) {
		t.Errorf("ListChecks() = %v, want %v", got, want)
	}
}

func TestChecker_AddCheck(t *testing.T) {
	checker := NewChecker()
	initialCount := len(checker.ListChecks())

	checker.AddCheck(&customCheck{name: "custom", status: StatusCritical})

	checks := checker.ListChecks()
	if len(checks) != initialCount+1 {
		t.Fatalf("ListChecks() count = %d, want %d", len(checks), initialCount+1)
	}
	if checks[len(checks)-1] != "custom" {
		t.Errorf("last check = %q, want custom", checks[len(checks)-1])
	}

	report := checker.Run(context.Background(), &store.Snapshot{
		Device:     model.Device{Hostname: "sw1"},
		Interfaces: []model.Interface{port("Gi0/1", model.PortUp)},
	})
	if report.Overall != StatusCritical {
		t.Errorf("Overall = %s, want critical", report.Overall)
	}
}

func TestChecker_Run(t *testing.T) {
	snap := &store.Snapshot{
		Device:     model.Device{Hostname: "sw1"},
		Interfaces: []model.Interface{port("Gi0/1", model.PortUp), port("Gi0/2", model.PortUp)},
		Vlans:      []model.Vlan{{ID: "v1", VlanID: 1, Name: "default"}},
	}
	report := NewChecker().Run(context.Background(), snap)

	if report.Device != "sw1" {
		t.Errorf("Device = %q, want sw1", report.Device)
	}
	if report.Overall != StatusOK {
		t.Errorf("Overall = %s, want ok: %+v", report.Overall, report.Results)
	}
	if len(report.Results) != 3 {
		t.Fatalf("Results count = %d, want 3", len(report.Results))
	}
	for _, r := range report.Results {
		if r.Check == "" || r.Timestamp.IsZero() {
			t.Errorf("result not stamped: %+v", r)
		}
	}
}

func TestChecker_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := NewChecker().Run(ctx, &store.Snapshot{})
	if report.Overall != StatusUnknown {
		t.Errorf("Overall = %s, want unknown", report.Overall)
	}
	for _, r := range report.Results {
		if r.Status != StatusUnknown {
			t.Errorf("%s status = %s, want unknown", r.Check, r.Status)
		}
	}
}

func TestInterfaceCheck(t *testing.T) {
	tests := []struct {
		name    string
		ports   []model.Interface
		want    Status
		message string
	}{
		{"none", nil, StatusWarning, "No interfaces"},
		{
			"all up",
			[]model.Interface{port("Gi0/1", model.PortUp), port("Gi0/2", model.PortUp)},
			StatusOK, "All 2 active interfaces up",
		},
		{
			"disabled ignored",
			[]model.Interface{port("Gi0/1", model.PortUp), port("Gi0/2", model.PortDisabled)},
			StatusOK, "All 1 active interfaces up",
		},
		{
			"some down",
			[]model.Interface{port("Gi0/1", model.PortUp), port("Gi0/2", model.PortDown)},
			StatusWarning, "1 of 2 active interfaces down",
		},
		{
			"all down",
			[]model.Interface{port("Gi0/1", model.PortDown), port("Gi0/2", model.PortDisabled)},
			StatusCritical, "All 1 active interfaces down",
		},
	}

	check := &InterfaceCheck{}
	if check.Name() != "interfaces" {
		t.Errorf("Name() = %q, want %q", check.Name(), "interfaces")
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := check.Run(context.Background(), &store.Snapshot{Interfaces: tt.ports})
			if r.Status != tt.want {
				t.Errorf("Status = %s, want %s", r.Status, tt.want)
			}
			if r.Message != tt.message {
				t.Errorf("Message = %q, want %q", r.Message, tt.message)
			}
		})
	}
}

func TestVlanCheck(t *testing.T) {
	access := port("Gi0/1", model.PortUp)
	access.AccessVlan = intPtr(30)

	trunk := port("Gi0/2", model.PortUp)
	trunk.Mode = model.ModeTrunk
	trunk.AccessVlan = intPtr(99) // ignored on trunks
	trunk.TrunkAllowedVlans = []int{10, 20, 40}
	trunk.NativeVlan = intPtr(50)

	snap := &store.Snapshot{
		Interfaces: []model.Interface{access, trunk},
		Vlans: []model.Vlan{
			{ID: "a", VlanID: 10, Name: "A"},
			{ID: "b", VlanID: 20, Name: "B"},
			{ID: "c", VlanID: 20, Name: "B"},
		},
	}

	check := &VlanCheck{}
	r := check.Run(context.Background(), snap)
	if r.Status != StatusWarning {
		t.Errorf("Status = %s, want warning", r.Status)
	}
	details, ok := r.Details.(VlanDetails)
	if !ok {
		t.Fatalf("Details is %T, want VlanDetails", r.Details)
	}
	wantUndefined := []string{
		"Gi0/1: access vlan 30",
		"Gi0/2: trunk vlan 40",
		"Gi0/2: native vlan 50",
	}
	if !reflect.DeepEqual(details.Undefined, wantUndefined) {
		t.Errorf("Undefined = %v, want %v", details.Undefined, wantUndefined)
	}
	if !reflect.DeepEqual(details.Duplicates, []int{20}) {
		t.Errorf("Duplicates = %v, want [20]", details.Duplicates)
	}
	if r.Message != "3 undefined VLAN references, 1 duplicate VLAN IDs" {
		t.Errorf("Message = %q", r.Message)
	}
}

func TestVlanCheck_Clean(t *testing.T) {
	p := port("Gi0/1", model.PortUp)
	p.AccessVlan = intPtr(1)
	r := (&VlanCheck{}).Run(context.Background(), &store.Snapshot{
		Interfaces: []model.Interface{p},
		Vlans:      []model.Vlan{{ID: "v", VlanID: 1, Name: "default"}},
	})
	if r.Status != StatusOK {
		t.Errorf("Status = %s, want ok: %s", r.Status, r.Message)
	}
}

func TestLacpCheck(t *testing.T) {
	group := model.LacpGroup{ID: "g1", GroupNumber: 1, MinLinks: 2, MaxLinks: 2}
	member := func(name string, status model.PortStatus) model.Interface {
		p := port(name, status)
		p.LacpGroupID = strPtr("g1")
		return p
	}

	tests := []struct {
		name   string
		group  model.LacpGroup
		ports  []model.Interface
		want   Status
		issues []string
	}{
		{
			"healthy", group,
			[]model.Interface{member("Te1/1", model.PortUp), member("Te1/2", model.PortUp)},
			StatusOK, nil,
		},
		{
			"no members", group,
			[]model.Interface{port("Gi0/1", model.PortUp)},
			StatusWarning, []string{"no members"},
		},
		{
			"below minimum", group,
			[]model.Interface{member("Te1/1", model.PortUp), member("Te1/2", model.PortDown)},
			StatusCritical, []string{"1 links up, minimum 2"},
		},
		{
			"over maximum", group,
			[]model.Interface{member("Te1/1", model.PortUp), member("Te1/2", model.PortUp), member("Te1/3", model.PortUp)},
			StatusWarning, []string{"3 members exceed max links 2"},
		},
		{
			"inverted limits",
			model.LacpGroup{ID: "g1", GroupNumber: 1, MinLinks: 4, MaxLinks: 2},
			[]model.Interface{member("Te1/1", model.PortUp), member("Te1/2", model.PortUp)},
			StatusCritical, []string{"min links 4 exceeds max links 2", "2 links up, minimum 4"},
		},
	}

	check := &LacpCheck{}
	if check.Name() != "lacp" {
		t.Errorf("Name() = %q, want lacp", check.Name())
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := check.Run(context.Background(), &store.Snapshot{
				Interfaces: tt.ports,
				LacpGroups: []model.LacpGroup{tt.group},
			})
			if r.Status != tt.want {
				t.Errorf("Status = %s, want %s", r.Status, tt.want)
			}
			groups := r.Details.([]LacpGroupHealth)
			if !reflect.DeepEqual(groups[0].Issues, tt.issues) {
				t.Errorf("Issues = %v, want %v", groups[0].Issues, tt.issues)
			}
		})
	}
}

func TestLacpCheck_MixedMembers(t *testing.T) {
	a := port("Te1/1", model.PortUp)
	a.LacpGroupID = strPtr("g1")
	b := port("Te1/2", model.PortUp)
	b.LacpGroupID = strPtr("g1")
	b.Speed = model.Speed10G
	b.Mode = model.ModeTrunk

	r := (&LacpCheck{}).Run(context.Background(), &store.Snapshot{
		Interfaces: []model.Interface{a, b},
		LacpGroups: []model.LacpGroup{{ID: "g1", GroupNumber: 1, MinLinks: 1, MaxLinks: 8}},
	})
	groups := r.Details.([]LacpGroupHealth)
	want := []string{"members have mixed speeds", "members have mixed switchport modes"}
	if !reflect.DeepEqual(groups[0].Issues, want) {
		t.Errorf("Issues = %v, want %v", groups[0].Issues, want)
	}
	if r.Message != "1 of 1 LACP groups degraded" {
		t.Errorf("Message = %q", r.Message)
	}
}

func TestLacpCheck_NoGroups(t *testing.T) {
	r := (&LacpCheck{}).Run(context.Background(), &store.Snapshot{})
	if r.Status != StatusOK || r.Message != "No LACP groups" {
		t.Errorf("Run() = %s %q", r.Status, r.Message)
	}
}
