package dialect

import (
	"errors"
	"testing"

	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/util"
)

type fakeDialect struct{ vendor model.Vendor }

func (f fakeDialect) Vendor() model.Vendor { return f.vendor }
func (f fakeDialect) Generate(model.Device, []model.Interface, []model.Vlan, []model.LacpGroup) string {
	return "fake"
}
func (f fakeDialect) Parse(string) []ParsedVlan { return nil }

func TestRegistry(t *testing.T) {
	Register(fakeDialect{vendor: "test-vendor"})

	d, err := For("test-vendor")
	if err != nil {
		t.Fatalf("For() unexpected error: %v", err)
	}
	if d.Vendor() != "test-vendor" {
		t.Errorf("Vendor() = %s, want test-vendor", d.Vendor())
	}

	_, err = For("arista")
	if !errors.Is(err, util.ErrUnsupportedVendor) {
		t.Errorf("For(arista) error = %v, want ErrUnsupportedVendor", err)
	}

	found := false
	for _, v := range Registered() {
		if v == "test-vendor" {
			found = true
		}
	}
	if !found {
		t.Error("Registered() should list test-vendor")
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	Register(fakeDialect{vendor: "dup-vendor"})
	defer func() {
		if recover() == nil {
			t.Error("second Register() should panic")
		}
	}()
	Register(fakeDialect{vendor: "dup-vendor"})
}

func TestLines(t *testing.T) {
	l := NewLines("    ")
	l.Add(0, "system {")
	l.Add(1, "host-name %s;", "sw1")
	l.Add(0, "}")
	l.Blank()

	want := "system {\n    host-name sw1;\n}\n"
	if got := l.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if l.Len() != 4 {
		t.Errorf("Len() = %d, want 4", l.Len())
	}
}

func TestParsedVlan_ToVlan(t *testing.T) {
	v := ParsedVlan{VlanID: 10, Name: "Production", Line: 3}.ToVlan("dev-1")
	if v.DeviceID != "dev-1" || v.VlanID != 10 || v.Name != "Production" || v.Description != "" {
		t.Errorf("ToVlan() = %+v", v)
	}
}
