package model

import "github.com/netconfig/netconfig/pkg/util"

// Interface represents a physical switch port
type Interface struct {
	ID          string     `json:"id"`
	DeviceID    string     `json:"deviceId"`
	Name        string     `json:"name"` // e.g., "GigabitEthernet0/1", "ge-0/0/1"
	Description string     `json:"description"`
	Status      PortStatus `json:"status"`
	Speed       PortSpeed  `json:"speed"`
	Duplex      Duplex     `json:"duplex"`
	Mode        PortMode   `json:"mode"`

	// L2 configuration. AccessVlan is only used in access mode,
	// TrunkAllowedVlans and NativeVlan only in trunk mode.
	AccessVlan        *int  `json:"accessVlan"`
	TrunkAllowedVlans []int `json:"trunkAllowedVlans"`
	NativeVlan        *int  `json:"nativeVlan"`

	// Membership
	LacpGroupID *string `json:"lacpGroupId"`
}

// IsAccess returns true if the port is an access port
func (i *Interface) IsAccess() bool { return i.Mode == ModeAccess }

// IsTrunk returns true if the port is a trunk port
func (i *Interface) IsTrunk() bool { return i.Mode == ModeTrunk }

// IsDisabled returns true if the port is administratively shut down
func (i *Interface) IsDisabled() bool { return i.Status == PortDisabled }

// IsLacpMember returns true if the port belongs to an LACP group
func (i *Interface) IsLacpMember() bool {
	return i.LacpGroupID != nil && *i.LacpGroupID != ""
}

// InGroup returns true if the port is a member of the group with the given ID
func (i *Interface) InGroup(groupID string) bool {
	return i.LacpGroupID != nil && *i.LacpGroupID == groupID
}

// Validate checks enum and VLAN ranges
func (i *Interface) Validate() error {
	v := util.NewValidationBuilder("interface " + i.Name + ": ")
	v.Add(i.Name != "", "name is required")
	if !i.Status.Valid() {
		v.AddErrorf("invalid status: %q", i.Status)
	}
	if !i.Speed.Valid() {
		v.AddErrorf("invalid speed: %q", i.Speed)
	}
	if !i.Duplex.Valid() {
		v.AddErrorf("invalid duplex: %q", i.Duplex)
	}
	if !i.Mode.Valid() {
		v.AddErrorf("invalid mode: %q", i.Mode)
	}
	validateVlanRefs(v, i.AccessVlan, i.TrunkAllowedVlans, i.NativeVlan)
	return v.Build()
}

// Clone returns a deep copy of i
func (i Interface) Clone() Interface {
	i.AccessVlan = cloneInt(i.AccessVlan)
	i.NativeVlan = cloneInt(i.NativeVlan)
	if i.TrunkAllowedVlans != nil {
		i.TrunkAllowedVlans = append([]int(nil), i.TrunkAllowedVlans...)
	}
	if i.LacpGroupID != nil {
		id := *i.LacpGroupID
		i.LacpGroupID = &id
	}
	return i
}

func validateVlanRefs(v *util.ValidationBuilder, access *int, trunk []int, native *int) {
	if access != nil {
		if err := util.ValidateVLANID(*access); err != nil {
			v.AddErrorf("access vlan: %v", err)
		}
	}
	for _, id := range trunk {
		if err := util.ValidateVLANID(id); err != nil {
			v.AddErrorf("trunk allowed vlan: %v", err)
		}
	}
	if native != nil {
		if err := util.ValidateVLANID(*native); err != nil {
			v.AddErrorf("native vlan: %v", err)
		}
	}
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	n := *p
	return &n
}

// IntPtr returns a pointer to n
func IntPtr(n int) *int { return &n }

// StringPtr returns a pointer to s
func StringPtr(s string) *string { return &s }
