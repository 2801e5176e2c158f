package model

import (
	"fmt"

	"github.com/netconfig/netconfig/pkg/util"
)

// Vlan represents a VLAN defined on a device
type Vlan struct {
	ID          string `json:"id"`
	DeviceID    string `json:"deviceId"`
	VlanID      int    `json:"vlanId"` // 802.1Q ID (1-4094)
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewVlan creates a VLAN record; an empty name defaults to VLAN<id>
func NewVlan(deviceID string, vlanID int, name string) Vlan {
	if name == "" {
		name = DefaultVlanName(vlanID)
	}
	return Vlan{DeviceID: deviceID, VlanID: vlanID, Name: name}
}

// DefaultVlanName returns the name used for a VLAN that has none
func DefaultVlanName(vlanID int) string {
	return fmt.Sprintf("VLAN%d", vlanID)
}

// Validate checks ID range and name
func (v *Vlan) Validate() error {
	b := util.NewValidationBuilder(fmt.Sprintf("vlan %d: ", v.VlanID))
	if err := util.ValidateVLANID(v.VlanID); err != nil {
		b.AddError(err.Error())
	}
	b.Add(v.Name != "", "name is required")
	return b.Build()
}
