// Package inventory reads and writes YAML device inventories and seeds
// stores from them.
package inventory

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/util"
)

// Inventory is the top-level YAML document
type Inventory struct {
	Devices []DeviceSpec `yaml:"devices"`
}

// DeviceSpec describes one device and everything configured on it
type DeviceSpec struct {
	Hostname     string             `yaml:"hostname"`
	IPAddress    string             `yaml:"ip_address"`
	Vendor       model.Vendor       `yaml:"vendor"`
	Model        string             `yaml:"model"`
	Status       model.DeviceStatus `yaml:"status,omitempty"`
	LastSyncedAt *time.Time         `yaml:"last_synced_at,omitempty"`
	Interfaces   []InterfaceSpec    `yaml:"interfaces,omitempty"`
	Vlans        []VlanSpec         `yaml:"vlans,omitempty"`
	LacpGroups   []LacpGroupSpec    `yaml:"lacp_groups,omitempty"`
}

// InterfaceSpec describes a port. Empty status, speed, duplex and mode
// default to up, auto, auto and access.
type InterfaceSpec struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Status      model.PortStatus `yaml:"status,omitempty"`
	Speed       model.PortSpeed  `yaml:"speed,omitempty"`
	Duplex      model.Duplex     `yaml:"duplex,omitempty"`
	Mode        model.PortMode   `yaml:"mode,omitempty"`
	AccessVlan  *int             `yaml:"access_vlan,omitempty"`
	// Range notation, e.g. "10,20,30-35"
	TrunkAllowedVlans string `yaml:"trunk_allowed_vlans,omitempty"`
	NativeVlan        *int   `yaml:"native_vlan,omitempty"`
}

// VlanSpec describes a VLAN
type VlanSpec struct {
	VlanID      int    `yaml:"vlan_id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// LacpGroupSpec describes an LACP group. Members are interface names of
// the same device.
type LacpGroupSpec struct {
	GroupNumber   int                 `yaml:"group_number"`
	Name          string              `yaml:"name,omitempty"`
	Mode          model.LacpMode      `yaml:"mode"`
	LoadBalancing model.LoadBalancing `yaml:"load_balancing"`
	MinLinks      int                 `yaml:"min_links"`
	MaxLinks      int                 `yaml:"max_links"`
	Members       []string            `yaml:"members,omitempty"`
}

// Load parses an inventory YAML file and validates it.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory file: %w", err)
	}
	return Parse(data)
}

// Parse decodes inventory YAML, fills defaults and validates the result
func Parse(data []byte) (*Inventory, error) {
	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parsing inventory YAML: %w", err)
	}
	inv.applyDefaults()
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Marshal encodes the inventory as YAML
func Marshal(inv *Inventory) ([]byte, error) {
	return yaml.Marshal(inv)
}

// Save writes the inventory to path
func Save(path string, inv *Inventory) error {
	data, err := Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshaling inventory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing inventory file: %w", err)
	}
	return nil
}

func (inv *Inventory) applyDefaults() {
	for d := range inv.Devices {
		dev := &inv.Devices[d]
		if dev.Status == "" {
			dev.Status = model.DeviceOffline
		}
		for i := range dev.Interfaces {
			iface := &dev.Interfaces[i]
			if iface.Status == "" {
				iface.Status = model.PortUp
			}
			if iface.Speed == "" {
				iface.Speed = model.SpeedAuto
			}
			if iface.Duplex == "" {
				iface.Duplex = model.DuplexAuto
			}
			if iface.Mode == "" {
				iface.Mode = model.ModeAccess
			}
		}
	}
}

// Validate checks every record with the model validators and the
// cross-references between them.
func (inv *Inventory) Validate() error {
	v := util.NewValidationBuilder("")
	hostnames := make(map[string]bool)

	for d := range inv.Devices {
		spec := &inv.Devices[d]
		dv := util.NewValidationBuilder(fmt.Sprintf("device %s: ", spec.Hostname))

		if hostnames[spec.Hostname] {
			dv.AddError("duplicate hostname")
		}
		hostnames[spec.Hostname] = true

		dev := spec.device()
		dv.Merge(dev.Validate())

		ifnames := make(map[string]bool)
		for _, is := range spec.Interfaces {
			if ifnames[is.Name] {
				dv.AddErrorf("duplicate interface %s", is.Name)
			}
			ifnames[is.Name] = true

			iface, err := is.iface()
			if err != nil {
				dv.AddErrorf("interface %s: %v", is.Name, err)
				continue
			}
			dv.Merge(iface.Validate())
		}

		for _, vs := range spec.Vlans {
			vlan := vs.vlan()
			dv.Merge(vlan.Validate())
		}

		groupNumbers := make(map[int]bool)
		memberOf := make(map[string]int)
		for _, gs := range spec.LacpGroups {
			if groupNumbers[gs.GroupNumber] {
				dv.AddErrorf("duplicate lacp group %d", gs.GroupNumber)
			}
			groupNumbers[gs.GroupNumber] = true

			g := gs.group()
			dv.Merge(g.Validate())
			for _, m := range gs.Members {
				if !ifnames[m] {
					dv.AddErrorf("lacp group %d: member %s is not an interface of this device", gs.GroupNumber, m)
				}
				if other, ok := memberOf[m]; ok {
					dv.AddErrorf("interface %s is a member of lacp groups %d and %d", m, other, gs.GroupNumber)
				}
				memberOf[m] = gs.GroupNumber
			}
		}

		v.Merge(dv.Build())
	}
	return v.Build()
}

func (s *DeviceSpec) device() model.Device {
	return model.Device{
		Hostname:     s.Hostname,
		IPAddress:    s.IPAddress,
		Vendor:       s.Vendor,
		Model:        s.Model,
		Status:       s.Status,
		LastSyncedAt: s.LastSyncedAt,
	}
}

func (s *InterfaceSpec) iface() (model.Interface, error) {
	trunk, err := util.ExpandVLANRange(s.TrunkAllowedVlans)
	if err != nil {
		return model.Interface{}, fmt.Errorf("trunk_allowed_vlans: %w", err)
	}
	if trunk == nil {
		trunk = []int{}
	}
	return model.Interface{
		Name:              s.Name,
		Description:       s.Description,
		Status:            s.Status,
		Speed:             s.Speed,
		Duplex:            s.Duplex,
		Mode:              s.Mode,
		AccessVlan:        s.AccessVlan,
		TrunkAllowedVlans: trunk,
		NativeVlan:        s.NativeVlan,
	}, nil
}

func (s *VlanSpec) vlan() model.Vlan {
	return model.Vlan{VlanID: s.VlanID, Name: s.Name, Description: s.Description}
}

func (s *LacpGroupSpec) group() model.LacpGroup {
	return model.LacpGroup{
		GroupNumber:   s.GroupNumber,
		Name:          s.Name,
		Mode:          s.Mode,
		LoadBalancing: s.LoadBalancing,
		MinLinks:      s.MinLinks,
		MaxLinks:      s.MaxLinks,
	}
}
