package inventory

import (
	"context"
	"fmt"

	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/store"
	"github.com/netconfig/netconfig/pkg/util"
)

// ApplyResult counts what Apply created
type ApplyResult struct {
	Devices    []model.Device
	Skipped    []string // hostnames already present in the store
	Interfaces int
	Vlans      int
	LacpGroups int
}

// Apply creates the inventory's records in s. Devices whose hostname is
// already in the store are skipped. Records are written one at a time;
// on error the records created so far stay in place.
func Apply(ctx context.Context, s store.Store, inv *Inventory) (*ApplyResult, error) {
	existing, err := s.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, d := range existing {
		present[d.Hostname] = true
	}

	result := &ApplyResult{}
	for i := range inv.Devices {
		spec := &inv.Devices[i]
		if present[spec.Hostname] {
			util.WithDevice(spec.Hostname).Warnf("device already exists, skipping")
			result.Skipped = append(result.Skipped, spec.Hostname)
			continue
		}
		dev, err := applyDevice(ctx, s, spec, result)
		if err != nil {
			return result, fmt.Errorf("device %s: %w", spec.Hostname, err)
		}
		present[spec.Hostname] = true
		result.Devices = append(result.Devices, dev)
	}
	return result, nil
}

func applyDevice(ctx context.Context, s store.Store, spec *DeviceSpec, result *ApplyResult) (model.Device, error) {
	dev, err := s.CreateDevice(ctx, spec.device())
	if err != nil {
		return model.Device{}, err
	}
	log := util.WithDevice(dev.Hostname)

	// groups first so members can reference their IDs
	groupOf := make(map[string]string)
	for _, gs := range spec.LacpGroups {
		g := gs.group()
		g.DeviceID = dev.ID
		created, err := s.CreateLacpGroup(ctx, g)
		if err != nil {
			return dev, fmt.Errorf("lacp group %d: %w", gs.GroupNumber, err)
		}
		for _, m := range gs.Members {
			groupOf[m] = created.ID
		}
		result.LacpGroups++
	}

	for _, is := range spec.Interfaces {
		iface, err := is.iface()
		if err != nil {
			return dev, fmt.Errorf("interface %s: %w", is.Name, err)
		}
		iface.DeviceID = dev.ID
		if id, ok := groupOf[is.Name]; ok {
			iface.LacpGroupID = model.StringPtr(id)
		}
		if _, err := s.CreateInterface(ctx, iface); err != nil {
			return dev, fmt.Errorf("interface %s: %w", is.Name, err)
		}
		result.Interfaces++
	}

	for _, vs := range spec.Vlans {
		v := vs.vlan()
		v.DeviceID = dev.ID
		if _, err := s.CreateVlan(ctx, v); err != nil {
			return dev, fmt.Errorf("vlan %d: %w", vs.VlanID, err)
		}
		result.Vlans++
	}

	log.Debugf("created %d interfaces, %d vlans, %d lacp groups",
		len(spec.Interfaces), len(spec.Vlans), len(spec.LacpGroups))
	return dev, nil
}

// Export reads devices back out of a store. With no IDs every device is
// exported.
func Export(ctx context.Context, s store.Store, deviceIDs ...string) (*Inventory, error) {
	var devices []model.Device
	if len(deviceIDs) == 0 {
		all, err := s.ListDevices(ctx)
		if err != nil {
			return nil, err
		}
		devices = all
	} else {
		for _, id := range deviceIDs {
			d, err := s.GetDevice(ctx, id)
			if err != nil {
				return nil, err
			}
			devices = append(devices, d)
		}
	}

	inv := &Inventory{Devices: make([]DeviceSpec, 0, len(devices))}
	for _, d := range devices {
		snap, err := store.LoadSnapshot(ctx, s, d.ID)
		if err != nil {
			return nil, err
		}
		inv.Devices = append(inv.Devices, exportSnapshot(snap))
	}
	return inv, nil
}

func exportSnapshot(snap *store.Snapshot) DeviceSpec {
	d := snap.Device
	spec := DeviceSpec{
		Hostname:     d.Hostname,
		IPAddress:    d.IPAddress,
		Vendor:       d.Vendor,
		Model:        d.Model,
		Status:       d.Status,
		LastSyncedAt: d.LastSyncedAt,
	}

	groupIndex := make(map[string]int)
	for _, g := range snap.LacpGroups {
		groupIndex[g.ID] = len(spec.LacpGroups)
		spec.LacpGroups = append(spec.LacpGroups, LacpGroupSpec{
			GroupNumber:   g.GroupNumber,
			Name:          g.Name,
			Mode:          g.Mode,
			LoadBalancing: g.LoadBalancing,
			MinLinks:      g.MinLinks,
			MaxLinks:      g.MaxLinks,
		})
	}

	for _, i := range snap.Interfaces {
		spec.Interfaces = append(spec.Interfaces, InterfaceSpec{
			Name:              i.Name,
			Description:       i.Description,
			Status:            i.Status,
			Speed:             i.Speed,
			Duplex:            i.Duplex,
			Mode:              i.Mode,
			AccessVlan:        i.AccessVlan,
			TrunkAllowedVlans: util.CompactRange(i.TrunkAllowedVlans),
			NativeVlan:        i.NativeVlan,
		})
		if i.IsLacpMember() {
			if n, ok := groupIndex[*i.LacpGroupID]; ok {
				spec.LacpGroups[n].Members = append(spec.LacpGroups[n].Members, i.Name)
			}
		}
	}

	for _, v := range snap.Vlans {
		spec.Vlans = append(spec.Vlans, VlanSpec{VlanID: v.VlanID, Name: v.Name, Description: v.Description})
	}
	return spec
}
