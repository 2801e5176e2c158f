package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/netconfig/netconfig/pkg/model"
)

// Sample returns the demonstration inventory: a Cisco core switch with
// ten ports, three VLANs and an uplink bundle, a Juniper distribution
// switch, and an offline Cisco access switch.
func Sample() *Inventory {
	now := time.Now().UTC().Truncate(time.Second)
	halfHourAgo := now.Add(-30 * time.Minute)

	core := DeviceSpec{
		Hostname:     "switch-core-01",
		IPAddress:    "192.168.1.1",
		Vendor:       model.VendorCisco,
		Model:        "Catalyst 9300",
		Status:       model.DeviceOnline,
		LastSyncedAt: &now,
		Vlans: []VlanSpec{
			{VlanID: 10, Name: "Production", Description: "Production network"},
			{VlanID: 20, Name: "Development", Description: "Development network"},
			{VlanID: 30, Name: "Management", Description: "Management network"},
		},
		LacpGroups: []LacpGroupSpec{{
			GroupNumber:   1,
			Name:          "Uplink-Bundle",
			Mode:          model.LacpActive,
			LoadBalancing: model.BalanceSrcDstIP,
			MinLinks:      1,
			MaxLinks:      4,
		}},
	}

	var names []string
	for n := 1; n <= 8; n++ {
		names = append(names, fmt.Sprintf("GigabitEthernet0/%d", n))
	}
	names = append(names, "TenGigabitEthernet0/1", "TenGigabitEthernet0/2")

	for idx, name := range names {
		is := InterfaceSpec{
			Name:   name,
			Status: model.PortUp,
			Speed:  model.Speed1G,
			Duplex: model.DuplexFull,
		}
		if idx < 4 {
			is.Description = "Server port"
		}
		if idx >= 8 {
			is.Status = model.PortDown
		}
		if strings.HasPrefix(name, "Ten") {
			is.Speed = model.Speed10G
			core.LacpGroups[0].Members = append(core.LacpGroups[0].Members, name)
		}
		if idx < 6 {
			is.Mode = model.ModeAccess
			is.AccessVlan = model.IntPtr(10)
		} else {
			is.Mode = model.ModeTrunk
			is.TrunkAllowedVlans = "10,20,30"
			is.NativeVlan = model.IntPtr(1)
		}
		core.Interfaces = append(core.Interfaces, is)
	}

	return &Inventory{Devices: []DeviceSpec{
		core,
		{
			Hostname:     "switch-dist-02",
			IPAddress:    "192.168.1.2",
			Vendor:       model.VendorJuniper,
			Model:        "EX4300",
			Status:       model.DeviceOnline,
			LastSyncedAt: &halfHourAgo,
		},
		{
			Hostname:  "switch-access-05",
			IPAddress: "192.168.1.5",
			Vendor:    model.VendorCisco,
			Model:     "Catalyst 2960X",
			Status:    model.DeviceOffline,
		},
	}}
}
