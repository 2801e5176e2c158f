package cisco

import (
	"strings"

	"github.com/netconfig/netconfig/pkg/dialect"
	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/util"
)

// Generate renders a device as IOS configuration. Sections are emitted in
// input order: hostname, VLANs, port-channels, then physical interfaces.
func Generate(dev model.Device, ifaces []model.Interface, vlans []model.Vlan, groups []model.LacpGroup) string {
	idx := model.NewIndex(vlans, groups)
	out := dialect.NewLines(" ")

	out.Add(0, "!")
	out.Add(0, "hostname %s", dev.Hostname)
	out.Add(0, "!")

	if len(vlans) > 0 {
		out.Add(0, "!")
		for _, v := range vlans {
			out.Add(0, "vlan %d", v.VlanID)
			out.Add(1, "name %s", v.Name)
		}
	}

	for i := range groups {
		writePortChannel(out, &groups[i], ifaces)
	}

	for i := range ifaces {
		writeInterface(out, &ifaces[i], idx)
	}

	out.Add(0, "!")
	out.Add(0, "end")
	return out.String()
}

func writePortChannel(out *dialect.Lines, g *model.LacpGroup, ifaces []model.Interface) {
	out.Add(0, "!")
	out.Add(0, "interface Port-channel%d", g.GroupNumber)
	if g.Name != "" {
		out.Add(1, "description %s", g.Name)
	}

	members := g.Members(ifaces)
	hasTrunk := false
	var allowed []int
	for _, m := range members {
		if m.IsTrunk() {
			hasTrunk = true
		}
		allowed = append(allowed, m.TrunkAllowedVlans...)
	}
	if !hasTrunk {
		return
	}
	out.Add(1, "switchport mode trunk")
	if allowed = util.UniqueInts(allowed); len(allowed) > 0 {
		out.Add(1, "switchport trunk allowed vlan %s", util.JoinInts(allowed, ","))
	}
}

func writeInterface(out *dialect.Lines, iface *model.Interface, idx *model.Index) {
	out.Add(0, "!")
	out.Add(0, "interface %s", iface.Name)
	if iface.Description != "" {
		out.Add(1, "description %s", iface.Description)
	}
	if iface.IsDisabled() {
		out.Add(1, "shutdown")
	} else {
		out.Add(1, "no shutdown")
	}
	if iface.Speed != model.SpeedAuto {
		out.Add(1, "speed %s", SpeedNumeral(iface.Speed))
	}
	if iface.Duplex != model.DuplexAuto {
		out.Add(1, "duplex %s", iface.Duplex)
	}

	if iface.IsAccess() {
		out.Add(1, "switchport mode access")
		if vlan := vlanRef(iface.AccessVlan); vlan != 0 {
			out.Add(1, "switchport access vlan %d", vlan)
		}
	} else {
		out.Add(1, "switchport mode trunk")
		if len(iface.TrunkAllowedVlans) > 0 {
			out.Add(1, "switchport trunk allowed vlan %s", util.JoinInts(iface.TrunkAllowedVlans, ","))
		}
		if vlan := vlanRef(iface.NativeVlan); vlan != 0 {
			out.Add(1, "switchport trunk native vlan %d", vlan)
		}
	}

	if g, ok := idx.GroupOf(iface); ok {
		out.Add(1, "channel-group %d mode %s", g.GroupNumber, g.Mode)
	}
}

// SpeedNumeral converts a speed to the IOS "speed" argument in Mb/s:
// the first "G" becomes "000" and the first "M" is dropped, so 10G is
// 10000 and 100M is 100.
func SpeedNumeral(s model.PortSpeed) string {
	n := strings.Replace(string(s), "G", "000", 1)
	return strings.Replace(n, "M", "", 1)
}

// vlanRef treats a nil or zero VLAN reference as unset
func vlanRef(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
