package juniper

import (
	"strings"

	"github.com/netconfig/netconfig/pkg/dialect"
	"github.com/netconfig/netconfig/pkg/model"
)

const indent = "    "

// Generate renders a device as JunOS configuration: the system block, the
// vlans block when there are VLANs, then one interfaces block holding the
// physical ports followed by an aeN entry per LACP group.
//
// VLAN references that do not resolve to a VLAN of the device are left
// out. Descriptions are quoted verbatim.
func Generate(dev model.Device, ifaces []model.Interface, vlans []model.Vlan, groups []model.LacpGroup) string {
	idx := model.NewIndex(vlans, groups)
	out := dialect.NewLines(indent)

	out.Add(0, "system {")
	out.Add(1, "host-name %s;", dev.Hostname)
	out.Add(0, "}")
	out.Blank()

	if len(vlans) > 0 {
		out.Add(0, "vlans {")
		for _, v := range vlans {
			out.Add(1, "%s {", v.Name)
			out.Add(2, "vlan-id %d;", v.VlanID)
			if v.Description != "" {
				out.Add(2, "description \"%s\";", v.Description)
			}
			out.Add(1, "}")
		}
		out.Add(0, "}")
		out.Blank()
	}

	out.Add(0, "interfaces {")
	for i := range ifaces {
		writeInterface(out, &ifaces[i], idx)
	}
	for i := range groups {
		writeAggregate(out, &groups[i])
	}
	out.Add(0, "}")

	return out.String()
}

func writeInterface(out *dialect.Lines, iface *model.Interface, idx *model.Index) {
	out.Add(1, "%s {", iface.Name)
	if iface.Description != "" {
		out.Add(2, "description \"%s\";", iface.Description)
	}
	if iface.IsDisabled() {
		out.Add(2, "disable;")
	}
	if iface.Speed != model.SpeedAuto {
		out.Add(2, "speed %s;", strings.ToLower(string(iface.Speed)))
	}

	out.Add(2, "unit 0 {")
	out.Add(3, "family ethernet-switching {")
	if iface.IsAccess() {
		out.Add(4, "interface-mode access;")
		if v, ok := resolve(idx, iface.AccessVlan); ok {
			out.Add(4, "vlan {")
			out.Add(5, "members %s;", v.Name)
			out.Add(4, "}")
		}
	} else {
		out.Add(4, "interface-mode trunk;")
		var names []string
		for _, id := range iface.TrunkAllowedVlans {
			if v, ok := idx.Vlan(id); ok {
				names = append(names, v.Name)
			}
		}
		if len(names) > 0 {
			out.Add(4, "vlan {")
			out.Add(5, "members [ %s ];", strings.Join(names, " "))
			out.Add(4, "}")
		}
		if _, ok := resolve(idx, iface.NativeVlan); ok {
			out.Add(4, "native-vlan-id %d;", *iface.NativeVlan)
		}
	}
	out.Add(3, "}")
	out.Add(2, "}")

	if g, ok := idx.GroupOf(iface); ok {
		out.Add(2, "ether-options {")
		out.Add(3, "802.3ad ae%d;", g.GroupNumber)
		out.Add(2, "}")
	}
	out.Add(1, "}")
}

func writeAggregate(out *dialect.Lines, g *model.LacpGroup) {
	out.Add(1, "ae%d {", g.GroupNumber)
	if g.Name != "" {
		out.Add(2, "description \"%s\";", g.Name)
	}
	out.Add(2, "aggregated-ether-options {")
	out.Add(3, "minimum-links %d;", g.MinLinks)
	out.Add(3, "lacp {")
	out.Add(4, "%s;", g.Mode)
	out.Add(3, "}")
	out.Add(2, "}")
	out.Add(1, "}")
}

// resolve looks up a nullable VLAN reference. Nil and zero are unset.
func resolve(idx *model.Index, ref *int) (*model.Vlan, bool) {
	if ref == nil || *ref == 0 {
		return nil, false
	}
	return idx.Vlan(*ref)
}
