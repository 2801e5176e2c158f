package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netconfig/netconfig/pkg/cli"
	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/util"
)

var interfaceCmd = &cobra.Command{
	Use:     "interface",
	Aliases: []string{"intf", "port"},
	Short:   "Manage device ports",
	Long: `Manage the ports of the device selected with -d.

Cisco names may be abbreviated (Gi0/1, Te0/2). Several ports given to
"set" are updated together.

Examples:
  netconfig -d sw1 interface list
  netconfig -d sw1 interface set Gi0/1 --description "uplink" --mode trunk --trunk-vlans 10,20-22
  netconfig -d sw1 interface set Gi0/1 Gi0/2 Gi0/3 --status up --speed 1G
  netconfig -d sw1 interface set Gi0/7 Gi0/8 --lacp-group 1`,
}

var interfaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := requireDevice(ctx)
		if err != nil {
			return err
		}
		ifaces, err := svc.ListInterfaces(ctx, d.ID)
		if err != nil {
			return err
		}
		if ok, err := printJSON(ifaces); ok {
			return err
		}
		groups, err := svc.ListLacpGroups(ctx, d.ID)
		if err != nil {
			return err
		}
		groupNumbers := make(map[string]int, len(groups))
		for _, g := range groups {
			groupNumbers[g.ID] = g.GroupNumber
		}

		t := cli.NewTable("NAME", "STATUS", "SPEED", "DUPLEX", "MODE", "VLANS", "LACP", "DESCRIPTION")
		for _, i := range ifaces {
			lacp := ""
			if i.LacpGroupID != nil {
				lacp = strconv.Itoa(groupNumbers[*i.LacpGroupID])
			}
			t.Row(i.Name, cli.Status(string(i.Status)), string(i.Speed), string(i.Duplex), string(i.Mode),
				cli.Dash(vlanSummary(i)), cli.Dash(lacp), i.Description)
		}
		t.Flush()
		return nil
	},
}

// vlanSummary renders the VLANs a port carries: "10" for access,
// "10,20-22 (native 1)" for trunk
func vlanSummary(i model.Interface) string {
	if i.IsTrunk() {
		s := util.CompactRange(i.TrunkAllowedVlans)
		if i.NativeVlan != nil && *i.NativeVlan != 0 {
			s += fmt.Sprintf(" (native %d)", *i.NativeVlan)
		}
		return strings.TrimSpace(s)
	}
	if i.AccessVlan != nil && *i.AccessVlan != 0 {
		return strconv.Itoa(*i.AccessVlan)
	}
	return ""
}

var interfaceSetCmd = &cobra.Command{
	Use:   "set <interface>...",
	Short: "Update one or more ports",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := requireDevice(ctx)
		if err != nil {
			return err
		}
		u, err := interfaceUpdateFromFlags(ctx, cmd, d.ID)
		if err != nil {
			return err
		}
		if u.IsEmpty() {
			return fmt.Errorf("nothing to change: give at least one property flag")
		}

		ids, err := resolveInterfaces(ctx, d.ID, args)
		if err != nil {
			return err
		}

		var updated []model.Interface
		if len(ids) == 1 {
			i, err := svc.UpdateInterface(ctx, ids[0], u)
			if err != nil {
				return err
			}
			updated = []model.Interface{i}
		} else {
			updated, err = svc.BulkUpdateInterfaces(ctx, ids, u)
			if err != nil {
				return err
			}
		}
		markDirty()

		if ok, err := printJSON(updated); ok {
			return err
		}
		for _, i := range updated {
			fmt.Printf("%s %s (%s)\n", green("Updated"), i.Name, u)
		}
		return nil
	},
}

// resolveInterfaces maps port names or IDs to interface IDs on a device
func resolveInterfaces(ctx context.Context, deviceID string, refs []string) ([]string, error) {
	ifaces, err := svc.ListInterfaces(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		name := util.NormalizeInterfaceName(ref)
		found := ""
		for _, i := range ifaces {
			if i.ID == ref || strings.EqualFold(i.Name, name) {
				found = i.ID
				break
			}
		}
		if found == "" {
			return nil, util.NewNotFoundError("interface", ref)
		}
		ids = append(ids, found)
	}
	return ids, nil
}

func interfaceUpdateFromFlags(ctx context.Context, cmd *cobra.Command, deviceID string) (model.InterfaceUpdate, error) {
	var u model.InterfaceUpdate
	flags := cmd.Flags()

	if flags.Changed("description") {
		v, _ := flags.GetString("description")
		u.Description = &v
	}
	if flags.Changed("status") {
		v, _ := flags.GetString("status")
		s, err := model.ParsePortStatus(v)
		if err != nil {
			return u, err
		}
		u.Status = &s
	}
	if flags.Changed("speed") {
		v, _ := flags.GetString("speed")
		s, err := model.ParsePortSpeed(v)
		if err != nil {
			return u, err
		}
		u.Speed = &s
	}
	if flags.Changed("duplex") {
		v, _ := flags.GetString("duplex")
		dup, err := model.ParseDuplex(v)
		if err != nil {
			return u, err
		}
		u.Duplex = &dup
	}
	if flags.Changed("mode") {
		v, _ := flags.GetString("mode")
		m, err := model.ParsePortMode(v)
		if err != nil {
			return u, err
		}
		u.Mode = &m
	}
	if flags.Changed("access-vlan") {
		n, _ := flags.GetInt("access-vlan")
		u.AccessVlan = &n
	}
	if clear, _ := flags.GetBool("no-access-vlan"); clear {
		u.ClearAccessVlan = true
	}
	if flags.Changed("trunk-vlans") {
		v, _ := flags.GetString("trunk-vlans")
		vlans, err := util.ExpandVLANRange(v)
		if err != nil {
			return u, fmt.Errorf("--trunk-vlans: %w", err)
		}
		if vlans == nil {
			vlans = []int{}
		}
		u.TrunkAllowedVlans = &vlans
	}
	if flags.Changed("native-vlan") {
		n, _ := flags.GetInt("native-vlan")
		u.NativeVlan = &n
	}
	if clear, _ := flags.GetBool("no-native-vlan"); clear {
		u.ClearNativeVlan = true
	}
	if flags.Changed("lacp-group") {
		n, _ := flags.GetInt("lacp-group")
		g, err := findLacpGroup(ctx, deviceID, n)
		if err != nil {
			return u, err
		}
		u.LacpGroupID = &g.ID
	}
	if clear, _ := flags.GetBool("no-lacp-group"); clear {
		u.ClearLacpGroup = true
	}
	return u, nil
}

func init() {
	f := interfaceSetCmd.Flags()
	f.String("description", "", "Port description")
	f.String("status", "", "Status: up, down or disabled")
	f.String("speed", "", "Speed: auto, 10M, 100M, 1G, 10G, 25G, 40G or 100G")
	f.String("duplex", "", "Duplex: auto, full or half")
	f.String("mode", "", "Switchport mode: access or trunk")
	f.Int("access-vlan", 0, "Access VLAN")
	f.Bool("no-access-vlan", false, "Clear the access VLAN")
	f.String("trunk-vlans", "", "Trunk allowed VLANs (e.g. 10,20-22); empty allows none")
	f.Int("native-vlan", 0, "Trunk native VLAN")
	f.Bool("no-native-vlan", false, "Clear the native VLAN")
	f.Int("lacp-group", 0, "LACP group number to join")
	f.Bool("no-lacp-group", false, "Leave the LACP group")

	interfaceCmd.AddCommand(interfaceListCmd)
	interfaceCmd.AddCommand(interfaceSetCmd)
}
