package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netconfig/netconfig/pkg/cli"
	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/store"
	"github.com/netconfig/netconfig/pkg/util"
)

var vlanCmd = &cobra.Command{
	Use:   "vlan",
	Short: "Manage VLANs",
	Long: `Manage the VLANs of the device selected with -d.

Examples:
  netconfig -d sw1 vlan list
  netconfig -d sw1 vlan create 100 --name Servers --description "Rack 4"
  netconfig -d sw1 vlan delete 100`,
}

var vlanListCmd = &cobra.Command{
	Use:   "list",
	Short: "List VLANs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := requireDevice(ctx)
		if err != nil {
			return err
		}
		vlans, err := svc.ListVlans(ctx, d.ID)
		if err != nil {
			return err
		}
		if ok, err := printJSON(vlans); ok {
			return err
		}
		if len(vlans) == 0 {
			fmt.Println("No VLANs found")
			return nil
		}
		t := cli.NewTable("VLAN", "NAME", "DESCRIPTION")
		for _, v := range vlans {
			t.Row(strconv.Itoa(v.VlanID), v.Name, v.Description)
		}
		t.Flush()
		return nil
	},
}

var (
	vlanName        string
	vlanDescription string
)

var vlanCreateCmd = &cobra.Command{
	Use:   "create <vlan-id>",
	Short: "Create a VLAN",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := requireDevice(ctx)
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid VLAN ID: %s", args[0])
		}
		v := model.NewVlan(d.ID, id, vlanName)
		v.Description = vlanDescription

		created, err := svc.CreateVlan(ctx, v)
		if err != nil {
			return err
		}
		markDirty()
		if ok, err := printJSON(created); ok {
			return err
		}
		fmt.Printf("%s VLAN %d (%s) on %s\n", green("Created"), created.VlanID, created.Name, d.Hostname)
		return nil
	},
}

var vlanDeleteCmd = &cobra.Command{
	Use:   "delete <vlan-id>",
	Short: "Delete a VLAN",
	Long: `Delete a VLAN. Ports that reference it keep their VLAN settings.
If the device has several VLANs with the same ID, all are deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := requireDevice(ctx)
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid VLAN ID: %s", args[0])
		}
		vlans, err := svc.ListVlans(ctx, d.ID)
		if err != nil {
			return err
		}
		deleted := 0
		for _, v := range vlans {
			if v.VlanID != id {
				continue
			}
			if err := svc.DeleteVlan(ctx, v.ID); err != nil {
				return err
			}
			deleted++
		}
		if deleted == 0 {
			return util.NewNotFoundError(store.KindVlan, args[0])
		}
		markDirty()
		fmt.Printf("%s VLAN %d on %s\n", green("Deleted"), id, d.Hostname)
		return nil
	},
}

var lacpCmd = &cobra.Command{
	Use:     "lacp",
	Aliases: []string{"lag"},
	Short:   "Manage LACP groups",
	Long: `Manage the LACP groups of the device selected with -d. Groups render
as Port-channel<N> on Cisco and ae<N> on Juniper. Add members with
"interface set <port> --lacp-group N".

Examples:
  netconfig -d sw1 lacp list
  netconfig -d sw1 lacp create 1 --name Uplink --mode active --load-balancing src-dst-ip
  netconfig -d sw1 lacp delete 1`,
}

var lacpListCmd = &cobra.Command{
	Use:   "list",
	Short: "List LACP groups and their members",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := requireDevice(ctx)
		if err != nil {
			return err
		}
		groups, err := svc.ListLacpGroups(ctx, d.ID)
		if err != nil {
			return err
		}
		if ok, err := printJSON(groups); ok {
			return err
		}
		if len(groups) == 0 {
			fmt.Println("No LACP groups found")
			return nil
		}
		ifaces, err := svc.ListInterfaces(ctx, d.ID)
		if err != nil {
			return err
		}

		t := cli.NewTable("GROUP", "NAME", "MODE", "LOAD BALANCING", "LINKS", "MEMBERS")
		for _, g := range groups {
			var members []string
			for _, m := range g.Members(ifaces) {
				members = append(members, util.ShortenInterfaceName(m.Name))
			}
			t.Row(strconv.Itoa(g.GroupNumber), g.Name, string(g.Mode), string(g.LoadBalancing),
				fmt.Sprintf("%d-%d", g.MinLinks, g.MaxLinks), cli.Dash(strings.Join(members, ",")))
		}
		t.Flush()
		return nil
	},
}

var (
	lacpName          string
	lacpMode          string
	lacpLoadBalancing string
	lacpMinLinks      int
	lacpMaxLinks      int
)

var lacpCreateCmd = &cobra.Command{
	Use:   "create <group-number>",
	Short: "Create an LACP group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := requireDevice(ctx)
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid group number: %s", args[0])
		}
		mode, err := model.ParseLacpMode(lacpMode)
		if err != nil {
			return err
		}
		lb, err := model.ParseLoadBalancing(lacpLoadBalancing)
		if err != nil {
			return err
		}

		g, err := svc.CreateLacpGroup(ctx, model.LacpGroup{
			DeviceID:      d.ID,
			GroupNumber:   n,
			Name:          lacpName,
			Mode:          mode,
			LoadBalancing: lb,
			MinLinks:      lacpMinLinks,
			MaxLinks:      lacpMaxLinks,
		})
		if err != nil {
			return err
		}
		markDirty()
		if ok, err := printJSON(g); ok {
			return err
		}
		fmt.Printf("%s LACP group %d on %s\n", green("Created"), g.GroupNumber, d.Hostname)
		return nil
	},
}

var lacpDeleteCmd = &cobra.Command{
	Use:   "delete <group-number>",
	Short: "Delete an LACP group and release its members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := requireDevice(ctx)
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid group number: %s", args[0])
		}
		g, err := findLacpGroup(ctx, d.ID, n)
		if err != nil {
			return err
		}
		if err := svc.DeleteLacpGroup(ctx, g.ID); err != nil {
			return err
		}
		markDirty()
		fmt.Printf("%s LACP group %d on %s\n", green("Deleted"), n, d.Hostname)
		return nil
	},
}

// findLacpGroup returns the group with the given number on a device
func findLacpGroup(ctx context.Context, deviceID string, number int) (model.LacpGroup, error) {
	groups, err := svc.ListLacpGroups(ctx, deviceID)
	if err != nil {
		return model.LacpGroup{}, err
	}
	for _, g := range groups {
		if g.GroupNumber == number {
			return g, nil
		}
	}
	return model.LacpGroup{}, util.NewNotFoundError(store.KindLacpGroup, strconv.Itoa(number))
}

func init() {
	vlanCreateCmd.Flags().StringVar(&vlanName, "name", "", "VLAN name (default VLAN<id>)")
	vlanCreateCmd.Flags().StringVar(&vlanDescription, "description", "", "VLAN description")

	vlanCmd.AddCommand(vlanListCmd)
	vlanCmd.AddCommand(vlanCreateCmd)
	vlanCmd.AddCommand(vlanDeleteCmd)

	lacpCreateCmd.Flags().StringVar(&lacpName, "name", "", "Group name")
	lacpCreateCmd.Flags().StringVar(&lacpMode, "mode", string(model.LacpActive), "LACP mode: active or passive")
	lacpCreateCmd.Flags().StringVar(&lacpLoadBalancing, "load-balancing", string(model.BalanceSrcDstIP), "Load balancing hash")
	lacpCreateCmd.Flags().IntVar(&lacpMinLinks, "min-links", 1, "Minimum active links")
	lacpCreateCmd.Flags().IntVar(&lacpMaxLinks, "max-links", 8, "Maximum active links")

	lacpCmd.AddCommand(lacpListCmd)
	lacpCmd.AddCommand(lacpCreateCmd)
	lacpCmd.AddCommand(lacpDeleteCmd)
}
