package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/netconfig/netconfig/pkg/cli"
	"github.com/netconfig/netconfig/pkg/health"
	"github.com/netconfig/netconfig/pkg/model"
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Manage devices",
	Long: `Manage devices.

New devices start offline with 24 access ports in VLAN 1 and the default
VLAN. Cisco ports are named GigabitEthernet0/N, Juniper ports ge-0/0/N.

Examples:
  netconfig device list
  netconfig device create sw1 --ip 10.0.0.1 --vendor cisco --model "Catalyst 9300"
  netconfig -d sw1 device show
  netconfig -d sw1 device set --status online
  netconfig -d sw1 device delete`,
}

var deviceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := svc.ListDevices(cmd.Context())
		if err != nil {
			return err
		}
		if ok, err := printJSON(devices); ok {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("No devices found")
			return nil
		}

		t := cli.NewTable("HOSTNAME", "IP ADDRESS", "VENDOR", "MODEL", "STATUS", "LAST SYNCED")
		for _, d := range devices {
			t.Row(d.Hostname, d.IPAddress, string(d.Vendor), d.Model, cli.Status(string(d.Status)), cli.FormatTime(d.LastSyncedAt))
		}
		t.Flush()
		return nil
	},
}

var deviceShowCmd = &cobra.Command{
	Use:   "show [device]",
	Short: "Show device details",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if len(args) == 1 {
			deviceRef = args[0]
		}
		d, err := requireDevice(ctx)
		if err != nil {
			return err
		}
		ifaces, err := svc.ListInterfaces(ctx, d.ID)
		if err != nil {
			return err
		}
		vlans, err := svc.ListVlans(ctx, d.ID)
		if err != nil {
			return err
		}
		groups, err := svc.ListLacpGroups(ctx, d.ID)
		if err != nil {
			return err
		}

		if ok, err := printJSON(map[string]interface{}{
			"device":     d,
			"interfaces": ifaces,
			"vlans":      vlans,
			"lacpGroups": groups,
		}); ok {
			return err
		}

		up := 0
		for _, i := range ifaces {
			if i.Status == model.PortUp {
				up++
			}
		}

		fmt.Printf("Device: %s\n", bold(d.Hostname))
		fmt.Printf("  ID:          %s\n", d.ID)
		fmt.Printf("  IP Address:  %s\n", d.IPAddress)
		fmt.Printf("  Vendor:      %s\n", d.Vendor)
		fmt.Printf("  Model:       %s\n", d.Model)
		fmt.Printf("  Status:      %s\n", cli.Status(string(d.Status)))
		fmt.Printf("  Last Synced: %s\n", cli.FormatTime(d.LastSyncedAt))
		fmt.Printf("  Interfaces:  %d (%d up)\n", len(ifaces), up)
		fmt.Printf("  VLANs:       %d\n", len(vlans))
		fmt.Printf("  LACP Groups: %d\n", len(groups))
		return nil
	},
}

var (
	deviceIP     string
	deviceVendor string
	deviceModel  string
	deviceStatus string
)

var deviceCreateCmd = &cobra.Command{
	Use:   "create <hostname>",
	Short: "Create a device with default ports and VLAN",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vendor, err := model.ParseVendor(deviceVendor)
		if err != nil {
			return err
		}
		d, err := svc.CreateDevice(cmd.Context(), model.Device{
			Hostname:  args[0],
			IPAddress: deviceIP,
			Vendor:    vendor,
			Model:     deviceModel,
		})
		if err != nil {
			return err
		}
		markDirty()
		if ok, err := printJSON(d); ok {
			return err
		}
		fmt.Printf("%s device %s (%s)\n", green("Created"), d.Hostname, d.ID)
		return nil
	},
}

var deviceSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update device properties",
	Long: `Update device properties. Only the flags given are changed.

Examples:
  netconfig -d sw1 device set --ip 10.0.0.2
  netconfig -d sw1 device set --status online --synced`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := requireDevice(ctx)
		if err != nil {
			return err
		}

		var u model.DeviceUpdate
		flags := cmd.Flags()
		if flags.Changed("hostname") {
			v, _ := flags.GetString("hostname")
			u.Hostname = &v
		}
		if flags.Changed("ip") {
			u.IPAddress = &deviceIP
		}
		if flags.Changed("model") {
			u.Model = &deviceModel
		}
		if flags.Changed("status") {
			s, err := model.ParseDeviceStatus(deviceStatus)
			if err != nil {
				return err
			}
			u.Status = &s
		}
		if synced, _ := flags.GetBool("synced"); synced {
			now := time.Now().UTC()
			u.LastSyncedAt = &now
		}

		updated, err := svc.UpdateDevice(ctx, d.ID, u)
		if err != nil {
			return err
		}
		markDirty()
		if ok, err := printJSON(updated); ok {
			return err
		}
		fmt.Printf("%s device %s\n", green("Updated"), updated.Hostname)
		return nil
	},
}

var deviceDeleteCmd = &cobra.Command{
	Use:   "delete [device]",
	Short: "Delete a device and everything on it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if len(args) == 1 {
			deviceRef = args[0]
		}
		d, err := requireDevice(ctx)
		if err != nil {
			return err
		}
		if err := svc.DeleteDevice(ctx, d.ID); err != nil {
			return err
		}
		markDirty()
		fmt.Printf("%s device %s\n", green("Deleted"), d.Hostname)
		return nil
	},
}

var deviceHealthCmd = &cobra.Command{
	Use:   "health [device]",
	Short: "Check the stored configuration for problems",
	Long: `Check a device's stored configuration: ports that are down, VLANs
referenced but not defined, duplicate VLAN IDs and LACP groups below
their minimum links. Exits non-zero when the result is critical.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if len(args) == 1 {
			deviceRef = args[0]
		}
		d, err := requireDevice(ctx)
		if err != nil {
			return err
		}
		report, err := svc.CheckHealth(ctx, d.ID)
		if err != nil {
			return err
		}
		if ok, err := printJSON(report); ok {
			return err
		}

		fmt.Printf("Health: %s  %s\n", bold(report.Device), healthStatus(report.Overall))
		t := cli.NewTable("CHECK", "STATUS", "MESSAGE").WithPrefix("  ")
		for _, r := range report.Results {
			t.Row(r.Check, healthStatus(r.Status), r.Message)
		}
		t.Flush()

		if report.Overall == health.StatusCritical {
			return fmt.Errorf("%s is critical", report.Device)
		}
		return nil
	},
}

func healthStatus(s health.Status) string {
	switch s {
	case health.StatusOK:
		return green(string(s))
	case health.StatusWarning:
		return yellow(string(s))
	case health.StatusCritical:
		return red(string(s))
	}
	return string(s)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := svc.Stats(cmd.Context())
		if err != nil {
			return err
		}
		if ok, err := printJSON(s); ok {
			return err
		}
		fmt.Printf("Devices:     %d (%d online)\n", s.TotalDevices, s.OnlineDevices)
		fmt.Printf("VLANs:       %d\n", s.TotalVlans)
		fmt.Printf("LACP Groups: %d\n", s.TotalLacpGroups)
		return nil
	},
}

func init() {
	deviceCreateCmd.Flags().StringVar(&deviceIP, "ip", "", "Management IP address")
	deviceCreateCmd.Flags().StringVar(&deviceVendor, "vendor", "cisco", "Vendor: cisco or juniper")
	deviceCreateCmd.Flags().StringVar(&deviceModel, "model", "", "Hardware model")
	deviceCreateCmd.MarkFlagRequired("ip")
	deviceCreateCmd.MarkFlagRequired("model")

	deviceSetCmd.Flags().String("hostname", "", "New hostname")
	deviceSetCmd.Flags().StringVar(&deviceIP, "ip", "", "Management IP address")
	deviceSetCmd.Flags().StringVar(&deviceModel, "model", "", "Hardware model")
	deviceSetCmd.Flags().StringVar(&deviceStatus, "status", "", "Status: online, offline or syncing")
	deviceSetCmd.Flags().Bool("synced", false, "Set the last synced time to now")

	deviceCmd.AddCommand(deviceListCmd)
	deviceCmd.AddCommand(deviceShowCmd)
	deviceCmd.AddCommand(deviceCreateCmd)
	deviceCmd.AddCommand(deviceSetCmd)
	deviceCmd.AddCommand(deviceDeleteCmd)
	deviceCmd.AddCommand(deviceHealthCmd)
	deviceCmd.AddCommand(statsCmd)
}
