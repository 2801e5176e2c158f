package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netconfig/netconfig/pkg/inventory"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Load and export YAML inventories",
	Long: `Load and export YAML device inventories.

An inventory lists devices with their ports, VLANs and LACP groups. It
seeds the in-memory store (-f) and can be applied to any store.

Examples:
  netconfig inventory sample -o lab.yaml
  netconfig --store redis inventory apply lab.yaml
  netconfig --store redis inventory export -o backup.yaml
  netconfig --store redis -d sw1 inventory export`,
}

var inventoryOutput string

var inventorySampleCmd = &cobra.Command{
	Use:         "sample",
	Short:       "Print a sample inventory",
	Annotations: map[string]string{"store": "none"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeInventory(inventory.Sample())
	},
}

var inventoryApplyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Create the devices of an inventory file",
	Long: `Create the devices of an inventory file in the store. Devices whose
hostname already exists are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := inventory.Load(args[0])
		if err != nil {
			return err
		}
		result, err := inventory.Apply(cmd.Context(), st, inv)
		if result != nil && len(result.Devices) > 0 {
			markDirty()
		}
		if err != nil {
			return err
		}

		if ok, err := printJSON(result); ok {
			return err
		}
		for _, d := range result.Devices {
			fmt.Printf("%s device %s\n", green("Created"), d.Hostname)
		}
		for _, h := range result.Skipped {
			fmt.Printf("%s device %s (already exists)\n", yellow("Skipped"), h)
		}
		fmt.Printf("%d devices, %d ports updated, %d VLANs, %d LACP groups\n",
			len(result.Devices), result.Interfaces, result.Vlans, result.LacpGroups)
		return nil
	},
}

var inventoryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the store as an inventory",
	Long:  `Export every device, or only the one selected with -d, as inventory YAML.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var ids []string
		if deviceRef != "" {
			d, err := requireDevice(ctx)
			if err != nil {
				return err
			}
			ids = append(ids, d.ID)
		}
		inv, err := inventory.Export(ctx, st, ids...)
		if err != nil {
			return err
		}
		return writeInventory(inv)
	},
}

// writeInventory prints inv, or saves it to --output
func writeInventory(inv *inventory.Inventory) error {
	if inventoryOutput != "" {
		if err := inventory.Save(inventoryOutput, inv); err != nil {
			return err
		}
		fmt.Printf("Wrote %d devices to %s\n", len(inv.Devices), inventoryOutput)
		return nil
	}
	if ok, err := printJSON(inv); ok {
		return err
	}
	data, err := inventory.Marshal(inv)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func init() {
	inventorySampleCmd.Flags().StringVarP(&inventoryOutput, "output", "o", "", "Write to file instead of stdout")
	inventoryExportCmd.Flags().StringVarP(&inventoryOutput, "output", "o", "", "Write to file instead of stdout")

	inventoryCmd.AddCommand(inventorySampleCmd)
	inventoryCmd.AddCommand(inventoryApplyCmd)
	inventoryCmd.AddCommand(inventoryExportCmd)
}
