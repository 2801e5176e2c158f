package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netconfig/netconfig/pkg/netconfig"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate, import and compare device configuration",
	Long: `Generate, import and compare vendor configuration for the device
selected with -d. The dialect follows the device vendor.

Import reads VLAN definitions only, adds them to the device (existing
VLANs are not replaced) and marks the device online.

Examples:
  netconfig -d sw1 config generate
  netconfig -d sw1 config generate -o sw1.cfg
  netconfig -d sw1 config import running.cfg
  show running-config | netconfig -d sw1 config import -
  netconfig -d sw1 config diff running.cfg`,
}

var configOutput string

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render the device configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := requireDevice(ctx)
		if err != nil {
			return err
		}
		text, err := svc.GenerateConfig(ctx, d.ID)
		if err != nil {
			return err
		}
		if ok, err := printJSON(map[string]string{"config": text}); ok {
			return err
		}
		if configOutput != "" {
			if err := os.WriteFile(configOutput, []byte(text+"\n"), 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			fmt.Printf("Wrote %s config for %s to %s\n", d.Vendor, d.Hostname, configOutput)
			return nil
		}
		fmt.Println(text)
		return nil
	},
}

var configImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Import VLANs from vendor configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := requireDevice(ctx)
		if err != nil {
			return err
		}
		text, err := readConfigArg(cmd, args[0])
		if err != nil {
			return err
		}

		result, err := svc.ImportConfig(ctx, d.ID, text)
		var importErr *netconfig.ImportError
		if errors.As(err, &importErr) && len(importErr.Committed) > 0 {
			markDirty()
			fmt.Fprintf(os.Stderr, "%s %d VLANs were imported before the failure\n",
				yellow("WARNING:"), len(importErr.Committed))
		}
		if err != nil {
			return saveAfterError(ctx, err)
		}
		markDirty()

		if ok, err := printJSON(result); ok {
			return err
		}
		fmt.Printf("%s %d VLANs into %s\n", green("Imported"), len(result.Vlans), d.Hostname)
		for _, v := range result.Vlans {
			fmt.Printf("  vlan %d %s\n", v.VlanID, v.Name)
		}
		return nil
	},
}

var configDiffCmd = &cobra.Command{
	Use:   "diff <file|->",
	Short: "Compare running configuration with the generated one",
	Long: `Print a unified diff from the given running configuration to the
configuration the store would generate. Exits non-zero when they differ.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := requireDevice(ctx)
		if err != nil {
			return err
		}
		running, err := readConfigArg(cmd, args[0])
		if err != nil {
			return err
		}
		diff, err := svc.DiffConfig(ctx, d.ID, running)
		if err != nil {
			return err
		}
		if ok, err := printJSON(map[string]interface{}{"diff": diff, "inSync": diff == ""}); ok {
			return err
		}
		if diff == "" {
			fmt.Printf("%s %s is in sync\n", green("OK"), d.Hostname)
			return nil
		}
		for _, line := range strings.SplitAfter(diff, "\n") {
			switch {
			case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
				fmt.Print(bold(line))
			case strings.HasPrefix(line, "+"):
				fmt.Print(green(line))
			case strings.HasPrefix(line, "-"):
				fmt.Print(red(line))
			default:
				fmt.Print(line)
			}
		}
		return fmt.Errorf("%s differs from the generated configuration", d.Hostname)
	},
}

// readConfigArg reads a file, or stdin for "-"
func readConfigArg(cmd *cobra.Command, arg string) (string, error) {
	var data []byte
	var err error
	if arg == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(arg)
	}
	if err != nil {
		return "", fmt.Errorf("reading config: %w", err)
	}
	return string(data), nil
}

func init() {
	configGenerateCmd.Flags().StringVarP(&configOutput, "output", "o", "", "Write to file instead of stdout")

	configCmd.AddCommand(configGenerateCmd)
	configCmd.AddCommand(configImportCmd)
	configCmd.AddCommand(configDiffCmd)
}
