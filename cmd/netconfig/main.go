// Netconfig - Multi-vendor Switch Configuration Tool
//
// A CLI for managing a vendor-neutral inventory of switches and rendering
// it as Cisco IOS or Juniper Junos configuration:
//   - Devices, ports, VLANs and LACP groups in one model
//   - Config generation, import and diff per vendor
//   - Audit logging of all changes
//   - An HTTP API with per-device permissions (netconfig serve)
//
// Context flags select the device; commands act on it:
//
//	netconfig -d <device> <noun> <verb> [args]
//
// Examples:
//
//	netconfig -f lab.yaml device list
//	netconfig -f lab.yaml -d switch-core-01 interface list
//	netconfig -f lab.yaml -d switch-core-01 interface set Gi0/1 --mode trunk --trunk-vlans 10,20
//	netconfig -f lab.yaml -d switch-core-01 config generate
//	netconfig --store redis --redis localhost:6379 -d sw1 config import running.cfg
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netconfig/netconfig/pkg/audit"
	"github.com/netconfig/netconfig/pkg/cli"
	"github.com/netconfig/netconfig/pkg/inventory"
	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/netconfig"
	"github.com/netconfig/netconfig/pkg/settings"
	"github.com/netconfig/netconfig/pkg/store"
	"github.com/netconfig/netconfig/pkg/util"
	"github.com/netconfig/netconfig/pkg/version"
)

// Audit log rotation for the CLI and server
const (
	auditMaxSize    = 10 * 1024 * 1024 // 10MB
	auditMaxBackups = 10
)

var (
	// Global context flags
	deviceRef string // -d, --device

	// Store flags
	storeBackend  string
	redisAddr     string
	redisDB       int
	mysqlDSN      string
	inventoryPath string // -f, --inventory

	// Output flags
	verbose    bool
	jsonOutput bool
	noColor    bool

	// Global state
	userSettings *settings.Settings
	st           store.Store
	svc          *netconfig.Service
	auditLogger  audit.Logger
	dirty        bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "netconfig",
	Short:             "Multi-vendor Switch Configuration Tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Netconfig manages switches in a vendor-neutral model and renders
them as Cisco IOS or Juniper Junos configuration.

The in-memory store is seeded from an inventory file (-f) and written back
to it after changes. Redis and MySQL stores persist on their own.

  netconfig -d <device> <noun> <verb> [args]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			cli.SetColor(false)
		}
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}
		applySettingsDefaults()

		if skipsInit(cmd) {
			return nil
		}
		return initService(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdown(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&deviceRef, "device", "d", "", "Device ID or hostname (object selector)")

	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Store backend: memory, redis or mysql")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", "", "Redis address (host:port)")
	rootCmd.PersistentFlags().IntVar(&redisDB, "redis-db", 0, "Redis database number")
	rootCmd.PersistentFlags().StringVar(&mysqlDSN, "mysql-dsn", "", "MySQL DSN (user:pass@tcp(host:3306)/db)")
	rootCmd.PersistentFlags().StringVarP(&inventoryPath, "inventory", "f", "", "Inventory file backing the memory store")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "JSON output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "model", Title: "Device Model:"},
		&cobra.Group{ID: "config", Title: "Configuration:"},
		&cobra.Group{ID: "meta", Title: "Administration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{deviceCmd, interfaceCmd, vlanCmd, lacpCmd} {
		cmd.GroupID = "model"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{configCmd, inventoryCmd} {
		cmd.GroupID = "config"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{auditCmd, userCmd, serveCmd, settingsCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if version.Version == "dev" {
			fmt.Println("netconfig dev build (use 'make build' for version info)")
		} else {
			fmt.Printf("netconfig %s\n", version.Info())
		}
	},
}

// applySettingsDefaults fills unset flags from the settings file
func applySettingsDefaults() {
	if deviceRef == "" {
		deviceRef = userSettings.DefaultDevice
	}
	if storeBackend == "" {
		storeBackend = userSettings.Store
	}
	if redisAddr == "" {
		redisAddr = userSettings.RedisAddr
	}
	if redisDB == 0 {
		redisDB = userSettings.RedisDB
	}
	if mysqlDSN == "" {
		mysqlDSN = userSettings.MySQLDSN
	}
	if inventoryPath == "" {
		inventoryPath = userSettings.Inventory
	}
}

// skipsInit reports whether cmd runs without a store
func skipsInit(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "settings", "user", "serve":
			return true
		}
	}
	return cmd.Annotations["store"] == "none"
}

func storeOptions() store.Options {
	return store.Options{
		Backend:   storeBackend,
		RedisAddr: redisAddr,
		RedisDB:   redisDB,
		MySQLDSN:  mysqlDSN,
	}
}

func usesInventoryFile() bool {
	return inventoryPath != "" && (storeBackend == "" || storeBackend == store.BackendMemory)
}

// initService opens the store and audit log and builds the local service.
// The CLI runs without a permission checker.
func initService(ctx context.Context) error {
	var err error
	st, err = store.Open(ctx, storeOptions())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	if usesInventoryFile() {
		if _, statErr := os.Stat(inventoryPath); statErr == nil {
			inv, err := inventory.Load(inventoryPath)
			if err != nil {
				return err
			}
			if _, err := inventory.Apply(ctx, st, inv); err != nil {
				return fmt.Errorf("loading inventory: %w", err)
			}
		} else if !os.IsNotExist(statErr) {
			return statErr
		}
	}

	auditLogger = openAuditLog()
	svc = netconfig.New(st, netconfig.WithAudit(auditLogger))
	return nil
}

func openAuditLog() audit.Logger {
	l, err := audit.NewFileLogger(userSettings.GetAuditLog(), audit.RotationConfig{
		MaxSize:    auditMaxSize,
		MaxBackups: auditMaxBackups,
	})
	if err != nil {
		util.Warnf("Could not initialize audit logging: %v", err)
		return audit.NopLogger{}
	}
	return l
}

// markDirty records that the command changed the store
func markDirty() {
	dirty = true
}

// shutdown writes the memory store back to its inventory file after a
// change, then closes the store and audit log.
func shutdown(ctx context.Context) error {
	if st == nil {
		return nil
	}
	defer func() {
		st.Close()
		if auditLogger != nil {
			auditLogger.Close()
		}
		st, auditLogger, dirty = nil, nil, false
	}()

	if !dirty {
		return nil
	}
	if !usesInventoryFile() {
		if storeBackend == "" || storeBackend == store.BackendMemory {
			util.Warnf("Changes are not persisted: use -f <inventory> or a redis/mysql store")
		}
		return nil
	}
	inv, err := inventory.Export(ctx, st)
	if err != nil {
		return fmt.Errorf("exporting inventory: %w", err)
	}
	if err := inventory.Save(inventoryPath, inv); err != nil {
		return fmt.Errorf("saving inventory: %w", err)
	}
	util.WithField("path", inventoryPath).Debugf("Inventory saved")
	return nil
}

// saveAfterError runs shutdown for a command that fails after changing the
// store. Cobra skips PersistentPostRunE when RunE returns an error.
func saveAfterError(ctx context.Context, err error) error {
	if serr := shutdown(ctx); serr != nil {
		util.Warnf("%v", serr)
	}
	return err
}

// ============================================================================
// Context Helpers
// ============================================================================

// requireDevice resolves the device selected with -d
func requireDevice(ctx context.Context) (model.Device, error) {
	if deviceRef == "" {
		return model.Device{}, fmt.Errorf("device required: use -d <device> flag")
	}
	return svc.ResolveDevice(ctx, deviceRef)
}

// printJSON writes v to stdout when --json is set and reports whether it did
func printJSON(v interface{}) (bool, error) {
	if !jsonOutput {
		return false, nil
	}
	return true, cli.PrintJSON(os.Stdout, v)
}

// Color helpers, delegating to pkg/cli
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
func bold(s string) string   { return cli.Bold(s) }
