package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/netconfig/netconfig/pkg/audit"
	"github.com/netconfig/netconfig/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View audit logs",
	Long: `View audit logs of configuration changes.

Every change made through the CLI or the HTTP API is logged with:
  - Timestamp
  - User who made the change
  - Device affected
  - Operation performed
  - Success/failure status

Examples:
  netconfig audit list --device sw1
  netconfig audit list --last 24h
  netconfig audit list --user alice --operation config.import`,
}

var (
	auditDevice    string
	auditUser      string
	auditOperation string
	auditLast      string
	auditLimit     int
	auditFailures  bool
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := audit.Filter{
			Device:      auditDevice,
			User:        auditUser,
			Operation:   auditOperation,
			Limit:       auditLimit,
			FailureOnly: auditFailures,
		}

		if auditLast != "" {
			duration, err := parseLast(auditLast)
			if err != nil {
				return err
			}
			filter.StartTime = time.Now().Add(-duration)
		}

		// a device given by hostname is matched by ID in the log
		if filter.Device != "" {
			if d, err := svc.ResolveDevice(cmd.Context(), filter.Device); err == nil {
				filter.Device = d.ID
			}
		}

		events, err := auditLogger.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}

		if ok, err := printJSON(events); ok {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		t := cli.NewTable("TIMESTAMP", "USER", "DEVICE", "OPERATION", "STATUS", "DETAIL")
		for _, e := range events {
			status := green("ok")
			detail := e.Detail
			if !e.Success {
				status = red("failed")
				detail = e.Error
			}
			t.Row(e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.User, cli.Dash(e.Device),
				e.Operation, status, detail)
		}
		t.Flush()
		return nil
	},
}

// parseLast accepts Go durations plus a day suffix ("7d")
func parseLast(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		var n int
		if _, err := fmt.Sscanf(days, "%d", &n); err == nil && n > 0 {
			return time.Duration(n) * 24 * time.Hour, nil
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}
	return d, nil
}

func init() {
	auditListCmd.Flags().StringVar(&auditDevice, "device", "", "Filter by device ID or hostname")
	auditListCmd.Flags().StringVar(&auditUser, "user", "", "Filter by user")
	auditListCmd.Flags().StringVar(&auditOperation, "operation", "", "Filter by operation (e.g. vlan.create)")
	auditListCmd.Flags().StringVar(&auditLast, "last", "", "Show events from last duration (e.g., 24h, 7d)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 100, "Maximum events to show")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Show only failed operations")

	auditCmd.AddCommand(auditListCmd)
}
