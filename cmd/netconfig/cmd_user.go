package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/netconfig/netconfig/pkg/auth"
	"github.com/netconfig/netconfig/pkg/cli"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage API users and device permissions",
	Long: `Manage the users and device grants of the HTTP API. Changes are written
to the access file (settings key access_file, default ~/.netconfig/access.yaml).

Admins pass every check. Other users need a grant per device.

Examples:
  netconfig user add alice --display-name "Alice Smith"
  netconfig user list
  netconfig user grant alice sw1 --write
  netconfig user revoke alice sw1
  netconfig user role alice admin`,
}

var (
	userRole        string
	userDisplayName string
	grantWrite      bool
	grantDelete     bool
)

func loadRegistry() (*auth.Registry, error) {
	return auth.LoadRegistry(userSettings.GetAccessFile())
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := auth.ParseRole(userRole)
		if err != nil {
			return err
		}
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		password, err := promptNewPassword()
		if err != nil {
			return err
		}
		u, err := reg.CreateUser(args[0], password, userDisplayName, role)
		if err != nil {
			return err
		}
		if ok, err := printJSON(u); ok {
			return err
		}
		fmt.Printf("%s user %s (%s)\n", green("Created"), u.Username, u.Role)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		users := reg.Users()
		if ok, err := printJSON(users); ok {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No users found")
			return nil
		}
		t := cli.NewTable("USERNAME", "DISPLAY NAME", "ROLE", "GRANTS", "CREATED")
		for _, u := range users {
			t.Row(u.Username, cli.Dash(u.DisplayName), string(u.Role),
				fmt.Sprintf("%d", len(reg.GrantsForUser(u.ID))), cli.FormatTime(&u.CreatedAt))
		}
		t.Flush()
		return nil
	},
}

var userGrantCmd = &cobra.Command{
	Use:   "grant <username> <device>",
	Short: "Grant a user access to a device",
	Long: `Grant a user access to a device. Read access is always included; add
--write and --delete for more. An existing grant is replaced.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		u, err := reg.UserByName(args[0])
		if err != nil {
			return err
		}
		deviceID, err := resolveDeviceID(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		g, err := reg.GrantDeviceAccess(auth.Grant{
			UserID:    u.ID,
			DeviceID:  deviceID,
			CanRead:   true,
			CanWrite:  grantWrite,
			CanDelete: grantDelete,
		})
		if err != nil {
			return err
		}
		if ok, err := printJSON(g); ok {
			return err
		}
		fmt.Printf("%s %s access to %s (%s)\n", green("Granted"), u.Username, args[1], grantSummary(g))
		return nil
	},
}

var userRevokeCmd = &cobra.Command{
	Use:   "revoke <username> <device>",
	Short: "Remove a user's access to a device",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		u, err := reg.UserByName(args[0])
		if err != nil {
			return err
		}
		deviceID, err := resolveDeviceID(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		if err := reg.RevokeDeviceAccess(u.ID, deviceID); err != nil {
			return err
		}
		fmt.Printf("%s %s access to %s\n", green("Revoked"), u.Username, args[1])
		return nil
	},
}

var userRoleCmd = &cobra.Command{
	Use:   "role <username> <admin|user>",
	Short: "Change a user's role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := auth.ParseRole(args[1])
		if err != nil {
			return err
		}
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		u, err := reg.UserByName(args[0])
		if err != nil {
			return err
		}
		if err := reg.SetRole(u.ID, role); err != nil {
			return err
		}
		fmt.Printf("%s %s is now %s\n", green("Updated"), u.Username, role)
		return nil
	},
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Set a user's password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		u, err := reg.UserByName(args[0])
		if err != nil {
			return err
		}
		password, err := promptNewPassword()
		if err != nil {
			return err
		}
		if err := reg.SetPassword(u.ID, password); err != nil {
			return err
		}
		fmt.Printf("%s password for %s\n", green("Updated"), u.Username)
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user and their grants",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		u, err := reg.UserByName(args[0])
		if err != nil {
			return err
		}
		if err := reg.DeleteUser(u.ID); err != nil {
			return err
		}
		fmt.Printf("%s user %s\n", green("Deleted"), u.Username)
		return nil
	},
}

// resolveDeviceID opens the store on demand to turn a hostname into a
// device ID
func resolveDeviceID(ctx context.Context, ref string) (string, error) {
	if svc == nil {
		if err := initService(ctx); err != nil {
			return "", err
		}
	}
	d, err := svc.ResolveDevice(ctx, ref)
	if err != nil {
		return "", err
	}
	return d.ID, nil
}

func grantSummary(g auth.Grant) string {
	var perms []string
	for _, p := range []auth.Permission{auth.PermRead, auth.PermWrite, auth.PermDelete} {
		if g.Allows(p) {
			perms = append(perms, string(p))
		}
	}
	return strings.Join(perms, ",")
}

// promptNewPassword reads a password twice from the terminal, or once
// from a piped stdin
func promptNewPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}

func init() {
	userAddCmd.Flags().StringVar(&userRole, "role", string(auth.RoleUser), "Role: admin or user")
	userAddCmd.Flags().StringVar(&userDisplayName, "display-name", "", "Display name")

	userGrantCmd.Flags().BoolVar(&grantWrite, "write", false, "Allow changes")
	userGrantCmd.Flags().BoolVar(&grantDelete, "delete", false, "Allow deletes")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userGrantCmd)
	userCmd.AddCommand(userRevokeCmd)
	userCmd.AddCommand(userRoleCmd)
	userCmd.AddCommand(userPasswdCmd)
	userCmd.AddCommand(userDeleteCmd)
}
