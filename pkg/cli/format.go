// Package cli provides shared formatting helpers for the netconfig CLI.
package cli

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// colorEnabled is false when NO_COLOR is set (per no-color.org) or stdout
// is not a terminal.
var colorEnabled = os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stdout.Fd()))

// SetColor forces ANSI colour on or off
func SetColor(enabled bool) {
	colorEnabled = enabled
}

func wrap(code, s string) string {
	if !colorEnabled {
		return s
	}
	return code + s + "\033[0m"
}

// Green wraps s in ANSI green. Returns s unchanged when colour is off.
func Green(s string) string { return wrap("\033[32m", s) }

// Yellow wraps s in ANSI yellow. Returns s unchanged when colour is off.
func Yellow(s string) string { return wrap("\033[33m", s) }

// Red wraps s in ANSI red. Returns s unchanged when colour is off.
func Red(s string) string { return wrap("\033[31m", s) }

// Bold wraps s in ANSI bold. Returns s unchanged when colour is off.
func Bold(s string) string { return wrap("\033[1m", s) }

// Dim wraps s in ANSI dim. Returns s unchanged when colour is off.
func Dim(s string) string { return wrap("\033[2m", s) }

// Status colours a device or port status: up/online green, down/offline
// red, disabled/syncing yellow.
func Status(s string) string {
	switch s {
	case "up", "online":
		return Green(s)
	case "down", "offline":
		return Red(s)
	case "disabled", "syncing":
		return Yellow(s)
	}
	return s
}

// DotPad pads name with dots to the given width.
// Example: DotPad("vlan 10", 20) → "vlan 10 ............"
func DotPad(name string, width int) string {
	if width <= 0 || len(name) >= width-1 {
		return name
	}
	dots := width - len(name) - 1
	return name + " " + strings.Repeat(".", dots)
}

// Dash returns "-" for an empty cell
func Dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// FormatTime renders t for tables; a nil time is "never"
func FormatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// TerminalWidth returns the width of stdout, or 0 when it is not a terminal
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}
