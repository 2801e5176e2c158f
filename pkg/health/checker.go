// Package health inspects a device's stored configuration for problems
// the generator renders without complaint: ports down, references to
// VLANs that do not exist, LACP groups that cannot reach their link
// minimum.
package health

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/store"
)

// Status is the outcome of a check
type Status string

const (
	StatusOK       Status = "ok"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
	StatusUnknown  Status = "unknown"
)

var severity = map[Status]int{
	StatusOK:       0,
	StatusUnknown:  1,
	StatusWarning:  2,
	StatusCritical: 3,
}

// Worse returns the more severe of a and b
func Worse(a, b Status) Status {
	if severity[b] > severity[a] {
		return b
	}
	return a
}

// Result is the outcome of one check
type Result struct {
	Check     string        `json:"check"`
	Status    Status        `json:"status"`
	Message   string        `json:"message"`
	Details   interface{}   `json:"details,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// Report collects the results of every check run against a device
type Report struct {
	Device    string        `json:"device"`
	Timestamp time.Time     `json:"timestamp"`
	Overall   Status        `json:"overall"`
	Results   []Result      `json:"results"`
	Duration  time.Duration `json:"duration"`
}

// Check inspects one aspect of a device
type Check interface {
	Name() string
	Run(ctx context.Context, snap *store.Snapshot) Result
}

// Checker runs a set of checks
type Checker struct {
	checks []Check
}

// NewChecker returns a checker with the default checks
func NewChecker() *Checker {
	return &Checker{
		checks: []Check{
			&InterfaceCheck{},
			&VlanCheck{},
			&LacpCheck{},
		},
	}
}

// AddCheck appends a check
func (c *Checker) AddCheck(check Check) {
	c.checks = append(c.checks, check)
}

// ListChecks returns the check names in run order
func (c *Checker) ListChecks() []string {
	names := make([]string, len(c.checks))
	for i, check := range c.checks {
		names[i] = check.Name()
	}
	return names
}

// Run runs every check against snap
func (c *Checker) Run(ctx context.Context, snap *store.Snapshot) *Report {
	start := time.Now()
	report := &Report{
		Device:    snap.Device.Hostname,
		Timestamp: start.UTC(),
		Overall:   StatusOK,
	}
	for _, check := range c.checks {
		if ctx.Err() != nil {
			report.Results = append(report.Results, Result{
				Check:   check.Name(),
				Status:  StatusUnknown,
				Message: ctx.Err().Error(),
			})
			report.Overall = Worse(report.Overall, StatusUnknown)
			continue
		}
		checkStart := time.Now()
		result := check.Run(ctx, snap)
		result.Check = check.Name()
		result.Duration = time.Since(checkStart)
		result.Timestamp = checkStart.UTC()
		report.Results = append(report.Results, result)
		report.Overall = Worse(report.Overall, result.Status)
	}
	report.Duration = time.Since(start)
	return report
}

// InterfaceCheck counts ports that are down. Disabled ports are
// administratively shut and not counted as failures.
type InterfaceCheck struct{}

func (c *InterfaceCheck) Name() string { return "interfaces" }

func (c *InterfaceCheck) Run(ctx context.Context, snap *store.Snapshot) Result {
	details := map[string]int{"total": len(snap.Interfaces), "up": 0, "down": 0, "disabled": 0}
	for _, i := range snap.Interfaces {
		details[string(i.Status)]++
	}

	result := Result{Details: details}
	active := details["total"] - details["disabled"]
	switch {
	case details["total"] == 0:
		result.Status = StatusWarning
		result.Message = "No interfaces"
	case details["down"] == 0:
		result.Status = StatusOK
		result.Message = fmt.Sprintf("All %d active interfaces up", active)
	case details["down"] == active:
		result.Status = StatusCritical
		result.Message = fmt.Sprintf("All %d active interfaces down", active)
	default:
		result.Status = StatusWarning
		result.Message = fmt.Sprintf("%d of %d active interfaces down", details["down"], active)
	}
	return result
}

// VlanDetails lists the VLAN problems found on a device
type VlanDetails struct {
	Total      int      `json:"total"`
	Undefined  []string `json:"undefined,omitempty"`  // "<port>: <role> vlan <id>"
	Duplicates []int    `json:"duplicates,omitempty"` // VLAN IDs defined more than once
}

// VlanCheck finds ports that carry VLANs the device does not define, and
// VLAN IDs defined more than once (left behind by repeated imports).
type VlanCheck struct{}

func (c *VlanCheck) Name() string { return "vlans" }

func (c *VlanCheck) Run(ctx context.Context, snap *store.Snapshot) Result {
	details := VlanDetails{Total: len(snap.Vlans)}
	defined := make(map[int]int, len(snap.Vlans))
	for _, v := range snap.Vlans {
		defined[v.VlanID]++
	}
	for id, n := range defined {
		if n > 1 {
			details.Duplicates = append(details.Duplicates, id)
		}
	}
	sort.Ints(details.Duplicates)

	missing := func(port, role string, id int) {
		if defined[id] == 0 {
			details.Undefined = append(details.Undefined, fmt.Sprintf("%s: %s vlan %d", port, role, id))
		}
	}
	for _, i := range snap.Interfaces {
		if i.IsTrunk() {
			for _, id := range i.TrunkAllowedVlans {
				missing(i.Name, "trunk", id)
			}
			if i.NativeVlan != nil && *i.NativeVlan != 0 {
				missing(i.Name, "native", *i.NativeVlan)
			}
		} else if i.AccessVlan != nil && *i.AccessVlan != 0 {
			missing(i.Name, "access", *i.AccessVlan)
		}
	}

	result := Result{Status: StatusOK, Details: details}
	var problems []string
	if n := len(details.Undefined); n > 0 {
		problems = append(problems, fmt.Sprintf("%d undefined VLAN references", n))
	}
	if n := len(details.Duplicates); n > 0 {
		problems = append(problems, fmt.Sprintf("%d duplicate VLAN IDs", n))
	}
	if len(problems) > 0 {
		result.Status = StatusWarning
		result.Message = strings.Join(problems, ", ")
	} else {
		result.Message = fmt.Sprintf("%d VLANs, all references defined", details.Total)
	}
	return result
}

// LacpGroupHealth is the state of one LACP group
type LacpGroupHealth struct {
	Group   int      `json:"group"`
	Members int      `json:"members"`
	Up      int      `json:"up"`
	Status  Status   `json:"status"`
	Issues  []string `json:"issues,omitempty"`
}

// LacpCheck compares each group's member ports with its link limits
type LacpCheck struct{}

func (c *LacpCheck) Name() string { return "lacp" }

func (c *LacpCheck) Run(ctx context.Context, snap *store.Snapshot) Result {
	result := Result{Status: StatusOK}
	if len(snap.LacpGroups) == 0 {
		result.Message = "No LACP groups"
		return result
	}

	groups := make([]LacpGroupHealth, 0, len(snap.LacpGroups))
	bad := 0
	for _, g := range snap.LacpGroups {
		h := checkGroup(g, g.Members(snap.Interfaces))
		if h.Status != StatusOK {
			bad++
		}
		result.Status = Worse(result.Status, h.Status)
		groups = append(groups, h)
	}
	result.Details = groups

	if bad == 0 {
		result.Message = fmt.Sprintf("All %d LACP groups healthy", len(groups))
	} else {
		result.Message = fmt.Sprintf("%d of %d LACP groups degraded", bad, len(groups))
	}
	return result
}

func checkGroup(g model.LacpGroup, members []model.Interface) LacpGroupHealth {
	h := LacpGroupHealth{Group: g.GroupNumber, Members: len(members), Status: StatusOK}
	issue := func(s Status, format string, args ...interface{}) {
		h.Status = Worse(h.Status, s)
		h.Issues = append(h.Issues, fmt.Sprintf(format, args...))
	}

	speeds := make(map[model.PortSpeed]bool)
	modes := make(map[model.PortMode]bool)
	for _, m := range members {
		if m.Status == model.PortUp {
			h.Up++
		}
		speeds[m.Speed] = true
		modes[m.Mode] = true
	}

	if g.MinLinks > g.MaxLinks {
		issue(StatusWarning, "min links %d exceeds max links %d", g.MinLinks, g.MaxLinks)
	}
	switch {
	case len(members) == 0:
		issue(StatusWarning, "no members")
	case h.Up < g.MinLinks:
		issue(StatusCritical, "%d links up, minimum %d", h.Up, g.MinLinks)
	}
	if len(members) > g.MaxLinks {
		issue(StatusWarning, "%d members exceed max links %d", len(members), g.MaxLinks)
	}
	if len(speeds) > 1 {
		issue(StatusWarning, "members have mixed speeds")
	}
	if len(modes) > 1 {
		issue(StatusWarning, "members have mixed switchport modes")
	}
	return h
}
