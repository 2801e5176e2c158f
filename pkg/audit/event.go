// Package audit records configuration changes made through the service.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Operations recorded by the service
const (
	OpDeviceCreate    = "device.create"
	OpDeviceUpdate    = "device.update"
	OpDeviceDelete    = "device.delete"
	OpInterfaceUpdate = "interface.update"
	OpInterfaceBulk   = "interface.bulk-update"
	OpVlanCreate      = "vlan.create"
	OpVlanDelete      = "vlan.delete"
	OpLacpCreate      = "lacp.create"
	OpLacpDelete      = "lacp.delete"
	OpConfigImport    = "config.import"
)

// Event represents an auditable configuration change
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user"`
	Device    string        `json:"device"`
	Operation string        `json:"operation"`
	Vendor    string        `json:"vendor,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	ClientIP  string        `json:"client_ip,omitempty"`
}

// Filter defines criteria for querying audit events
type Filter struct {
	Device      string
	User        string
	Operation   string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event
func NewEvent(user, device, operation string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		User:      user,
		Device:    device,
		Operation: operation,
	}
}

// WithVendor sets the device vendor
func (e *Event) WithVendor(vendor string) *Event {
	e.Vendor = vendor
	return e
}

// WithDetail sets a short description of the change
func (e *Event) WithDetail(detail string) *Event {
	e.Detail = detail
	return e
}

// WithClientIP records the remote address of an API caller
func (e *Event) WithClientIP(ip string) *Event {
	e.ClientIP = ip
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithResult marks the event by err: success when nil, failed otherwise
func (e *Event) WithResult(err error) *Event {
	if err != nil {
		return e.WithError(err)
	}
	return e.WithSuccess()
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

// Matches reports whether e satisfies every criterion of f. Limit and
// Offset are not considered.
func (f Filter) Matches(e *Event) bool {
	switch {
	case f.Device != "" && e.Device != f.Device:
		return false
	case f.User != "" && e.User != f.User:
		return false
	case f.Operation != "" && e.Operation != f.Operation:
		return false
	case !f.StartTime.IsZero() && e.Timestamp.Before(f.StartTime):
		return false
	case !f.EndTime.IsZero() && e.Timestamp.After(f.EndTime):
		return false
	case f.SuccessOnly && !e.Success:
		return false
	case f.FailureOnly && e.Success:
		return false
	}
	return true
}

// page applies Offset then Limit
func (f Filter) page(events []*Event) []*Event {
	if f.Offset > 0 {
		if f.Offset >= len(events) {
			return []*Event{}
		}
		events = events[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(events) {
		events = events[:f.Limit]
	}
	return events
}
