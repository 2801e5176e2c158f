// Package model defines the vendor-neutral domain model for network devices.
package model

import (
	"net"
	"strings"
	"time"

	"github.com/netconfig/netconfig/pkg/util"
)

// Device represents a managed switch
type Device struct {
	ID           string       `json:"id"`
	Hostname     string       `json:"hostname"`
	IPAddress    string       `json:"ipAddress"`
	Vendor       Vendor       `json:"vendor"`
	Model        string       `json:"model"`
	Status       DeviceStatus `json:"status"`
	LastSyncedAt *time.Time   `json:"lastSyncedAt"`
}

// Validate checks the fields a caller supplies when creating a device.
// An empty Status is accepted; the service fills it in.
func (d *Device) Validate() error {
	v := util.NewValidationBuilder("device: ")
	v.Add(strings.TrimSpace(d.Hostname) != "", "hostname is required")
	if d.IPAddress == "" {
		v.AddError("ip address is required")
	} else if net.ParseIP(d.IPAddress) == nil {
		v.AddErrorf("invalid ip address: %s", d.IPAddress)
	}
	if !d.Vendor.Valid() {
		v.AddErrorf("invalid vendor: %q", d.Vendor)
	}
	v.Add(d.Model != "", "model is required")
	if d.Status != "" && !d.Status.Valid() {
		v.AddErrorf("invalid status: %q", d.Status)
	}
	return v.Build()
}

// IsOnline returns true if the device was last seen in sync
func (d *Device) IsOnline() bool {
	return d.Status == DeviceOnline
}

// Clone returns a deep copy of d
func (d Device) Clone() Device {
	if d.LastSyncedAt != nil {
		t := *d.LastSyncedAt
		d.LastSyncedAt = &t
	}
	return d
}
