// Package dialect translates between the neutral model and vendor
// configuration text. Vendor packages register themselves from init, so
// callers import them for side effects:
//
//	import _ "github.com/netconfig/netconfig/pkg/dialect/cisco"
package dialect

import (
	"fmt"
	"sort"
	"sync"

	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/util"
)

// Dialect renders and reads one vendor's configuration syntax.
//
// Generate is total: it never fails and its output depends only on its
// arguments. Parse never fails either; text it does not understand yields
// no records.
type Dialect interface {
	Vendor() model.Vendor
	Generate(dev model.Device, ifaces []model.Interface, vlans []model.Vlan, groups []model.LacpGroup) string
	Parse(text string) []ParsedVlan
}

// ParsedVlan is a VLAN recovered from configuration text
type ParsedVlan struct {
	VlanID int    `json:"vlanId"`
	Name   string `json:"name"`
	Line   int    `json:"line"` // 1-based line of the stanza start
}

// ToVlan converts the parsed VLAN into a record for deviceID
func (p ParsedVlan) ToVlan(deviceID string) model.Vlan {
	return model.Vlan{DeviceID: deviceID, VlanID: p.VlanID, Name: p.Name}
}

var (
	mu       sync.RWMutex
	dialects = make(map[model.Vendor]Dialect)
)

// Register makes a dialect available by vendor. Registering the same vendor
// twice panics.
func Register(d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := dialects[d.Vendor()]; dup {
		panic(fmt.Sprintf("dialect: Register called twice for vendor %s", d.Vendor()))
	}
	dialects[d.Vendor()] = d
}

// For returns the dialect registered for vendor
func For(vendor model.Vendor) (Dialect, error) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := dialects[vendor]
	if !ok {
		return nil, fmt.Errorf("%w: %q", util.ErrUnsupportedVendor, vendor)
	}
	return d, nil
}

// Registered lists the vendors with a registered dialect, sorted
func Registered() []model.Vendor {
	mu.RLock()
	defer mu.RUnlock()
	vendors := make([]model.Vendor, 0, len(dialects))
	for v := range dialects {
		vendors = append(vendors, v)
	}
	sort.Slice(vendors, func(i, j int) bool { return vendors[i] < vendors[j] })
	return vendors
}
