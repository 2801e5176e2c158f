// Package juniper renders and imports JunOS-style switch configuration.
package juniper

import (
	"github.com/netconfig/netconfig/pkg/dialect"
	"github.com/netconfig/netconfig/pkg/model"
)

func init() {
	dialect.Register(Dialect{})
}

// Dialect is the JunOS dialect.Dialect
type Dialect struct{}

func (Dialect) Vendor() model.Vendor { return model.VendorJuniper }

func (Dialect) Generate(dev model.Device, ifaces []model.Interface, vlans []model.Vlan, groups []model.LacpGroup) string {
	return Generate(dev, ifaces, vlans, groups)
}

func (Dialect) Parse(text string) []dialect.ParsedVlan {
	return Parse(text)
}
