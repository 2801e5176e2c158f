package model

import (
	"fmt"

	"github.com/netconfig/netconfig/pkg/util"
)

// LACP group bounds
const (
	MinGroupNumber = 1
	MaxGroupNumber = 128
	MinLinks       = 1
	MaxLinks       = 16
)

// LacpGroup represents a link aggregation group (Port-channel / aeN)
type LacpGroup struct {
	ID            string        `json:"id"`
	DeviceID      string        `json:"deviceId"`
	GroupNumber   int           `json:"groupNumber"` // Port-channel<N> / ae<N>
	Name          string        `json:"name"`
	Mode          LacpMode      `json:"mode"`
	LoadBalancing LoadBalancing `json:"loadBalancing"`
	MinLinks      int           `json:"minLinks"`
	MaxLinks      int           `json:"maxLinks"`
}

// Validate checks ranges and enums. MinLinks > MaxLinks is not rejected.
func (g *LacpGroup) Validate() error {
	v := util.NewValidationBuilder(fmt.Sprintf("lacp group %d: ", g.GroupNumber))
	if g.GroupNumber < MinGroupNumber || g.GroupNumber > MaxGroupNumber {
		v.AddErrorf("group number %d out of range (%d-%d)", g.GroupNumber, MinGroupNumber, MaxGroupNumber)
	}
	if !g.Mode.Valid() {
		v.AddErrorf("invalid mode: %q", g.Mode)
	}
	if !g.LoadBalancing.Valid() {
		v.AddErrorf("invalid load balancing: %q", g.LoadBalancing)
	}
	validateLinks(v, "min links", g.MinLinks)
	validateLinks(v, "max links", g.MaxLinks)
	return v.Build()
}

// Members returns the interfaces that belong to g, in input order
func (g *LacpGroup) Members(ifaces []Interface) []Interface {
	var members []Interface
	for _, i := range ifaces {
		if i.InGroup(g.ID) {
			members = append(members, i)
		}
	}
	return members
}

func validateLinks(v *util.ValidationBuilder, field string, n int) {
	if n < MinLinks || n > MaxLinks {
		v.AddErrorf("%s %d out of range (%d-%d)", field, n, MinLinks, MaxLinks)
	}
}
