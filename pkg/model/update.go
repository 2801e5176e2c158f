package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/netconfig/netconfig/pkg/util"
)

// InterfaceUpdate is a partial update of an Interface. Nil fields are left
// unchanged. The Clear flags set a nullable field back to null and take
// precedence over the matching value field.
type InterfaceUpdate struct {
	Description       *string
	Status            *PortStatus
	Speed             *PortSpeed
	Duplex            *Duplex
	Mode              *PortMode
	AccessVlan        *int
	ClearAccessVlan   bool
	TrunkAllowedVlans *[]int
	NativeVlan        *int
	ClearNativeVlan   bool
	LacpGroupID       *string
	ClearLacpGroup    bool
}

// IsEmpty returns true if the update changes nothing
func (u *InterfaceUpdate) IsEmpty() bool {
	return len(u.Fields()) == 0
}

// Fields lists the wire names of the fields the update touches
func (u *InterfaceUpdate) Fields() []string {
	var f []string
	add := func(set bool, name string) {
		if set {
			f = append(f, name)
		}
	}
	add(u.Description != nil, "description")
	add(u.Status != nil, "status")
	add(u.Speed != nil, "speed")
	add(u.Duplex != nil, "duplex")
	add(u.Mode != nil, "mode")
	add(u.AccessVlan != nil || u.ClearAccessVlan, "accessVlan")
	add(u.TrunkAllowedVlans != nil, "trunkAllowedVlans")
	add(u.NativeVlan != nil || u.ClearNativeVlan, "nativeVlan")
	add(u.LacpGroupID != nil || u.ClearLacpGroup, "lacpGroupId")
	return f
}

// Validate checks enum values and VLAN ranges of the set fields
func (u *InterfaceUpdate) Validate() error {
	v := util.NewValidationBuilder("")
	if u.Status != nil && !u.Status.Valid() {
		v.AddErrorf("invalid status: %q", *u.Status)
	}
	if u.Speed != nil && !u.Speed.Valid() {
		v.AddErrorf("invalid speed: %q", *u.Speed)
	}
	if u.Duplex != nil && !u.Duplex.Valid() {
		v.AddErrorf("invalid duplex: %q", *u.Duplex)
	}
	if u.Mode != nil && !u.Mode.Valid() {
		v.AddErrorf("invalid mode: %q", *u.Mode)
	}
	var trunk []int
	if u.TrunkAllowedVlans != nil {
		trunk = *u.TrunkAllowedVlans
	}
	validateVlanRefs(v, u.AccessVlan, trunk, u.NativeVlan)
	return v.Build()
}

// Apply writes the set fields into i
func (u *InterfaceUpdate) Apply(i *Interface) {
	if u.Description != nil {
		i.Description = *u.Description
	}
	if u.Status != nil {
		i.Status = *u.Status
	}
	if u.Speed != nil {
		i.Speed = *u.Speed
	}
	if u.Duplex != nil {
		i.Duplex = *u.Duplex
	}
	if u.Mode != nil {
		i.Mode = *u.Mode
	}
	switch {
	case u.ClearAccessVlan:
		i.AccessVlan = nil
	case u.AccessVlan != nil:
		i.AccessVlan = cloneInt(u.AccessVlan)
	}
	if u.TrunkAllowedVlans != nil {
		i.TrunkAllowedVlans = append([]int{}, (*u.TrunkAllowedVlans)...)
	}
	switch {
	case u.ClearNativeVlan:
		i.NativeVlan = nil
	case u.NativeVlan != nil:
		i.NativeVlan = cloneInt(u.NativeVlan)
	}
	switch {
	case u.ClearLacpGroup:
		i.LacpGroupID = nil
	case u.LacpGroupID != nil:
		id := *u.LacpGroupID
		i.LacpGroupID = &id
	}
}

// DecodeInterfaceUpdate builds an InterfaceUpdate from a JSON object keyed
// by wire field name. Unknown keys and bad values are reported together in
// one validation error. A JSON null clears a nullable field.
func DecodeInterfaceUpdate(raw map[string]json.RawMessage) (InterfaceUpdate, error) {
	var u InterfaceUpdate
	v := util.NewValidationBuilder("")

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		data := raw[key]
		null := isNull(data)
		switch key {
		case "description":
			s := ""
			if !null && !decodeField(v, key, data, &s) {
				continue
			}
			u.Description = &s
		case "status":
			u.Status = decodeOption(v, key, data, ParsePortStatus)
		case "speed":
			u.Speed = decodeOption(v, key, data, ParsePortSpeed)
		case "duplex":
			u.Duplex = decodeOption(v, key, data, ParseDuplex)
		case "mode":
			u.Mode = decodeOption(v, key, data, ParsePortMode)
		case "accessVlan":
			if null {
				u.ClearAccessVlan = true
				continue
			}
			var n int
			if decodeField(v, key, data, &n) {
				u.AccessVlan = &n
			}
		case "trunkAllowedVlans":
			vlans := []int{}
			if !null && !decodeField(v, key, data, &vlans) {
				continue
			}
			u.TrunkAllowedVlans = &vlans
		case "nativeVlan":
			if null {
				u.ClearNativeVlan = true
				continue
			}
			var n int
			if decodeField(v, key, data, &n) {
				u.NativeVlan = &n
			}
		case "lacpGroupId":
			var id string
			if !null && !decodeField(v, key, data, &id) {
				continue
			}
			if id == "" {
				u.ClearLacpGroup = true
				continue
			}
			u.LacpGroupID = &id
		default:
			v.AddErrorf("unknown field: %s", key)
		}
	}

	if err := v.Build(); err != nil {
		return InterfaceUpdate{}, err
	}
	return u, u.Validate()
}

// DeviceUpdate is a partial update of a Device. Vendor is fixed at creation
// and cannot be changed.
type DeviceUpdate struct {
	Hostname     *string       `json:"hostname,omitempty"`
	IPAddress    *string       `json:"ipAddress,omitempty"`
	Model        *string       `json:"model,omitempty"`
	Status       *DeviceStatus `json:"status,omitempty"`
	LastSyncedAt *time.Time    `json:"lastSyncedAt,omitempty"`
}

// Validate checks the set fields
func (u *DeviceUpdate) Validate() error {
	v := util.NewValidationBuilder("")
	if u.Hostname != nil && strings.TrimSpace(*u.Hostname) == "" {
		v.AddError("hostname cannot be empty")
	}
	if u.IPAddress != nil && net.ParseIP(*u.IPAddress) == nil {
		v.AddErrorf("invalid ip address: %s", *u.IPAddress)
	}
	if u.Model != nil && *u.Model == "" {
		v.AddError("model cannot be empty")
	}
	if u.Status != nil && !u.Status.Valid() {
		v.AddErrorf("invalid status: %q", *u.Status)
	}
	return v.Build()
}

// Apply writes the set fields into d
func (u *DeviceUpdate) Apply(d *Device) {
	if u.Hostname != nil {
		d.Hostname = *u.Hostname
	}
	if u.IPAddress != nil {
		d.IPAddress = *u.IPAddress
	}
	if u.Model != nil {
		d.Model = *u.Model
	}
	if u.Status != nil {
		d.Status = *u.Status
	}
	if u.LastSyncedAt != nil {
		t := *u.LastSyncedAt
		d.LastSyncedAt = &t
	}
}

// VlanUpdate is a partial update of a Vlan
type VlanUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Validate checks the set fields
func (u *VlanUpdate) Validate() error {
	v := util.NewValidationBuilder("")
	if u.Name != nil && *u.Name == "" {
		v.AddError("name cannot be empty")
	}
	return v.Build()
}

// Apply writes the set fields into vl
func (u *VlanUpdate) Apply(vl *Vlan) {
	if u.Name != nil {
		vl.Name = *u.Name
	}
	if u.Description != nil {
		vl.Description = *u.Description
	}
}

// LacpGroupUpdate is a partial update of a LacpGroup
type LacpGroupUpdate struct {
	Name          *string        `json:"name,omitempty"`
	Mode          *LacpMode      `json:"mode,omitempty"`
	LoadBalancing *LoadBalancing `json:"loadBalancing,omitempty"`
	MinLinks      *int           `json:"minLinks,omitempty"`
	MaxLinks      *int           `json:"maxLinks,omitempty"`
}

// Validate checks the set fields
func (u *LacpGroupUpdate) Validate() error {
	v := util.NewValidationBuilder("")
	if u.Mode != nil && !u.Mode.Valid() {
		v.AddErrorf("invalid mode: %q", *u.Mode)
	}
	if u.LoadBalancing != nil && !u.LoadBalancing.Valid() {
		v.AddErrorf("invalid load balancing: %q", *u.LoadBalancing)
	}
	if u.MinLinks != nil {
		validateLinks(v, "min links", *u.MinLinks)
	}
	if u.MaxLinks != nil {
		validateLinks(v, "max links", *u.MaxLinks)
	}
	return v.Build()
}

// Apply writes the set fields into g
func (u *LacpGroupUpdate) Apply(g *LacpGroup) {
	if u.Name != nil {
		g.Name = *u.Name
	}
	if u.Mode != nil {
		g.Mode = *u.Mode
	}
	if u.LoadBalancing != nil {
		g.LoadBalancing = *u.LoadBalancing
	}
	if u.MinLinks != nil {
		g.MinLinks = *u.MinLinks
	}
	if u.MaxLinks != nil {
		g.MaxLinks = *u.MaxLinks
	}
}

// DecodeStrict unmarshals a JSON object into v, rejecting fields v does
// not declare. Failures are returned as validation errors.
func DecodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return util.NewValidationError(err.Error())
	}
	return nil
}

func isNull(data json.RawMessage) bool {
	return string(bytes.TrimSpace(data)) == "null"
}

func decodeField(v *util.ValidationBuilder, key string, data json.RawMessage, dst interface{}) bool {
	if err := json.Unmarshal(data, dst); err != nil {
		v.AddErrorf("%s: %v", key, err)
		return false
	}
	return true
}

func decodeOption[T ~string](v *util.ValidationBuilder, key string, data json.RawMessage, parse func(string) (T, error)) *T {
	var s string
	if isNull(data) {
		v.AddErrorf("%s cannot be null", key)
		return nil
	}
	if !decodeField(v, key, data, &s) {
		return nil
	}
	val, err := parse(s)
	if err != nil {
		v.AddError(err.Error())
		return nil
	}
	return &val
}

// String renders the update for logs and audit details
func (u InterfaceUpdate) String() string {
	return fmt.Sprintf("fields=%s", strings.Join(u.Fields(), ","))
}
