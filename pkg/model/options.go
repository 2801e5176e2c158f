package model

import "fmt"

// Vendor selects the configuration dialect of a device
type Vendor string

const (
	VendorCisco   Vendor = "cisco"
	VendorJuniper Vendor = "juniper"
)

// DeviceStatus is the sync state of a device
type DeviceStatus string

const (
	DeviceOnline  DeviceStatus = "online"
	DeviceOffline DeviceStatus = "offline"
	DeviceSyncing DeviceStatus = "syncing"
)

// PortStatus is the administrative/operational state of a port
type PortStatus string

const (
	PortUp       PortStatus = "up"
	PortDown     PortStatus = "down"
	PortDisabled PortStatus = "disabled" // rendered as shutdown / disable
)

// PortSpeed is a configured port speed
type PortSpeed string

const (
	SpeedAuto PortSpeed = "auto"
	Speed10M  PortSpeed = "10M"
	Speed100M PortSpeed = "100M"
	Speed1G   PortSpeed = "1G"
	Speed10G  PortSpeed = "10G"
	Speed25G  PortSpeed = "25G"
	Speed40G  PortSpeed = "40G"
	Speed100G PortSpeed = "100G"
)

// Duplex is a configured port duplex
type Duplex string

const (
	DuplexAuto Duplex = "auto"
	DuplexFull Duplex = "full"
	DuplexHalf Duplex = "half"
)

// PortMode is the switchport mode
type PortMode string

const (
	ModeAccess PortMode = "access"
	ModeTrunk  PortMode = "trunk"
)

// LacpMode is the LACP negotiation mode of a group
type LacpMode string

const (
	LacpActive  LacpMode = "active"  // Actively sends LACP PDUs
	LacpPassive LacpMode = "passive" // Only responds to LACP PDUs
)

// LoadBalancing is the hash used to spread traffic over group members
type LoadBalancing string

const (
	BalanceSrcMac    LoadBalancing = "src-mac"
	BalanceDstMac    LoadBalancing = "dst-mac"
	BalanceSrcDstMac LoadBalancing = "src-dst-mac"
	BalanceSrcIP     LoadBalancing = "src-ip"
	BalanceDstIP     LoadBalancing = "dst-ip"
	BalanceSrcDstIP  LoadBalancing = "src-dst-ip"
)

// Option sets, in display order
var (
	Vendors        = []Vendor{VendorCisco, VendorJuniper}
	DeviceStatuses = []DeviceStatus{DeviceOnline, DeviceOffline, DeviceSyncing}
	PortStatuses   = []PortStatus{PortUp, PortDown, PortDisabled}
	PortSpeeds     = []PortSpeed{SpeedAuto, Speed10M, Speed100M, Speed1G, Speed10G, Speed25G, Speed40G, Speed100G}
	Duplexes       = []Duplex{DuplexAuto, DuplexFull, DuplexHalf}
	PortModes      = []PortMode{ModeAccess, ModeTrunk}
	LacpModes      = []LacpMode{LacpActive, LacpPassive}
	LoadBalancings = []LoadBalancing{BalanceSrcMac, BalanceDstMac, BalanceSrcDstMac, BalanceSrcIP, BalanceDstIP, BalanceSrcDstIP}
)

func (v Vendor) Valid() bool { return oneOf(v, Vendors) }
func (s DeviceStatus) Valid() bool { return oneOf(s, DeviceStatuses) }
func (s PortStatus) Valid() bool { return oneOf(s, PortStatuses) }
func (s PortSpeed) Valid() bool { return oneOf(s, PortSpeeds) }
func (d Duplex) Valid() bool { return oneOf(d, Duplexes) }
func (m PortMode) Valid() bool { return oneOf(m, PortModes) }
func (m LacpMode) Valid() bool { return oneOf(m, LacpModes) }
func (l LoadBalancing) Valid() bool { return oneOf(l, LoadBalancings) }

// ParseVendor converts s to a Vendor
func ParseVendor(s string) (Vendor, error) { return parseOption("vendor", s, Vendors) }

// ParseDeviceStatus converts s to a DeviceStatus
func ParseDeviceStatus(s string) (DeviceStatus, error) {
	return parseOption("device status", s, DeviceStatuses)
}

// ParsePortStatus converts s to a PortStatus
func ParsePortStatus(s string) (PortStatus, error) { return parseOption("status", s, PortStatuses) }

// ParsePortSpeed converts s to a PortSpeed
func ParsePortSpeed(s string) (PortSpeed, error) { return parseOption("speed", s, PortSpeeds) }

// ParseDuplex converts s to a Duplex
func ParseDuplex(s string) (Duplex, error) { return parseOption("duplex", s, Duplexes) }

// ParsePortMode converts s to a PortMode
func ParsePortMode(s string) (PortMode, error) { return parseOption("mode", s, PortModes) }

// ParseLacpMode converts s to a LacpMode
func ParseLacpMode(s string) (LacpMode, error) { return parseOption("LACP mode", s, LacpModes) }

// ParseLoadBalancing converts s to a LoadBalancing
func ParseLoadBalancing(s string) (LoadBalancing, error) {
	return parseOption("load balancing", s, LoadBalancings)
}

func oneOf[T ~string](v T, set []T) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}

func parseOption[T ~string](kind, s string, set []T) (T, error) {
	v := T(s)
	if !oneOf(v, set) {
		return v, fmt.Errorf("invalid %s value: %s", kind, s)
	}
	return v, nil
}
