// Package store persists devices, interfaces, VLANs and LACP groups.
//
// Every backend honors the same contract: lookups of missing records
// return an error wrapping util.ErrNotFound, Create assigns a fresh UUID
// when the record has no ID, lists come back in creation order, deleting
// a device removes everything attached to it, and deleting an LACP group
// detaches its member interfaces.
package store

import (
	"context"

	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/util"
)

// Record kinds used in not-found errors
const (
	KindDevice    = "device"
	KindInterface = "interface"
	KindVlan      = "vlan"
	KindLacpGroup = "lacp group"
)

// NotFoundError names the kind and id of a missing record
type NotFoundError = util.NotFoundError

// Store is the record repository used by the service layer
type Store interface {
	ListDevices(ctx context.Context) ([]model.Device, error)
	GetDevice(ctx context.Context, id string) (model.Device, error)
	CreateDevice(ctx context.Context, d model.Device) (model.Device, error)
	UpdateDevice(ctx context.Context, id string, u model.DeviceUpdate) (model.Device, error)
	DeleteDevice(ctx context.Context, id string) error

	ListInterfaces(ctx context.Context, deviceID string) ([]model.Interface, error)
	GetInterface(ctx context.Context, id string) (model.Interface, error)
	CreateInterface(ctx context.Context, i model.Interface) (model.Interface, error)
	UpdateInterface(ctx context.Context, id string, u model.InterfaceUpdate) (model.Interface, error)
	DeleteInterfacesByDevice(ctx context.Context, deviceID string) error

	ListVlans(ctx context.Context, deviceID string) ([]model.Vlan, error)
	ListAllVlans(ctx context.Context) ([]model.Vlan, error)
	GetVlan(ctx context.Context, id string) (model.Vlan, error)
	CreateVlan(ctx context.Context, v model.Vlan) (model.Vlan, error)
	UpdateVlan(ctx context.Context, id string, u model.VlanUpdate) (model.Vlan, error)
	DeleteVlan(ctx context.Context, id string) error
	DeleteVlansByDevice(ctx context.Context, deviceID string) error

	ListLacpGroups(ctx context.Context, deviceID string) ([]model.LacpGroup, error)
	ListAllLacpGroups(ctx context.Context) ([]model.LacpGroup, error)
	GetLacpGroup(ctx context.Context, id string) (model.LacpGroup, error)
	CreateLacpGroup(ctx context.Context, g model.LacpGroup) (model.LacpGroup, error)
	UpdateLacpGroup(ctx context.Context, id string, u model.LacpGroupUpdate) (model.LacpGroup, error)
	DeleteLacpGroup(ctx context.Context, id string) error
	DeleteLacpGroupsByDevice(ctx context.Context, deviceID string) error

	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Stats summarizes the store contents
type Stats struct {
	TotalDevices    int `json:"totalDevices"`
	OnlineDevices   int `json:"onlineDevices"`
	TotalVlans      int `json:"totalVlans"`
	TotalLacpGroups int `json:"totalLacpGroups"`
}

// Snapshot is everything the generator needs for one device
type Snapshot struct {
	Device     model.Device
	Interfaces []model.Interface
	Vlans      []model.Vlan
	LacpGroups []model.LacpGroup
}

// LoadSnapshot reads a device and its interfaces, VLANs and LACP groups
func LoadSnapshot(ctx context.Context, s Store, deviceID string) (*Snapshot, error) {
	dev, err := s.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	ifaces, err := s.ListInterfaces(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	vlans, err := s.ListVlans(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	groups, err := s.ListLacpGroups(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Device: dev, Interfaces: ifaces, Vlans: vlans, LacpGroups: groups}, nil
}

func notFound(kind, id string) error {
	return util.NewNotFoundError(kind, id)
}
