package netconfig

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/netconfig/netconfig/pkg/audit"
	"github.com/netconfig/netconfig/pkg/auth"
	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/store"
	"github.com/netconfig/netconfig/pkg/util"
)

// Defaults for a newly created device
const (
	DefaultPortCount       = 24
	DefaultVlanID          = 1
	DefaultVlanName        = "default"
	DefaultVlanDescription = "Default VLAN"
)

// DefaultPortName returns the name of the n-th (1-based) default port for
// vendor
func DefaultPortName(vendor model.Vendor, n int) string {
	if vendor == model.VendorCisco {
		return fmt.Sprintf("GigabitEthernet0/%d", n)
	}
	return fmt.Sprintf("ge-0/0/%d", n)
}

// ListDevices returns the devices the acting user may read
func (s *Service) ListDevices(ctx context.Context) ([]model.Device, error) {
	if err := s.authenticated(ctx); err != nil {
		return nil, err
	}
	devices, err := s.store.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	if s.checker == nil {
		return devices, nil
	}

	u, _ := auth.UserFromContext(ctx)
	visible := devices[:0]
	for _, d := range devices {
		if s.checker.Allowed(u, d.ID, auth.PermRead) {
			visible = append(visible, d)
		}
	}
	return visible, nil
}

// GetDevice returns a device by ID
func (s *Service) GetDevice(ctx context.Context, id string) (model.Device, error) {
	if err := s.authorize(ctx, id, auth.PermRead); err != nil {
		return model.Device{}, err
	}
	return s.store.GetDevice(ctx, id)
}

// ResolveDevice finds a device by ID or, failing that, by hostname
func (s *Service) ResolveDevice(ctx context.Context, ref string) (model.Device, error) {
	d, err := s.store.GetDevice(ctx, ref)
	if err != nil && !errors.Is(err, util.ErrNotFound) {
		return model.Device{}, err
	}
	if err != nil {
		devices, lerr := s.store.ListDevices(ctx)
		if lerr != nil {
			return model.Device{}, lerr
		}
		found := false
		for _, cand := range devices {
			if cand.Hostname == ref {
				d, found = cand, true
				break
			}
		}
		if !found {
			return model.Device{}, util.NewNotFoundError(store.KindDevice, ref)
		}
	}
	if err := s.authorize(ctx, d.ID, auth.PermRead); err != nil {
		return model.Device{}, err
	}
	return d, nil
}

// CreateDevice adds a device in the offline state together with its
// default ports and the default VLAN. Only administrators may create
// devices.
func (s *Service) CreateDevice(ctx context.Context, d model.Device) (model.Device, error) {
	start := time.Now()
	created, err := s.createDevice(ctx, d)
	s.record(ctx, audit.OpDeviceCreate, d.Hostname, string(d.Vendor), d.IPAddress, start, err)
	return created, err
}

func (s *Service) createDevice(ctx context.Context, d model.Device) (model.Device, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return model.Device{}, err
	}
	if err := d.Validate(); err != nil {
		return model.Device{}, err
	}

	d.ID = ""
	d.Status = model.DeviceOffline
	d.LastSyncedAt = nil
	created, err := s.store.CreateDevice(ctx, d)
	if err != nil {
		return model.Device{}, fmt.Errorf("creating device: %w", err)
	}

	for n := 1; n <= DefaultPortCount; n++ {
		_, err := s.store.CreateInterface(ctx, model.Interface{
			DeviceID:          created.ID,
			Name:              DefaultPortName(created.Vendor, n),
			Status:            model.PortDown,
			Speed:             model.SpeedAuto,
			Duplex:            model.DuplexAuto,
			Mode:              model.ModeAccess,
			AccessVlan:        model.IntPtr(DefaultVlanID),
			TrunkAllowedVlans: []int{},
		})
		if err != nil {
			return created, fmt.Errorf("creating default port %d: %w", n, err)
		}
	}

	_, err = s.store.CreateVlan(ctx, model.Vlan{
		DeviceID:    created.ID,
		VlanID:      DefaultVlanID,
		Name:        DefaultVlanName,
		Description: DefaultVlanDescription,
	})
	if err != nil {
		return created, fmt.Errorf("creating default vlan: %w", err)
	}

	util.WithDevice(created.Hostname).Infof("Created %s device with %d ports", created.Vendor, DefaultPortCount)
	return created, nil
}

// UpdateDevice applies a partial update to a device
func (s *Service) UpdateDevice(ctx context.Context, id string, u model.DeviceUpdate) (model.Device, error) {
	start := time.Now()
	d, err := s.updateDevice(ctx, id, u)
	s.record(ctx, audit.OpDeviceUpdate, hostnameOr(d, id), string(d.Vendor), "", start, err)
	return d, err
}

func (s *Service) updateDevice(ctx context.Context, id string, u model.DeviceUpdate) (model.Device, error) {
	if err := s.authorize(ctx, id, auth.PermWrite); err != nil {
		return model.Device{}, err
	}
	if err := u.Validate(); err != nil {
		return model.Device{}, err
	}
	return s.store.UpdateDevice(ctx, id, u)
}

// DeleteDevice removes a device with everything attached to it and the
// access grants on it
func (s *Service) DeleteDevice(ctx context.Context, id string) error {
	start := time.Now()
	d, err := s.deleteDevice(ctx, id)
	s.record(ctx, audit.OpDeviceDelete, hostnameOr(d, id), string(d.Vendor), "", start, err)
	return err
}

func (s *Service) deleteDevice(ctx context.Context, id string) (model.Device, error) {
	if err := s.authorize(ctx, id, auth.PermDelete); err != nil {
		return model.Device{}, err
	}
	d, err := s.store.GetDevice(ctx, id)
	if err != nil {
		return model.Device{}, err
	}
	if err := s.store.DeleteDevice(ctx, id); err != nil {
		return d, err
	}
	if s.checker != nil {
		if err := s.checker.Registry().RevokeDevice(id); err != nil {
			util.WithDevice(d.Hostname).Warnf("removing access grants: %v", err)
		}
	}
	util.WithDevice(d.Hostname).Infof("Deleted device")
	return d, nil
}

// Stats summarizes the store
func (s *Service) Stats(ctx context.Context) (store.Stats, error) {
	if err := s.authenticated(ctx); err != nil {
		return store.Stats{}, err
	}
	return s.store.Stats(ctx)
}

func hostnameOr(d model.Device, id string) string {
	if d.Hostname != "" {
		return d.Hostname
	}
	return id
}
