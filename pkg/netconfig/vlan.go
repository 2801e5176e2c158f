package netconfig

import (
	"context"
	"fmt"
	"time"

	"github.com/netconfig/netconfig/pkg/audit"
	"github.com/netconfig/netconfig/pkg/auth"
	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/util"
)

// ListVlans returns a device's VLANs in creation order
func (s *Service) ListVlans(ctx context.Context, deviceID string) ([]model.Vlan, error) {
	if err := s.authorize(ctx, deviceID, auth.PermRead); err != nil {
		return nil, err
	}
	if _, err := s.store.GetDevice(ctx, deviceID); err != nil {
		return nil, err
	}
	return s.store.ListVlans(ctx, deviceID)
}

// CreateVlan adds a VLAN to v.DeviceID. Duplicate VLAN IDs on a device
// are allowed.
func (s *Service) CreateVlan(ctx context.Context, v model.Vlan) (model.Vlan, error) {
	start := time.Now()
	created, err := s.createVlan(ctx, v)
	s.record(ctx, audit.OpVlanCreate, v.DeviceID, "", fmt.Sprintf("vlan %d %s", v.VlanID, v.Name), start, err)
	return created, err
}

func (s *Service) createVlan(ctx context.Context, v model.Vlan) (model.Vlan, error) {
	if v.DeviceID == "" {
		return model.Vlan{}, util.NewValidationError("deviceId is required")
	}
	if err := s.authorize(ctx, v.DeviceID, auth.PermWrite); err != nil {
		return model.Vlan{}, err
	}
	if err := v.Validate(); err != nil {
		return model.Vlan{}, err
	}
	if _, err := s.store.GetDevice(ctx, v.DeviceID); err != nil {
		return model.Vlan{}, err
	}
	v.ID = ""
	return s.store.CreateVlan(ctx, v)
}

// UpdateVlan renames or redescribes a VLAN
func (s *Service) UpdateVlan(ctx context.Context, id string, u model.VlanUpdate) (model.Vlan, error) {
	if err := u.Validate(); err != nil {
		return model.Vlan{}, err
	}
	v, err := s.store.GetVlan(ctx, id)
	if err != nil {
		return model.Vlan{}, err
	}
	if err := s.authorize(ctx, v.DeviceID, auth.PermWrite); err != nil {
		return model.Vlan{}, err
	}
	return s.store.UpdateVlan(ctx, id, u)
}

// DeleteVlan removes a VLAN. Ports keep their VLAN references.
func (s *Service) DeleteVlan(ctx context.Context, id string) error {
	start := time.Now()
	v, err := s.deleteVlan(ctx, id)
	s.record(ctx, audit.OpVlanDelete, v.DeviceID, "", fmt.Sprintf("vlan %d", v.VlanID), start, err)
	return err
}

func (s *Service) deleteVlan(ctx context.Context, id string) (model.Vlan, error) {
	v, err := s.store.GetVlan(ctx, id)
	if err != nil {
		return model.Vlan{}, err
	}
	if err := s.authorize(ctx, v.DeviceID, auth.PermWrite); err != nil {
		return v, err
	}
	return v, s.store.DeleteVlan(ctx, id)
}

// ListLacpGroups returns a device's LACP groups in creation order
func (s *Service) ListLacpGroups(ctx context.Context, deviceID string) ([]model.LacpGroup, error) {
	if err := s.authorize(ctx, deviceID, auth.PermRead); err != nil {
		return nil, err
	}
	if _, err := s.store.GetDevice(ctx, deviceID); err != nil {
		return nil, err
	}
	return s.store.ListLacpGroups(ctx, deviceID)
}

// CreateLacpGroup adds an LACP group to g.DeviceID
func (s *Service) CreateLacpGroup(ctx context.Context, g model.LacpGroup) (model.LacpGroup, error) {
	start := time.Now()
	created, err := s.createLacpGroup(ctx, g)
	s.record(ctx, audit.OpLacpCreate, g.DeviceID, "", fmt.Sprintf("group %d %s", g.GroupNumber, g.Name), start, err)
	return created, err
}

func (s *Service) createLacpGroup(ctx context.Context, g model.LacpGroup) (model.LacpGroup, error) {
	if g.DeviceID == "" {
		return model.LacpGroup{}, util.NewValidationError("deviceId is required")
	}
	if err := s.authorize(ctx, g.DeviceID, auth.PermWrite); err != nil {
		return model.LacpGroup{}, err
	}
	if err := g.Validate(); err != nil {
		return model.LacpGroup{}, err
	}
	if _, err := s.store.GetDevice(ctx, g.DeviceID); err != nil {
		return model.LacpGroup{}, err
	}
	g.ID = ""
	return s.store.CreateLacpGroup(ctx, g)
}

// UpdateLacpGroup applies a partial update to an LACP group
func (s *Service) UpdateLacpGroup(ctx context.Context, id string, u model.LacpGroupUpdate) (model.LacpGroup, error) {
	if err := u.Validate(); err != nil {
		return model.LacpGroup{}, err
	}
	g, err := s.store.GetLacpGroup(ctx, id)
	if err != nil {
		return model.LacpGroup{}, err
	}
	if err := s.authorize(ctx, g.DeviceID, auth.PermWrite); err != nil {
		return model.LacpGroup{}, err
	}
	return s.store.UpdateLacpGroup(ctx, id, u)
}

// DeleteLacpGroup removes an LACP group and detaches its members
func (s *Service) DeleteLacpGroup(ctx context.Context, id string) error {
	start := time.Now()
	g, err := s.deleteLacpGroup(ctx, id)
	s.record(ctx, audit.OpLacpDelete, g.DeviceID, "", fmt.Sprintf("group %d", g.GroupNumber), start, err)
	return err
}

func (s *Service) deleteLacpGroup(ctx context.Context, id string) (model.LacpGroup, error) {
	g, err := s.store.GetLacpGroup(ctx, id)
	if err != nil {
		return model.LacpGroup{}, err
	}
	if err := s.authorize(ctx, g.DeviceID, auth.PermWrite); err != nil {
		return g, err
	}
	return g, s.store.DeleteLacpGroup(ctx, id)
}
