package netconfig

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/netconfig/netconfig/pkg/audit"
	"github.com/netconfig/netconfig/pkg/auth"
	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/util"
)

// ListInterfaces returns a device's ports in creation order
func (s *Service) ListInterfaces(ctx context.Context, deviceID string) ([]model.Interface, error) {
	if err := s.authorize(ctx, deviceID, auth.PermRead); err != nil {
		return nil, err
	}
	if _, err := s.store.GetDevice(ctx, deviceID); err != nil {
		return nil, err
	}
	return s.store.ListInterfaces(ctx, deviceID)
}

// GetInterface returns a port by ID
func (s *Service) GetInterface(ctx context.Context, id string) (model.Interface, error) {
	i, err := s.store.GetInterface(ctx, id)
	if err != nil {
		return model.Interface{}, err
	}
	if err := s.authorize(ctx, i.DeviceID, auth.PermRead); err != nil {
		return model.Interface{}, err
	}
	return i, nil
}

// UpdateInterface applies a partial update to one port
func (s *Service) UpdateInterface(ctx context.Context, id string, u model.InterfaceUpdate) (model.Interface, error) {
	start := time.Now()
	i, err := s.updateInterface(ctx, id, u)
	s.record(ctx, audit.OpInterfaceUpdate, i.DeviceID, "", fmt.Sprintf("%s %s", nameOr(i, id), u), start, err)
	return i, err
}

func (s *Service) updateInterface(ctx context.Context, id string, u model.InterfaceUpdate) (model.Interface, error) {
	if err := u.Validate(); err != nil {
		return model.Interface{}, err
	}
	existing, err := s.store.GetInterface(ctx, id)
	if err != nil {
		return model.Interface{}, err
	}
	if err := s.authorize(ctx, existing.DeviceID, auth.PermWrite); err != nil {
		return existing, err
	}
	if err := s.checkGroupRef(ctx, existing.DeviceID, &u); err != nil {
		return existing, err
	}
	return s.store.UpdateInterface(ctx, id, u)
}

// BulkUpdateInterfaces applies the same update to several ports of one
// device. Every ID is checked before any port is changed.
func (s *Service) BulkUpdateInterfaces(ctx context.Context, ids []string, u model.InterfaceUpdate) ([]model.Interface, error) {
	start := time.Now()
	updated, deviceID, err := s.bulkUpdate(ctx, ids, u)
	s.record(ctx, audit.OpInterfaceBulk, deviceID, "", fmt.Sprintf("%d ports %s", len(ids), u), start, err)
	return updated, err
}

func (s *Service) bulkUpdate(ctx context.Context, ids []string, u model.InterfaceUpdate) ([]model.Interface, string, error) {
	if len(ids) == 0 {
		return nil, "", util.NewValidationError("IDs array is required and cannot be empty")
	}
	if err := u.Validate(); err != nil {
		return nil, "", err
	}

	first, err := s.store.GetInterface(ctx, ids[0])
	if err != nil {
		return nil, "", err
	}
	deviceID := first.DeviceID
	if err := s.authorize(ctx, deviceID, auth.PermWrite); err != nil {
		return nil, deviceID, err
	}

	for _, id := range ids[1:] {
		i, err := s.store.GetInterface(ctx, id)
		if err != nil {
			return nil, deviceID, err
		}
		if i.DeviceID != deviceID {
			return nil, deviceID, util.NewValidationError("all interfaces must belong to the same device")
		}
	}
	if err := s.checkGroupRef(ctx, deviceID, &u); err != nil {
		return nil, deviceID, err
	}

	updated := make([]model.Interface, 0, len(ids))
	for _, id := range ids {
		i, err := s.store.UpdateInterface(ctx, id, u)
		if err != nil {
			return updated, deviceID, fmt.Errorf("updating interface %s: %w", id, err)
		}
		updated = append(updated, i)
	}
	return updated, deviceID, nil
}

// checkGroupRef verifies that an LACP group set by u exists on deviceID
func (s *Service) checkGroupRef(ctx context.Context, deviceID string, u *model.InterfaceUpdate) error {
	if u.LacpGroupID == nil || u.ClearLacpGroup {
		return nil
	}
	g, err := s.store.GetLacpGroup(ctx, *u.LacpGroupID)
	if errors.Is(err, util.ErrNotFound) {
		return util.NewValidationError(fmt.Sprintf("lacp group %s does not exist", *u.LacpGroupID))
	}
	if err != nil {
		return err
	}
	if g.DeviceID != deviceID {
		return util.NewValidationError(fmt.Sprintf("lacp group %s belongs to another device", *u.LacpGroupID))
	}
	return nil
}

func nameOr(i model.Interface, id string) string {
	if i.Name != "" {
		return i.Name
	}
	return id
}
