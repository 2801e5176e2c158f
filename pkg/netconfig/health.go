package netconfig

import (
	"context"

	"github.com/netconfig/netconfig/pkg/auth"
	"github.com/netconfig/netconfig/pkg/health"
	"github.com/netconfig/netconfig/pkg/store"
	"github.com/netconfig/netconfig/pkg/util"
)

// CheckHealth runs the default health checks against a device's stored
// configuration
func (s *Service) CheckHealth(ctx context.Context, deviceID string) (*health.Report, error) {
	if err := s.authorize(ctx, deviceID, auth.PermRead); err != nil {
		return nil, err
	}
	snap, err := store.LoadSnapshot(ctx, s.store, deviceID)
	if err != nil {
		return nil, err
	}
	report := health.NewChecker().Run(ctx, snap)
	util.WithDevice(snap.Device.Hostname).Debugf("Health %s in %v", report.Overall, report.Duration)
	return report, nil
}
