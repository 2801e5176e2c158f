package netconfig

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/netconfig/netconfig/pkg/audit"
	"github.com/netconfig/netconfig/pkg/auth"
	"github.com/netconfig/netconfig/pkg/dialect"
	"github.com/netconfig/netconfig/pkg/model"
	"github.com/netconfig/netconfig/pkg/store"
	"github.com/netconfig/netconfig/pkg/util"
)

// ImportResult is the outcome of a successful import
type ImportResult struct {
	Device model.Device `json:"device"`
	Vlans  []model.Vlan `json:"vlans"`
}

// ImportError reports a store failure part way through an import. The
// VLANs in Committed were written before the failure and are not rolled
// back.
type ImportError struct {
	Committed []model.Vlan
	Err       error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import failed after %d vlans: %v", len(e.Committed), e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// GenerateConfig renders a device's configuration in its vendor's syntax
func (s *Service) GenerateConfig(ctx context.Context, deviceID string) (string, error) {
	if err := s.authorize(ctx, deviceID, auth.PermRead); err != nil {
		return "", err
	}
	snap, err := store.LoadSnapshot(ctx, s.store, deviceID)
	if err != nil {
		return "", err
	}
	d, err := dialect.For(snap.Device.Vendor)
	if err != nil {
		return "", err
	}
	util.WithDevice(snap.Device.Hostname).Debugf("Generating %s config: %d interfaces, %d vlans, %d lacp groups",
		snap.Device.Vendor, len(snap.Interfaces), len(snap.Vlans), len(snap.LacpGroups))
	return d.Generate(snap.Device, snap.Interfaces, snap.Vlans, snap.LacpGroups), nil
}

// ImportConfig reads VLAN definitions out of text and adds them to the
// device, then marks it online. Re-importing the same text creates
// duplicate VLANs.
func (s *Service) ImportConfig(ctx context.Context, deviceID, text string) (*ImportResult, error) {
	start := time.Now()
	result, dev, err := s.importConfig(ctx, deviceID, text)
	detail := ""
	if result != nil {
		detail = fmt.Sprintf("%d vlans", len(result.Vlans))
	}
	s.record(ctx, audit.OpConfigImport, hostnameOr(dev, deviceID), string(dev.Vendor), detail, start, err)
	return result, err
}

func (s *Service) importConfig(ctx context.Context, deviceID, text string) (*ImportResult, model.Device, error) {
	if err := s.authorize(ctx, deviceID, auth.PermWrite); err != nil {
		return nil, model.Device{}, err
	}
	dev, err := s.store.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, model.Device{}, err
	}
	if text == "" {
		return nil, dev, util.NewValidationError("configuration text is required")
	}
	d, err := dialect.For(dev.Vendor)
	if err != nil {
		return nil, dev, err
	}

	parsed := d.Parse(text)
	log := util.WithDevice(dev.Hostname)
	log.Debugf("Parsed %d vlans from %s config", len(parsed), dev.Vendor)

	vlans := make([]model.Vlan, 0, len(parsed))
	for _, pv := range parsed {
		v, err := s.store.CreateVlan(ctx, pv.ToVlan(deviceID))
		if err != nil {
			return nil, dev, &ImportError{Committed: vlans, Err: fmt.Errorf("vlan %d (line %d): %w", pv.VlanID, pv.Line, err)}
		}
		vlans = append(vlans, v)
	}

	now := s.now().UTC()
	online := model.DeviceOnline
	dev, err = s.store.UpdateDevice(ctx, deviceID, model.DeviceUpdate{Status: &online, LastSyncedAt: &now})
	if err != nil {
		return nil, dev, &ImportError{Committed: vlans, Err: fmt.Errorf("updating sync status: %w", err)}
	}

	log.Infof("Imported %d vlans", len(vlans))
	return &ImportResult{Device: dev, Vlans: vlans}, dev, nil
}

// DiffConfig returns a unified diff from running, the configuration
// currently on the device, to the configuration the store would generate.
// An empty string means they match. Line endings and trailing newlines of
// running are ignored.
func (s *Service) DiffConfig(ctx context.Context, deviceID, running string) (string, error) {
	generated, err := s.GenerateConfig(ctx, deviceID)
	if err != nil {
		return "", err
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(normalize(running)),
		B:        difflib.SplitLines(generated),
		FromFile: "running",
		ToFile:   "generated",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("generating diff: %w", err)
	}
	return text, nil
}

func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimRight(text, "\n")
}
