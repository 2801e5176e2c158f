// Package netconfig is the service layer: it enforces permissions,
// validates input, drives the vendor dialects and records audit events on
// top of a store.
package netconfig

import (
	"context"
	"os/user"
	"time"

	"github.com/netconfig/netconfig/pkg/audit"
	"github.com/netconfig/netconfig/pkg/auth"
	"github.com/netconfig/netconfig/pkg/store"
	"github.com/netconfig/netconfig/pkg/util"

	// vendor dialects
	_ "github.com/netconfig/netconfig/pkg/dialect/cisco"
	_ "github.com/netconfig/netconfig/pkg/dialect/juniper"
)

// Service is the top-level API entry point
type Service struct {
	store   store.Store
	audit   audit.Logger
	checker *auth.Checker
	now     func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithAudit installs an audit logger
func WithAudit(l audit.Logger) Option {
	return func(s *Service) { s.audit = l }
}

// WithChecker installs a permission checker. If nil, all permission
// checks are skipped.
func WithChecker(c *auth.Checker) Option {
	return func(s *Service) { s.checker = c }
}

// WithClock overrides the time source used for sync timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a service over st
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		audit: audit.NopLogger{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store
func (s *Service) Store() store.Store {
	return s.store
}

// Checker returns the permission checker, or nil
func (s *Service) Checker() *auth.Checker {
	return s.checker
}

// Audit returns the audit logger
func (s *Service) Audit() audit.Logger {
	return s.audit
}

// authorize checks perm on deviceID for the user in ctx
func (s *Service) authorize(ctx context.Context, deviceID string, perm auth.Permission) error {
	if s.checker == nil {
		return nil
	}
	u, _ := auth.UserFromContext(ctx)
	return s.checker.Check(u, deviceID, perm)
}

// authenticated requires a user in ctx when a checker is installed
func (s *Service) authenticated(ctx context.Context) error {
	if s.checker == nil {
		return nil
	}
	if _, ok := auth.UserFromContext(ctx); !ok {
		return util.ErrUnauthenticated
	}
	return nil
}

func (s *Service) requireAdmin(ctx context.Context) error {
	if s.checker == nil {
		return nil
	}
	u, _ := auth.UserFromContext(ctx)
	return s.checker.RequireAdmin(u)
}

// actor names the acting user for logs and audit events. Calls without a
// user in ctx come from the local CLI.
func actor(ctx context.Context) string {
	if u, ok := auth.UserFromContext(ctx); ok {
		return u.Username
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}

type clientIPKey struct{}

// WithClientIP returns a context that records the caller's address in
// audit events
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// record writes an audit event for a finished mutation. Audit failures are
// logged, never returned.
func (s *Service) record(ctx context.Context, op, device, vendor, detail string, start time.Time, err error) {
	event := audit.NewEvent(actor(ctx), device, op).
		WithVendor(vendor).
		WithDetail(detail).
		WithDuration(time.Since(start)).
		WithResult(err)
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		event.WithClientIP(ip)
	}
	if logErr := s.audit.Log(event); logErr != nil {
		util.WithOperation(op).Warnf("audit log failed: %v", logErr)
	}
}
