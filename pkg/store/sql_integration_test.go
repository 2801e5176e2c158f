//go:build integration

package store

import (
	"testing"

	"github.com/netconfig/netconfig/internal/testutil"
)

func newTestSQLStore(t *testing.T) Store {
	t.Helper()
	testutil.SkipIfNoMySQL(t)
	ctx := testutil.Context(t)

	s, err := NewSQLStore(ctx, testutil.MySQLDSN())
	if err != nil {
		t.Fatalf("NewSQLStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	m := s.db.Migrator()
	if err := m.DropTable(&deviceRow{}, &interfaceRow{}, &vlanRow{}, &lacpGroupRow{}); err != nil {
		t.Fatalf("dropping tables: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func TestSQLStore(t *testing.T) {
	runStoreSuite(t, newTestSQLStore)
}
