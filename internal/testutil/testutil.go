//go:build integration

// Package testutil provides test helpers for integration tests.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-sql-driver/mysql"
)

// Test Redis database. Integration tests flush it freely.
const RedisTestDB = 9

// RedisAddr returns the address of the test Redis (IP:port) from
// NETCONFIG_TEST_REDIS_ADDR, defaulting to localhost.
func RedisAddr() string {
	if addr := os.Getenv("NETCONFIG_TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	return "127.0.0.1:6379"
}

// SkipIfNoRedis skips the test if the test Redis is not reachable.
func SkipIfNoRedis(t *testing.T) {
	t.Helper()

	addr := RedisAddr()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("test Redis not reachable at %s: %v", addr, err)
	}
}

// MySQLDSN returns the DSN of the test MySQL database from
// NETCONFIG_TEST_MYSQL_DSN. Empty means no database is configured.
func MySQLDSN() string {
	return os.Getenv("NETCONFIG_TEST_MYSQL_DSN")
}

// SkipIfNoMySQL skips the test if the test MySQL database is not configured
// or not reachable.
func SkipIfNoMySQL(t *testing.T) {
	t.Helper()

	dsn := MySQLDSN()
	if dsn == "" {
		t.Skip("test MySQL not configured: set NETCONFIG_TEST_MYSQL_DSN")
	}
	if _, err := mysql.ParseDSN(dsn); err != nil {
		t.Fatalf("invalid NETCONFIG_TEST_MYSQL_DSN: %v", err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("test MySQL not available: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Skipf("test MySQL not reachable: %v", err)
	}
}

// Context returns a context with a reasonable timeout for tests.
// The cancel function is registered via t.Cleanup.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
