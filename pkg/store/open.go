package store

import (
	"context"
	"fmt"

	"github.com/netconfig/netconfig/pkg/util"
)

// Backend names
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMySQL  = "mysql"
)

// Options selects and configures a backend
type Options struct {
	Backend   string // memory (default), redis, mysql
	RedisAddr string
	RedisDB   int
	MySQLDSN  string
}

// Open returns the store described by opts
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		util.Debugf("using in-memory store")
		return NewMemoryStore(), nil
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("%w: redis backend needs an address", util.ErrInvalidConfig)
		}
		util.WithField("addr", opts.RedisAddr).Debugf("using redis store (db %d)", opts.RedisDB)
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisDB)
	case BackendMySQL:
		if opts.MySQLDSN == "" {
			return nil, fmt.Errorf("%w: mysql backend needs a DSN", util.ErrInvalidConfig)
		}
		util.Debugf("using mysql store")
		return NewSQLStore(ctx, opts.MySQLDSN)
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", util.ErrInvalidConfig, opts.Backend)
	}
}
