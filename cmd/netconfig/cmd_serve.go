package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/netconfig/netconfig/pkg/api"
	"github.com/netconfig/netconfig/pkg/auth"
	"github.com/netconfig/netconfig/pkg/netconfig"
	"github.com/netconfig/netconfig/pkg/util"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API. Settings come from the environment, optionally
loaded from a .env file in the working directory:

  NETCONFIG_ADDR         listen address (default :5000)
  NETCONFIG_JWT_SECRET   token signing secret (required)
  NETCONFIG_TOKEN_TTL    token lifetime (default 24h)
  NETCONFIG_STORE        memory, redis or mysql
  NETCONFIG_REDIS_ADDR   redis address
  NETCONFIG_REDIS_DB     redis database number
  NETCONFIG_MYSQL_DSN    mysql DSN
  NETCONFIG_INVENTORY    inventory seeding the memory store
  NETCONFIG_ACCESS_FILE  users and device grants
  NETCONFIG_AUDIT_LOG    audit log path
  NETCONFIG_LOG_LEVEL    debug, info, warn or error (default info)
  NETCONFIG_LOG_FORMAT   text or json

Unset variables fall back to the global flags and the settings file.
When no users exist an admin account (admin/password) is created.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		cfg, err := loadServeConfig()
		if err != nil {
			return err
		}
		return runServer(cmd.Context(), cfg)
	},
}

// serveConfig holds the server settings after environment overrides
type serveConfig struct {
	Addr       string
	JWTSecret  string
	TokenTTL   time.Duration
	Store      string
	RedisAddr  string
	RedisDB    int
	MySQLDSN   string
	Inventory  string
	AccessFile string
	AuditLog   string
	LogLevel   string
	LogFormat  string
}

func loadServeConfig() (*serveConfig, error) {
	cfg := &serveConfig{
		Addr:       getEnv("NETCONFIG_ADDR", ":5000"),
		JWTSecret:  os.Getenv("NETCONFIG_JWT_SECRET"),
		Store:      getEnv("NETCONFIG_STORE", storeBackend),
		RedisAddr:  getEnv("NETCONFIG_REDIS_ADDR", redisAddr),
		MySQLDSN:   getEnv("NETCONFIG_MYSQL_DSN", mysqlDSN),
		Inventory:  getEnv("NETCONFIG_INVENTORY", inventoryPath),
		AccessFile: getEnv("NETCONFIG_ACCESS_FILE", userSettings.GetAccessFile()),
		AuditLog:   getEnv("NETCONFIG_AUDIT_LOG", userSettings.GetAuditLog()),
		LogLevel:   getEnv("NETCONFIG_LOG_LEVEL", "info"),
		LogFormat:  getEnv("NETCONFIG_LOG_FORMAT", "text"),
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("NETCONFIG_REDIS_DB", redisDB); err != nil {
		return nil, err
	}
	ttl := getEnv("NETCONFIG_TOKEN_TTL", "24h")
	if cfg.TokenTTL, err = time.ParseDuration(ttl); err != nil || cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("%w: NETCONFIG_TOKEN_TTL: invalid duration %q", util.ErrInvalidConfig, ttl)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: NETCONFIG_JWT_SECRET is required", util.ErrInvalidConfig)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: not a number: %q", util.ErrInvalidConfig, key, v)
	}
	return n, nil
}

func runServer(ctx context.Context, cfg *serveConfig) error {
	if err := util.SetLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: NETCONFIG_LOG_LEVEL: %v", util.ErrInvalidConfig, err)
	}
	if cfg.LogFormat == "json" {
		util.SetJSONFormat()
	}

	// the global flags feed initService and shutdown
	storeBackend, redisAddr, redisDB, mysqlDSN, inventoryPath =
		cfg.Store, cfg.RedisAddr, cfg.RedisDB, cfg.MySQLDSN, cfg.Inventory
	userSettings.AuditLog = cfg.AuditLog
	if err := initService(ctx); err != nil {
		return err
	}
	defer shutdown(context.Background())

	registry, err := auth.LoadRegistry(cfg.AccessFile)
	if err != nil {
		return err
	}
	if _, err := registry.EnsureDefaultAdmin(); err != nil {
		return fmt.Errorf("creating default admin: %w", err)
	}

	svc = netconfig.New(st,
		netconfig.WithAudit(auditLogger),
		netconfig.WithChecker(auth.NewChecker(registry)),
	)
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	server, err := api.NewServer(svc, tokens)
	if err != nil {
		return err
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		util.WithFields(map[string]interface{}{
			"addr":  cfg.Addr,
			"store": storeOptions().Backend,
		}).Infof("HTTP API listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	util.Infof("Shutting down HTTP API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	// changes made over the API are saved to the inventory on exit
	markDirty()
	return nil
}
