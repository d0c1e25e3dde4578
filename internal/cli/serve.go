package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vulnguardian/config"
	httpDelivery "vulnguardian/delivery/http"
	"vulnguardian/pkg/api"
	"vulnguardian/pkg/logger"
	"vulnguardian/pkg/postgres"
	"vulnguardian/pkg/redis"
)

const readHeaderTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Ensure the schema and serve HTTP",
		Long: `Load the configuration, open the database pool, create missing tables,
connect to Redis when reachable and serve HTTP until SIGINT or SIGTERM.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	appLogger := newLogger(cfg, out)

	pool, err := postgres.Open(ctx, poolConfig(cfg), appLogger)
	if err != nil {
		return fmt.Errorf("open database pool: %w", err)
	}
	defer func() {
		if err := pool.Close(); err != nil {
			appLogger.Warn("Error closing database pool", "error", err)
		}
	}()

	modules := enabledModules(cfg, opts.Modules)
	if err := postgres.EnsureSchema(ctx, pool, buildRegistry(modules)); err != nil {
		return err
	}

	var cachePinger httpDelivery.Pinger
	if cache := connectCache(ctx, cfg, appLogger); cache != nil {
		cachePinger = cache
		defer func() {
			if err := cache.Close(); err != nil {
				appLogger.Warn("Error closing redis client", "error", err)
			}
		}()
	}

	apiClient := api.New(appLogger)
	router := httpDelivery.NewRouter(
		httpDelivery.NewHealthHandler(appLogger, apiClient, pool, cachePinger),
		httpDelivery.NewSystemHandler(httpDelivery.SystemInfo{
			Name:    cfg.Application.Name,
			Version: cfg.Application.Version,
			Modules: cfg.Modules.Enabled,
		}, appLogger, apiClient),
		postgres.NewSessionFactory(pool),
		apiClient,
		appLogger,
	)
	for _, m := range modules {
		if m.Routes != nil {
			router.Mount(m.Name, m.Routes)
		}
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return serveHTTP(ctx, server, cfg.Server.ShutdownTimeout, appLogger)
}

// connectCache connects to the Redis endpoint. It returns nil when Redis is unreachable;
// serve keeps running and /ready reports no cache.
func connectCache(ctx context.Context, cfg *config.Config, appLogger logger.LoggerInterface) redis.RedisClient {
	cache, err := redis.NewFromURL(ctx, cfg.RedisURL())
	if err != nil {
		appLogger.Warn("Redis unavailable, continuing without cache", "url", cfg.RedisURL(), "error", err)
		return nil
	}

	appLogger.Info("Redis connected",
		"addrs", cache.Addrs(),
		"db", cache.DB(),
		"pool_size", cache.PoolSize(),
		"dial_timeout", cache.DialTimeout().String(),
	)
	return cache
}

// serveHTTP runs server until ctx is done or SIGINT/SIGTERM arrives, then shuts it down gracefully.
func serveHTTP(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, appLogger logger.LoggerInterface) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Service starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	appLogger.Info("Server exited")
	return nil
}
