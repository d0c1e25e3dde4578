package cli

import (
	"io"

	"vulnguardian/config"
	"vulnguardian/pkg/logger"
	"vulnguardian/pkg/postgres"
)

func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.EnvFile == "" {
		return config.LoadConfig()
	}

	src, err := config.NewEnvSource(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	return config.Load(src)
}

func newLogger(cfg *config.Config, out io.Writer) logger.LoggerInterface {
	level := logger.ParseLevel(cfg.Logging.Level)

	var appLogger logger.LoggerInterface
	if cfg.Logging.Format == "text" {
		appLogger = logger.NewText(out, level)
	} else {
		appLogger = logger.NewJSON(out, level)
	}
	return appLogger.With("app", cfg.Application.Name, "version", cfg.Application.Version)
}

func poolConfig(cfg *config.Config) postgres.Config {
	return postgres.Config{
		DSN:           cfg.DatabaseURL(),
		PoolSize:      cfg.Database.PoolSize,
		MaxOverflow:   cfg.Database.MaxOverflow,
		PrePing:       cfg.Database.PrePing,
		PoolTimeout:   cfg.Database.PoolTimeout,
		PoolRecycle:   cfg.Database.PoolRecycle,
		ConnectOnOpen: cfg.Database.ConnectOnOpen,
		Debug:         cfg.Application.Debug,
	}
}

func enabledModules(cfg *config.Config, modules []Module) []Module {
	var enabled []Module
	for _, m := range modules {
		if cfg.ModuleEnabled(m.Name) {
			enabled = append(enabled, m)
		}
	}
	return enabled
}

func buildRegistry(modules []Module) *postgres.Registry {
	registry := postgres.NewRegistry()
	for _, m := range modules {
		registry.Register(m.Models...)
	}
	return registry
}
