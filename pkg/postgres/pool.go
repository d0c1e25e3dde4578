package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync/atomic"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"vulnguardian/pkg/logger"
)

// Pool owns the physical connections to one PostgreSQL endpoint.
//
// At most PoolSize+MaxOverflow connections are borrowed at any time and
// PoolSize of them are kept idle after use; the rest are closed when
// returned. Connections are opened lazily unless ConnectOnOpen is set.
type Pool struct {
	db     *gorm.DB
	sqlDB  *sql.DB
	cfg    Config
	log    logger.LoggerInterface
	closed atomic.Bool
}

// Open creates a connection pool for cfg.DSN.
// An unparsable DSN, or an unreachable endpoint when ConnectOnOpen is set,
// yields ErrConnectFailed.
func Open(ctx context.Context, cfg Config, log logger.LoggerInterface) (*Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: empty DSN", ErrInvalidConfig)
	}
	return OpenWithDialector(ctx, postgres.Open(cfg.DSN), cfg, log)
}

// OpenWithDialector creates a pool over an already configured gorm dialector,
// e.g. one wrapping an existing *sql.DB.
func OpenWithDialector(ctx context.Context, dialector gorm.Dialector, cfg Config, log logger.LoggerInterface) (*Pool, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NoOpLogger()
	}
	log = log.With("component", "postgres")

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newGormLogger(log, cfg.Debug),
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, errors.Join(ErrConnectFailed, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Join(ErrConnectFailed, err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConns())
	sqlDB.SetMaxIdleConns(cfg.PoolSize)
	sqlDB.SetConnMaxLifetime(cfg.PoolRecycle)

	if cfg.ConnectOnOpen {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.PoolTimeout)
		defer cancel()

		if err := sqlDB.PingContext(pingCtx); err != nil {
			_ = sqlDB.Close()
			return nil, errors.Join(ErrConnectFailed, err)
		}
	}

	log.Info("database pool opened",
		"pool_size", cfg.PoolSize,
		"max_overflow", cfg.MaxOverflow,
		"pre_ping", cfg.PrePing,
		"pool_timeout", cfg.PoolTimeout.String(),
	)

	return &Pool{
		db:    db,
		sqlDB: sqlDB,
		cfg:   cfg,
		log:   log,
	}, nil
}

// acquire borrows one connection, waiting at most PoolTimeout.
// With PrePing every candidate is pinged and dead ones are discarded
// and replaced within the same wait budget.
func (p *Pool) acquire(ctx context.Context) (*sql.Conn, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	waitCtx, cancel := context.WithTimeout(ctx, p.cfg.PoolTimeout)
	defer cancel()

	var lastErr error
	for {
		conn, err := p.sqlDB.Conn(waitCtx)
		if err != nil {
			return nil, p.acquireError(ctx, waitCtx, err, lastErr)
		}
		if !p.cfg.PrePing {
			return conn, nil
		}

		err = conn.PingContext(waitCtx)
		if err == nil {
			return conn, nil
		}

		discard(conn)
		lastErr = err
		if waitCtx.Err() != nil {
			return nil, p.acquireError(ctx, waitCtx, err, lastErr)
		}
		p.log.Warn("discarded dead database connection", "error", err)
	}
}

// acquireError classifies a failed acquire. The pool only counts as exhausted when the wait
// itself timed out and no connection attempt failed on the way; a dial or ping that hangs
// until the deadline surfaces as a driver error and means the database is unreachable.
func (p *Pool) acquireError(ctx, waitCtx context.Context, err, lastErr error) error {
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case p.closed.Load():
		return ErrPoolClosed
	case err != waitCtx.Err():
		return errors.Join(ErrConnectFailed, err)
	case lastErr != nil:
		return errors.Join(ErrConnectFailed, lastErr)
	default:
		return fmt.Errorf("%w: no connection available within %s", ErrPoolExhausted, p.cfg.PoolTimeout)
	}
}

// discard closes the physical connection behind conn instead of returning it to the pool.
func discard(conn *sql.Conn) {
	_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	_ = conn.Close()
}

// GetDB returns a gorm handle on the pool that is not pinned to any connection
func (p *Pool) GetDB() *gorm.DB {
	return p.db
}

// Config returns the pool configuration
func (p *Pool) Config() Config {
	return p.cfg
}

// Ping verifies that a connection to the database can be established
func (p *Pool) Ping(ctx context.Context) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	return p.sqlDB.PingContext(ctx)
}

// Stats returns the connection pool statistics
func (p *Pool) Stats() sql.DBStats {
	return p.sqlDB.Stats()
}

// Healthcheck returns a function that pings the database.
//
// Example:
//
//	checks := map[string]func(context.Context) error{
//	    "postgres": pool.Healthcheck(),
//	}
func (p *Pool) Healthcheck() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Close closes every physical connection. Calling Close more than once is a no-op.
func (p *Pool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.log.Info("closing database pool")
	return p.sqlDB.Close()
}

// Shutdown returns a function that closes the pool, for use as a shutdown hook.
func (p *Pool) Shutdown() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return p.Close()
	}
}
