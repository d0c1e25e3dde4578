package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Session is a unit of work pinned to one borrowed connection.
//
// Work runs inside a transaction that is begun on the first call to DB and
// is only persisted by Commit. A Session must not be shared between
// goroutines and must be closed exactly once, which Scoped and Transaction
// do for the caller.
type Session struct {
	id       string
	ctx      context.Context
	pool     *Pool
	conn     *sql.Conn
	tx       *sql.Tx
	handle   *gorm.DB
	acquired time.Time
	closed   bool
}

// ID returns the session identifier used in logs
func (s *Session) ID() string {
	return s.id
}

// DB returns a gorm handle bound to the session's transaction.
// After Close the handle carries ErrSessionClosed and runs nothing.
func (s *Session) DB() *gorm.DB {
	if s.closed {
		return s.failed(ErrSessionClosed)
	}

	if s.handle == nil {
		tx, err := s.conn.BeginTx(s.ctx, nil)
		if err != nil {
			return s.failed(err)
		}

		handle := s.pool.db.Session(&gorm.Session{Context: s.ctx, NewDB: true})
		handle.Statement.ConnPool = tx
		s.tx, s.handle = tx, handle
	}

	return s.handle
}

func (s *Session) failed(err error) *gorm.DB {
	db := s.pool.db.Session(&gorm.Session{Context: s.ctx, NewDB: true})
	_ = db.AddError(err)
	return db
}

// Commit persists pending work. The session stays usable and the next
// call to DB begins a new transaction.
func (s *Session) Commit() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx == nil {
		return nil
	}

	err := s.tx.Commit()
	s.tx, s.handle = nil, nil
	return err
}

// Rollback discards pending work
func (s *Session) Rollback() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx == nil {
		return nil
	}

	err := s.tx.Rollback()
	s.tx, s.handle = nil, nil
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// Close rolls back uncommitted work and returns the connection to the pool.
// Subsequent calls are no-ops.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}

	var errs []error
	if err := s.Rollback(); err != nil {
		errs = append(errs, err)
	}
	s.closed = true

	if err := s.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		errs = append(errs, err)
	}

	s.pool.log.Debug("session released", "session_id", s.id, "held", time.Since(s.acquired).String())
	return errors.Join(errs...)
}

// SessionFactory hands out sessions backed by a Pool
type SessionFactory struct {
	pool *Pool
}

// NewSessionFactory creates a session factory for the pool
func NewSessionFactory(pool *Pool) *SessionFactory {
	return &SessionFactory{pool: pool}
}

// Acquire borrows a connection and wraps it in a new Session.
// When no connection frees up within the pool timeout the error matches
// both ErrAcquireTimeout and ErrPoolExhausted.
func (f *SessionFactory) Acquire(ctx context.Context) (*Session, error) {
	conn, err := f.pool.acquire(ctx)
	if err != nil {
		if errors.Is(err, ErrPoolExhausted) {
			return nil, errors.Join(ErrAcquireTimeout, err)
		}
		return nil, err
	}

	s := &Session{
		id:       ulid.Make().String(),
		ctx:      ctx,
		pool:     f.pool,
		conn:     conn,
		acquired: time.Now(),
	}
	f.pool.log.Debug("session acquired", "session_id", s.id)
	return s, nil
}

// Scoped runs fn with a fresh session and always releases it, whether fn
// returns normally, fails or panics. Work is persisted only if fn calls
// Commit.
func (f *SessionFactory) Scoped(ctx context.Context, fn func(s *Session) error) (err error) {
	s, err := f.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	return fn(s)
}

// Transaction runs fn inside a transaction on a fresh session.
// If fn returns an error or panics, the transaction is rolled back.
// If fn succeeds, the transaction is committed.
func (f *SessionFactory) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return f.Scoped(ctx, func(s *Session) error {
		tx := s.DB()
		if tx.Error != nil {
			return tx.Error
		}
		if err := fn(tx); err != nil {
			return err
		}
		return s.Commit()
	})
}

type sessionContextKey struct{}

// ContextWithSession returns a copy of ctx carrying s
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext returns the session stored by ContextWithSession
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok && s != nil
}
