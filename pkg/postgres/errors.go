package postgres

import "errors"

var (
	ErrInvalidConfig      = errors.New("postgres: invalid pool configuration")
	ErrConnectFailed      = errors.New("postgres: failed to connect to database")
	ErrPoolExhausted      = errors.New("postgres: connection pool exhausted")
	ErrPoolClosed         = errors.New("postgres: connection pool closed")
	ErrAcquireTimeout     = errors.New("postgres: timed out acquiring session")
	ErrSessionClosed      = errors.New("postgres: session already closed")
	ErrSchemaCreateFailed = errors.New("postgres: failed to create schema")
	ErrHealthcheckFailed  = errors.New("postgres: healthcheck failed")
)
