package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidURL    = errors.New("redis: invalid URL")
	ErrConnectFailed = errors.New("redis: failed to connect")
)

// RedisClient defines the interface for the Redis endpoint used for caching and task queues
type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
	Addrs() []string
	DB() int
	DialTimeout() time.Duration
	PoolSize() int
}

// Option is a function that configures a Client
type Option func(*Client)

// Client represents a Redis client wrapper
type Client struct {
	opts   *redis.UniversalOptions
	client redis.UniversalClient
}

func defaultOptions() *redis.UniversalOptions {
	return &redis.UniversalOptions{
		Addrs:        []string{"localhost:6379"},
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	}
}

// New creates a new Redis client with the provided options and checks the connection
func New(ctx context.Context, opts ...Option) (RedisClient, error) {
	client := &Client{opts: defaultOptions()}

	// Apply options
	for _, opt := range opts {
		opt(client)
	}

	client.client = redis.NewUniversalClient(client.opts)

	pingCtx, cancel := context.WithTimeout(ctx, client.opts.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx); err != nil {
		_ = client.client.Close()
		return nil, errors.Join(ErrConnectFailed, err)
	}

	return client, nil
}

// NewFromURL creates a client from a redis://[user:password@]host:port/db URL.
// Options are applied after the URL settings and may override them.
func NewFromURL(ctx context.Context, rawURL string, opts ...Option) (RedisClient, error) {
	parsed, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	return New(ctx, append(urlOptions(parsed), opts...)...)
}

func urlOptions(parsed *redis.Options) []Option {
	return []Option{
		WithAddrs([]string{parsed.Addr}),
		WithUsername(parsed.Username),
		WithPassword(parsed.Password),
		WithDB(parsed.DB),
	}
}

// Ping checks that the server answers
func (r *Client) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (r *Client) Close() error {
	return r.client.Close()
}

// Addrs returns the Redis server addresses
func (r *Client) Addrs() []string {
	return r.opts.Addrs
}

// DB returns the Redis database number
func (r *Client) DB() int {
	return r.opts.DB
}

// DialTimeout returns the dial timeout setting
func (r *Client) DialTimeout() time.Duration {
	return r.opts.DialTimeout
}

// PoolSize returns the connection pool size
func (r *Client) PoolSize() int {
	return r.opts.PoolSize
}
