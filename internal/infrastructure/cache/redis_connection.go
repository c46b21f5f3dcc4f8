package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redsync/redsync/v4"
	goredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure RedisConnection implements Locker
var _ Locker = (*RedisConnection)(nil)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultHealthInterval = 10 * time.Second
)

// RedisConnection owns the Redis client shared by the cache manager and the distributed locker.
// The client is created on first use.
type RedisConnection struct {
	options *redis.Options
	logger  *zap.Logger

	// healthInterval is how long a verified client is trusted before the
	// next PING
	healthInterval time.Duration
	checkedAt      atomic.Int64

	mu     sync.Mutex
	client atomic.Pointer[redis.Client]
	locks  atomic.Pointer[redsync.Redsync]
}

// ConnectionOption is a functional option for configuring RedisConnection
type ConnectionOption func(*RedisConnection)

// WithConnectionLogger sets the logger for the connection
func WithConnectionLogger(logger *zap.Logger) ConnectionOption {
	return func(c *RedisConnection) {
		c.logger = logger
	}
}

// WithHealthInterval sets how often Database re-verifies the client
func WithHealthInterval(d time.Duration) ConnectionOption {
	return func(c *RedisConnection) {
		c.healthInterval = d
	}
}

// NewRedisConnection creates a lazily connected Redis wrapper
func NewRedisConnection(cfg config.RedisConfig, opts ...ConnectionOption) (*RedisConnection, error) {
	addr := cfg.Addr()
	if addr == "" {
		return nil, ErrEmptyConnectionString
	}

	c := &RedisConnection{
		options: &redis.Options{
			Addr:        addr,
			Password:    cfg.Password,
			DB:          cfg.DB,
			DialTimeout: defaultConnectTimeout,
		},
		logger:         zap.NewNop(),
		healthInterval: defaultHealthInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Database returns the connected client, connecting on first use. A client
// that has not been verified within the health interval is pinged, and
// replaced when the PING fails.
func (c *RedisConnection) Database(ctx context.Context) (*redis.Client, error) {
	if client := c.client.Load(); client != nil && c.fresh() {
		return client, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if client := c.client.Load(); client != nil {
		if c.fresh() {
			return client, nil
		}
		err := client.Ping(ctx).Err()
		if err == nil {
			c.checkedAt.Store(time.Now().UnixNano())
			return client, nil
		}
		c.logger.Warn("Redis health check failed, reconnecting",
			zap.String("addr", c.options.Addr), zap.Error(err))
		c.client.Store(nil)
		c.locks.Store(nil)
		_ = client.Close()
	}

	client := redis.NewClient(c.options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", c.options.Addr, err)
	}

	c.client.Store(client)
	c.locks.Store(redsync.New(goredis.NewPool(client)))
	c.checkedAt.Store(time.Now().UnixNano())
	c.logger.Info("connected to Redis", zap.String("addr", c.options.Addr), zap.Int("db", c.options.DB))
	return client, nil
}

func (c *RedisConnection) fresh() bool {
	return time.Since(time.Unix(0, c.checkedAt.Load())) < c.healthInterval
}

// Addrs returns the configured endpoints
func (c *RedisConnection) Addrs() []string {
	return []string{c.options.Addr}
}

// Server returns the client serving addr
func (c *RedisConnection) Server(ctx context.Context, addr string) (*redis.Client, error) {
	if addr != c.options.Addr {
		return nil, fmt.Errorf("unknown Redis endpoint %q", addr)
	}
	return c.Database(ctx)
}

// FlushDatabase flushes the configured database on every endpoint
func (c *RedisConnection) FlushDatabase(ctx context.Context) error {
	for _, addr := range c.Addrs() {
		server, err := c.Server(ctx, addr)
		if err != nil {
			return err
		}
		if err := server.FlushDB(ctx).Err(); err != nil {
			return fmt.Errorf("failed to flush Redis database on %s: %w", addr, err)
		}
	}
	return nil
}

// PerformActionWithLock runs action while holding the RedLock named resource.
// When another holder owns the lock it returns false and the action is not run.
func (c *RedisConnection) PerformActionWithLock(ctx context.Context, resource string, expiration time.Duration, action func(ctx context.Context) error) (bool, error) {
	if _, err := c.Database(ctx); err != nil {
		return false, err
	}
	rs := c.locks.Load()
	if rs == nil {
		return false, errors.New("redis connection is closed")
	}

	mutex := rs.NewMutex(resource,
		redsync.WithExpiry(expiration),
		redsync.WithTries(1),
	)
	if err := mutex.LockContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		c.logger.Debug("lock is held elsewhere", zap.String("resource", resource), zap.Error(err))
		return false, nil
	}

	defer func() {
		if _, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warn("failed to release lock", zap.String("resource", resource), zap.Error(err))
		}
	}()

	return true, action(ctx)
}

// Close releases the client
func (c *RedisConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	client := c.client.Swap(nil)
	c.locks.Store(nil)
	if client == nil {
		return nil
	}
	return client.Close()
}
