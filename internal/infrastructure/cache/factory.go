package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Factory creates the static cache manager and the locker from configuration
type Factory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool

	connMu sync.Mutex
	conn   *RedisConnection
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewStaticManager picks the process-wide cache manager.
// Redis is used when enabled and reachable, the in-memory cache otherwise,
// and NullCache when caching is disabled.
func (f *Factory) NewStaticManager(ctx context.Context) (Manager, error) {
	if !f.cacheConfig.Enabled {
		f.logger.Info("caching disabled, using null cache")
		return NullCache{}, nil
	}
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory cache")
		return NewMemoryCache(WithIsolatedValues()), nil
	}

	manager, err := f.newRedisManager(ctx)
	if err == nil {
		f.logger.Info("using Redis cache", zap.String("addr", f.redisConfig.Addr()))
		return manager, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for caching but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory cache. "+
		"Cached data will not be shared between instances.",
		zap.Error(err),
	)
	return NewMemoryCache(WithIsolatedValues()), nil
}

// NewLocker returns a RedLock locker when Redis is enabled, or a process-local locker otherwise.
// The locker shares its connection with the static manager.
func (f *Factory) NewLocker(ctx context.Context) (Locker, error) {
	if !f.redisConfig.Enabled {
		return NewLocalLocker(), nil
	}

	conn, err := f.connection()
	if err == nil {
		ctx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
		defer cancel()
		if _, err = conn.Database(ctx); err == nil {
			return conn, nil
		}
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for locking but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to process-local locks", zap.Error(err))
	return NewLocalLocker(), nil
}

// Close releases the shared Redis connection, if one was created
func (f *Factory) Close() error {
	f.connMu.Lock()
	conn := f.conn
	f.conn = nil
	f.connMu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (f *Factory) connection() (*RedisConnection, error) {
	f.connMu.Lock()
	defer f.connMu.Unlock()

	if f.conn != nil {
		return f.conn, nil
	}
	conn, err := NewRedisConnection(f.redisConfig, WithConnectionLogger(f.logger))
	if err != nil {
		return nil, err
	}
	f.conn = conn
	return conn, nil
}

func (f *Factory) newRedisManager(ctx context.Context) (*RedisManager, error) {
	conn, err := f.connection()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	if _, err := conn.Database(ctx); err != nil {
		return nil, err
	}
	return NewRedisManager(conn, WithManagerLogger(f.logger))
}

// LocalLocker is a Locker for single-instance deployments
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]localLock
	seq   uint64
	clock func() time.Time
}

// localLock is one holder of a resource. The token tells holders apart
// once an expired lock has been taken over.
type localLock struct {
	token uint64
	until time.Time
}

// Ensure LocalLocker implements Locker
var _ Locker = (*LocalLocker)(nil)

// NewLocalLocker creates a process-local locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		held:  make(map[string]localLock),
		clock: time.Now,
	}
}

// PerformActionWithLock runs action unless resource is held by an unexpired lock
func (l *LocalLocker) PerformActionWithLock(ctx context.Context, resource string, expiration time.Duration, action func(ctx context.Context) error) (bool, error) {
	l.mu.Lock()
	current, ok := l.held[resource]
	if ok && l.clock().Before(current.until) {
		l.mu.Unlock()
		return false, nil
	}
	l.seq++
	mine := localLock{token: l.seq, until: l.clock().Add(expiration)}
	l.held[resource] = mine
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		if l.held[resource].token == mine.token {
			delete(l.held, resource)
		}
		l.mu.Unlock()
	}()

	return true, action(ctx)
}
