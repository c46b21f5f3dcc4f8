package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Ensure RedisManager implements Manager
var _ Manager = (*RedisManager)(nil)

const scanBatchSize = 500

// RedisManager is a Manager storing JSON values in Redis.
// Reads are memoised in the per-request cache carried by the context.
type RedisManager struct {
	conn   *RedisConnection
	logger *zap.Logger
}

// RedisManagerOption is a functional option for configuring RedisManager
type RedisManagerOption func(*RedisManager)

// WithManagerLogger sets the logger for the manager
func WithManagerLogger(logger *zap.Logger) RedisManagerOption {
	return func(m *RedisManager) {
		m.logger = logger
	}
}

// NewRedisManager creates a manager over conn
func NewRedisManager(conn *RedisConnection, opts ...RedisManagerOption) (*RedisManager, error) {
	if conn == nil {
		return nil, ErrEmptyConnectionString
	}
	m := &RedisManager{conn: conn, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Get reads key into dest. A missing key or a JSON null reports false.
func (m *RedisManager) Get(ctx context.Context, key string, dest any) (bool, error) {
	perRequest := PerRequest(ctx)
	if set, _ := perRequest.IsSet(ctx, key); set {
		return perRequest.Get(ctx, key, dest)
	}

	db, err := m.conn.Database(ctx)
	if err != nil {
		return false, err
	}

	raw, err := db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	if string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}

	if err := perRequest.Set(ctx, key, reflect.ValueOf(dest).Elem().Interface(), PerRequestCacheTime); err != nil {
		m.logger.Debug("failed to memoise cache key", zap.String("key", key), zap.Error(err))
	}
	return true, nil
}

// Set stores data as JSON with cacheTime as the TTL. Nil data is ignored.
func (m *RedisManager) Set(ctx context.Context, key string, data any, cacheTime time.Duration) error {
	if isNil(data) {
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}

	db, err := m.conn.Database(ctx)
	if err != nil {
		return err
	}
	if cacheTime < 0 {
		cacheTime = 0
	}
	if err := db.Set(ctx, key, payload, cacheTime).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

func (m *RedisManager) IsSet(ctx context.Context, key string) (bool, error) {
	if set, _ := PerRequest(ctx).IsSet(ctx, key); set {
		return true, nil
	}

	db, err := m.conn.Database(ctx)
	if err != nil {
		return false, err
	}
	n, err := db.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cache key %s: %w", key, err)
	}
	return n > 0, nil
}

// Remove deletes key from Redis and the per-request cache. The protected key is kept.
func (m *RedisManager) Remove(ctx context.Context, key string) error {
	if isProtected(key) {
		return nil
	}

	db, err := m.conn.Database(ctx)
	if err != nil {
		return err
	}
	if err := db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to remove cache key %s: %w", key, err)
	}
	return PerRequest(ctx).Remove(ctx, key)
}

// RemoveByPattern deletes every key containing pattern on each endpoint.
// The per-request cache treats pattern as a regular expression.
func (m *RedisManager) RemoveByPattern(ctx context.Context, pattern string) error {
	if err := PerRequest(ctx).RemoveByPattern(ctx, pattern); err != nil {
		return err
	}
	return m.deleteMatching(ctx, "*"+pattern+"*")
}

// Clear deletes every key except the protected one. FLUSHDB is never issued.
func (m *RedisManager) Clear(ctx context.Context) error {
	if err := PerRequest(ctx).Clear(ctx); err != nil {
		return err
	}
	return m.deleteMatching(ctx, "*")
}

func (m *RedisManager) Close() error {
	return m.conn.Close()
}

func (m *RedisManager) deleteMatching(ctx context.Context, match string) error {
	for _, addr := range m.conn.Addrs() {
		server, err := m.conn.Server(ctx, addr)
		if err != nil {
			return err
		}

		keys := make([]string, 0, scanBatchSize)
		iter := server.Scan(ctx, 0, match, scanBatchSize).Iterator()
		for iter.Next(ctx) {
			if key := iter.Val(); !isProtected(key) {
				keys = append(keys, key)
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to scan keys on %s: %w", addr, err)
		}

		for start := 0; start < len(keys); start += scanBatchSize {
			end := min(start+scanBatchSize, len(keys))
			if err := server.Del(ctx, keys[start:end]...).Err(); err != nil {
				return fmt.Errorf("failed to delete keys on %s: %w", addr, err)
			}
		}

		m.logger.Debug("removed cache keys",
			zap.String("addr", addr),
			zap.String("match", match),
			zap.Int("count", len(keys)),
		)
	}
	return nil
}

func isProtected(key string) bool {
	return strings.EqualFold(key, ProtectedKey)
}
