package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis is the shared cache tier. Values are stored as JSON-encoded entries
// with a native Redis expiry. A nil client disables the tier: every read is a
// miss and every write is a no-op.
type Redis[T any] struct {
	rdb       *redis.Client
	namespace string
	log       *zap.Logger
}

// NewRedis creates a Redis tier. If namespace is empty, it uses "stockimate".
func NewRedis[T any](rdb *redis.Client, namespace string, log *zap.Logger) *Redis[T] {
	if namespace == "" {
		namespace = "stockimate"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis[T]{rdb: rdb, namespace: namespace, log: log}
}

// Enabled reports whether a Redis client is configured.
func (r *Redis[T]) Enabled() bool {
	return r != nil && r.rdb != nil
}

// Get reads an entry. Errors are treated as misses.
func (r *Redis[T]) Get(ctx context.Context, key string) (Entry[T], bool) {
	var out Entry[T]
	if !r.Enabled() {
		return out, false
	}

	k := r.cacheKey(key)
	b, err := r.rdb.Get(ctx, k).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("redis cache get failed", zap.String("key", k), zap.Error(err))
		}
		return out, false
	}
	if err := json.Unmarshal(b, &out); err != nil {
		// Delete corrupted cache entry
		_ = r.rdb.Del(ctx, k).Err()
		return out, false
	}
	return out, true
}

// Set writes an entry with the given expiry (best effort).
func (r *Redis[T]) Set(ctx context.Context, key string, e Entry[T], ttl time.Duration) {
	if !r.Enabled() || ttl <= 0 {
		return
	}
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	k := r.cacheKey(key)
	if err := r.rdb.Set(ctx, k, b, ttl).Err(); err != nil {
		r.log.Warn("redis cache set failed", zap.String("key", k), zap.Error(err))
	}
}

// Clear deletes every key in the namespace using SCAN.
func (r *Redis[T]) Clear(ctx context.Context) error {
	if !r.Enabled() {
		return nil
	}
	var cursor uint64
	for {
		keys, cur, err := r.rdb.Scan(ctx, cursor, r.namespace+":*", 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			return nil
		}
	}
}

// cacheKey generates a namespaced Redis key.
func (r *Redis[T]) cacheKey(key string) string {
	return fmt.Sprintf("%s:%s", r.namespace, safe(key))
}

// safe escapes characters that are problematic for Redis keys.
// Colons are kept because they are the key separator.
func safe(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}
