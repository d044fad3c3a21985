// Package adapters はウォッチリストを保存するKVストアの実装を提供します。
package adapters

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"stockimate/internal/feature/wishlist/usecase"
)

// kvRedis は usecase.KVStore のRedis実装です。値は期限なしで保存されます。
type kvRedis struct {
	client *redis.Client
}

// Compile-time check to ensure kvRedis implements KVStore.
var _ usecase.KVStore = (*kvRedis)(nil)

// NewKVRedis creates a new instance of kvRedis.
func NewKVRedis(client *redis.Client) *kvRedis {
	return &kvRedis{client: client}
}

// Get returns nil, nil for a missing key.
func (r *kvRedis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Set overwrites the value stored at key.
func (r *kvRedis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, 0).Err()
}
