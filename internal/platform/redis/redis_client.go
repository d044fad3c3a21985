// Package redis opens the Redis connection shared by the cache tier and the wishlist store.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"stockimate/internal/platform/config"
)

// NewRedisClient はRedisに接続し、PINGで疎通を確認します。
// 接続に失敗した場合は呼び出し側でRedisなしの構成にフォールバックします。
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Error("Redis connection failed", zap.String("address", cfg.Addr), zap.Error(err))
		_ = rdb.Close()
		return nil, err
	}

	log.Info("Redis connection successful", zap.String("address", cfg.Addr))
	return rdb, nil
}
