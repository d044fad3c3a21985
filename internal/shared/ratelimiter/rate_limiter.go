package ratelimiter

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	Wait(ctx context.Context) error
}

// RateLimiterは、API呼び出しなどの操作の頻度を制限します。
// 1分あたりの上限をトークンバケットに変換し、バーストは上限値まで許可します。
type RateLimiter struct {
	limiter *rate.Limiter
	limit   int
	log     *zap.Logger
}

// NewRateLimiterは新しいRateLimiterのインスタンスを生成します。
// limit <= 0 の場合は制限なしになります。
func NewRateLimiter(limit int, interval time.Duration, log *zap.Logger) *RateLimiter {
	if log == nil {
		log = zap.NewNop()
	}
	if limit <= 0 || interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0), log: log}
	}
	every := rate.Every(interval / time.Duration(limit))
	return &RateLimiter{
		limiter: rate.NewLimiter(every, limit),
		limit:   limit,
		log:     log,
	}
}

// Waitはレートリミットの上限に達しているかを確認し、必要であればトークンが補充されるまで待機します。
// コンテキストがキャンセルされた場合はエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if !rl.limiter.Allow() {
		rl.log.Debug("rate limit hit, waiting", zap.Int("limit", rl.limit))
		return rl.limiter.Wait(ctx)
	}
	return nil
}
