package main

import (
	"context"
	"log"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stockimate/internal/app/di"
	historyusecase "stockimate/internal/feature/history/usecase"
	wishlistusecase "stockimate/internal/feature/wishlist/usecase"
	"stockimate/internal/platform/config"
	infradb "stockimate/internal/platform/db"
	"stockimate/internal/platform/logger"
	infraredis "stockimate/internal/platform/redis"
	"stockimate/internal/shared/ratelimiter"
)

// warmup はウォッチリストの銘柄について過去系列を取得し、Redisキャッシュを温めます。
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	lg, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Warmup.Timeout)
	defer cancel()

	var rdb *redisv9.Client
	if cfg.Redis.Enabled {
		if rdb, err = infraredis.NewRedisClient(ctx, cfg.Redis, lg); err != nil {
			lg.Fatal("warmup requires Redis to share the cache with the server", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
	} else {
		lg.Warn("Redis disabled; warmed series only live for this process")
	}

	var db *gorm.DB
	if rdb == nil {
		if db, err = infradb.Open(cfg.DB, lg); err != nil {
			lg.Fatal("failed to open database", zap.Error(err))
		}
	}

	finnhubClient := di.NewFinnhubClient(cfg.Finnhub, lg)
	yahooClient := di.NewYahooClient(cfg.Yahoo, lg)
	quotesUC := di.NewQuoteUsecase(finnhubClient, rdb, cfg.Cache, lg)
	historyUC := di.NewHistoryUsecase(finnhubClient, yahooClient, quotesUC, rdb, cfg.Cache, lg)

	wishlistUC := wishlistusecase.NewWishlistUsecase(
		di.NewKVStore(rdb, db), cfg.Wishlist.StorageKey, quotesUC, historyUC, lg.Named("wishlist"),
	)
	symbols := wishlistUC.Symbols(ctx)
	if len(symbols) == 0 {
		lg.Info("wishlist is empty; nothing to warm")
		return
	}

	limiter := ratelimiter.NewRateLimiter(cfg.Warmup.RequestsPerMinute, time.Minute, lg)
	uc := historyusecase.NewWarmupUsecase(historyUC, limiter, lg.Named("warmup"))

	loaded, err := uc.Warmup(ctx, symbols)
	if err != nil {
		lg.Fatal("warmup aborted", zap.Int("loaded", loaded), zap.Error(err))
	}
	lg.Info("warmup ok", zap.Int("symbols", len(symbols)), zap.Int("loaded", loaded))
}
