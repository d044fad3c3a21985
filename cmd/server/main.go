package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stockimate/internal/app/di"
	"stockimate/internal/app/router"
	historyhandler "stockimate/internal/feature/history/transport/handler"
	pricinghandler "stockimate/internal/feature/pricing/transport/handler"
	pricingusecase "stockimate/internal/feature/pricing/usecase"
	quotehandler "stockimate/internal/feature/quotes/transport/handler"
	streamhandler "stockimate/internal/feature/streaming/transport/handler"
	wishlisthandler "stockimate/internal/feature/wishlist/transport/handler"
	wishlistusecase "stockimate/internal/feature/wishlist/usecase"
	"stockimate/internal/platform/config"
	infradb "stockimate/internal/platform/db"
	"stockimate/internal/platform/http/handler"
	"stockimate/internal/platform/logger"
	infraredis "stockimate/internal/platform/redis"
)

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

	ctx := context.Background()

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis, lg); err != nil {
			lg.Warn("Redis unavailable. Running with in-process cache and SQL wishlist store.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					lg.Error("Failed to close Redis client", zap.Error(err))
				}
			}()
		}
	}

	// db（Redisがない場合のウォッチリスト保存先）
	var db *gorm.DB
	if rdb == nil {
		db, err = infradb.Open(cfg.DB, lg)
		if err != nil {
			lg.Fatal("failed to open database", zap.Error(err))
		}
	}

	// 外部API
	finnhubClient := di.NewFinnhubClient(cfg.Finnhub, lg)
	yahooClient := di.NewYahooClient(cfg.Yahoo, lg)

	// Usecase
	quotesUC := di.NewQuoteUsecase(finnhubClient, rdb, cfg.Cache, lg)
	historyUC := di.NewHistoryUsecase(finnhubClient, yahooClient, quotesUC, rdb, cfg.Cache, lg)

	stream, sinkCloser := di.NewMultiplexer(cfg, lg)
	defer stream.Disconnect()
	if sinkCloser != nil {
		defer func() { _ = sinkCloser.Close() }()
	}

	pricingUC := pricingusecase.NewPricingUsecase(quotesUC, historyUC, stream, lg.Named("pricing"))
	wishlistUC := wishlistusecase.NewWishlistUsecase(
		di.NewKVStore(rdb, db), cfg.Wishlist.StorageKey, quotesUC, historyUC, lg.Named("wishlist"),
	)

	// Handler
	handlers := router.Handlers{
		Health:   handler.NewHealthHandler(stream),
		Quotes:   quotehandler.NewQuoteHandler(quotesUC),
		History:  historyhandler.NewHistoryHandler(historyUC),
		Pricing:  pricinghandler.NewPricingHandler(pricingUC),
		Wishlist: wishlisthandler.NewWishlistHandler(wishlistUC, lg.Named("wishlist")),
		Stream:   streamhandler.NewStreamHandler(pricingUC, quotesUC, lg.Named("ws")),
	}

	// ルータ生成
	r := router.NewRouter(handlers, router.Options{CORS: cfg.App.CORSEnabled, Log: lg})

	if cfg.Finnhub.APIKey == "" {
		lg.Warn("FINNHUB_API_KEY is not set. Upstream requests will fail and history falls back to estimates.")
	}

	srv := &http.Server{Addr: cfg.App.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		lg.Info("Server starting", zap.String("addr", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("HTTP Error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("Shutdown failed", zap.Error(err))
	}
	lg.Info("Shutdown Complete")
}
