package usecase

import (
	"context"

	"go.uber.org/zap"

	"stockimate/internal/feature/history/domain/entity"
	"stockimate/internal/shared/ratelimiter"
)

// warmupTimeframes はウォームアップ対象の期間です。ウォッチリストのミニチャートと主要な計算期間に対応します。
var warmupTimeframes = []entity.Timeframe{entity.Timeframe1W, entity.Timeframe1M, entity.Timeframe1Y}

// SeriesLoader は系列を取得してキャッシュに載せる処理を抽象化します。
type SeriesLoader interface {
	GetHistoricalData(ctx context.Context, symbol string, tf entity.Timeframe) entity.Series
}

// WarmupUsecase はウォッチリストの銘柄について系列を事前に取得し、キャッシュを温めます。
type WarmupUsecase struct {
	loader      SeriesLoader
	rateLimiter ratelimiter.RateLimiterInterface
	log         *zap.Logger
}

// NewWarmupUsecase は新しい WarmupUsecase を作成します。
func NewWarmupUsecase(loader SeriesLoader, rateLimiter ratelimiter.RateLimiterInterface, log *zap.Logger) *WarmupUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &WarmupUsecase{loader: loader, rateLimiter: rateLimiter, log: log}
}

// Warmup は全銘柄の系列を複数の期間（1W, 1M, 1Y）で取得します。
// 1つの銘柄で失敗しても処理を止めずに次へ進み、取得できた組み合わせの数を返します。
// コンテキストがキャンセルされた場合はその時点で中断します。
func (wu *WarmupUsecase) Warmup(ctx context.Context, symbols []string) (int, error) {
	loaded := 0
	for _, s := range symbols {
		for _, tf := range warmupTimeframes {
			if err := wu.rateLimiter.Wait(ctx); err != nil {
				return loaded, err
			}
			if series := wu.loader.GetHistoricalData(ctx, s, tf); len(series) == 0 {
				wu.log.Error("failed to warm series", zap.String("symbol", s), zap.String("timeframe", string(tf)))
				continue
			}
			loaded++
		}
	}
	return loaded, nil
}
