// Package usecase は過去価格系列の解決・推定フォールバック・時点価格の検索を実装します。
package usecase

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"stockimate/internal/feature/history/domain/entity"
	quoteentity "stockimate/internal/feature/quotes/domain/entity"
	"stockimate/internal/platform/cache"
)

// SharedFetchTimeout は同じキーの呼び出し間で共有される系列取得の上限時間です。
// 共有取得は最初の呼び出し元のキャンセルを引き継ぎません。
const SharedFetchTimeout = 20 * time.Second

// SeriesSource は過去価格系列を提供する上流APIを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SeriesSource interface {
	Name() string
	Series(ctx context.Context, symbol string, tf entity.Timeframe, from, to time.Time) (entity.Series, error)
}

// QuoteProvider は推定系列の生成に使う最新クォートを提供します。
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) *quoteentity.Quote
}

// Option はHistoryUsecaseの設定を変更します。
type Option func(*HistoryUsecase)

// WithClock は現在時刻の取得方法を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(u *HistoryUsecase) { u.now = now }
}

// WithRand は推定系列の乱数源を差し替えます。randは[0,1)の値を返す必要があります。
func WithRand(rnd func() float64) Option {
	return func(u *HistoryUsecase) { u.rand = rnd }
}

// HistoryUsecase は上流ソースを順に試し、全て失敗した場合は推定系列を返します。
type HistoryUsecase struct {
	sources []SeriesSource
	quotes  QuoteProvider
	cache   *cache.Tiered[entity.Series]
	group   singleflight.Group
	now     func() time.Time
	rand    func() float64
	log     *zap.Logger
}

// NewHistoryUsecase はHistoryUsecaseの新しいインスタンスを生成します。
// sourcesは指定された順に試行されます。
func NewHistoryUsecase(
	sources []SeriesSource,
	quotes QuoteProvider,
	c *cache.Tiered[entity.Series],
	log *zap.Logger,
	opts ...Option,
) *HistoryUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	u := &HistoryUsecase{
		sources: sources,
		quotes:  quotes,
		cache:   c,
		now:     time.Now,
		rand:    rand.Float64,
		log:     log,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// GetHistoricalData は指定された銘柄と期間の系列を返します。
// 上流から取得できた系列はキャッシュされ、推定系列はキャッシュされません。
// 推定にも失敗した場合は空の系列を返します。
func (u *HistoryUsecase) GetHistoricalData(ctx context.Context, symbol string, tf entity.Timeframe) entity.Series {
	key := "candles:" + symbol + ":" + string(tf)
	if s, ok := u.cache.Get(ctx, key); ok {
		return s
	}

	v, err, _ := u.group.Do(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), SharedFetchTimeout)
		defer cancel()
		s, ok := u.fetch(ctx, symbol, tf)
		if !ok {
			return u.estimate(ctx, symbol, tf), nil
		}
		u.cache.Set(ctx, key, s)
		return s, nil
	})
	if err != nil {
		return entity.Series{}
	}
	return v.(entity.Series)
}

// fetch は取得元を順に試し、最初に得られた空でない正規化済みの系列を返します。
func (u *HistoryUsecase) fetch(ctx context.Context, symbol string, tf entity.Timeframe) (entity.Series, bool) {
	from, to := tf.Window(u.now())
	for _, src := range u.sources {
		s, err := src.Series(ctx, symbol, tf, from, to)
		if err != nil {
			u.log.Warn("history source failed",
				zap.String("source", src.Name()),
				zap.String("symbol", symbol),
				zap.String("timeframe", string(tf)),
				zap.Error(err))
			continue
		}
		if s = s.Normalize(); len(s) > 0 {
			return s, true
		}
	}
	return nil, false
}

func (u *HistoryUsecase) estimate(ctx context.Context, symbol string, tf entity.Timeframe) entity.Series {
	q := u.quotes.GetQuote(ctx, symbol)
	if q == nil {
		u.log.Warn("no quote for estimated series", zap.String("symbol", symbol))
		return entity.Series{}
	}
	now := u.now()
	u.log.Info("using estimated series",
		zap.String("symbol", symbol),
		zap.String("timeframe", string(tf)))
	return EstimateSeries(*q, tf.WindowDays(now), now, u.rand)
}

// GetPriceAtDate は指定日時に最も近い点の価格を返します。
// 対象日をカバーする最も狭い期間の系列を使い、系列が空の場合はokがfalseになります。
func (u *HistoryUsecase) GetPriceAtDate(ctx context.Context, symbol string, date time.Time) (float64, bool) {
	ageDays := int(u.now().Sub(date) / (24 * time.Hour))
	tf := entity.ForAge(ageDays)

	s := u.GetHistoricalData(ctx, symbol, tf)
	p, ok := s.Nearest(date.UnixMilli())
	if !ok {
		return 0, false
	}
	return p.Value, true
}

// ClearCache は系列キャッシュを破棄します。
func (u *HistoryUsecase) ClearCache(ctx context.Context) error {
	return u.cache.Clear(ctx)
}
