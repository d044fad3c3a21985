// Package usecase は現在価格・ライブティック・過去価格を突き合わせて損益を計算します。
package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	historyentity "stockimate/internal/feature/history/domain/entity"
	"stockimate/internal/feature/pricing/domain/entity"
	quoteentity "stockimate/internal/feature/quotes/domain/entity"
	streamentity "stockimate/internal/feature/streaming/domain/entity"
	streamusecase "stockimate/internal/feature/streaming/usecase"
)

// ErrNoQuote は現在価格が取得できない場合に返されます。
var ErrNoQuote = errors.New("current quote unavailable")

// QuoteProvider は現在価格のスナップショットを取得します。
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) *quoteentity.Quote
}

// PriceHistory は指定日の価格を取得します。
type PriceHistory interface {
	GetPriceAtDate(ctx context.Context, symbol string, date time.Time) (float64, bool)
}

// TickStream はライブティックの購読を提供します。
type TickStream interface {
	Subscribe(symbol string, cb streamusecase.Callback) streamusecase.CancelFunc
}

// Calculation は損益計算の結果です。
type Calculation struct {
	Symbol     string
	Date       time.Time
	Scrubbed   bool
	Quote      quoteentity.Quote
	Projection entity.Projection
}

// TargetCalculation は目標価格計算の結果です。
type TargetCalculation struct {
	Symbol     string
	Quote      quoteentity.Quote
	Projection entity.TargetProjection
}

// PricingUsecase は価格の突き合わせと損益計算を行います。
type PricingUsecase struct {
	quotes  QuoteProvider
	history PriceHistory
	stream  TickStream
	log     *zap.Logger
}

// NewPricingUsecase はPricingUsecaseの新しいインスタンスを生成します。
func NewPricingUsecase(quotes QuoteProvider, history PriceHistory, stream TickStream, log *zap.Logger) *PricingUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &PricingUsecase{quotes: quotes, history: history, stream: stream, log: log}
}

// Track はスナップショットを取得してからライブフィードを購読し、
// 突き合わせ後のクォートをonUpdateへ渡します。
// 返された関数かctxのキャンセルで購読を解除します。
func (u *PricingUsecase) Track(ctx context.Context, symbol string, onUpdate func(quoteentity.Quote)) (cancel func()) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	snapshot := u.quotes.GetQuote(ctx, symbol)
	live := entity.NewLiveQuote(snapshot)
	if snapshot != nil {
		onUpdate(*snapshot)
	} else {
		u.log.Debug("no snapshot; ticks ignored until one is available", zap.String("symbol", symbol))
	}

	unsubscribe := u.stream.Subscribe(symbol, func(tick streamentity.Tick) {
		if q, ok := live.ApplyTick(tick); ok {
			onUpdate(q)
		}
	})

	var once sync.Once
	stopAfter := context.AfterFunc(ctx, func() { once.Do(unsubscribe) })
	return func() {
		stopAfter()
		once.Do(unsubscribe)
	}
}

// Calculate は購入日（またはスクラブ中のチャート点）の価格と現在価格から損益を計算します。
// 購入価格が未確定の場合はProjection.Knownがfalseになります。
func (u *PricingUsecase) Calculate(
	ctx context.Context,
	symbol string,
	date time.Time,
	amount float64,
	scrub *historyentity.ChartPoint,
) (Calculation, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	q := u.quotes.GetQuote(ctx, symbol)
	if q == nil {
		return Calculation{}, ErrNoQuote
	}

	var (
		historical float64
		ok         bool
	)
	if scrub == nil {
		historical, ok = u.history.GetPriceAtDate(ctx, symbol, date)
	}
	purchase := entity.PurchasePrice(scrub, historical, ok)

	return Calculation{
		Symbol:     symbol,
		Date:       date,
		Scrubbed:   scrub != nil,
		Quote:      *q,
		Projection: entity.Project(amount, purchase, q.Price),
	}, nil
}

// CalculateTarget は現在価格で購入し目標価格で売却した場合の損益を計算します。
func (u *PricingUsecase) CalculateTarget(ctx context.Context, symbol string, amount, target float64) (TargetCalculation, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	q := u.quotes.GetQuote(ctx, symbol)
	if q == nil {
		return TargetCalculation{}, ErrNoQuote
	}
	return TargetCalculation{
		Symbol:     symbol,
		Quote:      *q,
		Projection: entity.ProjectTarget(amount, q.Price, target),
	}, nil
}
