// Package adapters は外部の価格APIを過去系列ソースとして接続します。
package adapters

import (
	"context"
	"time"

	"stockimate/internal/feature/history/domain/entity"
	"stockimate/internal/feature/history/usecase"
)

// CandleClient はFinnhubのローソク足エンドポイントです。
type CandleClient interface {
	Candles(ctx context.Context, symbol, resolution string, from, to time.Time) (entity.Series, error)
}

// ChartClient はYahooのチャートエンドポイントです。
type ChartClient interface {
	Chart(ctx context.Context, symbol, rng, interval string) (entity.Series, error)
}

// FinnhubSource は期間をFinnhubのresolutionと[from, to]に変換して系列を取得します。
type FinnhubSource struct {
	client CandleClient
}

var _ usecase.SeriesSource = (*FinnhubSource)(nil)

func NewFinnhubSource(client CandleClient) *FinnhubSource {
	return &FinnhubSource{client: client}
}

func (s *FinnhubSource) Name() string { return "finnhub" }

func (s *FinnhubSource) Series(ctx context.Context, symbol string, tf entity.Timeframe, from, to time.Time) (entity.Series, error) {
	return s.client.Candles(ctx, symbol, tf.Spec().Resolution, from, to)
}

// YahooSource は期間をYahooのrange/intervalに変換して系列を取得します。
// 取得範囲はrangeで決まるため、from/toは使用しません。
type YahooSource struct {
	client ChartClient
}

var _ usecase.SeriesSource = (*YahooSource)(nil)

func NewYahooSource(client ChartClient) *YahooSource {
	return &YahooSource{client: client}
}

func (s *YahooSource) Name() string { return "yahoo" }

func (s *YahooSource) Series(ctx context.Context, symbol string, tf entity.Timeframe, _, _ time.Time) (entity.Series, error) {
	spec := tf.Spec()
	return s.client.Chart(ctx, symbol, spec.Range, spec.Interval)
}
