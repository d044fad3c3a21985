package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	historyentity "stockimate/internal/feature/history/domain/entity"
	"stockimate/internal/feature/quotes/domain/entity"
	"stockimate/internal/platform/externalapi"
	"stockimate/internal/platform/externalapi/finnhub/dto"
	"stockimate/internal/shared/ratelimiter"
)

// Client はFinnhub REST APIから検索結果・クォート・ローソク足を取得するクライアントです。
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
	log     *zap.Logger
}

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
// limiterがnilの場合はレート制限を行いません。
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{cfg: cfg, client: client, limiter: limiter, log: log}
}

// Search は/searchエンドポイントを呼び出し、生の検索結果を返します。
func (c *Client) Search(ctx context.Context, query string) ([]entity.SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)

	var body dto.SearchResponse
	if err := c.get(ctx, "/search", q, &body); err != nil {
		return nil, err
	}

	results := make([]entity.SearchResult, 0, len(body.Result))
	for _, r := range body.Result {
		results = append(results, entity.SearchResult{
			Symbol:        r.Symbol,
			Description:   r.Description,
			Type:          r.Type,
			DisplaySymbol: r.DisplaySymbol,
		})
	}
	return results, nil
}

// Quote は/quoteエンドポイントから最新のスナップショットを取得します。
// 現在値が0の場合は未知のシンボルとしてErrNoDataを返します。
func (c *Client) Quote(ctx context.Context, symbol string) (entity.Quote, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var body dto.QuoteResponse
	if err := c.get(ctx, "/quote", q, &body); err != nil {
		return entity.Quote{}, err
	}
	if body.C == 0 {
		return entity.Quote{}, fmt.Errorf("finnhub quote %s: %w", symbol, externalapi.ErrNoData)
	}

	return entity.Quote{
		Symbol:        symbol,
		Price:         body.C,
		Change:        body.D,
		ChangePercent: body.DP,
		High:          body.H,
		Low:           body.L,
		Open:          body.O,
		PreviousClose: body.PC,
		TimestampMs:   body.T * 1000,
	}, nil
}

// Candles は/stock/candleエンドポイントから終値の系列を取得します。
// ステータスが"ok"以外の場合はErrNoDataを返します。
func (c *Client) Candles(ctx context.Context, symbol, resolution string, from, to time.Time) (historyentity.Series, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("resolution", resolution)
	q.Set("from", strconv.FormatInt(from.Unix(), 10))
	q.Set("to", strconv.FormatInt(to.Unix(), 10))

	var body dto.CandleResponse
	if err := c.get(ctx, "/stock/candle", q, &body); err != nil {
		return nil, err
	}
	if body.S != "ok" || len(body.T) == 0 {
		return nil, fmt.Errorf("finnhub candles %s status %q: %w", symbol, body.S, externalapi.ErrNoData)
	}
	if len(body.T) != len(body.C) {
		return nil, fmt.Errorf("finnhub candles %s: %d timestamps vs %d closes: %w",
			symbol, len(body.T), len(body.C), externalapi.ErrParse)
	}

	series := make(historyentity.Series, 0, len(body.T))
	for i, ts := range body.T {
		series = append(series, historyentity.ChartPoint{TimestampMs: ts * 1000, Value: body.C[i]})
	}
	return series, nil
}

// get はレート制限を通過した後にGETリクエストを送り、JSONをoutにデコードします。
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("finnhub rate limit wait: %w", err)
		}
	}

	q.Set("token", c.cfg.APIKey)
	u := fmt.Sprintf("%s%s?%s", c.cfg.BaseURL, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("finnhub %s: %w: %w", path, externalapi.ErrNetwork, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			c.log.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if res.StatusCode/100 != 2 {
		return fmt.Errorf("finnhub http %d: %w", res.StatusCode, externalapi.ErrNetwork)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("finnhub %s decode: %w: %w", path, externalapi.ErrParse, err)
	}
	return nil
}
