// Package yahoo provides a client for the Yahoo Finance chart endpoint.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"stockimate/internal/feature/history/domain/entity"
	"stockimate/internal/platform/config"
	"stockimate/internal/platform/externalapi"
	"stockimate/internal/platform/externalapi/yahoo/dto"
)

// Config holds configuration for the Yahoo chart client.
type Config struct {
	BaseURL   string // e.g., "https://query1.finance.yahoo.com/v8/finance/chart"
	UserAgent string
}

// ConfigFrom builds the client configuration from the application config.
func ConfigFrom(c config.YahooConfig) Config {
	return Config{BaseURL: c.BaseURL, UserAgent: c.UserAgent}
}

// Client はYahoo Financeのチャートエンドポイントから終値の系列を取得します。
type Client struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

func NewClient(cfg Config, client *http.Client, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{cfg: cfg, client: client, log: log}
}

// Chart は指定されたrange/intervalで系列を取得します。
// 終値がnullのバーは除外されます。
func (c *Client) Chart(ctx context.Context, symbol, rng, interval string) (entity.Series, error) {
	q := url.Values{}
	q.Set("range", rng)
	q.Set("interval", interval)
	q.Set("includePrePost", "false")

	u := fmt.Sprintf("%s/%s?%s", c.cfg.BaseURL, url.PathEscape(symbol), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w: %w", symbol, externalapi.ErrNetwork, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			c.log.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if res.StatusCode/100 != 2 {
		return nil, fmt.Errorf("yahoo http %d: %w", res.StatusCode, externalapi.ErrNetwork)
	}

	var body dto.ChartResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("yahoo chart %s decode: %w: %w", symbol, externalapi.ErrParse, err)
	}
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s: %w", symbol, body.Chart.Error.Description, externalapi.ErrNoData)
	}
	if len(body.Chart.Result) == 0 || len(body.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: empty result: %w", symbol, externalapi.ErrNoData)
	}

	r := body.Chart.Result[0]
	closes := r.Indicators.Quote[0].Close
	series := make(entity.Series, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		series = append(series, entity.ChartPoint{TimestampMs: ts * 1000, Value: *closes[i]})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: no closes: %w", symbol, externalapi.ErrNoData)
	}
	return series, nil
}
