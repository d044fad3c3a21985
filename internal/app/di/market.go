// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"go.uber.org/zap"

	"stockimate/internal/platform/config"
	"stockimate/internal/platform/externalapi/finnhub"
	"stockimate/internal/platform/externalapi/yahoo"
	infrahttp "stockimate/internal/platform/http"
	"stockimate/internal/shared/ratelimiter"
)

// NewFinnhubClient creates a Finnhub REST client throttled to the configured
// requests per minute.
func NewFinnhubClient(c config.FinnhubConfig, log *zap.Logger) *finnhub.Client {
	cfg := finnhub.ConfigFrom(c)
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout, nil)
	limiter := ratelimiter.NewRateLimiter(c.RequestsPerMinute, time.Minute, log.Named("finnhub-limiter"))
	return finnhub.NewClient(cfg, httpClient, limiter, log.Named("finnhub"))
}

// NewYahooClient creates the Yahoo chart client, or nil when the fallback is disabled.
func NewYahooClient(c config.YahooConfig, log *zap.Logger) *yahoo.Client {
	if !c.Enabled {
		return nil
	}
	httpClient := infrahttp.NewHTTPClient(c.Timeout, map[string]string{"User-Agent": c.UserAgent})
	return yahoo.NewClient(yahoo.ConfigFrom(c), httpClient, log.Named("yahoo"))
}
