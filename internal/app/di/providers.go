package di

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	historyadapters "stockimate/internal/feature/history/adapters"
	historyentity "stockimate/internal/feature/history/domain/entity"
	historyusecase "stockimate/internal/feature/history/usecase"
	quoteentity "stockimate/internal/feature/quotes/domain/entity"
	quotesusecase "stockimate/internal/feature/quotes/usecase"
	"stockimate/internal/platform/cache"
	"stockimate/internal/platform/config"
	"stockimate/internal/platform/externalapi/finnhub"
	"stockimate/internal/platform/externalapi/yahoo"
)

// Redis namespaces per data kind, so ClearCache on one provider leaves the others intact.
const (
	quotesNamespace  = "stockimate:quotes"
	searchNamespace  = "stockimate:search"
	candlesNamespace = "stockimate:candles"
)

// NewQuoteUsecase creates the quote provider with its two caches.
// rdb may be nil, in which case only the in-process tier is used.
func NewQuoteUsecase(client *finnhub.Client, rdb *redis.Client, c config.CacheConfig, log *zap.Logger) *quotesusecase.QuoteUsecase {
	quotes := cache.NewTiered(
		cache.NewMemory[quoteentity.Quote](),
		cache.NewRedis[quoteentity.Quote](rdb, quotesNamespace, log),
		c.QuoteTTL,
	)
	search := cache.NewTiered(
		cache.NewMemory[[]quoteentity.Instrument](),
		cache.NewRedis[[]quoteentity.Instrument](rdb, searchNamespace, log),
		c.SearchTTL,
	)
	return quotesusecase.NewQuoteUsecase(client, quotes, search, log.Named("quotes"))
}

// NewHistoryUsecase creates the historical data provider. The Yahoo chart is
// tried first when configured, then Finnhub candles; the estimate is the last
// resort.
func NewHistoryUsecase(
	fh *finnhub.Client,
	yh *yahoo.Client,
	quotes historyusecase.QuoteProvider,
	rdb *redis.Client,
	c config.CacheConfig,
	log *zap.Logger,
) *historyusecase.HistoryUsecase {
	var sources []historyusecase.SeriesSource
	if yh != nil {
		sources = append(sources, historyadapters.NewYahooSource(yh))
	}
	sources = append(sources, historyadapters.NewFinnhubSource(fh))

	series := cache.NewTiered(
		cache.NewMemory[historyentity.Series](),
		cache.NewRedis[historyentity.Series](rdb, candlesNamespace, log),
		c.HistoricalTTL,
	)
	return historyusecase.NewHistoryUsecase(sources, quotes, series, log.Named("history"))
}
