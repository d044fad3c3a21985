package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	historyhandler "stockimate/internal/feature/history/transport/handler"
	pricinghandler "stockimate/internal/feature/pricing/transport/handler"
	quotehandler "stockimate/internal/feature/quotes/transport/handler"
	streamhandler "stockimate/internal/feature/streaming/transport/handler"
	wishlisthandler "stockimate/internal/feature/wishlist/transport/handler"
	"stockimate/internal/platform/http/handler"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Health   *handler.HealthHandler
	Quotes   *quotehandler.QuoteHandler
	History  *historyhandler.HistoryHandler
	Pricing  *pricinghandler.PricingHandler
	Wishlist *wishlisthandler.WishlistHandler
	Stream   *streamhandler.StreamHandler
}

// Options controls router-level middleware.
type Options struct {
	CORS bool
	Log  *zap.Logger
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(opts.Log), gin.Recovery())

	// CORS はスマホアプリ向けには不要なため設定で有効化する
	if opts.CORS {
		r.Use(cors.Default())
	}

	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)

	// 銘柄検索・現在価格
	r.GET("/search", h.Quotes.Search)
	r.GET("/quotes/:symbol", h.Quotes.GetQuote)

	// 過去系列・時点価格
	r.GET("/history/:symbol", h.History.GetHistory)
	r.GET("/history/:symbol/price", h.History.GetPriceAtDate)

	// 損益計算
	r.GET("/calculate/:symbol", h.Pricing.Calculate)
	r.GET("/calculate/:symbol/target", h.Pricing.CalculateTarget)

	// ウォッチリスト
	r.GET("/wishlist", h.Wishlist.List)
	r.POST("/wishlist", h.Wishlist.Add)
	r.GET("/wishlist/overview", h.Wishlist.Overview)
	r.DELETE("/wishlist/:symbol", h.Wishlist.Remove)

	// ライブクォート・検索のWebSocket
	r.GET("/ws", h.Stream.Serve)

	return r
}
