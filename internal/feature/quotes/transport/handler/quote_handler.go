// Package handler はquotesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stockimate/internal/api"
	"stockimate/internal/feature/quotes/domain/entity"
	"stockimate/internal/feature/quotes/transport/http/dto"
)

// QuoteUsecase はクォートと検索のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type QuoteUsecase interface {
	Search(ctx context.Context, query string) []entity.Instrument
	GetQuote(ctx context.Context, symbol string) *entity.Quote
	GetCryptoQuote(ctx context.Context, symbol string) *entity.Quote
}

// QuoteHandler はクォートと検索のHTTPリクエストを処理します。
type QuoteHandler struct {
	uc QuoteUsecase
}

// NewQuoteHandler は指定されたusecaseでQuoteHandlerの新しいインスタンスを生成します。
func NewQuoteHandler(uc QuoteUsecase) *QuoteHandler {
	return &QuoteHandler{uc: uc}
}

// Search は銘柄を検索します。
//
// エンドポイント例:
// GET /search?q=apple
func (h *QuoteHandler) Search(c *gin.Context) {
	q := c.Query("q")
	results := h.uc.Search(c.Request.Context(), q)
	c.JSON(http.StatusOK, dto.SearchResponse{Query: q, Results: dto.ToInstrumentResponses(results)})
}

// GetQuote は最新のクォートを返します。kind=cryptoの場合は暗号資産の命名規則で取得します。
//
// エンドポイント例:
// GET /quotes/AAPL
// GET /quotes/BTC?kind=crypto
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	symbol := strings.TrimSpace(c.Param("symbol"))
	if symbol == "" {
		api.BadRequest(c, "symbol is required")
		return
	}

	var q *entity.Quote
	switch entity.Kind(c.DefaultQuery("kind", string(entity.KindStock))) {
	case entity.KindCrypto:
		q = h.uc.GetCryptoQuote(c.Request.Context(), symbol)
	case entity.KindStock, entity.KindETF:
		q = h.uc.GetQuote(c.Request.Context(), strings.ToUpper(symbol))
	default:
		api.BadRequest(c, "kind must be one of stock, etf, crypto")
		return
	}

	if q == nil {
		api.NoData(c)
		return
	}
	c.JSON(http.StatusOK, dto.ToQuoteResponse(*q))
}
