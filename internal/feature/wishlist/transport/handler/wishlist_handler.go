// Package handler はwishlistフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stockimate/internal/api"
	quoteentity "stockimate/internal/feature/quotes/domain/entity"
	"stockimate/internal/feature/wishlist/domain/entity"
	"stockimate/internal/feature/wishlist/transport/http/dto"
	"stockimate/internal/feature/wishlist/usecase"
)

// WishlistUsecase はウォッチリスト操作のユースケースを定義します。
type WishlistUsecase interface {
	List(ctx context.Context) []entity.Item
	Add(ctx context.Context, stock quoteentity.Instrument) ([]entity.Item, error)
	Remove(ctx context.Context, symbol string) ([]entity.Item, error)
	Overview(ctx context.Context) ([]entity.OverviewEntry, error)
}

// WishlistHandler はウォッチリストのHTTPリクエストを処理します。
type WishlistHandler struct {
	uc  WishlistUsecase
	log *zap.Logger
}

// NewWishlistHandler はWishlistHandlerの新しいインスタンスを生成します。
func NewWishlistHandler(uc WishlistUsecase, log *zap.Logger) *WishlistHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WishlistHandler{uc: uc, log: log}
}

// List はウォッチリストを新しい順で返します。
//
// エンドポイント例:
// GET /wishlist
func (h *WishlistHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToListResponse(h.uc.List(c.Request.Context())))
}

// Add は銘柄を追加します。
// - バリデーションエラー時は400を返却
// - 読み込み失敗時は503を返却(保存済みのリストは変更しない)
// - 保存失敗時は500を返却
// - 成功時は更新後のリストと201を返却
//
// エンドポイント例:
// POST /wishlist {"symbol":"AAPL","name":"APPLE INC","type":"stock"}
func (h *WishlistHandler) Add(c *gin.Context) {
	var req dto.AddReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("wishlist add validation failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		api.BadRequest(c, "invalid request")
		return
	}

	kind := quoteentity.Kind(req.Type)
	if kind == "" {
		kind = quoteentity.KindStock
	}
	items, err := h.uc.Add(c.Request.Context(), quoteentity.Instrument{Symbol: req.Symbol, Name: req.Name, Kind: kind})
	if errors.Is(err, usecase.ErrInvalidSymbol) {
		api.BadRequest(c, err.Error())
		return
	}
	if errors.Is(err, usecase.ErrLoad) {
		h.log.Error("wishlist add aborted", zap.String("symbol", req.Symbol), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "wishlist unavailable"})
		return
	}
	if err != nil {
		h.log.Error("wishlist add failed", zap.String("symbol", req.Symbol), zap.Error(err))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to save wishlist"})
		return
	}
	c.JSON(http.StatusCreated, dto.ToListResponse(items))
}

// Remove は銘柄を削除します。存在しない銘柄の指定はエラーになりません。
//
// エンドポイント例:
// DELETE /wishlist/AAPL
func (h *WishlistHandler) Remove(c *gin.Context) {
	items, err := h.uc.Remove(c.Request.Context(), c.Param("symbol"))
	if errors.Is(err, usecase.ErrLoad) {
		h.log.Error("wishlist remove aborted", zap.String("symbol", c.Param("symbol")), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "wishlist unavailable"})
		return
	}
	if err != nil {
		h.log.Error("wishlist remove failed", zap.String("symbol", c.Param("symbol")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to save wishlist"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListResponse(items))
}

// Overview は各銘柄の現在価格と1週間のミニチャートを返します。
//
// エンドポイント例:
// GET /wishlist/overview
func (h *WishlistHandler) Overview(c *gin.Context) {
	entries, err := h.uc.Overview(c.Request.Context())
	if err != nil {
		h.log.Warn("wishlist overview aborted", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "overview unavailable"})
		return
	}
	c.JSON(http.StatusOK, dto.ToOverviewResponse(entries))
}
