// Package handler はhistoryフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stockimate/internal/api"
	"stockimate/internal/feature/history/domain/entity"
	"stockimate/internal/feature/history/transport/http/dto"
)

// DateLayout はクエリパラメータの日付形式です。
const DateLayout = "2006-01-02"

// HistoryUsecase は過去系列のユースケースインターフェースを定義します。
type HistoryUsecase interface {
	GetHistoricalData(ctx context.Context, symbol string, tf entity.Timeframe) entity.Series
	GetPriceAtDate(ctx context.Context, symbol string, date time.Time) (float64, bool)
}

// HistoryHandler は過去系列のHTTPリクエストを処理します。
type HistoryHandler struct {
	uc HistoryUsecase
}

// NewHistoryHandler は指定されたusecaseでHistoryHandlerの新しいインスタンスを生成します。
func NewHistoryHandler(uc HistoryUsecase) *HistoryHandler {
	return &HistoryHandler{uc: uc}
}

// GetHistory は指定期間の系列を返します。
//
// エンドポイント例:
// GET /history/AAPL?timeframe=1M
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	tf, err := entity.ParseTimeframe(c.DefaultQuery("timeframe", string(entity.Timeframe1M)))
	if err != nil {
		api.BadRequest(c, err.Error())
		return
	}

	series := h.uc.GetHistoricalData(c.Request.Context(), symbol, tf)
	if len(series) == 0 {
		api.NoData(c)
		return
	}

	points := make([]dto.PointResponse, 0, len(series))
	for _, p := range series {
		points = append(points, dto.PointResponse{Timestamp: p.TimestampMs, Value: p.Value})
	}
	c.JSON(http.StatusOK, dto.HistoryResponse{Symbol: symbol, Timeframe: string(tf), Points: points})
}

// GetPriceAtDate は指定日に最も近い価格を返します。
//
// エンドポイント例:
// GET /history/AAPL/price?date=2024-01-15
func (h *HistoryHandler) GetPriceAtDate(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	date, err := time.Parse(DateLayout, c.Query("date"))
	if err != nil {
		api.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}

	price, ok := h.uc.GetPriceAtDate(c.Request.Context(), symbol, date)
	if !ok {
		api.NoData(c)
		return
	}
	c.JSON(http.StatusOK, dto.PriceAtDateResponse{Symbol: symbol, Date: date.Format(DateLayout), Price: price})
}
