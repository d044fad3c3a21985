// Package handler はpricingフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stockimate/internal/api"
	historyentity "stockimate/internal/feature/history/domain/entity"
	historyhandler "stockimate/internal/feature/history/transport/handler"
	"stockimate/internal/feature/pricing/transport/http/dto"
	"stockimate/internal/feature/pricing/usecase"
)

// PricingUsecase は損益計算のユースケースインターフェースを定義します。
type PricingUsecase interface {
	Calculate(ctx context.Context, symbol string, date time.Time, amount float64, scrub *historyentity.ChartPoint) (usecase.Calculation, error)
	CalculateTarget(ctx context.Context, symbol string, amount, target float64) (usecase.TargetCalculation, error)
}

// PricingHandler は損益計算のHTTPリクエストを処理します。
type PricingHandler struct {
	uc PricingUsecase
}

// NewPricingHandler は指定されたusecaseでPricingHandlerの新しいインスタンスを生成します。
func NewPricingHandler(uc PricingUsecase) *PricingHandler {
	return &PricingHandler{uc: uc}
}

// Calculate は購入日の価格から現在までの損益を返します。
// scrub_tsとscrub_valueが指定された場合はその点を購入価格として使います。
//
// エンドポイント例:
// GET /calculate/AAPL?date=2023-01-03&amount=10000
// GET /calculate/AAPL?amount=10000&scrub_ts=1672704000000&scrub_value=125.07
func (h *PricingHandler) Calculate(c *gin.Context) {
	amount, ok := positiveQuery(c, "amount")
	if !ok {
		return
	}

	scrub, err := parseScrub(c.Query("scrub_ts"), c.Query("scrub_value"))
	if err != nil {
		api.BadRequest(c, err.Error())
		return
	}

	var date time.Time
	if raw := c.Query("date"); raw != "" || scrub == nil {
		date, err = time.Parse(historyhandler.DateLayout, raw)
		if err != nil {
			api.BadRequest(c, "date must be YYYY-MM-DD")
			return
		}
	}

	res, err := h.uc.Calculate(c.Request.Context(), c.Param("symbol"), date, amount, scrub)
	if errors.Is(err, usecase.ErrNoQuote) {
		api.NoData(c)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	var dateOut string
	if !date.IsZero() {
		dateOut = date.Format(historyhandler.DateLayout)
	}
	c.JSON(http.StatusOK, dto.ToProjectionResponse(res, dateOut))
}

// CalculateTarget は現在価格で購入し目標価格で売却した場合の損益を返します。
//
// エンドポイント例:
// GET /calculate/AAPL/target?amount=10000&target=250
func (h *PricingHandler) CalculateTarget(c *gin.Context) {
	amount, ok := positiveQuery(c, "amount")
	if !ok {
		return
	}
	target, err := parseFinite(c.Query("target"))
	if err != nil || target < 0 {
		api.BadRequest(c, "target must be a non-negative number")
		return
	}

	res, err := h.uc.CalculateTarget(c.Request.Context(), c.Param("symbol"), amount, target)
	if errors.Is(err, usecase.ErrNoQuote) {
		api.NoData(c)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, dto.ToTargetResponse(res))
}

func positiveQuery(c *gin.Context, name string) (float64, bool) {
	v, err := parseFinite(c.Query(name))
	if err != nil || v <= 0 {
		api.BadRequest(c, name+" must be a positive number")
		return 0, false
	}
	return v, true
}

// parseScrub は両方が空ならnilを返します。片方だけの指定はエラーです。
func parseScrub(ts, value string) (*historyentity.ChartPoint, error) {
	if ts == "" && value == "" {
		return nil, nil
	}
	ms, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return nil, errors.New("scrub_ts must be epoch milliseconds")
	}
	v, err := parseFinite(value)
	if err != nil || v <= 0 {
		return nil, errors.New("scrub_value must be a positive number")
	}
	return &historyentity.ChartPoint{TimestampMs: ms, Value: v}, nil
}

// parseFinite はNaNとInfを拒否します。
func parseFinite(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("non-finite number")
	}
	return v, nil
}
