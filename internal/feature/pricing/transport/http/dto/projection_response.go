// Package dto はpricingフィーチャーのHTTPレスポンスDTOを定義します。
package dto

import (
	"stockimate/internal/feature/pricing/usecase"
	quotedto "stockimate/internal/feature/quotes/transport/http/dto"
)

// ProjectionResponse は損益計算APIのレスポンスDTOです。
// knownがfalseの場合、購入価格が未確定で数値はすべて0です。
type ProjectionResponse struct {
	Symbol        string                 `json:"symbol"`
	Date          string                 `json:"date,omitempty"`
	Scrubbed      bool                   `json:"scrubbed"`
	Known         bool                   `json:"known"`
	Amount        float64                `json:"amount"`
	PurchasePrice float64                `json:"purchasePrice"`
	CurrentPrice  float64                `json:"currentPrice"`
	Shares        float64                `json:"shares"`
	CurrentValue  float64                `json:"currentValue"`
	Profit        float64                `json:"profit"`
	ReturnPercent float64                `json:"returnPercent"`
	Quote         quotedto.QuoteResponse `json:"quote"`
}

// TargetResponse は目標価格計算APIのレスポンスDTOです。
type TargetResponse struct {
	Symbol         string  `json:"symbol"`
	Known          bool    `json:"known"`
	Amount         float64 `json:"amount"`
	CurrentPrice   float64 `json:"currentPrice"`
	TargetPrice    float64 `json:"targetPrice"`
	Shares         float64 `json:"shares"`
	ProjectedValue float64 `json:"projectedValue"`
	Profit         float64 `json:"profit"`
	ReturnPercent  float64 `json:"returnPercent"`
}

// ToProjectionResponse は計算結果をレスポンスDTOに変換します。
func ToProjectionResponse(c usecase.Calculation, date string) ProjectionResponse {
	p := c.Projection
	return ProjectionResponse{
		Symbol:        c.Symbol,
		Date:          date,
		Scrubbed:      c.Scrubbed,
		Known:         p.Known,
		Amount:        p.Amount.InexactFloat64(),
		PurchasePrice: p.PurchasePrice.InexactFloat64(),
		CurrentPrice:  p.CurrentPrice.InexactFloat64(),
		Shares:        p.Shares.InexactFloat64(),
		CurrentValue:  p.CurrentValue.InexactFloat64(),
		Profit:        p.Profit.InexactFloat64(),
		ReturnPercent: p.ReturnPercent.InexactFloat64(),
		Quote:         quotedto.ToQuoteResponse(c.Quote),
	}
}

// ToTargetResponse は目標価格計算の結果をレスポンスDTOに変換します。
func ToTargetResponse(c usecase.TargetCalculation) TargetResponse {
	p := c.Projection
	return TargetResponse{
		Symbol:         c.Symbol,
		Known:          p.Known,
		Amount:         p.Amount.InexactFloat64(),
		CurrentPrice:   p.CurrentPrice.InexactFloat64(),
		TargetPrice:    p.TargetPrice.InexactFloat64(),
		Shares:         p.Shares.InexactFloat64(),
		ProjectedValue: p.ProjectedValue.InexactFloat64(),
		Profit:         p.Profit.InexactFloat64(),
		ReturnPercent:  p.ReturnPercent.InexactFloat64(),
	}
}
