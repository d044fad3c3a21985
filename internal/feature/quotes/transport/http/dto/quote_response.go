// Package dto はquotesフィーチャーのHTTPレスポンスDTOを定義します。
package dto

import "stockimate/internal/feature/quotes/domain/entity"

// InstrumentResponse は検索結果1件のレスポンスDTOです。
type InstrumentResponse struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Type   string `json:"type"` // stock, etf, crypto
}

// SearchResponse は検索APIのレスポンスDTOです。
type SearchResponse struct {
	Query   string               `json:"query"`
	Results []InstrumentResponse `json:"results"`
}

// QuoteResponse はクォートのレスポンスDTOです。
type QuoteResponse struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Open          float64 `json:"open"`
	PreviousClose float64 `json:"previousClose"`
	Timestamp     int64   `json:"timestamp"` // epoch milliseconds
}

// ToInstrumentResponses はドメインの銘柄をレスポンスDTOに変換します。
func ToInstrumentResponses(in []entity.Instrument) []InstrumentResponse {
	out := make([]InstrumentResponse, 0, len(in))
	for _, i := range in {
		out = append(out, InstrumentResponse{Symbol: i.Symbol, Name: i.Name, Type: string(i.Kind)})
	}
	return out
}

// ToQuoteResponse はドメインのクォートをレスポンスDTOに変換します。
func ToQuoteResponse(q entity.Quote) QuoteResponse {
	return QuoteResponse{
		Symbol:        q.Symbol,
		Price:         q.Price,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		High:          q.High,
		Low:           q.Low,
		Open:          q.Open,
		PreviousClose: q.PreviousClose,
		Timestamp:     q.TimestampMs,
	}
}
