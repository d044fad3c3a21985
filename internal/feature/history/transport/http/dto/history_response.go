// Package dto はhistoryフィーチャーのHTTPレスポンスDTOを定義します。
package dto

// PointResponse は系列の1点です。
type PointResponse struct {
	Timestamp int64   `json:"timestamp"` // epoch milliseconds
	Value     float64 `json:"value"`
}

// HistoryResponse は系列取得APIのレスポンスDTOです。
type HistoryResponse struct {
	Symbol    string          `json:"symbol"`
	Timeframe string          `json:"timeframe"`
	Points    []PointResponse `json:"points"`
}

// PriceAtDateResponse は時点価格APIのレスポンスDTOです。
type PriceAtDateResponse struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"` // YYYY-MM-DD
	Price  float64 `json:"price"`
}
