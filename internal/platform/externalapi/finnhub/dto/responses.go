// Package dto defines data transfer objects for the Finnhub API responses.
package dto

// SearchResponse represents the JSON response from the /search endpoint.
type SearchResponse struct {
	Count  int `json:"count"`
	Result []struct {
		Symbol        string `json:"symbol"`
		Description   string `json:"description"`
		Type          string `json:"type"`
		DisplaySymbol string `json:"displaySymbol"`
	} `json:"result"`
}

// QuoteResponse represents the JSON response from the /quote endpoint.
type QuoteResponse struct {
	C  float64 `json:"c"`  // Current price
	D  float64 `json:"d"`  // Change
	DP float64 `json:"dp"` // Percent change
	H  float64 `json:"h"`  // High
	L  float64 `json:"l"`  // Low
	O  float64 `json:"o"`  // Open
	PC float64 `json:"pc"` // Previous close
	T  int64   `json:"t"`  // Timestamp (seconds)
}

// CandleResponse represents the JSON response from the /stock/candle endpoint.
type CandleResponse struct {
	S string    `json:"s"` // "ok" or "no_data"
	T []int64   `json:"t"` // Timestamps (seconds)
	C []float64 `json:"c"` // Closes
}
