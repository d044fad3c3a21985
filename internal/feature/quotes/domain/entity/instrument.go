// Package entity defines the domain models for the quotes feature.
package entity

// Kind is the instrument category supported by the calculator.
type Kind string

const (
	KindStock  Kind = "stock"
	KindETF    Kind = "etf"
	KindCrypto Kind = "crypto"
)

// Instrument represents a tradable instrument resolved from search.
// It is immutable once resolved.
type Instrument struct {
	Symbol string `json:"symbol"` // Provider-format symbol (e.g., "AAPL", "BINANCE:BTCUSDT")
	Name   string `json:"name"`   // Human readable description
	Kind   Kind   `json:"type"`   // stock, etf or crypto
}

// SearchResult is a raw search hit as reported by the quote provider,
// before filtering to supported kinds.
type SearchResult struct {
	Symbol        string
	Description   string
	Type          string // e.g., "Common Stock", "ETF", "Crypto", "ADR"
	DisplaySymbol string
}
