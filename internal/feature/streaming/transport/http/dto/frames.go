// Package dto は下流WebSocket(/ws)でやり取りするフレームを定義します。
package dto

import quotedto "stockimate/internal/feature/quotes/transport/http/dto"

// フレーム種別
const (
	TypeSubscribe    = "subscribe"
	TypeUnsubscribe  = "unsubscribe"
	TypeSearch       = "search"
	TypeQuote        = "quote"
	TypeSearchResult = "search_result"
	TypeError        = "error"
)

// ClientFrame はクライアントから受信するフレームです。
type ClientFrame struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol,omitempty"`
	Query  string `json:"query,omitempty"`
}

// QuoteFrame は突き合わせ済みのクォートを通知します。
type QuoteFrame struct {
	Type  string                 `json:"type"`
	Quote quotedto.QuoteResponse `json:"quote"`
}

// SearchResultFrame は検索結果を通知します。
type SearchResultFrame struct {
	Type    string                        `json:"type"`
	Query   string                        `json:"query"`
	Results []quotedto.InstrumentResponse `json:"results"`
}

// ErrorFrame はクライアントの誤りを通知します。
type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
