// Package entity はウォッチリストのドメインモデルを定義します。
package entity

import (
	historyentity "stockimate/internal/feature/history/domain/entity"
	quoteentity "stockimate/internal/feature/quotes/domain/entity"
)

// Item はウォッチリストの1銘柄です。
type Item struct {
	Stock   quoteentity.Instrument `json:"stock"`
	AddedAt int64                  `json:"addedAt"` // epoch milliseconds
}

// OverviewEntry はウォッチリスト画面の1行分で、現在価格と1週間のミニチャートを持ちます。
// Quoteは取得できなかった場合nilです。
type OverviewEntry struct {
	Item   Item
	Quote  *quoteentity.Quote
	Series historyentity.Series
}
