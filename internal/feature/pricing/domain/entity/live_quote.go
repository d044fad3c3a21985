// Package entity は価格の突き合わせ（スナップショット＋ティック＋時点価格）のドメインモデルを定義します。
package entity

import (
	"sync"

	historyentity "stockimate/internal/feature/history/domain/entity"
	quoteentity "stockimate/internal/feature/quotes/domain/entity"
	streamentity "stockimate/internal/feature/streaming/domain/entity"
)

// MergeTick applies a trade print to a snapshot. Price and timestamp come
// from the tick; Change and ChangePercent are recomputed against the
// snapshot's PreviousClose; every other field is preserved.
func MergeTick(q quoteentity.Quote, tick streamentity.Tick) quoteentity.Quote {
	q.Price = tick.Price
	q.Change = tick.Price - q.PreviousClose
	if q.PreviousClose != 0 {
		q.ChangePercent = q.Change / q.PreviousClose * 100
	} else {
		q.ChangePercent = 0
	}
	q.TimestampMs = tick.TimestampMs
	return q
}

// LiveQuote はスナップショットに対してストリーミングのティックを反映し続けます。
// スナップショットがない間のティックは無視されます。
type LiveQuote struct {
	mu       sync.Mutex
	snapshot *quoteentity.Quote
}

// NewLiveQuote はsnapshotを初期値とするLiveQuoteを生成します。snapshotはnilでも構いません。
func NewLiveQuote(snapshot *quoteentity.Quote) *LiveQuote {
	l := &LiveQuote{}
	if snapshot != nil {
		s := *snapshot
		l.snapshot = &s
	}
	return l
}

// ApplyTick はティックを反映し、更新後のクォートを返します。
// スナップショットがない場合や別銘柄のティックの場合はokがfalseになります。
func (l *LiveQuote) ApplyTick(tick streamentity.Tick) (quoteentity.Quote, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.snapshot == nil || (tick.Symbol != "" && tick.Symbol != l.snapshot.Symbol) {
		return quoteentity.Quote{}, false
	}
	merged := MergeTick(*l.snapshot, tick)
	l.snapshot = &merged
	return merged, true
}

// SetSnapshot replaces the snapshot, e.g. after a fresh REST fetch.
func (l *LiveQuote) SetSnapshot(q quoteentity.Quote) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshot = &q
}

// Snapshot returns the current merged quote.
func (l *LiveQuote) Snapshot() (quoteentity.Quote, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.snapshot == nil {
		return quoteentity.Quote{}, false
	}
	return *l.snapshot, true
}

// PurchasePrice resolves the purchase price: the scrubbed chart point when the
// user is dragging the chart, else the historical price at the chosen date,
// else 0 meaning "not yet known".
func PurchasePrice(scrub *historyentity.ChartPoint, historical float64, ok bool) float64 {
	if scrub != nil {
		return scrub.Value
	}
	if ok {
		return historical
	}
	return 0
}
