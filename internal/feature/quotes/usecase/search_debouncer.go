package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"stockimate/internal/feature/quotes/domain/entity"
)

// DefaultSearchDelay は検索入力のデバウンス間隔です。
const DefaultSearchDelay = 300 * time.Millisecond

// SearchFunc は1回の検索を実行します。
type SearchFunc func(ctx context.Context, query string) []entity.Instrument

// SearchDebouncer は連続した検索入力をまとめ、最新の入力に対する結果だけを配信します。
// 各入力には単調増加するトークンが割り当てられ、古いトークンの結果は破棄されます。
type SearchDebouncer struct {
	search SearchFunc
	delay  time.Duration

	mu    sync.Mutex
	token uint64
	timer *time.Timer
}

// NewSearchDebouncer はSearchDebouncerを生成します。delay <= 0 の場合は300msを使用します。
func NewSearchDebouncer(search SearchFunc, delay time.Duration) *SearchDebouncer {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &SearchDebouncer{search: search, delay: delay}
}

// Submit は保留中の検索を置き換え、デバウンス間隔の後にqueryを検索するよう予約します。
// deliverはタイマーのgoroutineで呼ばれ、その間に新しい入力がなかった場合のみ実行されます。
// 空の入力は即座に空の結果を配信します。
func (d *SearchDebouncer) Submit(ctx context.Context, query string, deliver func(query string, results []entity.Instrument)) {
	d.mu.Lock()
	d.token++
	token := d.token
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if strings.TrimSpace(query) == "" {
		d.mu.Unlock()
		deliver(query, []entity.Instrument{})
		return
	}
	d.timer = time.AfterFunc(d.delay, func() {
		results := d.search(ctx, query)
		if !d.isLatest(token) {
			return
		}
		deliver(query, results)
	})
	d.mu.Unlock()
}

// Stop は保留中の検索を取り消し、実行中の検索結果も破棄させます。
func (d *SearchDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.token++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *SearchDebouncer) isLatest(token uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.token == token
}
