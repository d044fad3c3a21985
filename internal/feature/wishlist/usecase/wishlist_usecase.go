// Package usecase はウォッチリストの永続化と概要取得を実装します。
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	historyentity "stockimate/internal/feature/history/domain/entity"
	quoteentity "stockimate/internal/feature/quotes/domain/entity"
	"stockimate/internal/feature/wishlist/domain/entity"
)

// DefaultStorageKey はリスト全体を保存するキーです。
const DefaultStorageKey = "stockimate:wishlist"

// overviewConcurrency はOverviewで同時に上流へ問い合わせる銘柄数の上限です。
const overviewConcurrency = 4

// ErrInvalidSymbol は空のシンボルが指定された場合に返されます。
var ErrInvalidSymbol = errors.New("symbol is required")

// ErrLoad は保存済みリストを読み込めなかった場合に返されます。
// この場合Add/Removeは書き込みを行いません。
var ErrLoad = errors.New("failed to load wishlist")

// KVStore はキーに対してバイト列を読み書きするストアです。
// キーが存在しない場合Getはnil, nilを返します。
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// QuoteProvider は現在価格を取得します。
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) *quoteentity.Quote
}

// SeriesProvider は過去系列を取得します。
type SeriesProvider interface {
	GetHistoricalData(ctx context.Context, symbol string, tf historyentity.Timeframe) historyentity.Series
}

// WishlistUsecase はウォッチリストを管理します。
type WishlistUsecase struct {
	store   KVStore
	key     string
	quotes  QuoteProvider
	history SeriesProvider
	now     func() time.Time
	log     *zap.Logger

	// serializes read-modify-write of the stored list
	mu sync.Mutex
}

// Option はWishlistUsecaseの設定を変更します。
type Option func(*WishlistUsecase)

// WithClock は追加日時に使う時刻取得関数を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(u *WishlistUsecase) { u.now = now }
}

// NewWishlistUsecase はWishlistUsecaseの新しいインスタンスを生成します。keyが空の場合はDefaultStorageKeyを使います。
func NewWishlistUsecase(
	store KVStore,
	key string,
	quotes QuoteProvider,
	history SeriesProvider,
	log *zap.Logger,
	opts ...Option,
) *WishlistUsecase {
	if key == "" {
		key = DefaultStorageKey
	}
	if log == nil {
		log = zap.NewNop()
	}
	u := &WishlistUsecase{
		store:   store,
		key:     key,
		quotes:  quotes,
		history: history,
		now:     time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// List は保存されているリストを新しい順で返します。読み込みに失敗した場合は空のリストを返します。
func (u *WishlistUsecase) List(ctx context.Context) []entity.Item {
	u.mu.Lock()
	defer u.mu.Unlock()

	items, err := u.load(ctx)
	if err != nil {
		u.log.Error("wishlist unavailable, returning empty list", zap.String("key", u.key), zap.Error(err))
		return []entity.Item{}
	}
	return items
}

// Add は銘柄を先頭に追加します。既に存在する場合は何もしません。
// 読み込みに失敗した場合はErrLoadを返し、保存済みのリストは変更しません。
func (u *WishlistUsecase) Add(ctx context.Context, stock quoteentity.Instrument) ([]entity.Item, error) {
	stock.Symbol = normalize(stock.Symbol)
	if stock.Symbol == "" {
		return nil, ErrInvalidSymbol
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	items, err := u.load(ctx)
	if err != nil {
		return nil, err
	}
	if indexOf(items, stock.Symbol) >= 0 {
		return items, nil
	}

	items = append([]entity.Item{{Stock: stock, AddedAt: u.now().UnixMilli()}}, items...)
	if err := u.save(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Remove は銘柄をリストから削除します。存在しない場合は何もしません。
func (u *WishlistUsecase) Remove(ctx context.Context, symbol string) ([]entity.Item, error) {
	symbol = normalize(symbol)

	u.mu.Lock()
	defer u.mu.Unlock()

	items, err := u.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(items, symbol)
	if i < 0 {
		return items, nil
	}

	items = append(items[:i:i], items[i+1:]...)
	if err := u.save(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Contains は銘柄がリストに含まれるかを返します。
func (u *WishlistUsecase) Contains(ctx context.Context, symbol string) bool {
	return indexOf(u.List(ctx), normalize(symbol)) >= 0
}

// Overview は各銘柄の現在価格と1週間の系列を並行して取得します。
// 取得できなかった銘柄もQuote=nil・空の系列で結果に含めます。
func (u *WishlistUsecase) Overview(ctx context.Context) ([]entity.OverviewEntry, error) {
	items := u.List(ctx)
	out := make([]entity.OverviewEntry, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(overviewConcurrency)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = entity.OverviewEntry{
				Item:   item,
				Quote:  u.quotes.GetQuote(gctx, item.Stock.Symbol),
				Series: u.history.GetHistoricalData(gctx, item.Stock.Symbol, historyentity.Timeframe1W),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("wishlist overview: %w", err)
	}
	return out, nil
}

// Symbols は保存されているシンボルを新しい順で返します。
func (u *WishlistUsecase) Symbols(ctx context.Context) []string {
	items := u.List(ctx)
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Stock.Symbol)
	}
	return out
}

// load は保存済みのリストを読み込みます。キーが存在しない場合は空のリストです。
func (u *WishlistUsecase) load(ctx context.Context) ([]entity.Item, error) {
	raw, err := u.store.Get(ctx, u.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if len(raw) == 0 {
		return []entity.Item{}, nil
	}

	var items []entity.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrLoad, err)
	}
	return items, nil
}

func (u *WishlistUsecase) save(ctx context.Context, items []entity.Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal wishlist: %w", err)
	}
	if err := u.store.Set(ctx, u.key, raw); err != nil {
		return fmt.Errorf("failed to save wishlist: %w", err)
	}
	return nil
}

func indexOf(items []entity.Item, symbol string) int {
	for i, it := range items {
		if it.Stock.Symbol == symbol {
			return i
		}
	}
	return -1
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
