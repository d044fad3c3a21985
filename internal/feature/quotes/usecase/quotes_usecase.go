// Package usecase はクォート取得と銘柄検索のビジネスロジックを実装します。
package usecase

//go:generate mockgen -source=quotes_usecase.go -destination=mock_market_client_test.go -package=usecase_test

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"stockimate/internal/feature/quotes/domain/entity"
	"stockimate/internal/platform/cache"
)

// MaxSearchResults は検索結果の最大件数です。
const MaxSearchResults = 20

// SharedFetchTimeout は同じキーの呼び出し間で共有される上流取得の上限時間です。
// 共有取得は最初の呼び出し元のキャンセルを引き継ぎません。
const SharedFetchTimeout = 15 * time.Second

// MarketClient はクォートプロバイダのREST APIを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketClient interface {
	Search(ctx context.Context, query string) ([]entity.SearchResult, error)
	Quote(ctx context.Context, symbol string) (entity.Quote, error)
}

// QuoteUsecase はキャッシュ付きでクォートと検索結果を提供します。
// 上流の失敗は呼び出し側に伝播せず、nilまたは空リストとして返します。
type QuoteUsecase struct {
	client MarketClient
	quotes *cache.Tiered[entity.Quote]
	search *cache.Tiered[[]entity.Instrument]
	group  singleflight.Group
	log    *zap.Logger
}

// NewQuoteUsecase はQuoteUsecaseの新しいインスタンスを生成します。
func NewQuoteUsecase(
	client MarketClient,
	quotes *cache.Tiered[entity.Quote],
	search *cache.Tiered[[]entity.Instrument],
	log *zap.Logger,
) *QuoteUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuoteUsecase{client: client, quotes: quotes, search: search, log: log}
}

// Search は銘柄を検索し、株式・ETF・暗号資産のみを最大20件返します。
// 空のクエリではネットワークにアクセスしません。
func (u *QuoteUsecase) Search(ctx context.Context, query string) []entity.Instrument {
	q := strings.TrimSpace(query)
	if q == "" {
		return []entity.Instrument{}
	}

	key := "search:" + strings.ToLower(q)
	if v, ok := u.search.Get(ctx, key); ok {
		return v
	}

	v, err, _ := u.group.Do(key, func() (any, error) {
		ctx, cancel := sharedContext(ctx)
		defer cancel()
		raw, err := u.client.Search(ctx, q)
		if err != nil {
			return nil, err
		}
		results := toInstruments(raw)
		u.search.Set(ctx, key, results)
		return results, nil
	})
	if err != nil {
		u.log.Warn("search failed", zap.String("query", q), zap.Error(err))
		return []entity.Instrument{}
	}
	return v.([]entity.Instrument)
}

// GetQuote は最新のクォートを返します。未知のシンボルや上流の失敗時はnilを返します。
func (u *QuoteUsecase) GetQuote(ctx context.Context, symbol string) *entity.Quote {
	key := "quote:" + symbol
	if v, ok := u.quotes.Get(ctx, key); ok {
		return &v
	}

	v, err, _ := u.group.Do(key, func() (any, error) {
		ctx, cancel := sharedContext(ctx)
		defer cancel()
		q, err := u.client.Quote(ctx, symbol)
		if err != nil {
			return nil, err
		}
		u.quotes.Set(ctx, key, q)
		return q, nil
	})
	if err != nil {
		u.log.Warn("quote failed", zap.String("symbol", symbol), zap.Error(err))
		return nil
	}
	q := v.(entity.Quote)
	return &q
}

// GetCryptoQuote は暗号資産のシンボルをBINANCE:<SYMBOL>USDT形式に変換してクォートを取得します。
func (u *QuoteUsecase) GetCryptoQuote(ctx context.Context, symbol string) *entity.Quote {
	return u.GetQuote(ctx, CryptoSymbol(symbol))
}

// ClearCache はクォートと検索のキャッシュを破棄します。
func (u *QuoteUsecase) ClearCache(ctx context.Context) error {
	qErr := u.quotes.Clear(ctx)
	sErr := u.search.Clear(ctx)
	if qErr != nil {
		return fmt.Errorf("clear quote cache: %w", qErr)
	}
	if sErr != nil {
		return fmt.Errorf("clear search cache: %w", sErr)
	}
	return nil
}

// sharedContext はsingleflightで共有する取得用に、呼び出し元の値だけを引き継いだctxを返します。
func sharedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), SharedFetchTimeout)
}

// CryptoSymbol converts a bare crypto ticker ("BTC") into the exchange pair
// the quote provider expects ("BINANCE:BTCUSDT").
func CryptoSymbol(symbol string) string {
	return fmt.Sprintf("BINANCE:%sUSDT", strings.ToUpper(strings.TrimSpace(symbol)))
}

func toInstruments(raw []entity.SearchResult) []entity.Instrument {
	out := make([]entity.Instrument, 0, MaxSearchResults)
	for _, r := range raw {
		kind, ok := mapKind(r.Type)
		if !ok {
			continue
		}
		out = append(out, entity.Instrument{Symbol: r.Symbol, Name: r.Description, Kind: kind})
		if len(out) == MaxSearchResults {
			break
		}
	}
	return out
}

func mapKind(providerType string) (entity.Kind, bool) {
	switch providerType {
	case "Common Stock":
		return entity.KindStock, true
	case "ETF":
		return entity.KindETF, true
	case "Crypto":
		return entity.KindCrypto, true
	default:
		return "", false
	}
}
