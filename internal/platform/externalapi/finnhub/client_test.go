package finnhub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockimate/internal/platform/config"
	"stockimate/internal/platform/externalapi"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: server.URL}, server.Client(), nil, nil)
}

func TestConfigFrom(t *testing.T) {
	t.Parallel()

	cfg := ConfigFrom(config.FinnhubConfig{APIKey: "k", BaseURL: "https://finnhub.io/api/v1", WSURL: "wss://ws.finnhub.io"})
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "wss://ws.finnhub.io?token=k", cfg.StreamURL())
}

func TestClient_Search_Success(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "apple", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":2,"result":[
			{"symbol":"AAPL","description":"APPLE INC","type":"Common Stock","displaySymbol":"AAPL"},
			{"symbol":"AAPL.MX","description":"APPLE INC","type":"ADR","displaySymbol":"AAPL.MX"}
		]}`))
	})

	got, err := c.Search(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "AAPL", got[0].Symbol)
	assert.Equal(t, "Common Stock", got[0].Type)
	assert.Equal(t, "ADR", got[1].Type)
}

func TestClient_Quote_Success(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		_, _ = w.Write([]byte(`{"c":150.5,"d":1.5,"dp":1.0067,"h":151,"l":148,"o":149,"pc":149,"t":1700000000}`))
	})

	q, err := c.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, 150.5, q.Price)
	assert.Equal(t, 149.0, q.PreviousClose)
	assert.Equal(t, int64(1700000000000), q.TimestampMs)
}

// TestClient_Quote_ZeroPrice は現在値0の応答がErrNoDataになることを検証します。
func TestClient_Quote_ZeroPrice(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
	})

	_, err := c.Quote(context.Background(), "NOPE")
	assert.True(t, errors.Is(err, externalapi.ErrNoData))
}

func TestClient_Candles_Success(t *testing.T) {
	t.Parallel()

	from := time.Unix(1700000000, 0)
	to := time.Unix(1700600000, 0)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/candle", r.URL.Path)
		assert.Equal(t, "D", r.URL.Query().Get("resolution"))
		assert.Equal(t, "1700000000", r.URL.Query().Get("from"))
		assert.Equal(t, "1700600000", r.URL.Query().Get("to"))
		_, _ = w.Write([]byte(`{"s":"ok","t":[1700000000,1700086400],"c":[100.5,101.25]}`))
	})

	series, err := c.Candles(context.Background(), "AAPL", "D", from, to)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, int64(1700086400000), series[1].TimestampMs)
	assert.Equal(t, 101.25, series[1].Value)
}

func TestClient_Candles_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"no data status", `{"s":"no_data"}`, externalapi.ErrNoData},
		{"ok but empty", `{"s":"ok","t":[],"c":[]}`, externalapi.ErrNoData},
		{"length mismatch", `{"s":"ok","t":[1,2],"c":[1]}`, externalapi.ErrParse},
		{"invalid json", `{invalid json`, externalapi.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Candles(context.Background(), "AAPL", "D", time.Now().Add(-time.Hour), time.Now())
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
	}{
		{"unauthorized", http.StatusUnauthorized},
		{"forbidden", http.StatusForbidden},
		{"too many requests", http.StatusTooManyRequests},
		{"internal server error", http.StatusInternalServerError},
		{"no content", http.StatusNoContent},
		{"not modified", http.StatusNotModified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			})
			_, err := c.Quote(context.Background(), "AAPL")
			require.Error(t, err)
			assert.True(t, errors.Is(err, externalapi.ErrNetwork))
			assert.Contains(t, err.Error(), "finnhub http")
		})
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Search(ctx, "apple")
	require.Error(t, err)
	assert.True(t, errors.Is(err, externalapi.ErrNetwork))
}

type countingLimiter struct{ calls int }

func (l *countingLimiter) Wait(ctx context.Context) error {
	l.calls++
	return ctx.Err()
}

// TestClient_UsesRateLimiter はリクエスト毎にレートリミッタを通過することを検証します。
func TestClient_UsesRateLimiter(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":0,"result":[]}`))
	}))
	defer server.Close()

	lim := &countingLimiter{}
	c := NewClient(Config{BaseURL: server.URL}, server.Client(), lim, nil)

	_, err := c.Search(context.Background(), "a")
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, 2, lim.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Search(ctx, "c")
	assert.ErrorIs(t, err, context.Canceled)
}
