package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockimate/internal/platform/externalapi"
)

func TestClient_Chart_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/AAPL", r.URL.Path)
		assert.Equal(t, "1mo", r.URL.Query().Get("range"))
		assert.Equal(t, "1h", r.URL.Query().Get("interval"))
		assert.Equal(t, "false", r.URL.Query().Get("includePrePost"))
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))

		_, _ = w.Write([]byte(`{"chart":{"result":[{
			"timestamp":[1700000000,1700003600,1700007200],
			"indicators":{"quote":[{"close":[150.1,null,151.3]}]}
		}],"error":null}}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, UserAgent: "Mozilla/5.0"}, server.Client(), nil)
	series, err := c.Chart(context.Background(), "AAPL", "1mo", "1h")
	require.NoError(t, err)

	// null close is filtered out
	require.Len(t, series, 2)
	assert.Equal(t, int64(1700000000000), series[0].TimestampMs)
	assert.Equal(t, 151.3, series[1].Value)
	assert.Equal(t, int64(1700007200000), series[1].TimestampMs)
}

func TestClient_Chart_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, `{}`, externalapi.ErrNetwork},
		{"server error", http.StatusInternalServerError, ``, externalapi.ErrNetwork},
		{"no content", http.StatusNoContent, ``, externalapi.ErrNetwork},
		{"not modified", http.StatusNotModified, ``, externalapi.ErrNetwork},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, externalapi.ErrNoData},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`, externalapi.ErrNoData},
		{"all null", http.StatusOK, `{"chart":{"result":[{"timestamp":[1,2],"indicators":{"quote":[{"close":[null,null]}]}}]}}`, externalapi.ErrNoData},
		{"invalid json", http.StatusOK, `{invalid`, externalapi.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(Config{BaseURL: server.URL}, server.Client(), nil)
			_, err := c.Chart(context.Background(), "AAPL", "1d", "5m")
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestClient_Chart_EscapesSymbol(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/BRK B", r.URL.Path)
		_, _ = w.Write([]byte(`{"chart":{"result":[{"timestamp":[1],"indicators":{"quote":[{"close":[1]}]}}]}}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL}, server.Client(), nil)
	_, err := c.Chart(context.Background(), "BRK B", "1d", "5m")
	require.NoError(t, err)
}
