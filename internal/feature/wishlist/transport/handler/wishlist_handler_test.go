package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	historyentity "stockimate/internal/feature/history/domain/entity"
	quoteentity "stockimate/internal/feature/quotes/domain/entity"
	"stockimate/internal/feature/wishlist/domain/entity"
	"stockimate/internal/feature/wishlist/transport/handler"
	"stockimate/internal/feature/wishlist/usecase"
)

// mockWishlistUsecase はWishlistUsecaseインターフェースのモック実装です。
type mockWishlistUsecase struct {
	ListFunc     func(ctx context.Context) []entity.Item
	AddFunc      func(ctx context.Context, stock quoteentity.Instrument) ([]entity.Item, error)
	RemoveFunc   func(ctx context.Context, symbol string) ([]entity.Item, error)
	OverviewFunc func(ctx context.Context) ([]entity.OverviewEntry, error)
}

func (m *mockWishlistUsecase) List(ctx context.Context) []entity.Item {
	return m.ListFunc(ctx)
}

func (m *mockWishlistUsecase) Add(ctx context.Context, stock quoteentity.Instrument) ([]entity.Item, error) {
	return m.AddFunc(ctx, stock)
}

func (m *mockWishlistUsecase) Remove(ctx context.Context, symbol string) ([]entity.Item, error) {
	return m.RemoveFunc(ctx, symbol)
}

func (m *mockWishlistUsecase) Overview(ctx context.Context) ([]entity.OverviewEntry, error) {
	return m.OverviewFunc(ctx)
}

func newRouter(uc *mockWishlistUsecase) *gin.Engine {
	h := handler.NewWishlistHandler(uc, nil)
	router := gin.New()
	router.GET("/wishlist", h.List)
	router.POST("/wishlist", h.Add)
	router.DELETE("/wishlist/:symbol", h.Remove)
	router.GET("/wishlist/overview", h.Overview)
	return router
}

var appleItem = entity.Item{
	Stock:   quoteentity.Instrument{Symbol: "AAPL", Name: "APPLE INC", Kind: quoteentity.KindStock},
	AddedAt: 42,
}

const appleJSON = `{"stock":{"symbol":"AAPL","name":"APPLE INC","type":"stock"},"addedAt":42}`

// TestWishlistHandler はウォッチリストAPIのHTTPリクエスト/レスポンス処理をテストします。
func TestWishlistHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		method         string
		url            string
		body           string
		uc             *mockWishlistUsecase
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "list: empty",
			method: http.MethodGet,
			url:    "/wishlist",
			uc: &mockWishlistUsecase{ListFunc: func(ctx context.Context) []entity.Item {
				return []entity.Item{}
			}},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"items":[]}`,
		},
		{
			name:   "add: default type is stock",
			method: http.MethodPost,
			url:    "/wishlist",
			body:   `{"symbol":"AAPL","name":"APPLE INC"}`,
			uc: &mockWishlistUsecase{AddFunc: func(ctx context.Context, stock quoteentity.Instrument) ([]entity.Item, error) {
				assert.Equal(t, quoteentity.Instrument{Symbol: "AAPL", Name: "APPLE INC", Kind: quoteentity.KindStock}, stock)
				return []entity.Item{appleItem}, nil
			}},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"items":[` + appleJSON + `]}`,
		},
		{
			name:           "add: invalid type",
			method:         http.MethodPost,
			url:            "/wishlist",
			body:           `{"symbol":"AAPL","type":"bond"}`,
			uc:             &mockWishlistUsecase{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request"}`,
		},
		{
			name:           "add: missing symbol",
			method:         http.MethodPost,
			url:            "/wishlist",
			body:           `{"name":"x"}`,
			uc:             &mockWishlistUsecase{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request"}`,
		},
		{
			name:   "add: blank symbol",
			method: http.MethodPost,
			url:    "/wishlist",
			body:   `{"symbol":"  "}`,
			uc: &mockWishlistUsecase{AddFunc: func(ctx context.Context, stock quoteentity.Instrument) ([]entity.Item, error) {
				return nil, usecase.ErrInvalidSymbol
			}},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"symbol is required"}`,
		},
		{
			name:   "add: save failure",
			method: http.MethodPost,
			url:    "/wishlist",
			body:   `{"symbol":"AAPL"}`,
			uc: &mockWishlistUsecase{AddFunc: func(ctx context.Context, stock quoteentity.Instrument) ([]entity.Item, error) {
				return nil, errors.New("redis down")
			}},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"failed to save wishlist"}`,
		},
		{
			name:   "add: load failure",
			method: http.MethodPost,
			url:    "/wishlist",
			body:   `{"symbol":"AAPL"}`,
			uc: &mockWishlistUsecase{AddFunc: func(ctx context.Context, stock quoteentity.Instrument) ([]entity.Item, error) {
				return nil, fmt.Errorf("%w: redis down", usecase.ErrLoad)
			}},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"error":"wishlist unavailable"}`,
		},
		{
			name:   "remove: load failure",
			method: http.MethodDelete,
			url:    "/wishlist/AAPL",
			uc: &mockWishlistUsecase{RemoveFunc: func(ctx context.Context, symbol string) ([]entity.Item, error) {
				return nil, usecase.ErrLoad
			}},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"error":"wishlist unavailable"}`,
		},
		{
			name:   "remove",
			method: http.MethodDelete,
			url:    "/wishlist/AAPL",
			uc: &mockWishlistUsecase{RemoveFunc: func(ctx context.Context, symbol string) ([]entity.Item, error) {
				assert.Equal(t, "AAPL", symbol)
				return []entity.Item{}, nil
			}},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"items":[]}`,
		},
		{
			name:   "overview: quote missing is null",
			method: http.MethodGet,
			url:    "/wishlist/overview",
			uc: &mockWishlistUsecase{OverviewFunc: func(ctx context.Context) ([]entity.OverviewEntry, error) {
				return []entity.OverviewEntry{{
					Item:   appleItem,
					Series: historyentity.Series{{TimestampMs: 1, Value: 2}},
				}}, nil
			}},
			expectedStatus: http.StatusOK,
			expectedBody: `{"items":[{"stock":{"symbol":"AAPL","name":"APPLE INC","type":"stock"},"addedAt":42,` +
				`"quote":null,"points":[{"timestamp":1,"value":2}]}]}`,
		},
		{
			name:   "overview: aborted",
			method: http.MethodGet,
			url:    "/wishlist/overview",
			uc: &mockWishlistUsecase{OverviewFunc: func(ctx context.Context) ([]entity.OverviewEntry, error) {
				return nil, context.Canceled
			}},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"error":"overview unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(tt.uc)

			req := httptest.NewRequest(tt.method, tt.url, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
