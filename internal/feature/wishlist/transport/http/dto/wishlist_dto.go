// Package dto はwishlistフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	historydto "stockimate/internal/feature/history/transport/http/dto"
	quotedto "stockimate/internal/feature/quotes/transport/http/dto"
	"stockimate/internal/feature/wishlist/domain/entity"
)

// AddReq は POST /wishlist のリクエストボディです。typeを省略した場合はstockとして扱います。
type AddReq struct {
	Symbol string `json:"symbol" binding:"required"`
	Name   string `json:"name"`
	Type   string `json:"type" binding:"omitempty,oneof=stock etf crypto"`
}

// ItemResponse はウォッチリストの1銘柄です。
type ItemResponse struct {
	Stock   quotedto.InstrumentResponse `json:"stock"`
	AddedAt int64                       `json:"addedAt"`
}

// ListResponse はウォッチリスト一覧のレスポンスDTOです。
type ListResponse struct {
	Items []ItemResponse `json:"items"`
}

// OverviewItemResponse は概要の1行です。quoteは取得できなかった場合null。
type OverviewItemResponse struct {
	ItemResponse
	Quote  *quotedto.QuoteResponse     `json:"quote"`
	Points []historydto.PointResponse `json:"points"`
}

// OverviewResponse はウォッチリスト概要のレスポンスDTOです。
type OverviewResponse struct {
	Items []OverviewItemResponse `json:"items"`
}

// ToListResponse はドメインのリストをレスポンスDTOに変換します。
func ToListResponse(items []entity.Item) ListResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItem(it))
	}
	return ListResponse{Items: out}
}

// ToOverviewResponse はドメインの概要をレスポンスDTOに変換します。
func ToOverviewResponse(entries []entity.OverviewEntry) OverviewResponse {
	out := make([]OverviewItemResponse, 0, len(entries))
	for _, e := range entries {
		row := OverviewItemResponse{
			ItemResponse: toItem(e.Item),
			Points:       make([]historydto.PointResponse, 0, len(e.Series)),
		}
		if e.Quote != nil {
			q := quotedto.ToQuoteResponse(*e.Quote)
			row.Quote = &q
		}
		for _, p := range e.Series {
			row.Points = append(row.Points, historydto.PointResponse{Timestamp: p.TimestampMs, Value: p.Value})
		}
		out = append(out, row)
	}
	return OverviewResponse{Items: out}
}

func toItem(it entity.Item) ItemResponse {
	return ItemResponse{
		Stock: quotedto.InstrumentResponse{
			Symbol: it.Stock.Symbol,
			Name:   it.Stock.Name,
			Type:   string(it.Stock.Kind),
		},
		AddedAt: it.AddedAt,
	}
}
