// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	streamentity "stockimate/internal/feature/streaming/domain/entity"
)

// StreamStatus はライブフィードの接続状態を報告します。
type StreamStatus interface {
	State() streamentity.ConnectionState
	Symbols() []string
}

// HealthHandler は /healthz を処理します。
type HealthHandler struct {
	stream StreamStatus
}

// NewHealthHandler はHealthHandlerを生成します。streamがnilの場合は接続状態を報告しません。
func NewHealthHandler(stream StreamStatus) *HealthHandler {
	return &HealthHandler{stream: stream}
}

// HealthResponse は /healthz のレスポンスです。
type HealthResponse struct {
	Status        string `json:"status"`
	Stream        string `json:"stream,omitempty"`
	Subscriptions int    `json:"subscriptions"`
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// ライブフィードが切断中でもサービス自体は応答可能なため200を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		res := HealthResponse{Status: "ok"}
		if h.stream != nil {
			res.Stream = h.stream.State().String()
			res.Subscriptions = len(h.stream.Symbols())
		}
		c.JSON(http.StatusOK, res)
	}
}
