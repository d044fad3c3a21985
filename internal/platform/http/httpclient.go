// Package http provides the outbound HTTP client shared by the market data adapters.
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（デフォルトより短い）
//   - MaxIdleConnsPerHost: Finnhub/Yahooの2ホストに接続が集中するため多めに確保
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
//
// headers はリクエストに未設定の場合のみ付与されます（例: Yahooが要求するUser-Agent）。
func NewHTTPClient(timeout time.Duration, headers map[string]string) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	}

	var rt http.RoundTripper = t
	if len(headers) > 0 {
		rt = &headerTransport{base: t, headers: headers}
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}

// headerTransport sets default headers without overriding ones already present.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (h *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	missing := false
	for k := range h.headers {
		if req.Header.Get(k) == "" {
			missing = true
			break
		}
	}
	if !missing {
		return h.base.RoundTrip(req)
	}

	// RoundTrippers must not mutate the caller's request.
	r := req.Clone(req.Context())
	for k, v := range h.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return h.base.RoundTrip(r)
}
