// Package adapters はストリーミングの上流接続とティックの出力先を実装します。
package adapters

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"stockimate/internal/feature/streaming/usecase"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteWait        = 5 * time.Second
	maxMessageSize          = 512 * 1024
)

// WSDialer はgorilla/websocketで上流のストリーミングエンドポイントに接続します。
type WSDialer struct {
	url       string
	dialer    *websocket.Dialer
	writeWait time.Duration
}

var _ usecase.Dialer = (*WSDialer)(nil)

// NewWSDialer はurl（APIキーのクエリパラメータを含む）に接続するダイアラーを生成します。
func NewWSDialer(url string) *WSDialer {
	return &WSDialer{
		url: url,
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: defaultHandshakeTimeout,
		},
		writeWait: defaultWriteWait,
	}
}

// Dial は接続を開き、usecase.Connとして返します。
func (d *WSDialer) Dial(ctx context.Context) (usecase.Conn, error) {
	c, res, err := d.dialer.DialContext(ctx, d.url, nil)
	if err != nil {
		if res != nil {
			return nil, fmt.Errorf("stream handshake status %d: %w", res.StatusCode, err)
		}
		return nil, err
	}
	c.SetReadLimit(maxMessageSize)
	return &wsConn{conn: c, writeWait: d.writeWait}, nil
}

type wsConn struct {
	conn      *websocket.Conn
	writeWait time.Duration
	writeMu   sync.Mutex
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) WriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}
