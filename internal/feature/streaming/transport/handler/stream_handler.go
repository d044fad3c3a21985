// Package handler は下流WebSocketのハンドラーを提供します。
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	quoteentity "stockimate/internal/feature/quotes/domain/entity"
	quotedto "stockimate/internal/feature/quotes/transport/http/dto"
	quotesusecase "stockimate/internal/feature/quotes/usecase"
	"stockimate/internal/feature/streaming/transport/http/dto"
)

const (
	maxMessageSize = 4 * 1024
	sendBuffer     = 256
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
)

// Tracker はスナップショットとライブティックを突き合わせたクォートを配信します。
// ctxのキャンセルで購読が解除されます。
type Tracker interface {
	Track(ctx context.Context, symbol string, onUpdate func(quoteentity.Quote)) (cancel func())
}

// Searcher は銘柄検索を提供します。
type Searcher interface {
	Search(ctx context.Context, query string) []quoteentity.Instrument
}

// Option はStreamHandlerの設定を変更します。
type Option func(*StreamHandler)

// WithSearchDelay は検索のデバウンス間隔を変更します。
func WithSearchDelay(d time.Duration) Option {
	return func(h *StreamHandler) { h.searchDelay = d }
}

// StreamHandler は/wsへの接続をセッションとして扱います。
type StreamHandler struct {
	tracker     Tracker
	searcher    Searcher
	upgrader    websocket.Upgrader
	searchDelay time.Duration
	log         *zap.Logger
}

// NewStreamHandler はStreamHandlerの新しいインスタンスを生成します。
func NewStreamHandler(tracker Tracker, searcher Searcher, log *zap.Logger, opts ...Option) *StreamHandler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &StreamHandler{
		tracker:  tracker,
		searcher: searcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// スマホアプリからの接続のためOriginは検査しない
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		searchDelay: quotesusecase.DefaultSearchDelay,
		log:         log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve はWebSocketへアップグレードしてセッションを開始します。
//
// エンドポイント例:
// GET /ws
func (h *StreamHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:      uuid.NewString(),
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		subs:    make(map[string]context.CancelFunc),
		tracker: h.tracker,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.log = h.log.With(zap.String("session", s.id))
	s.debouncer = quotesusecase.NewSearchDebouncer(h.searcher.Search, h.searchDelay)

	s.log.Info("stream session opened", zap.String("remote", conn.RemoteAddr().String()))
	go s.writePump()
	go s.readPump()
}

type session struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	tracker   Tracker
	debouncer *quotesusecase.SearchDebouncer
	log       *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	subs   map[string]context.CancelFunc
	closed bool
}

func (s *session) readPump() {
	defer s.close()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("stream session read failed", zap.Error(err))
			}
			return
		}

		var f dto.ClientFrame
		if err := json.Unmarshal(data, &f); err != nil {
			s.sendError("invalid JSON")
			continue
		}
		s.handle(f)
	}
}

func (s *session) handle(f dto.ClientFrame) {
	switch f.Type {
	case dto.TypeSubscribe:
		symbol := strings.ToUpper(strings.TrimSpace(f.Symbol))
		if symbol == "" {
			s.sendError("symbol is required")
			return
		}
		s.subscribe(symbol)
	case dto.TypeUnsubscribe:
		s.unsubscribe(strings.ToUpper(strings.TrimSpace(f.Symbol)))
	case dto.TypeSearch:
		s.debouncer.Submit(s.ctx, f.Query, s.sendSearchResult)
	default:
		s.sendError("unknown frame type " + f.Type)
	}
}

func (s *session) subscribe(symbol string) {
	s.mu.Lock()
	if _, ok := s.subs[symbol]; ok || s.closed {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.subs[symbol] = cancel
	s.mu.Unlock()

	// Track fetches the snapshot over the network; keep the read loop free.
	// Cancelling ctx releases the subscription.
	go s.tracker.Track(ctx, symbol, s.sendQuote)
}

func (s *session) unsubscribe(symbol string) {
	s.mu.Lock()
	cancel, ok := s.subs[symbol]
	delete(s.subs, symbol)
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

func (s *session) sendQuote(q quoteentity.Quote) {
	s.enqueue(dto.QuoteFrame{Type: dto.TypeQuote, Quote: quotedto.ToQuoteResponse(q)})
}

func (s *session) sendSearchResult(query string, results []quoteentity.Instrument) {
	s.enqueue(dto.SearchResultFrame{
		Type:    dto.TypeSearchResult,
		Query:   query,
		Results: quotedto.ToInstrumentResponses(results),
	})
}

func (s *session) sendError(msg string) {
	s.enqueue(dto.ErrorFrame{Type: dto.TypeError, Message: msg})
}

// enqueue はクライアントが送信バッファを消化していない場合フレームを破棄します。
func (s *session) enqueue(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error("failed to encode frame", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- b:
	default:
		s.log.Warn("send buffer full, dropping frame")
	}
}

func (s *session) close() {
	s.debouncer.Stop()
	s.cancel()

	s.mu.Lock()
	s.closed = true
	s.subs = map[string]context.CancelFunc{}
	close(s.send)
	s.mu.Unlock()

	s.log.Info("stream session closed")
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
