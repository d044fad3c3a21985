// Package usecase は上流WebSocketの購読を多重化します。
// 1本の接続を全購読者で共有し、シンボルごとのコールバックと再接続の状態を管理します。
package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"stockimate/internal/feature/streaming/domain/entity"
)

const (
	// DefaultMaxReconnectAttempts は1サイクルあたりの再接続回数の上限です。
	DefaultMaxReconnectAttempts = 5

	baseReconnectDelay = time.Second
	maxReconnectDelay  = 30 * time.Second
)

// Conn は開いている上流の接続です。
// ReadMessageは読み込みgoroutineからのみ呼ばれ、WriteJSONとCloseはMultiplexerが直列化します。
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteJSON(v any) error
	Close() error
}

// Dialer は上流への接続を開きます。
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// TickSink はデコードしたすべてのティックをベストエフォートで受け取ります。
type TickSink interface {
	Publish(ctx context.Context, tick entity.Tick)
}

// Timer は予約済みの再接続です。
type Timer interface {
	Stop() bool
}

// AfterFunc はd経過後にfを実行するよう予約します。
type AfterFunc func(d time.Duration, f func()) Timer

// Callback は1シンボル分のティックを受け取ります。
type Callback func(entity.Tick)

// CancelFunc はコールバックの登録を解除します。2回目以降の呼び出しは何もしません。
type CancelFunc func()

// Option はMultiplexerの設定を変更します。
type Option func(*Multiplexer)

// WithAfterFunc は再接続の待機に使うタイマー生成関数を差し替えます。
func WithAfterFunc(f AfterFunc) Option {
	return func(m *Multiplexer) { m.afterFunc = f }
}

// WithMaxReconnectAttempts は1サイクルあたりの再接続回数を設定します。
func WithMaxReconnectAttempts(n int) Option {
	return func(m *Multiplexer) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

// WithTickSink はデコードしたティックをsinkにも転送します。
func WithTickSink(sink TickSink) Option {
	return func(m *Multiplexer) { m.sink = sink }
}

type registration struct {
	cb        Callback
	cancelled atomic.Bool
}

type controlFrame struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}

type inboundFrame struct {
	Type string            `json:"type"`
	Data []json.RawMessage `json:"data"`
}

type tradeEntry struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	T int64   `json:"t"`
	V float64 `json:"v"`
}

// Multiplexer は1本の上流接続を全購読者で共有します。
type Multiplexer struct {
	dialer      Dialer
	sink        TickSink
	afterFunc   AfterFunc
	maxAttempts int
	log         *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    entity.ConnectionState
	conn     Conn
	registry map[string][]*registration
	attempts int
	timer    Timer
	closed   bool
}

// NewMultiplexer は未接続のMultiplexerを生成します。最初のSubscribeまで接続しません。
func NewMultiplexer(dialer Dialer, log *zap.Logger, opts ...Option) *Multiplexer {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Multiplexer{
		dialer:      dialer,
		afterFunc:   func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) },
		maxAttempts: DefaultMaxReconnectAttempts,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
		registry:    make(map[string][]*registration),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ReconnectDelay は0始まりのattempt回目の再接続までの待機時間を返します。
func ReconnectDelay(attempt int) time.Duration {
	if attempt >= 5 {
		return maxReconnectDelay
	}
	return min(baseReconnectDelay<<attempt, maxReconnectDelay)
}

// Subscribe はsymbolにcbを登録します。
// 接続中であればシンボルの最初の登録時にsubscribeフレームを送信し、未接続であれば接続を開始して
// 接続後に購読します。前回の再接続サイクルを使い切っていた場合は試行回数をリセットします。
// Disconnect後は何もしません。
func (m *Multiplexer) Subscribe(symbol string, cb Callback) CancelFunc {
	reg := &registration{cb: cb}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return func() {}
	}
	first := len(m.registry[symbol]) == 0
	m.registry[symbol] = append(m.registry[symbol], reg)

	needConnect := false
	if m.state == entity.Connected {
		if first {
			m.sendLocked(controlFrame{Type: "subscribe", Symbol: symbol})
		}
	} else {
		if m.attempts >= m.maxAttempts {
			m.attempts = 0
		}
		needConnect = true
	}
	m.mu.Unlock()

	if needConnect {
		m.connect()
	}

	var once sync.Once
	return func() {
		once.Do(func() { m.unsubscribe(symbol, reg) })
	}
}

func (m *Multiplexer) unsubscribe(symbol string, reg *registration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg.cancelled.Store(true)
	regs := m.registry[symbol]
	kept := make([]*registration, 0, len(regs))
	for _, r := range regs {
		if r != reg {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(regs) {
		return
	}
	if len(kept) > 0 {
		m.registry[symbol] = kept
		return
	}

	delete(m.registry, symbol)
	if m.state == entity.Connected {
		m.sendLocked(controlFrame{Type: "unsubscribe", Symbol: symbol})
	}
}

// connect は接続中・接続済みでなければ接続を開始します。
func (m *Multiplexer) connect() {
	m.mu.Lock()
	if m.closed || m.state != entity.Disconnected {
		m.mu.Unlock()
		return
	}
	m.stopTimerLocked()
	m.state = entity.Connecting
	m.mu.Unlock()

	go m.dial()
}

func (m *Multiplexer) dial() {
	conn, err := m.dialer.Dial(m.ctx)
	if err != nil {
		m.log.Warn("stream dial failed", zap.Error(err))
		m.handleClose(nil)
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = conn.Close()
		return
	}
	m.conn = conn
	m.state = entity.Connected
	m.attempts = 0

	symbols := make([]string, 0, len(m.registry))
	for s := range m.registry {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	for _, s := range symbols {
		m.sendLocked(controlFrame{Type: "subscribe", Symbol: s})
	}
	m.mu.Unlock()

	m.log.Info("stream connected", zap.Int("symbols", len(symbols)))
	go m.readLoop(conn)
}

func (m *Multiplexer) readLoop(conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			m.log.Warn("stream read failed", zap.Error(err))
			m.handleClose(conn)
			return
		}
		m.dispatch(data)
	}
}

// dispatch は受信フレームをデコードし、tradeの各エントリを到着順に登録済みコールバックへ渡します。
// 不正なフレームやエントリは破棄します。
func (m *Multiplexer) dispatch(data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		m.log.Debug("dropping malformed frame", zap.Error(err))
		return
	}
	if frame.Type != "trade" {
		return
	}

	for _, raw := range frame.Data {
		var e tradeEntry
		if err := json.Unmarshal(raw, &e); err != nil || e.S == "" || e.P <= 0 {
			m.log.Debug("dropping malformed trade entry", zap.ByteString("entry", raw))
			continue
		}
		tick := entity.Tick{Symbol: e.S, Price: e.P, TimestampMs: e.T, Volume: e.V}

		m.mu.Lock()
		regs := m.registry[e.S]
		m.mu.Unlock()

		for _, r := range regs {
			if !r.cancelled.Load() {
				r.cb(tick)
			}
		}
		if m.sink != nil {
			m.sink.Publish(m.ctx, tick)
		}
	}
}

// handleClose はDisconnectedに遷移し再接続を予約します。
// connは失敗した接続で、接続自体に失敗した場合はnilです。古い接続からの通知は無視します。
func (m *Multiplexer) handleClose(conn Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || (conn != nil && conn != m.conn) {
		return
	}
	if conn != nil {
		_ = conn.Close()
	}
	m.conn = nil
	m.state = entity.Disconnected

	if m.attempts >= m.maxAttempts {
		m.log.Error("stream reconnect attempts exhausted", zap.Int("attempts", m.attempts))
		return
	}
	delay := ReconnectDelay(m.attempts)
	m.attempts++
	m.log.Info("stream reconnect scheduled", zap.Duration("delay", delay), zap.Int("attempt", m.attempts))
	m.timer = m.afterFunc(delay, m.onReconnectTimer)
}

func (m *Multiplexer) onReconnectTimer() {
	m.mu.Lock()
	idle := m.closed || len(m.registry) == 0
	m.mu.Unlock()
	if idle {
		return
	}
	m.connect()
}

// Disconnect は接続を閉じ、予約済みの再接続を取り消し、すべての登録を破棄します。
// 何度呼んでもよく、以降のSubscribeは何もしません。
func (m *Multiplexer) Disconnect() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.stopTimerLocked()
	for _, regs := range m.registry {
		for _, r := range regs {
			r.cancelled.Store(true)
		}
	}
	m.registry = make(map[string][]*registration)
	m.attempts = 0
	m.state = entity.Disconnected
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()

	m.cancel()
	if conn != nil {
		_ = conn.Close()
	}
}

// State は現在の接続状態を返します。
func (m *Multiplexer) State() entity.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Symbols は登録が1つ以上あるシンボルを昇順で返します。
func (m *Multiplexer) Symbols() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.registry))
	for s := range m.registry {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (m *Multiplexer) sendLocked(f controlFrame) {
	if m.conn == nil {
		return
	}
	if err := m.conn.WriteJSON(f); err != nil {
		m.log.Warn("stream write failed", zap.String("type", f.Type), zap.String("symbol", f.Symbol), zap.Error(err))
	}
}

func (m *Multiplexer) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
