package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Tick is a single live price update for a symbol.
type Tick struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"-"`
}

// TickerConfig configures WebSocket ticker behavior.
type TickerConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultTickerConfig returns default ticker configuration.
func DefaultTickerConfig() TickerConfig {
	return TickerConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Ticker streams live price updates over a WebSocket feed. It reconnects
// and resubscribes automatically on connection errors.
type Ticker struct {
	endpoint string
	config   TickerConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// symbols stores the subscribed set for resubscription after reconnect
	symbols   []string
	symbolsMu sync.RWMutex

	ticks chan Tick

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool
}

// NewTicker creates a ticker and connects to the endpoint.
func NewTicker(ctx context.Context, endpoint string, config *TickerConfig) (*Ticker, error) {
	cfg := DefaultTickerConfig()
	if config != nil {
		cfg = *config
	}

	t := &Ticker{
		endpoint: endpoint,
		config:   cfg,
		ticks:    make(chan Tick, 1000),
		done:     make(chan struct{}),
	}

	if err := t.connect(ctx); err != nil {
		return nil, err
	}

	t.wg.Add(1)
	go t.readLoop()

	t.wg.Add(1)
	go t.pingLoop()

	return t, nil
}

// Ticks returns the channel of live price updates. The channel is closed
// when the ticker is closed.
func (t *Ticker) Ticks() <-chan Tick {
	return t.ticks
}

// Subscribe registers symbols for live updates.
func (t *Ticker) Subscribe(symbols ...string) error {
	if t.closed.Load() {
		return fmt.Errorf("ticker closed")
	}

	t.symbolsMu.Lock()
	t.symbols = append(t.symbols, symbols...)
	t.symbolsMu.Unlock()

	return t.writeSubscribe(symbols)
}

// connect establishes WebSocket connection.
func (t *Ticker) connect(ctx context.Context) error {
	t.connMu.Lock()
	defer t.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, t.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	t.conn = conn
	return nil
}

func (t *Ticker) writeSubscribe(symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}

	req := tickerRequest{
		Type:    "subscribe",
		Symbols: symbols,
	}

	t.connMu.Lock()
	defer t.connMu.Unlock()

	if t.conn == nil {
		return fmt.Errorf("not connected")
	}

	t.conn.SetWriteDeadline(time.Now().Add(t.config.WriteTimeout))
	if err := t.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close closes the WebSocket connection and the ticks channel.
func (t *Ticker) Close() error {
	if t.closed.Swap(true) {
		return nil // Already closed
	}

	close(t.done)

	t.connMu.Lock()
	if t.conn != nil {
		t.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		t.conn.Close()
	}
	t.connMu.Unlock()

	t.wg.Wait()
	close(t.ticks)
	return nil
}

// readLoop reads messages from WebSocket and forwards ticks.
func (t *Ticker) readLoop() {
	defer t.wg.Done()

	reconnectDelay := t.config.ReconnectDelay

	for !t.closed.Load() {
		t.connMu.Lock()
		conn := t.conn
		t.connMu.Unlock()

		if conn == nil {
			select {
			case <-t.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(t.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if t.closed.Load() {
				return
			}

			if !t.reconnecting.Swap(true) {
				go t.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > t.config.MaxReconnectDelay {
				reconnectDelay = t.config.MaxReconnectDelay
			}

			select {
			case <-t.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = t.config.ReconnectDelay

		t.handleMessage(message)
	}
}

// reconnect attempts to reconnect and resubscribe.
func (t *Ticker) reconnect(delay time.Duration) {
	defer t.reconnecting.Store(false)

	if t.closed.Load() {
		return
	}

	select {
	case <-t.done:
		return
	case <-time.After(delay):
	}

	t.connMu.Lock()
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}
	t.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := t.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		return
	}

	t.symbolsMu.RLock()
	symbols := make([]string, len(t.symbols))
	copy(symbols, t.symbols)
	t.symbolsMu.RUnlock()

	t.writeSubscribe(symbols)
}

// handleMessage parses a feed message and forwards the tick.
func (t *Ticker) handleMessage(message []byte) {
	var msg tickerMessage
	if err := json.Unmarshal(message, &msg); err != nil || msg.Symbol == "" {
		return
	}

	tick := Tick{
		Symbol: msg.Symbol,
		Price:  msg.Price,
		Time:   time.UnixMilli(msg.Time).UTC(),
	}

	// Block until we can send - never drop ticks
	select {
	case t.ticks <- tick:
	case <-t.done:
	}
}

// pingLoop sends periodic ping frames to keep connection alive.
func (t *Ticker) pingLoop() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.connMu.Lock()
			if t.conn != nil {
				t.conn.SetWriteDeadline(time.Now().Add(t.config.WriteTimeout))
				if err := t.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			t.connMu.Unlock()
		}
	}
}

// Feed message types

type tickerRequest struct {
	Type    string   `json:"type"`
	Symbols []string `json:"symbols"`
}

type tickerMessage struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Time   int64   `json:"time"`
}
