package eodhd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ChartPulse/internal/domain/models"
	drepo "ChartPulse/internal/domain/repository"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

// Stream implements a QuoteStream over the provider WebSocket feed. It is
// used only to pre-warm the price cache; chart fetches never depend on it.
type Stream struct {
	apiToken       string
	websocketURL   string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
	symbols   []string
}

// NewStream creates a provider quote stream.
func NewStream(apiToken, websocketURL string, reconnectDelay, pingInterval time.Duration) drepo.QuoteStream {
	return &Stream{
		apiToken:       apiToken,
		websocketURL:   websocketURL,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?api_token=%s", s.websocketURL, s.apiToken)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}
	s.conn = conn
	s.connected = true
	return nil
}

// Subscribe subscribes to quote updates for the given provider symbols.
func (s *Stream) Subscribe(ctx context.Context, symbols []string) error {
	if s.conn == nil || !s.connected {
		return fmt.Errorf("stream not connected")
	}
	s.symbols = symbols
	msg := map[string]string{"action": "subscribe", "symbols": strings.Join(symbols, ",")}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

// Read streams quote events and errors until ctx is done or the socket fails.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Quote, <-chan error) {
	quotes := make(chan *models.Quote, 256)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.conn != nil {
					_ = s.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(quotes)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if s.conn == nil {
					errs <- fmt.Errorf("stream conn nil")
					return
				}
				_, b, err := s.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("stream read: %w", err)
					return
				}
				q, ok := parseStreamQuote(b)
				if !ok {
					// status/heartbeat frames
					continue
				}
				select {
				case quotes <- q:
				default:
					// drop on backpressure; the next tick supersedes it anyway
				}
			}
		}
	}()

	return quotes, errs
}

// Reconnect closes and reconnects, restoring subscriptions.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx, s.symbols)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func parseStreamQuote(b []byte) (*models.Quote, bool) {
	rec := gjson.ParseBytes(b)
	sym := rec.Get("s").String()
	if sym == "" {
		return nil, false
	}
	price := firstNumber(rec, "p", "price", "c")
	if price <= 0 {
		return nil, false
	}
	ts := rec.Get("t").Int()
	if ts > 1e12 {
		ts /= 1000
	}
	if ts <= 0 {
		ts = time.Now().Unix()
	}
	return &models.Quote{Symbol: sym, Price: price, Timestamp: ts}, true
}
