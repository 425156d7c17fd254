// Package quotestream keeps the quote cache warm for a configured symbol
// set by subscribing to the live quote provider's WebSocket feed. It is an
// optional optimization: stream failures never affect request handling.
package quotestream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"FinSight/internal/domain/models"
	"FinSight/internal/service/cache"
	applogger "FinSight/pkg/logger"
)

type Stream struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	cache *cache.SourceCache
	log   *applogger.Logger
}

func New(websocketURL, apiKey string, symbols []string, reconnectDelay, pingInterval time.Duration, c *cache.SourceCache, log *applogger.Logger) *Stream {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Stream{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		cache:          c,
		log:            log,
	}
}

// Run connects, subscribes and consumes quote frames until ctx is done,
// reconnecting with a delay after any failure.
func (s *Stream) Run(ctx context.Context) {
	for {
		if err := s.connectAndConsume(ctx); err != nil && s.log != nil {
			s.log.Warn("quote stream disconnected", applogger.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *Stream) connectAndConsume(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", s.websocketURL, s.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("quote stream connect: %w", err)
	}
	defer conn.Close()

	for _, sym := range s.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}
	if s.log != nil {
		s.log.Info("quote stream subscribed", applogger.Strings("symbols", s.symbols))
	}

	// ping loop
	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pingCtx.Done():
				return
			case <-ticker.C:
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		_, b, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("quote stream read: %w", err)
		}
		s.handleFrame(b)
	}
}

type wsQuote struct {
	S  string  `json:"s"`
	P  float64 `json:"p"`
	Dp float64 `json:"dp"` // day change percent
	T  int64   `json:"t"`  // ms
}

type wsFrame struct {
	Type string    `json:"type"`
	Data []wsQuote `json:"data"`
}

func (s *Stream) handleFrame(b []byte) {
	var frame wsFrame
	if err := json.Unmarshal(b, &frame); err != nil {
		// ignore non-quote frames
		return
	}
	if frame.Type != "quote" && frame.Type != "trade" {
		return
	}
	for _, q := range frame.Data {
		if q.S == "" {
			continue
		}
		fetched := time.Now()
		if q.T > 0 {
			fetched = time.UnixMilli(q.T)
		}
		s.cache.Put(models.SourceQuotes, models.ClassQuote, q.S, []models.SourceResult{{
			Source: models.SourceQuotes,
			Ticker: q.S,
			Fields: map[string]any{
				models.FieldPrice:    q.P,
				models.FieldMomentum: q.Dp,
			},
			FetchedAt: fetched,
		}})
	}
}
