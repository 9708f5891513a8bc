package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"TradeBot365/internal/domain/models"
	drepo "TradeBot365/internal/domain/repository"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// Client implements a SignalStream backed by the TradingView webhook relay
// WebSocket.
type Client struct {
	token          string
	websocketURL   string
	channels       []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	mu        sync.Mutex // guards conn and connected
	conn      *websocket.Conn
	connected bool
}

// New creates a new SignalStream client.
func New(token, websocketURL string, channels []string, reconnectDelay, pingInterval time.Duration) drepo.SignalStream {
	return &Client{
		token:          token,
		websocketURL:   websocketURL,
		channels:       channels,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	log.Printf("stream: connected")
	return nil
}

// Subscribe subscribes to configured signal channels.
func (c *Client) Subscribe(ctx context.Context) error {
	conn := c.current()
	if conn == nil {
		return fmt.Errorf("stream not connected")
	}
	for _, ch := range c.channels {
		msg := map[string]string{"type": "subscribe", "channel": ch}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", ch, err)
		}
		log.Printf("stream: subscribed %s", ch)
	}
	return nil
}

type wsSignal struct {
	ID         string `json:"id"`
	Instrument string `json:"instrument"`
	Action     string `json:"action"`
	Qty        string `json:"qty"`
	T          int64  `json:"t"` // ms
	BotID      string `json:"bot_id"`
	UserID     string `json:"user_id"`
	Status     string `json:"status"`
}

type wsMessage struct {
	Type string     `json:"type"`
	Data []wsSignal `json:"data"`
}

// Read streams signal events and errors. Each call owns one read session on
// the connection current at call time; after Reconnect the caller must call
// Read again for the new connection.
func (c *Client) Read(ctx context.Context) (<-chan *models.Signal, <-chan error) {
	signals := make(chan *models.Signal, 1024)
	errs := make(chan error, 1)
	conn := c.current()
	done := make(chan struct{})

	// Ping loop scoped to this session, so a reconnected connection never
	// has two concurrent writers.
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				if conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(done)
		defer close(signals)
		defer close(errs)
		if conn == nil {
			errs <- fmt.Errorf("stream conn nil")
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				errs <- fmt.Errorf("stream read: %w", err)
				return
			}
			var m wsMessage
			if err := json.Unmarshal(b, &m); err != nil {
				// ignore non-signal frames
				continue
			}
			if m.Type != "signal" {
				continue
			}
			for _, d := range m.Data {
				qty, err := decimal.NewFromString(d.Qty)
				if err != nil {
					qty = decimal.Zero
				}
				sec := d.T / 1000
				s := &models.Signal{
					ID:         d.ID,
					Instrument: d.Instrument,
					Action:     models.SignalAction(d.Action),
					Quantity:   qty,
					Timestamp:  time.Unix(sec, 0).UTC(),
					BotID:      d.BotID,
					UserID:     d.UserID,
					Status:     d.Status,
				}
				select {
				case signals <- s:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return signals, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}
