// Package binance implements the MarketStream against the Binance combined
// WebSocket feed: raw trades, best-quote ticks and partial depth for one
// symbol multiplexed over a single connection.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"LeadPull/internal/domain/models"
	drepo "LeadPull/internal/domain/repository"
	"LeadPull/pkg/logger"
)

// Client implements a MarketStream backed by the Binance combined stream.
type Client struct {
	wsURL          string
	symbol         string // lowercase stream symbol, e.g. btcusdt
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	conn      *websocket.Conn
	connected bool
}

// New creates a Binance MarketStream for one symbol.
func New(wsURL, symbol string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) drepo.MarketStream {
	return &Client{
		wsURL:          wsURL,
		symbol:         strings.ToLower(symbol),
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

func (c *Client) streams() string {
	return fmt.Sprintf("%s@trade/%s@bookTicker/%s@depth20@500ms", c.symbol, c.symbol, c.symbol)
}

// Connect establishes the WebSocket connection with all streams attached.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s/stream?streams=%s", strings.TrimRight(c.wsURL, "/"), c.streams())
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	c.log.Info("binance: connected", logger.String("symbol", c.symbol))
	return nil
}

// Subscribe is a no-op: the combined-stream URL already names every
// subscription. Kept so the collector's connect/subscribe sequence holds
// for transports that need an explicit subscribe frame.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("binance not connected")
	}
	return nil
}

// combined-stream envelope
type wsEnvelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

type wsTrade struct {
	Symbol    string `json:"s"`
	Price     string `json:"p"`
	Quantity  string `json:"q"`
	TradeTime int64  `json:"T"` // ms
	Maker     bool   `json:"m"` // buyer is maker, i.e. the taker sold
}

type wsBookTicker struct {
	BidPrice string `json:"b"`
	BidQty   string `json:"B"`
	AskPrice string `json:"a"`
	AskQty   string `json:"A"`
}

type wsDepth struct {
	Bids [][]string `json:"bids"`
	Asks [][]string `json:"asks"`
}

// Read streams trade, book and error events. Channels are closed when the
// read loop exits; the caller reconnects on error.
func (c *Client) Read(ctx context.Context) (<-chan *models.Trade, <-chan *models.BookUpdate, <-chan error) {
	trades := make(chan *models.Trade, 1024)
	books := make(chan *models.BookUpdate, 64)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(trades)
		defer close(books)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("binance conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("binance read: %w", err)
					return
				}
				c.dispatch(b, trades, books)
			}
		}
	}()

	return trades, books, errs
}

func (c *Client) dispatch(raw []byte, trades chan<- *models.Trade, books chan<- *models.BookUpdate) {
	var env wsEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Stream == "" {
		// control frames and subscription acks
		return
	}

	switch {
	case strings.HasSuffix(env.Stream, "@trade"):
		var m wsTrade
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return
		}
		price, err1 := strconv.ParseFloat(m.Price, 64)
		qty, err2 := strconv.ParseFloat(m.Quantity, 64)
		if err1 != nil || err2 != nil {
			return
		}
		t := &models.Trade{
			Symbol:    m.Symbol,
			EventTime: m.TradeTime,
			Price:     price,
			Quantity:  qty,
			MakerSell: m.Maker,
		}
		select {
		case trades <- t:
		default:
			// drop on backpressure
		}

	case strings.HasSuffix(env.Stream, "@bookTicker"):
		var m wsBookTicker
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return
		}
		bid, _ := strconv.ParseFloat(m.BidPrice, 64)
		ask, _ := strconv.ParseFloat(m.AskPrice, 64)
		select {
		case books <- &models.BookUpdate{BestBid: bid, BestAsk: ask}:
		default:
		}

	case strings.Contains(env.Stream, "@depth"):
		var m wsDepth
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return
		}
		select {
		case books <- &models.BookUpdate{Bids: parseLevels(m.Bids), Asks: parseLevels(m.Asks)}:
		default:
		}
	}
}

func parseLevels(raw [][]string) []models.PriceLevel {
	out := make([]models.PriceLevel, 0, len(raw))
	for _, lvl := range raw {
		if len(lvl) < 2 {
			continue
		}
		price, err1 := strconv.ParseFloat(lvl[0], 64)
		qty, err2 := strconv.ParseFloat(lvl[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, models.PriceLevel{Price: price, Quantity: qty})
	}
	return out
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
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
