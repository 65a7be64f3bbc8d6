package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"LeadPull/internal/domain/models"
	xhttp "LeadPull/pkg/http"
	"LeadPull/pkg/logger"
)

// RestClient fetches historical klines from the Binance REST API. It is
// used once at startup to warm the engine when no persisted history
// exists.
type RestClient struct {
	http    *xhttp.Client
	baseURL string
	log     *logger.Logger
}

// NewRestClient creates a REST client against baseURL, e.g.
// https://api.binance.com.
func NewRestClient(baseURL string, log *logger.Logger) *RestClient {
	return &RestClient{
		http:    xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// Klines returns up to limit five-minute candles for symbol, oldest first.
// CVD cannot be reconstructed from klines and is left at zero.
func (c *RestClient) Klines(ctx context.Context, symbol string, limit int) ([]models.Candle, error) {
	var raw []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {strings.ToUpper(symbol)},
			"interval": {"5m"},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("klines request: %w", err)
	}

	// Each row: [openTime, open, high, low, close, volume, ...] with
	// numbers for times and strings for prices.
	var rows [][]interface{}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("klines decode: %w", err)
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		openTime, ok := row[0].(float64)
		if !ok {
			continue
		}
		closeStr, ok := row[4].(string)
		if !ok {
			continue
		}
		volStr, ok := row[5].(string)
		if !ok {
			continue
		}
		closePx, err := strconv.ParseFloat(closeStr, 64)
		if err != nil {
			continue
		}
		vol, err := strconv.ParseFloat(volStr, 64)
		if err != nil {
			continue
		}
		candles = append(candles, models.Candle{
			Bucket: int64(openTime) / 1000,
			Close:  closePx,
			Volume: vol,
		})
	}
	return candles, nil
}
