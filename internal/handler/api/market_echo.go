package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	models "LeadPull/internal/domain/models"
	domrepo "LeadPull/internal/domain/repository"
	icache "LeadPull/internal/service/cache"
	"LeadPull/internal/service/metrics"
	"LeadPull/internal/service/ratelimit"
	"LeadPull/internal/usecase"
	xhttp "LeadPull/pkg/http"
	xlogger "LeadPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketEchoHandler exposes the read-only query surface: live snapshot,
// candle history, stage reports, lead chain state and whale sightings.
type MarketEchoHandler struct {
	logger    *xlogger.Logger
	uc        *usecase.MarketQueryUseCase
	store     domrepo.CandleStore
	collector *usecase.TradeCollector
	cache     icache.BytesCache
	rl        *ratelimit.Limiter
}

func NewMarketEchoHandler(logger *xlogger.Logger, uc *usecase.MarketQueryUseCase, store domrepo.CandleStore, collector *usecase.TradeCollector) *MarketEchoHandler {
	metrics.Register()
	return &MarketEchoHandler{logger: logger, uc: uc, store: store, collector: collector, rl: ratelimit.New()}
}

// SetCache enables response caching for the history endpoints.
func (h *MarketEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
	g := e.Group("/api")
	g.GET("/snapshot", h.Snapshot)
	g.GET("/candles", h.Candles)
	g.GET("/reports", h.Reports)
	g.GET("/leads", h.Leads)
	g.GET("/whales", h.Whales)
}

func (h *MarketEchoHandler) Snapshot(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("snapshot").Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":snapshot", 10, 5) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}
	return xhttp.SuccessResponse(c, h.uc.Snapshot(c.Request().Context()))
}

func (h *MarketEchoHandler) Candles(c echo.Context) error {
	start := time.Now()
	endpoint := "candles"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":candles", 5, 2) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}

	now := time.Now()
	from := xhttp.ParseTimeDefault(req.From, now.Add(-24*time.Hour))
	to := xhttp.ParseTimeDefault(req.To, now)

	cacheKey := fmt.Sprintf("candles:%s:%d:%d:%d", req.Symbol, from.Unix(), to.Unix(), req.Limit)
	if b, ok := h.cached(cacheKey, endpoint); ok {
		return c.JSONBlob(http.StatusOK, b)
	}

	res, err := h.uc.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol: req.Symbol,
		From:   from,
		To:     to,
		Limit:  req.Limit,
	})
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("candles usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	h.store30s(cacheKey, endpoint, res)
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Reports(c echo.Context) error {
	start := time.Now()
	endpoint := "reports"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":reports", 5, 2) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}

	res, err := h.uc.Reports(c.Request().Context())
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("reports usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Leads(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("leads").Observe(time.Since(start).Seconds()) }()

	return xhttp.SuccessResponse(c, h.uc.Leads())
}

func (h *MarketEchoHandler) Whales(c echo.Context) error {
	start := time.Now()
	endpoint := "whales"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.WhalesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.uc.Whales(time.Duration(req.Minutes)*time.Minute))
}

func (h *MarketEchoHandler) Healthz(c echo.Context) error {
	status := map[string]interface{}{}
	if h.collector != nil {
		status["stream_connected"] = h.collector.IsConnected()
	}
	if h.store != nil {
		if err := h.store.Health(c.Request().Context()); err != nil {
			metrics.APIErrors.WithLabelValues("healthz").Inc()
			status["clickhouse"] = err.Error()
			return xhttp.DataResponse(c, http.StatusServiceUnavailable, status)
		}
		status["clickhouse"] = "ok"
	}
	return xhttp.SuccessResponse(c, status)
}

// cached returns a previously stored response body for key, already wrapped
// in the API envelope.
func (h *MarketEchoHandler) cached(key, endpoint string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		h.logger.Warn(endpoint+" cache_get_error", xlogger.Error(err))
		return nil, false
	}
	if ok {
		h.logger.Debug(endpoint+" cache_hit", xlogger.String("key", key))
	}
	return b, ok
}

func (h *MarketEchoHandler) store30s(key, endpoint string, data interface{}) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    data,
	})
	if err != nil {
		return
	}
	if err := h.cache.SetBytes(key, b, 30*time.Second); err != nil {
		h.logger.Warn(endpoint+" cache_set_error", xlogger.Error(err))
	}
}
