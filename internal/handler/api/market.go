package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ChartPulse/internal/domain/models"
	drepo "ChartPulse/internal/domain/repository"
	"ChartPulse/internal/service/cache"
	"ChartPulse/internal/service/ratelimit"
	"ChartPulse/internal/usecase"
	xhttp "ChartPulse/pkg/http"
	mw "ChartPulse/pkg/http/middleware"
	"ChartPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Per-client request budget for the public endpoints.
const (
	rateCapacity  = 20.0
	rateRefillSec = 10.0
)

// MarketHandler exposes the market-data API.
type MarketHandler struct {
	market    *usecase.MarketData
	em        *usecase.ExpectedMove
	respCache cache.BytesCache
	limiter   *ratelimit.Limiter
	metrics   drepo.Metrics
	log       *logger.Logger
}

// NewMarketHandler creates the market-data HTTP handler. respCache may be
// nil; rendered-response caching is then skipped.
func NewMarketHandler(market *usecase.MarketData, em *usecase.ExpectedMove, respCache cache.BytesCache, metrics drepo.Metrics, log *logger.Logger) *MarketHandler {
	return &MarketHandler{
		market:    market,
		em:        em,
		respCache: respCache,
		limiter:   ratelimit.New(),
		metrics:   metrics,
		log:       log,
	}
}

// RegisterRoutes registers market-data routes.
func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	e.Use(mw.Metrics())

	e.GET("/health", h.Health)

	v1 := e.Group("/api/v1", h.rateLimit)
	v1.GET("/symbols/resolve", h.ResolveSymbol)
	v1.GET("/quote", h.Quote)
	v1.GET("/candles", h.Candles)
	v1.GET("/expected-move", h.ExpectedMove)
	v1.POST("/expected-move/batch", h.ExpectedMoveBatch)
}

// Health returns service liveness.
func (h *MarketHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// ResolveSymbol maps user input to a provider symbol.
func (h *MarketHandler) ResolveSymbol(c echo.Context) error {
	req := new(models.ResolveRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	rs, err := h.market.Resolve(req.Symbol)
	if err != nil {
		return h.domainError(c, err)
	}
	return xhttp.SuccessResponse(c, rs)
}

// Quote returns the latest price for a symbol.
func (h *MarketHandler) Quote(c echo.Context) error {
	req := new(models.QuoteRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	q, err := h.market.Quote(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.domainError(c, err)
	}
	return xhttp.SuccessResponse(c, q)
}

// Candles returns a normalized candle series for a symbol and timeframe.
func (h *MarketHandler) Candles(c echo.Context) error {
	start := time.Now()
	req := new(models.CandlesRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	key := cache.Key("resp", "candles", req.Symbol, req.Timeframe, req.From, req.To)
	if b, ok := h.cachedResponse(key); ok {
		return xhttp.SuccessResponse(c, json.RawMessage(b))
	}

	series, err := h.market.Candles(c.Request().Context(), req.Symbol, req.Timeframe, req.From, req.To)
	if err != nil {
		return h.domainError(c, err)
	}

	h.storeResponse(key, series, cache.TTLFor(cache.CategoryChart))
	if h.metrics != nil {
		h.metrics.RecordLatency("candles", time.Since(start).Seconds())
	}
	return xhttp.SuccessResponse(c, series)
}

// ExpectedMove returns volatility bands for one symbol.
func (h *MarketHandler) ExpectedMove(c echo.Context) error {
	req := new(models.ExpectedMoveRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	if req.Timeframe == "custom" && req.CustomDays <= 0 {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_REQUIRED",
			Field:   "days",
			Message: "days is required for the custom timeframe",
		}})
	}

	res, err := h.em.Compute(c.Request().Context(), req.Symbol, req.Timeframe, req.CustomDays)
	if err != nil {
		return h.domainError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// ExpectedMoveBatch computes expected moves for up to 50 symbols.
func (h *MarketHandler) ExpectedMoveBatch(c echo.Context) error {
	req := new(models.ExpectedMoveBatchRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	items := h.em.Batch(c.Request().Context(), req.Symbols, req.Timeframe, req.CustomDays)
	return xhttp.SuccessResponse(c, items)
}

// rateLimit applies a per-client token bucket before any upstream work.
func (h *MarketHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.limiter.Allow(c.RealIP(), rateCapacity, rateRefillSec) {
			return xhttp.TooManyRequestsResponse(c, "rate limit exceeded")
		}
		return next(c)
	}
}

// domainError translates the domain error taxonomy into HTTP statuses.
// Upstream provider details never leak into response bodies.
func (h *MarketHandler) domainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidSymbolInput):
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_INVALID_SYMBOL", "symbol", "symbol input is invalid", http.StatusBadRequest))
	case errors.Is(err, models.ErrUnsupportedSymbol):
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_UNSUPPORTED_SYMBOL", "symbol", "symbol is not supported", http.StatusBadRequest))
	case errors.Is(err, models.ErrInvalidRange):
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_INVALID_RANGE", "from", "date range is invalid", http.StatusBadRequest))
	case errors.Is(err, models.ErrNoData):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no data for symbol"))
	case errors.Is(err, models.ErrUpstreamUnavailable):
		h.log.Warn("upstream unavailable", logger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("market data temporarily unavailable"))
	case errors.Is(err, models.ErrInvalidResponse):
		h.log.Error("invalid upstream payload", logger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("market data temporarily unavailable"))
	default:
		h.log.Error("unhandled error", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
}

func (h *MarketHandler) cachedResponse(key string) ([]byte, bool) {
	if h.respCache == nil {
		return nil, false
	}
	b, ok, err := h.respCache.GetBytes(key)
	if err != nil || !ok {
		return nil, false
	}
	return b, true
}

func (h *MarketHandler) storeResponse(key string, v any, ttl time.Duration) {
	if h.respCache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := h.respCache.SetBytes(key, b, ttl); err != nil {
		h.log.Debug("response cache write failed", logger.Error(err))
	}
}
