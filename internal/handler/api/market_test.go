package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ChartPulse/internal/domain/models"
	"ChartPulse/internal/service/cache"
	"ChartPulse/internal/service/symbols"
	"ChartPulse/internal/usecase"
	"ChartPulse/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type stubSource struct {
	eodPayload []byte
	eodErr     error
	quote      *models.Quote
}

func (s *stubSource) LatestQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if s.quote == nil {
		return nil, fmt.Errorf("quote: %w", models.ErrNoData)
	}
	return s.quote, nil
}

func (s *stubSource) EODCandles(ctx context.Context, symbol string, from, to time.Time) ([]byte, error) {
	if s.eodErr != nil {
		return nil, s.eodErr
	}
	return s.eodPayload, nil
}

func (s *stubSource) IntradayCandles(ctx context.Context, symbol, interval string, from, to time.Time) ([]byte, error) {
	return s.eodPayload, nil
}

func candlePayload(closes ...float64) []byte {
	out := []byte("[")
	for i, c := range closes {
		if i > 0 {
			out = append(out, ',')
		}
		day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		rec := fmt.Sprintf(`{"date":%q,"open":%f,"high":%f,"low":%f,"close":%f,"volume":100}`,
			day.Format("2006-01-02"), c, c+1, c-1, c)
		out = append(out, rec...)
	}
	return append(out, ']')
}

func newTestServer(t *testing.T, src *stubSource) *echo.Echo {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stdout"})
	require.NoError(t, err)

	store := cache.New()
	market := usecase.NewMarketData(symbols.NewResolver(), src, store, log)
	em := usecase.NewExpectedMove(market, nil, store, log, 4)

	h := NewMarketHandler(market, em, nil, nil, log)
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestResolveEndpoint(t *testing.T) {
	e := newTestServer(t, &stubSource{})

	rec := doRequest(e, http.MethodGet, "/api/v1/symbols/resolve?symbol=bitcoin", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := gjson.Parse(rec.Body.String())
	assert.Equal(t, "BTC-USD.CC", body.Get("data.providerSymbol").String())
	assert.Equal(t, "crypto", body.Get("data.assetClass").String())
}

func TestResolveRequiresSymbol(t *testing.T) {
	e := newTestServer(t, &stubSource{})
	rec := doRequest(e, http.MethodGet, "/api/v1/symbols/resolve", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(http.StatusBadRequest), gjson.Parse(rec.Body.String()).Get("status").Int())
}

func TestCandlesEndpoint(t *testing.T) {
	e := newTestServer(t, &stubSource{eodPayload: candlePayload(10, 11, 12)})

	rec := doRequest(e, http.MethodGet, "/api/v1/candles?symbol=AAPL&tf=1d", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := gjson.Parse(rec.Body.String())
	assert.Equal(t, "AAPL.US", body.Get("data.symbol").String())
	assert.Equal(t, int64(3), int64(len(body.Get("data.candles").Array())))
	assert.Equal(t, 12.0, body.Get("data.lastPrice").Float())
}

func TestCandlesUnsupportedSymbolIs400(t *testing.T) {
	e := newTestServer(t, &stubSource{})
	rec := doRequest(e, http.MethodGet, "/api/v1/candles?symbol=!!bad!!&tf=1d", "")
	body := gjson.Parse(rec.Body.String())
	assert.Equal(t, int64(http.StatusBadRequest), body.Get("status").Int())
	assert.Equal(t, "ERR_UNSUPPORTED_SYMBOL", body.Get("data.0.code").String())
}

func TestCandlesNoDataIs404(t *testing.T) {
	e := newTestServer(t, &stubSource{eodPayload: []byte(`[]`)})
	rec := doRequest(e, http.MethodGet, "/api/v1/candles?symbol=AAPL&tf=1d", "")
	body := gjson.Parse(rec.Body.String())
	assert.Equal(t, int64(http.StatusNotFound), body.Get("status").Int())
}

func TestCandlesUpstreamFailureIs503AndOpaque(t *testing.T) {
	e := newTestServer(t, &stubSource{
		eodErr: fmt.Errorf("eod: status 500: secret provider detail: %w", models.ErrUpstreamUnavailable),
	})
	rec := doRequest(e, http.MethodGet, "/api/v1/candles?symbol=AAPL&tf=1d", "")
	body := gjson.Parse(rec.Body.String())
	assert.Equal(t, int64(http.StatusServiceUnavailable), body.Get("status").Int())
	assert.NotContains(t, rec.Body.String(), "secret provider detail")
}

func TestCandlesInvertedRangeIs400(t *testing.T) {
	e := newTestServer(t, &stubSource{eodPayload: candlePayload(10)})
	rec := doRequest(e, http.MethodGet, "/api/v1/candles?symbol=AAPL&tf=1d&from=2024-02-01&to=2024-01-01", "")
	body := gjson.Parse(rec.Body.String())
	assert.Equal(t, int64(http.StatusBadRequest), body.Get("status").Int())
	assert.Equal(t, "ERR_INVALID_RANGE", body.Get("data.0.code").String())
}

func TestCandlesRejectsUnknownTimeframe(t *testing.T) {
	e := newTestServer(t, &stubSource{eodPayload: candlePayload(10)})
	rec := doRequest(e, http.MethodGet, "/api/v1/candles?symbol=AAPL&tf=7h", "")
	body := gjson.Parse(rec.Body.String())
	assert.Equal(t, int64(http.StatusBadRequest), body.Get("status").Int())
}

func TestExpectedMoveEndpoint(t *testing.T) {
	e := newTestServer(t, &stubSource{eodPayload: candlePayload(98, 99, 101, 100)})

	rec := doRequest(e, http.MethodGet, "/api/v1/expected-move?symbol=AAPL&tf=1w", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := gjson.Parse(rec.Body.String())
	assert.Equal(t, "AAPL.US", body.Get("data.symbol").String())
	assert.Equal(t, 100.0, body.Get("data.close").Float())
	assert.Greater(t, body.Get("data.em").Float(), 0.0)
}

func TestExpectedMoveCustomNeedsDays(t *testing.T) {
	e := newTestServer(t, &stubSource{eodPayload: candlePayload(98, 99)})
	rec := doRequest(e, http.MethodGet, "/api/v1/expected-move?symbol=AAPL&tf=custom", "")
	body := gjson.Parse(rec.Body.String())
	assert.Equal(t, int64(http.StatusBadRequest), body.Get("status").Int())
}

func TestExpectedMoveBatchEndpoint(t *testing.T) {
	e := newTestServer(t, &stubSource{eodPayload: candlePayload(98, 99, 100)})

	rec := doRequest(e, http.MethodPost, "/api/v1/expected-move/batch",
		`{"symbols":["AAPL","!!bad!!"],"tf":"1w"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	items := gjson.Parse(rec.Body.String()).Get("data").Array()
	require.Len(t, items, 2)
	assert.Equal(t, "AAPL.US", items[0].Get("result.symbol").String())
	assert.NotEmpty(t, items[1].Get("error").String())
}

func TestBatchRejectsEmptySymbolList(t *testing.T) {
	e := newTestServer(t, &stubSource{})
	rec := doRequest(e, http.MethodPost, "/api/v1/expected-move/batch", `{"symbols":[]}`)
	body := gjson.Parse(rec.Body.String())
	assert.Equal(t, int64(http.StatusBadRequest), body.Get("status").Int())
}

func TestHealthEndpoint(t *testing.T) {
	e := newTestServer(t, &stubSource{})
	rec := doRequest(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
