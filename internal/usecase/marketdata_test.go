package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ChartPulse/internal/domain/models"
	"ChartPulse/internal/service/cache"
	"ChartPulse/internal/service/symbols"
	"ChartPulse/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	eodCalls int32
	quotes   int32

	eodPayload   []byte
	eodErr       error
	quote        *models.Quote
	quoteErr     error
	intraPayload []byte
	intraErr     error
}

func (f *fakeSource) LatestQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	atomic.AddInt32(&f.quotes, 1)
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	return f.quote, nil
}

func (f *fakeSource) EODCandles(ctx context.Context, symbol string, from, to time.Time) ([]byte, error) {
	atomic.AddInt32(&f.eodCalls, 1)
	if f.eodErr != nil {
		return nil, f.eodErr
	}
	return f.eodPayload, nil
}

func (f *fakeSource) IntradayCandles(ctx context.Context, symbol, interval string, from, to time.Time) ([]byte, error) {
	if f.intraErr != nil {
		return nil, f.intraErr
	}
	return f.intraPayload, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	return log
}

func newMarketData(t *testing.T, src *fakeSource) *MarketData {
	t.Helper()
	return NewMarketData(symbols.NewResolver(), src, cache.New(), testLogger(t))
}

func dailyPayload(closes ...float64) []byte {
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

func TestCandlesUnsupportedSymbolSkipsUpstream(t *testing.T) {
	src := &fakeSource{}
	m := newMarketData(t, src)

	_, err := m.Candles(context.Background(), "not a symbol!!", "1d", "", "")
	require.ErrorIs(t, err, models.ErrUnsupportedSymbol)
	assert.Zero(t, atomic.LoadInt32(&src.eodCalls))
}

func TestCandlesEmptyPayloadIsNoData(t *testing.T) {
	src := &fakeSource{eodPayload: []byte(`[]`)}
	m := newMarketData(t, src)

	_, err := m.Candles(context.Background(), "AAPL", "1d", "", "")
	require.ErrorIs(t, err, models.ErrNoData)
}

func TestCandlesUpstreamErrorPropagates(t *testing.T) {
	src := &fakeSource{eodErr: fmt.Errorf("boom: %w", models.ErrUpstreamUnavailable)}
	m := newMarketData(t, src)

	_, err := m.Candles(context.Background(), "AAPL", "1d", "", "")
	require.ErrorIs(t, err, models.ErrUpstreamUnavailable)

	// The failure was not cached; the next call retries upstream.
	_, err = m.Candles(context.Background(), "AAPL", "1d", "", "")
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&src.eodCalls))
}

func TestCandlesServedFromCache(t *testing.T) {
	src := &fakeSource{eodPayload: dailyPayload(10, 11, 12)}
	m := newMarketData(t, src)

	first, err := m.Candles(context.Background(), "AAPL", "1d", "", "")
	require.NoError(t, err)
	second, err := m.Candles(context.Background(), "AAPL", "1d", "", "")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&src.eodCalls))
	assert.Equal(t, first, second)
	assert.Equal(t, "AAPL.US", first.Symbol)
	assert.Equal(t, "equity", first.AssetClass)
	assert.Equal(t, 12.0, first.LastPrice)
}

func TestCandlesWeeklyAggregation(t *testing.T) {
	// Jan 2..9 2024 spans two Monday-anchored weeks: Jan 2-7 and Jan 8-9.
	src := &fakeSource{eodPayload: dailyPayload(10, 11, 12, 13, 14, 15, 16, 17)}
	m := newMarketData(t, src)

	series, err := m.Candles(context.Background(), "AAPL", "1w", "", "")
	require.NoError(t, err)
	require.Len(t, series.Candles, 2)
	assert.Equal(t, 10.0, series.Candles[0].Open)
	assert.Equal(t, 15.0, series.Candles[0].Close)
	assert.Equal(t, 16.0, series.Candles[1].Open)
	assert.Equal(t, 17.0, series.Candles[1].Close)
	assert.Equal(t, "1w", series.Timeframe)
}

func TestCandlesRejectsInvertedRange(t *testing.T) {
	m := newMarketData(t, &fakeSource{})
	_, err := m.Candles(context.Background(), "AAPL", "1d", "2024-02-01", "2024-01-01")
	require.ErrorIs(t, err, models.ErrInvalidRange)
}

func TestQuoteCachedPerProviderSymbol(t *testing.T) {
	src := &fakeSource{quote: &models.Quote{Symbol: "AAPL.US", Price: 187.5, Timestamp: 1700000000}}
	m := newMarketData(t, src)

	q1, err := m.Quote(context.Background(), "apple")
	require.NoError(t, err)
	q2, err := m.Quote(context.Background(), "AAPL")
	require.NoError(t, err)

	// Both inputs resolve to AAPL.US, so the second hit is served warm.
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.quotes))
	assert.Equal(t, q1, q2)
	assert.Equal(t, 187.5, q1.Price)
}

func TestWarmQuoteSkipsUpstream(t *testing.T) {
	src := &fakeSource{quoteErr: errors.New("should not be called")}
	m := newMarketData(t, src)

	m.WarmQuote(&models.Quote{Symbol: "TSLA.US", Price: 240.0, Timestamp: 1700000000})

	q, err := m.Quote(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.Equal(t, 240.0, q.Price)
	assert.Zero(t, atomic.LoadInt32(&src.quotes))
}

func TestConcurrentCandlesCoalesce(t *testing.T) {
	src := &fakeSource{eodPayload: dailyPayload(10, 11, 12)}
	m := newMarketData(t, src)

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Candles(context.Background(), "MSFT", "1d", "", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&src.eodCalls))
}
