package usecase

import (
	"context"
	"fmt"
	"time"

	"ChartPulse/internal/domain/models"
	drepo "ChartPulse/internal/domain/repository"
	"ChartPulse/internal/service/cache"
	"ChartPulse/internal/service/symbols"
	"ChartPulse/internal/services/candles"
	"ChartPulse/pkg/logger"
	"ChartPulse/pkg/util"
)

// MarketData orchestrates the full chart pipeline: resolve the symbol, pull
// raw history through the coalescing cache, normalize it, and aggregate
// calendar timeframes. All upstream traffic funnels through here.
type MarketData struct {
	resolver *symbols.Resolver
	source   drepo.MarketSource
	store    *cache.Store
	log      *logger.Logger
}

// NewMarketData creates the market-data usecase.
func NewMarketData(resolver *symbols.Resolver, source drepo.MarketSource, store *cache.Store, log *logger.Logger) *MarketData {
	return &MarketData{
		resolver: resolver,
		source:   source,
		store:    store,
		log:      log,
	}
}

// Resolve maps raw user input to a provider symbol.
func (m *MarketData) Resolve(input string) (models.ResolvedSymbol, error) {
	return m.resolver.Resolve(input)
}

// Quote returns the latest price for a symbol, served from the price cache
// when fresh.
func (m *MarketData) Quote(ctx context.Context, input string) (*models.Quote, error) {
	rs, err := m.resolver.Resolve(input)
	if err != nil {
		return nil, err
	}

	key := cache.Key(cache.CategoryPrice, rs.ProviderSymbol)
	return cache.GetOrFetchTyped(ctx, m.store, key, cache.CategoryPrice, func(ctx context.Context) (*models.Quote, error) {
		return m.source.LatestQuote(ctx, rs.ProviderSymbol)
	})
}

// WarmQuote seeds the price cache from a streamed quote so subsequent Quote
// calls skip the REST round trip.
func (m *MarketData) WarmQuote(q *models.Quote) {
	if q == nil || q.Price <= 0 {
		return
	}
	m.store.Put(cache.Key(cache.CategoryPrice, q.Symbol), cache.CategoryPrice, q)
}

// Candles returns a normalized, timeframe-shaped series for a symbol.
// fromStr/toStr override the default lookback when present; they accept
// dates, RFC3339 timestamps, and unix seconds.
func (m *MarketData) Candles(ctx context.Context, input, timeframe, fromStr, toStr string) (*models.CandleSeries, error) {
	rs, err := m.resolver.Resolve(input)
	if err != nil {
		return nil, err
	}

	tf := drepo.NormalizeTimeframe(timeframe)
	now := time.Now().UTC()
	from := util.ParseTimeDefault(fromStr, now.Add(-tf.Lookback()))
	to := util.ParseTimeDefault(toStr, now)
	if !from.Before(to) {
		return nil, fmt.Errorf("candles %s: empty range: %w", rs.ProviderSymbol, models.ErrInvalidRange)
	}

	key := cache.Key(cache.CategoryChart, rs.ProviderSymbol, string(tf), util.FormatDate(from), util.FormatDate(to))
	series, err := cache.GetOrFetchTyped(ctx, m.store, key, cache.CategoryChart, func(ctx context.Context) (*models.CandleSeries, error) {
		return m.fetchSeries(ctx, rs, tf, from, to)
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

// DailyHistory returns the raw daily series used by the analytics layer. It
// shares the chart cache with the 1d timeframe.
func (m *MarketData) DailyHistory(ctx context.Context, input string, lookback time.Duration) (*models.CandleSeries, error) {
	now := time.Now().UTC()
	return m.Candles(ctx, input, string(drepo.TFDaily), util.FormatDate(now.Add(-lookback)), util.FormatDate(now))
}

func (m *MarketData) fetchSeries(ctx context.Context, rs models.ResolvedSymbol, tf drepo.Timeframe, from, to time.Time) (*models.CandleSeries, error) {
	var (
		raw  []byte
		mode candles.Mode
		err  error
	)
	if tf.IsIntraday() {
		raw, err = m.source.IntradayCandles(ctx, rs.ProviderSymbol, string(tf), from, to)
		mode = candles.ModeIntraday
	} else {
		raw, err = m.source.EODCandles(ctx, rs.ProviderSymbol, from, to)
		mode = candles.ModeDaily
	}
	if err != nil {
		return nil, err
	}

	bars := candles.Normalize(raw, mode)
	switch tf {
	case drepo.TFWeekly:
		bars = candles.Aggregate(bars, candles.PeriodWeekly)
	case drepo.TFMonthly:
		bars = candles.Aggregate(bars, candles.PeriodMonthly)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("candles %s/%s: %w", rs.ProviderSymbol, tf, models.ErrNoData)
	}

	series := &models.CandleSeries{
		Symbol:     rs.ProviderSymbol,
		Timeframe:  string(tf),
		Candles:    bars,
		LastPrice:  bars[len(bars)-1].Close,
		AssetClass: string(rs.AssetClass),
	}
	m.log.Debug("fetched series",
		logger.String("symbol", rs.ProviderSymbol),
		logger.String("timeframe", string(tf)),
		logger.Int("bars", len(bars)),
	)
	return series, nil
}
