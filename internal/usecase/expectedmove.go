package usecase

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"ChartPulse/internal/domain/models"
	domsvc "ChartPulse/internal/domain/service"
	"ChartPulse/internal/service/cache"
	"ChartPulse/internal/services/volatility"
	"ChartPulse/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// NoiseFloorPct is the fraction of the close below which a computed move is
// reported as TooSmall instead of as band edges.
const NoiseFloorPct = 0.005

// historyLookback covers enough calendar days to yield the return window
// even across holidays.
const historyLookback = 60 * 24 * time.Hour

// ExpectedMove computes volatility-scaled price bands around the last close.
type ExpectedMove struct {
	market     *MarketData
	ivProvider domsvc.IVProvider
	store      *cache.Store
	log        *logger.Logger
	batchWidth int
}

// NewExpectedMove creates the expected-move usecase. ivProvider may be nil;
// the estimator chain then starts at historical volatility.
func NewExpectedMove(market *MarketData, ivProvider domsvc.IVProvider, store *cache.Store, log *logger.Logger, batchWidth int) *ExpectedMove {
	if batchWidth <= 0 {
		batchWidth = 4
	}
	return &ExpectedMove{
		market:     market,
		ivProvider: ivProvider,
		store:      store,
		log:        log,
		batchWidth: batchWidth,
	}
}

// Compute returns the expected move for one symbol over the given horizon.
// Results are cached per symbol/horizon under the analysis TTL.
func (e *ExpectedMove) Compute(ctx context.Context, input, timeframe string, customDays int) (*models.ExpectedMoveResult, error) {
	rs, err := e.market.Resolve(input)
	if err != nil {
		return nil, err
	}

	key := cache.Key(cache.CategoryAnalysis, "em", rs.ProviderSymbol, timeframe, strconv.Itoa(customDays))
	return cache.GetOrFetchTyped(ctx, e.store, key, cache.CategoryAnalysis, func(ctx context.Context) (*models.ExpectedMoveResult, error) {
		return e.compute(ctx, rs, timeframe, customDays)
	})
}

func (e *ExpectedMove) compute(ctx context.Context, rs models.ResolvedSymbol, timeframe string, customDays int) (*models.ExpectedMoveResult, error) {
	series, err := e.market.DailyHistory(ctx, rs.ProviderSymbol, historyLookback)
	if err != nil {
		return nil, err
	}
	last, _ := series.Last()
	close := last.Close

	est := volatility.Resolve(
		volatility.ProviderIV{IV: e.providerIV(ctx, rs)},
		volatility.Historical{Candles: series.Candles},
		volatility.Fixed{},
	)

	days, factor := volatility.HorizonFactor(timeframe, customDays)
	em := close * est.Sigma * math.Sqrt(factor)

	res := &models.ExpectedMoveResult{
		Symbol:      rs.ProviderSymbol,
		Close:       close,
		IV:          est.Sigma,
		IVSource:    est.Source,
		Timeframe:   timeframe,
		TradingDays: days,
	}
	if em < close*NoiseFloorPct {
		res.TooSmall = true
		return res, nil
	}

	res.EM = em
	res.UpperEM = close + em
	res.LowerEM = close - em
	res.Upper2Sigma = close + 2*em
	res.Lower2Sigma = close - 2*em

	e.log.Debug("expected move",
		logger.String("symbol", rs.ProviderSymbol),
		logger.String("iv_source", est.Source),
		logger.Float64("em", em),
	)
	return res, nil
}

// providerIV asks the analysis collaborator for an options-implied figure.
// Any failure just hands over to the historical estimator.
func (e *ExpectedMove) providerIV(ctx context.Context, rs models.ResolvedSymbol) *float64 {
	if e.ivProvider == nil || rs.AssetClass != models.AssetEquity {
		return nil
	}
	iv, err := e.ivProvider.ImpliedVolatility(ctx, rs.ProviderSymbol)
	if err != nil {
		e.log.Debug("provider iv unavailable",
			logger.String("symbol", rs.ProviderSymbol),
			logger.Error(err),
		)
		return nil
	}
	return &iv
}

// Batch computes expected moves for several symbols with bounded
// concurrency. Per-symbol failures are reported in place; the batch itself
// always succeeds once all symbols have been attempted.
func (e *ExpectedMove) Batch(ctx context.Context, inputs []string, timeframe string, customDays int) []models.ExpectedMoveBatchItem {
	items := make([]models.ExpectedMoveBatchItem, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.batchWidth)
	for i, sym := range inputs {
		g.Go(func() error {
			res, err := e.Compute(gctx, sym, timeframe, customDays)
			if err != nil {
				e.log.Warn("batch compute failed",
					logger.String("symbol", sym),
					logger.Error(err),
				)
				items[i] = models.ExpectedMoveBatchItem{Symbol: sym, Error: publicError(err)}
				return nil
			}
			items[i] = models.ExpectedMoveBatchItem{Symbol: res.Symbol, Result: res}
			return nil
		})
	}
	_ = g.Wait()
	return items
}

// publicError folds an error onto the client-facing taxonomy. Raw error
// text carries provider URLs and credentials and must never reach a batch
// item; the full error goes to the log instead.
func publicError(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidSymbolInput):
		return "symbol input is invalid"
	case errors.Is(err, models.ErrUnsupportedSymbol):
		return "symbol is not supported"
	case errors.Is(err, models.ErrInvalidRange):
		return "date range is invalid"
	case errors.Is(err, models.ErrNoData):
		return "no data for symbol"
	case errors.Is(err, models.ErrUpstreamUnavailable), errors.Is(err, models.ErrInvalidResponse):
		return "market data temporarily unavailable"
	default:
		return "internal error"
	}
}
