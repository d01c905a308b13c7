package volatility

import (
	"math"

	"ChartPulse/internal/domain/models"
)

// Annualization and horizon constants.
const (
	TradingDaysPerYear = 252
	// DefaultSigma applies when neither provider IV nor history is usable.
	DefaultSigma = 0.25
	// HistoryWindow caps how many recent daily log returns feed the estimate.
	HistoryWindow = 20
)

// Estimate is an annualized volatility figure and where it came from.
type Estimate struct {
	Sigma  float64
	Source string
}

// Estimator is one strategy in the fallback chain. Returning false means
// "not applicable here", handing over to the next strategy.
type Estimator interface {
	Estimate() (Estimate, bool)
}

// ProviderIV uses an options-implied volatility figure when present and valid.
type ProviderIV struct {
	IV *float64
}

func (p ProviderIV) Estimate() (Estimate, bool) {
	if p.IV == nil || *p.IV <= 0 || math.IsNaN(*p.IV) || math.IsInf(*p.IV, 0) {
		return Estimate{}, false
	}
	return Estimate{Sigma: *p.IV, Source: "provider"}, true
}

// Historical annualizes the sample variance of recent daily log returns.
type Historical struct {
	Candles []models.Candle
}

func (h Historical) Estimate() (Estimate, bool) {
	rets := logReturns(h.Candles)
	if len(rets) > HistoryWindow {
		rets = rets[len(rets)-HistoryWindow:]
	}
	if len(rets) < 2 {
		return Estimate{}, false
	}

	mean := 0.0
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))

	variance := 0.0
	for _, r := range rets {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(rets) - 1)

	return Estimate{Sigma: math.Sqrt(variance * TradingDaysPerYear), Source: "historical"}, true
}

// Fixed is the terminal fallback.
type Fixed struct{}

func (Fixed) Estimate() (Estimate, bool) {
	return Estimate{Sigma: DefaultSigma, Source: "default"}, true
}

// Resolve walks the strategies in order and returns the first success, so
// the choice actually taken is observable rather than buried in fallbacks.
func Resolve(estimators ...Estimator) Estimate {
	for _, e := range estimators {
		if est, ok := e.Estimate(); ok {
			return est
		}
	}
	return Estimate{Sigma: DefaultSigma, Source: "default"}
}

// HorizonFactor returns the trading-day fraction of a year for a timeframe.
// customDays is only consulted for the "custom" timeframe.
func HorizonFactor(timeframe string, customDays int) (float64, float64) {
	var days float64
	switch timeframe {
	case "1d", "daily":
		days = 1
	case "1w", "weekly":
		days = 5
	case "1mo", "monthly":
		days = 21
	case "custom":
		days = float64(customDays)
		if days <= 0 {
			days = 1
		}
	default:
		days = 1
	}
	return days, days / TradingDaysPerYear
}

// logReturns computes r_t = ln(C_t / C_{t-1}) over closes, skipping
// non-positive prices.
func logReturns(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		cur := candles[i].Close
		if prev <= 0 || cur <= 0 {
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}
