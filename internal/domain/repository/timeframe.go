package repository

import "time"

// Timeframe is a chart resolution. Intraday frames map directly to a
// provider interval; 1w and 1mo are aggregated locally from daily bars.
type Timeframe string

const (
	TF5m      Timeframe = "5m"
	TF15m     Timeframe = "15m"
	TF1h      Timeframe = "1h"
	TFDaily   Timeframe = "1d"
	TFWeekly  Timeframe = "1w"
	TFMonthly Timeframe = "1mo"
)

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF5m, TF15m, TF1h, TFDaily, TFWeekly, TFMonthly:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TFDaily }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

// IsIntraday reports whether tf resolves against the intraday endpoint.
func (tf Timeframe) IsIntraday() bool {
	switch tf {
	case TF5m, TF15m, TF1h:
		return true
	default:
		return false
	}
}

// Lookback returns the default end-of-day history window for tf. Explicit
// date ranges from the caller override these policy defaults.
func (tf Timeframe) Lookback() time.Duration {
	switch tf {
	case TFWeekly:
		return 90 * 24 * time.Hour
	case TFMonthly:
		return 365 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}
