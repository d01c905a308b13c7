package service

import "context"

// IVProvider supplies an options-implied volatility figure for a symbol.
// Implementations are best-effort: any error falls back to historical
// estimation in the caller.
type IVProvider interface {
	ImpliedVolatility(ctx context.Context, symbol string) (float64, error)
}
