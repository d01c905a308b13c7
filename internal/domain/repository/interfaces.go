package repository

import (
	"context"
	"time"

	"ChartPulse/internal/domain/models"
)

// MarketSource is the upstream market-data provider boundary. Candle
// operations return the raw JSON payload; normalization is owned by the core.
type MarketSource interface {
	LatestQuote(ctx context.Context, symbol string) (*models.Quote, error)
	EODCandles(ctx context.Context, symbol string, from, to time.Time) ([]byte, error)
	IntradayCandles(ctx context.Context, symbol, interval string, from, to time.Time) ([]byte, error)
}

// QuoteStream is a realtime price feed used to pre-warm the price cache.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, symbols []string) error
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
}

// Metrics abstracts the instrumentation backend.
type Metrics interface {
	RecordCacheHit(category string)
	RecordCacheMiss(category string)
	RecordCoalesced(category string)
	RecordUpstreamRequest(endpoint, outcome string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
