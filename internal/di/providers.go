package di

import (
	"fmt"

	"ChartPulse/internal/domain/repository"
	domsvc "ChartPulse/internal/domain/service"
	"ChartPulse/internal/handler/api"
	"ChartPulse/internal/service/ai"
	"ChartPulse/internal/service/cache"
	"ChartPulse/internal/service/eodhd"
	"ChartPulse/internal/service/symbols"
	"ChartPulse/internal/usecase"
	"ChartPulse/pkg/config"
	xhttp "ChartPulse/pkg/http"
	applogger "ChartPulse/pkg/logger"
	"ChartPulse/pkg/metrics"
	"ChartPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	log, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return log, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCacheStore creates the shared coalescing TTL cache.
func ProvideCacheStore(cfg *config.Config, rec repository.Metrics) *cache.Store {
	return cache.New(
		cache.WithMaxEntries(cfg.Cache.MaxEntries),
		cache.WithObserver(rec),
	)
}

// ProvideResponseCache picks the rendered-response cache backend. Redis when
// configured, an in-process TTL map otherwise.
func ProvideResponseCache(cfg *config.Config) cache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
	}
	return cache.NewTTLCache()
}

// ProvideSymbolResolver creates the symbol resolver.
func ProvideSymbolResolver() *symbols.Resolver {
	return symbols.NewResolver()
}

// ProvideMarketSource creates the EODHD provider client.
func ProvideMarketSource(cfg *config.Config, rec repository.Metrics) repository.MarketSource {
	return eodhd.New(cfg.Provider.BaseURL, cfg.Provider.APIToken, cfg.Provider.Timeout, rec)
}

// ProvideQuoteStream creates the realtime quote feed, or nil when disabled.
func ProvideQuoteStream(cfg *config.Config) repository.QuoteStream {
	if !cfg.Provider.StreamEnabled {
		return nil
	}
	return eodhd.NewStream(
		cfg.Provider.APIToken,
		cfg.Provider.WebSocketURL,
		cfg.Provider.ReconnectDelay,
		cfg.Provider.PingInterval,
	)
}

// ProvideIVProvider creates the AI analysis collaborator client, or nil when
// disabled. The estimator chain handles nil by skipping straight to
// historical volatility.
func ProvideIVProvider(cfg *config.Config) domsvc.IVProvider {
	if !cfg.AI.Enabled {
		return nil
	}
	return ai.NewInsightClient(cfg)
}

// ProvideMarketData creates the market-data usecase.
func ProvideMarketData(resolver *symbols.Resolver, source repository.MarketSource, store *cache.Store, log *applogger.Logger) *usecase.MarketData {
	return usecase.NewMarketData(resolver, source, store, log)
}

// ProvideExpectedMove creates the expected-move usecase.
func ProvideExpectedMove(cfg *config.Config, market *usecase.MarketData, iv domsvc.IVProvider, store *cache.Store, log *applogger.Logger) *usecase.ExpectedMove {
	return usecase.NewExpectedMove(market, iv, store, log, cfg.Batch.Width)
}

// ProvideHTTPHandler creates the market-data HTTP handler.
func ProvideHTTPHandler(market *usecase.MarketData, em *usecase.ExpectedMove, respCache cache.BytesCache, rec repository.Metrics, log *applogger.Logger) xhttp.Handler {
	return api.NewMarketHandler(market, em, respCache, rec, log)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	stream repository.QuoteStream,
	market *usecase.MarketData,
	rec repository.Metrics,
) *server.App {
	return server.New(cfg, log, handler, stream, market, rec)
}
