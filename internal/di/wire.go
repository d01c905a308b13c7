//go:build wireinject
// +build wireinject

package di

import (
	"ChartPulse/pkg/config"
	"ChartPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Caching
		ProvideCacheStore,
		ProvideResponseCache,

		// Provider clients
		ProvideSymbolResolver,
		ProvideMarketSource,
		ProvideQuoteStream,
		ProvideIVProvider,

		// Use cases
		ProvideMarketData,
		ProvideExpectedMove,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
