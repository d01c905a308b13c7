package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	drepo "ChartPulse/internal/domain/repository"
	"ChartPulse/internal/usecase"
	"ChartPulse/pkg/config"
	xhttp "ChartPulse/pkg/http"
	applogger "ChartPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	httpServer *xhttp.Server
	stream     drepo.QuoteStream
	market     *usecase.MarketData
	metrics    drepo.Metrics
}

// New creates a new App instance with all dependencies. stream may be nil
// when the realtime feed is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	stream drepo.QuoteStream,
	market *usecase.MarketData,
	metrics drepo.Metrics,
) *App {
	return &App{
		cfg:     cfg,
		log:     log,
		handler: handler,
		stream:  stream,
		market:  market,
		metrics: metrics,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.stream != nil && a.cfg.Provider.StreamEnabled {
		go a.runStream(ctx)
		a.log.Info("quote stream started", applogger.Strings("symbols", a.cfg.Provider.StreamSymbols))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// runStream keeps the realtime quote feed connected and pushes every tick
// into the price cache so REST quote calls stay warm.
func (a *App) runStream(ctx context.Context) {
	if err := a.stream.Connect(ctx); err != nil {
		a.log.Warn("stream connect failed", applogger.Error(err))
		return
	}
	if err := a.stream.Subscribe(ctx, a.cfg.Provider.StreamSymbols); err != nil {
		a.log.Warn("stream subscribe failed", applogger.Error(err))
		return
	}

	for {
		quotes, errs := a.stream.Read(ctx)
	consume:
		for {
			select {
			case <-ctx.Done():
				return
			case q, ok := <-quotes:
				if !ok {
					break consume
				}
				a.market.WarmQuote(q)
				if a.metrics != nil {
					a.metrics.RecordLastPrice(q.Symbol, q.Price)
				}
			case err, ok := <-errs:
				if !ok {
					break consume
				}
				a.log.Warn("stream read error", applogger.Error(err))
				break consume
			}
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := a.stream.Reconnect(ctx); err != nil {
			a.log.Warn("stream reconnect failed", applogger.Error(err))
			return
		}
		a.log.Info("stream reconnected")
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.log.Warn("stream close error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}

	a.log.Info("shutdown complete")
	return nil
}
