package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LeadPull/internal/domain/models"
	"LeadPull/internal/domain/repository"
	"LeadPull/internal/engine"
	"LeadPull/internal/orchestrator"
	"LeadPull/internal/scanner"
	"LeadPull/internal/service/binance"
	"LeadPull/internal/usecase"
	pkgch "LeadPull/pkg/clickhouse"
	"LeadPull/pkg/config"
	xhttp "LeadPull/pkg/http"
	pkgkafka "LeadPull/pkg/kafka"
	applogger "LeadPull/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	eng         *engine.Engine
	store       repository.CandleStore
	collector   *usecase.TradeCollector
	persister   *usecase.CandlePersister
	orch        *orchestrator.Orchestrator
	whales      *scanner.WhaleScanner
	consumer    *pkgkafka.Consumer
	kh          *usecase.KafkaReportsHandler
	chClient    *pkgch.Client
	rest        *binance.RestClient
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	eng *engine.Engine,
	store repository.CandleStore,
	collector *usecase.TradeCollector,
	persister *usecase.CandlePersister,
	orch *orchestrator.Orchestrator,
	whales *scanner.WhaleScanner,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaReportsHandler,
	chClient *pkgch.Client,
	rest *binance.RestClient,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		log:         log,
		eng:         eng,
		store:       store,
		collector:   collector,
		persister:   persister,
		orch:        orch,
		whales:      whales,
		consumer:    consumer,
		kh:          kh,
		chClient:    chClient,
		rest:        rest,
		httpHandler: handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.log

	// Warm-start the engine from persisted candles so indicators do not
	// begin from an empty history after a restart.
	a.backfill(ctx)

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Feed: WebSocket -> pipeline -> engine
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.String("symbol", a.cfg.Binance.Symbol))

	if a.persister != nil {
		a.persister.Start(ctx)
		l.Info("candle persister started")
	}

	a.orch.Start(ctx)
	l.Info("lead orchestrator started")

	a.whales.Start(ctx)
	l.Info("whale scanner started")

	// Report archival off the report topic
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// backfill seeds the engine candle history, preferring persisted candles
// and falling back to the exchange REST API on a cold start.
func (a *App) backfill(ctx context.Context) {
	limit := a.cfg.Engine.HistoryCap
	if limit <= 0 {
		limit = 500
	}
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var candles []models.Candle
	if a.store != nil {
		stored, err := a.store.RecentCandles(loadCtx, a.cfg.Binance.Symbol, limit)
		if err != nil {
			a.log.Warn("history backfill from storage failed", applogger.Error(err))
		} else {
			candles = stored
		}
	}
	if len(candles) == 0 && a.rest != nil {
		fetched, err := a.rest.Klines(loadCtx, a.cfg.Binance.Symbol, limit)
		if err != nil {
			a.log.Warn("history backfill from exchange failed", applogger.Error(err))
		} else {
			candles = fetched
		}
	}
	if len(candles) == 0 {
		return
	}
	a.eng.SeedHistory(candles)
	a.log.Info("history backfilled",
		applogger.String("symbol", a.cfg.Binance.Symbol),
		applogger.Int("candles", len(candles)))
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.log

	// Stop producing new state first
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}
	a.orch.Stop()
	a.whales.Stop()
	if a.persister != nil {
		a.persister.Stop()
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
