package di

import (
	"context"
	"fmt"
	"time"

	"LeadPull/internal/domain/repository"
	"LeadPull/internal/engine"
	"LeadPull/internal/handler/api"
	mid "LeadPull/internal/middleware"
	"LeadPull/internal/orchestrator"
	internalrepo "LeadPull/internal/repository"
	"LeadPull/internal/scanner"
	"LeadPull/internal/service/binance"
	icache "LeadPull/internal/service/cache"
	"LeadPull/internal/usecase"
	pkgch "LeadPull/pkg/clickhouse"
	"LeadPull/pkg/config"
	xhttp "LeadPull/pkg/http"
	pkgkafka "LeadPull/pkg/kafka"
	applogger "LeadPull/pkg/logger"
	"LeadPull/pkg/metrics"
	"LeadPull/pkg/queue"
	"LeadPull/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger. When Redis is enabled the
// error stream is additionally aggregated onto a Redis queue for the
// operations dashboard.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Format == "" {
		lc.Format = "console"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}

	l, err := applogger.New(lc)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	if cfg.Redis.Enabled {
		cli := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pub := queue.NewRedisPublisher(l, cli)
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "logs.aggregated",
			Publisher:      pub,
		})
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideEngine creates the per-instrument aggregation engine.
func ProvideEngine(cfg *config.Config) *engine.Engine {
	return engine.New(engine.Config{
		Symbol:          cfg.Binance.Symbol,
		IntervalSec:     cfg.Engine.IntervalSec,
		HistoryCap:      cfg.Engine.HistoryCap,
		CVDSamples:      cfg.Engine.CVDSamples,
		MarketCap:       cfg.Engine.MarketCap,
		SRRecomputeEach: cfg.Engine.SRRecomputeEach,
		RSIPeriod:       cfg.Engine.RSIPeriod,
	})
}

// ProvideMarketStream creates the Binance WebSocket stream.
func ProvideMarketStream(cfg *config.Config, l *applogger.Logger) repository.MarketStream {
	return binance.New(
		cfg.Binance.WebSocketURL,
		cfg.Binance.Symbol,
		cfg.Binance.ReconnectDelay,
		cfg.Binance.PingInterval,
		l,
	)
}

// ProvideRestClient creates the Binance REST client for history backfill,
// or nil when no REST endpoint is configured.
func ProvideRestClient(cfg *config.Config, l *applogger.Logger) *binance.RestClient {
	if cfg.Binance.RestURL == "" {
		return nil
	}
	return binance.NewRestClient(cfg.Binance.RestURL, l)
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the
// schema. Returns nil when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.Schema()); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideCandleStore creates the ClickHouse candle store, or nil when
// ClickHouse is disabled.
func ProvideCandleStore(ch *pkgch.Client, l *applogger.Logger) repository.CandleStore {
	if ch == nil {
		return nil
	}
	s := internalrepo.NewCHCandleStore(ch)
	s.SetLogger(l)
	return s
}

// ProvideReportStore creates the ClickHouse report archive, or nil when
// ClickHouse is disabled.
func ProvideReportStore(ch *pkgch.Client, l *applogger.Logger) repository.ReportStore {
	if ch == nil {
		return nil
	}
	s := internalrepo.NewCHReportStore(ch)
	s.SetLogger(l)
	return s
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is
// disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideReportSink routes reports to Kafka when available, otherwise to
// the process log.
func ProvideReportSink(producer *pkgkafka.Producer, cfg *config.Config, l *applogger.Logger) repository.ReportSink {
	if producer != nil {
		return internalrepo.NewKafkaReportSink(producer, cfg.Binance.Symbol, cfg.Kafka.ReportTopic, cfg.Kafka.LogTopic)
	}
	return internalrepo.NewLogReportSink(l, cfg.Binance.Symbol)
}

// ProvideSnapshotCache creates the Redis snapshot cache, or nil when Redis
// is disabled.
func ProvideSnapshotCache(cfg *config.Config) repository.SnapshotCache {
	if !cfg.Redis.Enabled {
		return nil
	}
	return internalrepo.NewRedisSnapshotCache(internalrepo.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Binance.Symbol)
}

// ProvideKafkaConsumer creates the report-topic consumer, or nil when Kafka
// is disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.Consumer.GroupID == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideReportsHandler registers the archival handler for the report
// topic, or nil when there is nowhere to archive.
func ProvideReportsHandler(cfg *config.Config, store repository.ReportStore, cache repository.SnapshotCache, m repository.Metrics) *usecase.KafkaReportsHandler {
	if store == nil {
		return nil
	}
	return usecase.NewKafkaReportsHandler(cfg.Kafka.ReportTopic, store, cache, m)
}

// ProvideTradeProcessor creates the trade processor use case.
func ProvideTradeProcessor(eng *engine.Engine, m repository.Metrics) *usecase.TradeProcessor {
	return usecase.NewTradeProcessor(eng, m)
}

// ProvideTradeCollector creates the trade collector with the realtime
// pipeline between the WebSocket and the engine.
func ProvideTradeCollector(
	stream repository.MarketStream,
	eng *engine.Engine,
	proc *usecase.TradeProcessor,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.TradeCollector {
	var opts []mid.PipelineOption
	if cfg.Pipeline.MaxRPS > 0 {
		opts = append(opts, mid.WithMaxRPS(cfg.Pipeline.MaxRPS))
	}
	if cfg.Pipeline.BufferSize > 0 {
		opts = append(opts, mid.WithBufferSize(cfg.Pipeline.BufferSize))
	}
	pipe := mid.NewRealtimePipeline(proc, m, opts...)
	return usecase.NewTradeCollector(stream, eng, proc, m, pipe)
}

// ProvideCandlePersister drains finalized candles into storage and keeps
// the snapshot cache warm.
func ProvideCandlePersister(
	eng *engine.Engine,
	cfg *config.Config,
	store repository.CandleStore,
	cache repository.SnapshotCache,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.CandlePersister {
	if store == nil && cache == nil {
		return nil
	}
	return usecase.NewCandlePersister(eng.Candles(), cfg.Binance.Symbol, store, cache, eng, m, l)
}

// ProvideOrchestrator creates the lead orchestrator.
func ProvideOrchestrator(
	eng *engine.Engine,
	sink repository.ReportSink,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *orchestrator.Orchestrator {
	return orchestrator.New(eng, sink, m, l, orchestrator.Config{
		SurveyInterval: cfg.Orchestrator.SurveyInterval,
		TickInterval:   cfg.Orchestrator.TickInterval,
		RetryInterval:  cfg.Orchestrator.RetryInterval,
		MaxAttempts:    cfg.Orchestrator.MaxAttempts,
	})
}

// ProvideWhaleScanner creates the order-book whale scanner.
func ProvideWhaleScanner(
	eng *engine.Engine,
	sink repository.ReportSink,
	l *applogger.Logger,
	cfg *config.Config,
) *scanner.WhaleScanner {
	return scanner.New(eng, sink, l, scanner.Config{
		ScanInterval: cfg.Scanner.ScanInterval,
		MinValueUSD:  cfg.Scanner.MinValueUSD,
		Retention:    cfg.Scanner.Retention,
	})
}

// ProvideMarketQuery creates the read-side use case.
func ProvideMarketQuery(
	cfg *config.Config,
	eng *engine.Engine,
	store repository.CandleStore,
	cache repository.SnapshotCache,
	orch *orchestrator.Orchestrator,
	whales *scanner.WhaleScanner,
) *usecase.MarketQueryUseCase {
	return usecase.NewMarketQueryUseCase(cfg.Binance.Symbol, eng, store, cache, orch, whales)
}

// ProvideHTTPHandler creates the Echo handler with response caching. Redis
// backs the cache when enabled; an in-process TTL cache otherwise.
func ProvideHTTPHandler(
	l *applogger.Logger,
	uc *usecase.MarketQueryUseCase,
	store repository.CandleStore,
	collector *usecase.TradeCollector,
	cfg *config.Config,
) xhttp.Handler {
	h := api.NewMarketEchoHandler(l, uc, store, collector)
	if cfg.Redis.Enabled {
		h.SetCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	} else {
		h.SetCache(icache.NewTTLCache())
	}
	return h
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
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
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, l, eng, store, collector, persister, orch, whales, consumer, kh, chClient, rest, handler)
}
