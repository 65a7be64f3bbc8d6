//go:build wireinject
// +build wireinject

package di

import (
	"LeadPull/pkg/config"
	"LeadPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Core
		ProvideEngine,
		ProvideMarketStream,
		ProvideRestClient,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideCandleStore,
		ProvideReportStore,
		ProvideReportSink,
		ProvideSnapshotCache,

		// Use cases
		ProvideTradeProcessor,
		ProvideTradeCollector,
		ProvideCandlePersister,
		ProvideReportsHandler,
		ProvideOrchestrator,
		ProvideWhaleScanner,
		ProvideMarketQuery,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
