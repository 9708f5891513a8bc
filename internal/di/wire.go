//go:build wireinject
// +build wireinject

package di

import (
	"TradeBot365/pkg/config"
	"TradeBot365/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,
		ProvideRedisClient,
		ProvideLayeredCache,

		// Repositories
		ProvideSignalStore,
		ProvideExecutionStore,
		ProvideAccountStore,
		ProvideEventPublisher,
		ProvideSignalStream,

		// Use cases
		ProvideSignalProcessor,
		ProvideSignalCollector,
		ProvideKafkaExecutionsHandler,
		ProvideKafkaErrorsHandler,
		ProvideErrorMonitor,
		ProvideReconciliation,
		ProvideAccountDirectory,
		ProvideResolveQueue,
		ProvideAccountSyncer,

		// HTTP
		ProvideMonitorHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
