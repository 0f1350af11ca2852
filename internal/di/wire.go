//go:build wireinject
// +build wireinject

package di

import (
	"SectorPulse/pkg/config"
	"SectorPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideBarSource,
		ProvideReturnPublisher,
		ProvideKafkaConsumer,
		ProvideCache,
		ProvideRefreshQueue,

		// Repositories
		ProvidePriceStore,
		ProvideProfileStore,
		ProvideReturnStore,

		// Use cases
		ProvideIngestor,
		ProvidePipelineRunner,
		ProvideScheduler,
		ProvideMarketQuery,
		ProvideKafkaReturnsHandler,

		// HTTP surface
		ProvideMarketHandler,
		ProvideRunsHub,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
