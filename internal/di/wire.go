//go:build wireinject
// +build wireinject

package di

import (
	"FinSight/pkg/config"
	"FinSight/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisL2,
		ProvideAuditPublisher,

		// Caching and adapters
		ProvideSourceCache,
		ProvideSources,

		// Use cases
		ProvideEvaluator,
		ProvideAdvisor,

		// Transport
		ProvideHTTPHandler,
		ProvideQuoteStream,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
