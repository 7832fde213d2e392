//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"folivix/internal"
	"folivix/internal/controllers"
	"folivix/internal/network"
	"folivix/internal/providers"
	"folivix/internal/services"
	"folivix/internal/storage"
	"folivix/internal/structures"
	"folivix/internal/tips"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewPrefsProvider,

		storage.NewFileStore,
		storage.NewZstdCompressor,
		storage.NewArchiver,
		network.NewClassifierClient,
		services.NewDiseaseService,
		services.NewUserService,
		services.NewAnalysisService,
		tips.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
