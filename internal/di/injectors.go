//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/audit"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/controllers"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/deck"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/janitor"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/providers"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/ratelimit"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/services"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/storage"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewCacheProvider,
		providers.NewMetricsProvider,

		storage.Open,
		storage.NewRepository,
		ratelimit.NewStore,
		ratelimit.NewLimiter,
		audit.NewZstdCompressor,
		audit.NewArchive,
		janitor.NewScheduler,
		deck.NewDefaultScheduler,
		services.NewProfanityDetector,
		services.NewGuardService,
		services.NewDeckService,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
