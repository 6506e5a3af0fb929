package fx

import (
	"database/sql"

	"roster-tracker/internal/api"
	"roster-tracker/internal/cache"
	"roster-tracker/internal/config"
	"roster-tracker/internal/database"
	"roster-tracker/internal/db"
	"roster-tracker/internal/logger"
	"roster-tracker/internal/metrics"
	"roster-tracker/internal/repository"
	"roster-tracker/internal/roster"
	"roster-tracker/internal/server"
	"roster-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideModel(client *api.RosterClient, m *metrics.Manager, logger zerolog.Logger) *roster.Model {
	return roster.NewModel(client, logger, roster.WithRecorder(m))
}

func ProvideHub(cfg *config.Config, m *metrics.Manager, logger zerolog.Logger) *server.Hub {
	return server.NewHub(cfg, m, logger)
}

func ProvideSimilarCache(store cache.Store, cfg *config.Config, m *metrics.Manager, logger zerolog.Logger) *cache.SimilarCache {
	return cache.NewSimilarCache(store, cfg, m, logger)
}

func applyLogLevel(cfg *config.Config) error {
	return logger.ApplyLevel(cfg.LogLevel)
}

var common = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(metrics.Global),
	fx.Invoke(applyLogLevel),
)

// GatewayModule hosts one roster view model backed by the remote roster API.
var GatewayModule = fx.Options(
	common,
	// api client
	fx.Provide(api.NewRosterClient),
	// view model
	fx.Provide(ProvideModel),
	// server
	fx.Provide(ProvideHub),
	fx.Provide(server.NewViewServer),
)

// BackendModule serves the roster API from the local database.
var BackendModule = fx.Options(
	common,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewStatsRepository),
	// cache
	fx.Provide(cache.NewStore),
	fx.Provide(ProvideSimilarCache),
	// svc
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewSimilarityService),
	fx.Provide(service.NewSeeder),
	// server
	fx.Provide(server.NewPlayerServer),
)
