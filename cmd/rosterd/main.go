package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"

	"roster-tracker/internal/cache"
	"roster-tracker/internal/config"
	"roster-tracker/internal/constants"
	fxmodules "roster-tracker/internal/fx"
	"roster-tracker/internal/metrics"
	"roster-tracker/internal/middleware"
	"roster-tracker/internal/server"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "seed" {
		os.Exit(seed(os.Args[2:]))
	}

	fx.New(
		fxmodules.BackendModule,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	playerServer *server.PlayerServer,
	store cache.Store,
	m *metrics.Manager,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	r := chi.NewRouter()

	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}).Handler)
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.Metrics(m))

	playerServer.Routes(r)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.BackendPort),
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Str("db_path", cfg.DBPath).Msg("roster backend starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("roster backend failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down roster backend")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("roster backend shutdown failed")
				return err
			}

			if err := store.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing cache store")
			}
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("roster backend stopped gracefully")
			return nil
		},
	})
}
