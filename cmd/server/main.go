package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"roster-tracker/internal/config"
	"roster-tracker/internal/constants"
	fxmodules "roster-tracker/internal/fx"
	"roster-tracker/internal/metrics"
	"roster-tracker/internal/middleware"
	"roster-tracker/internal/roster"
	"roster-tracker/internal/server"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.GatewayModule,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	model *roster.Model,
	viewServer *server.ViewServer,
	m *metrics.Manager,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	r := chi.NewRouter()

	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	}).Handler)
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.Metrics(m))

	viewServer.Routes(r)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			model.Open()
			go func() {
				logger.Info().Str("addr", srv.Addr).Str("api_base_url", cfg.APIBaseURL).Msg("gateway starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("gateway failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down gateway")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			viewServer.Close()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("gateway shutdown failed")
				return err
			}
			model.Close()
			logger.Info().Msg("gateway stopped gracefully")
			return nil
		},
	})
}
