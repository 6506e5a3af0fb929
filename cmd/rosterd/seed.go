package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"roster-tracker/internal/constants"
	fxmodules "roster-tracker/internal/fx"
	"roster-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type seedFiles []string

// seed replaces the roster with the season files and returns the exit code.
func seed(files []string) int {
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: rosterd seed <season files...>")
		return 2
	}

	app := fx.New(
		fxmodules.BackendModule,
		fx.Supply(seedFiles(files)),
		fx.Invoke(runSeed),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), constants.SeedTimeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "seeding failed: %v\n", err)
		return 1
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop: %v\n", err)
		return 1
	}
	return 0
}

func runSeed(lc fx.Lifecycle, seeder *service.Seeder, files seedFiles, db *sql.DB, logger zerolog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			result, err := seeder.SeedFiles(ctx, files...)
			if err != nil {
				return err
			}
			logger.Info().
				Int("players", result.Players).
				Int("stats", result.Stats).
				Int("skipped", result.Skipped).
				Msg("seed complete")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})
}
