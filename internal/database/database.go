package database

import (
	"database/sql"
	"embed"
	"fmt"

	"roster-tracker/internal/config"
	"roster-tracker/internal/constants"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// New opens the roster database at cfg.DBPath and migrates it to the latest
// schema. Foreign keys are enabled per connection through the DSN, so deleting
// a player cascades to its season stats.
func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	logger.Info().Str("path", cfg.DBPath).Msg("connecting to database")

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(constants.DBMaxOpenConns)
	db.SetMaxIdleConns(constants.DBMaxIdleConns)
	db.SetConnMaxLifetime(constants.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(constants.DBMaxIdleTime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := applyPragmas(db, logger); err != nil {
		logger.Error().Err(err).Msg("failed to apply SQLite pragmas")
		return nil, fmt.Errorf("failed to apply SQLite pragmas: %w", err)
	}
	version, err := migrate(db)
	if err != nil {
		logger.Error().Err(err).Msg("failed to run migrations")
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info().Int64("schema_version", version).Msg("roster database ready")
	return db, nil
}

// SchemaVersion reports the goose version the roster schema is at. It relies
// on the dialect New configured.
func SchemaVersion(db *sql.DB) (int64, error) {
	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// migrate brings the players and season_stats tables up to the embedded
// migrations and returns the resulting version.
func migrate(db *sql.DB) (int64, error) {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return 0, fmt.Errorf("failed to run goose migrations: %w", err)
	}
	return SchemaVersion(db)
}

// rosterPragmas tune SQLite for a small, read-heavy roster: WAL so similarity
// reads do not block stat writes, and a busy timeout for the writer.
var rosterPragmas = []struct {
	name  string
	value string
}{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
	{"temp_store", "MEMORY"},
}

func applyPragmas(db *sql.DB, logger zerolog.Logger) error {
	for _, p := range rosterPragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("failed to set PRAGMA %s: %w", p.name, err)
		}
		logger.Debug().Str("pragma", p.name).Str("value", p.value).Msg("SQLite pragma set")
	}
	return nil
}
