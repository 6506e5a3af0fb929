package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"roster-tracker/internal/cache"
	"roster-tracker/internal/domain"
	"roster-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// multiTeamMarker is the team of a row that totals a player's season across
// several teams.
const multiTeamMarker = "TOT"

var seasonInName = regexp.MustCompile(`(\d{4})`)

// SeasonRow is one player's season totals as scraped from a stats table.
type SeasonRow struct {
	Player           string  `json:"Player"`
	Team             string  `json:"Team"`
	Games            float64 `json:"G"`
	GamesStarted     float64 `json:"GS"`
	Points           float64 `json:"PTS"`
	Rebounds         float64 `json:"TRB"`
	Assists          float64 `json:"AST"`
	Steals           float64 `json:"STL"`
	Blocks           float64 `json:"BLK"`
	FieldGoalPct     float64 `json:"FG%"`
	ThreePointPct    float64 `json:"3P%"`
	EfficiencyRating float64 `json:"PER"`
}

type SeasonFile struct {
	Season string
	Rows   []SeasonRow
}

type SeedResult struct {
	Players int `json:"players"`
	Stats   int `json:"stats"`
	Skipped int `json:"skipped"`
}

type Seeder struct {
	players *repository.PlayerRepository
	cache   *cache.SimilarCache
	logger  zerolog.Logger
}

func NewSeeder(players *repository.PlayerRepository, cache *cache.SimilarCache, logger zerolog.Logger) *Seeder {
	return &Seeder{players: players, cache: cache, logger: logger}
}

// SeasonFromFileName takes the season from the last four digit group of the
// file's base name, so data/wnba_combined_2024.json is season 2024.
func SeasonFromFileName(path string) (string, error) {
	matches := seasonInName.FindAllString(filepath.Base(path), -1)
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no season in file name %s", domain.ErrValidation, path)
	}
	return matches[len(matches)-1], nil
}

// LoadSeasonFile reads a JSON array of season rows.
func LoadSeasonFile(path string) (SeasonFile, error) {
	season, err := SeasonFromFileName(path)
	if err != nil {
		return SeasonFile{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return SeasonFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var rows []SeasonRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return SeasonFile{}, fmt.Errorf("%w: failed to parse %s: %v", domain.ErrDecode, path, err)
	}
	return SeasonFile{Season: season, Rows: rows}, nil
}

func (s *Seeder) SeedFiles(ctx context.Context, paths ...string) (SeedResult, error) {
	files := make([]SeasonFile, 0, len(paths))
	for _, path := range paths {
		f, err := LoadSeasonFile(path)
		if err != nil {
			return SeedResult{}, err
		}
		s.logger.Info().Str("file", path).Str("season", f.Season).Int("rows", len(f.Rows)).Msg("season file loaded")
		files = append(files, f)
	}
	return s.Seed(ctx, files)
}

// Seed replaces the whole roster with the players and season lines in files,
// in one transaction. Players are matched across files by full name and keep
// the first team they are seen with.
func (s *Seeder) Seed(ctx context.Context, files []SeasonFile) (SeedResult, error) {
	var result SeedResult

	err := s.players.InTx(ctx, func(players *repository.PlayerRepository, stats *repository.StatsRepository) error {
		clearedPlayers, clearedStats, err := players.Clear(ctx)
		if err != nil {
			return err
		}
		s.logger.Info().Int64("players", clearedPlayers).Int64("stats", clearedStats).Msg("cleared old roster")

		ids := make(map[string]string)
		for _, f := range files {
			lines, skipped := seasonLines(f.Rows)
			result.Skipped += skipped

			for _, l := range lines {
				id, ok := ids[l.name]
				if !ok {
					fields := splitName(l.name, l.team)
					if err := fields.Validate(); err != nil {
						s.logger.Warn().Str("player", l.name).Str("season", f.Season).Msg("skipping row without a usable name")
						result.Skipped++
						continue
					}
					p, err := players.Create(ctx, fields)
					if err != nil {
						return err
					}
					id = p.ID
					ids[l.name] = id
					result.Players++
				}

				stat := perGame(l.row)
				stat.PlayerID = id
				stat.Season = f.Season
				if _, err := stats.Upsert(ctx, stat); err != nil {
					return err
				}
				result.Stats++
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("seeding failed, roster left unchanged")
		return SeedResult{}, fmt.Errorf("failed to seed roster: %w", err)
	}

	s.cache.Invalidate(ctx)
	s.logger.Info().
		Int("players", result.Players).
		Int("stats", result.Stats).
		Int("skipped", result.Skipped).
		Msg("roster seeded")
	return result, nil
}

type seedLine struct {
	name string
	team string
	row  SeasonRow
}

// seasonLines reduces a season's rows to one line per player in order of
// first appearance. A multi-team total row wins over the per-team rows and
// the player's team becomes the first real team listed. Players with only a
// total row, or with no name or team, are skipped.
func seasonLines(rows []SeasonRow) ([]seedLine, int) {
	type entry struct {
		team     string
		row      SeasonRow
		hasTotal bool
		hasRow   bool
	}

	var order []string
	entries := make(map[string]*entry)
	skipped := 0

	for _, row := range rows {
		name := strings.TrimSpace(row.Player)
		team := strings.TrimSpace(row.Team)
		if name == "" || team == "" {
			skipped++
			continue
		}

		e, ok := entries[name]
		if !ok {
			e = &entry{}
			entries[name] = e
			order = append(order, name)
		}

		if team == multiTeamMarker {
			e.row = row
			e.hasTotal = true
			continue
		}
		if e.team == "" {
			e.team = team
		}
		if !e.hasTotal && !e.hasRow {
			e.row = row
		}
		e.hasRow = true
	}

	lines := make([]seedLine, 0, len(order))
	for _, name := range order {
		e := entries[name]
		if e.team == "" {
			skipped++
			continue
		}
		lines = append(lines, seedLine{name: name, team: e.team, row: e.row})
	}
	return lines, skipped
}

func splitName(name, team string) domain.PlayerFields {
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	return domain.PlayerFields{FirstName: first, LastName: last, Team: team}.Normalized()
}

func perGame(row SeasonRow) domain.SeasonStat {
	games := row.Games
	if games == 0 {
		games = 1
	}
	return domain.SeasonStat{
		GamesPlayed:      int(row.Games),
		GamesStarted:     int(row.GamesStarted),
		PointsPerGame:    round1(row.Points / games),
		ReboundsPerGame:  round1(row.Rebounds / games),
		AssistsPerGame:   round1(row.Assists / games),
		StealsPerGame:    round1(row.Steals / games),
		BlocksPerGame:    round1(row.Blocks / games),
		FieldGoalPct:     row.FieldGoalPct,
		ThreePointPct:    row.ThreePointPct,
		EfficiencyRating: row.EfficiencyRating,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
