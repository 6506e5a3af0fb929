package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"roster-tracker/internal/cache"
	"roster-tracker/internal/config"
	"roster-tracker/internal/constants"
	"roster-tracker/internal/domain"
	"roster-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SimilarityService ranks player-seasons by how closely their box score
// profile matches a target player-season.
type SimilarityService struct {
	players      *repository.PlayerRepository
	stats        *repository.StatsRepository
	cache        *cache.SimilarCache
	defaultLimit int
	logger       zerolog.Logger
}

func NewSimilarityService(players *repository.PlayerRepository, stats *repository.StatsRepository, cache *cache.SimilarCache, cfg *config.Config, logger zerolog.Logger) *SimilarityService {
	return &SimilarityService{
		players:      players,
		stats:        stats,
		cache:        cache,
		defaultLimit: cfg.SimilarLimit,
		logger:       logger,
	}
}

// Similar returns up to limit player-seasons most similar to playerID's
// season line, best first. A non-positive limit selects the configured
// default.
func (s *SimilarityService) Similar(ctx context.Context, playerID, season string, limit int) ([]domain.SimilarityMatch, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if limit <= 0 {
		limit = s.defaultLimit
	}
	limit = min(limit, constants.MaxSimilarLimit)

	cached, key, ok := s.cache.Get(ctx, playerID, season, limit)
	if ok {
		s.logger.Debug().Str("player_id", playerID).Str("season", season).Msg("similarity served from cache")
		return cached, nil
	}

	matches, err := s.compute(ctx, playerID, season, limit)
	if err != nil {
		return nil, err
	}
	s.cache.Put(ctx, key, matches)
	return matches, nil
}

func (s *SimilarityService) compute(ctx context.Context, playerID, season string, limit int) ([]domain.SimilarityMatch, error) {
	var players []domain.Player
	var stats map[string][]domain.SeasonStat

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = s.players.List(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.stats.GetAllByPlayer(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to load similarity corpus")
		return nil, err
	}

	byID := make(map[string]domain.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	if _, ok := byID[playerID]; !ok {
		return nil, fmt.Errorf("player %s: %w", playerID, domain.ErrNotFound)
	}

	var corpus []seasonLine
	target := -1
	for _, p := range players {
		for _, stat := range stats[p.ID] {
			if p.ID == playerID && stat.Season == season {
				target = len(corpus)
			}
			corpus = append(corpus, seasonLine{key: p.SeasonKey(stat.Season), features: featureVector(stat)})
		}
	}
	if target < 0 {
		return nil, fmt.Errorf("season %s of player %s: %w", season, playerID, domain.ErrNotFound)
	}

	matches := rankSimilar(corpus, target, limit)
	s.logger.Debug().
		Str("player_id", playerID).
		Str("season", season).
		Int("corpus", len(corpus)).
		Int("returned", len(matches)).
		Msg("similarity computed")
	return matches, nil
}

type seasonLine struct {
	key      string
	features []float64
}

// featureVector orders a season line as points, rebounds, assists, steals,
// blocks, field goal %, three point % and efficiency rating.
func featureVector(s domain.SeasonStat) []float64 {
	return []float64{
		s.PointsPerGame,
		s.ReboundsPerGame,
		s.AssistsPerGame,
		s.StealsPerGame,
		s.BlocksPerGame,
		s.FieldGoalPct,
		s.ThreePointPct,
		s.EfficiencyRating,
	}
}

// rankSimilar standardises every feature across corpus, scores each line by
// cosine similarity to corpus[target] clamped to [0,1], and returns the best
// limit lines other than the target. Ties keep key order.
func rankSimilar(corpus []seasonLine, target, limit int) []domain.SimilarityMatch {
	scaled := standardize(corpus)

	matches := make([]domain.SimilarityMatch, 0, len(corpus))
	for i, line := range corpus {
		if i == target {
			continue
		}
		score := math.Max(0, math.Min(1, cosine(scaled[target], scaled[i])))
		matches = append(matches, domain.SimilarityMatch{ComparandKey: line.key, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ComparandKey < matches[j].ComparandKey
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// standardize applies a population z-score per feature. A feature with zero
// spread contributes 0 to every line.
func standardize(corpus []seasonLine) [][]float64 {
	if len(corpus) == 0 {
		return nil
	}
	dims := len(corpus[0].features)
	n := float64(len(corpus))

	mean := make([]float64, dims)
	for _, line := range corpus {
		for d, v := range line.features {
			mean[d] += v / n
		}
	}
	std := make([]float64, dims)
	for _, line := range corpus {
		for d, v := range line.features {
			std[d] += (v - mean[d]) * (v - mean[d]) / n
		}
	}
	for d := range std {
		std[d] = math.Sqrt(std[d])
	}

	out := make([][]float64, len(corpus))
	for i, line := range corpus {
		row := make([]float64, dims)
		for d, v := range line.features {
			if std[d] > 0 {
				row[d] = (v - mean[d]) / std[d]
			}
		}
		out[i] = row
	}
	return out
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
