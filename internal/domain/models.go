package domain

import (
	"fmt"
	"strings"
	"time"
)

type Player struct {
	ID        string       `json:"id,omitempty"` // empty for a draft that was never created
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Team      string       `json:"team"`
	Stats     []SeasonStat `json:"stats"`
	CreatedAt time.Time    `json:"created_at,omitzero"`
	UpdatedAt time.Time    `json:"updated_at,omitzero"`
}

func (p Player) FullName() string {
	return p.FirstName + " " + p.LastName
}

// SeasonKey is the comparand key used by the similarity ranking, e.g. "Caitlin Clark (2024)".
func (p Player) SeasonKey(season string) string {
	return fmt.Sprintf("%s (%s)", p.FullName(), season)
}

// SeasonStat carries no ordering guarantee; sort explicitly when "most recent" matters.
type SeasonStat struct {
	ID               string  `json:"id,omitempty"`
	PlayerID         string  `json:"player_id,omitempty"`
	Season           string  `json:"season"` // e.g. "2024"
	GamesPlayed      int     `json:"games_played"`
	GamesStarted     int     `json:"games_started"`
	PointsPerGame    float64 `json:"points_per_game"`
	ReboundsPerGame  float64 `json:"rebounds_per_game"`
	AssistsPerGame   float64 `json:"assists_per_game"`
	StealsPerGame    float64 `json:"steals_per_game"`
	BlocksPerGame    float64 `json:"blocks_per_game"`
	FieldGoalPct     float64 `json:"field_goal_percentage"`
	ThreePointPct    float64 `json:"three_point_percentage"`
	EfficiencyRating float64 `json:"player_efficiency_rating"`
}

type SimilarityMatch struct {
	ComparandKey string  `json:"player_season_id"` // player+season composite
	Score        float64 `json:"similarity_score"` // [0,1]
}

// PlayerFields is the payload of create and update writes.
type PlayerFields struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Team      string `json:"team"`
}

// Normalized returns the fields trimmed of surrounding whitespace.
func (f PlayerFields) Normalized() PlayerFields {
	return PlayerFields{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Team:      strings.TrimSpace(f.Team),
	}
}

// Validate reports ErrValidation naming every field that is blank after trimming.
func (f PlayerFields) Validate() error {
	f = f.Normalized()
	var missing []string
	if f.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if f.LastName == "" {
		missing = append(missing, "last_name")
	}
	if f.Team == "" {
		missing = append(missing, "team")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// SimilarKey addresses the secondary lookup: a player and one of their seasons.
type SimilarKey struct {
	PlayerID string `json:"player_id"`
	Season   string `json:"season"`
}
