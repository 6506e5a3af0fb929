package db

import (
	"time"
)

type Player struct {
	ID        string
	FirstName string
	LastName  string
	Team      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SeasonStat struct {
	ID                     string
	PlayerID               string
	Season                 string
	GamesPlayed            int64
	GamesStarted           int64
	PointsPerGame          float64
	ReboundsPerGame        float64
	AssistsPerGame         float64
	StealsPerGame          float64
	BlocksPerGame          float64
	FieldGoalPercentage    float64
	ThreePointPercentage   float64
	PlayerEfficiencyRating float64
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
