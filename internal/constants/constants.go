package constants

import "time"

const (
	SimilarCacheTTL = 10 * time.Minute
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	WriteTimeout       = 15 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
	SeedTimeout     = 2 * time.Minute
)

const (
	SimilarLimit    = 10
	MaxSimilarLimit = 50
)

const (
	WSWriteTimeout = 5 * time.Second
	WSPingInterval = 30 * time.Second
	WSSendBuffer   = 16
)
