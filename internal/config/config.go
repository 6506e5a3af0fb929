package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const (
	envPrefix  = "ROSTER_"
	envFileKey = "ROSTER_CONFIG"
)

type Config struct {
	// APIBaseURL is the roster API the gateway talks to.
	APIBaseURL   string `koanf:"api_base_url"`
	ServerPort   string `koanf:"server_port"`
	BackendPort  string `koanf:"backend_port"`
	LogLevel     string `koanf:"log_level"`
	DBPath       string `koanf:"db_path"`
	SimilarLimit int    `koanf:"similar_limit"`

	// RedisAddr enables the redis similarity cache; empty keeps it in memory.
	RedisAddr      string        `koanf:"redis_addr"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
}

func Defaults() *Config {
	return &Config{
		APIBaseURL:   "http://localhost:8000",
		ServerPort:   "8080",
		BackendPort:  "8000",
		LogLevel:     "info",
		DBPath:       "roster.db",
		SimilarLimit: 10,
		CacheTTL:     10 * time.Minute,
	}
}

// Load layers defaults, an optional YAML file named by ROSTER_CONFIG and
// ROSTER_* environment variables, in increasing precedence. A .env file in
// the working directory is loaded into the environment first.
func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	k := koanf.New(".")

	if path := os.Getenv(envFileKey); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: failed to read %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: failed to read environment: %v", ErrLoadConfig, err)
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("api_base_url", cfg.APIBaseURL).
		Str("server_port", cfg.ServerPort).
		Str("backend_port", cfg.BackendPort).
		Str("db_path", cfg.DBPath).
		Str("log_level", cfg.LogLevel).
		Bool("redis", cfg.RedisAddr != "").
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("%w: api_base_url is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api_base_url %q is not an absolute URL", ErrInvalidConfig, c.APIBaseURL)
	}
	if c.ServerPort == "" || c.BackendPort == "" {
		return fmt.Errorf("%w: server_port and backend_port are required", ErrInvalidConfig)
	}
	if c.SimilarLimit <= 0 {
		return fmt.Errorf("%w: similar_limit must be positive", ErrInvalidConfig)
	}
	return nil
}

var Module = fx.Provide(Load)
