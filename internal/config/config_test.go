package config_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"roster-tracker/internal/config"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"ROSTER_CONFIG",
	"ROSTER_API_BASE_URL",
	"ROSTER_SERVER_PORT",
	"ROSTER_SIMILAR_LIMIT",
	"ROSTER_CACHE_TTL",
	"ROSTER_ALLOWED_ORIGINS",
}

func clearConfigEnv() {
	for _, key := range configEnvVars {
		_ = os.Unsetenv(key)
	}
}

func TestLoad(t *testing.T) {
	log := zerolog.New(io.Discard)

	Convey("Given a config loader", t, func() {
		clearConfigEnv()
		defer clearConfigEnv()

		Convey("When only defaults apply", func() {
			cfg, err := config.Load(log)

			Convey("Then the defaults are returned", func() {
				So(err, ShouldBeNil)
				So(cfg.APIBaseURL, ShouldEqual, "http://localhost:8000")
				So(cfg.ServerPort, ShouldEqual, "8080")
				So(cfg.SimilarLimit, ShouldEqual, 10)
				So(cfg.CacheTTL, ShouldEqual, 10*time.Minute)
				So(cfg.AllowedOrigins, ShouldResemble, []string{"http://localhost:3000"})
			})
		})

		Convey("When environment variables are set", func() {
			_ = os.Setenv("ROSTER_API_BASE_URL", "http://roster.internal:9000")
			_ = os.Setenv("ROSTER_SIMILAR_LIMIT", "5")
			_ = os.Setenv("ROSTER_CACHE_TTL", "90s")
			_ = os.Setenv("ROSTER_ALLOWED_ORIGINS", "http://a.test,http://b.test")

			cfg, err := config.Load(log)

			Convey("Then they override the defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.APIBaseURL, ShouldEqual, "http://roster.internal:9000")
				So(cfg.SimilarLimit, ShouldEqual, 5)
				So(cfg.CacheTTL, ShouldEqual, 90*time.Second)
				So(cfg.AllowedOrigins, ShouldResemble, []string{"http://a.test", "http://b.test"})
			})
		})

		Convey("When a YAML file and the environment both set a key", func() {
			path := filepath.Join(t.TempDir(), "roster.yaml")
			So(os.WriteFile(path, []byte("server_port: \"9090\"\nsimilar_limit: 3\n"), 0o600), ShouldBeNil)
			_ = os.Setenv("ROSTER_CONFIG", path)
			_ = os.Setenv("ROSTER_SIMILAR_LIMIT", "7")

			cfg, err := config.Load(log)

			Convey("Then the file applies and the environment wins", func() {
				So(err, ShouldBeNil)
				So(cfg.ServerPort, ShouldEqual, "9090")
				So(cfg.SimilarLimit, ShouldEqual, 7)
			})
		})

		Convey("When the config file does not exist", func() {
			_ = os.Setenv("ROSTER_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load(log)

			Convey("Then a load error is returned", func() {
				So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
			})
		})

		Convey("When the API base URL is not absolute", func() {
			_ = os.Setenv("ROSTER_API_BASE_URL", "roster")

			_, err := config.Load(log)

			Convey("Then validation fails", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}
