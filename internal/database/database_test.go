package database

import (
	"io"
	"path/filepath"
	"testing"

	"roster-tracker/internal/config"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given a fresh database file", t, func() {
		cfg := config.Defaults()
		cfg.DBPath = filepath.Join(t.TempDir(), "roster.db")

		db, err := New(cfg, zerolog.New(io.Discard))
		So(err, ShouldBeNil)
		defer db.Close()

		Convey("Then both tables exist", func() {
			for _, table := range []string{"players", "season_stats"} {
				var name string
				err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
				So(err, ShouldBeNil)
				So(name, ShouldEqual, table)
			}
		})

		Convey("Then foreign keys are enforced", func() {
			var on int
			So(db.QueryRow("PRAGMA foreign_keys").Scan(&on), ShouldBeNil)
			So(on, ShouldEqual, 1)
		})

		Convey("Then the schema is at the latest migration", func() {
			version, err := SchemaVersion(db)
			So(err, ShouldBeNil)
			So(version, ShouldEqual, 2)
		})

		Convey("Opening it again is a no-op migration", func() {
			again, err := New(cfg, zerolog.New(io.Discard))
			So(err, ShouldBeNil)
			defer again.Close()

			version, err := SchemaVersion(again)
			So(err, ShouldBeNil)
			So(version, ShouldEqual, 2)
		})
	})
}
