package repository

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"roster-tracker/internal/config"
	"roster-tracker/internal/database"
	"roster-tracker/internal/db"
	"roster-tracker/internal/domain"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

func openTestDB(t *testing.T) *sql.DB {
	cfg := config.Defaults()
	cfg.DBPath = filepath.Join(t.TempDir(), "roster.db")
	sqlDB, err := database.New(cfg, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestRepositories(t *testing.T) {
	Convey("Given empty player and stats repositories", t, func() {
		sqlDB := openTestDB(t)
		queries := db.New(sqlDB)
		players := NewPlayerRepository(sqlDB, queries, zerolog.New(io.Discard))
		stats := NewStatsRepository(sqlDB, queries, zerolog.New(io.Discard))
		ctx := context.Background()

		Convey("A created player gets an opaque id and can be read back", func() {
			p, err := players.Create(ctx, domain.PlayerFields{FirstName: "LeBron", LastName: "James", Team: "LAL"})
			So(err, ShouldBeNil)
			So(p.ID, ShouldHaveLength, 21)

			got, err := players.Get(ctx, p.ID)
			So(err, ShouldBeNil)
			So(got.FullName(), ShouldEqual, "LeBron James")
			So(got.CreatedAt.IsZero(), ShouldBeFalse)

			Convey("And updated", func() {
				updated, err := players.Update(ctx, p.ID, domain.PlayerFields{FirstName: "LeBron", LastName: "James", Team: "MIA"})
				So(err, ShouldBeNil)
				So(updated.Team, ShouldEqual, "MIA")
			})

			Convey("And deleted together with its stats", func() {
				_, err := stats.Upsert(ctx, domain.SeasonStat{PlayerID: p.ID, Season: "2024", PointsPerGame: 25.7})
				So(err, ShouldBeNil)

				So(players.Delete(ctx, p.ID), ShouldBeNil)
				_, err = players.Get(ctx, p.ID)
				So(errors.Is(err, domain.ErrNotFound), ShouldBeTrue)

				left, err := stats.GetByPlayer(ctx, p.ID)
				So(err, ShouldBeNil)
				So(left, ShouldBeEmpty)
			})
		})

		Convey("Players are listed in creation order", func() {
			for _, name := range []string{"A", "B", "C"} {
				_, err := players.Create(ctx, domain.PlayerFields{FirstName: name, LastName: "X", Team: "T"})
				So(err, ShouldBeNil)
			}
			list, err := players.List(ctx)
			So(err, ShouldBeNil)
			So(list, ShouldHaveLength, 3)
			So(list[0].FirstName, ShouldEqual, "A")
			So(list[2].FirstName, ShouldEqual, "C")
		})

		Convey("Missing players are reported as not found", func() {
			_, err := players.Get(ctx, "nope")
			So(errors.Is(err, domain.ErrNotFound), ShouldBeTrue)
			_, err = players.Update(ctx, "nope", domain.PlayerFields{FirstName: "A", LastName: "B", Team: "C"})
			So(errors.Is(err, domain.ErrNotFound), ShouldBeTrue)
			So(errors.Is(players.Delete(ctx, "nope"), domain.ErrNotFound), ShouldBeTrue)
		})

		Convey("Season stats upsert by player and season", func() {
			p, err := players.Create(ctx, domain.PlayerFields{FirstName: "Kevin", LastName: "Durant", Team: "PHX"})
			So(err, ShouldBeNil)

			first, err := stats.Upsert(ctx, domain.SeasonStat{PlayerID: p.ID, Season: "2024", PointsPerGame: 27.1})
			So(err, ShouldBeNil)
			second, err := stats.Upsert(ctx, domain.SeasonStat{PlayerID: p.ID, Season: "2024", PointsPerGame: 28.0})
			So(err, ShouldBeNil)
			So(second.ID, ShouldEqual, first.ID)
			So(second.PointsPerGame, ShouldEqual, 28.0)

			So(stats.UpsertBatch(ctx, []domain.SeasonStat{
				{PlayerID: p.ID, Season: "2022", PointsPerGame: 29.7},
				{PlayerID: p.ID, Season: "2023", PointsPerGame: 29.1},
			}), ShouldBeNil)

			byPlayer, err := stats.GetByPlayer(ctx, p.ID)
			So(err, ShouldBeNil)
			So(byPlayer, ShouldHaveLength, 3)
			So(byPlayer[0].Season, ShouldEqual, "2022")

			one, err := stats.Get(ctx, p.ID, "2023")
			So(err, ShouldBeNil)
			So(one.PointsPerGame, ShouldEqual, 29.1)

			all, err := stats.GetAllByPlayer(ctx)
			So(err, ShouldBeNil)
			So(all[p.ID], ShouldHaveLength, 3)

			_, err = stats.Get(ctx, p.ID, "1999")
			So(errors.Is(err, domain.ErrNotFound), ShouldBeTrue)
		})

		Convey("Stats for an unknown player are rejected", func() {
			_, err := stats.Upsert(ctx, domain.SeasonStat{PlayerID: "ghost", Season: "2024"})
			So(err, ShouldNotBeNil)
		})
	})
}
