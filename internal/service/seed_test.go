package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"roster-tracker/internal/domain"

	. "github.com/smartystreets/goconvey/convey"
)

const season2024 = `[
  {"Player": "A'ja Wilson", "Team": "LVA", "G": 38, "GS": 38, "PTS": 1021, "TRB": 451, "AST": 88, "STL": 68, "BLK": 98, "FG%": 0.518, "3P%": 0.5, "PER": 34.1},
  {"Player": "Dearica Hamby", "Team": "TOT", "G": 40, "GS": 40, "PTS": 680, "TRB": 400, "AST": 120, "STL": 60, "BLK": 20, "FG%": 0.46, "3P%": 0.3, "PER": 19.2},
  {"Player": "Dearica Hamby", "Team": "LAS", "G": 20, "GS": 20, "PTS": 300, "TRB": 190, "AST": 50, "STL": 30, "BLK": 10, "FG%": 0.44, "3P%": 0.28, "PER": 17.0},
  {"Player": "Dearica Hamby", "Team": "CON", "G": 20, "GS": 20, "PTS": 380, "TRB": 210, "AST": 70, "STL": 30, "BLK": 10, "FG%": 0.48, "3P%": 0.32, "PER": 21.0},
  {"Player": "Bench Rookie", "Team": "NYL", "G": 0, "GS": 0, "PTS": 5, "TRB": 2, "AST": 1, "STL": 0, "BLK": 0, "FG%": 0.0, "3P%": 0.0, "PER": 0.0},
  {"Player": "Only Total", "Team": "TOT", "G": 10, "PTS": 50},
  {"Player": "Mononym", "Team": "DAL", "G": 10, "PTS": 50},
  {"Player": "No Team", "G": 10, "PTS": 50}
]`

const season2023 = `[
  {"Player": "A'ja Wilson", "Team": "LVA", "G": 40, "GS": 40, "PTS": 900, "TRB": 380, "AST": 64, "STL": 56, "BLK": 88, "FG%": 0.557, "3P%": 0.313, "PER": 31.0}
]`

func writeSeasonFile(t *testing.T, dir, name, body string) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func byName(players []domain.Player) map[string]domain.Player {
	out := make(map[string]domain.Player, len(players))
	for _, p := range players {
		out[p.FirstName+" "+p.LastName] = p
	}
	return out
}

func TestSeasonLines(t *testing.T) {
	Convey("Given rows with a multi-team total", t, func() {
		rows := []SeasonRow{
			{Player: "Dearica Hamby", Team: "TOT", Games: 40, Points: 680},
			{Player: "Dearica Hamby", Team: "LAS", Games: 20, Points: 300},
			{Player: "Dearica Hamby", Team: "CON", Games: 20, Points: 380},
			{Player: "Only Total", Team: "TOT", Games: 10},
		}

		lines, skipped := seasonLines(rows)

		Convey("The total row is kept under the first real team", func() {
			So(lines, ShouldHaveLength, 1)
			So(lines[0].team, ShouldEqual, "LAS")
			So(lines[0].row.Points, ShouldEqual, 680)
			So(skipped, ShouldEqual, 1)
		})
	})

	Convey("Per-game figures are rounded to one decimal and zero games count as one", t, func() {
		stat := perGame(SeasonRow{Games: 38, Points: 1021, Rebounds: 451, Assists: 88})
		So(stat.PointsPerGame, ShouldAlmostEqual, 26.9, 1e-9)
		So(stat.ReboundsPerGame, ShouldAlmostEqual, 11.9, 1e-9)
		So(stat.AssistsPerGame, ShouldAlmostEqual, 2.3, 1e-9)
		So(stat.GamesPlayed, ShouldEqual, 38)

		rookie := perGame(SeasonRow{Games: 0, Points: 5})
		So(rookie.PointsPerGame, ShouldEqual, 5)
		So(rookie.GamesPlayed, ShouldEqual, 0)
	})

	Convey("The season comes from the file name", t, func() {
		season, err := SeasonFromFileName("data/wnba_combined_2024.json")
		So(err, ShouldBeNil)
		So(season, ShouldEqual, "2024")

		_, err = SeasonFromFileName("data/players.json")
		So(errors.Is(err, domain.ErrValidation), ShouldBeTrue)
	})
}

func TestSeeder(t *testing.T) {
	Convey("Given a roster with a hand-entered player", t, func() {
		svc := newServices(t)
		ctx := context.Background()
		dir := t.TempDir()

		_, err := svc.players.Create(ctx, domain.PlayerFields{FirstName: "Old", LastName: "Entry", Team: "SEA"})
		So(err, ShouldBeNil)

		Convey("When two season files are seeded", func() {
			result, err := svc.seeder.SeedFiles(ctx,
				writeSeasonFile(t, dir, "wnba_combined_2024.json", season2024),
				writeSeasonFile(t, dir, "wnba_combined_2023.json", season2023),
			)
			So(err, ShouldBeNil)

			Convey("Then the roster is replaced by the seeded players", func() {
				So(result, ShouldResemble, SeedResult{Players: 3, Stats: 4, Skipped: 3})

				players, err := svc.players.List(ctx)
				So(err, ShouldBeNil)
				So(players, ShouldHaveLength, 3)
				So(players[0].FirstName, ShouldEqual, "A'ja")

				named := byName(players)
				So(named, ShouldNotContainKey, "Old Entry")

				wilson := named["A'ja Wilson"]
				So(wilson.Team, ShouldEqual, "LVA")
				So(wilson.Stats, ShouldHaveLength, 2)

				hamby := named["Dearica Hamby"]
				So(hamby.Team, ShouldEqual, "LAS")
				So(hamby.Stats, ShouldHaveLength, 1)
				So(hamby.Stats[0].Season, ShouldEqual, "2024")
				So(hamby.Stats[0].GamesPlayed, ShouldEqual, 40)
				So(hamby.Stats[0].PointsPerGame, ShouldAlmostEqual, 17.0, 1e-9)
				So(hamby.Stats[0].ReboundsPerGame, ShouldAlmostEqual, 10.0, 1e-9)

				rookie := named["Bench Rookie"]
				So(rookie.Stats[0].PointsPerGame, ShouldAlmostEqual, 5.0, 1e-9)
			})

			Convey("Then similar players can be ranked from the seeded seasons", func() {
				players, err := svc.players.List(ctx)
				So(err, ShouldBeNil)
				wilson := byName(players)["A'ja Wilson"]

				matches, err := svc.similarity.Similar(ctx, wilson.ID, "2024", 0)
				So(err, ShouldBeNil)
				So(matches, ShouldNotBeEmpty)
				for _, m := range matches {
					So(m.ComparandKey, ShouldNotEqual, "A'ja Wilson (2024)")
				}
			})
		})

		Convey("When a season file cannot be parsed", func() {
			_, err := svc.seeder.SeedFiles(ctx, writeSeasonFile(t, dir, "wnba_combined_2022.json", `{"Player":`))

			Convey("Then the roster is left unchanged", func() {
				So(errors.Is(err, domain.ErrDecode), ShouldBeTrue)
				players, err := svc.players.List(ctx)
				So(err, ShouldBeNil)
				So(players, ShouldHaveLength, 1)
				So(players[0].LastName, ShouldEqual, "Entry")
			})
		})
	})
}
