package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"roster-tracker/internal/config"
	"roster-tracker/internal/domain"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  http.HandlerFunc
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.EscapedPath(), Body: string(body)})
	handler := f.handler
	f.mu.Unlock()
	handler(w, r)
}

func (f *fakeAPI) set(h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
}

func (f *fakeAPI) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestRosterClient(t *testing.T) {
	Convey("Given a client pointed at a fake roster API", t, func() {
		fake := &fakeAPI{handler: respond(http.StatusOK, "[]")}
		srv := httptest.NewServer(fake)
		defer srv.Close()

		cfg := config.Defaults()
		cfg.APIBaseURL = srv.URL + "/"
		client := NewRosterClient(cfg, zerolog.New(io.Discard))
		ctx := context.Background()

		Convey("Listing accepts numeric and string ids", func() {
			fake.set(respond(http.StatusOK, `[
				{"id": 1, "first_name": "LeBron", "last_name": "James", "team": "LAL",
				 "stats": [{"id": 7, "season": "2024", "points_per_game": 25.7}]},
				{"id": "abc", "first_name": "Kevin", "last_name": "Durant", "team": "PHX"}
			]`))

			players, err := client.ListPlayers(ctx)
			So(err, ShouldBeNil)
			So(players, ShouldHaveLength, 2)
			So(players[0].ID, ShouldEqual, "1")
			So(players[0].Stats, ShouldHaveLength, 1)
			So(players[0].Stats[0].ID, ShouldEqual, "7")
			So(players[0].Stats[0].PlayerID, ShouldEqual, "1")
			So(players[0].Stats[0].PointsPerGame, ShouldEqual, 25.7)
			So(players[1].ID, ShouldEqual, "abc")
			So(players[1].Stats, ShouldNotBeNil)
			So(players[1].Stats, ShouldBeEmpty)
			So(fake.last().Path, ShouldEqual, "/api/players")
		})

		Convey("A missing player maps to ErrNotFound", func() {
			fake.set(respond(http.StatusNotFound, `{"detail": "Player not found"}`))

			_, err := client.GetPlayer(ctx, "999")
			So(errors.Is(err, domain.ErrNotFound), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Player not found")
			So(fake.last().Path, ShouldEqual, "/api/players/999")
		})

		Convey("Similar players are requested per season", func() {
			fake.set(respond(http.StatusOK, `[{"player_season_id": "Kevin Durant (2024)", "similarity_score": 0.93}]`))

			matches, err := client.GetSimilar(ctx, "1", "2024")
			So(err, ShouldBeNil)
			So(matches, ShouldResemble, []domain.SimilarityMatch{{ComparandKey: "Kevin Durant (2024)", Score: 0.93}})
			So(fake.last().Path, ShouldEqual, "/api/players/1/seasons/2024/similar")
		})

		Convey("A null similar list becomes empty", func() {
			fake.set(respond(http.StatusOK, `null`))

			matches, err := client.GetSimilar(ctx, "1", "2024")
			So(err, ShouldBeNil)
			So(matches, ShouldNotBeNil)
			So(matches, ShouldBeEmpty)
		})

		Convey("Create posts the fields as JSON", func() {
			fake.set(respond(http.StatusCreated, `{"id": 101, "first_name": "Stephen", "last_name": "Curry", "team": "GSW"}`))

			p, err := client.CreatePlayer(ctx, domain.PlayerFields{FirstName: "Stephen", LastName: "Curry", Team: "GSW"})
			So(err, ShouldBeNil)
			So(p.ID, ShouldEqual, "101")

			req := fake.last()
			So(req.Method, ShouldEqual, http.MethodPost)
			var sent domain.PlayerFields
			So(json.Unmarshal([]byte(req.Body), &sent), ShouldBeNil)
			So(sent.Team, ShouldEqual, "GSW")
		})

		Convey("Validation failures map to ErrValidation", func() {
			fake.set(respond(http.StatusUnprocessableEntity, `{"detail": [{"msg": "team is required"}]}`))

			_, err := client.UpdatePlayer(ctx, "1", domain.PlayerFields{FirstName: "A", LastName: "B"})
			So(errors.Is(err, domain.ErrValidation), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "team is required")
			So(fake.last().Method, ShouldEqual, http.MethodPut)
		})

		Convey("Delete accepts an empty response", func() {
			fake.set(respond(http.StatusNoContent, ""))

			So(client.DeletePlayer(ctx, "1"), ShouldBeNil)
			So(fake.last().Method, ShouldEqual, http.MethodDelete)
		})

		Convey("Server errors map to ErrNetwork", func() {
			fake.set(respond(http.StatusInternalServerError, `oops`))

			_, err := client.ListPlayers(ctx)
			So(errors.Is(err, domain.ErrNetwork), ShouldBeTrue)
		})

		Convey("Malformed bodies map to ErrDecode", func() {
			fake.set(respond(http.StatusOK, `{"id": true`))

			_, err := client.GetPlayer(ctx, "1")
			So(errors.Is(err, domain.ErrDecode), ShouldBeTrue)
		})

		Convey("A cancelled context fails without a request", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := client.ListPlayers(cctx)
			So(errors.Is(err, domain.ErrNetwork), ShouldBeTrue)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("A slow server hits the context deadline", func() {
			fake.set(func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(300 * time.Millisecond)
				w.WriteHeader(http.StatusOK)
			})
			dctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
			defer cancel()

			_, err := client.ListPlayers(dctx)
			So(errors.Is(err, domain.ErrNetwork), ShouldBeTrue)
		})
	})

	Convey("An unreachable API is a network error", t, func() {
		cfg := config.Defaults()
		cfg.APIBaseURL = "http://127.0.0.1:1"
		client := NewRosterClient(cfg, zerolog.New(io.Discard))

		_, err := client.ListPlayers(context.Background())
		So(errors.Is(err, domain.ErrNetwork), ShouldBeTrue)
	})
}
