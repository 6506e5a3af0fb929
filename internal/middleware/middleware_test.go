package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

type observation struct {
	route, method, status string
}

type fakeRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (f *fakeRecorder) RecordHTTPRequest(route, method, statusCode string, _ float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = append(f.obs, observation{route, method, statusCode})
}

func TestMiddleware(t *testing.T) {
	Convey("Given a router with request id and metrics middleware", t, func() {
		recorder := &fakeRecorder{}
		var seenID string

		r := chi.NewRouter()
		r.Use(RequestID(zerolog.New(io.Discard)))
		r.Use(Metrics(recorder))
		r.Get("/api/players/{id}", func(w http.ResponseWriter, r *http.Request) {
			seenID = GetRequestID(r.Context())
			w.WriteHeader(http.StatusTeapot)
		})

		Convey("A request without an id gets a generated one", func() {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/players/42", nil))

			So(rec.Code, ShouldEqual, http.StatusTeapot)
			So(seenID, ShouldNotBeEmpty)
			So(rec.Header().Get("X-Request-ID"), ShouldEqual, seenID)
		})

		Convey("A caller supplied id is kept", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/players/42", nil)
			req.Header.Set("X-Request-ID", "abc-123")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			So(seenID, ShouldEqual, "abc-123")
			So(rec.Header().Get("X-Request-ID"), ShouldEqual, "abc-123")
		})

		Convey("Metrics use the route pattern, not the path", func() {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/players/42", nil))
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

			So(recorder.obs, ShouldHaveLength, 2)
			So(recorder.obs[0], ShouldResemble, observation{"/api/players/{id}", http.MethodGet, "418"})
			So(recorder.obs[1].status, ShouldEqual, "404")
		})
	})

	Convey("GetRequestID on a bare context is empty", t, func() {
		So(GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()), ShouldBeEmpty)
	})
}
