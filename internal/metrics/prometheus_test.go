package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(reg), WithNamespace("test"))

		Convey("When fetch lifecycle events are recorded", func() {
			m.RecordFetchStarted("primary")
			m.RecordFetchStarted("primary")
			m.RecordFetchApplied("primary", "ready", 0.01)
			m.RecordFetchDiscarded("primary")

			Convey("Then the counters reflect them per resource", func() {
				So(testutil.ToFloat64(m.fetchesStarted.WithLabelValues("primary")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.fetchesApplied.WithLabelValues("primary", "ready")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.fetchesDiscarded.WithLabelValues("primary")), ShouldEqual, 1)
			})
		})

		Convey("When writes and cache lookups are recorded", func() {
			m.RecordWrite("create", "ok")
			m.RecordCacheLookup(true)
			m.RecordCacheLookup(false)
			m.RecordCacheLookup(false)

			Convey("Then they are counted by label", func() {
				So(testutil.ToFloat64(m.writes.WithLabelValues("create", "ok")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")), ShouldEqual, 2)
			})
		})
	})

	Convey("Given the global manager", t, func() {
		Convey("Then it is registered on the served registry", func() {
			RecordHTTPRequest("/api/view", "GET", "200", 0.002)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
