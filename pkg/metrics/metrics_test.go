package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func value(m prometheus.Metric) float64 {
	var pb dto.Metric
	if err := m.Write(&pb); err != nil {
		return -1
	}
	switch {
	case pb.Counter != nil:
		return pb.Counter.GetValue()
	case pb.Gauge != nil:
		return pb.Gauge.GetValue()
	}
	return -1
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("wizard"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then every collector is registered", func() {
				So(manager, ShouldNotBeNil)
				manager.sessionsStarted.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				So(value(manager.sessionsStarted), ShouldEqual, 1)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Session metrics move", func() {
			before := value(globalManager.sessionsStarted)
			RecordSessionStarted()
			So(value(globalManager.sessionsStarted), ShouldEqual, before+1)

			UpdateSessionsActive(7)
			So(value(globalManager.sessionsActive), ShouldEqual, 7)

			expired := value(globalManager.sessionsExpired)
			RecordSessionsExpired(0)
			RecordSessionsExpired(3)
			So(value(globalManager.sessionsExpired), ShouldEqual, expired+3)
		})

		Convey("Step metrics are labelled by step", func() {
			before := value(globalManager.stepAdvances.WithLabelValues("2"))
			RecordStepAdvance(2)
			So(value(globalManager.stepAdvances.WithLabelValues("2")), ShouldEqual, before+1)

			fails := value(globalManager.validationFailures.WithLabelValues("5"))
			RecordValidationFailure(5)
			So(value(globalManager.validationFailures.WithLabelValues("5")), ShouldEqual, fails+1)

			So(func() { RecordStepRetreat() }, ShouldNotPanic)
		})

		Convey("Submissions accept only known outcomes", func() {
			before := value(globalManager.submissions.WithLabelValues(OutcomeSuccess))
			So(RecordSubmission(OutcomeSuccess, 42), ShouldBeNil)
			So(value(globalManager.submissions.WithLabelValues(OutcomeSuccess)), ShouldEqual, before+1)

			err := RecordSubmission("exploded", 1)
			So(errors.Is(err, ErrUnknownOutcome), ShouldBeTrue)
		})

		Convey("Cache, HTTP and system metrics do not panic", func() {
			So(func() {
				RecordCacheHit()
				RecordCacheMiss()
				RecordCacheError()
				RecordHTTPRequest("/sessions", "POST", "201")
				RecordHTTPRequestDuration("/sessions", "POST", "201", 3.5)
				UpdateSystemStats()
			}, ShouldNotPanic)
			So(value(globalManager.systemGoroutineCount), ShouldBeGreaterThan, 0)
		})

		Convey("The exported registry is the one collectors live on", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given a reconfigured global manager", t, func() {
		Configure(WithNamespace("cardtest"), WithConstLabels(map[string]string{"region": "eu"}))
		defer Configure()

		Convey("Recorded metrics carry the namespace and labels", func() {
			RecordSessionStarted()
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			var found *dto.MetricFamily
			for _, f := range families {
				if f.GetName() == "cardtest_wizard_sessions_started_total" {
					found = f
				}
			}
			So(found, ShouldNotBeNil)
			So(found.GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 1)
			labels := found.GetMetric()[0].GetLabel()
			So(labels, ShouldHaveLength, 1)
			So(labels[0].GetName(), ShouldEqual, "region")
			So(labels[0].GetValue(), ShouldEqual, "eu")
		})
	})
}
