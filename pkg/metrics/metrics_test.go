package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording analysis metrics", func() {
			Convey("Then it should record analyzed targets", func() {
				So(func() {
					RecordTargetAnalyzed()
					RecordTargetAnalyzed()
				}, ShouldNotPanic)
			})

			Convey("And it should record recorded targets with their shots", func() {
				So(func() {
					RecordTargetRecorded(5)
					RecordTargetRecorded(10)
				}, ShouldNotPanic)
			})

			Convey("And it should record suppressed analyses", func() {
				So(func() {
					RecordAnalysisSuppressed()
					RecordAnalysisSuppressed()
				}, ShouldNotPanic)
			})

			Convey("And it should record flagged outliers", func() {
				So(func() {
					RecordOutliersFlagged(3)
					RecordOutliersFlagged(0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording history metrics", func() {
			Convey("Then it should update the history size", func() {
				So(func() {
					UpdateHistorySize(10)
					UpdateHistorySize(0)
				}, ShouldNotPanic)
			})

			Convey("And it should record aggregation latency", func() {
				So(func() {
					RecordAggregationLatency(1.0)
					RecordAggregationLatency(25.0)
				}, ShouldNotPanic)
			})

			Convey("And it should record generated insights", func() {
				So(func() {
					RecordInsightsGenerated()
					RecordInsightsGenerated()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record HTTP requests", func() {
				So(func() {
					RecordHTTPRequest("/targets", "POST", "201")
					RecordHTTPRequest("/insights", "GET", "200")
				}, ShouldNotPanic)
			})

			Convey("And it should record HTTP request duration", func() {
				So(func() {
					RecordHTTPRequestDuration("/targets", "POST", "201", 5.0)
					RecordHTTPRequestDuration("/insights", "GET", "200", 12.0)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			for i := 0; i < 10; i++ {
				go func() {
					for j := 0; j < 100; j++ {
						RecordTargetAnalyzed()
						UpdateHistorySize(j)
						RecordAggregationLatency(float64(j))
						RecordHTTPRequest("/targets", "GET", "200")
					}
					done <- true
				}()
			}

			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(true, ShouldBeTrue) // If we get here, no panics occurred
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the global registry", t, func() {
		Convey("When gathering after recording", func() {
			RecordTargetAnalyzed()
			families, err := GetRegistry().Gather()

			Convey("Then the analysis metrics are exported", func() {
				So(err, ShouldBeNil)
				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["shotgroup_analysis_targets_analyzed_total"], ShouldBeTrue)
				So(names["shotgroup_history_patterns"], ShouldBeTrue)
			})
		})
	})
}
