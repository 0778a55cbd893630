package aggregate_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/mjelle/shotgroup/internal/domain/aggregate"
	"github.com/mjelle/shotgroup/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

// pattern builds a stored pattern n minutes after the base time.
func pattern(base time.Time, minutes int, radius float64, shots, outliers int) model.StoredTargetPattern {
	return model.StoredTargetPattern{
		ID:           fmt.Sprintf("pattern-%d", minutes),
		Timestamp:    base.Add(time.Duration(minutes) * time.Minute),
		Session:      model.SessionCasual,
		GroupRadius:  radius,
		ShotCount:    shots,
		OutlierCount: outliers,
	}
}

func TestAggregateEmpty(t *testing.T) {
	Convey("Given an empty pattern list", t, func() {
		agg := aggregate.New()

		Convey("When aggregated", func() {
			m := agg.Aggregate(nil)

			Convey("Then the result is suppressed, not a real zero group", func() {
				So(m.Suppressed(), ShouldBeTrue)
				So(m.SuppressionReason, ShouldEqual, aggregate.SuppressionNoData)
				So(m.SessionCount, ShouldEqual, 0)
				So(m.TotalShots, ShouldEqual, 0)
				So(m.AverageGroupRadius, ShouldEqual, 0)
				So(m.Trend, ShouldEqual, aggregate.TrendStable)
			})
		})
	})
}

func TestAggregateWeighting(t *testing.T) {
	Convey("Given a 3-shot tight target and a 30-shot wide target", t, func() {
		agg := aggregate.New()
		base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		patterns := []model.StoredTargetPattern{
			pattern(base, 0, 0.1, 3, 0),
			pattern(base, 10, 0.5, 30, 3),
		}

		Convey("When aggregated", func() {
			m := agg.Aggregate(patterns)

			Convey("Then the radius average weights each pattern equally", func() {
				So(m.AverageGroupRadius, ShouldAlmostEqual, 0.3, tolerance)
			})

			Convey("And the outlier rate is shot-weighted", func() {
				So(m.OutlierRate, ShouldAlmostEqual, 3.0/33.0, tolerance)
				So(m.TotalShots, ShouldEqual, 33)
				So(m.SessionCount, ShouldEqual, 2)
			})
		})
	})
}

func TestAggregateMPI(t *testing.T) {
	Convey("Given two targets with opposite bias", t, func() {
		agg := aggregate.New()
		base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		left := pattern(base, 0, 0.1, 5, 0)
		left.MPI = model.NormalizedShot{U: -0.4, V: 0.1}
		right := pattern(base, 5, 0.1, 20, 0)
		right.MPI = model.NormalizedShot{U: 0.2, V: 0.3}

		Convey("When aggregated", func() {
			m := agg.Aggregate([]model.StoredTargetPattern{left, right})

			Convey("Then the average MPI weights each pattern equally", func() {
				So(m.AverageMPI.U, ShouldAlmostEqual, -0.1, tolerance)
				So(m.AverageMPI.V, ShouldAlmostEqual, 0.2, tolerance)
			})
		})
	})
}

func TestRadiusTrendSeries(t *testing.T) {
	Convey("Given patterns appended most-recent-first", t, func() {
		agg := aggregate.New()
		base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		patterns := []model.StoredTargetPattern{
			pattern(base, 30, 0.3, 5, 0),
			pattern(base, 20, 0.2, 5, 0),
			pattern(base, 10, 0.1, 5, 0),
		}

		Convey("When aggregated", func() {
			m := agg.Aggregate(patterns)

			Convey("Then the trend series is sorted ascending by time", func() {
				So(m.RadiusTrend, ShouldHaveLength, 3)
				So(m.RadiusTrend[0].GroupRadius, ShouldAlmostEqual, 0.1, tolerance)
				So(m.RadiusTrend[2].GroupRadius, ShouldAlmostEqual, 0.3, tolerance)
				So(m.RadiusTrend[0].Timestamp.Before(m.RadiusTrend[1].Timestamp), ShouldBeTrue)
			})
		})
	})
}

func TestTrendClassification(t *testing.T) {
	Convey("Given an aggregator with default trend rules", t, func() {
		agg := aggregate.New()
		base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

		build := func(radii ...float64) []model.StoredTargetPattern {
			out := make([]model.StoredTargetPattern, len(radii))
			for i, r := range radii {
				out[i] = pattern(base, i*10, r, 5, 0)
			}
			return out
		}

		Convey("When the second half tightens past the threshold", func() {
			m := agg.Aggregate(build(0.30, 0.28, 0.27, 0.15, 0.14, 0.13))

			Convey("Then the trend is improving", func() {
				So(m.Trend, ShouldEqual, aggregate.TrendImproving)
			})
		})

		Convey("When the second half widens past the threshold", func() {
			m := agg.Aggregate(build(0.13, 0.14, 0.15, 0.27, 0.28, 0.30))

			Convey("Then the trend is worsening", func() {
				So(m.Trend, ShouldEqual, aggregate.TrendWorsening)
			})
		})

		Convey("When the halves stay within the threshold", func() {
			m := agg.Aggregate(build(0.20, 0.21, 0.19, 0.20, 0.21, 0.20))

			Convey("Then the trend is stable", func() {
				So(m.Trend, ShouldEqual, aggregate.TrendStable)
			})
		})

		Convey("When fewer than four points exist", func() {
			m := agg.Aggregate(build(0.5, 0.1, 0.1))

			Convey("Then no trend is claimed", func() {
				So(m.Trend, ShouldEqual, aggregate.TrendStable)
			})
		})
	})

	Convey("Given a stricter minimum point count", t, func() {
		agg := aggregate.New(aggregate.WithTrendMinPoints(8))
		base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		patterns := []model.StoredTargetPattern{
			pattern(base, 0, 0.4, 5, 0),
			pattern(base, 10, 0.4, 5, 0),
			pattern(base, 20, 0.1, 5, 0),
			pattern(base, 30, 0.1, 5, 0),
		}

		Convey("When aggregated below the minimum", func() {
			m := agg.Aggregate(patterns)

			Convey("Then the trend defaults to stable", func() {
				So(m.Trend, ShouldEqual, aggregate.TrendStable)
			})
		})
	})
}
