// Package aggregate pools multiple stored targets into combined metrics and
// a time-ordered trend series.
package aggregate

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/mjelle/shotgroup/internal/domain/model"
)

// Default trend classification constants.
const (
	// defaultTrendMinPoints is the smallest series a trend claim is made
	// for; below it the classification defaults to stable.
	defaultTrendMinPoints = 4

	// defaultTrendThreshold is the relative change between the first and
	// second half of the series required to call a trend.
	defaultTrendThreshold = 0.15
)

// SuppressionNoData is recorded when no stored targets matched the filter.
const SuppressionNoData = "no data"

// Trend classifies the direction of the radius-over-time series.
type Trend string

// Trend directions.
const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendWorsening Trend = "worsening"
)

// TrendPoint is one entry of the radius-over-time series, one per
// contributing target.
type TrendPoint struct {
	Timestamp   time.Time
	GroupRadius float64
}

// AggregatedMetrics pools statistics over N stored targets. A zero
// SessionCount means "no data", never a real zero-radius group; callers must
// check SuppressionReason before rendering numbers.
type AggregatedMetrics struct {
	SessionCount       int
	TotalShots         int
	AverageMPI         model.NormalizedShot
	AverageGroupRadius float64
	OutlierRate        float64
	RadiusTrend        []TrendPoint
	Trend              Trend

	SuppressionReason string
}

// Suppressed reports whether the pooled statistics were withheld.
func (m AggregatedMetrics) Suppressed() bool {
	return m.SuppressionReason != ""
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithTrendMinPoints overrides the minimum series length for a trend claim.
func WithTrendMinPoints(n int) Option {
	return func(a *Aggregator) {
		if n >= 2 {
			a.trendMinPoints = n
		}
	}
}

// WithTrendThreshold overrides the relative change required to call a trend.
func WithTrendThreshold(t float64) Option {
	return func(a *Aggregator) {
		if t > 0 {
			a.trendThreshold = t
		}
	}
}

// Aggregator combines stored targets into pooled metrics. Pure and safe to
// share across callers.
type Aggregator struct {
	trendMinPoints int
	trendThreshold float64
}

// New creates an Aggregator with default thresholds.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		trendMinPoints: defaultTrendMinPoints,
		trendThreshold: defaultTrendThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate pools the given patterns.
//
// AverageMPI and AverageGroupRadius weight each pattern equally so a single
// high-volume target cannot dominate the averages. OutlierRate is
// shot-weighted since it is a rate over individual shots.
func (a *Aggregator) Aggregate(patterns []model.StoredTargetPattern) AggregatedMetrics {
	n := len(patterns)
	if n == 0 {
		return AggregatedMetrics{
			Trend:             TrendStable,
			SuppressionReason: SuppressionNoData,
		}
	}

	us := make([]float64, n)
	vs := make([]float64, n)
	radii := make([]float64, n)
	trend := make([]TrendPoint, n)
	totalShots := 0
	totalOutliers := 0
	for i, p := range patterns {
		us[i] = p.MPI.U
		vs[i] = p.MPI.V
		radii[i] = p.GroupRadius
		trend[i] = TrendPoint{Timestamp: p.Timestamp, GroupRadius: p.GroupRadius}
		totalShots += p.ShotCount
		totalOutliers += p.OutlierCount
	}
	sort.Slice(trend, func(i, j int) bool {
		return trend[i].Timestamp.Before(trend[j].Timestamp)
	})

	outlierRate := 0.0
	if totalShots > 0 {
		outlierRate = float64(totalOutliers) / float64(totalShots)
	}

	return AggregatedMetrics{
		SessionCount:       n,
		TotalShots:         totalShots,
		AverageMPI:         model.NormalizedShot{U: stat.Mean(us, nil), V: stat.Mean(vs, nil)},
		AverageGroupRadius: stat.Mean(radii, nil),
		OutlierRate:        outlierRate,
		RadiusTrend:        trend,
		Trend:              a.classifyTrend(trend),
	}
}

// classifyTrend splits the time-ordered series into halves by count and
// compares their mean radii. Short series default to stable: too little
// evidence to claim a direction.
func (a *Aggregator) classifyTrend(series []TrendPoint) Trend {
	if len(series) < a.trendMinPoints {
		return TrendStable
	}

	half := len(series) / 2
	firstMean := meanRadius(series[:half])
	secondMean := meanRadius(series[half:])
	if firstMean <= 0 {
		return TrendStable
	}

	change := (secondMean - firstMean) / firstMean
	switch {
	case change <= -a.trendThreshold:
		return TrendImproving
	case change >= a.trendThreshold:
		return TrendWorsening
	default:
		return TrendStable
	}
}

func meanRadius(points []TrendPoint) float64 {
	radii := make([]float64, len(points))
	for i, p := range points {
		radii[i] = p.GroupRadius
	}
	return stat.Mean(radii, nil)
}
