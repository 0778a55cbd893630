// Package groupstats computes the per-target statistics: mean point of
// impact, group radius, and per-shot outlier flags.
package groupstats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/mjelle/shotgroup/internal/domain/model"
)

// Default analysis configuration constants.
const (
	// defaultOutlierMultiplier is the distance-to-MPI multiple beyond which a
	// shot counts as an outlier. Calibration default, not a structural
	// requirement; override with WithOutlierMultiplier.
	defaultOutlierMultiplier = 2.0

	// defaultMinShots is the smallest sample the statistics are defined for.
	// Below it the result is suppressed rather than reported.
	defaultMinShots = 2
)

// SuppressionInsufficientData is the reason recorded when a target has too
// few shots for meaningful statistics.
const SuppressionInsufficientData = "insufficient data"

// GroupResult is the transient analysis of one target's shots. MPI and
// GroupRadius are only meaningful when SuppressionReason is empty.
type GroupResult struct {
	ShotCount      int
	MPI            model.NormalizedShot
	GroupRadius    float64
	OutlierIndices []int
	Confidence     model.Confidence

	// SuppressionReason is non-empty when the statistics were withheld,
	// e.g. for an undersized sample.
	SuppressionReason string
}

// Suppressed reports whether the statistics were withheld.
func (r GroupResult) Suppressed() bool {
	return r.SuppressionReason != ""
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithOutlierMultiplier overrides the outlier distance multiplier.
func WithOutlierMultiplier(m float64) Option {
	return func(a *Analyzer) {
		if m > 0 {
			a.outlierMultiplier = m
		}
	}
}

// WithMinShots overrides the minimum sample size for reported statistics.
func WithMinShots(n int) Option {
	return func(a *Analyzer) {
		if n >= 2 {
			a.minShots = n
		}
	}
}

// Analyzer computes group statistics over normalized shots. It is pure and
// safe to share across callers.
type Analyzer struct {
	outlierMultiplier float64
	minShots          int
}

// NewAnalyzer creates an Analyzer with default thresholds.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		outlierMultiplier: defaultOutlierMultiplier,
		minShots:          defaultMinShots,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes MPI, group radius, and outlier flags for one target.
//
// MPI is the per-axis centroid of all shots. GroupRadius is the mean
// Euclidean distance from each shot to the MPI; a dispersion measure, not a
// fitted circle, because it stays robust at small N and is easy to explain
// to an athlete. Outliers are annotated, never filtered: MPI and radius are
// always computed over the full sample so the primary numbers stay stable.
func (a *Analyzer) Analyze(shots []model.NormalizedShot) GroupResult {
	n := len(shots)
	if n < a.minShots {
		return GroupResult{
			ShotCount:         n,
			SuppressionReason: SuppressionInsufficientData,
		}
	}

	us := make([]float64, n)
	vs := make([]float64, n)
	for i, s := range shots {
		us[i] = s.U
		vs[i] = s.V
	}
	mpi := model.NormalizedShot{
		U: stat.Mean(us, nil),
		V: stat.Mean(vs, nil),
	}

	dists := make([]float64, n)
	for i, s := range shots {
		dists[i] = math.Hypot(s.U-mpi.U, s.V-mpi.V)
	}
	radius := stat.Mean(dists, nil)

	var outliers []int
	cutoff := a.outlierMultiplier * radius
	for i, d := range dists {
		if d > cutoff {
			outliers = append(outliers, i)
		}
	}

	return GroupResult{
		ShotCount:      n,
		MPI:            mpi,
		GroupRadius:    radius,
		OutlierIndices: outliers,
	}
}
