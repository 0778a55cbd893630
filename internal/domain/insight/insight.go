// Package insight turns pooled metrics, trend direction, and pressure
// comparisons into short natural-language coaching strings and suggested
// drills.
package insight

import (
	"fmt"

	"github.com/mjelle/shotgroup/internal/domain/aggregate"
	"github.com/mjelle/shotgroup/internal/domain/classify"
	"github.com/mjelle/shotgroup/internal/domain/model"
)

// Default insight thresholds.
const (
	// defaultPressureWidenPct: radius growth under pressure beyond this
	// percentage triggers the widen-under-pressure message.
	defaultPressureWidenPct = 15.0

	// defaultPressureTightenPct: radius shrink under pressure beyond this
	// (negative) percentage triggers the tighter-under-pressure message.
	defaultPressureTightenPct = -10.0

	// defaultOutlierRateAlert: outlier share of total shots above which the
	// flyer callout and trigger-control drills fire.
	defaultOutlierRateAlert = 0.10

	percent = 100.0
)

// encouragement is returned when there is nothing to analyze yet.
const encouragement = "Not enough data yet. Shoot a few more targets and check back for insights."

// Insights is the final text payload consumed by display code. Empty strings
// mean "nothing to say" for that slot.
type Insights struct {
	Observation string
	Trend       string
	Outliers    string
	Bias        string
	Pressure    string
	Drills      []Drill
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithPressureThresholds overrides the widen/tighten percentage cutoffs.
func WithPressureThresholds(widenPct, tightenPct float64) Option {
	return func(g *Generator) {
		if widenPct > 0 && tightenPct < 0 {
			g.widenPct = widenPct
			g.tightenPct = tightenPct
		}
	}
}

// WithOutlierRateAlert overrides the outlier-rate callout threshold.
func WithOutlierRateAlert(rate float64) Option {
	return func(g *Generator) {
		if rate > 0 {
			g.outlierRateAlert = rate
		}
	}
}

// Generator produces coaching insights. Deterministic given the same
// metrics; never fails.
type Generator struct {
	widenPct         float64
	tightenPct       float64
	outlierRateAlert float64
}

// NewGenerator creates a Generator with default thresholds.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		widenPct:         defaultPressureWidenPct,
		tightenPct:       defaultPressureTightenPct,
		outlierRateAlert: defaultOutlierRateAlert,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FromMetrics builds the insight payload for one pooled view of history.
// The confidence tier gates how strongly conclusions are phrased.
func (g *Generator) FromMetrics(m aggregate.AggregatedMetrics, label classify.PatternLabel, conf model.Confidence) Insights {
	if m.Suppressed() || m.SessionCount == 0 {
		return Insights{Observation: encouragement}
	}

	ins := Insights{
		Observation: g.observation(m, label, conf),
		Trend:       trendText(m.Trend),
	}

	var triggers []drillTrigger
	if label.Tightness == classify.TightnessWide {
		triggers = append(triggers, triggerWideGroups)
	}
	if !label.Centered() {
		ins.Bias = fmt.Sprintf("Your point of impact sits %s of center. Check your sight picture before adjusting equipment.", label.Bias)
		triggers = append(triggers, triggerOffCenter)
	}
	if m.OutlierRate > g.outlierRateAlert {
		ins.Outliers = fmt.Sprintf("%.0f%% of your shots land well outside the group. Flyers usually point at trigger control, not aim.", m.OutlierRate*percent)
		triggers = append(triggers, triggerHighOutlierRate)
	}
	ins.Drills = drillsFor(triggers)

	return ins
}

// PressureComparison compares average group radius between a low-pressure
// pool and a higher-pressure pool. Empty string when either side has no
// samples.
func (g *Generator) PressureComparison(lowPressure, higherPressure aggregate.AggregatedMetrics) string {
	if lowPressure.SessionCount == 0 || higherPressure.SessionCount == 0 {
		return ""
	}
	if lowPressure.AverageGroupRadius <= 0 {
		return ""
	}

	changePct := (higherPressure.AverageGroupRadius - lowPressure.AverageGroupRadius) /
		lowPressure.AverageGroupRadius * percent
	switch {
	case changePct > g.widenPct:
		return fmt.Sprintf("Your groups widen about %.0f%% under pressure. Build match routines into practice to close the gap.", changePct)
	case changePct < g.tightenPct:
		return fmt.Sprintf("You actually shoot tighter under pressure (%.0f%%). Your match nerves are an asset.", -changePct)
	default:
		return "Your consistency holds across pressure levels. Keep mixing relaxed and match-condition sessions."
	}
}

// observation is the headline line, phrased by confidence tier.
func (g *Generator) observation(m aggregate.AggregatedMetrics, label classify.PatternLabel, conf model.Confidence) string {
	base := fmt.Sprintf("Across %d target(s) and %d shots your groups average %.2f of the target radius (%s).",
		m.SessionCount, m.TotalShots, m.AverageGroupRadius, label.Tightness)
	switch conf {
	case model.ConfidenceLow:
		return base + " Small sample so far, treat this as an early read."
	case model.ConfidenceMedium:
		return base + " A few more sessions will firm up the picture."
	default:
		return base
	}
}

func trendText(t aggregate.Trend) string {
	switch t {
	case aggregate.TrendImproving:
		return "Your groups are tightening over time. Whatever changed recently is working."
	case aggregate.TrendWorsening:
		return "Your groups have been opening up lately. Worth revisiting fundamentals before it settles in."
	default:
		return ""
	}
}
