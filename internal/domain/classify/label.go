package classify

import (
	"math"

	"github.com/mjelle/shotgroup/internal/domain/model"

	"github.com/mjelle/shotgroup/internal/domain/groupstats"
)

// Default labeling thresholds, in normalized target-radius units. These are
// calibration defaults inferred from coaching practice, not verified ground
// truth; override via the labeler options.
const (
	defaultTightMaxRadius = 0.15
	defaultWideMinRadius  = 0.35
	defaultBiasThreshold  = 0.10

	// minorAxisShare is the fraction of the dominant axis offset below which
	// the minor axis is dropped from a directional label.
	minorAxisShare = 0.5
)

// Tightness buckets a group radius into coach-speak.
type Tightness string

// Tightness categories.
const (
	TightnessTight    Tightness = "tight"
	TightnessModerate Tightness = "moderate"
	TightnessWide     Tightness = "wide"
)

// BiasCentered is the bias label for groups centered on the target.
const BiasCentered = "centered"

// PatternLabel is the qualitative label pair shown next to a target.
// Bias is either BiasCentered or a directional label such as "high-left".
type PatternLabel struct {
	Tightness Tightness
	Bias      string
}

// Centered reports whether the group carries no point-of-impact bias.
func (l PatternLabel) Centered() bool {
	return l.Bias == BiasCentered
}

// LabelerOption applies a configuration option to the Labeler.
type LabelerOption func(*Labeler)

// WithTightnessBounds overrides the tight/wide radius cutoffs.
func WithTightnessBounds(tightMax, wideMin float64) LabelerOption {
	return func(l *Labeler) {
		if tightMax > 0 && wideMin > tightMax {
			l.tightMax = tightMax
			l.wideMin = wideMin
		}
	}
}

// WithBiasThreshold overrides the centered-vs-off-center MPI distance cutoff.
func WithBiasThreshold(t float64) LabelerOption {
	return func(l *Labeler) {
		if t > 0 {
			l.biasThreshold = t
		}
	}
}

// Labeler derives pattern labels from group statistics. Total and
// side-effect free; out-of-range inputs clamp to the nearest bucket.
type Labeler struct {
	tightMax      float64
	wideMin       float64
	biasThreshold float64
}

// NewLabeler creates a Labeler with default thresholds.
func NewLabeler(opts ...LabelerOption) *Labeler {
	l := &Labeler{
		tightMax:      defaultTightMaxRadius,
		wideMin:       defaultWideMinRadius,
		biasThreshold: defaultBiasThreshold,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Label derives the label pair for a single-target result.
func (l *Labeler) Label(result groupstats.GroupResult) PatternLabel {
	return l.LabelStats(result.MPI, result.GroupRadius)
}

// LabelStats derives the label pair from raw MPI and radius values. Used for
// both per-target results and pooled aggregates.
func (l *Labeler) LabelStats(mpi model.NormalizedShot, radius float64) PatternLabel {
	return PatternLabel{
		Tightness: l.tightness(radius),
		Bias:      l.bias(mpi),
	}
}

func (l *Labeler) tightness(radius float64) Tightness {
	switch {
	case radius < l.tightMax:
		return TightnessTight
	case radius <= l.wideMin:
		return TightnessModerate
	default:
		return TightnessWide
	}
}

// bias classifies the MPI offset from target center. Within the threshold
// the group counts as centered; otherwise the dominant axis leads the
// directional label and the minor axis is appended when it contributes a
// meaningful share of the offset.
func (l *Labeler) bias(mpi model.NormalizedShot) string {
	offset := math.Hypot(mpi.U, mpi.V)
	if offset < l.biasThreshold {
		return BiasCentered
	}

	horizontal := "left"
	if mpi.U > 0 {
		horizontal = "right"
	}
	vertical := "high"
	if mpi.V > 0 {
		vertical = "low"
	}

	absU, absV := math.Abs(mpi.U), math.Abs(mpi.V)
	switch {
	case absU < absV*minorAxisShare:
		return vertical
	case absV < absU*minorAxisShare:
		return horizontal
	case absV >= absU:
		return vertical + "-" + horizontal
	default:
		return horizontal + "-" + vertical
	}
}
