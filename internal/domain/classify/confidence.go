// Package classify derives qualitative labels from group statistics:
// a sample-size confidence tier and the tightness/bias pattern label pair.
package classify

import (
	"github.com/mjelle/shotgroup/internal/domain/model"
)

// Default sample-size boundaries for confidence grading.
const (
	defaultMediumMinShots = 5
	defaultHighMinShots   = 15
)

// ConfidenceOption applies a configuration option to the ConfidenceClassifier.
type ConfidenceOption func(*ConfidenceClassifier)

// WithConfidenceBounds overrides the medium/high sample-size boundaries.
func WithConfidenceBounds(mediumMin, highMin int) ConfidenceOption {
	return func(c *ConfidenceClassifier) {
		if mediumMin > 0 && highMin > mediumMin {
			c.mediumMin = mediumMin
			c.highMin = highMin
		}
	}
}

// ConfidenceClassifier grades statistical reliability purely from sample
// size. Dispersion never enters the grade; it only gates how strongly
// downstream insight text is phrased.
type ConfidenceClassifier struct {
	mediumMin int
	highMin   int
}

// NewConfidenceClassifier creates a classifier with default boundaries.
func NewConfidenceClassifier(opts ...ConfidenceOption) *ConfidenceClassifier {
	c := &ConfidenceClassifier{
		mediumMin: defaultMediumMinShots,
		highMin:   defaultHighMinShots,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify maps a shot count to a confidence tier.
func (c *ConfidenceClassifier) Classify(shotCount int) model.Confidence {
	switch {
	case shotCount < c.mediumMin:
		return model.ConfidenceLow
	case shotCount < c.highMin:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceHigh
	}
}
