// Package types contains the display-facing shapes returned to API clients.
package types

import (
	"time"

	"github.com/mjelle/shotgroup/internal/domain/insight"
	"github.com/mjelle/shotgroup/internal/domain/model"
)

// Point is a position in normalized target space.
type Point struct {
	U float64 `json:"u"`
	V float64 `json:"v"`
}

// TargetReport is the immediate single-target feedback payload. MPI and
// GroupRadius are only meaningful when SuppressionReason is empty.
// PatternID is set when the target was appended to history.
type TargetReport struct {
	PatternID         string           `json:"pattern_id,omitempty"`
	ShotCount         int              `json:"shot_count"`
	MPI               *Point           `json:"mpi,omitempty"`
	GroupRadius       float64          `json:"group_radius"`
	OutlierIndices    []int            `json:"outlier_indices,omitempty"`
	Confidence        model.Confidence `json:"confidence"`
	Tightness         string           `json:"tightness,omitempty"`
	Bias              string           `json:"bias,omitempty"`
	SuppressionReason string           `json:"suppression_reason,omitempty"`
}

// PatternSummary is one stored target as listed by history queries. It
// carries no image data; thumbnails are looked up externally by ID.
type PatternSummary struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	SessionName  string    `json:"session_name"`
	Pressure     int       `json:"pressure_level"`
	ShotCount    int       `json:"shot_count"`
	MPI          Point     `json:"mpi"`
	GroupRadius  float64   `json:"group_radius"`
	OutlierCount int       `json:"outlier_count"`
}

// TrendPoint is one entry of the radius-over-time series.
type TrendPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	GroupRadius float64   `json:"group_radius"`
}

// InsightsPayload is the pooled metrics + coaching text payload for the
// history/insights screen.
type InsightsPayload struct {
	SessionCount       int              `json:"session_count"`
	TotalShots         int              `json:"total_shots"`
	AverageMPI         Point            `json:"average_mpi"`
	AverageGroupRadius float64          `json:"average_group_radius"`
	OutlierRate        float64          `json:"outlier_rate"`
	Trend              string           `json:"trend"`
	RadiusTrend        []TrendPoint     `json:"radius_trend,omitempty"`
	Tightness          string           `json:"tightness,omitempty"`
	Bias               string           `json:"bias,omitempty"`
	Confidence         model.Confidence `json:"confidence"`

	Observation string         `json:"observation"`
	TrendText   string         `json:"trend_text,omitempty"`
	OutlierText string         `json:"outlier_text,omitempty"`
	BiasText    string         `json:"bias_text,omitempty"`
	PressureText string        `json:"pressure_text,omitempty"`
	Drills      []insight.Drill `json:"drills,omitempty"`

	SuppressionReason string `json:"suppression_reason,omitempty"`
}
