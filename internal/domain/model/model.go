// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Shot represents one marked bullet or pellet hole in source-image pixel
// space, as supplied by the marking UI.
type Shot struct {
	X float64 // pixel x, origin at the image's top-left corner
	Y float64 // pixel y
}

// NormalizedShot is a shot mapped into target-relative unit space. The origin
// sits at the target center and U/V each land roughly in [-1, 1]; distance
// from the origin approximates the fraction of the target radius.
type NormalizedShot struct {
	U float64
	V float64
}

// PressureLevel orders practice contexts by stress. Level 1 is the lowest.
type PressureLevel int

// Pressure levels form a small, strictly ordered closed set.
const (
	PressureLow    PressureLevel = 1
	PressureMedium PressureLevel = 2
	PressureHigh   PressureLevel = 3
)

// Valid reports whether p is one of the known levels.
func (p PressureLevel) Valid() bool {
	return p >= PressureLow && p <= PressureHigh
}

// SessionType tags the practice context a target was shot under.
type SessionType struct {
	Name     string
	Pressure PressureLevel
}

// Built-in session types. Callers may define their own as long as the
// pressure level is one of the known values.
var (
	SessionCasual = SessionType{Name: "casual", Pressure: PressureLow}
	SessionTimed  = SessionType{Name: "timed", Pressure: PressureMedium}
	SessionMatch  = SessionType{Name: "match", Pressure: PressureHigh}
)

// ParseSessionType resolves one of the built-in session type names.
func ParseSessionType(name string) (SessionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "casual":
		return SessionCasual, nil
	case "timed":
		return SessionTimed, nil
	case "match":
		return SessionMatch, nil
	}
	return SessionType{}, fmt.Errorf("unknown session type: %q", name)
}

// Confidence grades how statistically reliable a set of numbers is, based
// purely on sample size.
type Confidence string

// Confidence tiers.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// DateFilter selects a time window over stored history.
type DateFilter int

// Date filter variants.
const (
	// FilterLastTarget yields at most the single most recent pattern.
	FilterLastTarget DateFilter = iota
	FilterThisWeek
	FilterThisMonth
	FilterAllTime
)

// String returns the wire name of the filter.
func (f DateFilter) String() string {
	switch f {
	case FilterLastTarget:
		return "lastTarget"
	case FilterThisWeek:
		return "thisWeek"
	case FilterThisMonth:
		return "thisMonth"
	case FilterAllTime:
		return "allTime"
	}
	return "unknown"
}

// ParseDateFilter resolves a wire name back to a DateFilter.
func ParseDateFilter(name string) (DateFilter, error) {
	switch strings.TrimSpace(name) {
	case "lastTarget":
		return FilterLastTarget, nil
	case "thisWeek":
		return FilterThisWeek, nil
	case "thisMonth", "":
		return FilterThisMonth, nil
	case "allTime":
		return FilterAllTime, nil
	}
	return 0, fmt.Errorf("unknown date filter: %q", name)
}

// Cutoff returns the inclusive lower bound of the filter's window relative to
// now. The second return is false when the filter does not bound time at all
// (allTime and lastTarget, which is positional rather than temporal).
func (f DateFilter) Cutoff(now time.Time) (time.Time, bool) {
	switch f {
	case FilterThisWeek:
		return now.AddDate(0, 0, -7), true
	case FilterThisMonth:
		return now.AddDate(0, -1, 0), true
	}
	return time.Time{}, false
}

// StoredTargetPattern is a persisted, analyzed target. It is immutable once
// created; ID is the stable foreign key an external thumbnail store is keyed
// by.
type StoredTargetPattern struct {
	ID           string
	Timestamp    time.Time
	Session      SessionType
	Shots        []NormalizedShot
	MPI          NormalizedShot
	GroupRadius  float64
	OutlierCount int
	ShotCount    int
}
