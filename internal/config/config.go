// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Calibration thresholds are configuration, not literals: the numeric
//   defaults below are a starting policy, and deployments may tune them
//   against real match data.
package config

// History backend names accepted by HistoryBackend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// HistoryBackend selects the history store: "memory" or "sqlite".
	HistoryBackend string `koanf:"history_backend"`

	// HistoryPath is the SQLite database file used when the backend is
	// "sqlite".
	HistoryPath string `koanf:"history_path"`

	// OutlierMultiplier is the distance-to-MPI multiple beyond which a shot
	// counts as an outlier.
	OutlierMultiplier float64 `koanf:"outlier_multiplier"`

	// MinShotsForStats suppresses per-target statistics below this sample
	// size.
	MinShotsForStats int `koanf:"min_shots_for_stats"`

	// TightMaxRadius and WideMinRadius bound the tightness buckets, in
	// normalized target-radius units.
	TightMaxRadius float64 `koanf:"tight_max_radius"`
	WideMinRadius  float64 `koanf:"wide_min_radius"`

	// BiasThreshold is the MPI offset below which a group counts as
	// centered.
	BiasThreshold float64 `koanf:"bias_threshold"`

	// ConfidenceMediumShots and ConfidenceHighShots are the sample-size
	// boundaries for the confidence tiers.
	ConfidenceMediumShots int `koanf:"confidence_medium_shots"`
	ConfidenceHighShots   int `koanf:"confidence_high_shots"`

	// TrendMinPoints and TrendThreshold control radius trend classification.
	TrendMinPoints int     `koanf:"trend_min_points"`
	TrendThreshold float64 `koanf:"trend_threshold"`

	// PressureWidenPct and PressureTightenPct bound the pressure-comparison
	// messages.
	PressureWidenPct   float64 `koanf:"pressure_widen_pct"`
	PressureTightenPct float64 `koanf:"pressure_tighten_pct"`

	// OutlierRateAlert is the pooled outlier rate above which the flyer
	// callout fires.
	OutlierRateAlert float64 `koanf:"outlier_rate_alert"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9090",
		HistoryBackend:        BackendMemory,
		HistoryPath:           "shotgroup.db",
		OutlierMultiplier:     2.0,
		MinShotsForStats:      2,
		TightMaxRadius:        0.15,
		WideMinRadius:         0.35,
		BiasThreshold:         0.10,
		ConfidenceMediumShots: 5,
		ConfidenceHighShots:   15,
		TrendMinPoints:        4,
		TrendThreshold:        0.15,
		PressureWidenPct:      15.0,
		PressureTightenPct:    -10.0,
		OutlierRateAlert:      0.10,
	}
}
