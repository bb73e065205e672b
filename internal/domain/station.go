package domain

import "fmt"

// Station describes one scintillometer installation from the YAML registry.
//
// PathLength is the surveyed transmitter-receiver distance. ConfiguredLength
// is the distance entered into SRun at setup; when the two differ, Cn2 and
// the instrument's own flux estimate must be recalibrated by
// (surveyed/configured)^-3 before use.
type Station struct {
	Code            string  `yaml:"code" json:"code"`
	Name            string  `yaml:"name" json:"name,omitempty"`
	Latitude        float64 `yaml:"latitude" json:"latitude"`
	Longitude       float64 `yaml:"longitude" json:"longitude"`
	Elevation       float64 `yaml:"elevation" json:"elevation"` // m ASL
	PathLength      float64 `yaml:"path_length" json:"path_length"`
	ConfiguredLength float64 `yaml:"configured_length" json:"configured_length,omitempty"`
	Stability       string  `yaml:"stability" json:"stability,omitempty"` // "stable", "unstable", or empty
	TransectFile    string  `yaml:"transect_file" json:"-"`
	EffectiveHeight float64 `yaml:"effective_height" json:"effective_height"` // m, path-weighted
	GeosphereID     string  `yaml:"geosphere_id" json:"-"`
}

// Validate reports the first problem that would make the entry unusable.
func (s Station) Validate() error {
	if s.Code == "" {
		return fmt.Errorf("station entry is missing a code")
	}
	if s.PathLength <= 0 {
		return fmt.Errorf("station %s: path_length must be positive", s.Code)
	}
	if s.ConfiguredLength < 0 {
		return fmt.Errorf("station %s: configured_length must not be negative", s.Code)
	}
	if s.EffectiveHeight <= 0 {
		return fmt.Errorf("station %s: effective_height must be positive", s.Code)
	}
	switch s.Stability {
	case "", "stable", "unstable":
	default:
		return fmt.Errorf("station %s: %s is not an implemented stability condition", s.Code, s.Stability)
	}
	return nil
}

// NeedsCalibration reports whether the configured path length disagrees with
// the surveyed one.
func (s Station) NeedsCalibration() bool {
	return s.ConfiguredLength > 0 && s.ConfiguredLength != s.PathLength
}
